// Package workflow 定义提交文档的状态词汇、角色与审核流转表。
//
// 本包不做任何 I/O，Service 层通过纯函数 NextStatus / ForwardTarget
// 计算下一状态，再交由 Repository 在单个事务内落库。
package workflow

import (
	"fmt"
	"strings"
)

// Status 提交文档状态
type Status string

const (
	StatusPending                     Status = "pending"
	StatusPendingCoSupervisorApproval Status = "pending_co_supervisor_approval"
	StatusPendingSupervisorApproval   Status = "pending_supervisor_approval"
	StatusPendingDSCApproval          Status = "pending_dsc_approval"
	StatusUnderReview                 Status = "under_review"
	StatusRevisionRequired            Status = "revision_required"
	StatusNeedsFurtherReview          Status = "needs_further_review"
	StatusApproved                    Status = "approved"
	StatusRejected                    Status = "rejected"
)

// allStatuses 固定词汇表，顺序即看板展示顺序
var allStatuses = []Status{
	StatusPending,
	StatusPendingCoSupervisorApproval,
	StatusPendingSupervisorApproval,
	StatusPendingDSCApproval,
	StatusUnderReview,
	StatusRevisionRequired,
	StatusNeedsFurtherReview,
	StatusApproved,
	StatusRejected,
}

// AllStatuses 返回完整状态词汇表的副本
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Valid 状态是否属于词汇表
func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal 终态：approved / rejected
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseStatus 解析状态字符串，空串返回 ("", nil) 表示不过滤
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// SubmissionType 提交文档类型
type SubmissionType string

const (
	TypeApplication    SubmissionType = "Application"
	TypeProposalReport SubmissionType = "Proposal/Report"
	TypePreThesis      SubmissionType = "Pre-Thesis"
	TypeFinalThesis    SubmissionType = "Final-Thesis"
)

// Valid 类型是否合法
func (t SubmissionType) Valid() bool {
	switch t {
	case TypeApplication, TypeProposalReport, TypePreThesis, TypeFinalThesis:
		return true
	}
	return false
}

// RequiresContent 除入学申请外都必须附带文档
func (t SubmissionType) RequiresContent() bool {
	return t != TypeApplication
}

// InitialStatus 按类型决定新建文档的初始状态。
// 入学申请直接交管理员；研究类文档从副导师开始逐级审核。
func InitialStatus(t SubmissionType) (Status, error) {
	switch t {
	case TypeApplication:
		return StatusPending, nil
	case TypeProposalReport, TypePreThesis, TypeFinalThesis:
		return StatusPendingCoSupervisorApproval, nil
	}
	return "", fmt.Errorf("unknown submission type %q", t)
}
