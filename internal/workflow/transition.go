package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransition 当前状态与角色组合下不允许该决定 / 转交
	ErrInvalidTransition = errors.New("当前状态下不允许该操作")
	// ErrUnknownDecision 决定取值不在词汇表内
	ErrUnknownDecision = errors.New("无效的审核决定")
)

// Decision 审核决定
type Decision string

const (
	DecisionNone     Decision = ""
	DecisionApproved Decision = "approved"
	DecisionRevision Decision = "revision"
	DecisionConcerns Decision = "concerns"
	DecisionRejected Decision = "rejected"
)

// ParseDecision 解析审核决定；空串合法，表示未给出决定
func ParseDecision(raw string) (Decision, error) {
	d := Decision(strings.ToLower(strings.TrimSpace(raw)))
	switch d {
	case DecisionNone, DecisionApproved, DecisionRevision, DecisionConcerns, DecisionRejected:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDecision, raw)
}

// RequiresComment 退修与存疑必须附带意见
func (d Decision) RequiresComment() bool {
	return d == DecisionRevision || d == DecisionConcerns
}

// Label 用于反馈记录的决定文本
func (d Decision) Label() string {
	if d == DecisionNone {
		return "none"
	}
	return string(d)
}

type stageKey struct {
	status Status
	role   Role
}

// reviewRule 某阶段允许的决定；otherwise 非空时，未列出的决定（含未给出）统一落到该状态
type reviewRule struct {
	next      map[Decision]Status
	otherwise Status
}

// reviewTable 审核流转表：(当前状态, 角色) → 决定 → 下一状态
var reviewTable = map[stageKey]reviewRule{
	{StatusPendingCoSupervisorApproval, RoleCoSupervisor}: {
		next: map[Decision]Status{
			DecisionApproved: StatusPendingSupervisorApproval,
			DecisionRevision: StatusRevisionRequired,
			DecisionConcerns: StatusNeedsFurtherReview,
		},
		otherwise: StatusRejected,
	},
	{StatusPendingSupervisorApproval, RoleSupervisor}: {
		next: map[Decision]Status{
			DecisionApproved: StatusApproved,
			DecisionRevision: StatusRevisionRequired,
			DecisionConcerns: StatusNeedsFurtherReview,
		},
		otherwise: StatusRejected,
	},
	{StatusPendingDSCApproval, RoleDSCMember}: {
		next: map[Decision]Status{
			DecisionApproved: StatusApproved,
			DecisionRejected: StatusRejected,
		},
	},
	{StatusPending, RoleAdmin}: {
		next: map[Decision]Status{
			DecisionApproved: StatusApproved,
			DecisionRejected: StatusRejected,
		},
	},
}

// forwardTable 转交表：不记录决定与反馈，仅推进状态
var forwardTable = map[stageKey]Status{
	{StatusPendingCoSupervisorApproval, RoleCoSupervisor}: StatusPendingSupervisorApproval,
	{StatusPendingSupervisorApproval, RoleSupervisor}:     StatusPending,
	{StatusPendingDSCApproval, RoleDSCMember}:             StatusPending,
	// 管理员将待审申请提交 DSC 复核，这是进入 pending_dsc_approval 的唯一路径
	{StatusPending, RoleAdmin}: StatusPendingDSCApproval,
}

// NextStatus 计算审核后的下一状态
func NextStatus(current Status, role Role, decision Decision) (Status, error) {
	rule, ok := reviewTable[stageKey{current, role}]
	if !ok {
		return "", fmt.Errorf("%w: %s 无法审核状态为 %s 的文档", ErrInvalidTransition, role, current)
	}
	if next, ok := rule.next[decision]; ok {
		return next, nil
	}
	if rule.otherwise != "" {
		return rule.otherwise, nil
	}
	return "", fmt.Errorf("%w: %s 在 %s 阶段不能作出 %q 决定", ErrInvalidTransition, role, current, decision.Label())
}

// ForwardTarget 计算转交后的状态
func ForwardTarget(current Status, role Role) (Status, error) {
	next, ok := forwardTable[stageKey{current, role}]
	if !ok {
		return "", fmt.Errorf("%w: %s 无法转交状态为 %s 的文档", ErrInvalidTransition, role, current)
	}
	return next, nil
}
