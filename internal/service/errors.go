package service

import (
	"errors"
	"fmt"

	"phd-portal/backend/internal/workflow"
)

// ── 资源不存在 ──

var (
	ErrSubmissionNotFound = errors.New("提交不存在")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrCommitteeNotFound  = errors.New("委员会不存在")
	ErrStudentNotFound    = errors.New("学生档案不存在")
	ErrMemberNotFound     = errors.New("该用户不是委员会成员")
)

// ── 权限与流转 ──

var (
	ErrForbidden = errors.New("无权操作")
	// ErrInvalidTransition 与 workflow 包共用同一个哨兵，便于 errors.Is 统一判断
	ErrInvalidTransition = workflow.ErrInvalidTransition
	// ErrWrongStage 合法审核人作用于不属于其阶段的文档：既是权限失败也是非法流转
	ErrWrongStage = fmt.Errorf("%w: %w", ErrForbidden, workflow.ErrInvalidTransition)
	ErrConflict   = errors.New("文档已被他人修改，请刷新后重试")
)

// ── 参数校验 ──

var (
	ErrInvalidDecision       = errors.New("无效的审核决定")
	ErrCommentRequired       = errors.New("退修或存疑必须填写意见")
	ErrInvalidSubmissionType = errors.New("无效的文档类型")
	ErrInvalidStatusFilter   = errors.New("无效的状态筛选")
	ErrTitleRequired         = errors.New("标题不能为空")
	ErrContentRequired       = errors.New("该类型文档必须上传正文")
	ErrStudentNotEligible    = errors.New("当前学生状态不允许提交该类型文档")
	ErrDeleteNotAllowed      = errors.New("仅允许删除申请类文档")
	ErrInvalidDate           = errors.New("日期格式应为 YYYY-MM-DD")
)

// ── 用户与委员会管理 ──

var (
	ErrUserSelfRoleChange  = errors.New("不能修改自己的角色")
	ErrInvalidRole         = errors.New("无效的角色")
	ErrMemberRoleMismatch  = errors.New("用户角色与委员会角色不匹配")
	ErrCommitteeInactive   = errors.New("委员会已停用")
	ErrStudentExists       = errors.New("学生档案已存在")
	ErrNotStudentUser      = errors.New("该用户不是学生")
	ErrInvalidStudentState = errors.New("无效的学生状态")
)

// IsValidation 是否属于参数校验类错误
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidDecision, ErrCommentRequired, ErrInvalidSubmissionType, ErrInvalidStatusFilter,
		ErrTitleRequired, ErrContentRequired, ErrStudentNotEligible, ErrDeleteNotAllowed, ErrInvalidDate,
		ErrMemberRoleMismatch, ErrInvalidRole, ErrCommitteeInactive, ErrNotStudentUser, ErrInvalidStudentState,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound 是否属于资源不存在类错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCommitteeNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrMemberNotFound)
}
