package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"phd-portal/backend/internal/service"
	"phd-portal/backend/pkg/response"
)

// errorMapping 业务错误到 HTTP 状态与业务码的映射，按顺序匹配
type errorMapping struct {
	target  error
	status  int
	code    int
	message string
}

// ErrWrongStage 同时包装 ErrForbidden 与 ErrInvalidTransition，必须排在二者之前
var errorMappings = []errorMapping{
	// ── 资源不存在 ──
	{service.ErrSubmissionNotFound, http.StatusNotFound, 30001, "文档不存在"},
	{service.ErrUserNotFound, http.StatusNotFound, 20001, "用户不存在"},
	{service.ErrCommitteeNotFound, http.StatusNotFound, 40001, "委员会不存在"},
	{service.ErrMemberNotFound, http.StatusNotFound, 40002, "委员会成员不存在"},
	{service.ErrStudentNotFound, http.StatusNotFound, 41001, "学生档案不存在"},

	// ── 权限与流转 ──
	{service.ErrWrongStage, http.StatusForbidden, 30003, "文档不在您负责的审核阶段"},
	{service.ErrForbidden, http.StatusForbidden, 30002, "无权操作该文档"},
	{service.ErrInvalidTransition, http.StatusConflict, 30004, "当前状态不允许该操作"},
	{service.ErrConflict, http.StatusConflict, 30005, "数据已被修改，请刷新后重试"},
	{service.ErrStudentExists, http.StatusConflict, 41002, "学生档案已存在"},

	// ── 参数校验 ──
	{service.ErrInvalidDecision, http.StatusBadRequest, 30101, "无效的审核决定"},
	{service.ErrCommentRequired, http.StatusBadRequest, 30102, "该审核决定必须填写意见"},
	{service.ErrInvalidSubmissionType, http.StatusBadRequest, 30103, "无效的文档类型"},
	{service.ErrInvalidStatusFilter, http.StatusBadRequest, 30104, "无效的状态筛选条件"},
	{service.ErrTitleRequired, http.StatusBadRequest, 30105, "标题不能为空"},
	{service.ErrContentRequired, http.StatusBadRequest, 30106, "该类型文档必须上传正文"},
	{service.ErrStudentNotEligible, http.StatusBadRequest, 30107, "当前学生状态不允许提交该类型文档"},
	{service.ErrDeleteNotAllowed, http.StatusBadRequest, 30108, "仅允许删除申请类文档"},
	{service.ErrInvalidDate, http.StatusBadRequest, 40101, "日期格式应为 YYYY-MM-DD"},
	{service.ErrMemberRoleMismatch, http.StatusBadRequest, 40102, "用户角色与委员会角色不匹配"},
	{service.ErrCommitteeInactive, http.StatusBadRequest, 40103, "委员会已停用"},
	{service.ErrNotStudentUser, http.StatusBadRequest, 41101, "该用户不是学生"},
	{service.ErrInvalidStudentState, http.StatusBadRequest, 41102, "无效的学生状态"},
	{service.ErrUserSelfRoleChange, http.StatusBadRequest, 20101, "不能修改自己的角色"},
	{service.ErrInvalidRole, http.StatusBadRequest, 20102, "无效的角色"},
}

// handleServiceError 统一处理 Service 层返回的错误
func handleServiceError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			response.Error(c, m.status, m.code, m.message)
			return
		}
	}
	_ = c.Error(err)
	response.InternalError(c)
}
