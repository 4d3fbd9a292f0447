package handler

import (
	"github.com/gin-gonic/gin"

	"phd-portal/backend/internal/dto"
	"phd-portal/backend/internal/service"
	"phd-portal/backend/internal/workflow"
	"phd-portal/backend/pkg/response"
)

// CommitteeHandler 委员会模块 HTTP 处理器（管理员）
type CommitteeHandler struct {
	committeeSvc service.CommitteeService
	studentSvc   service.StudentService
}

// NewCommitteeHandler 创建 CommitteeHandler
func NewCommitteeHandler(committeeSvc service.CommitteeService, studentSvc service.StudentService) *CommitteeHandler {
	return &CommitteeHandler{committeeSvc: committeeSvc, studentSvc: studentSvc}
}

// ListCommittees 委员会列表
// GET /api/v1/committees?status=
func (h *CommitteeHandler) ListCommittees(c *gin.Context) {
	var req dto.CommitteeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.committeeSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetCommittee 委员会详情（含成员）
// GET /api/v1/committees/:id
func (h *CommitteeHandler) GetCommittee(c *gin.Context) {
	id, ok := pathID(c, "id", "委员会ID")
	if !ok {
		return
	}

	committee, err := h.committeeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, committee)
}

// CreateCommittee 创建委员会
// POST /api/v1/committees
func (h *CommitteeHandler) CreateCommittee(c *gin.Context) {
	var req dto.CreateCommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	committee, err := h.committeeSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, committee)
}

// UpdateCommittee 更新委员会
// PUT /api/v1/committees/:id
func (h *CommitteeHandler) UpdateCommittee(c *gin.Context) {
	id, ok := pathID(c, "id", "委员会ID")
	if !ok {
		return
	}

	var req dto.UpdateCommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	committee, err := h.committeeSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, committee)
}

// ── 成员管理 ──

// AddMember 添加成员；已有角色时替换
// PUT /api/v1/committees/:id/members
func (h *CommitteeHandler) AddMember(c *gin.Context) {
	id, ok := pathID(c, "id", "委员会ID")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	committee, err := h.committeeSvc.AddMember(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, committee)
}

// RemoveMember 移除单个成员
// DELETE /api/v1/committees/:id/members/:user_id
func (h *CommitteeHandler) RemoveMember(c *gin.Context) {
	id, ok := pathID(c, "id", "委员会ID")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id", "用户ID")
	if !ok {
		return
	}

	if err := h.committeeSvc.RemoveMember(c.Request.Context(), id, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// RemoveMembersByRole 按委员会角色批量移除
// DELETE /api/v1/committees/:id/members?committee_role=member
func (h *CommitteeHandler) RemoveMembersByRole(c *gin.Context) {
	id, ok := pathID(c, "id", "委员会ID")
	if !ok {
		return
	}
	role := c.Query("committee_role")
	if role == "" {
		response.BadRequest(c, 10001, "committee_role 不能为空")
		return
	}

	n, err := h.committeeSvc.RemoveAllByRole(c.Request.Context(), id, workflow.CommitteeRole(role))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, dto.RemoveByRoleResponse{Removed: n})
}

// ListStudents 委员会下的学生
// GET /api/v1/committees/:id/students
func (h *CommitteeHandler) ListStudents(c *gin.Context) {
	id, ok := pathID(c, "id", "委员会ID")
	if !ok {
		return
	}

	list, err := h.studentSvc.ListByCommittee(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
