package handler

import (
	"github.com/gin-gonic/gin"

	"phd-portal/backend/internal/dto"
	"phd-portal/backend/internal/service"
	"phd-portal/backend/pkg/response"
)

// StudentHandler 学生档案 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// CreateStudent 为学生用户建立档案（管理员）
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.CreateProfile(c.Request.Context(), &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, student)
}

// GetMyProfile 当前学生的档案
// GET /api/v1/students/me
func (h *StudentHandler) GetMyProfile(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.Get(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, student)
}

// GetStudent 学生档案（管理员）
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := pathID(c, "id", "学生ID")
	if !ok {
		return
	}

	student, err := h.studentSvc.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, student)
}

// AssignCommittee 指定或解除学生的委员会
// PUT /api/v1/students/:id/committee
func (h *StudentHandler) AssignCommittee(c *gin.Context) {
	id, ok := pathID(c, "id", "学生ID")
	if !ok {
		return
	}

	var req dto.AssignCommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.AssignCommittee(c.Request.Context(), id, req.CommitteeID, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, student)
}

// UpdateStatus 修改学生状态
// PUT /api/v1/students/:id/status
func (h *StudentHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "学生ID")
	if !ok {
		return
	}

	var req dto.UpdateStudentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.UpdateStatus(c.Request.Context(), id, req.Status, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, student)
}
