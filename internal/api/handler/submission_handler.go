package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"phd-portal/backend/internal/dto"
	"phd-portal/backend/internal/service"
	"phd-portal/backend/pkg/response"
)

// SubmissionHandler 文档提交与审核 HTTP 处理器
type SubmissionHandler struct {
	reviewSvc service.ReviewService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(reviewSvc service.ReviewService) *SubmissionHandler {
	return &SubmissionHandler{reviewSvc: reviewSvc}
}

// Submit 学生提交文档
// POST /api/v1/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sub, err := h.reviewSvc.Submit(c.Request.Context(), studentID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, sub)
}

// GetSubmission 查看文档
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, ok := pathID(c, "id", "文档ID")
	if !ok {
		return
	}
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sub, err := h.reviewSvc.Get(c.Request.Context(), actorID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, sub)
}

// ListFeedback 文档的审核意见
// GET /api/v1/submissions/:id/feedback
func (h *SubmissionHandler) ListFeedback(c *gin.Context) {
	id, ok := pathID(c, "id", "文档ID")
	if !ok {
		return
	}
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.reviewSvc.ListFeedback(c.Request.Context(), actorID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListHistory 文档的状态变更记录
// GET /api/v1/submissions/:id/history
func (h *SubmissionHandler) ListHistory(c *gin.Context) {
	id, ok := pathID(c, "id", "文档ID")
	if !ok {
		return
	}
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.reviewSvc.ListHistory(c.Request.Context(), actorID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Review 审核文档
// POST /api/v1/submissions/:id/review
func (h *SubmissionHandler) Review(c *gin.Context) {
	id, ok := pathID(c, "id", "文档ID")
	if !ok {
		return
	}

	// 空请求体等同于未给出决定
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sub, err := h.reviewSvc.Review(c.Request.Context(), actorID, id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, sub)
}

// Forward 转交文档到下一审核阶段
// POST /api/v1/submissions/:id/forward
func (h *SubmissionHandler) Forward(c *gin.Context) {
	id, ok := pathID(c, "id", "文档ID")
	if !ok {
		return
	}
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sub, err := h.reviewSvc.Forward(c.Request.Context(), actorID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, sub)
}

// Resubmit 学生退修后重新提交
// PUT /api/v1/submissions/:id/resubmit
func (h *SubmissionHandler) Resubmit(c *gin.Context) {
	id, ok := pathID(c, "id", "文档ID")
	if !ok {
		return
	}

	var req dto.ResubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sub, err := h.reviewSvc.Resubmit(c.Request.Context(), studentID, id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, sub)
}

// DeleteSubmission 删除申请（管理员）
// DELETE /api/v1/submissions/:id
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	id, ok := pathID(c, "id", "文档ID")
	if !ok {
		return
	}
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.reviewSvc.Delete(c.Request.Context(), actorID, id); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
