package dto

import "phd-portal/backend/internal/model"

// ── 提交与审核 DTO ──

// SubmitRequest 学生提交文档
type SubmitRequest struct {
	Type           string `json:"type"            binding:"required"`
	Title          string `json:"title"           binding:"required,max=255"`
	Abstract       string `json:"abstract"        binding:"omitempty,max=5000"`
	ContentLocator string `json:"content_locator" binding:"omitempty,max=500"`
}

// ResubmitRequest 退修后重新提交
type ResubmitRequest struct {
	Title          string `json:"title"           binding:"required,max=255"`
	Abstract       string `json:"abstract"        binding:"omitempty,max=5000"`
	ContentLocator string `json:"content_locator" binding:"omitempty,max=500"`
}

// ReviewRequest 审核请求；decision 为空表示未给出决定
type ReviewRequest struct {
	Decision string `json:"decision" binding:"omitempty,max=20"`
	Comments string `json:"comments" binding:"omitempty,max=5000"`
}

// SubmissionListRequest 看板列表查询参数
type SubmissionListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,max=40"`
	Type   string `form:"type"   binding:"omitempty,max=30"`
}

// SubmissionResponse 提交文档响应
type SubmissionResponse struct {
	ID             string     `json:"id"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	Title          string     `json:"title"`
	Abstract       string     `json:"abstract,omitempty"`
	ContentLocator string     `json:"content_locator,omitempty"`
	Student        *UserBrief `json:"student,omitempty"`
	StudentID      string     `json:"student_id"`
	Version        int        `json:"version"`
	SubmittedAt    string     `json:"submitted_at"`
	UpdatedAt      string     `json:"updated_at"`
}

// NewSubmissionResponse 由模型构造响应
func NewSubmissionResponse(s *model.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:             s.SubmissionID,
		Type:           string(s.Type),
		Status:         string(s.Status),
		Title:          s.Title,
		Abstract:       s.Abstract,
		ContentLocator: s.ContentLocator,
		Student:        NewUserBrief(s.Student),
		StudentID:      s.StudentID,
		Version:        s.Version,
		SubmittedAt:    s.SubmittedAt.Format(timeLayout),
		UpdatedAt:      s.UpdatedAt.Format(timeLayout),
	}
}

// FeedbackResponse 审核反馈响应
type FeedbackResponse struct {
	ID        string     `json:"id"`
	Decision  string     `json:"decision"`
	Comment   string     `json:"comment"`
	Author    *UserBrief `json:"author,omitempty"`
	AuthorID  string     `json:"author_id"`
	CreatedAt string     `json:"created_at"`
}

// NewFeedbackResponse 由模型构造响应
func NewFeedbackResponse(f *model.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.FeedbackID,
		Decision:  f.Decision,
		Comment:   f.Comment,
		Author:    NewUserBrief(f.Author),
		AuthorID:  f.AuthorID,
		CreatedAt: f.CreatedAt.Format(timeLayout),
	}
}

// StatusHistoryResponse 状态变更记录响应
type StatusHistoryResponse struct {
	OldStatus string `json:"old_status,omitempty"`
	NewStatus string `json:"new_status"`
	Action    string `json:"action"`
	ChangedBy string `json:"changed_by"`
	CreatedAt string `json:"created_at"`
}

// NewStatusHistoryResponse 由模型构造响应
func NewStatusHistoryResponse(h *model.SubmissionStatusHistory) StatusHistoryResponse {
	resp := StatusHistoryResponse{
		NewStatus: h.NewStatus,
		Action:    h.Action,
		ChangedBy: h.ChangedBy,
		CreatedAt: h.CreatedAt.Format(timeLayout),
	}
	if h.OldStatus != nil {
		resp.OldStatus = *h.OldStatus
	}
	return resp
}
