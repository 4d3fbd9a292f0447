package dto

import "phd-portal/backend/internal/model"

// ── 学生档案 DTO ──

// AssignCommitteeRequest 为学生指定委员会；committee_id 为空表示解除
type AssignCommitteeRequest struct {
	CommitteeID *string `json:"committee_id" binding:"omitempty,uuid"`
}

// UpdateStudentStatusRequest 更新学生状态
type UpdateStudentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending active rejected graduated"`
}

// StudentResponse 学生档案响应
type StudentResponse struct {
	UserID        string     `json:"user_id"`
	Program       string     `json:"program"`
	StudentNumber string     `json:"student_number,omitempty"`
	Status        string     `json:"status"`
	CommitteeID   string     `json:"committee_id,omitempty"`
	User          *UserBrief `json:"user,omitempty"`
	Version       int        `json:"version"`
}

// NewStudentResponse 由模型构造响应
func NewStudentResponse(s *model.Student) StudentResponse {
	resp := StudentResponse{
		UserID:  s.UserID,
		Program: s.Program,
		Status:  s.Status,
		User:    NewUserBrief(s.User),
		Version: s.Version,
	}
	if s.StudentNumber != nil {
		resp.StudentNumber = *s.StudentNumber
	}
	if s.CommitteeID != nil {
		resp.CommitteeID = *s.CommitteeID
	}
	return resp
}

// CreateStudentRequest 为已有学生账号建立档案
type CreateStudentRequest struct {
	UserID        string `json:"user_id"        binding:"required,uuid"`
	Program       string `json:"program"        binding:"required,max=100"`
	StudentNumber string `json:"student_number" binding:"omitempty,max=30"`
}
