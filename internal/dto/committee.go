package dto

import "phd-portal/backend/internal/model"

// ── 委员会模块 DTO ──

// CreateCommitteeRequest 创建委员会
type CreateCommitteeRequest struct {
	Name     string `json:"name"      binding:"required,max=100"`
	FormedAt string `json:"formed_at" binding:"required,datetime=2006-01-02"`
}

// UpdateCommitteeRequest 更新委员会
type UpdateCommitteeRequest struct {
	Name     *string `json:"name"      binding:"omitempty,max=100"`
	Status   *string `json:"status"    binding:"omitempty,oneof=active inactive"`
	FormedAt *string `json:"formed_at" binding:"omitempty,datetime=2006-01-02"`
}

// CommitteeListRequest 委员会列表查询参数
type CommitteeListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// AddMemberRequest 添加成员（已存在则替换角色）
type AddMemberRequest struct {
	UserID        string `json:"user_id"        binding:"required,uuid"`
	CommitteeRole string `json:"committee_role" binding:"required,oneof=supervisor co_supervisor member"`
}

// CommitteeResponse 委员会响应
type CommitteeResponse struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Status   string           `json:"status"`
	FormedAt string           `json:"formed_at"`
	Version  int              `json:"version"`
	Members  []MemberResponse `json:"members,omitempty"`
}

// MemberResponse 委员会成员
type MemberResponse struct {
	UserID        string     `json:"user_id"`
	CommitteeRole string     `json:"committee_role"`
	User          *UserBrief `json:"user,omitempty"`
}

// RemoveByRoleResponse 批量移除结果
type RemoveByRoleResponse struct {
	Removed int64 `json:"removed"`
}

// NewCommitteeResponse 由模型构造响应
func NewCommitteeResponse(c *model.Committee) CommitteeResponse {
	resp := CommitteeResponse{
		ID:       c.CommitteeID,
		Name:     c.Name,
		Status:   c.Status,
		FormedAt: c.FormedAt.Format("2006-01-02"),
		Version:  c.Version,
	}
	for i := range c.Members {
		m := &c.Members[i]
		resp.Members = append(resp.Members, MemberResponse{
			UserID:        m.UserID,
			CommitteeRole: string(m.CommitteeRole),
			User:          NewUserBrief(m.User),
		})
	}
	return resp
}
