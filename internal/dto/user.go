package dto

import "phd-portal/backend/internal/model"

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=admin dsc_member supervisor co_supervisor student"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin dsc_member supervisor co_supervisor student"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// NewUserResponse 由模型构造响应
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(timeLayout),
	}
}

// NewUserBrief 由模型构造简要信息；nil 安全
func NewUserBrief(u *model.User) *UserBrief {
	if u == nil {
		return nil
	}
	return &UserBrief{ID: u.UserID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}
