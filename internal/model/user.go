package model

import "phd-portal/backend/internal/workflow"

// User 用户表：对应 users
// 账号由外部认证服务创建，本服务只读取身份与角色，角色变更仅限管理员操作
type User struct {
	UserID string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name   string        `gorm:"type:varchar(100);not null"                     json:"name"`
	Email  string        `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Role   workflow.Role `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
