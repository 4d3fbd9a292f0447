package model

import (
	"time"

	"phd-portal/backend/internal/workflow"
)

// Committee 学位审查委员会（DSC）：对应 committees
type Committee struct {
	CommitteeID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"committee_id"`
	Name        string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Status      string    `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | inactive
	FormedAt    time.Time `gorm:"type:date;not null"                             json:"formed_at"`
	VersionedModel

	// 关联
	Members []CommitteeMembership `gorm:"foreignKey:CommitteeID" json:"members,omitempty"`
}

// TableName 指定表名
func (Committee) TableName() string { return "committees" }

// CommitteeMembership 委员会成员表：对应 committee_memberships
// (user_id, committee_id) 唯一：同一委员会内每人只有一个角色，重复添加即替换
type CommitteeMembership struct {
	MembershipID  string                 `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"membership_id"`
	CommitteeID   string                 `gorm:"type:uuid;not null;uniqueIndex:uk_member_committee" json:"committee_id"`
	UserID        string                 `gorm:"type:uuid;not null;uniqueIndex:uk_member_committee" json:"user_id"`
	CommitteeRole workflow.CommitteeRole `gorm:"type:varchar(20);not null"                         json:"committee_role"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (CommitteeMembership) TableName() string { return "committee_memberships" }
