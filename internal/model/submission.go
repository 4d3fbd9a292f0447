package model

import (
	"time"

	"phd-portal/backend/internal/workflow"
)

// Submission 提交文档表：对应 submissions
// 仅由学生创建；状态只经 Repository.Transition 在事务中修改
type Submission struct {
	SubmissionID   string                  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	StudentID      string                  `gorm:"type:uuid;not null;index"                       json:"student_id"` // 所属学生的 user_id
	Type           workflow.SubmissionType `gorm:"type:varchar(30);not null"                      json:"type"`
	Status         workflow.Status         `gorm:"type:varchar(40);not null;index"                json:"status"`
	Title          string                  `gorm:"type:varchar(255);not null"                     json:"title"`
	Abstract       string                  `gorm:"type:text"                                      json:"abstract,omitempty"`
	ContentLocator string                  `gorm:"type:varchar(500)"                              json:"content_locator,omitempty"`
	SubmittedAt    time.Time               `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	VersionedModel

	// 关联
	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }
