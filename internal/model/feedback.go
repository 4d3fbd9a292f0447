package model

import "time"

// Feedback 审核反馈表：对应 feedbacks（只追加，不修改不删除）
type Feedback struct {
	FeedbackID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"feedback_id"`
	SubmissionID string    `gorm:"type:uuid;not null;index"                       json:"submission_id"`
	AuthorID     string    `gorm:"type:uuid;not null"                             json:"author_id"`
	Decision     string    `gorm:"type:varchar(20);not null"                      json:"decision"` // approved | revision | concerns | rejected | none
	Comment      string    `gorm:"type:text;not null"                             json:"comment"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Author *User `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
}

// TableName 指定表名
func (Feedback) TableName() string { return "feedbacks" }
