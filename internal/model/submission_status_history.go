package model

import "time"

// SubmissionStatusHistory 状态变更记录表：对应 submission_status_histories（纯审计日志）
type SubmissionStatusHistory struct {
	HistoryID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	SubmissionID string    `gorm:"type:uuid;not null;index"                       json:"submission_id"`
	OldStatus    *string   `gorm:"type:varchar(40)"                               json:"old_status,omitempty"`
	NewStatus    string    `gorm:"type:varchar(40);not null"                      json:"new_status"`
	Action       string    `gorm:"type:varchar(20);not null"                      json:"action"` // submit | review | forward | resubmit
	ChangedBy    string    `gorm:"type:uuid;not null"                             json:"changed_by"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (SubmissionStatusHistory) TableName() string { return "submission_status_histories" }
