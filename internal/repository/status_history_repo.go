package repository

import (
	"context"

	"gorm.io/gorm"

	"phd-portal/backend/internal/model"
)

// StatusHistoryRepository 状态变更记录数据访问接口
// 写入只发生在 SubmissionRepository 的事务内
type StatusHistoryRepository interface {
	ListBySubmission(ctx context.Context, submissionID string) ([]model.SubmissionStatusHistory, error)
}

type statusHistoryRepo struct {
	db *gorm.DB
}

// NewStatusHistoryRepo 创建 StatusHistoryRepository 实例
func NewStatusHistoryRepo(db *gorm.DB) StatusHistoryRepository {
	return &statusHistoryRepo{db: db}
}

func (r *statusHistoryRepo) ListBySubmission(ctx context.Context, submissionID string) ([]model.SubmissionStatusHistory, error) {
	var list []model.SubmissionStatusHistory
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
