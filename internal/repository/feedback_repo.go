package repository

import (
	"context"

	"gorm.io/gorm"

	"phd-portal/backend/internal/model"
)

// FeedbackRepository 审核反馈数据访问接口（只追加）
// 审核产生的反馈由 SubmissionRepository.Transition 在事务内写入，Append 仅用于独立留言
type FeedbackRepository interface {
	Append(ctx context.Context, fb *model.Feedback) error
	ListBySubmission(ctx context.Context, submissionID string) ([]model.Feedback, error)
	CountBySubmission(ctx context.Context, submissionID string) (int64, error)
}

type feedbackRepo struct {
	db *gorm.DB
}

// NewFeedbackRepo 创建 FeedbackRepository 实例
func NewFeedbackRepo(db *gorm.DB) FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Append(ctx context.Context, fb *model.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

func (r *feedbackRepo) ListBySubmission(ctx context.Context, submissionID string) ([]model.Feedback, error) {
	var list []model.Feedback
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *feedbackRepo) CountBySubmission(ctx context.Context, submissionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Feedback{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error
	return count, err
}
