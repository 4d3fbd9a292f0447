package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"phd-portal/backend/internal/model"
	"phd-portal/backend/internal/workflow"
	pkgerrors "phd-portal/backend/pkg/errors"
)

// 状态变更动作，写入 submission_status_histories.action
const (
	ActionSubmit   = "submit"
	ActionReview   = "review"
	ActionForward  = "forward"
	ActionResubmit = "resubmit"
)

// Scope 查询范围：All=true 时不限学生，否则仅限 StudentIDs
type Scope struct {
	All        bool
	StudentIDs []string
}

// Empty 范围内不可能有任何记录
func (s Scope) Empty() bool {
	return !s.All && len(s.StudentIDs) == 0
}

// SubmissionFilter 列表过滤条件
type SubmissionFilter struct {
	Scope  Scope
	Status workflow.Status
	Type   workflow.SubmissionType
	Offset int
	Limit  int
}

// ContentUpdate 学生退修后重新提交的内容
type ContentUpdate struct {
	Title          string
	Abstract       string
	ContentLocator string
}

// Transition 一次状态流转。
// From/Version 为调用方读取时的快照，落库时以二者作比较条件；
// Feedback 非 nil 时与状态在同一事务中写入。
type Transition struct {
	SubmissionID string
	From         workflow.Status
	To           workflow.Status
	Version      int
	ActorID      string
	Action       string
	Feedback     *model.Feedback
	Content      *ContentUpdate
}

// SubmissionRepository 提交文档数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	ListByOwner(ctx context.Context, studentID string) ([]model.Submission, error)
	ListFiltered(ctx context.Context, filter SubmissionFilter) ([]model.Submission, int64, error)
	CountByStatus(ctx context.Context, scope Scope) (map[workflow.Status]int64, error)
	// Transition 原子地更新状态并追加反馈与状态记录；快照过期时返回 pkgerrors.ErrOptimisticLock
	Transition(ctx context.Context, t *Transition) (*model.Submission, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

// Create 新建文档并写入首条状态记录
func (r *submissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	if !sub.Status.Valid() {
		return pkgerrors.ErrInvalidStatus
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		return tx.Create(&model.SubmissionStatusHistory{
			SubmissionID: sub.SubmissionID,
			NewStatus:    string(sub.Status),
			Action:       ActionSubmit,
			ChangedBy:    sub.StudentID,
			CreatedAt:    sub.SubmittedAt,
		}).Error
	})
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) ListByOwner(ctx context.Context, studentID string) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *submissionRepo) ListFiltered(ctx context.Context, filter SubmissionFilter) ([]model.Submission, int64, error) {
	if filter.Scope.Empty() {
		return []model.Submission{}, 0, nil
	}

	var subs []model.Submission
	var total int64

	db := r.scoped(ctx, filter.Scope)
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		db = db.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := db.Preload("Student").
		Order("submitted_at DESC").
		Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

func (r *submissionRepo) CountByStatus(ctx context.Context, scope Scope) (map[workflow.Status]int64, error) {
	counts := make(map[workflow.Status]int64)
	if scope.Empty() {
		return counts, nil
	}

	var rows []struct {
		Status workflow.Status
		Total  int64
	}
	err := r.scoped(ctx, scope).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *submissionRepo) scoped(ctx context.Context, scope Scope) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Submission{})
	if !scope.All {
		db = db.Where("student_id IN ?", scope.StudentIDs)
	}
	return db
}

func (r *submissionRepo) Transition(ctx context.Context, t *Transition) (*model.Submission, error) {
	if !t.To.Valid() {
		return nil, pkgerrors.ErrInvalidStatus
	}

	var updated model.Submission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行锁：并发请求在此串行化，后到者读到的是已提交的新状态
		var current model.Submission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ?", t.SubmissionID).
			First(&current).Error; err != nil {
			return err
		}
		if current.Status != t.From || current.Version != t.Version {
			return pkgerrors.ErrOptimisticLock
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     t.To,
			"updated_by": t.ActorID,
			"updated_at": now,
			"version":    t.Version + 1,
		}
		if t.Content != nil {
			updates["title"] = t.Content.Title
			updates["abstract"] = t.Content.Abstract
			updates["content_locator"] = t.Content.ContentLocator
			updates["submitted_at"] = now
		}

		result := tx.Model(&model.Submission{}).
			Where("submission_id = ? AND version = ?", t.SubmissionID, t.Version).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		if t.Feedback != nil {
			t.Feedback.SubmissionID = t.SubmissionID
			t.Feedback.CreatedAt = now
			if err := tx.Create(t.Feedback).Error; err != nil {
				return err
			}
		}

		oldStatus := string(t.From)
		if err := tx.Create(&model.SubmissionStatusHistory{
			SubmissionID: t.SubmissionID,
			OldStatus:    &oldStatus,
			NewStatus:    string(t.To),
			Action:       t.Action,
			ChangedBy:    t.ActorID,
			CreatedAt:    now,
		}).Error; err != nil {
			return err
		}

		return tx.Preload("Student").
			Where("submission_id = ?", t.SubmissionID).
			First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *submissionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("submission_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
