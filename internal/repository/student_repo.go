package repository

import (
	"context"

	"gorm.io/gorm"

	"phd-portal/backend/internal/model"
	pkgerrors "phd-portal/backend/pkg/errors"
)

// StudentRepository 学生档案数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByUserID(ctx context.Context, userID string) (*model.Student, error)
	ListByCommittee(ctx context.Context, committeeID string) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) ListByCommittee(ctx context.Context, committeeID string) ([]model.Student, error) {
	var list []model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("committee_id = ?", committeeID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// Update 带乐观锁更新状态与委员会归属
func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	oldVersion := student.Version
	result := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("user_id = ? AND version = ?", student.UserID, oldVersion).
		Updates(map[string]interface{}{
			"program":        student.Program,
			"student_number": student.StudentNumber,
			"status":         student.Status,
			"committee_id":   student.CommitteeID,
			"updated_by":     student.UpdatedBy,
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	student.Version = oldVersion + 1
	return nil
}
