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

// CommitteeRepository 委员会数据访问接口
type CommitteeRepository interface {
	Create(ctx context.Context, committee *model.Committee) error
	GetByID(ctx context.Context, id string) (*model.Committee, error)
	List(ctx context.Context, status string) ([]model.Committee, error)
	Update(ctx context.Context, committee *model.Committee) error
}

// committeeRepo CommitteeRepository 的 GORM 实现
type committeeRepo struct {
	db *gorm.DB
}

// NewCommitteeRepo 创建 CommitteeRepository 实例
func NewCommitteeRepo(db *gorm.DB) CommitteeRepository {
	return &committeeRepo{db: db}
}

func (r *committeeRepo) Create(ctx context.Context, committee *model.Committee) error {
	return r.db.WithContext(ctx).Create(committee).Error
}

// GetByID 查询委员会及其成员
func (r *committeeRepo) GetByID(ctx context.Context, id string) (*model.Committee, error) {
	var committee model.Committee
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("committee_role ASC, created_at ASC")
		}).
		Preload("Members.User").
		Where("committee_id = ?", id).
		First(&committee).Error
	if err != nil {
		return nil, err
	}
	return &committee, nil
}

func (r *committeeRepo) List(ctx context.Context, status string) ([]model.Committee, error) {
	var list []model.Committee
	db := r.db.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("formed_at DESC").Find(&list).Error
	return list, err
}

// Update 带乐观锁更新名称、状态与成立日期
func (r *committeeRepo) Update(ctx context.Context, committee *model.Committee) error {
	oldVersion := committee.Version
	result := r.db.WithContext(ctx).
		Model(&model.Committee{}).
		Where("committee_id = ? AND version = ?", committee.CommitteeID, oldVersion).
		Updates(map[string]interface{}{
			"name":       committee.Name,
			"status":     committee.Status,
			"formed_at":  committee.FormedAt,
			"updated_by": committee.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	committee.Version = oldVersion + 1
	return nil
}

// ── 成员关系索引 ──

// MembershipRepository 委员会成员关系数据访问接口
type MembershipRepository interface {
	// Replace 添加成员；同一委员会内已有角色时替换为新角色
	Replace(ctx context.Context, m *model.CommitteeMembership) error
	Remove(ctx context.Context, committeeID, userID string) error
	RemoveAllByRole(ctx context.Context, committeeID string, role workflow.CommitteeRole) (int64, error)
	GetRole(ctx context.Context, committeeID, userID string) (workflow.CommitteeRole, error)
	// FindStudentsFor 返回 userID 以 role 身份所在委员会的全部学生 user_id
	FindStudentsFor(ctx context.Context, userID string, role workflow.CommitteeRole) ([]string, error)
}

type membershipRepo struct {
	db *gorm.DB
}

// NewMembershipRepo 创建 MembershipRepository 实例
func NewMembershipRepo(db *gorm.DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Replace(ctx context.Context, m *model.CommitteeMembership) error {
	m.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "committee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"committee_role", "updated_at", "updated_by"}),
		}).
		Create(m).Error
}

func (r *membershipRepo) Remove(ctx context.Context, committeeID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("committee_id = ? AND user_id = ?", committeeID, userID).
		Delete(&model.CommitteeMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *membershipRepo) RemoveAllByRole(ctx context.Context, committeeID string, role workflow.CommitteeRole) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("committee_id = ? AND committee_role = ?", committeeID, role).
		Delete(&model.CommitteeMembership{})
	return result.RowsAffected, result.Error
}

func (r *membershipRepo) GetRole(ctx context.Context, committeeID, userID string) (workflow.CommitteeRole, error) {
	var m model.CommitteeMembership
	err := r.db.WithContext(ctx).
		Select("committee_role").
		Where("committee_id = ? AND user_id = ?", committeeID, userID).
		First(&m).Error
	if err != nil {
		return "", err
	}
	return m.CommitteeRole, nil
}

func (r *membershipRepo) FindStudentsFor(ctx context.Context, userID string, role workflow.CommitteeRole) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Joins("JOIN committee_memberships m ON m.committee_id = students.committee_id").
		Where("m.user_id = ? AND m.committee_role = ?", userID, role).
		Pluck("students.user_id", &ids).Error
	return ids, err
}
