package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"phd-portal/backend/internal/dto"
	"phd-portal/backend/internal/model"
	"phd-portal/backend/internal/repository"
	"phd-portal/backend/internal/workflow"
	pkgerrors "phd-portal/backend/pkg/errors"
)

// CommitteeService 委员会与成员管理接口（仅管理员）
type CommitteeService interface {
	Create(ctx context.Context, req *dto.CreateCommitteeRequest, callerID string) (*dto.CommitteeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CommitteeResponse, error)
	List(ctx context.Context, req *dto.CommitteeListRequest) ([]dto.CommitteeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCommitteeRequest, callerID string) (*dto.CommitteeResponse, error)
	// AddMember 添加成员；该用户在此委员会已有角色时替换
	AddMember(ctx context.Context, committeeID string, req *dto.AddMemberRequest, callerID string) (*dto.CommitteeResponse, error)
	RemoveMember(ctx context.Context, committeeID, userID string) error
	RemoveAllByRole(ctx context.Context, committeeID string, role workflow.CommitteeRole) (int64, error)
}

type committeeService struct {
	repo   *repository.Repository
	cache  CountCache
	logger *zap.Logger
}

// NewCommitteeService 创建 CommitteeService 实例
func NewCommitteeService(repo *repository.Repository, cache CountCache, logger *zap.Logger) CommitteeService {
	return &committeeService{repo: repo, cache: cache, logger: logger}
}

const dateLayout = "2006-01-02"

// ────────────────────── Create ──────────────────────

func (s *committeeService) Create(ctx context.Context, req *dto.CreateCommitteeRequest, callerID string) (*dto.CommitteeResponse, error) {
	formedAt, err := time.Parse(dateLayout, req.FormedAt)
	if err != nil {
		return nil, ErrInvalidDate
	}

	committee := &model.Committee{
		Name:     strings.TrimSpace(req.Name),
		Status:   "active",
		FormedAt: formedAt,
	}
	committee.CreatedBy = &callerID
	committee.UpdatedBy = &callerID

	if err := s.repo.Committee.Create(ctx, committee); err != nil {
		s.logger.Error("创建委员会失败", zap.Error(err))
		return nil, err
	}

	resp := dto.NewCommitteeResponse(committee)
	return &resp, nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *committeeService) GetByID(ctx context.Context, id string) (*dto.CommitteeResponse, error) {
	committee, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCommitteeResponse(committee)
	return &resp, nil
}

func (s *committeeService) get(ctx context.Context, id string) (*model.Committee, error) {
	committee, err := s.repo.Committee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommitteeNotFound
		}
		s.logger.Error("查询委员会失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return committee, nil
}

func (s *committeeService) List(ctx context.Context, req *dto.CommitteeListRequest) ([]dto.CommitteeResponse, error) {
	list, err := s.repo.Committee.List(ctx, req.Status)
	if err != nil {
		s.logger.Error("列出委员会失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CommitteeResponse, 0, len(list))
	for i := range list {
		result = append(result, dto.NewCommitteeResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *committeeService) Update(ctx context.Context, id string, req *dto.UpdateCommitteeRequest, callerID string) (*dto.CommitteeResponse, error) {
	committee, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		committee.Name = strings.TrimSpace(*req.Name)
	}
	if req.Status != nil {
		committee.Status = *req.Status
	}
	if req.FormedAt != nil {
		formedAt, err := time.Parse(dateLayout, *req.FormedAt)
		if err != nil {
			return nil, ErrInvalidDate
		}
		committee.FormedAt = formedAt
	}
	committee.UpdatedBy = &callerID

	if err := s.repo.Committee.Update(ctx, committee); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrConflict
		}
		s.logger.Error("更新委员会失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := dto.NewCommitteeResponse(committee)
	return &resp, nil
}

// ────────────────────── 成员管理 ──────────────────────

func (s *committeeService) AddMember(ctx context.Context, committeeID string, req *dto.AddMemberRequest, callerID string) (*dto.CommitteeResponse, error) {
	committee, err := s.get(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	if committee.Status != "active" {
		return nil, ErrCommitteeInactive
	}

	role := workflow.CommitteeRole(req.CommitteeRole)
	if !role.Valid() {
		return nil, ErrMemberRoleMismatch
	}

	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	// 权限判定按全局角色映射委员会角色，不一致的成员关系永远不会生效
	if want, ok := user.Role.CommitteeRole(); !ok || want != role {
		return nil, ErrMemberRoleMismatch
	}

	membership := &model.CommitteeMembership{
		CommitteeID:   committeeID,
		UserID:        user.UserID,
		CommitteeRole: role,
	}
	membership.CreatedBy = &callerID
	membership.UpdatedBy = &callerID

	if err := s.repo.Membership.Replace(ctx, membership); err != nil {
		s.logger.Error("添加委员会成员失败",
			zap.String("committee_id", committeeID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return nil, err
	}
	bumpCounts(ctx, s.cache, s.logger)

	return s.GetByID(ctx, committeeID)
}

func (s *committeeService) RemoveMember(ctx context.Context, committeeID, userID string) error {
	if _, err := s.get(ctx, committeeID); err != nil {
		return err
	}
	if err := s.repo.Membership.Remove(ctx, committeeID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		s.logger.Error("移除委员会成员失败", zap.String("committee_id", committeeID), zap.Error(err))
		return err
	}
	bumpCounts(ctx, s.cache, s.logger)
	return nil
}

func (s *committeeService) RemoveAllByRole(ctx context.Context, committeeID string, role workflow.CommitteeRole) (int64, error) {
	if !role.Valid() {
		return 0, ErrMemberRoleMismatch
	}
	if _, err := s.get(ctx, committeeID); err != nil {
		return 0, err
	}

	n, err := s.repo.Membership.RemoveAllByRole(ctx, committeeID, role)
	if err != nil {
		s.logger.Error("批量移除委员会成员失败",
			zap.String("committee_id", committeeID),
			zap.String("role", string(role)),
			zap.Error(err))
		return 0, err
	}
	if n > 0 {
		bumpCounts(ctx, s.cache, s.logger)
	}
	return n, nil
}
