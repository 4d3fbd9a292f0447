package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"phd-portal/backend/internal/dto"
	"phd-portal/backend/internal/repository"
	"phd-portal/backend/internal/workflow"
	pkgerrors "phd-portal/backend/pkg/errors"
)

// UserService 用户目录查询与角色管理接口
// 账号本身由外部认证服务维护，这里只读取并调整角色
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	// AssignRole 管理员修改用户角色，不能修改自己
	AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	cache  CountCache
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, cache CountCache, logger *zap.Logger) UserService {
	return &userService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, workflow.Role(req.Role), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, dto.NewUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── AssignRole ──────────────────────

func (s *userService) AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) (*dto.UserResponse, error) {
	if id == callerID {
		return nil, ErrUserSelfRoleChange
	}
	role := workflow.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if user.Role == role {
		resp := dto.NewUserResponse(user)
		return &resp, nil
	}

	previous := user.Role
	user.Role = role
	user.UpdatedBy = &callerID

	if err := s.repo.User.UpdateRole(ctx, user); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrConflict
		}
		s.logger.Error("分配角色失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	// 角色决定看板范围
	bumpCounts(ctx, s.cache, s.logger)

	s.logger.Info("用户角色已变更",
		zap.String("user_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(role)),
		zap.String("by", callerID))

	resp := dto.NewUserResponse(user)
	return &resp, nil
}
