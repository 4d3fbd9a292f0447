package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"phd-portal/backend/internal/dto"
	"phd-portal/backend/internal/model"
	"phd-portal/backend/internal/repository"
	"phd-portal/backend/internal/workflow"
	pkgerrors "phd-portal/backend/pkg/errors"
)

// StudentService 学生档案管理接口
type StudentService interface {
	CreateProfile(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error)
	Get(ctx context.Context, userID string) (*dto.StudentResponse, error)
	ListByCommittee(ctx context.Context, committeeID string) ([]dto.StudentResponse, error)
	// AssignCommittee 为学生指定委员会；committeeID 为 nil 时解除
	AssignCommittee(ctx context.Context, userID string, committeeID *string, callerID string) (*dto.StudentResponse, error)
	UpdateStatus(ctx context.Context, userID, status, callerID string) (*dto.StudentResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	cache  CountCache
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, cache CountCache, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, cache: cache, logger: logger}
}

func (s *studentService) CreateProfile(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != workflow.RoleStudent {
		return nil, ErrNotStudentUser
	}

	if _, err := s.repo.Student.GetByUserID(ctx, req.UserID); err == nil {
		return nil, ErrStudentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	student := &model.Student{
		UserID:  user.UserID,
		Program: req.Program,
		Status:  model.StudentStatusPending,
	}
	if req.StudentNumber != "" {
		student.StudentNumber = &req.StudentNumber
	}
	student.CreatedBy = &callerID
	student.UpdatedBy = &callerID

	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生档案失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	student.User = user

	resp := dto.NewStudentResponse(student)
	return &resp, nil
}

func (s *studentService) Get(ctx context.Context, userID string) (*dto.StudentResponse, error) {
	student, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewStudentResponse(student)
	return &resp, nil
}

func (s *studentService) get(ctx context.Context, userID string) (*model.Student, error) {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生档案失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return student, nil
}

func (s *studentService) ListByCommittee(ctx context.Context, committeeID string) ([]dto.StudentResponse, error) {
	if _, err := s.repo.Committee.GetByID(ctx, committeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommitteeNotFound
		}
		return nil, err
	}

	list, err := s.repo.Student.ListByCommittee(ctx, committeeID)
	if err != nil {
		s.logger.Error("查询委员会学生失败", zap.String("committee_id", committeeID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(list))
	for i := range list {
		result = append(result, dto.NewStudentResponse(&list[i]))
	}
	return result, nil
}

func (s *studentService) AssignCommittee(ctx context.Context, userID string, committeeID *string, callerID string) (*dto.StudentResponse, error) {
	student, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if committeeID != nil && *committeeID != "" {
		committee, err := s.repo.Committee.GetByID(ctx, *committeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommitteeNotFound
			}
			return nil, err
		}
		if committee.Status != "active" {
			return nil, ErrCommitteeInactive
		}
		student.CommitteeID = &committee.CommitteeID
	} else {
		student.CommitteeID = nil
	}
	student.UpdatedBy = &callerID

	if err := s.update(ctx, student); err != nil {
		return nil, err
	}
	bumpCounts(ctx, s.cache, s.logger)

	resp := dto.NewStudentResponse(student)
	return &resp, nil
}

func (s *studentService) UpdateStatus(ctx context.Context, userID, status, callerID string) (*dto.StudentResponse, error) {
	if !model.ValidStudentStatus(status) {
		return nil, ErrInvalidStudentState
	}
	student, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	student.Status = status
	student.UpdatedBy = &callerID
	if err := s.update(ctx, student); err != nil {
		return nil, err
	}

	resp := dto.NewStudentResponse(student)
	return &resp, nil
}

func (s *studentService) update(ctx context.Context, student *model.Student) error {
	if err := s.repo.Student.Update(ctx, student); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrConflict
		}
		s.logger.Error("更新学生档案失败", zap.String("user_id", student.UserID), zap.Error(err))
		return err
	}
	return nil
}
