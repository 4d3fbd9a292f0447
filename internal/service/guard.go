package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"phd-portal/backend/internal/model"
	"phd-portal/backend/internal/repository"
	"phd-portal/backend/internal/workflow"
)

// Action 受权限控制的文档操作
type Action string

const (
	ActionView    Action = "view"
	ActionReview  Action = "review"
	ActionForward Action = "forward"
)

// Guard 文档级权限判定
//
// 规则：
//   - admin 可对任意文档执行任意操作（流转是否合法由状态表决定）
//   - student 只能查看自己的文档，永远不能审核或转交
//   - 教师角色须在文档所属学生的委员会中担任对应角色；
//     审核 / 转交还要求文档处于该角色负责的阶段，否则返回 ErrWrongStage
//   - 学生未分配委员会时，不存在任何合法的教师审核人
type Guard struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGuard 创建 Guard 实例
func NewGuard(repo *repository.Repository, logger *zap.Logger) *Guard {
	return &Guard{repo: repo, logger: logger}
}

// Actor 从用户目录加载操作人；角色以目录为准
func (g *Guard) Actor(ctx context.Context, actorID string) (*model.User, error) {
	user, err := g.repo.User.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		g.logger.Error("查询用户失败", zap.String("user_id", actorID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// CanAct 判断 actor 能否对 sub 执行 action；允许时返回 nil
func (g *Guard) CanAct(ctx context.Context, actor *model.User, sub *model.Submission, action Action) error {
	switch {
	case actor.Role == workflow.RoleAdmin:
		return nil

	case actor.Role == workflow.RoleStudent:
		if action == ActionView && sub.StudentID == actor.UserID {
			return nil
		}
		return ErrForbidden

	case actor.Role.Faculty():
		if err := g.checkMembership(ctx, actor, sub.StudentID); err != nil {
			return err
		}
		if action == ActionView {
			return nil
		}
		if stage, _ := actor.Role.Stage(); sub.Status != stage {
			return ErrWrongStage
		}
		return nil
	}

	return ErrForbidden
}

// checkMembership 教师须在学生所属委员会中担任与其全局角色对应的委员会角色
func (g *Guard) checkMembership(ctx context.Context, actor *model.User, studentID string) error {
	student, err := g.repo.Student.GetByUserID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		g.logger.Error("查询学生档案失败", zap.String("student_id", studentID), zap.Error(err))
		return err
	}
	if student.CommitteeID == nil {
		return ErrForbidden
	}

	role, err := g.repo.Membership.GetRole(ctx, *student.CommitteeID, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		g.logger.Error("查询委员会成员失败",
			zap.String("committee_id", *student.CommitteeID),
			zap.String("user_id", actor.UserID),
			zap.Error(err))
		return err
	}

	if want, _ := actor.Role.CommitteeRole(); role != want {
		return ErrForbidden
	}
	return nil
}

// Scope 操作人可见的文档范围：admin 全部，学生本人，教师为其担任对应角色的委员会下全部学生
func (g *Guard) Scope(ctx context.Context, actor *model.User) (repository.Scope, error) {
	switch {
	case actor.Role == workflow.RoleAdmin:
		return repository.Scope{All: true}, nil
	case actor.Role == workflow.RoleStudent:
		return repository.Scope{StudentIDs: []string{actor.UserID}}, nil
	case actor.Role.Faculty():
		committeeRole, _ := actor.Role.CommitteeRole()
		ids, err := g.repo.Membership.FindStudentsFor(ctx, actor.UserID, committeeRole)
		if err != nil {
			return repository.Scope{}, err
		}
		return repository.Scope{StudentIDs: ids}, nil
	}
	return repository.Scope{}, nil
}
