package service

import (
	"context"
	"errors"
	"fmt"
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

// ReviewService 文档提交、审核与转交业务接口
type ReviewService interface {
	// Submit 学生提交文档，初始状态由文档类型决定
	Submit(ctx context.Context, studentID string, req *dto.SubmitRequest) (*dto.SubmissionResponse, error)
	Get(ctx context.Context, actorID, submissionID string) (*dto.SubmissionResponse, error)
	// Review 按流转表推进状态，并在同一事务中追加一条反馈
	Review(ctx context.Context, actorID, submissionID string, req *dto.ReviewRequest) (*dto.SubmissionResponse, error)
	// Forward 不记录决定与反馈，仅推进状态
	Forward(ctx context.Context, actorID, submissionID string) (*dto.SubmissionResponse, error)
	// Resubmit 学生在退修后更新内容，状态回到该类型的初始状态
	Resubmit(ctx context.Context, studentID, submissionID string, req *dto.ResubmitRequest) (*dto.SubmissionResponse, error)
	Delete(ctx context.Context, actorID, submissionID string) error
	ListFeedback(ctx context.Context, actorID, submissionID string) ([]dto.FeedbackResponse, error)
	ListHistory(ctx context.Context, actorID, submissionID string) ([]dto.StatusHistoryResponse, error)
}

type reviewService struct {
	repo     *repository.Repository
	guard    *Guard
	cache    CountCache
	notifier Notifier
	logger   *zap.Logger
}

// NewReviewService 创建 ReviewService 实例；cache 可为 nil
func NewReviewService(repo *repository.Repository, guard *Guard, cache CountCache, notifier Notifier, logger *zap.Logger) ReviewService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &reviewService{repo: repo, guard: guard, cache: cache, notifier: notifier, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *reviewService) Submit(ctx context.Context, studentID string, req *dto.SubmitRequest) (*dto.SubmissionResponse, error) {
	actor, err := s.guard.Actor(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != workflow.RoleStudent {
		return nil, ErrForbidden
	}

	subType := workflow.SubmissionType(strings.TrimSpace(req.Type))
	initial, err := workflow.InitialStatus(subType)
	if err != nil {
		return nil, ErrInvalidSubmissionType
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	locator := strings.TrimSpace(req.ContentLocator)
	if subType.RequiresContent() && locator == "" {
		return nil, ErrContentRequired
	}

	student, err := s.repo.Student.GetByUserID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生档案失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	if !eligible(student, subType) {
		return nil, ErrStudentNotEligible
	}

	sub := &model.Submission{
		StudentID:      studentID,
		Type:           subType,
		Status:         initial,
		Title:          title,
		Abstract:       strings.TrimSpace(req.Abstract),
		ContentLocator: locator,
		SubmittedAt:    time.Now(),
	}
	sub.CreatedBy = &studentID
	sub.UpdatedBy = &studentID

	if err := s.repo.Submission.Create(ctx, sub); err != nil {
		s.logger.Error("创建提交失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	sub.Student = actor
	bumpCounts(ctx, s.cache, s.logger)

	s.logger.Info("文档已提交",
		zap.String("submission_id", sub.SubmissionID),
		zap.String("type", string(subType)),
		zap.String("status", string(initial)))

	resp := dto.NewSubmissionResponse(sub)
	return &resp, nil
}

// eligible 申请允许待审或在读学生提交；研究类文档要求在读且已分配委员会
func eligible(student *model.Student, t workflow.SubmissionType) bool {
	if t == workflow.TypeApplication {
		return student.Status == model.StudentStatusPending || student.Status == model.StudentStatusActive
	}
	return student.Status == model.StudentStatusActive && student.CommitteeID != nil
}

// ────────────────────── Get ──────────────────────

func (s *reviewService) Get(ctx context.Context, actorID, submissionID string) (*dto.SubmissionResponse, error) {
	_, sub, err := s.loadVisible(ctx, actorID, submissionID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewSubmissionResponse(sub)
	return &resp, nil
}

// loadVisible 加载操作人可查看的文档；无权查看与不存在一律返回 ErrSubmissionNotFound
func (s *reviewService) loadVisible(ctx context.Context, actorID, submissionID string) (*model.User, *model.Submission, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	sub, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.guard.CanAct(ctx, actor, sub, ActionView); err != nil {
		if errors.Is(err, ErrForbidden) {
			return nil, nil, ErrSubmissionNotFound
		}
		return nil, nil, err
	}
	return actor, sub, nil
}

func (s *reviewService) getSubmission(ctx context.Context, submissionID string) (*model.Submission, error) {
	sub, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}
	return sub, nil
}

// ────────────────────── Review ──────────────────────

func (s *reviewService) Review(ctx context.Context, actorID, submissionID string, req *dto.ReviewRequest) (*dto.SubmissionResponse, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	sub, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanAct(ctx, actor, sub, ActionReview); err != nil {
		return nil, err
	}

	decision, err := workflow.ParseDecision(req.Decision)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, req.Decision)
	}
	next, err := workflow.NextStatus(sub.Status, actor.Role, decision)
	if err != nil {
		return nil, err
	}
	comments := strings.TrimSpace(req.Comments)
	if decision.RequiresComment() && comments == "" {
		return nil, ErrCommentRequired
	}

	updated, err := s.transition(ctx, &repository.Transition{
		SubmissionID: sub.SubmissionID,
		From:         sub.Status,
		To:           next,
		Version:      sub.Version,
		ActorID:      actor.UserID,
		Action:       repository.ActionReview,
		Feedback: &model.Feedback{
			AuthorID: actor.UserID,
			Decision: decision.Label(),
			Comment:  feedbackComment(decision, comments),
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("文档已审核",
		zap.String("submission_id", sub.SubmissionID),
		zap.String("actor_id", actor.UserID),
		zap.String("decision", decision.Label()),
		zap.String("from", string(sub.Status)),
		zap.String("to", string(next)))

	s.notify(ctx, actor, updated, decision, comments)

	resp := dto.NewSubmissionResponse(updated)
	return &resp, nil
}

// feedbackComment 反馈正文格式 "decision: comments"
func feedbackComment(d workflow.Decision, comments string) string {
	if comments == "" {
		return d.Label()
	}
	return d.Label() + ": " + comments
}

func (s *reviewService) notify(ctx context.Context, reviewer *model.User, sub *model.Submission, d workflow.Decision, comments string) {
	if sub.Student == nil {
		return
	}
	err := s.notifier.NotifyDecision(ctx, &DecisionNotice{
		To:           sub.Student.Email,
		StudentName:  sub.Student.Name,
		SubmissionID: sub.SubmissionID,
		Title:        sub.Title,
		Type:         string(sub.Type),
		Decision:     d.Label(),
		Status:       string(sub.Status),
		Comment:      comments,
		ReviewerName: reviewer.Name,
	})
	if err != nil {
		s.logger.Warn("发送审核通知失败", zap.String("submission_id", sub.SubmissionID), zap.Error(err))
	}
}

// ────────────────────── Forward ──────────────────────

func (s *reviewService) Forward(ctx context.Context, actorID, submissionID string) (*dto.SubmissionResponse, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	sub, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanAct(ctx, actor, sub, ActionForward); err != nil {
		return nil, err
	}

	next, err := workflow.ForwardTarget(sub.Status, actor.Role)
	if err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, &repository.Transition{
		SubmissionID: sub.SubmissionID,
		From:         sub.Status,
		To:           next,
		Version:      sub.Version,
		ActorID:      actor.UserID,
		Action:       repository.ActionForward,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("文档已转交",
		zap.String("submission_id", sub.SubmissionID),
		zap.String("actor_id", actor.UserID),
		zap.String("from", string(sub.Status)),
		zap.String("to", string(next)))

	resp := dto.NewSubmissionResponse(updated)
	return &resp, nil
}

// transition 落库并把并发冲突翻译为 ErrConflict
func (s *reviewService) transition(ctx context.Context, t *repository.Transition) (*model.Submission, error) {
	updated, err := s.repo.Submission.Transition(ctx, t)
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, ErrConflict
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("状态流转失败",
			zap.String("submission_id", t.SubmissionID),
			zap.String("action", t.Action),
			zap.Error(err))
		return nil, err
	}
	bumpCounts(ctx, s.cache, s.logger)
	return updated, nil
}

// ────────────────────── Resubmit ──────────────────────

func (s *reviewService) Resubmit(ctx context.Context, studentID, submissionID string, req *dto.ResubmitRequest) (*dto.SubmissionResponse, error) {
	_, sub, err := s.loadVisible(ctx, studentID, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.StudentID != studentID {
		return nil, ErrForbidden
	}
	if sub.Status != workflow.StatusRevisionRequired {
		return nil, fmt.Errorf("%w: 仅退修状态可重新提交", ErrInvalidTransition)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	locator := strings.TrimSpace(req.ContentLocator)
	if sub.Type.RequiresContent() && locator == "" {
		return nil, ErrContentRequired
	}
	initial, err := workflow.InitialStatus(sub.Type)
	if err != nil {
		return nil, ErrInvalidSubmissionType
	}

	updated, err := s.transition(ctx, &repository.Transition{
		SubmissionID: sub.SubmissionID,
		From:         sub.Status,
		To:           initial,
		Version:      sub.Version,
		ActorID:      studentID,
		Action:       repository.ActionResubmit,
		Content: &repository.ContentUpdate{
			Title:          title,
			Abstract:       strings.TrimSpace(req.Abstract),
			ContentLocator: locator,
		},
	})
	if err != nil {
		return nil, err
	}

	resp := dto.NewSubmissionResponse(updated)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *reviewService) Delete(ctx context.Context, actorID, submissionID string) error {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.Role != workflow.RoleAdmin {
		return ErrForbidden
	}
	sub, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.Type != workflow.TypeApplication {
		return ErrDeleteNotAllowed
	}

	if err := s.repo.Submission.Delete(ctx, submissionID, actorID); err != nil {
		s.logger.Error("删除提交失败", zap.String("submission_id", submissionID), zap.Error(err))
		return err
	}
	bumpCounts(ctx, s.cache, s.logger)
	return nil
}

// ────────────────────── 反馈与状态记录 ──────────────────────

func (s *reviewService) ListFeedback(ctx context.Context, actorID, submissionID string) ([]dto.FeedbackResponse, error) {
	if _, _, err := s.loadVisible(ctx, actorID, submissionID); err != nil {
		return nil, err
	}

	list, err := s.repo.Feedback.ListBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("查询反馈失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.FeedbackResponse, 0, len(list))
	for i := range list {
		result = append(result, dto.NewFeedbackResponse(&list[i]))
	}
	return result, nil
}

func (s *reviewService) ListHistory(ctx context.Context, actorID, submissionID string) ([]dto.StatusHistoryResponse, error) {
	if _, _, err := s.loadVisible(ctx, actorID, submissionID); err != nil {
		return nil, err
	}

	list, err := s.repo.StatusHistory.ListBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("查询状态记录失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StatusHistoryResponse, 0, len(list))
	for i := range list {
		result = append(result, dto.NewStatusHistoryResponse(&list[i]))
	}
	return result, nil
}
