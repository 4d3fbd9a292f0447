package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"phd-portal/backend/internal/dto"
	"phd-portal/backend/internal/model"
	"phd-portal/backend/internal/repository"
	"phd-portal/backend/internal/workflow"
)

// CountCache 看板计数缓存，由 pkg/redis.Client 实现
// 任何状态流转都会递增代号，旧代号下的缓存随之失效
type CountCache interface {
	CountGeneration(ctx context.Context) (int64, error)
	BumpCountGeneration(ctx context.Context) error
	GetCounts(ctx context.Context, actorID string, gen int64) (map[string]int64, bool, error)
	SetCounts(ctx context.Context, actorID string, gen int64, counts map[string]int64, ttl time.Duration) error
}

// bumpCounts 使计数缓存失效；缓存不可用时只记录日志
func bumpCounts(ctx context.Context, cache CountCache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.BumpCountGeneration(ctx); err != nil {
		logger.Warn("看板计数缓存失效失败", zap.Error(err))
	}
}

// DashboardService 看板查询接口（只读）
type DashboardService interface {
	ListAssigned(ctx context.Context, actorID string, req *dto.SubmissionListRequest) ([]dto.SubmissionResponse, int64, error)
	// GetStatusCounts 统计操作人可见范围内各状态的文档数；存储故障时记录日志并返回全 0
	GetStatusCounts(ctx context.Context, actorID string) (*dto.StatusCountsResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	guard  *Guard
	cache  CountCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例；cache 为 nil 或 ttl 为 0 时不缓存
func NewDashboardService(repo *repository.Repository, guard *Guard, cache CountCache, ttl time.Duration, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, guard: guard, cache: cache, ttl: ttl, logger: logger}
}

// ────────────────────── ListAssigned ──────────────────────

func (s *dashboardService) ListAssigned(ctx context.Context, actorID string, req *dto.SubmissionListRequest) ([]dto.SubmissionResponse, int64, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}

	status, err := workflow.ParseStatus(req.Status)
	if err != nil {
		return nil, 0, ErrInvalidStatusFilter
	}
	subType := workflow.SubmissionType(req.Type)
	if subType != "" && !subType.Valid() {
		return nil, 0, ErrInvalidSubmissionType
	}

	scope, err := s.guard.Scope(ctx, actor)
	if err != nil {
		s.logger.Error("解析看板范围失败", zap.String("actor_id", actorID), zap.Error(err))
		return nil, 0, err
	}

	subs, total, err := s.repo.Submission.ListFiltered(ctx, repository.SubmissionFilter{
		Scope:  scope,
		Status: status,
		Type:   subType,
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询看板列表失败", zap.String("actor_id", actorID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		result = append(result, dto.NewSubmissionResponse(&subs[i]))
	}
	return result, total, nil
}

// ────────────────────── GetStatusCounts ──────────────────────

func (s *dashboardService) GetStatusCounts(ctx context.Context, actorID string) (*dto.StatusCountsResponse, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	gen, cacheOK := s.generation(ctx)
	if cacheOK {
		cached, hit, err := s.cache.GetCounts(ctx, actorID, gen)
		if err != nil {
			s.logger.Warn("读取看板计数缓存失败", zap.Error(err))
		} else if hit {
			return buildCounts(actor, cached), nil
		}
	}

	counts, err := s.countFromStore(ctx, actor)
	if err != nil {
		s.logger.Error("统计看板计数失败，返回全 0", zap.String("actor_id", actorID), zap.Error(err))
		return buildCounts(actor, nil), nil
	}

	if cacheOK {
		if err := s.cache.SetCounts(ctx, actorID, gen, counts, s.ttl); err != nil {
			s.logger.Warn("写入看板计数缓存失败", zap.Error(err))
		}
	}
	return buildCounts(actor, counts), nil
}

func (s *dashboardService) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return 0, false
	}
	gen, err := s.cache.CountGeneration(ctx)
	if err != nil {
		s.logger.Warn("读取看板计数代号失败", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *dashboardService) countFromStore(ctx context.Context, actor *model.User) (map[string]int64, error) {
	scope, err := s.guard.Scope(ctx, actor)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.Submission.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(byStatus))
	for status, n := range byStatus {
		counts[string(status)] = n
	}
	return counts, nil
}

// buildCounts 以完整状态词汇表补齐计数，再由计数推导看板卡片
func buildCounts(actor *model.User, raw map[string]int64) *dto.StatusCountsResponse {
	counts := make(map[string]int64)
	for _, st := range workflow.AllStatuses() {
		counts[string(st)] = raw[string(st)]
	}

	tiles := dto.DashboardTiles{
		Approved:    counts[string(workflow.StatusApproved)],
		AwaitingDSC: counts[string(workflow.StatusPendingDSCApproval)],
		SentToAdmin: counts[string(workflow.StatusPending)],
	}
	if stage, ok := actor.Role.Stage(); ok {
		tiles.PendingReviews = counts[string(stage)]
	} else {
		// 学生：仍在流转中的文档
		for _, st := range workflow.AllStatuses() {
			if !st.Terminal() && st != workflow.StatusRevisionRequired {
				tiles.PendingReviews += counts[string(st)]
			}
		}
	}

	return &dto.StatusCountsResponse{Counts: counts, Tiles: tiles}
}
