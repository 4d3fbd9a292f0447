package service

import (
	"go.uber.org/zap"

	"phd-portal/backend/config"
	"phd-portal/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Guard     *Guard
	Review    ReviewService
	Dashboard DashboardService
	Committee CommitteeService
	Student   StudentService
	User      UserService
	Export    ExportService
}

// NewService 创建 Service 聚合
// cache 与 notifier 均可为 nil：前者关闭计数缓存，后者关闭审核通知
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache CountCache,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	if notifier == nil || !cfg.Feature.NotifyOnReview {
		notifier = nopNotifier{}
	}

	guard := NewGuard(repo, logger)
	return &Service{
		Guard:     guard,
		Review:    NewReviewService(repo, guard, cache, notifier, logger),
		Dashboard: NewDashboardService(repo, guard, cache, cfg.Dashboard.CountCacheTTL, logger),
		Committee: NewCommitteeService(repo, cache, logger),
		Student:   NewStudentService(repo, cache, logger),
		User:      NewUserService(repo, cache, logger),
		Export:    NewExportService(repo, guard, logger),
	}
}
