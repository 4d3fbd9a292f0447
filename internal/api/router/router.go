package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"phd-portal/backend/config"
	"phd-portal/backend/internal/api/handler"
	"phd-portal/backend/internal/api/middleware"
	"phd-portal/backend/internal/workflow"
	"phd-portal/backend/pkg/jwt"
	"phd-portal/backend/pkg/redis"
)

const rateLimitWindow = time.Minute

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": rdb != nil})
	})

	admin := middleware.RoleAuth(string(workflow.RoleAdmin))
	student := middleware.RoleAuth(string(workflow.RoleStudent))
	reviewers := middleware.RoleAuth(
		string(workflow.RoleAdmin),
		string(workflow.RoleDSCMember),
		string(workflow.RoleSupervisor),
		string(workflow.RoleCoSupervisor),
	)
	writeLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit, rateLimitWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 文档提交与审核
		submissions := authorized.Group("/submissions")
		{
			submissions.POST("", student, writeLimit, h.Submission.Submit)
			submissions.GET("/:id", h.Submission.GetSubmission)
			submissions.GET("/:id/feedback", h.Submission.ListFeedback)
			submissions.GET("/:id/history", h.Submission.ListHistory)
			submissions.POST("/:id/review", reviewers, writeLimit, h.Submission.Review)
			submissions.POST("/:id/forward", reviewers, writeLimit, h.Submission.Forward)
			submissions.PUT("/:id/resubmit", student, writeLimit, h.Submission.Resubmit)
			submissions.DELETE("/:id", admin, h.Submission.DeleteSubmission)
		}

		// 看板（范围由 Service 层按角色与委员会成员关系计算）
		dashboard := authorized.Group("/dashboard")
		{
			dashboard.GET("/assigned", h.Dashboard.ListAssigned)
			dashboard.GET("/counts", h.Dashboard.GetStatusCounts)
		}

		export := authorized.Group("/export")
		{
			export.GET("/assigned", h.Export.ExportAssigned)
		}

		// 委员会模块（管理员）
		committees := authorized.Group("/committees", admin)
		{
			committees.GET("", h.Committee.ListCommittees)
			committees.GET("/:id", h.Committee.GetCommittee)
			committees.POST("", h.Committee.CreateCommittee)
			committees.PUT("/:id", h.Committee.UpdateCommittee)
			committees.PUT("/:id/members", h.Committee.AddMember)
			committees.DELETE("/:id/members", h.Committee.RemoveMembersByRole)
			committees.DELETE("/:id/members/:user_id", h.Committee.RemoveMember)
			committees.GET("/:id/students", h.Committee.ListStudents)
		}

		// 学生档案
		students := authorized.Group("/students")
		{
			students.GET("/me", student, h.Student.GetMyProfile)
			students.POST("", admin, h.Student.CreateStudent)
			students.GET("/:id", admin, h.Student.GetStudent)
			students.PUT("/:id/committee", admin, h.Student.AssignCommittee)
			students.PUT("/:id/status", admin, h.Student.UpdateStatus)
		}

		// 用户模块
		users := authorized.Group("/users")
		{
			users.GET("/me", h.User.GetCurrentUser)
			users.GET("", admin, h.User.ListUsers)
			users.GET("/:id", admin, h.User.GetUser)
			users.PUT("/:id/role", admin, h.User.AssignRole)
		}
	}

	return r
}
