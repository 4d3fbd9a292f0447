package handler

import (
	"github.com/gin-gonic/gin"

	"phd-portal/backend/internal/dto"
	"phd-portal/backend/internal/service"
	"phd-portal/backend/pkg/response"
)

// DashboardHandler 看板 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// ListAssigned 当前用户可见的文档列表
// GET /api/v1/dashboard/assigned?status=&type=&page=&page_size=
func (h *DashboardHandler) ListAssigned(c *gin.Context) {
	var req dto.SubmissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.dashboardSvc.ListAssigned(c.Request.Context(), actorID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetStatusCounts 按状态统计
// GET /api/v1/dashboard/counts
func (h *DashboardHandler) GetStatusCounts(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	counts, err := h.dashboardSvc.GetStatusCounts(c.Request.Context(), actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, counts)
}
