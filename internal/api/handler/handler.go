package handler

import "phd-portal/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Submission *SubmissionHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
	Committee  *CommitteeHandler
	Student    *StudentHandler
	User       *UserHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Submission: NewSubmissionHandler(svc.Review),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
		Export:     NewExportHandler(svc.Export),
		Committee:  NewCommitteeHandler(svc.Committee, svc.Student),
		Student:    NewStudentHandler(svc.Student),
		User:       NewUserHandler(svc.User),
	}
}
