package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"phd-portal/backend/internal/dto"
	"phd-portal/backend/internal/repository"
	"phd-portal/backend/internal/workflow"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response。
// 范围与看板一致：admin 全部，教师为其委员会下的学生，学生本人。
type ExportService interface {
	// ExportAssigned 导出操作人可见的文档列表
	ExportAssigned(ctx context.Context, actorID string, req *dto.SubmissionListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	guard  *Guard
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, guard *Guard, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, guard: guard, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAssigned：导出文档列表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Submissions"：每行一份文档
//   - Sheet "Summary"：按状态汇总，覆盖完整状态词汇表

var exportHeaders = []string{"ID", "Title", "Type", "Status", "Student", "Email", "Submitted At", "Updated At"}

func (s *exportService) ExportAssigned(ctx context.Context, actorID string, req *dto.SubmissionListRequest) (*bytes.Buffer, string, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, "", err
	}

	status, err := workflow.ParseStatus(req.Status)
	if err != nil {
		return nil, "", ErrInvalidStatusFilter
	}
	subType := workflow.SubmissionType(req.Type)
	if subType != "" && !subType.Valid() {
		return nil, "", ErrInvalidSubmissionType
	}

	scope, err := s.guard.Scope(ctx, actor)
	if err != nil {
		s.logger.Error("解析导出范围失败", zap.String("actor_id", actorID), zap.Error(err))
		return nil, "", err
	}

	// 不分页
	subs, _, err := s.repo.Submission.ListFiltered(ctx, repository.SubmissionFilter{
		Scope:  scope,
		Status: status,
		Type:   subType,
	})
	if err != nil {
		s.logger.Error("查询导出数据失败", zap.String("actor_id", actorID), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submissions"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeaders {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 38)
	f.SetColWidth(sheet, "B", "B", 48)
	f.SetColWidth(sheet, "C", "F", 24)
	f.SetColWidth(sheet, "G", "H", 20)

	statusCounts := make(map[workflow.Status]int)
	for i, sub := range subs {
		row := i + 2
		studentName, studentEmail := "", ""
		if sub.Student != nil {
			studentName, studentEmail = sub.Student.Name, sub.Student.Email
		}
		values := []interface{}{
			sub.SubmissionID,
			sub.Title,
			string(sub.Type),
			string(sub.Status),
			studentName,
			studentEmail,
			sub.SubmittedAt.Format(time.DateTime),
			sub.UpdatedAt.Format(time.DateTime),
		}
		for c, v := range values {
			f.SetCellValue(sheet, cell(colName(c), row), v)
		}
		statusCounts[sub.Status]++
	}

	const summary = "Summary"
	f.NewSheet(summary)
	f.SetCellValue(summary, "A1", "Status")
	f.SetCellValue(summary, "B1", "Count")
	f.SetCellStyle(summary, "A1", "B1", headerStyle)
	f.SetColWidth(summary, "A", "A", 34)
	for i, st := range workflow.AllStatuses() {
		f.SetCellValue(summary, cell("A", i+2), string(st))
		f.SetCellValue(summary, cell("B", i+2), statusCounts[st])
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("submissions_%s_%s.xlsx", actor.Role, time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
