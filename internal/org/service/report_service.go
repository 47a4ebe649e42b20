package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/oticonnect/backend/internal/config"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/workflow"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService internal-affairs progress reporting
type ReportService struct {
	divisionRepo *repository.DivisionRepository
	userRepo     *repository.UserRepository
	reportRepo   *repository.ReportRepository
	minioClient  *minio.Client
	bucket       string
	logger       *zap.Logger
}

func NewReportService(divisionRepo *repository.DivisionRepository, userRepo *repository.UserRepository, reportRepo *repository.ReportRepository, cfg *config.Config, logger *zap.Logger) *ReportService {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio unavailable, report archiving disabled", zap.Error(err))
			minioClient = nil
		}
	}
	return &ReportService{
		divisionRepo: divisionRepo,
		userRepo:     userRepo,
		reportRepo:   reportRepo,
		minioClient:  minioClient,
		bucket:       cfg.MinIO.Bucket,
		logger:       logger,
	}
}

func permitReportReader(actor workflow.Actor) error {
	if !actor.HasRole(entity.RoleAdmin, entity.RoleInternalAffairs) {
		return workflow.Denyf("only admin or internal affairs can read progress reports")
	}
	return nil
}

// DivisionProgress one division's standing in the progress listing
type DivisionProgress struct {
	DivisionID   string `json:"division_id"`
	DivisionName string `json:"division_name"`
	Type         string `json:"type"`
	HeadName     string `json:"head_name,omitempty"`
	MemberCount  int64  `json:"member_count"`
	TaskCount    int    `json:"task_count"`
	Progress     int    `json:"progress"`
}

// ListDivisionProgress progress of every division. Admin or internal affairs.
func (s *ReportService) ListDivisionProgress(ctx context.Context, actor workflow.Actor) ([]DivisionProgress, error) {
	if err := permitReportReader(actor); err != nil {
		return nil, err
	}

	divisions, err := s.divisionRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}

	out := make([]DivisionProgress, 0, len(divisions))
	for _, d := range divisions {
		members, err := s.userRepo.CountByMainDivision(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("count members of %s: %w", d.Name, err)
		}
		p := DivisionProgress{
			DivisionID:   d.ID,
			DivisionName: d.Name,
			Type:         d.Type,
			MemberCount:  members,
			TaskCount:    len(d.Tasks),
			Progress:     d.Tasks.Progress(),
		}
		if d.Head != nil {
			p.HeadName = d.Head.Name
		}
		out = append(out, p)
	}
	return out, nil
}

// DivisionReport one division's detail: standing, tasks and submissions
type DivisionReport struct {
	Division    DivisionProgress                `json:"division"`
	Tasks       entity.TaskList                 `json:"tasks"`
	Submissions []entity.DivisionProgressReport `json:"submissions"`
}

// GetDivisionReport detail for one division. Admin or internal affairs.
func (s *ReportService) GetDivisionReport(ctx context.Context, divisionID string, actor workflow.Actor) (*DivisionReport, error) {
	if err := permitReportReader(actor); err != nil {
		return nil, err
	}

	division, err := s.divisionRepo.FindByID(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	members, err := s.userRepo.CountByMainDivision(ctx, division.ID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	submissions, err := s.reportRepo.FindByDivision(ctx, divisionID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	report := &DivisionReport{
		Division: DivisionProgress{
			DivisionID:   division.ID,
			DivisionName: division.Name,
			Type:         division.Type,
			MemberCount:  members,
			TaskCount:    len(division.Tasks),
			Progress:     division.Tasks.Progress(),
		},
		Tasks:       division.Tasks,
		Submissions: submissions,
	}
	if division.Head != nil {
		report.Division.HeadName = division.Head.Name
	}
	return report, nil
}

// OrganizationReport organization-wide rollup
type OrganizationReport struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	DivisionCount   int                `json:"division_count"`
	TotalTasks      int                `json:"total_tasks"`
	AverageProgress int                `json:"average_progress"`
	ByType          map[string]int     `json:"by_type"`
	Divisions       []DivisionProgress `json:"divisions"`
}

// GetOrganizationReport organization totals and per-type progress averages.
// A type with no divisions reports 0.
func (s *ReportService) GetOrganizationReport(ctx context.Context, actor workflow.Actor) (*OrganizationReport, error) {
	divisions, err := s.ListDivisionProgress(ctx, actor)
	if err != nil {
		return nil, err
	}

	report := &OrganizationReport{
		GeneratedAt:   time.Now(),
		DivisionCount: len(divisions),
		ByType: map[string]int{
			entity.DivisionTypeMain:       0,
			entity.DivisionTypeManagerial: 0,
		},
		Divisions: divisions,
	}

	total := 0
	typeTotals := make(map[string]int)
	typeCounts := make(map[string]int)
	for _, d := range divisions {
		report.TotalTasks += d.TaskCount
		total += d.Progress
		typeTotals[d.Type] += d.Progress
		typeCounts[d.Type]++
	}
	if len(divisions) > 0 {
		report.AverageProgress = total / len(divisions)
	}
	for t, n := range typeCounts {
		report.ByType[t] = typeTotals[t] / n
	}
	return report, nil
}

// SubmitReportReq progress report submission
type SubmitReportReq struct {
	DivisionID         string `json:"division_id" binding:"required"`
	ReportType         string `json:"report_type"`
	Content            string `json:"content"`
	Status             string `json:"status"`
	ProgressPercentage int    `json:"progress_percentage"`
}

// SubmitReport records a progress submission. Division heads, CEO and CFO.
func (s *ReportService) SubmitReport(ctx context.Context, req SubmitReportReq, actor workflow.Actor) (*entity.DivisionProgressReport, error) {
	if !actor.HasRole(entity.RoleHead, entity.RoleCEO, entity.RoleCFO) {
		return nil, workflow.Denyf("only division heads, CEO or CFO can submit progress reports")
	}
	status := req.Status
	if status == "" {
		status = entity.ReportStatusPlanned
	}
	switch status {
	case entity.ReportStatusPlanned, entity.ReportStatusOngoing, entity.ReportStatusCompleted:
	default:
		return nil, workflow.Validatef("%q is not a valid report status", status)
	}
	if req.ProgressPercentage < 0 || req.ProgressPercentage > 100 {
		return nil, workflow.Validatef("progress_percentage must be between 0 and 100")
	}
	if _, err := s.divisionRepo.FindByID(ctx, req.DivisionID); err != nil {
		return nil, fmt.Errorf("division: %w", err)
	}

	report := &entity.DivisionProgressReport{
		ID:                 uuid.New().String(),
		DivisionID:         req.DivisionID,
		ReportType:         req.ReportType,
		Content:            req.Content,
		Status:             status,
		ProgressPercentage: req.ProgressPercentage,
		CreatedBy:          actor.ID,
		DivisionRole:       actor.Role,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

// ListSubmissions lists progress report submissions. Readers plus the
// submitting roles.
func (s *ReportService) ListSubmissions(ctx context.Context, actor workflow.Actor) ([]entity.DivisionProgressReport, error) {
	if !actor.HasRole(entity.RoleAdmin, entity.RoleInternalAffairs, entity.RoleHead, entity.RoleCEO, entity.RoleCFO) {
		return nil, workflow.Denyf("not allowed to read progress report submissions")
	}
	return s.reportRepo.FindAll(ctx)
}

var orgReportHeaders = []string{
	"Division", "Type", "Head", "Members", "Tasks", "Progress %",
}

// ExportOrganizationReport renders the organization report as an xlsx
// workbook. The workbook is also archived to object storage when configured;
// archiving is fire-and-forget and never fails the export.
func (s *ReportService) ExportOrganizationReport(ctx context.Context, actor workflow.Actor) (*excelize.File, string, error) {
	report, err := s.GetOrganizationReport(ctx, actor)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Progress"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range orgReportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, d := range report.Divisions {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), d.DivisionName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), d.Type)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), d.HeadName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), d.MemberCount)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), d.TaskCount)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), d.Progress)
	}

	summaryRow := len(report.Divisions) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("%d divisions", report.DivisionCount))
	f.SetCellValue(sheet, fmt.Sprintf("E%d", summaryRow), report.TotalTasks)
	f.SetCellValue(sheet, fmt.Sprintf("F%d", summaryRow), report.AverageProgress)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle)

	colWidths := []float64{24, 12, 20, 10, 8, 12}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("organization-report-%s.xlsx", report.GeneratedAt.Format("20060102-150405"))
	s.archiveReport(f, filename)
	return f, filename, nil
}

// archiveReport uploads the workbook to object storage in the background.
func (s *ReportService) archiveReport(f *excelize.File, filename string) {
	if s.minioClient == nil {
		return
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Warn("report archive: serialize workbook", zap.Error(err))
		return
	}
	data := buf.Bytes()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		objectName := "reports/" + filename
		_, err := s.minioClient.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		})
		if err != nil {
			s.logger.Warn("report archive: upload failed",
				zap.String("object", objectName), zap.Error(err))
			return
		}
		s.logger.Info("report archived", zap.String("object", objectName))
	}()
}
