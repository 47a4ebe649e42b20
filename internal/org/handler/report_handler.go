package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/service"
)

// ReportHandler internal-affairs reporting endpoints
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// DivisionProgress GET /api/reports/divisions
func (h *ReportHandler) DivisionProgress(c *gin.Context) {
	progress, err := h.svc.ListDivisionProgress(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": progress})
}

// DivisionReport GET /api/reports/divisions/:id
func (h *ReportHandler) DivisionReport(c *gin.Context) {
	report, err := h.svc.GetDivisionReport(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, report)
}

// OrganizationReport GET /api/reports/organization
func (h *ReportHandler) OrganizationReport(c *gin.Context) {
	report, err := h.svc.GetOrganizationReport(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, report)
}

// ExportOrganizationReport GET /api/reports/organization/export
func (h *ReportHandler) ExportOrganizationReport(c *gin.Context) {
	f, filename, err := h.svc.ExportOrganizationReport(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}

// SubmitReport POST /api/reports
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	var req service.SubmitReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	report, err := h.svc.SubmitReport(c.Request.Context(), req, GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, report)
}

// ListSubmissions GET /api/reports
func (h *ReportHandler) ListSubmissions(c *gin.Context) {
	reports, err := h.svc.ListSubmissions(c.Request.Context(), GetActor(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"items": reports})
}
