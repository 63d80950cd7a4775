package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"crm/internal/model"
	"crm/internal/report"
	"crm/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves aggregated figures and the spreadsheet export.
type ReportHandler struct {
	crmService service.CRMService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(crmService service.CRMService) *ReportHandler {
	return &ReportHandler{crmService: crmService}
}

// ReportResponse documents the payload of GET /report.
type ReportResponse struct {
	OK   bool          `json:"ok"`
	Data report.Report `json:"data"`
}

// Report godoc
// @Summary Dashboard figures
// @Description Deal summary, per-worker performance, produced quantity and attendance counts.
// @Tags report
// @Produce json
// @Param attendance_date query string false "Attendance day (YYYY-MM-DD)"
// @Param production_date query string false "Production day (YYYY-MM-DD)"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /report [get]
func (h *ReportHandler) Report(c echo.Context) error {
	filter, snap, err := h.snapshot(c)
	if err != nil {
		return err
	}
	return okData(c, report.Build(snap, filter))
}

// Export godoc
// @Summary Export as spreadsheet
// @Tags report
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param attendance_date query string false "Attendance day (YYYY-MM-DD)"
// @Param production_date query string false "Production day (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /export.xlsx [get]
func (h *ReportHandler) Export(c echo.Context) error {
	_, snap, err := h.snapshot(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, snap); err != nil {
		return err
	}
	filename := fmt.Sprintf("crm-%s.xlsx", model.Today())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ReportHandler) snapshot(c echo.Context) (model.SnapshotFilter, *model.Snapshot, error) {
	filter, err := parseFilter(c.QueryParam("attendance_date"), c.QueryParam("production_date"))
	if err != nil {
		return filter, nil, err
	}
	snap, err := h.crmService.Snapshot(c.Request().Context(), filter)
	if err != nil {
		return filter, nil, err
	}
	return filter, snap, nil
}
