package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "crm/internal/errors"
	"crm/internal/model"
	"crm/internal/service"
)

// CRMHandler serves the record-keeping API.
type CRMHandler struct {
	crmService service.CRMService
}

// NewCRMHandler creates a new CRM handler.
func NewCRMHandler(crmService service.CRMService) *CRMHandler {
	return &CRMHandler{crmService: crmService}
}

// SnapshotResponse documents the payload of GET /crm.
type SnapshotResponse struct {
	OK   bool           `json:"ok"`
	Data model.Snapshot `json:"data"`
}

// Snapshot godoc
// @Summary Read every collection
// @Description Returns clients, workers, deals, attendance and productions, newest first.
// @Tags crm
// @Produce json
// @Param attendance_date query string false "Only attendance of this day (YYYY-MM-DD)"
// @Param production_date query string false "Only productions of this day (YYYY-MM-DD)"
// @Success 200 {object} SnapshotResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /crm [get]
func (h *CRMHandler) Snapshot(c echo.Context) error {
	filter, err := parseFilter(c.QueryParam("attendance_date"), c.QueryParam("production_date"))
	if err != nil {
		return err
	}
	snap, err := h.crmService.Snapshot(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return okData(c, snap)
}

// Save godoc
// @Summary Create or update a record
// @Description The body shape depends on entity. A positive clientId, workerId, dealId or productionId updates that record; attendance is stored per worker and day.
// @Tags crm
// @Accept json
// @Produce json
// @Param entity query string true "clients, workers, deals, attendance or productions"
// @Param request body object true "Record fields"
// @Success 201 {object} OKResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /crm [post]
func (h *CRMHandler) Save(c echo.Context) error {
	body, err := readJSONObject(c)
	if err != nil {
		return err
	}
	kind, err := model.ParseEntityKind(c.QueryParam("entity"))
	if err != nil {
		return apperrors.ErrUnknownEntity
	}
	req, err := newCommandRequest(kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, req); err != nil {
		return apperrors.Validation(req.invalidMessage())
	}
	cmd, err := toCommand(req, c.Validate)
	if err != nil {
		return err
	}
	if err := h.crmService.Execute(c.Request().Context(), cmd); err != nil {
		return err
	}
	return ok(c, http.StatusCreated)
}

// Delete godoc
// @Summary Delete a record
// @Description Deleting a client removes its deals; deleting a worker removes its attendance and production and unassigns its deals.
// @Tags crm
// @Produce json
// @Param entity query string true "clients, workers, deals, attendance or productions"
// @Param id query int true "Record id"
// @Success 200 {object} OKResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /crm [delete]
func (h *CRMHandler) Delete(c echo.Context) error {
	id, err := parsePositiveID(c.QueryParam("id"))
	if err != nil {
		return err
	}
	kind, err := model.ParseEntityKind(c.QueryParam("entity"))
	if err != nil {
		return apperrors.ErrUnknownEntity
	}
	if err := h.crmService.Execute(c.Request().Context(), &service.DeleteEntity{Kind: kind, ID: id}); err != nil {
		return err
	}
	return ok(c, http.StatusOK)
}
