package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crm/internal/model"
	"crm/internal/service"
)

// SeedHandler fills an empty store with demo records. It is only routed in development.
type SeedHandler struct {
	crmService service.CRMService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(crmService service.CRMService) *SeedHandler {
	return &SeedHandler{crmService: crmService}
}

// SeedResponse reports whether demo data was inserted.
type SeedResponse struct {
	OK     bool `json:"ok"`
	Seeded bool `json:"seeded"`
}

// SeedDemo godoc
// @Summary Insert demo records
// @Description Does nothing when clients or workers already exist.
// @Tags seed
// @Produce json
// @Success 200 {object} SeedResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /seed/demo [post]
func (h *SeedHandler) SeedDemo(c echo.Context) error {
	seeded, err := service.SeedDemo(c.Request().Context(), h.crmService, model.Today())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SeedResponse{OK: true, Seeded: seeded})
}
