package controllers

import (
	"log/slog"
	"net/http"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

// DashboardSuccessResponse is the success response envelope for GET /admin/dashboard (200).
type DashboardSuccessResponse struct {
	Data  []*domain.EventRSVPSummary `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

type AdminController struct {
	Logger  *slog.Logger
	Service domain.CatalogService
}

func NewAdminController(logger *slog.Logger, svc domain.CatalogService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Service: svc,
	}
}

// Dashboard godoc
// @Summary Admin dashboard
// @Description RSVP totals per event, split into attending and not attending. Requires an admin token.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.DashboardSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/dashboard [get]
func (c *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := c.Service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rows)
}
