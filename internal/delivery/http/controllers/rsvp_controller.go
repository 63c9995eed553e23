package controllers

import (
	"fmt"
	"log/slog"
	"net/http"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

// RSVPSuccessResponse is the success response envelope for POST /events/{eventID}/rsvp.
type RSVPSuccessResponse struct {
	Data  *domain.RSVPResult `json:"data"`
	Error *helpers.APIError  `json:"error"`
	Flash *helpers.Flash     `json:"flash"`
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// rsvpFlash is the message shown after a successful submission.
func rsvpFlash(res *domain.RSVPResult) string {
	verb := "updated"
	if res.Created {
		verb = "submitted"
	}
	msg := fmt.Sprintf("RSVP %s successfully for %s!", verb, res.RSVP.Email)
	if !res.Notified {
		msg += " We could not send a confirmation email."
	}
	return msg
}

// Submit godoc
// @Summary RSVP to an event
// @Description Records the attendant's response. A second submission with the same email updates the existing RSVP instead of adding one. A confirmation email is sent on a best-effort basis; data.notified reports whether it went out.
// @Tags rsvps
// @Accept x-www-form-urlencoded
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param name formData string true "Attendant name"
// @Param email formData string true "Attendant email"
// @Param attending formData string false "1, true or on when attending"
// @Success 201 {object} controllers.RSVPSuccessResponse "new RSVP"
// @Success 200 {object} controllers.RSVPSuccessResponse "existing RSVP updated"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) Submit(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if err := helpers.ParseForm(w, r); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	res, err := c.Service.SubmitRSVP(r.Context(), eventID,
		helpers.FormValue(r, "name"),
		helpers.FormValue(r, "email"),
		helpers.FormBool(r, "attending"),
	)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	helpers.WriteJSONFlash(w, status, res, helpers.FlashSuccess, rsvpFlash(res))
}
