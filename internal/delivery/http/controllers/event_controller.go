package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

// ImagePathPrefix is where uploaded event images are served.
const ImagePathPrefix = "/static/images/"

// EventResponse is an event as returned by the API: the stored fields plus the
// derived time of day and a URL for its image.
// swagger:model EventResponse
type EventResponse struct {
	*domain.Event
	Time     string `json:"time"`
	ImageURL string `json:"image_url,omitempty"`
}

func newEventResponse(e *domain.Event, loc *time.Location) EventResponse {
	shown := *e
	shown.Date = e.LocalDate(loc)
	resp := EventResponse{Event: &shown, Time: shown.TimeOfDay(loc)}
	if e.ImageFile != nil && *e.ImageFile != "" {
		resp.ImageURL = ImagePathPrefix + *e.ImageFile
	}
	return resp
}

// EventSummaryResponse is a listed event with its RSVP count.
type EventSummaryResponse struct {
	EventResponse
	RSVPCount int `json:"rsvp_count"`
}

// ListingResponse is the body of the home page and search results.
type ListingResponse struct {
	Upcoming []EventSummaryResponse `json:"upcoming"`
	Past     []EventSummaryResponse `json:"past"`
	Featured []EventResponse        `json:"featured,omitempty"`
}

func newListingResponse(l *domain.EventListing, loc *time.Location) ListingResponse {
	resp := ListingResponse{Upcoming: summaries(l.Upcoming, loc), Past: summaries(l.Past, loc)}
	for _, e := range l.Featured {
		resp.Featured = append(resp.Featured, newEventResponse(e, loc))
	}
	return resp
}

func summaries(events []*domain.EventWithCount, loc *time.Location) []EventSummaryResponse {
	out := make([]EventSummaryResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventSummaryResponse{EventResponse: newEventResponse(e.Event, loc), RSVPCount: e.RSVPCount})
	}
	return out
}

// ListingSuccessResponse is the success response envelope for GET / and search (200).
type ListingSuccessResponse struct {
	Data  ListingResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SearchRequest holds the search parameters, read from the query string or form body.
type SearchRequest struct {
	Term       string `form:"search_term"`
	CategoryID string `form:"category_id" validate:"omitempty,uuid"`
	StartDate  string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Location   string `form:"location"`
	SortBy     string `form:"sort_by" validate:"omitempty,oneof=date popularity"`
	Order      string `form:"order" validate:"omitempty,oneof=asc desc"`
}

// Validate implements Validator.
func (s SearchRequest) Validate() []string {
	if s.StartDate != "" && s.EndDate != "" && s.EndDate < s.StartDate {
		return []string{"end_date must not be before start_date"}
	}
	return nil
}

func searchRequestFrom(r *http.Request) SearchRequest {
	return SearchRequest{
		Term:       helpers.FormValue(r, "search_term", "term"),
		CategoryID: helpers.FormValue(r, "category_id"),
		StartDate:  helpers.FormValue(r, "start_date"),
		EndDate:    helpers.FormValue(r, "end_date"),
		Location:   helpers.FormValue(r, "location"),
		SortBy:     helpers.FormValue(r, "sort_by"),
		Order:      helpers.FormValue(r, "order"),
	}
}

// EventDetailResponse is the body of GET /events/{eventID}.
type EventDetailResponse struct {
	Event EventResponse  `json:"event"`
	RSVPs []*domain.RSVP `json:"rsvps"`
}

// EventDetailSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type EventDetailSuccessResponse struct {
	Data  EventDetailResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// EventSuccessResponse is the success response envelope for event create and edit.
type EventSuccessResponse struct {
	Data  EventResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
	Flash *helpers.Flash    `json:"flash"`
}

// DeleteEventResponse identifies the deleted event.
type DeleteEventResponse struct {
	ID string `json:"id"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
	Flash *helpers.Flash      `json:"flash"`
}

type EventController struct {
	Logger   *slog.Logger
	Catalog  domain.CatalogService
	RSVPs    domain.RSVPService
	Location *time.Location
}

func NewEventController(logger *slog.Logger, catalog domain.CatalogService, rsvps domain.RSVPService, loc *time.Location) *EventController {
	if loc == nil {
		loc = time.Local
	}
	return &EventController{
		Logger:   logger,
		Catalog:  catalog,
		RSVPs:    rsvps,
		Location: loc,
	}
}

// Home godoc
// @Summary Home page listing
// @Description All events split into upcoming and past around the current time, plus featured events.
// @Tags events
// @Produce json
// @Param sort_by query string false "date (default) or popularity"
// @Param order query string false "asc (default) or desc; applies to date sort"
// @Success 200 {object} controllers.ListingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router / [get]
func (c *EventController) Home(w http.ResponseWriter, r *http.Request) {
	req := searchRequestFrom(r)
	if !helpers.WriteValidation(w, &req) {
		return
	}
	listing, err := c.Catalog.Home(r.Context(), domain.SortBy(req.SortBy), domain.SortOrder(req.Order))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListingResponse(listing, c.Location))
}

// Search godoc
// @Summary Search events
// @Description Filters events by free text (title or description), category, date range, and location. All present filters must match. Results are split into upcoming and past.
// @Tags events
// @Accept x-www-form-urlencoded
// @Produce json
// @Param search_term query string false "Substring of title or description (alias: term)"
// @Param category_id query string false "Category ID (UUID)"
// @Param start_date query string false "Earliest date, YYYY-MM-DD"
// @Param end_date query string false "Latest date inclusive, YYYY-MM-DD"
// @Param location query string false "Substring of location"
// @Param sort_by query string false "date (default) or popularity"
// @Param order query string false "asc (default) or desc"
// @Success 200 {object} controllers.ListingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/search [get]
// @Router /search [post]
func (c *EventController) Search(w http.ResponseWriter, r *http.Request) {
	if err := helpers.ParseForm(w, r); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	req := searchRequestFrom(r)
	if !helpers.WriteValidation(w, &req) {
		return
	}
	filter, err := c.filterFrom(req)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	listing, err := c.Catalog.SearchEvents(r.Context(), filter)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListingResponse(listing, c.Location))
}

func (c *EventController) filterFrom(req SearchRequest) (domain.EventFilter, error) {
	filter := domain.EventFilter{
		Term:     req.Term,
		Location: req.Location,
		SortBy:   domain.SortBy(req.SortBy),
		Order:    domain.SortOrder(req.Order),
	}
	if req.CategoryID != "" {
		filter.CategoryID = &req.CategoryID
	}
	if req.StartDate != "" {
		start, err := domain.ParseCalendarDate(req.StartDate, c.Location)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := domain.ParseCalendarDate(req.EndDate, c.Location)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &end
	}
	return filter, nil
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event and every RSVP submitted for it.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	rsvps, err := c.RSVPs.ListRSVPs(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventDetailResponse{Event: newEventResponse(event, c.Location), RSVPs: rsvps})
}

// readEventInput parses the create/edit form. The returned closer releases the
// uploaded image, if any.
func readEventInput(w http.ResponseWriter, r *http.Request) (domain.EventInput, func() error, error) {
	if err := helpers.ParseForm(w, r); err != nil {
		return domain.EventInput{}, nil, err
	}
	image, closeImage, err := helpers.FormFile(r, "image")
	if err != nil {
		return domain.EventInput{}, nil, err
	}
	return domain.EventInput{
		Title:       helpers.FormValue(r, "title"),
		Description: helpers.FormValue(r, "description"),
		Date:        helpers.FormValue(r, "date"),
		Time:        helpers.FormValue(r, "time"),
		Location:    helpers.FormValue(r, "location"),
		CategoryID:  helpers.FormValue(r, "category_id"),
		Featured:    helpers.FormBool(r, "featured"),
		Image:       image,
	}, closeImage, nil
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event from a form. date is DD-MM-YYYY and time is HH:MM. An image with extension png, jpg, jpeg or gif is stored; other files are ignored.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param date formData string true "Date, DD-MM-YYYY"
// @Param time formData string true "Time, HH:MM"
// @Param location formData string false "Location"
// @Param category_id formData string false "Category ID (UUID)"
// @Param featured formData string false "1, true or on"
// @Param image formData file false "Event image"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (category)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	input, closeImage, err := readEventInput(w, r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	defer closeImage()

	event, err := c.Catalog.CreateEvent(r.Context(), input)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONFlash(w, http.StatusCreated, newEventResponse(event, c.Location), helpers.FlashSuccess, "Event added successfully!")
}

// UpdateEvent godoc
// @Summary Edit an event
// @Description Overwrites every field from the form. The image is replaced only when a new allowed file is uploaded.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param date formData string true "Date, DD-MM-YYYY"
// @Param time formData string true "Time, HH:MM"
// @Param location formData string false "Location"
// @Param category_id formData string false "Category ID (UUID)"
// @Param featured formData string false "1, true or on"
// @Param image formData file false "Event image"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [post]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	input, closeImage, err := readEventInput(w, r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	defer closeImage()

	event, err := c.Catalog.UpdateEvent(r.Context(), eventID, input)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONFlash(w, http.StatusOK, newEventResponse(event, c.Location), helpers.FlashSuccess, "Event updated successfully!")
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and all of its RSVPs.
// @Tags events
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeleteEventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.Catalog.DeleteEvent(r.Context(), eventID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONFlash(w, http.StatusOK, DeleteEventResponse{ID: eventID}, helpers.FlashSuccess, "Event deleted successfully!")
}
