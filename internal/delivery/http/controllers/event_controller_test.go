package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() *domain.Event {
	image := "poster.png"
	return &domain.Event{
		ID:        eventID,
		Title:     "Launch",
		Date:      time.Date(2030, 7, 1, 18, 30, 0, 0, time.UTC),
		Location:  "Hall A",
		ImageFile: &image,
	}
}

func newEventMux(catalog *fakeCatalogService, rsvps *fakeRSVPService) *http.ServeMux {
	c := NewEventController(testLogger, catalog, rsvps, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", c.Home)
	mux.HandleFunc("GET /events/search", c.Search)
	mux.HandleFunc("POST /search", c.Search)
	mux.HandleFunc("GET /events/{eventID}", c.GetEvent)
	mux.HandleFunc("POST /events", c.CreateEvent)
	mux.HandleFunc("POST /events/{eventID}", c.UpdateEvent)
	mux.HandleFunc("DELETE /events/{eventID}", c.DeleteEvent)
	return mux
}

func serve(mux http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestEventController_Home(t *testing.T) {
	listing := &domain.EventListing{
		Upcoming: []*domain.EventWithCount{{Event: sampleEvent(), RSVPCount: 3}},
		Past:     []*domain.EventWithCount{},
		Featured: []*domain.Event{sampleEvent()},
	}
	catalog := &fakeCatalogService{listing: listing}
	mux := newEventMux(catalog, &fakeRSVPService{})

	rr := serve(mux, httptest.NewRequest(http.MethodGet, "/?sort_by=popularity&order=desc", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.SortByPopularity, catalog.lastSortBy)
	assert.Equal(t, domain.SortDesc, catalog.lastOrder)
	var data ListingResponse
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &data))
	require.Len(t, data.Upcoming, 1)
	assert.Equal(t, 3, data.Upcoming[0].RSVPCount)
	assert.Equal(t, "18:30", data.Upcoming[0].Time)
	assert.Equal(t, "/static/images/poster.png", data.Upcoming[0].ImageURL)
	assert.Equal(t, "Launch", data.Upcoming[0].Title)
	assert.NotNil(t, data.Past)
	assert.Len(t, data.Featured, 1)
}

func TestEventController_Home_InvalidSort(t *testing.T) {
	mux := newEventMux(&fakeCatalogService{}, &fakeRSVPService{})
	rr := serve(mux, httptest.NewRequest(http.MethodGet, "/?sort_by=rating", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, helpers.ErrCodeBadRequest, decode(t, rr).Error.Code)
}

func TestEventController_Search_Query(t *testing.T) {
	catalog := &fakeCatalogService{listing: &domain.EventListing{}}
	mux := newEventMux(catalog, &fakeRSVPService{})

	q := url.Values{
		"term":        {" jazz "},
		"category_id": {categoryID},
		"start_date":  {"2030-01-01"},
		"end_date":    {"2030-01-31"},
		"location":    {"Berlin"},
		"sort_by":     {"popularity"},
	}
	rr := serve(mux, httptest.NewRequest(http.MethodGet, "/events/search?"+q.Encode(), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	f := catalog.lastFilter
	assert.Equal(t, "jazz", f.Term)
	require.NotNil(t, f.CategoryID)
	assert.Equal(t, categoryID, *f.CategoryID)
	require.NotNil(t, f.StartDate)
	require.NotNil(t, f.EndDate)
	assert.True(t, f.StartDate.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, f.EndDate.Equal(time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Berlin", f.Location)
	assert.Equal(t, domain.SortByPopularity, f.SortBy)
}

func TestEventController_Search_PostForm(t *testing.T) {
	catalog := &fakeCatalogService{listing: &domain.EventListing{}}
	mux := newEventMux(catalog, &fakeRSVPService{})

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(url.Values{"search_term": {"Launch"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := serve(mux, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Launch", catalog.lastFilter.Term)
	assert.Nil(t, catalog.lastFilter.CategoryID)
	assert.Nil(t, catalog.lastFilter.StartDate)
}

func TestEventController_Search_BadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad start date", "start_date=01-01-2030"},
		{"end before start", "start_date=2030-02-01&end_date=2030-01-01"},
		{"bad category", "category_id=music"},
		{"bad order", "order=sideways"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalogService{listing: &domain.EventListing{}}
			rr := serve(newEventMux(catalog, &fakeRSVPService{}), httptest.NewRequest(http.MethodGet, "/events/search?"+tt.query, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestEventController_GetEvent(t *testing.T) {
	rsvps := []*domain.RSVP{{ID: "r1", EventID: eventID, Name: "Ada", Email: "ada@example.com", Attending: true}}
	catalog := &fakeCatalogService{event: sampleEvent()}
	rsvpSvc := &fakeRSVPService{rsvps: rsvps}

	rr := serve(newEventMux(catalog, rsvpSvc), httptest.NewRequest(http.MethodGet, "/events/"+eventID, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var data EventDetailResponse
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &data))
	assert.Equal(t, "Launch", data.Event.Title)
	require.Len(t, data.RSVPs, 1)
	assert.Equal(t, "Ada", data.RSVPs[0].Name)
	assert.Equal(t, eventID, rsvpSvc.lastEventID)
}

func TestEventController_GetEvent_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed id", "/events/42", nil, http.StatusNotFound, helpers.ErrCodeNotFound},
		{"missing event", "/events/" + eventID, domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
		{"storage failure", "/events/" + eventID, errors.New("connection reset"), http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalogService{event: sampleEvent(), err: tt.err}
			rr := serve(newEventMux(catalog, &fakeRSVPService{}), httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			env := decode(t, rr)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.NotContains(t, env.Error.Message, "connection reset")
		})
	}
}

func multipartEventRequest(t *testing.T, method, target string, fields map[string]string, image string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != "" {
		fw, err := mw.CreateFormFile("image", image)
		require.NoError(t, err)
		_, _ = fw.Write([]byte("image-bytes"))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestEventController_CreateEvent(t *testing.T) {
	catalog := &fakeCatalogService{event: sampleEvent()}
	fields := map[string]string{
		"title":       "Launch",
		"description": "Product launch",
		"date":        "01-07-2030",
		"time":        "18:30",
		"location":    "Hall A",
		"category_id": categoryID,
		"featured":    "1",
	}

	rr := serve(newEventMux(catalog, &fakeRSVPService{}), multipartEventRequest(t, http.MethodPost, "/events", fields, "poster.png"))

	require.Equal(t, http.StatusCreated, rr.Code)
	env := decode(t, rr)
	require.NotNil(t, env.Flash)
	assert.Equal(t, helpers.FlashSuccess, env.Flash.Category)
	assert.Equal(t, "Event added successfully!", env.Flash.Message)

	in := catalog.lastInput
	assert.Equal(t, "Launch", in.Title)
	assert.Equal(t, "01-07-2030", in.Date)
	assert.Equal(t, "18:30", in.Time)
	assert.Equal(t, categoryID, in.CategoryID)
	assert.True(t, in.Featured)
	require.NotNil(t, in.Image)
	assert.Equal(t, "poster.png", in.Image.Filename)
	assert.Equal(t, "image-bytes", string(catalog.lastImageBytes))
}

func TestEventController_CreateEvent_URLEncodedWithoutImage(t *testing.T) {
	catalog := &fakeCatalogService{event: sampleEvent()}
	form := url.Values{"title": {"Launch"}, "date": {"01-07-2030"}, "time": {"18:30"}}
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := serve(newEventMux(catalog, &fakeRSVPService{}), req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Nil(t, catalog.lastInput.Image)
	assert.False(t, catalog.lastInput.Featured)
}

func TestEventController_CreateEvent_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"unknown category", fmt.Errorf("category %q: %w", "x", domain.ErrNotFound), http.StatusNotFound, helpers.ErrCodeNotFound},
		{"persistence", fmt.Errorf("%w: create event: %w", domain.ErrPersistence, errors.New("disk full")), http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalogService{err: tt.err}
			req := multipartEventRequest(t, http.MethodPost, "/events", map[string]string{"title": "x"}, "")
			rr := serve(newEventMux(catalog, &fakeRSVPService{}), req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			env := decode(t, rr)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			require.NotNil(t, env.Flash)
			assert.Equal(t, helpers.FlashError, env.Flash.Category)
		})
	}
}

func TestEventController_UpdateEvent(t *testing.T) {
	catalog := &fakeCatalogService{event: sampleEvent()}
	fields := map[string]string{"title": "Relaunch", "date": "02-07-2030", "time": "09:00", "featured": "on"}

	rr := serve(newEventMux(catalog, &fakeRSVPService{}), multipartEventRequest(t, http.MethodPost, "/events/"+eventID, fields, ""))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, eventID, catalog.lastID)
	assert.Equal(t, "Relaunch", catalog.lastInput.Title)
	assert.True(t, catalog.lastInput.Featured)
	assert.Nil(t, catalog.lastInput.Image)
}

func TestEventController_UpdateEvent_NotFound(t *testing.T) {
	catalog := &fakeCatalogService{err: domain.ErrNotFound}
	rr := serve(newEventMux(catalog, &fakeRSVPService{}), multipartEventRequest(t, http.MethodPost, "/events/"+eventID, map[string]string{"title": "x"}, ""))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventController_DeleteEvent(t *testing.T) {
	catalog := &fakeCatalogService{}
	rr := serve(newEventMux(catalog, &fakeRSVPService{}), httptest.NewRequest(http.MethodDelete, "/events/"+eventID, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, eventID, catalog.lastID)
	env := decode(t, rr)
	require.NotNil(t, env.Flash)
	assert.Equal(t, helpers.FlashSuccess, env.Flash.Category)
	assert.Equal(t, "Event deleted successfully!", env.Flash.Message)
	var data DeleteEventResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, eventID, data.ID)

	catalog.err = domain.ErrNotFound
	rr = serve(newEventMux(catalog, &fakeRSVPService{}), httptest.NewRequest(http.MethodDelete, "/events/"+eventID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventController_GetEvent_TimeShownInCatalogZone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	entered, err := domain.ParseEventDateTime("01-05-2025", "10:00", berlin)
	require.NoError(t, err)
	stored := sampleEvent()
	stored.Date = entered.UTC()

	c := NewEventController(testLogger, &fakeCatalogService{event: stored}, &fakeRSVPService{}, berlin)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events/{eventID}", c.GetEvent)

	rr := serve(mux, httptest.NewRequest(http.MethodGet, "/events/"+eventID, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var data EventDetailResponse
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &data))
	assert.Equal(t, "10:00", data.Event.Time)
	assert.True(t, entered.Equal(data.Event.Date))
	assert.Equal(t, 10, data.Event.Date.Hour())
	assert.True(t, stored.Date.Equal(entered), "stored event is not mutated")
	assert.Equal(t, time.UTC, stored.Date.Location())
}
