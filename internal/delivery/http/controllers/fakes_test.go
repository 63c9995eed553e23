package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	eventID    = "6f9619ff-8b86-d011-b42d-00c04fc964ff"
	categoryID = "0b7e1c52-4a1f-4c43-9a55-3a2f5c2e9b11"
)

// fakeCatalogService implements domain.CatalogService for handler tests.
type fakeCatalogService struct {
	listing    *domain.EventListing
	event      *domain.Event
	category   *domain.Category
	categories []*domain.Category
	dashboard  []*domain.EventRSVPSummary
	err        error

	lastSortBy     domain.SortBy
	lastOrder      domain.SortOrder
	lastFilter     domain.EventFilter
	lastInput      domain.EventInput
	lastImageBytes []byte
	lastID         string
	lastName       string
}

func (f *fakeCatalogService) Home(_ context.Context, sortBy domain.SortBy, order domain.SortOrder) (*domain.EventListing, error) {
	f.lastSortBy, f.lastOrder = sortBy, order
	return f.listing, f.err
}

func (f *fakeCatalogService) SearchEvents(_ context.Context, filter domain.EventFilter) (*domain.EventListing, error) {
	f.lastFilter = filter
	return f.listing, f.err
}

func (f *fakeCatalogService) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	return f.event, f.err
}

func (f *fakeCatalogService) record(in domain.EventInput) {
	f.lastInput = in
	if in.Image != nil {
		f.lastImageBytes, _ = io.ReadAll(in.Image.Content)
	}
}

func (f *fakeCatalogService) CreateEvent(_ context.Context, in domain.EventInput) (*domain.Event, error) {
	f.record(in)
	return f.event, f.err
}

func (f *fakeCatalogService) UpdateEvent(_ context.Context, id string, in domain.EventInput) (*domain.Event, error) {
	f.lastID = id
	f.record(in)
	return f.event, f.err
}

func (f *fakeCatalogService) DeleteEvent(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeCatalogService) ListCategories(context.Context) ([]*domain.Category, error) {
	return f.categories, f.err
}

func (f *fakeCatalogService) AddCategory(_ context.Context, name string) (*domain.Category, error) {
	f.lastName = name
	return f.category, f.err
}

func (f *fakeCatalogService) Dashboard(context.Context) ([]*domain.EventRSVPSummary, error) {
	return f.dashboard, f.err
}

// fakeRSVPService implements domain.RSVPService.
type fakeRSVPService struct {
	result *domain.RSVPResult
	rsvps  []*domain.RSVP
	err    error

	lastEventID   string
	lastName      string
	lastEmail     string
	lastAttending bool
}

func (f *fakeRSVPService) SubmitRSVP(_ context.Context, eventID, name, email string, attending bool) (*domain.RSVPResult, error) {
	f.lastEventID, f.lastName, f.lastEmail, f.lastAttending = eventID, name, email, attending
	return f.result, f.err
}

func (f *fakeRSVPService) ListRSVPs(_ context.Context, eventID string) ([]*domain.RSVP, error) {
	f.lastEventID = eventID
	return f.rsvps, f.err
}

// fakeAuthService implements domain.AuthService.
type fakeAuthService struct {
	token string
	err   error

	lastEmail string
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (string, error) {
	f.lastEmail = email
	return f.token, f.err
}

// envelope mirrors helpers.APIResponse with raw data for per-test decoding.
type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
	Flash *helpers.Flash    `json:"flash"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}
