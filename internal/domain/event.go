package domain

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Event represents a scheduled event listed in the catalog.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	CategoryID  *string   `json:"category_id"`
	Featured    bool      `json:"featured"`
	ImageFile   *string   `json:"image_file"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the repository on create.
func NewEvent(title, description string, date time.Time, location string, categoryID *string, featured bool, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		Location:    location,
		CategoryID:  categoryID,
		Featured:    featured,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// LocalDate returns Date in loc, the zone event times are entered in.
// Storage may hand Date back in its session zone, so display code goes through here.
func (e *Event) LocalDate(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return e.Date.In(loc)
}

// TimeOfDay returns the HH:MM display string derived from Date in loc.
func (e *Event) TimeOfDay(loc *time.Location) string {
	return e.LocalDate(loc).Format(TimeLayout)
}

// Category groups events. Names are unique (case-sensitive).
// swagger:model Category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Form layouts for the separate date and time fields.
const (
	DateLayout = "02-01-2006"
	TimeLayout = "15:04"
)

// ParseEventDateTime combines a DD-MM-YYYY date and an HH:MM time into one
// instant in loc. Every component must be an integer in its calendar range;
// dates that do not exist (e.g. 31-04-2025) are rejected rather than rolled over.
func ParseEventDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	dateParts, err := splitInts(date, "-", 3)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected DD-MM-YYYY", ErrValidation, date)
	}
	timeParts, err := splitInts(clock, ":", 2)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time %q, expected HH:MM", ErrValidation, clock)
	}
	day, month, year := dateParts[0], dateParts[1], dateParts[2]
	hour, minute := timeParts[0], timeParts[1]

	if year < 1 || year > 9999 {
		return time.Time{}, fmt.Errorf("%w: year out of range in %q", ErrValidation, date)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: month must be in 1..12", ErrValidation)
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, fmt.Errorf("%w: day is out of range for month", ErrValidation)
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("%w: hour must be in 0..23", ErrValidation)
	}
	if minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: minute must be in 0..59", ErrValidation)
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), nil
}

// ParseCalendarDate parses a YYYY-MM-DD filter date at midnight in loc.
func ParseCalendarDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, s)
	}
	return t, nil
}

func splitInts(s, sep string, n int) ([]int, error) {
	parts := strings.Split(strings.TrimSpace(s), sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d parts", n)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SortBy selects the ordering of a catalog search.
type SortBy string

const (
	SortByDate       SortBy = "date"
	SortByPopularity SortBy = "popularity"
)

// SortOrder is the direction of the date ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// EventFilter holds the optional predicates of a catalog search. Nil or empty
// fields impose no constraint; present fields are combined with AND.
type EventFilter struct {
	Term       string
	CategoryID *string
	StartDate  *time.Time
	EndDate    *time.Time
	Location   string
	SortBy     SortBy
	Order      SortOrder
}

// EventWithCount is an event plus its number of RSVP rows.
type EventWithCount struct {
	Event     *Event
	RSVPCount int
}

// EventRSVPSummary is one row of the admin dashboard.
// swagger:model EventRSVPSummary
type EventRSVPSummary struct {
	EventID      string    `json:"event_id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	Total        int       `json:"total"`
	Attending    int       `json:"attending"`
	NotAttending int       `json:"not_attending"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	// Delete removes the event and all its RSVPs in one transaction.
	Delete(ctx context.Context, id string) error
	// Search returns the events matching filter, already sorted.
	Search(ctx context.Context, filter EventFilter) ([]*EventWithCount, error)
	ListFeatured(ctx context.Context) ([]*Event, error)
	ListRSVPSummaries(ctx context.Context) ([]*EventRSVPSummary, error)
}

// CategoryRepository defines storage for event categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
}

// ImageUpload is an uploaded image file as received from the client.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// ImageStore persists uploaded event images.
type ImageStore interface {
	// Allowed reports whether filename has an accepted image extension.
	Allowed(filename string) bool
	// StoredName returns the sanitized filename Save will write filename under.
	StoredName(filename string) string
	// Save writes the upload and returns the stored (sanitized) filename.
	Save(ctx context.Context, upload *ImageUpload) (string, error)
}

// EventInput carries the string-typed form fields of a create or edit submission.
type EventInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	Location    string
	CategoryID  string
	Featured    bool
	Image       *ImageUpload
}

// EventListing is the result of a search: matching events split around now.
type EventListing struct {
	Upcoming []*EventWithCount `json:"upcoming"`
	Past     []*EventWithCount `json:"past"`
	Featured []*Event          `json:"featured,omitempty"`
}

// CatalogService defines event catalog operations.
type CatalogService interface {
	Home(ctx context.Context, sortBy SortBy, order SortOrder) (*EventListing, error)
	SearchEvents(ctx context.Context, filter EventFilter) (*EventListing, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, input EventInput) (*Event, error)
	UpdateEvent(ctx context.Context, id string, input EventInput) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*Category, error)
	AddCategory(ctx context.Context, name string) (*Category, error)
	Dashboard(ctx context.Context) ([]*EventRSVPSummary, error)
}
