package domain

import (
	"context"
	"time"
)

// RSVP is an attendant's response to an event. At most one exists per (event, email).
// swagger:model RSVP
type RSVP struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Attending bool      `json:"attending"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRSVP creates a new RSVP. ID is set by the repository on upsert.
func NewRSVP(eventID, name, email string, attending bool, createdAt, updatedAt time.Time) *RSVP {
	return &RSVP{
		EventID:   eventID,
		Name:      name,
		Email:     email,
		Attending: attending,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// RSVPResult is the outcome of SubmitRSVP.
// swagger:model RSVPResult
type RSVPResult struct {
	Created  bool  `json:"created"`
	RSVP     *RSVP `json:"rsvp"`
	Notified bool  `json:"notified"`
}

// RSVPRepository defines storage operations for RSVPs.
type RSVPRepository interface {
	// Upsert inserts the RSVP or, when one exists for the same (event, email),
	// overwrites its name and attending flag. Returns created=true on insert.
	// On return rsvp holds the stored row.
	Upsert(ctx context.Context, rsvp *RSVP) (created bool, err error)
	ListByEventID(ctx context.Context, eventID string) ([]*RSVP, error)
}

// RSVPNotifier is invoked after an RSVP write has committed.
// It reports whether the attendant was notified and never fails the caller.
type RSVPNotifier interface {
	NotifyRSVP(ctx context.Context, event *Event, rsvp *RSVP) bool
}

// RSVPService defines attendee-facing RSVP operations.
type RSVPService interface {
	SubmitRSVP(ctx context.Context, eventID, name, email string, attending bool) (*RSVPResult, error)
	ListRSVPs(ctx context.Context, eventID string) ([]*RSVP, error)
}
