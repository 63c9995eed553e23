package domain

import (
	"context"
	"time"
)

// Routing keys of the domain events published on the message bus.
const (
	TopicRSVPSubmitted = "rsvp.submitted"
	TopicEventCreated  = "event.created"
	TopicEventUpdated  = "event.updated"
	TopicEventDeleted  = "event.deleted"
)

// EventPublisher publishes domain events. Payloads are JSON-encoded by the implementation.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// EventChangedMessage is the payload of the event.* topics.
type EventChangedMessage struct {
	EventID string    `json:"event_id"`
	Title   string    `json:"title,omitempty"`
	Date    time.Time `json:"date,omitzero"`
}

// RSVPSubmittedMessage is the payload of the rsvp.submitted topic.
type RSVPSubmittedMessage struct {
	EventID   string `json:"event_id"`
	RSVPID    string `json:"rsvp_id"`
	Email     string `json:"email"`
	Attending bool   `json:"attending"`
	Created   bool   `json:"created"`
	Notified  bool   `json:"notified"`
}
