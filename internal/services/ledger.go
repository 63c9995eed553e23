package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"eventify/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type ledgerService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	notifier       domain.RSVPNotifier
	publisher      domain.EventPublisher
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewLedgerService creates an RSVPService. The notifier runs after each
// committed RSVP write; a nil notifier means attendants are never notified.
func NewLedgerService(
	eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	notifier domain.RSVPNotifier,
	publisher domain.EventPublisher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RSVPService {
	return &ledgerService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		notifier:       notifier,
		publisher:      publisher,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *ledgerService) SubmitRSVP(ctx context.Context, eventID, name, email string, attending bool) (*domain.RSVPResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := s.now()
	rsvp := domain.NewRSVP(event.ID, name, email, attending, now, now)
	created, err := s.rsvpRepo.Upsert(ctx, rsvp)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: upsert rsvp: %w", domain.ErrPersistence, err)
	}

	result := &domain.RSVPResult{Created: created, RSVP: rsvp}
	if s.notifier != nil {
		result.Notified = s.notifier.NotifyRSVP(ctx, event, rsvp)
	}

	if s.publisher != nil {
		msg := domain.RSVPSubmittedMessage{
			EventID:   event.ID,
			RSVPID:    rsvp.ID,
			Email:     rsvp.Email,
			Attending: rsvp.Attending,
			Created:   created,
			Notified:  result.Notified,
		}
		if err := s.publisher.Publish(ctx, domain.TopicRSVPSubmitted, msg); err != nil {
			s.logger.WarnContext(ctx, "publish failed", "routing_key", domain.TopicRSVPSubmitted, "err", err)
		}
	}
	return result, nil
}

func (s *ledgerService) ListRSVPs(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	rsvps, err := s.rsvpRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return rsvps, nil
}
