package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventify/internal/domain"
)

const (
	rsvpConfirmationTemplate = "rsvp_confirmation"
	emailDateLayout          = "02 January, 2006"
)

type rsvpNotifier struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
	location *time.Location
}

// NewRSVPNotifier returns an RSVPNotifier that emails a confirmation using the
// "rsvp_confirmation" template. Failures are logged and reported as false.
// Event dates are written in loc, the zone the catalog parses them in.
func NewRSVPNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger, loc *time.Location) domain.RSVPNotifier {
	return &rsvpNotifier{mailer: mailer, renderer: renderer, logger: logger, location: loc}
}

func (n *rsvpNotifier) NotifyRSVP(ctx context.Context, event *domain.Event, rsvp *domain.RSVP) bool {
	if event == nil || rsvp == nil {
		return false
	}
	data := &domain.RSVPConfirmationEmailData{
		Email:      rsvp.Email,
		Name:       rsvp.Name,
		EventTitle: event.Title,
		EventDate:  event.LocalDate(n.location).Format(emailDateLayout),
		Location:   event.Location,
	}
	if err := n.send(ctx, data); err != nil {
		n.logger.WarnContext(ctx, "rsvp confirmation not sent",
			"event_id", event.ID, "email", rsvp.Email, "err", err)
		return false
	}
	n.logger.InfoContext(ctx, "rsvp confirmation sent", "event_id", event.ID, "email", rsvp.Email)
	return true
}

func (n *rsvpNotifier) send(ctx context.Context, data *domain.RSVPConfirmationEmailData) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrNotification, r)
		}
	}()
	subject, htmlBody, textBody, err := n.renderer.Render(rsvpConfirmationTemplate, data)
	if err != nil {
		return fmt.Errorf("%w: render template: %w", domain.ErrNotification, err)
	}
	if err := n.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("%w: send: %w", domain.ErrNotification, err)
	}
	return nil
}
