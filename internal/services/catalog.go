package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventify/internal/domain"
)

type catalogService struct {
	eventRepo      domain.EventRepository
	categoryRepo   domain.CategoryRepository
	images         domain.ImageStore
	publisher      domain.EventPublisher
	logger         *slog.Logger
	contextTimeout time.Duration
	location       *time.Location
	now            func() time.Time
}

// CatalogOption customizes a catalog service.
type CatalogOption func(*catalogService)

// WithCatalogClock sets the clock used to split upcoming from past events.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(s *catalogService) { s.now = now }
}

// WithLocation sets the time zone in which form dates and times are interpreted.
func WithLocation(loc *time.Location) CatalogOption {
	return func(s *catalogService) { s.location = loc }
}

func NewCatalogService(
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	images domain.ImageStore,
	publisher domain.EventPublisher,
	logger *slog.Logger,
	timeout time.Duration,
	opts ...CatalogOption,
) domain.CatalogService {
	s := &catalogService{
		eventRepo:      eventRepo,
		categoryRepo:   categoryRepo,
		images:         images,
		publisher:      publisher,
		logger:         logger,
		contextTimeout: timeout,
		location:       time.Local,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *catalogService) Home(ctx context.Context, sortBy domain.SortBy, order domain.SortOrder) (*domain.EventListing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	listing, err := s.search(ctx, domain.EventFilter{SortBy: sortBy, Order: order})
	if err != nil {
		return nil, err
	}
	featured, err := s.eventRepo.ListFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured events: %w", err)
	}
	listing.Featured = featured
	return listing, nil
}

func (s *catalogService) SearchEvents(ctx context.Context, filter domain.EventFilter) (*domain.EventListing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.search(ctx, filter)
}

func (s *catalogService) search(ctx context.Context, filter domain.EventFilter) (*domain.EventListing, error) {
	if filter.SortBy != domain.SortByPopularity {
		filter.SortBy = domain.SortByDate
	}
	if filter.Order != domain.SortDesc {
		filter.Order = domain.SortAsc
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end_date is before start_date", domain.ErrValidation)
	}

	// One instant for the whole result so no event lands in both lists.
	now := s.now()
	events, err := s.eventRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	upcoming, past := partitionByDate(events, now)
	return &domain.EventListing{Upcoming: upcoming, Past: past}, nil
}

// partitionByDate splits events around now keeping their relative order.
func partitionByDate(events []*domain.EventWithCount, now time.Time) (upcoming, past []*domain.EventWithCount) {
	upcoming = make([]*domain.EventWithCount, 0, len(events))
	past = make([]*domain.EventWithCount, 0)
	for _, e := range events {
		if e.Event.Date.Before(now) {
			past = append(past, e)
		} else {
			upcoming = append(upcoming, e)
		}
	}
	return upcoming, past
}

func (s *catalogService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// eventFields is the validated form of an EventInput.
type eventFields struct {
	title       string
	description string
	date        time.Time
	location    string
	categoryID  *string
	featured    bool
}

func (s *catalogService) validateInput(ctx context.Context, in domain.EventInput) (*eventFields, error) {
	f := &eventFields{
		title:       strings.TrimSpace(in.Title),
		description: strings.TrimSpace(in.Description),
		location:    strings.TrimSpace(in.Location),
		featured:    in.Featured,
	}
	if f.title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.Time) == "" {
		return nil, fmt.Errorf("%w: date and time are required", domain.ErrValidation)
	}
	date, err := domain.ParseEventDateTime(in.Date, in.Time, s.location)
	if err != nil {
		return nil, err
	}
	f.date = date

	if id := strings.TrimSpace(in.CategoryID); id != "" {
		category, err := s.categoryRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("category %q: %w", id, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("get category: %w", err)
		}
		f.categoryID = &category.ID
	}
	return f, nil
}

// imageName returns the filename an upload will be stored under. A missing or
// disallowed upload yields nil.
func (s *catalogService) imageName(ctx context.Context, upload *domain.ImageUpload) *string {
	if upload == nil || upload.Filename == "" || s.images == nil {
		return nil
	}
	if !s.images.Allowed(upload.Filename) {
		s.logger.InfoContext(ctx, "ignoring image with disallowed extension", "filename", upload.Filename)
		return nil
	}
	name := s.images.StoredName(upload.Filename)
	if name == "" {
		s.logger.InfoContext(ctx, "ignoring image with unusable filename", "filename", upload.Filename)
		return nil
	}
	return &name
}

// CreateEvent writes the row before the image file, so a failed insert leaves
// nothing on disk. If the file cannot be written the row is removed again.
func (s *catalogService) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	f, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}
	image := s.imageName(ctx, in.Image)

	now := s.now()
	event := domain.NewEvent(f.title, f.description, f.date, f.location, f.categoryID, f.featured, now, now)
	event.ImageFile = image
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create event: %w", domain.ErrPersistence, err)
	}

	if image != nil {
		if _, err := s.images.Save(ctx, in.Image); err != nil {
			if derr := s.eventRepo.Delete(ctx, event.ID); derr != nil {
				s.logger.ErrorContext(ctx, "failed to remove event after image save error", "event_id", event.ID, "error", derr)
			}
			return nil, fmt.Errorf("save image: %w", err)
		}
	}

	s.publish(ctx, domain.TopicEventCreated, domain.EventChangedMessage{EventID: event.ID, Title: event.Title, Date: event.Date})
	return event, nil
}

// UpdateEvent writes the row before the image file. If the file cannot be
// written the previous row is restored.
func (s *catalogService) UpdateEvent(ctx context.Context, id string, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	f, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}
	image := s.imageName(ctx, in.Image)

	updated := *event
	updated.Title = f.title
	updated.Description = f.description
	updated.Date = f.date
	updated.Location = f.location
	updated.CategoryID = f.categoryID
	updated.Featured = f.featured
	if image != nil {
		updated.ImageFile = image
	}
	updated.UpdatedAt = s.now()

	if err := s.eventRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update event: %w", domain.ErrPersistence, err)
	}
	if image != nil {
		if _, err := s.images.Save(ctx, in.Image); err != nil {
			if rerr := s.eventRepo.Update(ctx, event); rerr != nil {
				s.logger.ErrorContext(ctx, "failed to restore event after image save error", "event_id", event.ID, "error", rerr)
			}
			return nil, fmt.Errorf("save image: %w", err)
		}
	}

	s.publish(ctx, domain.TopicEventUpdated, domain.EventChangedMessage{EventID: updated.ID, Title: updated.Title, Date: updated.Date})
	return &updated, nil
}

func (s *catalogService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: delete event: %w", domain.ErrPersistence, err)
	}

	s.publish(ctx, domain.TopicEventDeleted, domain.EventChangedMessage{EventID: id})
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) AddCategory(ctx context.Context, name string) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	if _, err := s.categoryRepo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("category %q: %w", name, domain.ErrDuplicate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get category by name: %w", err)
	}

	category := &domain.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create category: %w", domain.ErrPersistence, err)
	}
	return category, nil
}

func (s *catalogService) Dashboard(ctx context.Context) ([]*domain.EventRSVPSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rows, err := s.eventRepo.ListRSVPSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rsvp summaries: %w", err)
	}
	return rows, nil
}

func (s *catalogService) publish(ctx context.Context, routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		s.logger.WarnContext(ctx, "publish failed", "routing_key", routingKey, "err", err)
	}
}
