package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventify/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memStore backs the fake repositories so that event deletes can cascade to RSVPs.
type memStore struct {
	mu         sync.Mutex
	events     map[string]*domain.Event
	eventOrder []string
	rsvps      map[string]*domain.RSVP // keyed by event id + "|" + email
	rsvpOrder  []string
	categories map[string]*domain.Category
	nextID     int
}

func newMemStore() *memStore {
	return &memStore{
		events:     make(map[string]*domain.Event),
		rsvps:      make(map[string]*domain.RSVP),
		categories: make(map[string]*domain.Category),
		nextID:     1,
	}
}

func (s *memStore) id(prefix string) string {
	id := fmt.Sprintf("%s-%d", prefix, s.nextID)
	s.nextID++
	return id
}

func (s *memStore) rsvpsFor(eventID string) []*domain.RSVP {
	var out []*domain.RSVP
	for _, k := range s.rsvpOrder {
		if r, ok := s.rsvps[k]; ok && r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	store     *memStore
	createErr error
	updateErr error
	deleteErr error // simulates a failed transaction: nothing is removed
	searchErr error
}

func newFakeEventRepo(store *memStore) *fakeEventRepo {
	return &fakeEventRepo{store: store}
}

// seed stores an event directly and returns its id.
func (f *fakeEventRepo) seed(e *domain.Event) string {
	_ = f.Create(context.Background(), e)
	return e.ID
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	e.ID = f.store.id("ev")
	cp := *e
	f.store.events[e.ID] = &cp
	f.store.eventOrder = append(f.store.eventOrder, e.ID)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if e, ok := f.store.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.store.events[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.events[id]; !ok {
		return domain.ErrNotFound
	}
	for k, r := range f.store.rsvps {
		if r.EventID == id {
			delete(f.store.rsvps, k)
		}
	}
	delete(f.store.events, id)
	return nil
}

func (f *fakeEventRepo) Search(ctx context.Context, filter domain.EventFilter) ([]*domain.EventWithCount, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var out []*domain.EventWithCount
	for _, id := range f.store.eventOrder {
		e, ok := f.store.events[id]
		if !ok || !matches(e, filter) {
			continue
		}
		cp := *e
		out = append(out, &domain.EventWithCount{Event: &cp, RSVPCount: len(f.store.rsvpsFor(id))})
	}
	switch {
	case filter.SortBy == domain.SortByPopularity:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RSVPCount > out[j].RSVPCount })
	case filter.Order == domain.SortDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Event.Date.After(out[j].Event.Date) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Event.Date.Before(out[j].Event.Date) })
	}
	return out, nil
}

func matches(e *domain.Event, f domain.EventFilter) bool {
	if f.Term != "" {
		term := strings.ToLower(f.Term)
		if !strings.Contains(strings.ToLower(e.Title), term) && !strings.Contains(strings.ToLower(e.Description), term) {
			return false
		}
	}
	if f.CategoryID != nil && (e.CategoryID == nil || *e.CategoryID != *f.CategoryID) {
		return false
	}
	if f.StartDate != nil && e.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && !e.Date.Before(f.EndDate.AddDate(0, 0, 1)) {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(e.Location), strings.ToLower(f.Location)) {
		return false
	}
	return true
}

func (f *fakeEventRepo) ListFeatured(ctx context.Context) ([]*domain.Event, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*domain.Event
	for _, id := range f.store.eventOrder {
		if e, ok := f.store.events[id]; ok && e.Featured {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeEventRepo) ListRSVPSummaries(ctx context.Context) ([]*domain.EventRSVPSummary, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*domain.EventRSVPSummary
	for _, id := range f.store.eventOrder {
		e, ok := f.store.events[id]
		if !ok {
			continue
		}
		row := &domain.EventRSVPSummary{EventID: e.ID, Title: e.Title, Date: e.Date}
		for _, r := range f.store.rsvpsFor(id) {
			row.Total++
			if r.Attending {
				row.Attending++
			} else {
				row.NotAttending++
			}
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// fakeRSVPRepo upserts by (event, email) like the unique constraint does.
type fakeRSVPRepo struct {
	store     *memStore
	upsertErr error
}

func newFakeRSVPRepo(store *memStore) *fakeRSVPRepo {
	return &fakeRSVPRepo{store: store}
}

func (f *fakeRSVPRepo) Upsert(ctx context.Context, rsvp *domain.RSVP) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.events[rsvp.EventID]; !ok {
		return false, domain.ErrNotFound
	}
	key := rsvp.EventID + "|" + rsvp.Email
	if existing, ok := f.store.rsvps[key]; ok {
		existing.Name = rsvp.Name
		existing.Attending = rsvp.Attending
		existing.UpdatedAt = rsvp.UpdatedAt
		rsvp.ID = existing.ID
		rsvp.CreatedAt = existing.CreatedAt
		return false, nil
	}
	rsvp.ID = f.store.id("rsvp")
	cp := *rsvp
	f.store.rsvps[key] = &cp
	f.store.rsvpOrder = append(f.store.rsvpOrder, key)
	return true, nil
}

func (f *fakeRSVPRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make([]*domain.RSVP, 0)
	for _, r := range f.store.rsvpsFor(eventID) {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

type fakeCategoryRepo struct {
	store     *memStore
	createErr error
	lookupErr error
}

func newFakeCategoryRepo(store *memStore) *fakeCategoryRepo {
	return &fakeCategoryRepo{store: store}
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, existing := range f.store.categories {
		if existing.Name == c.Name {
			return domain.ErrDuplicate
		}
	}
	c.ID = f.store.id("cat")
	cp := *c
	f.store.categories[c.ID] = &cp
	return nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if c, ok := f.store.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, c := range f.store.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make([]*domain.Category, 0, len(f.store.categories))
	for _, c := range f.store.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeImageStore struct {
	saved   []string
	saveErr error
}

func (f *fakeImageStore) Allowed(filename string) bool {
	ext := strings.ToLower(filename[strings.LastIndex(filename, ".")+1:])
	return strings.Contains(filename, ".") && (ext == "png" || ext == "jpg" || ext == "jpeg" || ext == "gif")
}

func (f *fakeImageStore) StoredName(filename string) string {
	return filename
}

func (f *fakeImageStore) Save(ctx context.Context, upload *domain.ImageUpload) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, upload.Filename)
	return upload.Filename, nil
}

type publishedMessage struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, publishedMessage{routingKey: routingKey, payload: payload})
	return f.err
}

func (f *fakePublisher) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, len(f.messages))
	for i, m := range f.messages {
		keys[i] = m.routingKey
	}
	return keys
}

type fakeNotifier struct {
	result bool
	calls  []*domain.RSVP
}

func (f *fakeNotifier) NotifyRSVP(ctx context.Context, event *domain.Event, rsvp *domain.RSVP) bool {
	cp := *rsvp
	f.calls = append(f.calls, &cp)
	return f.result
}

type sentEmail struct {
	to, subject, html, text string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, html: html, text: text})
	return nil
}

type fakeRenderer struct {
	lastTemplate string
	lastData     any
	err          error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.lastTemplate = templateName
	f.lastData = data
	if f.err != nil {
		return "", "", "", f.err
	}
	return "RSVP Confirmation", "<p>html</p>", "text", nil
}

type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakeHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + password, nil
}
func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeIssuer struct {
	lastUserID string
	lastEmail  string
	lastRoles  []string
	lastExpiry time.Duration
	err        error
}

func (f *fakeIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	f.lastUserID, f.lastEmail, f.lastRoles, f.lastExpiry = userID, email, roles, expiry
	if f.err != nil {
		return "", f.err
	}
	return "signed-token", nil
}
