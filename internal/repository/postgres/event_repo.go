package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"eventify/internal/domain"

	"github.com/jackc/pgerrcode"
)

const eventColumns = `e.id, e.title, e.description, e.date, e.location, e.category_id, e.featured, e.image_file, e.created_at, e.updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner, extra ...any) (*domain.Event, error) {
	e := &domain.Event{}
	var categoryNull, imageNull sql.NullString
	dest := []any{
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location,
		&categoryNull, &e.Featured, &imageNull, &e.CreatedAt, &e.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if categoryNull.Valid {
		e.CategoryID = &categoryNull.String
	}
	if imageNull.Valid {
		e.ImageFile = &imageNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, location, category_id, featured, image_file, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.CategoryID, e.Featured, e.ImageFile, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if pqCode(err) == pgerrcode.ForeignKeyViolation {
		return fmt.Errorf("category: %w", domain.ErrNotFound)
	}
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapLookupError(err)
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, location = $4, category_id = $5,
		    featured = $6, image_file = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.CategoryID, e.Featured, e.ImageFile, e.UpdatedAt, e.ID,
	)
	if err != nil {
		if pqCode(err) == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("category: %w", domain.ErrNotFound)
		}
		return mapLookupError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the event's RSVPs and then the event in one transaction.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rsvps WHERE event_id = $1`, id); err != nil {
			return mapLookupError(err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *eventRepository) Search(ctx context.Context, f domain.EventFilter) ([]*domain.EventWithCount, error) {
	query, args := buildSearchQuery(f)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.EventWithCount, 0)
	for rows.Next() {
		var count int
		e, err := scanEvent(rows, &count)
		if err != nil {
			return nil, err
		}
		results = append(results, &domain.EventWithCount{Event: e, RSVPCount: count})
	}
	return results, rows.Err()
}

// buildSearchQuery composes the filtered, sorted event query. Every present
// predicate is ANDed; the end date bound is exclusive of the following day.
func buildSearchQuery(f domain.EventFilter) (string, []any) {
	var where []string
	var args []any
	n := 1

	if term := strings.TrimSpace(f.Term); term != "" {
		where = append(where, fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d)", n, n))
		args = append(args, likePattern(term))
		n++
	}
	if f.CategoryID != nil && *f.CategoryID != "" {
		where = append(where, fmt.Sprintf("e.category_id = $%d", n))
		args = append(args, *f.CategoryID)
		n++
	}
	if f.StartDate != nil {
		where = append(where, fmt.Sprintf("e.date >= $%d", n))
		args = append(args, *f.StartDate)
		n++
	}
	if f.EndDate != nil {
		where = append(where, fmt.Sprintf("e.date < $%d", n))
		args = append(args, f.EndDate.AddDate(0, 0, 1))
		n++
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		where = append(where, fmt.Sprintf("e.location ILIKE $%d", n))
		args = append(args, likePattern(loc))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + eventColumns + `, COUNT(r.id) AS rsvp_count
		FROM events e
		LEFT JOIN rsvps r ON r.event_id = e.id`)
	if len(where) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\n\t\tGROUP BY e.id\n\t\tORDER BY ")
	b.WriteString(orderClause(f.SortBy, f.Order))
	return b.String(), args
}

func orderClause(sortBy domain.SortBy, order domain.SortOrder) string {
	if sortBy == domain.SortByPopularity {
		return "rsvp_count DESC, e.created_at ASC, e.id ASC"
	}
	if order == domain.SortDesc {
		return "e.date DESC, e.id ASC"
	}
	return "e.date ASC, e.id ASC"
}

// likePattern wraps s for a substring ILIKE match, escaping LIKE wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (r *eventRepository) ListFeatured(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.featured ORDER BY e.date ASC, e.id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) ListRSVPSummaries(ctx context.Context) ([]*domain.EventRSVPSummary, error) {
	query := `
		SELECT e.id, e.title, e.date,
		       COUNT(r.id) AS total,
		       COUNT(r.id) FILTER (WHERE r.attending) AS attending,
		       COUNT(r.id) FILTER (WHERE NOT r.attending) AS not_attending
		FROM events e
		LEFT JOIN rsvps r ON r.event_id = e.id
		GROUP BY e.id
		ORDER BY e.date ASC, e.id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]*domain.EventRSVPSummary, 0)
	for rows.Next() {
		s := &domain.EventRSVPSummary{}
		if err := rows.Scan(&s.EventID, &s.Title, &s.Date, &s.Total, &s.Attending, &s.NotAttending); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
