package postgres

import (
	"context"
	"database/sql"

	"eventify/internal/domain"

	"github.com/jackc/pgerrcode"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

// Upsert relies on the (event_id, email) unique constraint: concurrent
// submissions for the same pair end up as one row holding the last write.
// xmax is zero only for a freshly inserted tuple.
func (r *rsvpRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) (bool, error) {
	query := `
		INSERT INTO rsvps (event_id, name, email, attending, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, email) DO UPDATE
		SET name = EXCLUDED.name, attending = EXCLUDED.attending, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted
	`
	var created bool
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query,
			rsvp.EventID, rsvp.Name, rsvp.Email, rsvp.Attending, rsvp.CreatedAt, rsvp.UpdatedAt,
		).Scan(&rsvp.ID, &rsvp.CreatedAt, &created)
		switch pqCode(err) {
		case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
			return domain.ErrNotFound
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	query := `
		SELECT id, event_id, name, email, attending, created_at, updated_at
		FROM rsvps
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	defer rows.Close()

	var rsvps []*domain.RSVP
	for rows.Next() {
		rsvp := &domain.RSVP{}
		if err := rows.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.Name, &rsvp.Email, &rsvp.Attending, &rsvp.CreatedAt, &rsvp.UpdatedAt); err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if rsvps == nil {
		rsvps = []*domain.RSVP{}
	}
	return rsvps, nil
}
