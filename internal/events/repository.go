package events

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/gatherly/internal/shared"
)

const eventColumns = `id, title, description, location, start_time, end_time, capacity,
visibility, approval_status, event_status, COALESCE(prior_status, ''), created_by, COALESCE(organizer_id, 0),
COALESCE(approval_remarks, ''), deleted, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartTime, &e.EndTime, &e.Capacity,
		&e.Visibility, &e.ApprovalStatus, &e.EventStatus, &e.PriorStatus, &e.CreatedBy, &e.OrganizerID,
		&e.ApprovalRemarks, &e.Deleted, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// GetEvent fetches an event by ID. Soft-deleted events read as not found.
func (r *Repository) GetEvent(ctx context.Context, id int64) (Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1 AND NOT deleted`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, shared.ErrNotFound
		}
		return Event{}, err
	}
	return e, nil
}

// ListEvents returns one page of events newest first, plus the total count.
func (r *Repository) ListEvents(ctx context.Context, limit, offset int) ([]Event, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE NOT deleted`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE NOT deleted ORDER BY start_time DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// CreateEvent inserts a new event in its initial lifecycle state.
func (r *Repository) CreateEvent(ctx context.Context, e Event) (Event, error) {
	created, err := scanEvent(r.pool.QueryRow(ctx, `INSERT INTO events
(title, description, location, start_time, end_time, capacity, visibility, approval_status, event_status, created_by, organizer_id, deleted, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, 0), FALSE, NOW(), NOW())
RETURNING `+eventColumns,
		e.Title, e.Description, e.Location, e.StartTime, e.EndTime, e.Capacity,
		e.Visibility, e.ApprovalStatus, e.EventStatus, e.CreatedBy, e.OrganizerID))
	if err != nil {
		return Event{}, err
	}
	return created, nil
}

// UpdateDetails rewrites the editable fields of an event.
func (r *Repository) UpdateDetails(ctx context.Context, e Event) (Event, error) {
	updated, err := scanEvent(r.pool.QueryRow(ctx, `UPDATE events
SET title=$2, description=$3, location=$4, start_time=$5, end_time=$6, capacity=$7, visibility=$8, updated_at=NOW()
WHERE id=$1 AND NOT deleted
RETURNING `+eventColumns,
		e.ID, e.Title, e.Description, e.Location, e.StartTime, e.EndTime, e.Capacity, e.Visibility))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, shared.ErrNotFound
		}
		return Event{}, err
	}
	return updated, nil
}

// UpdateLifecycle persists a status transition produced by the decision
// engine. Both axes and the prior-status slot are written together.
func (r *Repository) UpdateLifecycle(ctx context.Context, e Event) error {
	tag, err := r.pool.Exec(ctx, `UPDATE events
SET approval_status=$2, event_status=$3, prior_status=NULLIF($4, ''), approval_remarks=NULLIF($5, ''), updated_at=NOW()
WHERE id=$1 AND NOT deleted`,
		e.ID, e.ApprovalStatus, e.EventStatus, string(e.PriorStatus), e.ApprovalRemarks)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteEvent soft-deletes an event.
func (r *Repository) DeleteEvent(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET deleted=TRUE, updated_at=NOW() WHERE id=$1 AND NOT deleted`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListAttendees returns the invitation list for an event.
func (r *Repository) ListAttendees(ctx context.Context, eventID int64) ([]Attendee, error) {
	rows, err := r.pool.Query(ctx, `SELECT event_id, email, invitation_status, invited_at
FROM event_attendees WHERE event_id=$1 ORDER BY invited_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var attendees []Attendee
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.EventID, &a.Email, &a.Status, &a.InvitedAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// AddAttendee records a pending invitation. Re-inviting an existing attendee
// is a no-op.
func (r *Repository) AddAttendee(ctx context.Context, eventID int64, email string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO event_attendees (event_id, email, invitation_status, invited_at)
VALUES ($1, $2, 'PENDING', NOW()) ON CONFLICT (event_id, email) DO NOTHING`, eventID, email)
	return err
}
