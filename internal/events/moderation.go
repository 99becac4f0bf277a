package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ModerationAction enumerates recorded lifecycle actions.
type ModerationAction string

const (
	// ModerationApprove marks an approve action.
	ModerationApprove ModerationAction = "APPROVE"
	// ModerationReject marks a reject action.
	ModerationReject ModerationAction = "REJECT"
	// ModerationHold marks a hold action.
	ModerationHold ModerationAction = "HOLD"
	// ModerationReactivate marks a reactivate action.
	ModerationReactivate ModerationAction = "REACTIVATE"
	// ModerationInvite marks an invitation being issued.
	ModerationInvite ModerationAction = "INVITE"
)

// ModerationLog represents a single lifecycle history record.
type ModerationLog struct {
	Ref     uuid.UUID
	EventID int64
	ActorID int64
	Action  ModerationAction
	Note    string
	At      time.Time
}

// ModerationRecorder persists lifecycle history.
type ModerationRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewModerationRecorder constructs ModerationRecorder.
func NewModerationRecorder(pool *pgxpool.Pool, logger *slog.Logger) *ModerationRecorder {
	return &ModerationRecorder{pool: pool, logger: logger}
}

// Record writes a moderation entry to the database.
func (r *ModerationRecorder) Record(ctx context.Context, log ModerationLog) error {
	if r == nil {
		return errors.New("moderation recorder not initialised")
	}
	if log.EventID == 0 {
		return errors.New("moderation event required")
	}
	if log.ActorID == 0 {
		return errors.New("moderation actor required")
	}
	if log.Action == "" {
		return errors.New("moderation action required")
	}
	if log.Ref == uuid.Nil {
		log.Ref = uuid.New()
	}
	if log.At.IsZero() {
		log.At = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO event_moderation_log (ref, event_id, actor_id, action, note, at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		log.Ref, log.EventID, log.ActorID, string(log.Action), log.Note, log.At)
	if err != nil {
		r.logger.Error("record moderation", slog.Any("error", err))
		return err
	}
	return nil
}

// List returns moderation history for an event, oldest first.
func (r *ModerationRecorder) List(ctx context.Context, eventID int64) ([]ModerationLog, error) {
	if r == nil {
		return nil, errors.New("moderation recorder not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT ref, event_id, actor_id, action, note, at
FROM event_moderation_log WHERE event_id=$1 ORDER BY at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []ModerationLog
	for rows.Next() {
		var l ModerationLog
		var action string
		if err := rows.Scan(&l.Ref, &l.EventID, &l.ActorID, &action, &l.Note, &l.At); err != nil {
			return nil, err
		}
		l.Action = ModerationAction(action)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
