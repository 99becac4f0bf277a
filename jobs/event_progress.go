package jobs

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvanceEventProgress moves approved events along their schedule: upcoming
// events whose start time has passed become active, active events whose end
// time has passed complete. Events on hold or deactivated are left untouched
// since their event_status is neither UPCOMING nor ACTIVE.
func AdvanceEventProgress(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if pool == nil {
		return nil
	}
	started, err := pool.Exec(ctx, `UPDATE events
SET event_status='ACTIVE', updated_at=NOW()
WHERE NOT deleted AND approval_status='APPROVED' AND event_status='UPCOMING' AND start_time <= NOW()`)
	if err != nil {
		if logger != nil {
			logger.Error("advance events to active", slog.Any("error", err))
		}
		return err
	}
	completed, err := pool.Exec(ctx, `UPDATE events
SET event_status='COMPLETED', updated_at=NOW()
WHERE NOT deleted AND approval_status='APPROVED' AND event_status='ACTIVE' AND end_time <= NOW()`)
	if err != nil {
		if logger != nil {
			logger.Error("advance events to completed", slog.Any("error", err))
		}
		return err
	}
	if logger != nil && (started.RowsAffected() > 0 || completed.RowsAffected() > 0) {
		logger.Info("event progress advanced",
			slog.Int64("started", started.RowsAffected()),
			slog.Int64("completed", completed.RowsAffected()))
	}
	return nil
}
