package history

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanad-aid/sanadbot/core/logger"
	"log/slog"
)

// Store persists entries to Postgres.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const insertEntry = `
INSERT INTO search_log (chat_id, name, service, governorate, outcome, matches, created_at)
VALUES (:chat_id, :name, :service, :governorate, :outcome, :matches, :created_at)`

// Record inserts one entry. Failures are logged and swallowed so a broken
// database never blocks user replies.
func (s *Store) Record(ctx context.Context, e Entry) {
	if s == nil || s.db == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	if _, err := s.db.NamedExecContext(writeCtx, insertEntry, e); err != nil {
		logger.SVCHistory.LogAttrs(ctx, slog.LevelWarn, "search.record.failed",
			slog.String("status", "fail"),
			slog.Int64("chat_id", e.ChatID),
			slog.String("outcome", e.Outcome),
			slog.String("err", err.Error()),
		)
		return
	}

	logger.SVCHistory.LogAttrs(ctx, slog.LevelDebug, "search.recorded",
		slog.String("status", "ok"),
		slog.Int64("chat_id", e.ChatID),
		slog.String("service", e.Service),
		slog.String("governorate", e.Governorate),
		slog.String("outcome", e.Outcome),
		slog.Int("matches", e.Matches),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
}
