// Package history records completed searches for later analysis.
// The feature is optional: a nil recorder disables it entirely.
package history

import (
	"context"
	"time"
)

// Query outcomes stored with each entry.
const (
	OutcomeMatches     = "matches"
	OutcomeNoMatches   = "no_matches"
	OutcomeUnavailable = "unavailable"
)

// Entry is one completed search.
type Entry struct {
	ChatID      int64     `db:"chat_id"`
	Name        string    `db:"name"`
	Service     string    `db:"service"`
	Governorate string    `db:"governorate"`
	Outcome     string    `db:"outcome"`
	Matches     int       `db:"matches"`
	At          time.Time `db:"created_at"`
}

// Recorder receives one entry per completed query. Implementations must
// degrade failures to a log line; recording never blocks a user reply.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}
