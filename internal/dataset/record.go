// Package dataset fetches and types the remote aid-project table.
package dataset

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a snapshot that could not be produced at all.
// Distinct from an empty snapshot, which is a valid zero-row result.
var ErrUnavailable = errors.New("dataset unavailable")

// Record is one typed row of the aid-project dataset. Nil dates mean the
// source value was missing or unparseable.
type Record struct {
	Organization string
	ServiceType  string
	Governorate  string
	ContactPhone string
	Start        *time.Time
	End          *time.Time
}

// Source supplies the current dataset snapshot. Implementations wrap
// fetch and parse failures in ErrUnavailable.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}
