package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls   int
	records []Record
	err     error
}

func (s *countingSource) Fetch(ctx context.Context) ([]Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestWithCacheDisabled(t *testing.T) {
	src := &countingSource{}
	assert.Same(t, Source(src), WithCache(src, 0))
	assert.Same(t, Source(src), WithCache(src, -time.Second))
}

func TestWithCacheServesFreshSnapshot(t *testing.T) {
	src := &countingSource{records: []Record{{Organization: "Org A"}}}
	cached := WithCache(src, time.Minute)

	first, err := cached.Fetch(context.Background())
	require.NoError(t, err)
	second, err := cached.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first, second)

	info, ok := cached.(InfoProvider)
	require.True(t, ok)
	state := info.Info()
	assert.True(t, state.Cached)
	assert.Equal(t, 1, state.Rows)
}

func TestWithCacheFailurePassesThrough(t *testing.T) {
	src := &countingSource{err: ErrUnavailable}
	cached := WithCache(src, time.Minute)

	_, err := cached.Fetch(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	// Nothing cached after a failed fetch.
	info := cached.(InfoProvider).Info()
	assert.False(t, info.Cached)
}
