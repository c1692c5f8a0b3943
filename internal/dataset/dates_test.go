package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"2025/06/01", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"01/06/2025", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"1/6/2025", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"01-06-2025", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-06-01 12:30:00", time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)},
		{" 2025-06-01 ", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got := ParseDate(tc.raw)
		require.NotNilf(t, got, "raw=%q", tc.raw)
		assert.Truef(t, got.Equal(tc.want), "raw=%q got=%v want=%v", tc.raw, got, tc.want)
	}
}

func TestParseDateMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "soon", "2025-13-40", "غير معروف"} {
		assert.Nilf(t, ParseDate(raw), "raw=%q", raw)
	}
}
