package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-reservation/internal/service"
)

func TestParseInstant(t *testing.T) {
	t.Run("accepts RFC 3339 and normalizes to UTC", func(t *testing.T) {
		got, err := service.ParseInstant("2026-01-07T12:00:00+02:00")
		require.NoError(t, err)
		assert.True(t, got.Equal(time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)))
		assert.Equal(t, time.UTC, got.Location())
	})

	t.Run("accepts offset-less forms as UTC", func(t *testing.T) {
		for _, raw := range []string{"2026-01-07T10:00:00", "2026-01-07T10:00"} {
			got, err := service.ParseInstant(raw)
			require.NoError(t, err, raw)
			assert.True(t, got.Equal(time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)), raw)
		}
	})

	t.Run("rejects anything else", func(t *testing.T) {
		for _, raw := range []string{"", "tomorrow", "2026-01-07", "07/01/2026 10:00"} {
			_, err := service.ParseInstant(raw)
			assert.ErrorIs(t, err, service.ErrInvalidTimeFormat, raw)
		}
	})
}

func TestParseRange(t *testing.T) {
	t.Run("valid pair", func(t *testing.T) {
		rng, err := service.ParseRange("2026-01-07T10:00:00Z", "2026-01-07T11:00:00Z")
		require.NoError(t, err)
		assert.True(t, rng.End.After(rng.Start))
	})

	t.Run("format error wins over range error", func(t *testing.T) {
		_, err := service.ParseRange("garbage", "also garbage")
		assert.ErrorIs(t, err, service.ErrInvalidTimeFormat)
	})

	t.Run("end must be strictly after start", func(t *testing.T) {
		_, err := service.ParseRange("2026-01-07T11:00:00Z", "2026-01-07T10:00:00Z")
		assert.ErrorIs(t, err, service.ErrInvalidRange)

		_, err = service.ParseRange("2026-01-07T11:00:00Z", "2026-01-07T11:00:00Z")
		assert.ErrorIs(t, err, service.ErrInvalidRange)
	})
}

func mustRange(t *testing.T, start, end string) service.TimeRange {
	t.Helper()
	rng, err := service.ParseRange(start, end)
	require.NoError(t, err)
	return rng
}

func TestOverlaps(t *testing.T) {
	base := mustRange(t, "2026-01-07T10:00:00Z", "2026-01-07T11:00:00Z")

	cases := []struct {
		name  string
		other service.TimeRange
		want  bool
	}{
		{"identical", mustRange(t, "2026-01-07T10:00:00Z", "2026-01-07T11:00:00Z"), true},
		{"contained", mustRange(t, "2026-01-07T10:15:00Z", "2026-01-07T10:45:00Z"), true},
		{"straddles start", mustRange(t, "2026-01-07T09:30:00Z", "2026-01-07T10:30:00Z"), true},
		{"straddles end", mustRange(t, "2026-01-07T10:30:00Z", "2026-01-07T11:30:00Z"), true},
		{"touches at start", mustRange(t, "2026-01-07T09:00:00Z", "2026-01-07T10:00:00Z"), false},
		{"touches at end", mustRange(t, "2026-01-07T11:00:00Z", "2026-01-07T12:00:00Z"), false},
		{"disjoint", mustRange(t, "2026-01-07T13:00:00Z", "2026-01-07T14:00:00Z"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base), "overlap is symmetric")
		})
	}
}

func TestShiftWeeks(t *testing.T) {
	base := mustRange(t, "2026-01-07T10:00:00Z", "2026-01-07T11:00:00Z")

	shifted := base.ShiftWeeks(2)
	assert.True(t, shifted.Start.Equal(time.Date(2026, 1, 21, 10, 0, 0, 0, time.UTC)))
	assert.True(t, shifted.End.Equal(time.Date(2026, 1, 21, 11, 0, 0, 0, time.UTC)))

	assert.True(t, base.ShiftWeeks(0).Start.Equal(base.Start), "shift by zero is identity")

	// shifts cross month boundaries by calendar days
	late := mustRange(t, "2026-01-28T10:00:00Z", "2026-01-28T11:00:00Z")
	assert.True(t, late.ShiftWeeks(1).Start.Equal(time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)))
}
