package service

import "time"

// TimeRange is a validated half-open interval [Start, End). Every
// reservation's time fields pass through NewTimeRange or ParseRange
// before reaching storage, so a stored interval always satisfies
// End > Start.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// instantLayouts are the accepted wire formats for a point in time.
// RFC 3339 with offset is canonical; the offset-less form is accepted
// and interpreted as UTC.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseInstant parses a single timestamp string into a UTC instant.
// It returns ErrInvalidTimeFormat when no accepted layout matches.
func ParseInstant(raw string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimeFormat
}

// ParseRange parses the raw start and end strings and validates their
// ordering. It fails with ErrInvalidTimeFormat if either value does not
// parse and with ErrInvalidRange unless end is strictly after start.
func ParseRange(startRaw, endRaw string) (TimeRange, error) {
	start, err := ParseInstant(startRaw)
	if err != nil {
		return TimeRange{}, err
	}
	end, err := ParseInstant(endRaw)
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(start, end)
}

// NewTimeRange validates an already-parsed pair of instants.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !end.After(start) {
		return TimeRange{}, ErrInvalidRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// ShiftWeeks returns the range moved forward by 7*i calendar days.
// AddDate performs calendar arithmetic, so the wall-clock time of both
// endpoints is preserved across daylight-saving transitions rather than
// the elapsed duration.
func (r TimeRange) ShiftWeeks(i int) TimeRange {
	return TimeRange{
		Start: r.Start.AddDate(0, 0, 7*i),
		End:   r.End.AddDate(0, 0, 7*i),
	}
}

// Overlaps reports whether two half-open intervals collide. Intervals
// that merely touch (one ends exactly where the other starts) do not
// overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}
