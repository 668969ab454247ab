package schedule

import (
	"fmt"

	"github.com/aristath/market-sessions/internal/modules/rules"
)

// ClockTime is an exchange-local wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// At is shorthand for constructing a ClockTime.
func At(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute}
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// minuteOfDay orders clock times within a day.
func (c ClockTime) minuteOfDay() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) before(other ClockTime) bool {
	return c.minuteOfDay() < other.minuteOfDay()
}

func (c ClockTime) valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

// HoursRow declares the regular open/close (and optional intraday break)
// times for a span of history. Exchanges change their hours over time, so a
// definition carries one row per regime, selected by effective date. Zero
// From/To dates mean unbounded on that side, mirroring how the declared
// times "since forever" are written.
type HoursRow struct {
	From rules.Date
	To   rules.Date

	Open  ClockTime
	Close ClockTime

	// Optional intraday break (lunch). Both set or both nil.
	BreakStart *ClockTime
	BreakEnd   *ClockTime
}

// contains reports whether the row's effective range covers the date.
func (h HoursRow) contains(d rules.Date) bool {
	if !h.From.IsZero() && d.Before(h.From) {
		return false
	}
	if !h.To.IsZero() && d.After(h.To) {
		return false
	}
	return true
}

// validate checks internal ordering of the declared times.
func (h HoursRow) validate() error {
	if !h.Open.valid() || !h.Close.valid() {
		return fmt.Errorf("hours row has invalid open/close (%s-%s)", h.Open, h.Close)
	}
	if !h.Open.before(h.Close) {
		return fmt.Errorf("hours row open %s is not before close %s", h.Open, h.Close)
	}
	if !h.From.IsZero() && !h.To.IsZero() && h.From.After(h.To) {
		return fmt.Errorf("hours row effective-from %s is after effective-to %s", h.From, h.To)
	}
	if (h.BreakStart == nil) != (h.BreakEnd == nil) {
		return fmt.Errorf("hours row declares only one side of the break")
	}
	if h.BreakStart != nil {
		if !h.BreakStart.valid() || !h.BreakEnd.valid() {
			return fmt.Errorf("hours row has invalid break (%s-%s)", h.BreakStart, h.BreakEnd)
		}
		if !h.Open.before(*h.BreakStart) || !h.BreakStart.before(*h.BreakEnd) || !h.BreakEnd.before(h.Close) {
			return fmt.Errorf("hours row break %s-%s does not sit inside %s-%s",
				h.BreakStart, h.BreakEnd, h.Open, h.Close)
		}
	}
	return nil
}

// overlapsRange reports whether two rows' effective date ranges intersect.
// A zero From or To is unbounded on that side.
func (h HoursRow) overlapsRange(other HoursRow) bool {
	if !h.To.IsZero() && !other.From.IsZero() && h.To.Before(other.From) {
		return false
	}
	if !other.To.IsZero() && !h.From.IsZero() && other.To.Before(h.From) {
		return false
	}
	return true
}

// selectHours picks the row whose effective range contains the date.
// Overlapping rows are rejected up front by Build, so at most one row can
// match any date.
func selectHours(hours []HoursRow, d rules.Date) (HoursRow, bool) {
	for _, row := range hours {
		if row.contains(d) {
			return row, true
		}
	}
	return HoursRow{}, false
}
