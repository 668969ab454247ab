package schedule

import (
	"fmt"
	"time"

	"github.com/aristath/market-sessions/internal/modules/rules"
)

// Session is one trading day's interval of market activity. The label is the
// exchange-local calendar date; all timestamps are UTC.
type Session struct {
	Label rules.Date

	MarketOpen  time.Time
	MarketClose time.Time

	// Intraday break, both nil when the session has none.
	BreakStart *time.Time
	BreakEnd   *time.Time

	// Deviation flags relative to the exchange's regular schedule for the
	// label's hours regime.
	IsEarlyClose bool
	IsLateOpen   bool
}

// HasBreak reports whether the session is split by an intraday break.
func (s Session) HasBreak() bool {
	return s.BreakStart != nil && s.BreakEnd != nil
}

// Contains reports whether the UTC timestamp falls inside the session's
// trading interval [open, close). With excludeBreak set, minutes inside the
// intraday break do not count as trading.
func (s Session) Contains(ts time.Time, excludeBreak bool) bool {
	if ts.Before(s.MarketOpen) || !ts.Before(s.MarketClose) {
		return false
	}
	if excludeBreak && s.HasBreak() &&
		!ts.Before(*s.BreakStart) && ts.Before(*s.BreakEnd) {
		return false
	}
	return true
}

// Duration is the trading time of the session, net of the break.
func (s Session) Duration() time.Duration {
	d := s.MarketClose.Sub(s.MarketOpen)
	if s.HasBreak() {
		d -= s.BreakEnd.Sub(*s.BreakStart)
	}
	return d
}

// validate enforces the per-session ordering invariants.
func (s Session) validate() error {
	if !s.MarketOpen.Before(s.MarketClose) {
		return fmt.Errorf("session %s: open %s is not before close %s",
			s.Label, s.MarketOpen.Format(time.RFC3339), s.MarketClose.Format(time.RFC3339))
	}
	if (s.BreakStart == nil) != (s.BreakEnd == nil) {
		return fmt.Errorf("session %s: break is only half-set", s.Label)
	}
	if s.HasBreak() {
		if !s.MarketOpen.Before(*s.BreakStart) || !s.BreakStart.Before(*s.BreakEnd) || !s.BreakEnd.Before(s.MarketClose) {
			return fmt.Errorf("session %s: break %s-%s does not sit inside %s-%s",
				s.Label,
				s.BreakStart.Format(time.RFC3339), s.BreakEnd.Format(time.RFC3339),
				s.MarketOpen.Format(time.RFC3339), s.MarketClose.Format(time.RFC3339))
		}
	}
	return nil
}
