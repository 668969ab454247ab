package calendar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aristath/market-sessions/internal/modules/rules"
	"github.com/aristath/market-sessions/internal/modules/schedule"
)

// Definition is the declarative description of one exchange's calendar, as
// supplied by the external data collaborator: trading week, regular hours
// regimes, the rule set, and the session-membership policy for breaks.
type Definition struct {
	Code     string
	Name     string
	Timezone string

	Week  schedule.WeeklyPattern
	Hours []schedule.HoursRow
	Rules []rules.Rule

	BreakPolicy schedule.BreakPolicy

	// ExcludeBreak makes minute-to-session lookups treat break minutes as
	// non-trading.
	ExcludeBreak bool
}

// Validate checks the definition for structural problems before any build.
func (d Definition) Validate() error {
	if d.Code == "" {
		return fmt.Errorf("definition has no exchange code")
	}
	if d.Timezone == "" {
		return fmt.Errorf("definition %s has no timezone", d.Code)
	}
	if d.Week.IsZero() {
		return fmt.Errorf("definition %s has no trading days", d.Code)
	}
	if len(d.Hours) == 0 {
		return fmt.Errorf("definition %s has no regular hours", d.Code)
	}
	return nil
}

// Fingerprint is a stable hash of everything that influences a build. Two
// definitions with the same fingerprint produce byte-identical session
// tables for the same range, which is what makes a persisted table safe to
// reload.
func (d Definition) Fingerprint() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%s|%v|%d|%v\n", d.Code, d.Timezone, d.Week.TradingDays(), d.BreakPolicy, d.ExcludeBreak)
	for _, h := range d.Hours {
		fmt.Fprintf(&sb, "hours|%s|%s|%s|%s", h.From, h.To, h.Open, h.Close)
		if h.BreakStart != nil {
			fmt.Fprintf(&sb, "|%s|%s", h.BreakStart, h.BreakEnd)
		}
		sb.WriteString("\n")
	}
	for _, r := range d.Rules {
		fmt.Fprintf(&sb, "rule|%s|%s|%s|%v|%d|%d|%d|%d|%d|%d|%s|%s|%d|%d|%d",
			r.Name, r.Kind, r.Effect, r.Override,
			r.Month, r.Day, r.Weekday, r.Nth, r.Anchor, r.Offset,
			r.ValidFrom, r.ValidTo,
			r.Observance.Kind, r.Observance.FromYear, r.Observance.UntilYear)
		for _, dt := range r.Dates {
			fmt.Fprintf(&sb, "|%s", dt)
		}
		sb.WriteString("\n")
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
