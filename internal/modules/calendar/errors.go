package calendar

import (
	"fmt"

	"github.com/aristath/market-sessions/internal/modules/rules"
)

// NotSessionError reports a date that parses to a valid calendar day but is
// not a trading session. It is an ordinary, caller-visible outcome, not a
// build fault; the message says whether the date sits before, inside or
// after the built table so callers can tell a holiday from a bounds miss.
type NotSessionError struct {
	Exchange string
	Date     rules.Date
	First    rules.Date
	Last     rules.Date
}

func (e *NotSessionError) Error() string {
	switch {
	case e.First.IsZero() && e.Last.IsZero():
		return fmt.Sprintf("'%s' is not a session: calendar %q has no sessions in its built range",
			e.Date, e.Exchange)
	case e.Date.Before(e.First):
		return fmt.Sprintf("'%s' is earlier than the first session of calendar %q ('%s')",
			e.Date, e.Exchange, e.First)
	case e.Date.After(e.Last):
		return fmt.Sprintf("'%s' is later than the last session of calendar %q ('%s')",
			e.Date, e.Exchange, e.Last)
	default:
		return fmt.Sprintf("'%s' is not a session of calendar %q", e.Date, e.Exchange)
	}
}

// OutOfRangeError reports a query outside the built table's bounds. It is
// recoverable: callers may extend the calendar with EnsureRange and retry.
type OutOfRangeError struct {
	Exchange string
	Date     rules.Date
	Start    rules.Date
	End      rules.Date
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("'%s' is outside the built range %s..%s of calendar %q",
		e.Date, e.Start, e.End, e.Exchange)
}
