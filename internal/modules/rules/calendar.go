package rules

import (
	"fmt"
)

// InvalidRuleError reports a malformed rule definition or an unresolvable
// precedence conflict. It always indicates a data bug and is surfaced at
// calendar-build time, never swallowed.
type InvalidRuleError struct {
	Rule   string
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid rule %q: %s", e.Rule, e.Reason)
}

// Entry is the resolved effect for a single date, annotated with the rule
// that produced it.
type Entry struct {
	Effect   Effect
	RuleName string
}

// Calendar is an ordered, immutable collection of rules for one exchange.
// Resolution merges per-rule occurrences into at most one effective entry
// per date, applying a documented precedence order:
//
//  1. a rule with Override set beats any rule without it;
//  2. otherwise the rule with the more specific validity window wins
//     (bounded beats unbounded; among bounded, the later ValidFrom wins,
//     then the earlier ValidTo);
//  3. equal specificity with differing effects is an InvalidRuleError.
//
// Rules producing the identical effect on a date are not in conflict. The
// result is independent of rule declaration order.
type Calendar struct {
	rules []Rule
}

// NewCalendar validates every rule and returns the calendar. Validation
// failures abort construction; a partially-wrong calendar is worse than
// none.
func NewCalendar(rs ...Rule) (*Calendar, error) {
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	rules := make([]Rule, len(rs))
	copy(rules, rs)
	return &Calendar{rules: rules}, nil
}

// Rules returns the member rules.
func (c *Calendar) Rules() []Rule {
	return c.rules
}

// Resolve collects occurrences from every member rule over [start, end] and
// merges them into a per-date effect map. Repeated calls with the same range
// produce identical output.
func (c *Calendar) Resolve(start, end Date) (map[Date]Entry, error) {
	type claim struct {
		rule  *Rule
		entry Entry
	}
	claims := make(map[Date]claim)

	for i := range c.rules {
		r := &c.rules[i]
		dates, err := r.Occurrences(start, end)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			incoming := claim{rule: r, entry: Entry{Effect: r.Effect, RuleName: r.Name}}
			existing, taken := claims[d]
			if !taken {
				claims[d] = incoming
				continue
			}
			if existing.entry.Effect == incoming.entry.Effect {
				// Same outcome; keep the deterministic winner so the
				// annotation does not depend on declaration order.
				if precedence(incoming.rule, existing.rule) > 0 {
					claims[d] = incoming
				}
				continue
			}
			switch cmp := precedence(incoming.rule, existing.rule); {
			case cmp > 0:
				claims[d] = incoming
			case cmp < 0:
				// existing wins
			default:
				return nil, &InvalidRuleError{
					Rule: existing.rule.Name,
					Reason: fmt.Sprintf("ambiguous precedence with rule %q on %s (%s vs %s)",
						incoming.rule.Name, d, existing.entry.Effect, incoming.entry.Effect),
				}
			}
		}
	}

	out := make(map[Date]Entry, len(claims))
	for d, cl := range claims {
		out[d] = cl.entry
	}
	return out, nil
}

// precedence returns >0 if a beats b, <0 if b beats a, 0 on a tie.
func precedence(a, b *Rule) int {
	if a.Override != b.Override {
		if a.Override {
			return 1
		}
		return -1
	}
	// Both (or neither) flagged: the narrower, more recently effective
	// validity window wins.
	if c := boundedCompare(a.ValidFrom, b.ValidFrom, true); c != 0 {
		return c
	}
	return boundedCompare(a.ValidTo, b.ValidTo, false)
}

// boundedCompare compares validity bounds: a set bound beats an unset one.
// For lower bounds (laterWins) the later date is more specific; for upper
// bounds the earlier date is.
func boundedCompare(a, b Date, laterWins bool) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return -1
	case b.IsZero():
		return 1
	case a == b:
		return 0
	case a.After(b) == laterWins:
		return 1
	default:
		return -1
	}
}
