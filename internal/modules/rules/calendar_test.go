package rules

import (
	"errors"
	"testing"
	"time"
)

func TestCalendar_Resolve_SingleRule(t *testing.T) {
	cal, err := NewCalendar(Rule{
		Name: "Christmas", Kind: KindFixedDate, Effect: Closed(),
		Month: time.December, Day: 25,
	})
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	entries, err := cal.Resolve(MustDate("2024-01-01"), MustDate("2024-12-31"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	entry, ok := entries[MustDate("2024-12-25")]
	if !ok {
		t.Fatal("expected an entry for 2024-12-25")
	}
	if entry.Effect.Kind != EffectClosed || entry.RuleName != "Christmas" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

func TestCalendar_Resolve_OverrideWins(t *testing.T) {
	regular := Rule{
		Name: "Christmas Eve early close", Kind: KindFixedDate,
		Effect: EarlyClose(13, 0), Month: time.December, Day: 24,
	}
	override := Rule{
		Name: "Christmas Eve full closure 2020", Kind: KindDateList,
		Effect: Closed(), Dates: []Date{MustDate("2020-12-24")},
		Override: true,
	}

	for _, order := range [][]Rule{{regular, override}, {override, regular}} {
		cal, err := NewCalendar(order...)
		if err != nil {
			t.Fatalf("NewCalendar failed: %v", err)
		}
		entries, err := cal.Resolve(MustDate("2020-12-01"), MustDate("2020-12-31"))
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		entry := entries[MustDate("2020-12-24")]
		if entry.Effect.Kind != EffectClosed {
			t.Errorf("override rule should win, got %+v", entry)
		}
	}
}

func TestCalendar_Resolve_NarrowerValidityWins(t *testing.T) {
	broad := Rule{
		Name: "National Day closed", Kind: KindFixedDate,
		Effect: Closed(), Month: time.October, Day: 1,
	}
	narrow := Rule{
		Name: "National Day half-day since 2020", Kind: KindFixedDate,
		Effect: EarlyClose(12, 0), Month: time.October, Day: 1,
		ValidFrom: MustDate("2020-01-01"),
	}

	cal, err := NewCalendar(broad, narrow)
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	entries, err := cal.Resolve(MustDate("2019-01-01"), MustDate("2021-12-31"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if got := entries[MustDate("2019-10-01")]; got.Effect.Kind != EffectClosed {
		t.Errorf("2019 should use the broad rule, got %+v", got)
	}
	if got := entries[MustDate("2021-10-01")]; got.Effect.Kind != EffectEarlyClose {
		t.Errorf("2021 should use the narrower rule, got %+v", got)
	}
}

func TestCalendar_Resolve_AmbiguousTieIsError(t *testing.T) {
	a := Rule{
		Name: "rule A", Kind: KindFixedDate,
		Effect: Closed(), Month: time.May, Day: 1,
	}
	b := Rule{
		Name: "rule B", Kind: KindFixedDate,
		Effect: EarlyClose(12, 0), Month: time.May, Day: 1,
	}

	cal, err := NewCalendar(a, b)
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	_, err = cal.Resolve(MustDate("2024-01-01"), MustDate("2024-12-31"))
	var ire *InvalidRuleError
	if !errors.As(err, &ire) {
		t.Fatalf("expected InvalidRuleError for ambiguous tie, got %v", err)
	}
}

func TestCalendar_Resolve_IdenticalEffectsNotAConflict(t *testing.T) {
	// Two rules closing the same date with the same effect collapse to one
	// entry rather than erroring.
	a := Rule{
		Name: "New Year's Day", Kind: KindFixedDate,
		Effect: Closed(), Month: time.January, Day: 1,
	}
	b := Rule{
		Name: "Bank holiday list", Kind: KindDateList,
		Effect: Closed(), Dates: []Date{MustDate("2024-01-01")},
	}

	cal, err := NewCalendar(a, b)
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	entries, err := cal.Resolve(MustDate("2024-01-01"), MustDate("2024-01-31"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected entries to collapse, got %d", len(entries))
	}
}

func TestCalendar_Resolve_OrderIndependence(t *testing.T) {
	rs := []Rule{
		{Name: "Christmas", Kind: KindFixedDate, Effect: Closed(), Month: time.December, Day: 25},
		{Name: "Boxing Day", Kind: KindFixedDate, Effect: Closed(), Month: time.December, Day: 26},
		{Name: "Christmas Eve", Kind: KindFixedDate, Effect: EarlyClose(13, 0), Month: time.December, Day: 24},
		{Name: "Good Friday", Kind: KindAnchorOffset, Effect: Closed(), Anchor: AnchorEasterGregorian, Offset: -2},
	}
	start, end := MustDate("2024-01-01"), MustDate("2024-12-31")

	forward, err := mustResolve(t, rs, start, end)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	reversed := make([]Rule, len(rs))
	for i, r := range rs {
		reversed[len(rs)-1-i] = r
	}
	backward, err := mustResolve(t, reversed, start, end)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(forward) != len(backward) {
		t.Fatalf("entry counts differ: %d vs %d", len(forward), len(backward))
	}
	for d, e := range forward {
		if backward[d] != e {
			t.Errorf("entry for %s differs: %+v vs %+v", d, e, backward[d])
		}
	}
}

func TestCalendar_Resolve_Deterministic(t *testing.T) {
	cal, err := NewCalendar(Rule{
		Name: "Thanksgiving", Kind: KindNthWeekday, Effect: Closed(),
		Month: time.November, Weekday: time.Thursday, Nth: 4,
	})
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	start, end := MustDate("2020-01-01"), MustDate("2025-12-31")
	first, err := cal.Resolve(start, end)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := cal.Resolve(start, end)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("repeated resolve differs in size")
	}
	for d, e := range first {
		if second[d] != e {
			t.Errorf("repeated resolve differs for %s", d)
		}
	}
}

func TestNewCalendar_RejectsInvalidRule(t *testing.T) {
	_, err := NewCalendar(Rule{
		Name: "broken", Kind: KindFixedDate, Month: time.May, Day: 1,
		ValidFrom: MustDate("2030-01-01"), ValidTo: MustDate("2020-01-01"),
	})
	var ire *InvalidRuleError
	if !errors.As(err, &ire) {
		t.Fatalf("expected InvalidRuleError, got %v", err)
	}
}

func mustResolve(t *testing.T, rs []Rule, start, end Date) (map[Date]Entry, error) {
	t.Helper()
	cal, err := NewCalendar(rs...)
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}
	return cal.Resolve(start, end)
}
