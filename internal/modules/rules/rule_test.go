package rules

import (
	"errors"
	"testing"
	"time"
)

func TestRule_FixedDate_Occurrences(t *testing.T) {
	rule := Rule{
		Name:   "Independence Day",
		Kind:   KindFixedDate,
		Effect: Closed(),
		Month:  time.July,
		Day:    4,
	}

	got, err := rule.Occurrences(MustDate("2022-01-01"), MustDate("2024-12-31"))
	if err != nil {
		t.Fatalf("Occurrences failed: %v", err)
	}

	expected := []Date{MustDate("2022-07-04"), MustDate("2023-07-04"), MustDate("2024-07-04")}
	assertDates(t, got, expected)
}

func TestRule_FixedDate_NearestWeekdayObservance(t *testing.T) {
	rule := Rule{
		Name:       "Independence Day",
		Kind:       KindFixedDate,
		Effect:     Closed(),
		Month:      time.July,
		Day:        4,
		Observance: NearestWeekday(),
	}

	// 2020-07-04 is a Saturday (observed Friday 07-03),
	// 2021-07-04 is a Sunday (observed Monday 07-05).
	got, err := rule.Occurrences(MustDate("2020-01-01"), MustDate("2021-12-31"))
	if err != nil {
		t.Fatalf("Occurrences failed: %v", err)
	}

	expected := []Date{MustDate("2020-07-03"), MustDate("2021-07-05")}
	assertDates(t, got, expected)
}

func TestRule_FixedDate_ObservanceAcrossYearBoundary(t *testing.T) {
	// New Year's Day 2022 falls on a Saturday; nearest-weekday observance
	// moves it to Friday 2021-12-31. A query for 2021 must pick it up.
	rule := Rule{
		Name:       "New Year's Day",
		Kind:       KindFixedDate,
		Effect:     Closed(),
		Month:      time.January,
		Day:        1,
		Observance: NearestWeekday(),
	}

	got, err := rule.Occurrences(MustDate("2021-12-01"), MustDate("2021-12-31"))
	if err != nil {
		t.Fatalf("Occurrences failed: %v", err)
	}

	assertDates(t, got, []Date{MustDate("2021-12-31")})
}

func TestRule_NthWeekday(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		start    string
		end      string
		expected []string
	}{
		{
			name: "Thanksgiving is the 4th Thursday of November",
			rule: Rule{Name: "Thanksgiving", Kind: KindNthWeekday, Effect: Closed(),
				Month: time.November, Weekday: time.Thursday, Nth: 4},
			start:    "2023-01-01",
			end:      "2025-12-31",
			expected: []string{"2023-11-23", "2024-11-28", "2025-11-27"},
		},
		{
			name: "Memorial Day is the last Monday of May",
			rule: Rule{Name: "Memorial Day", Kind: KindNthWeekday, Effect: Closed(),
				Month: time.May, Weekday: time.Monday, Nth: -1},
			start:    "2024-01-01",
			end:      "2025-12-31",
			expected: []string{"2024-05-27", "2025-05-26"},
		},
		{
			// November 2024 has five Fridays, so the day after the 4th
			// Thursday is not the 4th Friday.
			name: "day after Thanksgiving via offset",
			rule: Rule{Name: "Day After Thanksgiving", Kind: KindNthWeekday, Effect: EarlyClose(13, 0),
				Month: time.November, Weekday: time.Thursday, Nth: 4, Offset: 1},
			start:    "2023-01-01",
			end:      "2025-12-31",
			expected: []string{"2023-11-24", "2024-11-29", "2025-11-28"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rule.Occurrences(MustDate(tt.start), MustDate(tt.end))
			if err != nil {
				t.Fatalf("Occurrences failed: %v", err)
			}
			expected := make([]Date, len(tt.expected))
			for i, s := range tt.expected {
				expected[i] = MustDate(s)
			}
			assertDates(t, got, expected)
		})
	}
}

func TestRule_EasterOffset(t *testing.T) {
	rule := Rule{
		Name:   "Good Friday",
		Kind:   KindAnchorOffset,
		Effect: Closed(),
		Anchor: AnchorEasterGregorian,
		Offset: -2,
	}

	got, err := rule.Occurrences(MustDate("2024-01-01"), MustDate("2024-12-31"))
	if err != nil {
		t.Fatalf("Occurrences failed: %v", err)
	}

	// Easter 2024 is March 31, so Good Friday is March 29.
	assertDates(t, got, []Date{MustDate("2024-03-29")})
}

func TestRule_LunarNewYearOffset_ConsecutiveYears(t *testing.T) {
	rule := Rule{
		Name:   "Lunar New Year Day 2",
		Kind:   KindAnchorOffset,
		Effect: Closed(),
		Anchor: AnchorLunarNewYear,
		Offset: 1,
	}

	got, err := rule.Occurrences(MustDate("2024-01-01"), MustDate("2026-12-31"))
	if err != nil {
		t.Fatalf("Occurrences failed: %v", err)
	}

	// LNY: 2024-02-10, 2025-01-29, 2026-02-17; the rule lands one day after.
	expected := []Date{MustDate("2024-02-11"), MustDate("2025-01-30"), MustDate("2026-02-18")}
	assertDates(t, got, expected)
}

func TestRule_LunarNewYear_OutsideTable(t *testing.T) {
	rule := Rule{
		Name:   "Lunar New Year",
		Kind:   KindAnchorOffset,
		Effect: Closed(),
		Anchor: AnchorLunarNewYear,
	}

	_, err := rule.Occurrences(MustDate("1950-01-01"), MustDate("1950-12-31"))
	var ire *InvalidRuleError
	if !errors.As(err, &ire) {
		t.Fatalf("expected InvalidRuleError for out-of-table year, got %v", err)
	}
}

func TestRule_ValidityWindow(t *testing.T) {
	rule := Rule{
		Name:      "Juneteenth",
		Kind:      KindFixedDate,
		Effect:    Closed(),
		Month:     time.June,
		Day:       19,
		ValidFrom: MustDate("2022-01-01"),
	}

	got, err := rule.Occurrences(MustDate("2020-01-01"), MustDate("2023-12-31"))
	if err != nil {
		t.Fatalf("Occurrences failed: %v", err)
	}

	// Nothing before the rule takes effect in 2022.
	expected := []Date{MustDate("2022-06-19"), MustDate("2023-06-19")}
	assertDates(t, got, expected)
}

func TestRule_DateList(t *testing.T) {
	rule := Rule{
		Name:   "Typhoon closures",
		Kind:   KindDateList,
		Effect: Closed(),
		Dates:  []Date{MustDate("2015-07-10"), MustDate("2016-09-27"), MustDate("2016-09-28")},
	}

	got, err := rule.Occurrences(MustDate("2016-01-01"), MustDate("2016-12-31"))
	if err != nil {
		t.Fatalf("Occurrences failed: %v", err)
	}

	assertDates(t, got, []Date{MustDate("2016-09-27"), MustDate("2016-09-28")})
}

func TestRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{
			name: "valid fixed date",
			rule: Rule{Name: "ok", Kind: KindFixedDate, Month: time.May, Day: 1},
		},
		{
			name:    "missing name",
			rule:    Rule{Kind: KindFixedDate, Month: time.May, Day: 1},
			wantErr: true,
		},
		{
			name: "inverted validity window",
			rule: Rule{Name: "bad window", Kind: KindFixedDate, Month: time.May, Day: 1,
				ValidFrom: MustDate("2020-01-01"), ValidTo: MustDate("2010-01-01")},
			wantErr: true,
		},
		{
			name:    "invalid month",
			rule:    Rule{Name: "bad month", Kind: KindFixedDate, Month: 13, Day: 1},
			wantErr: true,
		},
		{
			name:    "invalid nth",
			rule:    Rule{Name: "bad nth", Kind: KindNthWeekday, Month: time.May, Weekday: time.Monday, Nth: 0},
			wantErr: true,
		},
		{
			name:    "empty date list",
			rule:    Rule{Name: "empty list", Kind: KindDateList},
			wantErr: true,
		},
		{
			name: "invalid effect time",
			rule: Rule{Name: "bad effect", Kind: KindFixedDate, Month: time.May, Day: 1,
				Effect: EarlyClose(25, 0)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func assertDates(t *testing.T, got, expected []Date) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("got %d dates %v, want %d %v", len(got), got, len(expected), expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("date[%d] = %s, want %s", i, got[i], expected[i])
		}
	}
}
