package schedule

import (
	"testing"
	"time"
)

func TestWeeklyPattern(t *testing.T) {
	western := MondayToFriday()
	if !western.IsTradingDay(time.Wednesday) {
		t.Error("Wednesday should trade Mon-Fri")
	}
	if western.IsTradingDay(time.Saturday) || western.IsTradingDay(time.Sunday) {
		t.Error("weekend should not trade Mon-Fri")
	}

	gulf := SundayToThursday()
	if !gulf.IsTradingDay(time.Sunday) {
		t.Error("Sunday should trade Sun-Thu")
	}
	if gulf.IsTradingDay(time.Friday) {
		t.Error("Friday should not trade Sun-Thu")
	}

	if !(WeeklyPattern{}).IsZero() {
		t.Error("empty pattern should be zero")
	}
	if MondayToFriday().IsZero() {
		t.Error("Mon-Fri pattern should not be zero")
	}
}
