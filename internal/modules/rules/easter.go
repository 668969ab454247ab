package rules

import "time"

// GregorianEaster calculates Easter Sunday for a year using the Gregorian
// computus (Meeus/Jones/Butcher).
func GregorianEaster(year int) Date {
	// Golden Number (position in 19-year Metonic cycle)
	a := year % 19

	// Century
	b := year / 100
	c := year % 100

	// Corrections
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451

	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return NewDate(year, time.Month(month), day)
}

// JulianEaster calculates Orthodox Easter Sunday using the Julian computus
// and returns the date on the Gregorian calendar. Valid for 1900-2099, where
// the Julian-Gregorian difference is 13 days.
func JulianEaster(year int) Date {
	a := year % 19
	b := year % 4
	c := year % 7

	// d is the epact, the age of the moon on Jan 1
	d := (19*a + 15) % 30
	// e locates the following Sunday
	e := (2*b + 4*c + 6*d + 6) % 7

	// Easter on the Julian calendar: March 22 + d + e
	day := 22 + d + e
	month := time.March
	if day > 31 {
		day -= 31
		month = time.April
	}

	// Shift from Julian to Gregorian.
	return NewDate(year, month, day).AddDays(13)
}
