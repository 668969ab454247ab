package rules

import "time"

// Chinese Lunar New Year dates on the Gregorian calendar. Lunisolar
// conversion is not computed analytically; like the published astronomical
// almanacs this is a table, and years outside it are a hard error rather
// than an approximation.
const (
	lunarTableFirstYear = 1990
	lunarTableLastYear  = 2035
)

var lunarNewYearDates = map[int]Date{
	1990: NewDate(1990, time.January, 27),
	1991: NewDate(1991, time.February, 15),
	1992: NewDate(1992, time.February, 4),
	1993: NewDate(1993, time.January, 23),
	1994: NewDate(1994, time.February, 10),
	1995: NewDate(1995, time.January, 31),
	1996: NewDate(1996, time.February, 19),
	1997: NewDate(1997, time.February, 7),
	1998: NewDate(1998, time.January, 28),
	1999: NewDate(1999, time.February, 16),
	2000: NewDate(2000, time.February, 5),
	2001: NewDate(2001, time.January, 24),
	2002: NewDate(2002, time.February, 12),
	2003: NewDate(2003, time.February, 1),
	2004: NewDate(2004, time.January, 22),
	2005: NewDate(2005, time.February, 9),
	2006: NewDate(2006, time.January, 29),
	2007: NewDate(2007, time.February, 18),
	2008: NewDate(2008, time.February, 7),
	2009: NewDate(2009, time.January, 26),
	2010: NewDate(2010, time.February, 14),
	2011: NewDate(2011, time.February, 3),
	2012: NewDate(2012, time.January, 23),
	2013: NewDate(2013, time.February, 10),
	2014: NewDate(2014, time.January, 31),
	2015: NewDate(2015, time.February, 19),
	2016: NewDate(2016, time.February, 8),
	2017: NewDate(2017, time.January, 28),
	2018: NewDate(2018, time.February, 16),
	2019: NewDate(2019, time.February, 5),
	2020: NewDate(2020, time.January, 25),
	2021: NewDate(2021, time.February, 12),
	2022: NewDate(2022, time.February, 1),
	2023: NewDate(2023, time.January, 22),
	2024: NewDate(2024, time.February, 10),
	2025: NewDate(2025, time.January, 29),
	2026: NewDate(2026, time.February, 17),
	2027: NewDate(2027, time.February, 6),
	2028: NewDate(2028, time.January, 26),
	2029: NewDate(2029, time.February, 13),
	2030: NewDate(2030, time.February, 3),
	2031: NewDate(2031, time.January, 23),
	2032: NewDate(2032, time.February, 11),
	2033: NewDate(2033, time.January, 31),
	2034: NewDate(2034, time.February, 19),
	2035: NewDate(2035, time.February, 8),
}

// LunarNewYear returns the Gregorian date of Chinese Lunar New Year for the
// given year. ok is false when the year is outside the conversion table.
func LunarNewYear(year int) (Date, bool) {
	d, ok := lunarNewYearDates[year]
	return d, ok
}

// LunarNewYearRange reports the year span the conversion table covers.
func LunarNewYearRange() (first, last int) {
	return lunarTableFirstYear, lunarTableLastYear
}
