// Package calendar classifies dates as business days under a civil holiday
// calendar and provides business-day arithmetic for deadline chains.
package calendar

import "time"

// FixedHoliday is a holiday that falls on the same month and day every year.
type FixedHoliday struct {
	Month time.Month
	Day   int
}

// MovableHoliday computes a holiday's date for a given year.
type MovableHoliday func(year int, loc *time.Location) time.Time

// Calendar answers business-day questions for one civil calendar. All date
// comparisons are by calendar day in the calendar's single time zone;
// time-of-day never participates.
type Calendar struct {
	loc     *time.Location
	fixed   []FixedHoliday
	movable []MovableHoliday
}

// New builds a Calendar from an explicit rule set.
func New(loc *time.Location, fixed []FixedHoliday, movable []MovableHoliday) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc, fixed: fixed, movable: movable}
}

// SouthAfrica returns the South African public-holiday calendar.
func SouthAfrica(loc *time.Location) *Calendar {
	fixed := []FixedHoliday{
		{time.January, 1},   // New Year's Day
		{time.March, 21},    // Human Rights Day
		{time.April, 27},    // Freedom Day
		{time.May, 1},       // Workers' Day
		{time.June, 16},     // Youth Day
		{time.August, 9},    // National Women's Day
		{time.September, 24}, // Heritage Day
		{time.December, 16}, // Day of Reconciliation
		{time.December, 25}, // Christmas Day
		{time.December, 26}, // Day of Goodwill
	}
	movable := []MovableHoliday{goodFriday, familyDay}
	return New(loc, fixed, movable)
}

// Location returns the calendar's time zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// StartOfDay truncates t to midnight in the calendar's time zone.
func (c *Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// HolidaysForYear returns every holiday falling in year, keyed by start of
// day. Any holiday landing on a Sunday contributes an additional entry on the
// following Monday; the Sunday entry is retained. Saturday holidays are not
// shifted, matching real-world SA observance.
func (c *Calendar) HolidaysForYear(year int) map[time.Time]struct{} {
	dates := make([]time.Time, 0, len(c.fixed)+len(c.movable))
	for _, f := range c.fixed {
		dates = append(dates, time.Date(year, f.Month, f.Day, 0, 0, 0, 0, c.loc))
	}
	for _, m := range c.movable {
		dates = append(dates, m(year, c.loc))
	}

	set := make(map[time.Time]struct{}, len(dates)*2)
	for _, d := range dates {
		set[d] = struct{}{}
		if d.Weekday() == time.Sunday {
			set[d.AddDate(0, 0, 1)] = struct{}{}
		}
	}
	return set
}

// IsHoliday reports whether t falls on a holiday, compared by calendar day.
func (c *Calendar) IsHoliday(t time.Time) bool {
	day := c.StartOfDay(t)
	_, ok := c.HolidaysForYear(day.Year())[day]
	return ok
}

// IsBusinessDay reports whether t is a working day: not Saturday, not Sunday,
// not a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	switch c.StartOfDay(t).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(t)
}

// AddBusinessDays returns the date n business days after start. The start
// date itself is never counted; counting begins at start+1 day. For n <= 0
// the start date is returned, normalized to start of day.
func (c *Calendar) AddBusinessDays(start time.Time, n int) time.Time {
	d := c.StartOfDay(start)
	for counted := 0; counted < n; {
		d = d.AddDate(0, 0, 1)
		if c.IsBusinessDay(d) {
			counted++
		}
	}
	return d
}

// BusinessDaysBetween counts business days strictly after a, up to and
// including b. If b is before a the count is negated, making the function
// antisymmetric. Same calendar day yields 0.
func (c *Calendar) BusinessDaysBetween(a, b time.Time) int {
	from, to := c.StartOfDay(a), c.StartOfDay(b)
	if from.Equal(to) {
		return 0
	}
	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}
	count := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			count++
		}
	}
	return sign * count
}

// BusinessDaysUntil returns the number of business days from today to
// deadline: positive means days remaining, negative means days overdue, zero
// means due today. Today is captured once per call.
func (c *Calendar) BusinessDaysUntil(deadline time.Time) int {
	return c.BusinessDaysBetween(time.Now(), deadline)
}

// easterSunday computes Easter Sunday for year using the Meeus/Jones/Butcher
// Gregorian algorithm.
func easterSunday(year int, loc *time.Location) time.Time {
	a := year % 19
	b := year / 100
	cc := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := cc / 4
	k := cc % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451

	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

// goodFriday is two days before Easter Sunday.
func goodFriday(year int, loc *time.Location) time.Time {
	return easterSunday(year, loc).AddDate(0, 0, -2)
}

// familyDay is the day after Good Friday.
func familyDay(year int, loc *time.Location) time.Time {
	return goodFriday(year, loc).AddDate(0, 0, 1)
}
