package calendar

import (
	"testing"
	"time"
)

func testCal(t *testing.T) *Calendar {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Johannesburg")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return SouthAfrica(loc)
}

func date(c *Calendar, y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

func TestEasterSunday(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		year  int
		month time.Month
		day   int
	}{
		{2017, time.April, 16},
		{2023, time.April, 9},
		{2024, time.March, 31},
		{2025, time.April, 20},
		{2026, time.April, 5},
	}
	for _, tt := range tests {
		got := easterSunday(tt.year, loc)
		want := time.Date(tt.year, tt.month, tt.day, 0, 0, 0, 0, loc)
		if !got.Equal(want) {
			t.Errorf("easterSunday(%d) = %v, want %v", tt.year, got, want)
		}
	}
}

func TestHolidaysForYear_2023(t *testing.T) {
	c := testCal(t)
	set := c.HolidaysForYear(2023)

	want := []time.Time{
		date(c, 2023, time.January, 1),  // New Year's Day, a Sunday
		date(c, 2023, time.January, 2),  // observed Monday
		date(c, 2023, time.March, 21),
		date(c, 2023, time.April, 7),    // Good Friday
		date(c, 2023, time.April, 8),    // day after Good Friday
		date(c, 2023, time.April, 27),
		date(c, 2023, time.May, 1),
		date(c, 2023, time.June, 16),
		date(c, 2023, time.August, 9),
		date(c, 2023, time.September, 24), // Heritage Day, a Sunday
		date(c, 2023, time.September, 25), // observed Monday
		date(c, 2023, time.December, 16),
		date(c, 2023, time.December, 25),
		date(c, 2023, time.December, 26),
	}
	if len(set) != len(want) {
		t.Errorf("len(HolidaysForYear(2023)) = %d, want %d", len(set), len(want))
	}
	for _, d := range want {
		if _, ok := set[d]; !ok {
			t.Errorf("HolidaysForYear(2023) missing %s", d.Format("2006-01-02"))
		}
	}
}

func TestHolidaysForYear_SundayObservance(t *testing.T) {
	c := testCal(t)
	for year := 2015; year <= 2035; year++ {
		set := c.HolidaysForYear(year)
		for d := range set {
			if d.Weekday() == time.Sunday {
				monday := d.AddDate(0, 0, 1)
				if _, ok := set[monday]; !ok {
					t.Errorf("%s is a Sunday holiday but %s is not in the set",
						d.Format("2006-01-02"), monday.Format("2006-01-02"))
				}
			}
		}
	}
}

func TestHolidaysForYear_SaturdayNotShifted(t *testing.T) {
	c := testCal(t)
	// Day of Reconciliation 2023-12-16 falls on a Saturday.
	set := c.HolidaysForYear(2023)
	if _, ok := set[date(c, 2023, time.December, 18)]; ok {
		t.Error("Saturday holiday 2023-12-16 must not produce a Monday entry")
	}
}

func TestIsBusinessDay(t *testing.T) {
	c := testCal(t)
	tests := []struct {
		name string
		d    time.Time
		want bool
	}{
		{"ordinary Wednesday", date(c, 2024, time.June, 5), true},
		{"Saturday", date(c, 2024, time.June, 8), false},
		{"Sunday", date(c, 2024, time.June, 9), false},
		{"fixed holiday", date(c, 2024, time.March, 21), false},
		{"Good Friday", date(c, 2024, time.March, 29), false},
		{"observed Monday after Sunday holiday", date(c, 2024, time.June, 17), false},
		{"time of day ignored", date(c, 2024, time.March, 21).Add(15 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsBusinessDay(tt.d); got != tt.want {
				t.Errorf("IsBusinessDay(%s) = %v, want %v", tt.d.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestAddBusinessDays(t *testing.T) {
	c := testCal(t)
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"zero returns start of day", date(c, 2024, time.June, 3).Add(9 * time.Hour), 0, date(c, 2024, time.June, 3)},
		{"negative returns start of day", date(c, 2024, time.June, 3), -4, date(c, 2024, time.June, 3)},
		{"single day over weekend", date(c, 2024, time.June, 7), 1, date(c, 2024, time.June, 10)},
		{"skips fixed holiday", date(c, 2024, time.March, 20), 2, date(c, 2024, time.March, 25)},
		{"skips Easter block", date(c, 2024, time.March, 28), 1, date(c, 2024, time.April, 1)},
		{"ten days from a Monday", date(c, 2024, time.June, 3), 10, date(c, 2024, time.June, 18)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.AddBusinessDays(tt.start, tt.n)
			if !got.Equal(tt.want) {
				t.Errorf("AddBusinessDays(%s, %d) = %s, want %s",
					tt.start.Format("2006-01-02"), tt.n,
					got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestAddBusinessDays_ResultIsBusinessDay(t *testing.T) {
	c := testCal(t)
	d := date(c, 2024, time.January, 2)
	for i := 0; i < 120; i++ {
		next := c.AddBusinessDays(d, 1)
		if !next.After(d) {
			t.Fatalf("AddBusinessDays(%s, 1) = %s, not strictly later",
				d.Format("2006-01-02"), next.Format("2006-01-02"))
		}
		if !c.IsBusinessDay(next) {
			t.Fatalf("AddBusinessDays(%s, 1) = %s, not a business day",
				d.Format("2006-01-02"), next.Format("2006-01-02"))
		}
		d = next
	}
}

func TestBusinessDaysBetween(t *testing.T) {
	c := testCal(t)
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", date(c, 2024, time.June, 3), date(c, 2024, time.June, 3), 0},
		{"same day different clock", date(c, 2024, time.June, 3).Add(8 * time.Hour), date(c, 2024, time.June, 3).Add(17 * time.Hour), 0},
		{"forward over weekend", date(c, 2024, time.June, 7), date(c, 2024, time.June, 10), 1},
		{"ten days forward", date(c, 2024, time.June, 3), date(c, 2024, time.June, 18), 10},
		{"backward one day", date(c, 2024, time.June, 10), date(c, 2024, time.June, 7), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.BusinessDaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("BusinessDaysBetween(%s, %s) = %d, want %d",
					tt.a.Format("2006-01-02"), tt.b.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestBusinessDaysBetween_Antisymmetric(t *testing.T) {
	c := testCal(t)
	base := date(c, 2024, time.March, 1)
	for i := 0; i < 60; i += 7 {
		for j := 0; j < 60; j += 11 {
			a := base.AddDate(0, 0, i)
			b := base.AddDate(0, 0, j)
			if got, want := c.BusinessDaysBetween(a, b), -c.BusinessDaysBetween(b, a); got != want {
				t.Errorf("BusinessDaysBetween(%s, %s) = %d, want %d",
					a.Format("2006-01-02"), b.Format("2006-01-02"), got, want)
			}
		}
	}
}

func TestBusinessDaysUntil_Today(t *testing.T) {
	c := testCal(t)
	if got := c.BusinessDaysUntil(time.Now()); got != 0 {
		t.Errorf("BusinessDaysUntil(now) = %d, want 0", got)
	}
}

func TestBusinessDaysUntil_PastBusinessDay(t *testing.T) {
	c := testCal(t)
	if !c.IsBusinessDay(time.Now()) {
		t.Skip("deadline-overdue count of -1 only holds when today is a business day")
	}
	// Walk back until we find a business day strictly before today, then
	// confirm the count is negative.
	d := c.StartOfDay(time.Now()).AddDate(0, 0, -1)
	for !c.IsBusinessDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	if got := c.BusinessDaysUntil(d); got != -1 {
		t.Errorf("BusinessDaysUntil(previous business day) = %d, want -1", got)
	}
}
