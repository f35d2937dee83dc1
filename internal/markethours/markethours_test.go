package markethours

import (
	"testing"
	"time"
)

func jst(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, JST)
}

func TestIsTradingDay(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"regular weekday", jst(2026, time.August, 21, 10, 0), true},
		{"saturday", jst(2026, time.August, 22, 10, 0), false},
		{"sunday", jst(2026, time.August, 23, 10, 0), false},
		{"national holiday", jst(2026, time.February, 23, 10, 0), false},
		{"new year closure", jst(2026, time.January, 2, 10, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTradingDay(tc.at); got != tc.want {
				t.Errorf("IsTradingDay(%s) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestIsMarketOpen(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"just after open", jst(2026, time.August, 21, 9, 0), true},
		{"midday", jst(2026, time.August, 21, 12, 0), true},
		{"minute before close", jst(2026, time.August, 21, 15, 29), true},
		{"at close", jst(2026, time.August, 21, 15, 30), false},
		{"before open", jst(2026, time.August, 21, 8, 59), false},
		{"holiday midday", jst(2026, time.February, 23, 12, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsMarketOpen(tc.at); got != tc.want {
				t.Errorf("IsMarketOpen(%s) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestAfterClose(t *testing.T) {
	if AfterClose(jst(2026, time.August, 21, 15, 29)) {
		t.Error("15:29 should be before close")
	}
	if !AfterClose(jst(2026, time.August, 21, 15, 30)) {
		t.Error("15:30 should count as after close")
	}
}

func TestNextTradingDay_SkipsWeekend(t *testing.T) {
	// Friday → Monday
	next := NextTradingDay(jst(2026, time.August, 21, 16, 0))
	want := jst(2026, time.August, 24, 0, 0)
	if !next.Equal(want) {
		t.Errorf("NextTradingDay = %s, want %s", next, want)
	}
}

func TestNextTradingDay_SkipsHoliday(t *testing.T) {
	// Friday Feb 20 → holiday Monday Feb 23 → Tuesday Feb 24
	next := NextTradingDay(jst(2026, time.February, 20, 16, 0))
	want := jst(2026, time.February, 24, 0, 0)
	if !next.Equal(want) {
		t.Errorf("NextTradingDay = %s, want %s", next, want)
	}
}
