package markethours

import "time"

// TSE holidays for 2026 (Japanese national holidays observed by the
// exchange, plus the year-end/new-year closure).
// Source: JPX official trading calendar.
// Format: month, day pairs.
var tseHolidays2026 = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // New Year's Day
	{time.January, 2},   // Year-start closure
	{time.January, 3},   // Year-start closure
	{time.January, 12},  // Coming of Age Day
	{time.February, 11}, // National Foundation Day
	{time.February, 23}, // Emperor's Birthday
	{time.March, 20},    // Vernal Equinox Day
	{time.April, 29},    // Showa Day
	{time.May, 4},       // Greenery Day
	{time.May, 5},       // Children's Day
	{time.May, 6},       // Constitution Day (observed)
	{time.July, 20},     // Marine Day
	{time.August, 11},   // Mountain Day
	{time.September, 21}, // Respect for the Aged Day
	{time.September, 22}, // Autumnal Equinox Day (observed)
	{time.October, 12},  // Sports Day
	{time.November, 3},  // Culture Day
	{time.November, 23}, // Labor Thanksgiving Day
	{time.December, 31}, // Year-end closure
}

// pre-compute for fast lookup
var holidaySet map[string]bool

func init() {
	holidaySet = make(map[string]bool, len(tseHolidays2026))
	for _, h := range tseHolidays2026 {
		key := dateKey(2026, h.month, h.day)
		holidaySet[key] = true
	}
}

// IsHoliday returns true if the date (in JST) is a TSE holiday.
func IsHoliday(t time.Time) bool {
	jst := t.In(JST)
	return holidaySet[dateKey(jst.Year(), jst.Month(), jst.Day())]
}

func dateKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, JST).Format("2006-01-02")
}
