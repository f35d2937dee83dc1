package markethours

import (
	"fmt"
	"time"
)

// JST is the Japan Standard Time location (UTC+9).
var JST = time.FixedZone("JST", 9*3600)

// Market hours in JST. The lunch break (11:30–12:30) is ignored: the
// screener only cares whether today produced a closing bar.
const (
	OpenHour    = 9
	OpenMinute  = 0
	CloseHour   = 15
	CloseMinute = 30
)

// IsMarketOpen returns true if t falls within TSE trading hours
// (9:00 AM – 3:30 PM JST, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	jst := t.In(JST)
	wd := jst.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if IsHoliday(jst) {
		return false
	}
	hm := jst.Hour()*60 + jst.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsWeekday returns true if t is Mon–Fri.
func IsWeekday(t time.Time) bool {
	wd := t.In(JST).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	jst := t.In(JST)
	return IsWeekday(jst) && !IsHoliday(jst)
}

// TodayClose returns today's market close time (3:30 PM JST).
func TodayClose(t time.Time) time.Time {
	jst := t.In(JST)
	return time.Date(jst.Year(), jst.Month(), jst.Day(), CloseHour, CloseMinute, 0, 0, JST)
}

// AfterClose reports whether t is past today's close — the point after
// which a screening run sees today's final bar.
func AfterClose(t time.Time) bool {
	return !t.In(JST).Before(TodayClose(t))
}

// NextTradingDay returns the next trading day after t (date at midnight JST).
func NextTradingDay(t time.Time) time.Time {
	d := t.In(JST).AddDate(0, 0, 1)
	for i := 0; i < 10; i++ { // max 10 days ahead (holidays + weekends)
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, JST)
		}
		d = d.AddDate(0, 0, 1)
	}
	// Fallback: next day
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, JST)
}

// StatusString returns a human-readable market status.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		d := TodayClose(t).Sub(t.In(JST))
		return fmt.Sprintf("Market Open — closes in %s", fmtDur(d))
	}
	if IsTradingDay(t) && AfterClose(t) {
		return "Market Closed — today's bars are final"
	}
	next := NextTradingDay(t)
	return fmt.Sprintf("Market Closed — next trading day %s", next.Format("Mon 2006-01-02"))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
