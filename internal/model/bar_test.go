package model

import "testing"

func bar(date string, close float64) Bar {
	return Bar{Date: date, Open: close, High: close + 1, Low: close - 1, Close: close, Volume: 1000}
}

func TestSanitize_DropsInvalidBars(t *testing.T) {
	s := &Series{Symbol: "7203", Bars: []Bar{
		bar("2025-01-06", 100),
		{Date: "2025-01-07", Open: 101, High: 102, Low: 100, Close: -5, Volume: 10}, // non-positive close
		bar("2025-01-08", 102),
		{Date: "", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}, // empty date
	}}

	dropped := s.Sanitize()
	if dropped != 2 {
		t.Errorf("dropped=%d, want 2", dropped)
	}
	if s.Len() != 2 {
		t.Fatalf("len=%d, want 2", s.Len())
	}
	if s.Bars[0].Date != "2025-01-06" || s.Bars[1].Date != "2025-01-08" {
		t.Errorf("unexpected surviving dates: %v, %v", s.Bars[0].Date, s.Bars[1].Date)
	}
}

func TestSanitize_TruncatesAtDateOrderViolation(t *testing.T) {
	s := &Series{Symbol: "7203", Bars: []Bar{
		bar("2025-01-06", 100),
		bar("2025-01-07", 101),
		bar("2025-01-07", 101), // duplicate date — truncate here
		bar("2025-01-08", 102),
	}}

	if dropped := s.Sanitize(); dropped != 2 {
		t.Errorf("dropped=%d, want 2", dropped)
	}
	if s.Len() != 2 || s.LatestDate() != "2025-01-07" {
		t.Errorf("series after truncate: len=%d last=%s", s.Len(), s.LatestDate())
	}
}

func TestSanitize_HighBelowLow(t *testing.T) {
	s := &Series{Bars: []Bar{
		{Date: "2025-01-06", Open: 100, High: 99, Low: 101, Close: 100, Volume: 10},
	}}
	s.Sanitize()
	if s.Len() != 0 {
		t.Errorf("inverted high/low bar survived")
	}
}

func TestIndexOfDate(t *testing.T) {
	s := &Series{Bars: []Bar{
		bar("2025-01-06", 100),
		bar("2025-01-07", 101),
		bar("2025-01-09", 102), // gap: 01-08 is a holiday
	}}

	if got := s.IndexOfDate("2025-01-07"); got != 1 {
		t.Errorf("IndexOfDate(2025-01-07)=%d, want 1", got)
	}
	if got := s.IndexOfDate("2025-01-08"); got != -1 {
		t.Errorf("IndexOfDate(holiday)=%d, want -1", got)
	}
	if got := s.IndexOfDate("2025-01-09"); got != 2 {
		t.Errorf("IndexOfDate(last)=%d, want 2", got)
	}
}

func TestTradedValue(t *testing.T) {
	b := Bar{Date: "2025-01-06", Open: 1, High: 1, Low: 1, Close: 250.5, Volume: 1000}
	if got := b.TradedValue(); got != 250500 {
		t.Errorf("TradedValue=%f, want 250500", got)
	}
}
