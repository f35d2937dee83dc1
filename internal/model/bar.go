package model

import "encoding/json"

// Bar is one daily OHLCV bar for a single symbol.
// Dates are exchange-local trading dates in "2006-01-02" form; trading
// holidays simply produce no bar, so consumers index by position, never
// by calendar stride.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// TradedValue returns the traded value (close × volume) for the bar.
func (b *Bar) TradedValue() float64 {
	return b.Close * float64(b.Volume)
}

// Valid reports whether the bar passes basic sanity checks:
// positive prices, high >= low, non-negative volume, non-empty date.
func (b *Bar) Valid() bool {
	if b.Date == "" {
		return false
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return false
	}
	if b.High < b.Low {
		return false
	}
	return b.Volume >= 0
}

// Series is an ordered run of daily bars for one symbol.
// Bars are strictly increasing by date with no duplicates; read-only
// within a run.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// LatestClose returns the close of the most recent bar (0 if empty).
func (s *Series) LatestClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// LatestDate returns the date of the most recent bar ("" if empty).
func (s *Series) LatestDate() string {
	if len(s.Bars) == 0 {
		return ""
	}
	return s.Bars[len(s.Bars)-1].Date
}

// IndexOfDate returns the position of the bar at date, or -1.
// Bars are date-sorted so a binary search suffices.
func (s *Series) IndexOfDate(date string) int {
	lo, hi := 0, len(s.Bars)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case s.Bars[mid].Date == date:
			return mid
		case s.Bars[mid].Date < date:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}

// Sanitize drops malformed bars and truncates at the first date-order
// violation. It never fabricates data: an invalid bar is skipped, and a
// bar whose date does not advance past its predecessor ends the series.
// Returns the number of bars removed.
func (s *Series) Sanitize() int {
	clean := s.Bars[:0]
	dropped := 0
	lastDate := ""
	for i := range s.Bars {
		b := s.Bars[i]
		if !b.Valid() {
			dropped++
			continue
		}
		if lastDate != "" && b.Date <= lastDate {
			// Out-of-order or duplicate date: the provider payload is
			// unreliable from here on, truncate.
			dropped += len(s.Bars) - i
			break
		}
		lastDate = b.Date
		clean = append(clean, b)
	}
	s.Bars = clean
	return dropped
}

// JSON returns the JSON-encoded series (ignoring errors for cache-path usage).
func (s *Series) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}
