// Package indicator computes the screener's fixed indicator set over a
// daily bar series: 50/100/200-day moving averages of close and the
// 30-day moving average of traded value (close × volume).
//
// All rolling means are maintained incrementally; values at index i depend
// only on bars at indices <= i (no lookahead), and are undefined (NaN)
// until the window is fully populated.
package indicator

import (
	"errors"
	"math"

	"stock-screenerv1/internal/model"
)

// Window lengths required by the detector and the liquidity classifier.
const (
	WindowFast        = 50
	WindowMid         = 100
	WindowSlow        = 200
	WindowTradedValue = 30
)

// ErrInsufficientHistory marks a symbol whose series is shorter than the
// largest required window. The symbol is excluded from detection; the
// batch continues.
var ErrInsufficientHistory = errors.New("indicator: insufficient history")

// Series holds indicator values aligned index-for-index with the bar
// series they were computed from. Entries before the respective window is
// full are NaN.
type Series struct {
	MA50          []float64
	MA100         []float64
	MA200         []float64
	TradedValue30 []float64
}

// Len returns the series length.
func (s *Series) Len() int { return len(s.MA200) }

// Defined reports whether v holds a computed value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// Compute builds the full indicator series for bars. Returns
// ErrInsufficientHistory when bars is shorter than the 200-day window.
func Compute(bars []model.Bar) (*Series, error) {
	n := len(bars)
	if n < WindowSlow {
		return nil, ErrInsufficientHistory
	}

	s := &Series{
		MA50:          nanSlice(n),
		MA100:         nanSlice(n),
		MA200:         nanSlice(n),
		TradedValue30: nanSlice(n),
	}

	fast := NewSMA(WindowFast)
	mid := NewSMA(WindowMid)
	slow := NewSMA(WindowSlow)
	traded := NewSMA(WindowTradedValue)

	for i := range bars {
		c := bars[i].Close
		fast.Update(c)
		mid.Update(c)
		slow.Update(c)
		traded.Update(bars[i].TradedValue())

		if fast.Ready() {
			s.MA50[i] = fast.Value()
		}
		if mid.Ready() {
			s.MA100[i] = mid.Value()
		}
		if slow.Ready() {
			s.MA200[i] = slow.Value()
		}
		if traded.Ready() {
			s.TradedValue30[i] = traded.Value()
		}
	}

	return s, nil
}

// LatestLiquidity returns the TradedValueMA30 at the evaluation (last)
// date, or NaN if the window never filled.
func (s *Series) LatestLiquidity() float64 {
	if len(s.TradedValue30) == 0 {
		return math.NaN()
	}
	return s.TradedValue30[len(s.TradedValue30)-1]
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
