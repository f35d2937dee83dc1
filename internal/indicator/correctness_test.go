package indicator

import (
	"math"
	"testing"

	"stock-screenerv1/internal/model"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

// syntheticBars builds a deterministic but non-trivial series: a slow ramp
// with an oscillation, volume varying with index.
func syntheticBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		c := 100 + 0.1*float64(i) + 5*math.Sin(float64(i)/7)
		bars[i] = model.Bar{
			Date:   testDate(i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: int64(1000 + 37*(i%13)),
		}
	}
	return bars
}

// testDate produces strictly increasing synthetic date strings.
func testDate(i int) string {
	return string([]byte{
		'2', '0', '2', '5', '-',
		byte('0' + (i/100)%10), byte('0' + (i/10)%10), '-', '0', byte('0' + i%10),
	})
}

// bruteMean computes the windowed mean from scratch.
func bruteMean(vals []float64, end, window int) float64 {
	var sum float64
	for i := end - window + 1; i <= end; i++ {
		sum += vals[i]
	}
	return sum / float64(window)
}

// ────────────────────────────────────────────────────────────
// SMA correctness
// ────────────────────────────────────────────────────────────

func TestSMA_Correctness_Period3(t *testing.T) {
	// Hand-calculated SMA(3):
	// Prices: 100, 102, 104, 103, 105
	// After value 3: (100+102+104)/3 = 102.0
	// After value 4: (102+104+103)/3 = 103.0
	// After value 5: (104+103+105)/3 = 104.0
	sma := NewSMA(3)
	prices := []float64{100, 102, 104, 103, 105}
	expected := []float64{0, 0, 102.0, 103.0, 104.0}
	ready := []bool{false, false, true, true, true}

	for i, p := range prices {
		sma.Update(p)
		if sma.Ready() != ready[i] {
			t.Errorf("value %d: Ready()=%v, want %v", i, sma.Ready(), ready[i])
		}
		if ready[i] {
			assertClose(t, "SMA(3)", sma.Value(), expected[i], 0.0001)
		}
	}
}

func TestSMA_RollingEqualsBruteForce(t *testing.T) {
	bars := syntheticBars(300)
	closes := make([]float64, len(bars))
	for i := range bars {
		closes[i] = bars[i].Close
	}

	for _, window := range []int{WindowTradedValue, WindowFast, WindowMid, WindowSlow} {
		sma := NewSMA(window)
		for i, c := range closes {
			sma.Update(c)
			if i < window-1 {
				if sma.Ready() {
					t.Fatalf("window=%d: ready at index %d", window, i)
				}
				continue
			}
			want := bruteMean(closes, i, window)
			assertClose(t, "rolling vs brute", sma.Value(), want, 1e-6)
		}
	}
}

// ────────────────────────────────────────────────────────────
// Series computation
// ────────────────────────────────────────────────────────────

func TestCompute_InsufficientHistory(t *testing.T) {
	bars := syntheticBars(WindowSlow - 1)
	if _, err := Compute(bars); err != ErrInsufficientHistory {
		t.Errorf("Compute(199 bars) err=%v, want ErrInsufficientHistory", err)
	}
}

func TestCompute_AlignmentAndValidity(t *testing.T) {
	bars := syntheticBars(260)
	s, err := Compute(bars)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.Len() != len(bars) {
		t.Fatalf("series length %d, want %d", s.Len(), len(bars))
	}

	// Undefined exactly until the window fills, defined from then on.
	checks := []struct {
		name   string
		vals   []float64
		window int
	}{
		{"MA50", s.MA50, WindowFast},
		{"MA100", s.MA100, WindowMid},
		{"MA200", s.MA200, WindowSlow},
		{"TradedValue30", s.TradedValue30, WindowTradedValue},
	}
	for _, c := range checks {
		if Defined(c.vals[c.window-2]) {
			t.Errorf("%s defined at index %d before window filled", c.name, c.window-2)
		}
		if !Defined(c.vals[c.window-1]) {
			t.Errorf("%s undefined at first full-window index %d", c.name, c.window-1)
		}
		if !Defined(c.vals[len(c.vals)-1]) {
			t.Errorf("%s undefined at last index", c.name)
		}
	}
}

func TestCompute_MA200MatchesBruteForce(t *testing.T) {
	bars := syntheticBars(230)
	closes := make([]float64, len(bars))
	for i := range bars {
		closes[i] = bars[i].Close
	}
	s, err := Compute(bars)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for i := WindowSlow - 1; i < len(bars); i++ {
		assertClose(t, "MA200", s.MA200[i], bruteMean(closes, i, WindowSlow), 1e-6)
	}
}

func TestCompute_TradedValueUsesCloseTimesVolume(t *testing.T) {
	bars := syntheticBars(210)
	s, err := Compute(bars)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	tv := make([]float64, len(bars))
	for i := range bars {
		tv[i] = bars[i].Close * float64(bars[i].Volume)
	}
	last := len(bars) - 1
	assertClose(t, "TradedValue30 last", s.TradedValue30[last], bruteMean(tv, last, WindowTradedValue), 1e-3)
	assertClose(t, "LatestLiquidity", s.LatestLiquidity(), bruteMean(tv, last, WindowTradedValue), 1e-3)
}
