package backtest

import (
	"fmt"
	"math"
	"testing"

	"stock-screenerv1/internal/model"
)

// seriesWithCloses builds a series with the given closes at synthetic
// sequential dates.
func seriesWithCloses(closes []float64) *model.Series {
	s := &model.Series{Symbol: "7203"}
	for i, c := range closes {
		s.Bars = append(s.Bars, model.Bar{
			Date:  fmt.Sprintf("2025-04-%03d", i),
			Open:  c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		})
	}
	return s
}

func event(s *model.Series, idx int, t model.SignalType) model.SignalEvent {
	return model.SignalEvent{Symbol: s.Symbol, Date: s.Bars[idx].Date, Type: t, Close: s.Bars[idx].Close}
}

func TestForwardReturn(t *testing.T) {
	s := seriesWithCloses([]float64{100, 101, 102, 103, 104, 105, 110})

	r, ok := ForwardReturn(event(s, 1, model.SignalTrendUp), s, 5)
	if !ok {
		t.Fatalf("event with full forward window excluded")
	}
	// (110 - 101) / 101
	want := (110.0 - 101.0) / 101.0
	if math.Abs(r-want) > 1e-9 {
		t.Errorf("forward return = %f, want %f", r, want)
	}
}

func TestForwardReturn_TooRecentExcluded(t *testing.T) {
	s := seriesWithCloses([]float64{100, 101, 102, 103, 104, 105, 110})

	// Event at index 2 with horizon 5 needs index 7, past the last bar.
	if _, ok := ForwardReturn(event(s, 2, model.SignalTrendUp), s, 5); ok {
		t.Errorf("event without enough forward data was included")
	}
	// Event date not in the series at all.
	ev := model.SignalEvent{Symbol: "7203", Date: "2024-01-01", Type: model.SignalTrendUp}
	if _, ok := ForwardReturn(ev, s, 5); ok {
		t.Errorf("event with unknown date was included")
	}
}

func TestBook_WinRateBounds(t *testing.T) {
	s := seriesWithCloses([]float64{100, 90, 110, 95, 120, 80, 130, 85, 140, 75, 150})
	b := NewBook(2)
	for i := 0; i < 9; i++ {
		b.FoldEvent(event(s, i, model.SignalGoldenCross), s)
	}
	stats := b.Stats()
	if len(stats) != 1 {
		t.Fatalf("stats count = %d, want 1", len(stats))
	}
	st := stats[0]
	if st.WinRate < 0 || st.WinRate > 1 {
		t.Errorf("win rate %f out of [0,1]", st.WinRate)
	}
	if st.Samples != 9 {
		t.Errorf("samples = %d, want 9", st.Samples)
	}
}

func TestIncrementalFoldMatchesFromScratch(t *testing.T) {
	s := seriesWithCloses([]float64{100, 102, 99, 104, 101, 108, 97, 111, 105, 113, 109, 118})
	events := []model.SignalEvent{
		event(s, 0, model.SignalTrendUp),
		event(s, 2, model.SignalTrendUp),
		event(s, 3, model.SignalGoldenCross),
		event(s, 5, model.SignalTroughCross),
	}

	// From scratch: everything at once.
	scratch := NewBook(3)
	scratch.FoldEvents(events, s)

	// Incremental: fold in two batches into a fresh book, merge a partial.
	incr := NewBook(3)
	incr.FoldEvents(events[:2], s)
	partial := NewBook(3)
	partial.FoldEvents(events[2:], s)
	incr.Merge(partial)

	a, b := scratch.Stats(), incr.Stats()
	if len(a) != len(b) {
		t.Fatalf("stat counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Samples != b[i].Samples {
			t.Errorf("stat %d identity differs: %+v vs %+v", i, a[i], b[i])
		}
		if math.Abs(a[i].WinRate-b[i].WinRate) > 1e-9 || math.Abs(a[i].MeanReturn-b[i].MeanReturn) > 1e-9 {
			t.Errorf("stat %d values differ: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMergeCommutative(t *testing.T) {
	s := seriesWithCloses([]float64{100, 102, 99, 104, 101, 108, 97, 111, 105, 113})

	mk := func(idxs ...int) *Book {
		b := NewBook(2)
		for _, i := range idxs {
			b.FoldEvent(event(s, i, model.SignalTrendUp), s)
		}
		return b
	}

	ab := mk(0, 1, 2)
	ab.Merge(mk(3, 4, 5))
	ba := mk(3, 4, 5)
	ba.Merge(mk(0, 1, 2))

	sa, sb := ab.Stats(), ba.Stats()
	if len(sa) != 1 || len(sb) != 1 {
		t.Fatalf("unexpected stat counts: %d, %d", len(sa), len(sb))
	}
	if sa[0] != sb[0] {
		t.Errorf("merge not commutative: %+v vs %+v", sa[0], sb[0])
	}
}

func TestAccumulatorStat_ZeroSamples(t *testing.T) {
	var a Accumulator
	st := a.Stat(model.SignalTrendUp, 5)
	if st.Samples != 0 || st.WinRate != 0 || st.MeanReturn != 0 {
		t.Errorf("zero-sample stat not zeroed: %+v", st)
	}
}
