package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"stock-screenerv1/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "screener.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendEvents_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	events := []model.SignalEvent{
		{Symbol: "7203", Date: "2025-06-02", Type: model.SignalGoldenCross, Close: 2500, FastMA: 2480, SlowMA: 2475},
		{Symbol: "7203", Date: "2025-06-02", Type: model.SignalTrendUp, Close: 2500, MA200: 2400},
		{Symbol: "8306", Date: "2025-06-02", Type: model.SignalTroughCross, Close: 1500, MA200: 1490, TroughIndex: 201},
	}

	n, err := s.AppendEvents(ctx, events)
	if err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}
	if n != 3 {
		t.Errorf("inserted=%d, want 3", n)
	}

	// Same batch again: idempotent, nothing new.
	n, err = s.AppendEvents(ctx, events)
	if err != nil {
		t.Fatalf("AppendEvents (repeat): %v", err)
	}
	if n != 0 {
		t.Errorf("repeat insert added %d rows, want 0", n)
	}

	got, err := s.EventsBySymbol(ctx, "7203")
	if err != nil {
		t.Fatalf("EventsBySymbol: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events for 7203: %d, want 2", len(got))
	}
	for _, e := range got {
		if e.Symbol != "7203" || e.Date != "2025-06-02" {
			t.Errorf("unexpected event %+v", e)
		}
	}

	syms, err := s.EventSymbols(ctx)
	if err != nil {
		t.Fatalf("EventSymbols: %v", err)
	}
	if len(syms) != 2 || syms[0] != "7203" || syms[1] != "8306" {
		t.Errorf("symbols=%v", syms)
	}
}

func TestSaveAndLoadStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stats := []model.BacktestStat{
		{Type: model.SignalGoldenCross, Horizon: 5, Samples: 40, WinRate: 0.625, MeanReturn: 0.012},
		{Type: model.SignalTrendUp, Horizon: 5, Samples: 90, WinRate: 0.544, MeanReturn: 0.004},
	}
	if err := s.SaveStats(ctx, stats); err != nil {
		t.Fatalf("SaveStats: %v", err)
	}

	// Overwrite with fresh values: replace wholesale, no duplicates.
	stats[0].Samples = 41
	if err := s.SaveStats(ctx, stats); err != nil {
		t.Fatalf("SaveStats (replace): %v", err)
	}

	got, err := s.Stats(ctx, 5)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("stats count=%d, want 2", len(got))
	}
	for _, st := range got {
		if st.Type == model.SignalGoldenCross && st.Samples != 41 {
			t.Errorf("golden cross samples=%d, want 41", st.Samples)
		}
	}
}
