// Package backtest estimates the historical forward win-rate of each
// signal type from the accumulated event log.
//
// Stats are kept as explicit accumulators (running sum of returns, win
// count, sample size) so new events fold in without recomputing the full
// history, and partial accumulators from concurrent workers merge with a
// commutative combine.
package backtest

import (
	"sync"

	"stock-screenerv1/internal/model"
)

// DefaultHorizon is the forward-return evaluation window in trading days.
const DefaultHorizon = 5

// Accumulator is the running state for one signal type.
type Accumulator struct {
	Samples   int     `json:"samples"`
	Wins      int     `json:"wins"`
	SumReturn float64 `json:"sum_return"`
}

// Fold adds one forward return to the accumulator.
func (a *Accumulator) Fold(forwardReturn float64) {
	a.Samples++
	a.SumReturn += forwardReturn
	if forwardReturn > 0 {
		a.Wins++
	}
}

// Combine merges another accumulator into this one. Commutative and
// associative, so worker partials can merge in any order.
func (a *Accumulator) Combine(other Accumulator) {
	a.Samples += other.Samples
	a.Wins += other.Wins
	a.SumReturn += other.SumReturn
}

// Stat renders the accumulator as a BacktestStat for the given type and
// horizon. A zero-sample accumulator yields zero win rate and mean.
func (a *Accumulator) Stat(t model.SignalType, horizon int) model.BacktestStat {
	s := model.BacktestStat{Type: t, Horizon: horizon, Samples: a.Samples}
	if a.Samples > 0 {
		s.WinRate = float64(a.Wins) / float64(a.Samples)
		s.MeanReturn = a.SumReturn / float64(a.Samples)
	}
	return s
}

// ForwardReturn computes (close[t+H] - close[t]) / close[t] for the event
// dated at ev.Date within its series. ok is false when the event's date
// is not in the series or t+H runs past the last known bar — such events
// are simply not yet eligible, not an error.
func ForwardReturn(ev model.SignalEvent, series *model.Series, horizon int) (float64, bool) {
	t := series.IndexOfDate(ev.Date)
	if t < 0 || t+horizon >= series.Len() {
		return 0, false
	}
	entry := series.Bars[t].Close
	if entry <= 0 {
		return 0, false
	}
	exit := series.Bars[t+horizon].Close
	return (exit - entry) / entry, true
}

// Book accumulates per-signal-type stats for one horizon. Fold methods on
// a Book are not synchronized; workers build private Books and merge them
// into a shared one through Merge, which is.
type Book struct {
	mu      sync.Mutex
	horizon int
	accs    map[model.SignalType]*Accumulator
}

// NewBook creates an empty Book for the given horizon.
func NewBook(horizon int) *Book {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &Book{
		horizon: horizon,
		accs:    make(map[model.SignalType]*Accumulator, len(model.SignalTypes)),
	}
}

// Horizon returns the evaluation window in trading days.
func (b *Book) Horizon() int { return b.horizon }

// FoldEvent folds one event into the book if its forward window is
// available. Reports whether the event was included.
func (b *Book) FoldEvent(ev model.SignalEvent, series *model.Series) bool {
	r, ok := ForwardReturn(ev, series, b.horizon)
	if !ok {
		return false
	}
	b.acc(ev.Type).Fold(r)
	return true
}

// FoldEvents folds a batch of events against one symbol's series and
// returns the number included.
func (b *Book) FoldEvents(events []model.SignalEvent, series *model.Series) int {
	included := 0
	for _, ev := range events {
		if b.FoldEvent(ev, series) {
			included++
		}
	}
	return included
}

// Merge combines another book into this one. Synchronized: this is the
// single point where worker partials meet.
func (b *Book) Merge(other *Book) {
	if other == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, acc := range other.accs {
		b.acc(t).Combine(*acc)
	}
}

// Stats returns one BacktestStat per signal type that accumulated at
// least one sample, in canonical order.
func (b *Book) Stats() []model.BacktestStat {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []model.BacktestStat
	for _, t := range model.SignalTypes {
		if acc, ok := b.accs[t]; ok && acc.Samples > 0 {
			out = append(out, acc.Stat(t, b.horizon))
		}
	}
	return out
}

func (b *Book) acc(t model.SignalType) *Accumulator {
	a, ok := b.accs[t]
	if !ok {
		a = &Accumulator{}
		b.accs[t] = a
	}
	return a
}
