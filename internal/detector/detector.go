// Package detector evaluates the indicator series of one symbol against
// the screener's rule set and emits signal events.
//
// Detection is stateless across runs: every check is a pure function over
// bounded slices of the bar/indicator series, so re-evaluating the same
// history always yields the same events.
package detector

import (
	"stock-screenerv1/internal/indicator"
	"stock-screenerv1/internal/model"
)

// Config holds the detector's tunable windows.
type Config struct {
	TrendLookback   int     // TrendUp: steps MA200 must be non-decreasing over
	ConfirmWindow   int     // TroughCross: trading days allowed for the confirming close
	TroughRadius    int     // TroughCross: centered local-minimum window radius
	TroughTolerance float64 // TroughCross: low may sit up to this fraction above MA200
}

// DefaultConfig returns the stock rule-set parameters.
func DefaultConfig() Config {
	return Config{
		TrendLookback:   5,
		ConfirmWindow:   3,
		TroughRadius:    5,
		TroughTolerance: 0.005,
	}
}

// Detector applies the rule set. Safe for concurrent use: it carries no
// per-symbol state.
type Detector struct {
	cfg Config
}

// New creates a Detector. Zero or negative config fields fall back to
// the defaults.
func New(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.TrendLookback <= 0 {
		cfg.TrendLookback = def.TrendLookback
	}
	if cfg.ConfirmWindow <= 0 {
		cfg.ConfirmWindow = def.ConfirmWindow
	}
	if cfg.TroughRadius <= 0 {
		cfg.TroughRadius = def.TroughRadius
	}
	if cfg.TroughTolerance <= 0 {
		cfg.TroughTolerance = def.TroughTolerance
	}
	return &Detector{cfg: cfg}
}

// Detect evaluates all three rules at the latest index of the series and
// returns zero to three events dated at the last bar.
func (d *Detector) Detect(symbol string, bars []model.Bar, ind *indicator.Series) []model.SignalEvent {
	return d.DetectAt(symbol, bars, ind, len(bars)-1)
}

// DetectAt evaluates the rules as of index t. Only data at indices <= t
// is consulted, so a historical replay sees exactly what a live run on
// that day would have seen.
func (d *Detector) DetectAt(symbol string, bars []model.Bar, ind *indicator.Series, t int) []model.SignalEvent {
	if t < 0 || t >= len(bars) {
		return nil
	}

	var events []model.SignalEvent
	b := bars[t]

	if d.trendUpAt(ind, t) {
		events = append(events, model.SignalEvent{
			Symbol: symbol,
			Date:   b.Date,
			Type:   model.SignalTrendUp,
			Close:  b.Close,
			MA200:  ind.MA200[t],
		})
	}

	if troughIdx, ok := d.troughCrossAt(bars, ind, t); ok {
		events = append(events, model.SignalEvent{
			Symbol:      symbol,
			Date:        b.Date,
			Type:        model.SignalTroughCross,
			Close:       b.Close,
			MA200:       ind.MA200[t],
			TroughIndex: troughIdx,
		})
	}

	if d.goldenCrossAt(ind, t) {
		events = append(events, model.SignalEvent{
			Symbol: symbol,
			Date:   b.Date,
			Type:   model.SignalGoldenCross,
			Close:  b.Close,
			FastMA: ind.MA50[t],
			SlowMA: ind.MA100[t],
		})
	}

	return events
}

// DetectAll replays the rules over every index of the series. Used to
// seed or rebuild the historical event log.
func (d *Detector) DetectAll(symbol string, bars []model.Bar, ind *indicator.Series) []model.SignalEvent {
	var events []model.SignalEvent
	for t := range bars {
		events = append(events, d.DetectAt(symbol, bars, ind, t)...)
	}
	return events
}

// trendUpAt reports whether MA200 is non-decreasing at every step over
// the lookback window ending at t. A single strict decrease anywhere in
// the window rejects the trend; flat (equal) steps satisfy it. This is a
// monotonic-window test, not an endpoint comparison, so a sawtooth that
// happens to net positive does not qualify.
func (d *Detector) trendUpAt(ind *indicator.Series, t int) bool {
	start := t - d.cfg.TrendLookback
	if start < 0 {
		return false
	}
	for k := start; k < t; k++ {
		if !indicator.Defined(ind.MA200[k]) || !indicator.Defined(ind.MA200[k+1]) {
			return false
		}
		if ind.MA200[k] > ind.MA200[k+1] {
			return false
		}
	}
	return true
}

// goldenCrossAt reports whether MA50 crossed from at-or-below to strictly
// above MA100 at index t. Equal-at-entry, now-greater is the trigger; a
// tie at t does not fire, and it cannot re-fire the next day while fast
// stays above slow because the entry relation no longer holds.
func (d *Detector) goldenCrossAt(ind *indicator.Series, t int) bool {
	if t < 1 {
		return false
	}
	prevFast, prevSlow := ind.MA50[t-1], ind.MA100[t-1]
	fast, slow := ind.MA50[t], ind.MA100[t]
	if !indicator.Defined(prevFast) || !indicator.Defined(prevSlow) ||
		!indicator.Defined(fast) || !indicator.Defined(slow) {
		return false
	}
	return prevFast <= prevSlow && fast > slow
}

// troughCrossAt reports whether t is the first close back above MA200
// following a qualifying trough: a local minimum of the low within a
// centered window of radius TroughRadius (clamped to available data) that
// dipped to at most MA200 × (1 + TroughTolerance). Returns the trough
// index when it fires. The event date is t, the confirming close.
func (d *Detector) troughCrossAt(bars []model.Bar, ind *indicator.Series, t int) (int, bool) {
	if !indicator.Defined(ind.MA200[t]) || bars[t].Close <= ind.MA200[t] {
		return 0, false
	}

	// A trough at i can only be confirmed within ConfirmWindow days,
	// so candidates lie in [t-ConfirmWindow, t-1].
	lo := t - d.cfg.ConfirmWindow
	if lo < 0 {
		lo = 0
	}
	for i := lo; i < t; i++ {
		if !indicator.Defined(ind.MA200[i]) {
			continue
		}
		if bars[i].Low > ind.MA200[i]*(1+d.cfg.TroughTolerance) {
			continue
		}
		if !d.isLocalMin(bars, i, t) {
			continue
		}
		// t must be the FIRST confirming close after i; an earlier close
		// above MA200 means the event already fired on that day.
		confirmedEarlier := false
		for j := i + 1; j < t; j++ {
			if indicator.Defined(ind.MA200[j]) && bars[j].Close > ind.MA200[j] {
				confirmedEarlier = true
				break
			}
		}
		if !confirmedEarlier {
			return i, true
		}
	}
	return 0, false
}

// isLocalMin checks low[i] <= low[j] for all j within TroughRadius of i.
// The window clamps at the series edges and never looks past limit
// (exclusive), keeping the check lookahead-safe at detection time.
func (d *Detector) isLocalMin(bars []model.Bar, i, limit int) bool {
	lo := i - d.cfg.TroughRadius
	if lo < 0 {
		lo = 0
	}
	hi := i + d.cfg.TroughRadius
	if hi > limit {
		hi = limit
	}
	for j := lo; j <= hi; j++ {
		if bars[j].Low < bars[i].Low {
			return false
		}
	}
	return true
}
