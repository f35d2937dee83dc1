package model

// ScreeningResult is one qualifying symbol in the daily report:
// it survived the liquidity filter and emitted at least one signal today.
type ScreeningResult struct {
	Symbol      string        `json:"symbol"`
	Close       float64       `json:"close"`
	TrendUp     bool          `json:"trend_up"`
	TroughCross bool          `json:"trough_cross"`
	GoldenCross bool          `json:"golden_cross"`
	Tier        RiskTier      `json:"tier"`
	Liquidity   float64       `json:"liquidity"` // TradedValueMA30 at evaluation date
	Events      []SignalEvent `json:"events,omitempty"`
}

// Report is the outcome of one screening run. A run that found nothing
// still produces a non-nil Report with the run date set, so "no matches"
// is distinguishable from "not run".
type Report struct {
	Date    string            `json:"date"`
	Results []ScreeningResult `json:"results,omitempty"`
	Stats   []BacktestStat    `json:"stats,omitempty"`

	// Run accounting.
	Universe int `json:"universe"` // symbols attempted
	Scanned  int `json:"scanned"`  // symbols with enough history
	Failed   int `json:"failed"`   // fetch or data failures
}

// NoMatches reports whether the run completed without any qualifying symbol.
func (r *Report) NoMatches() bool {
	return len(r.Results) == 0
}

// StatFor returns the backtest stat for a signal type, if present.
func (r *Report) StatFor(t SignalType) (BacktestStat, bool) {
	for _, s := range r.Stats {
		if s.Type == t {
			return s, true
		}
	}
	return BacktestStat{}, false
}
