package model

// SignalType identifies one of the chart patterns the detector emits.
type SignalType string

const (
	SignalTrendUp     SignalType = "TREND_UP"
	SignalTroughCross SignalType = "TROUGH_CROSS"
	SignalGoldenCross SignalType = "GOLDEN_CROSS"
)

// SignalTypes lists all detectable signal types in render order.
var SignalTypes = []SignalType{SignalTrendUp, SignalTroughCross, SignalGoldenCross}

// SignalEvent is one detected pattern occurrence. Immutable once created;
// the unit the backtest engine consumes.
type SignalEvent struct {
	Symbol string     `json:"symbol"`
	Date   string     `json:"date"` // trigger date (for TroughCross, the confirming close)
	Type   SignalType `json:"type"`

	// Supporting values at the trigger.
	Close  float64 `json:"close"`
	MA200  float64 `json:"ma200,omitempty"`
	FastMA float64 `json:"fast_ma,omitempty"` // GoldenCross: MA50
	SlowMA float64 `json:"slow_ma,omitempty"` // GoldenCross: MA100

	// TroughCross only: index of the qualifying local minimum within the
	// series the event was detected on.
	TroughIndex int `json:"trough_index,omitempty"`
}

// Key returns a uniqueness key for the event: "symbol:date:type".
// Re-running detection over the same history yields the same keys, so
// appends keyed on this are idempotent.
func (e *SignalEvent) Key() string {
	return e.Symbol + ":" + e.Date + ":" + string(e.Type)
}

// RiskTier is a liquidity-derived classification for a qualifying symbol.
type RiskTier string

const (
	TierStable     RiskTier = "STABLE"
	TierStandard   RiskTier = "STANDARD"
	TierAggressive RiskTier = "AGGRESSIVE"
)

// BacktestStat summarizes historical forward performance of one signal type.
// Recomputable from the full event log; replaced wholesale or extended
// incrementally, never mutated in place.
type BacktestStat struct {
	Type       SignalType `json:"type"`
	Horizon    int        `json:"horizon"` // trading days
	Samples    int        `json:"samples"`
	WinRate    float64    `json:"win_rate"` // in [0,1]
	MeanReturn float64    `json:"mean_return"`
}
