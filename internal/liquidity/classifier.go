// Package liquidity filters symbols by traded value and assigns a risk
// tier to survivors.
package liquidity

import (
	"fmt"
	"math"

	"stock-screenerv1/internal/model"
)

// Config holds the liquidity floor and the two tier cut points, all in
// traded-value currency units. Brackets are closed-open intervals with
// the lower bound inclusive, so classification is total and deterministic
// at the exact threshold:
//
//	tv >= StableCutoff           → Stable
//	StandardCutoff <= tv < Stable → Standard
//	MinVolume <= tv < Standard    → Aggressive
//	tv < MinVolume                → excluded
type Config struct {
	MinVolume      float64
	StableCutoff   float64
	StandardCutoff float64
}

// DefaultConfig mirrors the conventional JPY brackets: ¥1M floor,
// ¥10M standard, ¥100M stable.
func DefaultConfig() Config {
	return Config{
		MinVolume:      1_000_000,
		StableCutoff:   100_000_000,
		StandardCutoff: 10_000_000,
	}
}

// Validate rejects configurations whose brackets are not ordered.
func (c Config) Validate() error {
	if c.MinVolume < 0 {
		return fmt.Errorf("liquidity: min volume must be >= 0, got %f", c.MinVolume)
	}
	if c.StandardCutoff < c.MinVolume {
		return fmt.Errorf("liquidity: standard cutoff %f below min volume %f", c.StandardCutoff, c.MinVolume)
	}
	if c.StableCutoff < c.StandardCutoff {
		return fmt.Errorf("liquidity: stable cutoff %f below standard cutoff %f", c.StableCutoff, c.StandardCutoff)
	}
	return nil
}

// Classify maps a symbol's TradedValueMA30 at the evaluation date to a
// risk tier. ok is false when the symbol is excluded entirely: below the
// floor, or the liquidity value is undefined.
func (c Config) Classify(tradedValue30 float64) (tier model.RiskTier, ok bool) {
	if math.IsNaN(tradedValue30) || tradedValue30 < c.MinVolume {
		return "", false
	}
	switch {
	case tradedValue30 >= c.StableCutoff:
		return model.TierStable, true
	case tradedValue30 >= c.StandardCutoff:
		return model.TierStandard, true
	default:
		return model.TierAggressive, true
	}
}
