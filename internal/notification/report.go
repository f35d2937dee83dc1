package notification

import (
	"fmt"
	"strings"

	"stock-screenerv1/internal/model"
)

// maxRendered caps the per-symbol blocks in one message; the remainder is
// summarized to keep chat payloads within webhook size limits.
const maxRendered = 10

func tierLabel(t model.RiskTier) string {
	switch t {
	case model.TierStable:
		return "🟢 stable"
	case model.TierStandard:
		return "🟡 standard"
	default:
		return "🔴 aggressive"
	}
}

func flag(b bool) string {
	if b {
		return "✅"
	}
	return "—"
}

// FormatReport renders a screening report as a chat message. An empty
// report renders an explicit "no matches" message so subscribers can tell
// a quiet day from a run that never happened.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Daily stock screening — %s\n", r.Date)

	if r.NoMatches() {
		b.WriteString("\n🔇 No symbols matched today's criteria.\n")
		fmt.Fprintf(&b, "(%d of %d symbols scanned)\n", r.Scanned, r.Universe)
		return b.String()
	}

	fmt.Fprintf(&b, "\n🎯 %d symbols matched:\n", len(r.Results))

	shown := r.Results
	if len(shown) > maxRendered {
		shown = shown[:maxRendered]
	}
	for _, res := range shown {
		fmt.Fprintf(&b, "\n【%s】 ¥%.0f\n", res.Symbol, res.Close)
		fmt.Fprintf(&b, "  📈 200d trend: %s  🔄 trough cross: %s  ⭐ golden cross: %s\n",
			flag(res.TrendUp), flag(res.TroughCross), flag(res.GoldenCross))
		fmt.Fprintf(&b, "  %s — liquidity ¥%.1f億\n", tierLabel(res.Tier), res.Liquidity/1e8)
	}
	if extra := len(r.Results) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "\n...and %d more\n", extra)
	}

	if len(r.Stats) > 0 {
		b.WriteString("\n📉 Historical win rates")
		for _, st := range r.Stats {
			fmt.Fprintf(&b, "\n  %s (%dd): %.0f%% over %d signals, mean %+.2f%%",
				signalLabel(st.Type), st.Horizon, st.WinRate*100, st.Samples, st.MeanReturn*100)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func signalLabel(t model.SignalType) string {
	switch t {
	case model.SignalTrendUp:
		return "trend-up"
	case model.SignalTroughCross:
		return "trough-cross"
	case model.SignalGoldenCross:
		return "golden-cross"
	default:
		return string(t)
	}
}
