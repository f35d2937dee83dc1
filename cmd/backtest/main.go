// cmd/backtest recomputes win-rate statistics from the accumulated
// signal-event log. It refetches each logged symbol's history, folds every
// event with a complete forward window into the stats book, and persists
// the result. With --rebuild it first replays detection over the full
// history, back-filling events the daily runs never saw.
//
// Usage:
//
//	go run ./cmd/backtest --horizon=5 --rebuild
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stock-screenerv1/config"
	"stock-screenerv1/internal/backtest"
	"stock-screenerv1/internal/detector"
	"stock-screenerv1/internal/indicator"
	"stock-screenerv1/internal/logger"
	"stock-screenerv1/internal/model"
	"stock-screenerv1/internal/provider"
	sqlitestore "stock-screenerv1/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	// Flags
	horizon := flag.Int("horizon", 0, "Forward-return window in trading days (0=config default)")
	rebuild := flag.Bool("rebuild", false, "Replay detection over full history before computing stats")
	dbPath := flag.String("db", "", "Path to SQLite database (default from config)")
	flag.Parse()

	// ---- Load config from env (.env optional) ----
	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[backtest] config: %v", err)
	}
	logger.Init("backtest", slog.LevelInfo)
	if *horizon <= 0 {
		*horizon = cfg.BacktestHorizon
	}
	if *dbPath == "" {
		*dbPath = cfg.SQLitePath
	}

	// ---- Open event log ----
	store, err := sqlitestore.Open(*dbPath)
	if err != nil {
		log.Fatalf("[backtest] sqlite open failed: %v", err)
	}
	defer store.Close()

	// ---- Setup context ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// ---- Provider session ----
	prov := provider.New(provider.Config{
		BaseURL:      cfg.ProviderBaseURL,
		APIKey:       cfg.ProviderAPIKey,
		ClientCode:   cfg.ProviderClient,
		Password:     cfg.ProviderPassword,
		TOTPSecret:   cfg.ProviderTOTP,
		SymbolSuffix: cfg.SymbolSuffix,
	})
	if err := prov.Login(ctx); err != nil {
		log.Fatalf("[backtest] provider login failed: %v", err)
	}

	symbols, err := store.EventSymbols(ctx)
	if err != nil {
		log.Fatalf("[backtest] event log read failed: %v", err)
	}
	if len(symbols) == 0 {
		log.Println("[backtest] event log is empty — run the screener first")
		return
	}
	log.Printf("[backtest] %d symbols in event log, horizon=%d days, rebuild=%v",
		len(symbols), *horizon, *rebuild)

	det := detector.New(detector.Config{
		TrendLookback:   cfg.TrendLookback,
		ConfirmWindow:   cfg.CrossConfirmWindow,
		TroughRadius:    cfg.TroughRadius,
		TroughTolerance: cfg.TroughTolerance,
	})

	// Stats are rebuilt from scratch: the book starts empty and the whole
	// log folds back in, so a corrected history fully replaces stale stats.
	book := backtest.NewBook(*horizon)
	folded, backfilled, skipped := 0, 0, 0

	for _, sym := range symbols {
		if ctx.Err() != nil {
			log.Println("[backtest] interrupted")
			break
		}

		series, err := prov.DailyBars(ctx, sym, cfg.BarCount)
		if err != nil {
			if errors.Is(err, provider.ErrNoData) {
				log.Printf("[backtest] %s: no data (delisted?), skipping", sym)
			} else {
				log.Printf("[backtest] %s: fetch failed: %v", sym, err)
			}
			skipped++
			continue
		}

		if *rebuild {
			if ind, err := indicator.Compute(series.Bars); err == nil {
				events := det.DetectAll(sym, series.Bars, ind)
				inserted, err := store.AppendEvents(ctx, events)
				if err != nil {
					log.Printf("[backtest] %s: backfill append failed: %v", sym, err)
				} else {
					backfilled += inserted
				}
			}
		}

		events, err := store.EventsBySymbol(ctx, sym)
		if err != nil {
			log.Printf("[backtest] %s: event load failed: %v", sym, err)
			skipped++
			continue
		}
		folded += book.FoldEvents(events, series)

		if cfg.FetchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.FetchDelay):
			}
		}
	}

	stats := book.Stats()
	if err := store.SaveStats(ctx, stats); err != nil {
		log.Printf("[backtest] stats save failed: %v", err)
	}

	// Print summary
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║               BACKTEST COMPLETE                  ║")
	fmt.Println("╠══════════════════════════════════════════════════╣")
	fmt.Printf("║  Symbols:            %-27d ║\n", len(symbols))
	fmt.Printf("║  Samples folded:     %-27d ║\n", folded)
	fmt.Printf("║  Events backfilled:  %-27d ║\n", backfilled)
	fmt.Printf("║  Symbols skipped:    %-27d ║\n", skipped)
	fmt.Println("╠══════════════════════════════════════════════════╣")
	if len(stats) == 0 {
		fmt.Println("║  (no signal has a complete forward window yet)   ║")
	}
	for _, st := range stats {
		fmt.Printf("║  %-13s %3dd  win %5.1f%%  mean %+6.2f%%  n=%-4d ║\n",
			label(st.Type), st.Horizon, st.WinRate*100, st.MeanReturn*100, st.Samples)
	}
	fmt.Println("╚══════════════════════════════════════════════════╝")
}

func label(t model.SignalType) string {
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
