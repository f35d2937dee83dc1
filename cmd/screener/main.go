// cmd/screener runs the daily screening batch: it sweeps the security
// code universe, detects signals on each symbol's daily bars, backtests
// the accumulated event log, and delivers the report.
//
// Usage:
//
//	go run ./cmd/screener --max=100 --dry-run
package main

import (
	"context"
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
	"stock-screenerv1/internal/detector"
	"stock-screenerv1/internal/liquidity"
	"stock-screenerv1/internal/logger"
	"stock-screenerv1/internal/markethours"
	"stock-screenerv1/internal/metrics"
	"stock-screenerv1/internal/notification"
	"stock-screenerv1/internal/provider"
	"stock-screenerv1/internal/screener"
	redisstore "stock-screenerv1/internal/store/redis"
	sqlitestore "stock-screenerv1/internal/store/sqlite"
	"stock-screenerv1/internal/universe"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[screener] starting...")

	// Flags
	maxSymbols := flag.Int("max", 0, "Cap the universe to the first N codes (0=all)")
	force := flag.Bool("force", false, "Run even on a non-trading day")
	dryRun := flag.Bool("dry-run", false, "Print the report only; no persistence, no notifications")
	flag.Parse()

	// ---- Load config from env (.env optional) ----
	if err := godotenv.Load(); err == nil {
		log.Println("[screener] loaded .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[screener] config: %v", err)
	}
	appLog := logger.Init("screener", slog.LevelInfo)
	if *maxSymbols > 0 {
		cfg.MaxSymbols = *maxSymbols
	}

	// ---- Trading-day gate ----
	now := time.Now()
	if !markethours.IsTradingDay(now) && !*force {
		log.Printf("[screener] %s — nothing to screen, exiting (use --force to override)",
			markethours.StatusString(now))
		return
	}
	if markethours.IsTradingDay(now) && !markethours.AfterClose(now) {
		log.Printf("[screener] ⚠ market not closed yet (%s) — today's bar may still be forming",
			markethours.StatusString(now))
	}
	runDate := now.In(markethours.JST).Format("2006-01-02")

	// ---- Setup context for graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[screener] shutdown signal received, finishing up...")
		cancel()
	}()

	// ---- Metrics ----
	prom := metrics.NewMetrics()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr)
	metricsSrv.Start()

	// ---- Event log (SQLite) ----
	var elog screener.EventLog
	var store *sqlitestore.Store
	if !*dryRun {
		os.MkdirAll("data", 0o755)
		store, err = sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("[screener] sqlite init failed: %v", err)
		}
		defer store.Close()
		elog = store
	}

	// ---- Bar cache (Redis, optional) ----
	var cache screener.BarCache
	if cfg.RedisAddr != "" {
		bc, err := redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("[screener] WARNING: redis init failed: %v (continuing without cache)", err)
		} else {
			defer bc.Close()
			cache = bc
			log.Println("[screener] bar cache ready")
		}
	}

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
		log.Fatalf("[screener] provider login failed: %v", err)
	}

	// ---- Screening rules from config ----
	stable, standard, err := cfg.ParseCutoffs()
	if err != nil {
		log.Fatalf("[screener] %v", err)
	}
	liqCfg := liquidity.Config{
		MinVolume:      float64(cfg.MinVolume),
		StableCutoff:   stable,
		StandardCutoff: standard,
	}
	if err := liqCfg.Validate(); err != nil {
		log.Fatalf("[screener] %v", err)
	}

	runner := screener.New(screener.Config{
		Workers:    cfg.Workers,
		FetchDelay: cfg.FetchDelay,
		BarCount:   cfg.BarCount,
		Horizon:    cfg.BacktestHorizon,
		Detector: detector.Config{
			TrendLookback:   cfg.TrendLookback,
			ConfirmWindow:   cfg.CrossConfirmWindow,
			TroughRadius:    cfg.TroughRadius,
			TroughTolerance: cfg.TroughTolerance,
		},
		Liquidity: liqCfg,
	}, prov, cache, elog, prom)

	// ---- Run ----
	codes := universe.Codes(cfg.MaxSymbols)
	log.Printf("[screener] screening %d codes as of %s (%d workers, %s delay)",
		len(codes), runDate, cfg.Workers, cfg.FetchDelay)

	report, err := runner.Run(ctx, runDate, codes)
	if err != nil {
		log.Printf("[screener] run interrupted: %v", err)
	}
	appLog.Info("run complete",
		slog.String("date", report.Date),
		slog.Int("universe", report.Universe),
		slog.Int("scanned", report.Scanned),
		slog.Int("matched", len(report.Results)),
		slog.Int("failed", report.Failed),
	)

	// ---- Persist stats ----
	if store != nil && len(report.Stats) > 0 {
		if err := store.SaveStats(ctx, report.Stats); err != nil {
			log.Printf("[screener] stats save failed: %v", err)
		}
	}

	// ---- Deliver report ----
	message := notification.FormatReport(report)
	notifier := buildNotifier(cfg, *dryRun)
	if err := notifier.Send(ctx, message); err != nil {
		log.Printf("[screener] notification failed: %v", err)
	}

	// ---- Summary ----
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║        SCREENING COMPLETE            ║")
	fmt.Println("╠══════════════════════════════════════╣")
	fmt.Printf("║  Run date:          %-16s ║\n", report.Date)
	fmt.Printf("║  Universe:          %-16d ║\n", report.Universe)
	fmt.Printf("║  Scanned:           %-16d ║\n", report.Scanned)
	fmt.Printf("║  Matched:           %-16d ║\n", len(report.Results))
	fmt.Printf("║  Failed:            %-16d ║\n", report.Failed)
	fmt.Println("╚══════════════════════════════════════╝")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)
	log.Println("[screener] done.")
}

// buildNotifier assembles the delivery fan-out from the configured
// targets. Dry runs and unconfigured environments log the report instead.
func buildNotifier(cfg *config.Config, dryRun bool) notification.Notifier {
	if dryRun {
		return notification.NewLogNotifier()
	}

	var backends []notification.Notifier
	if cfg.SlackWebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.SlackWebhookURL, notification.StyleSlack))
	}
	if cfg.DiscordWebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.DiscordWebhookURL, notification.StyleDiscord))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if len(backends) == 0 {
		return notification.NewLogNotifier()
	}
	return notification.NewMulti(backends...)
}
