// Package screener orchestrates one screening run: it sweeps the symbol
// universe through a bounded worker pool, runs the per-symbol pipeline
// (fetch → indicators → liquidity → detection), folds the accumulated
// event history into backtest stats, and assembles the daily report.
//
// A failing symbol never aborts the batch: fetch errors, short histories
// and illiquid names are counted and skipped, and the run carries on.
package screener

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"stock-screenerv1/internal/backtest"
	"stock-screenerv1/internal/detector"
	"stock-screenerv1/internal/indicator"
	"stock-screenerv1/internal/liquidity"
	"stock-screenerv1/internal/metrics"
	"stock-screenerv1/internal/model"
	"stock-screenerv1/internal/provider"
)

// Provider fetches daily bar history for one security code.
type Provider interface {
	DailyBars(ctx context.Context, code string, count int) (*model.Series, error)
}

// EventLog is the append-only signal-event store the runner writes today's
// events to and reads per-symbol history from for backtesting.
type EventLog interface {
	AppendEvents(ctx context.Context, events []model.SignalEvent) (int, error)
	EventsBySymbol(ctx context.Context, symbol string) ([]model.SignalEvent, error)
}

// BarCache is a read-through cache keyed on (symbol, run date).
type BarCache interface {
	Get(ctx context.Context, symbol, date string) (*model.Series, bool)
	Put(ctx context.Context, symbol, date string, series *model.Series) error
}

// Skip reasons used as metric labels.
const (
	skipNoData       = "no_data"
	skipShortHistory = "insufficient_history"
	skipIlliquid     = "illiquid"
)

// Config shapes a run.
type Config struct {
	Workers    int
	FetchDelay time.Duration // per-worker pause between provider requests
	BarCount   int           // bars requested per symbol
	Horizon    int           // backtest forward-return window
	Detector   detector.Config
	Liquidity  liquidity.Config
}

// Runner executes screening runs. Cache, event log and metrics are all
// optional: a nil cache always misses, a nil event log disables
// backtesting, nil metrics record nothing.
type Runner struct {
	cfg   Config
	prov  Provider
	cache BarCache
	elog  EventLog
	det   *detector.Detector
	met   *metrics.Metrics
}

// New creates a Runner. Zero worker/bar counts fall back to serviceable
// defaults.
func New(cfg Config, prov Provider, cache BarCache, elog EventLog, met *metrics.Metrics) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BarCount <= 0 {
		cfg.BarCount = indicator.WindowSlow + 60
	}
	return &Runner{
		cfg:   cfg,
		prov:  prov,
		cache: cache,
		elog:  elog,
		det:   detector.New(cfg.Detector),
		met:   met,
	}
}

// outcome is one symbol's contribution to the run accounting.
type outcome struct {
	result     *model.ScreeningResult
	scanned    bool
	failed     bool
	skipReason string
}

// Run screens the given security codes as of the given run date and
// returns the report. The report is non-nil even when nothing matched.
func (r *Runner) Run(ctx context.Context, date string, codes []string) (*model.Report, error) {
	start := time.Now()
	report := &model.Report{Date: date, Universe: len(codes)}
	book := backtest.NewBook(r.cfg.Horizon)

	jobs := make(chan string)
	outcomes := make(chan outcome, len(codes))

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, date, jobs, outcomes, book)
		}()
	}

	feed := 0
feed:
	for _, code := range codes {
		select {
		case jobs <- code:
			feed++
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.failed {
			report.Failed++
			continue
		}
		if o.scanned {
			report.Scanned++
		}
		if o.result != nil {
			report.Results = append(report.Results, *o.result)
		}
	}
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Symbol < report.Results[j].Symbol
	})
	report.Stats = book.Stats()

	if r.met != nil {
		r.met.RunDur.Set(time.Since(start).Seconds())
		r.met.LastRunMatches.Set(float64(len(report.Results)))
	}
	log.Printf("[screener] run %s: %d/%d scanned, %d matched, %d failed in %s",
		date, report.Scanned, report.Universe, len(report.Results), report.Failed,
		time.Since(start).Round(time.Millisecond))

	if err := ctx.Err(); err != nil && feed < len(codes) {
		return report, err
	}
	return report, nil
}

// worker drains the job channel, pacing between symbols so the pool's
// aggregate request rate stays bounded. Each worker folds backtest
// samples into a private book and merges it once on the way out.
func (r *Runner) worker(ctx context.Context, date string, jobs <-chan string, out chan<- outcome, shared *backtest.Book) {
	local := backtest.NewBook(shared.Horizon())
	defer shared.Merge(local)

	for code := range jobs {
		out <- r.scanSymbol(ctx, date, code, local)

		if r.cfg.FetchDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.cfg.FetchDelay):
			}
		} else if ctx.Err() != nil {
			return
		}
	}
}

// scanSymbol runs the full pipeline for one security code.
func (r *Runner) scanSymbol(ctx context.Context, date, code string, book *backtest.Book) outcome {
	series, err := r.loadSeries(ctx, date, code)
	if err != nil {
		if errors.Is(err, provider.ErrNoData) {
			return r.skip(code, skipNoData)
		}
		if r.met != nil {
			r.met.FetchFailures.Inc()
		}
		log.Printf("[screener] %s: fetch failed: %v", code, err)
		return outcome{failed: true}
	}

	ind, err := indicator.Compute(series.Bars)
	if err != nil {
		return r.skip(code, skipShortHistory)
	}

	liq := ind.LatestLiquidity()
	tier, ok := r.cfg.Liquidity.Classify(liq)
	if !ok {
		return r.skip(code, skipIlliquid)
	}

	if r.met != nil {
		r.met.SymbolsScanned.Inc()
	}

	events := r.det.Detect(code, series.Bars, ind)
	if len(events) > 0 && r.elog != nil {
		inserted, err := r.elog.AppendEvents(ctx, events)
		if err != nil {
			log.Printf("[screener] %s: event append failed: %v", code, err)
		} else if r.met != nil {
			r.met.EventsAppended.Add(float64(inserted))
		}
	}
	if r.met != nil {
		for _, ev := range events {
			r.met.SignalsTotal.WithLabelValues(string(ev.Type)).Inc()
		}
	}

	// Fold the symbol's full event history (today's events included; those
	// without a complete forward window simply don't count yet).
	if r.elog != nil {
		if hist, err := r.elog.EventsBySymbol(ctx, code); err == nil {
			book.FoldEvents(hist, series)
		} else {
			log.Printf("[screener] %s: event history load failed: %v", code, err)
		}
	}

	if len(events) == 0 {
		return outcome{scanned: true}
	}

	res := &model.ScreeningResult{
		Symbol:    code,
		Close:     series.LatestClose(),
		Tier:      tier,
		Liquidity: liq,
		Events:    events,
	}
	for _, ev := range events {
		switch ev.Type {
		case model.SignalTrendUp:
			res.TrendUp = true
		case model.SignalTroughCross:
			res.TroughCross = true
		case model.SignalGoldenCross:
			res.GoldenCross = true
		}
	}
	return outcome{result: res, scanned: true}
}

// loadSeries serves the bar series from the cache when possible, fetching
// and back-filling the cache otherwise.
func (r *Runner) loadSeries(ctx context.Context, date, code string) (*model.Series, error) {
	if r.cache != nil {
		if series, ok := r.cache.Get(ctx, code, date); ok {
			if r.met != nil {
				r.met.CacheHits.Inc()
			}
			return series, nil
		}
	}

	fetchStart := time.Now()
	series, err := r.prov.DailyBars(ctx, code, r.cfg.BarCount)
	if r.met != nil {
		r.met.FetchDur.Observe(time.Since(fetchStart).Seconds())
	}
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, code, date, series); err != nil {
			log.Printf("[screener] %s: cache write failed: %v", code, err)
		}
	}
	return series, nil
}

func (r *Runner) skip(code, reason string) outcome {
	if r.met != nil {
		r.met.SymbolsSkipped.WithLabelValues(reason).Inc()
	}
	return outcome{scanned: reason == skipIlliquid}
}
