// Package provider is the adapter for the external market-data API.
// It owns session authentication (TOTP-based broker login), request
// retries with backoff, and payload decoding into bar series.
//
// Pacing between requests is deliberately NOT handled here: the screener's
// worker pool enforces a per-worker inter-request delay, which keeps
// rate-limit behavior local to each unit of work.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pquerna/otp/totp"
	"github.com/tidwall/gjson"

	"stock-screenerv1/internal/model"
)

// ErrNoData marks a symbol the provider has no history for (unlisted
// code, delisted, or too new). Treated like insufficient history: the
// symbol is skipped, the batch continues.
var ErrNoData = errors.New("provider: no data for symbol")

const (
	defaultTimeout   = 10 * time.Second
	defaultRetries   = 3
	retryWaitMin     = 500 * time.Millisecond
	retryWaitMax     = 5 * time.Second
	loginPath        = "/auth/session"
	dailyHistoryPath = "/market/history/daily"
)

// Config holds provider connection settings.
type Config struct {
	BaseURL      string
	APIKey       string
	ClientCode   string
	Password     string
	TOTPSecret   string // empty disables session login (public endpoints)
	SymbolSuffix string // exchange suffix appended to codes, e.g. ".T"
	Timeout      time.Duration
	Retries      int
}

// Client talks to the market-data API.
type Client struct {
	cfg  Config
	http *resty.Client
}

// New creates a provider client. Transient failures (timeouts, 429, 5xx)
// are retried with backoff inside the client; callers only see the final
// outcome.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = defaultRetries
	}

	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(retryWaitMin).
		SetRetryMaxWaitTime(retryWaitMax).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	if cfg.APIKey != "" {
		hc.SetHeader("X-Api-Key", cfg.APIKey)
	}

	return &Client{cfg: cfg, http: hc}
}

// Login establishes an authenticated session. The provider's login takes
// the client code, password, and a fresh TOTP code generated from the
// configured shared secret. A client without a TOTP secret skips login
// and uses public endpoints only.
func (c *Client) Login(ctx context.Context) error {
	if c.cfg.TOTPSecret == "" {
		return nil
	}

	code, err := totp.GenerateCode(c.cfg.TOTPSecret, time.Now())
	if err != nil {
		return fmt.Errorf("provider: totp: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"clientcode": c.cfg.ClientCode,
			"password":   c.cfg.Password,
			"totp":       code,
		}).
		Post(loginPath)
	if err != nil {
		return fmt.Errorf("provider: login: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("provider: login: unexpected status %d", resp.StatusCode())
	}

	token := gjson.GetBytes(resp.Body(), "data.token").String()
	if token == "" {
		return fmt.Errorf("provider: login: no token in response")
	}
	c.http.SetAuthToken(token)
	return nil
}

// DailyBars fetches up to count daily bars for a security code, newest
// last. The returned series is sanitized: malformed bars are dropped and
// date-order violations truncate.
func (c *Client) DailyBars(ctx context.Context, code string, count int) (*model.Series, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": code + c.cfg.SymbolSuffix,
			"count":  fmt.Sprintf("%d", count),
		}).
		Get(dailyHistoryPath)
	if err != nil {
		return nil, fmt.Errorf("provider: fetch %s: %w", code, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNoData
	default:
		return nil, fmt.Errorf("provider: fetch %s: unexpected status %d", code, resp.StatusCode())
	}

	series, err := ParseDailyBars(resp.Body(), code)
	if err != nil {
		return nil, err
	}
	return series, nil
}

// ParseDailyBars decodes the provider's candle payload: data.candles is
// an array of [date, open, high, low, close, volume] rows, oldest first.
// Rows that fail basic sanity are skipped, never repaired.
func ParseDailyBars(body []byte, code string) (*model.Series, error) {
	rows := gjson.GetBytes(body, "data.candles")
	if !rows.Exists() || !rows.IsArray() {
		return nil, ErrNoData
	}

	series := &model.Series{Symbol: code}
	for _, row := range rows.Array() {
		fields := row.Array()
		if len(fields) < 6 {
			continue
		}
		series.Bars = append(series.Bars, model.Bar{
			Date:   dateOnly(fields[0].String()),
			Open:   fields[1].Float(),
			High:   fields[2].Float(),
			Low:    fields[3].Float(),
			Close:  fields[4].Float(),
			Volume: fields[5].Int(),
		})
	}
	series.Sanitize()
	if series.Len() == 0 {
		return nil, ErrNoData
	}
	return series, nil
}

// dateOnly reduces a timestamp like "2025-01-06T09:00:00+09:00" to its
// date part; plain dates pass through.
func dateOnly(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i > 0 {
		return ts[:i]
	}
	return ts
}
