package provider

import (
	"errors"
	"testing"
)

func TestParseDailyBars(t *testing.T) {
	body := []byte(`{"status":true,"data":{"candles":[
		["2025-01-06T09:00:00+09:00", 100.0, 102.0, 99.0, 101.5, 120000],
		["2025-01-07", 101.5, 103.0, 100.5, 102.0, 98000],
		["2025-01-08", 102.0, 102.5, -1.0, 101.0, 50000],
		["2025-01-09", 101.0, 104.0, 100.0, 103.5, 110000]
	]}}`)

	series, err := ParseDailyBars(body, "7203")
	if err != nil {
		t.Fatalf("ParseDailyBars: %v", err)
	}
	if series.Symbol != "7203" {
		t.Errorf("symbol=%q", series.Symbol)
	}
	// The negative-low row is dropped by sanitization, not repaired.
	if series.Len() != 3 {
		t.Fatalf("len=%d, want 3", series.Len())
	}
	if series.Bars[0].Date != "2025-01-06" {
		t.Errorf("timestamp not reduced to date: %q", series.Bars[0].Date)
	}
	if series.LatestDate() != "2025-01-09" || series.LatestClose() != 103.5 {
		t.Errorf("latest bar wrong: %s %f", series.LatestDate(), series.LatestClose())
	}
}

func TestParseDailyBars_ShortRowSkipped(t *testing.T) {
	body := []byte(`{"data":{"candles":[
		["2025-01-06", 100.0, 101.0, 99.0, 100.5, 1000],
		["2025-01-07", 100.5],
		["2025-01-08", 100.5, 102.0, 100.0, 101.5, 2000]
	]}}`)
	series, err := ParseDailyBars(body, "8306")
	if err != nil {
		t.Fatalf("ParseDailyBars: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("len=%d, want 2 (short row skipped)", series.Len())
	}
}

func TestParseDailyBars_NoData(t *testing.T) {
	for _, body := range []string{
		`{"status":false,"message":"unknown symbol"}`,
		`{"data":{"candles":[]}}`,
		`{"data":{"candles":"oops"}}`,
	} {
		if _, err := ParseDailyBars([]byte(body), "0000"); !errors.Is(err, ErrNoData) {
			t.Errorf("body %s: err=%v, want ErrNoData", body, err)
		}
	}
}
