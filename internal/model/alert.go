package model

import (
	"strconv"
	"strings"
	"time"
)

// Alert is a single named signal emitted by a charting indicator.
type Alert struct {
	ID        string  `json:"id"`
	Time      string  `json:"time,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
	Ticker    string  `json:"ticker"`
	Timeframe string  `json:"timeframe"`
	Indicator string  `json:"indicator"`
	Trigger   string  `json:"trigger"`
	Weight    float64 `json:"weight"`
}

// RawTime returns Timestamp when set, otherwise Time.
func (a Alert) RawTime() string {
	if a.Timestamp != "" {
		return a.Timestamp
	}
	return a.Time
}

// At parses the alert's time. Unparseable input yields the zero time and false,
// so callers treat the alert as the oldest possible record.
func (a Alert) At() (time.Time, bool) {
	return ParseTime(a.RawTime())
}

// AtOn parses the alert's time like At, but anchors a clock-only time to the
// date of ref, or the day before when that would put it after ref.
func (a Alert) AtOn(ref time.Time) (time.Time, bool) {
	return ParseTimeOn(a.RawTime(), ref)
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

const clockLayout = "15:04:05"

// ParseTime tries the layouts alerts are known to carry, then unix seconds or milliseconds.
// A clock-only time parses onto year zero; use ParseTimeOn to place it on a date.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(clockLayout, s); err == nil {
		return t, true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		// 1e11 seconds is the year 5138; anything larger is milliseconds.
		if n > 1e11 {
			return time.UnixMilli(n), true
		}
		return time.Unix(n, 0), true
	}
	return time.Time{}, false
}

// ParseTimeOn is ParseTime with clock-only times placed on ref's UTC date,
// rolled back one day if the result would be later than ref.
func ParseTimeOn(s string, ref time.Time) (time.Time, bool) {
	clock, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return ParseTime(s)
	}
	ref = ref.UTC()
	t := time.Date(ref.Year(), ref.Month(), ref.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
	if t.After(ref) {
		t = t.AddDate(0, 0, -1)
	}
	return t, true
}

var quoteSuffixes = []string{"USDT", "USDC", "BUSD", "PERP", "USD"}

// NormalizeTicker upper-cases a symbol and strips one quote-currency suffix.
func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	for _, suffix := range quoteSuffixes {
		if len(t) > len(suffix) && strings.HasSuffix(t, suffix) {
			return strings.TrimSuffix(t, suffix)
		}
	}
	return t
}

// TickerGroup is an ordered set of alerts sharing a ticker, and optionally a timeframe.
type TickerGroup struct {
	Ticker    string  `json:"ticker"`
	Timeframe string  `json:"timeframe,omitempty"`
	Alerts    []Alert `json:"alerts"`
}
