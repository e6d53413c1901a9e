// Package window classifies alerts against their timeframe retention windows.
package window

import (
	"fmt"
	"sort"
	"time"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/timeframe"
)

// FadeGrace is how long before expiry an alert is reported as expiring.
const FadeGrace = 30 * time.Second

// State is an alert's lifecycle relative to "now".
type State string

const (
	Live     State = "live"
	Expiring State = "expiring"
	Expired  State = "expired"
)

// Filter applies a retention config. A Filter built from a nil config passes everything through.
type Filter struct {
	cfg       *model.TimeframeConfig
	overrides map[string]int
}

// NewFilter builds a Filter; override keys are normalized once up front.
// When several keys name the same timeframe, the canonical spelling wins.
func NewFilter(cfg *model.TimeframeConfig) *Filter {
	f := &Filter{cfg: cfg}
	if cfg != nil {
		labels := make([]string, 0, len(cfg.Overrides))
		for label := range cfg.Overrides {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		// An exact canonical key beats its aliases; among aliases the first sorted wins.
		f.overrides = make(map[string]int, len(labels))
		for _, label := range labels {
			canon := timeframe.Normalize(label)
			if _, set := f.overrides[canon]; set && label != canon {
				continue
			}
			f.overrides[canon] = cfg.Overrides[label]
		}
	}
	return f
}

// Window resolves the retention window for a timeframe label.
// A non-positive window means alerts on that timeframe never expire.
func (f *Filter) Window(label string) time.Duration {
	if f.cfg == nil {
		return 0
	}
	minutes, ok := f.overrides[timeframe.Normalize(label)]
	if !ok {
		minutes = f.cfg.GlobalDefault
	}
	return time.Duration(minutes) * time.Minute
}

// Enabled reports whether a retention config is present.
func (f *Filter) Enabled() bool {
	return f.cfg != nil
}

// remaining returns the time left before the alert expires and whether a limit applies.
// Alerts with an unparseable time have no time left.
func (f *Filter) remaining(a model.Alert, now time.Time) (time.Duration, bool) {
	w := f.Window(a.Timeframe)
	if w <= 0 {
		return 0, false
	}
	at, ok := a.AtOn(now)
	if !ok {
		return -1, true
	}
	return w - now.Sub(at), true
}

// Classify reports whether an alert is live, about to expire, or expired.
func (f *Filter) Classify(a model.Alert, now time.Time) State {
	if f.cfg == nil {
		return Live
	}
	left, limited := f.remaining(a, now)
	switch {
	case !limited:
		return Live
	case left < 0:
		return Expired
	case left < FadeGrace:
		return Expiring
	default:
		return Live
	}
}

// FilterLive drops expired alerts and keeps input order.
func (f *Filter) FilterLive(alerts []model.Alert, now time.Time) []model.Alert {
	if f.cfg == nil || len(alerts) == 0 {
		return alerts
	}
	out := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		if f.Classify(a, now) != Expired {
			out = append(out, a)
		}
	}
	return out
}

// TimeUntilExpiry renders the countdown shown next to an alert.
func (f *Filter) TimeUntilExpiry(a model.Alert, now time.Time) string {
	if f.cfg == nil {
		return "Unknown"
	}
	left, limited := f.remaining(a, now)
	if !limited {
		return "Unknown"
	}
	if left <= 0 {
		return "Expired"
	}
	secs := int(left / time.Second)
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}
