// Package timeframe canonicalizes chart timeframe labels and orders them.
package timeframe

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
	minutesPerWeek = 7 * minutesPerDay
)

var unitMinutes = map[string]int{
	"":        1,
	"m":       1,
	"min":     1,
	"mins":    1,
	"minute":  1,
	"minutes": 1,
	"h":       minutesPerHour,
	"hr":      minutesPerHour,
	"hrs":     minutesPerHour,
	"hour":    minutesPerHour,
	"hours":   minutesPerHour,
	"d":       minutesPerDay,
	"day":     minutesPerDay,
	"days":    minutesPerDay,
	"w":       minutesPerWeek,
	"wk":      minutesPerWeek,
	"week":    minutesPerWeek,
	"weeks":   minutesPerWeek,
}

// Minutes parses a timeframe label into its duration in minutes.
// Bare numbers are minutes; "D" and "W" without a count mean one day and one week.
// An upper-case "M" suffix is a month in TradingView notation and has no fixed length.
func Minutes(label string) (int, bool) {
	raw := strings.TrimSpace(label)
	if strings.HasSuffix(raw, "M") {
		return 0, false
	}
	s := strings.ToLower(raw)
	if s == "" {
		return 0, false
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	unit := strings.TrimSpace(s[i:])
	per, ok := unitMinutes[unit]
	if !ok {
		return 0, false
	}
	if i == 0 {
		if unit != "d" && unit != "w" {
			return 0, false
		}
		return per, true
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n * per, true
}

// Normalize renders a label in canonical form ("15" and "15min" become "15m",
// "60" becomes "1h"). Labels that cannot be parsed are returned unchanged.
func Normalize(label string) string {
	m, ok := Minutes(label)
	if !ok {
		return label
	}
	switch {
	case m%minutesPerWeek == 0:
		return fmt.Sprintf("%dw", m/minutesPerWeek)
	case m%minutesPerDay == 0:
		return fmt.Sprintf("%dd", m/minutesPerDay)
	case m%minutesPerHour == 0:
		return fmt.Sprintf("%dh", m/minutesPerHour)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// Table is an immutable display order over canonical timeframes.
type Table struct {
	labels []string
	order  map[string]int
}

// NewTable builds a table from labels in ascending order. Labels are normalized;
// duplicates keep their first position.
func NewTable(labels ...string) *Table {
	t := &Table{order: make(map[string]int, len(labels))}
	for _, l := range labels {
		n := Normalize(l)
		if _, dup := t.order[n]; dup {
			continue
		}
		t.order[n] = len(t.labels)
		t.labels = append(t.labels, n)
	}
	return t
}

// DefaultTable covers the timeframes charting indicators usually emit.
func DefaultTable() *Table {
	return NewTable("1m", "3m", "5m", "15m", "30m", "45m", "1h", "2h", "3h", "4h", "12h", "1d", "1w")
}

// Labels returns a copy of the table's canonical labels.
func (t *Table) Labels() []string {
	return append([]string(nil), t.labels...)
}

// SortOrder returns the position of label; unknown labels sort after every known one.
func (t *Table) SortOrder(label string) int {
	if i, ok := t.order[Normalize(label)]; ok {
		return i
	}
	return len(t.labels)
}

// Compare orders two labels by table position, falling back to lexicographic
// order of the normalized labels so unknown labels sort deterministically.
func (t *Table) Compare(a, b string) int {
	oa, ob := t.SortOrder(a), t.SortOrder(b)
	if oa != ob {
		if oa < ob {
			return -1
		}
		return 1
	}
	return strings.Compare(Normalize(a), Normalize(b))
}
