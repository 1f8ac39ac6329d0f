// Package pricing filters and formats a product's price history
package pricing

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout renders entry dates as dd.mm.yyyy
const DateLayout = "02.01.2006"

// DefaultWindowMonths is the look-back used when none is configured
const DefaultWindowMonths = 3

// Record is one historical price point in minor currency units
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Amount    int64     `json:"amount"`
}

// Entry is a display-ready price line. A slice holding a single NoHistory entry
// means no history was available
type Entry struct {
	Date      string `json:"date,omitempty"`
	Amount    string `json:"amount,omitempty"`
	NoHistory bool   `json:"no_history,omitempty"`
}

// NoHistory returns the "no history available" sentinel
func NoHistory() []Entry { return []Entry{{NoHistory: true}} }

// IsNoHistory reports whether entries is the sentinel
func IsNoHistory(entries []Entry) bool {
	return len(entries) == 1 && entries[0].NoHistory
}

// Order is the display ordering policy applied after filtering.
// The source document's direction is opaque; the live source returns ascending dt,
// so OrderReverse shows the newest entry first
type Order string

const (
	// OrderReverse keeps source order then reverses it
	OrderReverse Order = "reverse"
	// OrderSource keeps source order
	OrderSource Order = "source"
)

// ParseOrder maps a config value to an Order, defaulting to OrderReverse
func ParseOrder(s string) Order {
	if Order(strings.ToLower(strings.TrimSpace(s))) == OrderSource {
		return OrderSource
	}
	return OrderReverse
}

// Format renders minor units as "major,minor" with two fraction digits
func Format(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d,%02d", sign, minor/100, minor%100)
}

// Cutoff returns the UTC calendar day that starts the window. Records on that
// day are excluded
func Cutoff(now time.Time, months int) time.Time {
	if months <= 0 {
		months = DefaultWindowMonths
	}
	return day(now.UTC().AddDate(0, -months, 0))
}

// Within keeps records whose UTC date is strictly after the cutoff day, in source order
func Within(records []Record, now time.Time, months int) []Record {
	cut := Cutoff(now, months)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if day(r.Timestamp.UTC()).After(cut) {
			out = append(out, r)
		}
	}
	return out
}

// Build filters, orders and formats records. An empty result yields the sentinel
func Build(records []Record, now time.Time, months int, order Order) []Entry {
	kept := Within(records, now, months)
	if len(kept) == 0 {
		return NoHistory()
	}
	out := make([]Entry, len(kept))
	for i, r := range kept {
		out[i] = Entry{Date: r.Timestamp.UTC().Format(DateLayout), Amount: Format(r.Amount)}
	}
	if order != OrderSource {
		slices.Reverse(out)
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
