package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DeltaNoData is rendered when a percentage change cannot be computed,
// e.g. for an empty history or a single recorded price.
const DeltaNoData = "—"

// FormatCents renders integer cents as a major-unit amount ("12.99"), or
// DeltaNoData when no value exists. Safe for optional row fields.
func FormatCents(cents *int64) string {
	if cents == nil {
		return DeltaNoData
	}
	return fmt.Sprintf("%.2f", float64(*cents)/100)
}

// Sparkline is a bounded recent-window price trend, oldest to newest.
// Labels are positional indexes, values are prices in major currency units.
type Sparkline struct {
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
}

// WatchlistRow is a derived display row. It is recomputed on every read and
// never persisted.
type WatchlistRow struct {
	ItemID          int64     `json:"item_id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	SiteName        string    `json:"site_name,omitempty"`
	Currency        string    `json:"currency,omitempty"`
	CurrentCents    *int64    `json:"current_cents,omitempty"`
	TargetCents     *int64    `json:"target_cents,omitempty"`
	DeltaPctDisplay string    `json:"delta_pct_display"`
	Sparkline       Sparkline `json:"sparkline"`
}
