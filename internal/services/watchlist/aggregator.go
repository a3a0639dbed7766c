// Package watchlist derives display rows from persisted price history.
// It performs read-only computation and is safe to call concurrently with
// the fetch path.
package watchlist

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/purserdev/purser/internal/domain"
)

// sparklineWindow bounds how many recent price points a row carries.
const sparklineWindow = 10

var hundred = decimal.NewFromInt(100)

// BuildRows turns items and their ascending-ordered price histories into
// watchlist rows, newest item first. Rows are derived on every call and
// never persisted.
func BuildRows(items []domain.Item, historyByItem map[int64][]domain.PriceRecord, targetByItem map[int64]domain.Target) []domain.WatchlistRow {
	sorted := make([]domain.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	rows := make([]domain.WatchlistRow, 0, len(sorted))
	for _, item := range sorted {
		row := domain.WatchlistRow{
			ItemID:          item.ID,
			Title:           item.Title,
			URL:             item.URL,
			SiteName:        item.SiteName,
			Currency:        item.Currency,
			DeltaPctDisplay: domain.DeltaNoData,
		}
		if row.Title == "" {
			row.Title = item.URL
		}

		history := historyByItem[item.ID]
		if len(history) > 0 {
			current := history[len(history)-1].PriceCents
			row.CurrentCents = &current

			first := history[0].PriceCents
			// A delta needs two data points and a positive baseline; a single
			// record must not masquerade as 0%.
			if len(history) > 1 && first > 0 {
				deltaPct := decimal.NewFromInt(current - first).
					Div(decimal.NewFromInt(first)).
					Mul(hundred)
				row.DeltaPctDisplay = formatDelta(deltaPct)
			}

			row.Sparkline = buildSparkline(history)
		}

		if target, ok := targetByItem[item.ID]; ok {
			cents := target.TargetCents
			row.TargetCents = &cents
		}

		rows = append(rows, row)
	}
	return rows
}

// buildSparkline takes the most recent entries in chronological order,
// labeled by position, valued in major currency units.
func buildSparkline(history []domain.PriceRecord) domain.Sparkline {
	window := history
	if len(window) > sparklineWindow {
		window = window[len(window)-sparklineWindow:]
	}

	spark := domain.Sparkline{
		Labels: make([]string, 0, len(window)),
		Values: make([]decimal.Decimal, 0, len(window)),
	}
	for i, rec := range window {
		spark.Labels = append(spark.Labels, strconv.Itoa(i))
		spark.Values = append(spark.Values, decimal.NewFromInt(rec.PriceCents).Div(hundred))
	}
	return spark
}

// formatDelta renders a percentage with one decimal place and an explicit
// sign, e.g. "+12.3%" or "-4.0%".
func formatDelta(pct decimal.Decimal) string {
	s := pct.StringFixed(1)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}
