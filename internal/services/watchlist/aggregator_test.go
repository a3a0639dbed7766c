package watchlist

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/purserdev/purser/internal/domain"
)

func historyOf(itemID int64, cents ...int64) []domain.PriceRecord {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := make([]domain.PriceRecord, 0, len(cents))
	for i, c := range cents {
		records = append(records, domain.PriceRecord{
			ItemID:           itemID,
			PriceCents:       c,
			Currency:         "USD",
			FetchedAt:        base.Add(time.Duration(i) * time.Hour),
			SourceConfidence: 1.0,
		})
	}
	return records
}

func TestBuildRowsDelta(t *testing.T) {
	item := domain.Item{ID: 1, URL: "https://ebay.com/itm/1", Title: "Camera", CreatedAt: time.Now()}

	rows := BuildRows(
		[]domain.Item{item},
		map[int64][]domain.PriceRecord{1: historyOf(1, 1000, 1200)},
		nil,
	)

	require.Len(t, rows, 1)
	require.Equal(t, "+20.0%", rows[0].DeltaPctDisplay)
	require.NotNil(t, rows[0].CurrentCents)
	require.Equal(t, int64(1200), *rows[0].CurrentCents)
}

func TestBuildRowsDeltaNegative(t *testing.T) {
	item := domain.Item{ID: 1, URL: "https://ebay.com/itm/1", CreatedAt: time.Now()}

	rows := BuildRows(
		[]domain.Item{item},
		map[int64][]domain.PriceRecord{1: historyOf(1, 1000, 960)},
		nil,
	)

	require.Equal(t, "-4.0%", rows[0].DeltaPctDisplay)
}

func TestBuildRowsSinglePointIsNoData(t *testing.T) {
	item := domain.Item{ID: 1, URL: "https://ebay.com/itm/1", CreatedAt: time.Now()}

	rows := BuildRows(
		[]domain.Item{item},
		map[int64][]domain.PriceRecord{1: historyOf(1, 1000)},
		nil,
	)

	require.Equal(t, domain.DeltaNoData, rows[0].DeltaPctDisplay,
		"a single data point must not render as 0.0%%")
	require.NotNil(t, rows[0].CurrentCents)
}

func TestBuildRowsEmptyHistory(t *testing.T) {
	item := domain.Item{ID: 1, URL: "https://ebay.com/itm/1", CreatedAt: time.Now()}

	rows := BuildRows([]domain.Item{item}, nil, nil)

	require.Nil(t, rows[0].CurrentCents)
	require.Equal(t, domain.DeltaNoData, rows[0].DeltaPctDisplay)
	require.Empty(t, rows[0].Sparkline.Values)
}

func TestBuildRowsZeroBaseline(t *testing.T) {
	item := domain.Item{ID: 1, URL: "https://ebay.com/itm/1", CreatedAt: time.Now()}

	rows := BuildRows(
		[]domain.Item{item},
		map[int64][]domain.PriceRecord{1: historyOf(1, 0, 1200)},
		nil,
	)

	require.Equal(t, domain.DeltaNoData, rows[0].DeltaPctDisplay, "never divide by zero")
}

func TestBuildRowsSparklineWindow(t *testing.T) {
	cents := make([]int64, 0, 25)
	for i := 0; i < 25; i++ {
		cents = append(cents, int64(1000+i))
	}
	item := domain.Item{ID: 1, URL: "https://ebay.com/itm/1", CreatedAt: time.Now()}

	rows := BuildRows(
		[]domain.Item{item},
		map[int64][]domain.PriceRecord{1: historyOf(1, cents...)},
		nil,
	)

	spark := rows[0].Sparkline
	require.Len(t, spark.Values, 10, "sparkline never exceeds 10 points")
	require.Len(t, spark.Labels, 10)

	// Most recent entries, oldest to newest: 1015..1024 cents.
	for i, v := range spark.Values {
		want := decimal.NewFromInt(int64(1015+i)).Div(decimal.NewFromInt(100))
		require.True(t, v.Equal(want), "value %d: got %s, want %s", i, v, want)
		require.Equal(t, fmt.Sprintf("%d", i), spark.Labels[i])
	}
}

func TestBuildRowsTargetAndOrdering(t *testing.T) {
	now := time.Now()
	older := domain.Item{ID: 1, URL: "https://a.example.com", CreatedAt: now.Add(-time.Hour)}
	newer := domain.Item{ID: 2, URL: "https://b.example.com", CreatedAt: now}

	rows := BuildRows(
		[]domain.Item{older, newer},
		nil,
		map[int64]domain.Target{1: {ItemID: 1, TargetCents: 900}},
	)

	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].ItemID, "newest item first")
	require.Equal(t, int64(1), rows[1].ItemID)

	require.Nil(t, rows[0].TargetCents)
	require.NotNil(t, rows[1].TargetCents)
	require.Equal(t, int64(900), *rows[1].TargetCents)
}

func TestBuildRowsTitleFallsBackToURL(t *testing.T) {
	item := domain.Item{ID: 1, URL: "https://ebay.com/itm/9", CreatedAt: time.Now()}
	rows := BuildRows([]domain.Item{item}, nil, nil)
	require.Equal(t, item.URL, rows[0].Title)
}
