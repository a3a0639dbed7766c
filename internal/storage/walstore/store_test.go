package walstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/purserdev/purser/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func TestAddAndListItems(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.AddItem(ctx, domain.Item{URL: "https://a.example.com", Domain: "a.example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(1), first.ID)

	second, err := s.AddItem(ctx, domain.Item{URL: "https://b.example.com", Domain: "b.example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(2), second.ID)

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, int64(2), items[0].ID, "newest first")
	require.Equal(t, int64(1), items[1].ID)
}

func TestPriceHistoryOrderedAscending(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item, err := s.AddItem(ctx, domain.Item{URL: "https://a.example.com"})
	require.NoError(t, err)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, cents := range []int64{1000, 1100, 1050} {
		require.NoError(t, s.AppendPrice(ctx, domain.PriceRecord{
			ItemID:           item.ID,
			PriceCents:       cents,
			Currency:         "USD",
			FetchedAt:        base.Add(time.Duration(i) * time.Hour),
			SourceConfidence: 1.0,
		}))
	}

	history, err := s.PriceHistory(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, int64(1000), history[0].PriceCents)
	require.Equal(t, int64(1050), history[2].PriceCents)
}

func TestTargetFirstWins(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item, err := s.AddItem(ctx, domain.Item{URL: "https://a.example.com"})
	require.NoError(t, err)

	require.NoError(t, s.SetTarget(ctx, domain.Target{ItemID: item.ID, TargetCents: 900}))
	require.NoError(t, s.SetTarget(ctx, domain.Target{ItemID: item.ID, TargetCents: 500}))

	target, ok, err := s.TargetFor(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(900), target.TargetCents, "first recorded target wins")
}

func TestUpdateItemListingKeepsExistingFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item, err := s.AddItem(ctx, domain.Item{URL: "https://a.example.com", Title: "old title"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateItemListing(ctx, item.ID, domain.ListingSnapshot{
		SiteName: "Example Shop",
	}))

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Equal(t, "old title", items[0].Title, "empty snapshot fields leave stored values alone")
	require.Equal(t, "Example Shop", items[0].SiteName)
}

func TestUpsertFlagsLatestWins(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item, err := s.AddItem(ctx, domain.Item{URL: "https://a.example.com"})
	require.NoError(t, err)

	require.NoError(t, s.UpsertFlags(ctx, domain.FlagRecord{ItemID: item.ID, FreeShipping: true}))
	require.NoError(t, s.UpsertFlags(ctx, domain.FlagRecord{ItemID: item.ID, AcceptsOffers: true}))

	rec, ok, err := s.FlagsFor(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, rec.FreeShipping)
	require.True(t, rec.AcceptsOffers)
}

func TestReplayAfterReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(dir)
	require.NoError(t, err)

	item, err := s.AddItem(ctx, domain.Item{URL: "https://a.example.com"})
	require.NoError(t, err)
	require.NoError(t, s.AppendPrice(ctx, domain.PriceRecord{
		ItemID: item.ID, PriceCents: 1234, Currency: "USD", FetchedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.SetTarget(ctx, domain.Target{ItemID: item.ID, TargetCents: 1000}))
	require.NoError(t, s.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, item.ID, items[0].ID)

	history, err := reopened.PriceHistory(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, int64(1234), history[0].PriceCents)

	target, ok, err := reopened.TargetFor(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1000), target.TargetCents)

	next, err := reopened.AddItem(ctx, domain.Item{URL: "https://b.example.com"})
	require.NoError(t, err)
	require.Equal(t, item.ID+1, next.ID, "id sequence continues after replay")
}
