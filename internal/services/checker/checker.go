// Package checker runs the periodic price check over all tracked items.
package checker

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/purserdev/purser/internal/domain"
)

type store interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	UpdateItemListing(ctx context.Context, itemID int64, snap domain.ListingSnapshot) error
	AppendPrice(ctx context.Context, rec domain.PriceRecord) error
	UpsertFlags(ctx context.Context, rec domain.FlagRecord) error
}

type fetcher interface {
	Fetch(ctx context.Context, url string) domain.ListingSnapshot
}

// Checker fans the batch check out over a bounded worker pool. Each browser
// session is heavyweight, so the pool size caps how many run at once.
type Checker struct {
	store   store
	fetcher fetcher
	workers int
	logger  *zap.Logger
	now     func() time.Time
}

func New(s store, f fetcher, workers int, logger *zap.Logger) *Checker {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{store: s, fetcher: f, workers: workers, logger: logger, now: time.Now}
}

// CheckAllItems fetches every non-paused item concurrently and records each
// outcome independently. It returns only when the whole batch completed; a
// single item failing never aborts or delays the others. The returned error
// covers listing the items, not per-item outcomes.
func (c *Checker) CheckAllItems(ctx context.Context) error {
	items, err := c.store.ListItems(ctx)
	if err != nil {
		return errors.Wrap(err, "list items")
	}

	g := new(errgroup.Group)
	g.SetLimit(c.workers)

	checked := 0
	for _, it := range items {
		if it.Paused {
			continue
		}
		item := it
		checked++
		g.Go(func() error {
			c.checkItem(ctx, item)
			return nil
		})
	}

	_ = g.Wait()
	c.logger.Info("batch check finished",
		zap.Int("items", len(items)),
		zap.Int("checked", checked),
	)
	return nil
}

// checkItem is the per-item unit of work. All failures end here: they are
// logged and the item is skipped, nothing propagates.
func (c *Checker) checkItem(ctx context.Context, item domain.Item) {
	log := c.logger.With(zap.Int64("item_id", item.ID), zap.String("url", item.URL))

	snap := c.fetcher.Fetch(ctx, item.URL)

	// A fallback snapshot carries placeholders, not extracted data; writing
	// it would replace a previously extracted title with the raw URL.
	if snap.Fallback {
		log.Debug("fetch fell back, keeping stored listing metadata")
	} else if err := c.store.UpdateItemListing(ctx, item.ID, snap); err != nil {
		log.Warn("failed to update item listing", zap.Error(err))
	}

	if snap.HasPrice {
		rec := domain.PriceRecord{
			ItemID:           item.ID,
			PriceCents:       snap.PriceCents(),
			Currency:         snap.Currency,
			FetchedAt:        c.now().UTC(),
			SourceConfidence: snap.Confidence,
		}
		if err := c.store.AppendPrice(ctx, rec); err != nil {
			log.Warn("failed to record price", zap.Error(err))
		} else {
			log.Info("recorded price",
				zap.Int64("price_cents", rec.PriceCents),
				zap.String("currency", rec.Currency),
			)
		}
	}

	if snap.HasPrice || snap.Flags.Any() {
		rec := domain.FlagRecord{
			ItemID:        item.ID,
			FreeShipping:  snap.Flags.FreeShipping,
			AcceptsOffers: snap.Flags.AcceptsOffers,
			UpdatedAt:     c.now().UTC(),
		}
		if err := c.store.UpsertFlags(ctx, rec); err != nil {
			log.Warn("failed to upsert flags", zap.Error(err))
		}
	}
}
