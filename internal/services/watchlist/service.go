package watchlist

import (
	"context"

	"github.com/pkg/errors"

	"github.com/purserdev/purser/internal/domain"
)

type store interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	PriceHistory(ctx context.Context, itemID int64) ([]domain.PriceRecord, error)
	TargetFor(ctx context.Context, itemID int64) (domain.Target, bool, error)
}

// Service loads histories and targets from the store and aggregates them
// into rows.
type Service struct {
	store store
}

func NewService(s store) *Service {
	return &Service{store: s}
}

// BuildWatchlistRows returns the current watchlist, newest item first.
func (s *Service) BuildWatchlistRows(ctx context.Context) ([]domain.WatchlistRow, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}

	histories := make(map[int64][]domain.PriceRecord, len(items))
	targets := make(map[int64]domain.Target, len(items))
	for _, item := range items {
		history, err := s.store.PriceHistory(ctx, item.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "price history for item %d", item.ID)
		}
		histories[item.ID] = history

		target, ok, err := s.store.TargetFor(ctx, item.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "target for item %d", item.ID)
		}
		if ok {
			targets[item.ID] = target
		}
	}

	return BuildRows(items, histories, targets), nil
}
