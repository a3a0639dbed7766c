// Package storage declares the persistence contract the engine consumes.
// The engine performs no caching of its own: every call goes to the backing
// store, and price records are append-only, never mutated or deleted.
package storage

import (
	"context"

	"github.com/purserdev/purser/internal/domain"
)

// Store is implemented by the Postgres and WAL-backed stores.
type Store interface {
	// ListItems returns all tracked items, newest first.
	ListItems(ctx context.Context) ([]domain.Item, error)
	// AddItem persists a new item and returns it with ID and timestamps set.
	AddItem(ctx context.Context, item domain.Item) (domain.Item, error)
	// UpdateItemListing refreshes an item's display fields from a snapshot.
	// Empty snapshot fields leave the stored values untouched.
	UpdateItemListing(ctx context.Context, itemID int64, snap domain.ListingSnapshot) error

	// PriceHistory returns an item's records ordered by fetched_at ascending.
	PriceHistory(ctx context.Context, itemID int64) ([]domain.PriceRecord, error)
	AppendPrice(ctx context.Context, rec domain.PriceRecord) error

	// TargetFor returns the first target recorded for an item, if any.
	TargetFor(ctx context.Context, itemID int64) (domain.Target, bool, error)
	SetTarget(ctx context.Context, target domain.Target) error

	UpsertFlags(ctx context.Context, rec domain.FlagRecord) error

	Close() error
}
