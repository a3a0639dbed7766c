// Package walstore keeps the watchlist in a local append-only WAL. It is the
// default backend when no Postgres DSN is configured, playing the same role
// a local database file would.
package walstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/purserdev/purser/internal/domain"
)

const (
	segmentLimit = 10000
	maxSegments  = 1000

	itemKeyPrefix   = "item_"
	priceKeyPrefix  = "price_"
	targetKeyPrefix = "target_"
	flagsKeyPrefix  = "flags_"
)

// Store replays the WAL into memory at startup and appends a log entry for
// every mutation. Reads are served from memory under a read lock.
type Store struct {
	wal *gowal.Wal
	mu  sync.RWMutex

	items      []domain.Item
	itemIdx    map[int64]int
	prices     map[int64][]domain.PriceRecord
	targets    map[int64]domain.Target
	flags      map[int64]domain.FlagRecord
	nextItemID int64
}

// NewStore opens (or creates) the WAL in dir and replays it.
func NewStore(dir string) (*Store, error) {
	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "purser_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open wal")
	}

	s := &Store{
		wal:        wal,
		itemIdx:    make(map[int64]int),
		prices:     make(map[int64][]domain.PriceRecord),
		targets:    make(map[int64]domain.Target),
		flags:      make(map[int64]domain.FlagRecord),
		nextItemID: 1,
	}
	if err := s.replay(); err != nil {
		_ = wal.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) replay() error {
	current := s.wal.CurrentIndex()
	for idx := uint64(1); idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(key, itemKeyPrefix):
			var item domain.Item
			if err := json.Unmarshal(payload, &item); err != nil {
				return errors.Wrap(err, "decode item record")
			}
			s.applyItem(item)
		case strings.HasPrefix(key, priceKeyPrefix):
			var rec domain.PriceRecord
			if err := json.Unmarshal(payload, &rec); err != nil {
				return errors.Wrap(err, "decode price record")
			}
			s.prices[rec.ItemID] = append(s.prices[rec.ItemID], rec)
		case strings.HasPrefix(key, targetKeyPrefix):
			var target domain.Target
			if err := json.Unmarshal(payload, &target); err != nil {
				return errors.Wrap(err, "decode target record")
			}
			// First target wins; later duplicates are ignored.
			if _, ok := s.targets[target.ItemID]; !ok {
				s.targets[target.ItemID] = target
			}
		case strings.HasPrefix(key, flagsKeyPrefix):
			var rec domain.FlagRecord
			if err := json.Unmarshal(payload, &rec); err != nil {
				return errors.Wrap(err, "decode flags record")
			}
			s.flags[rec.ItemID] = rec
		}
	}
	return nil
}

func (s *Store) applyItem(item domain.Item) {
	if idx, ok := s.itemIdx[item.ID]; ok {
		s.items[idx] = item
	} else {
		s.itemIdx[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	if item.ID >= s.nextItemID {
		s.nextItemID = item.ID + 1
	}
}

func (s *Store) append(key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal record")
	}
	return s.wal.Write(s.wal.CurrentIndex()+1, key, payload)
}

func (s *Store) ListItems(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Item, len(s.items))
	copy(items, s.items)
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (s *Store) AddItem(_ context.Context, item domain.Item) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	item.ID = s.nextItemID
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.append(itemKey(item.ID), item); err != nil {
		return domain.Item{}, errors.Wrap(err, "append item")
	}
	s.applyItem(item)
	return item, nil
}

func (s *Store) UpdateItemListing(_ context.Context, itemID int64, snap domain.ListingSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.itemIdx[itemID]
	if !ok {
		return errors.Errorf("item %d not found", itemID)
	}

	item := s.items[idx]
	if snap.Title != "" {
		item.Title = snap.Title
	}
	if snap.ImageURL != "" {
		item.ImageURL = snap.ImageURL
	}
	if snap.SiteName != "" {
		item.SiteName = snap.SiteName
	}
	if snap.Currency != "" {
		item.Currency = snap.Currency
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.append(itemKey(itemID), item); err != nil {
		return errors.Wrap(err, "append item update")
	}
	s.items[idx] = item
	return nil
}

func (s *Store) PriceHistory(_ context.Context, itemID int64) ([]domain.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.prices[itemID]
	out := make([]domain.PriceRecord, len(history))
	copy(out, history)
	return out, nil
}

func (s *Store) AppendPrice(_ context.Context, rec domain.PriceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.PriceCents < 0 {
		return errors.Errorf("negative price for item %d", rec.ItemID)
	}
	if err := s.append(priceKeyPrefix+fmt.Sprintf("%d", rec.ItemID), rec); err != nil {
		return errors.Wrap(err, "append price")
	}
	s.prices[rec.ItemID] = append(s.prices[rec.ItemID], rec)
	return nil
}

func (s *Store) TargetFor(_ context.Context, itemID int64) (domain.Target, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.targets[itemID]
	return target, ok, nil
}

func (s *Store) SetTarget(_ context.Context, target domain.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.append(targetKeyPrefix+fmt.Sprintf("%d", target.ItemID), target); err != nil {
		return errors.Wrap(err, "append target")
	}
	if _, ok := s.targets[target.ItemID]; !ok {
		s.targets[target.ItemID] = target
	}
	return nil
}

func (s *Store) UpsertFlags(_ context.Context, rec domain.FlagRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.append(flagsKeyPrefix+fmt.Sprintf("%d", rec.ItemID), rec); err != nil {
		return errors.Wrap(err, "append flags")
	}
	s.flags[rec.ItemID] = rec
	return nil
}

// FlagsFor returns the latest flag record for an item, if any.
func (s *Store) FlagsFor(_ context.Context, itemID int64) (domain.FlagRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.flags[itemID]
	return rec, ok, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wal.Close()
}

func itemKey(id int64) string {
	return fmt.Sprintf("%s%d", itemKeyPrefix, id)
}
