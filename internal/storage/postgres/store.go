// Package postgres implements the watchlist store on top of pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/purserdev/purser/internal/domain"
)

// Store persists items, prices, targets and flags in Postgres. Every write
// is its own transaction; a failed write for one item never touches another.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and verifies the connection.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS items (
    id         BIGSERIAL PRIMARY KEY,
    url        TEXT NOT NULL,
    domain     TEXT NOT NULL,
    title      TEXT NOT NULL DEFAULT '',
    image_url  TEXT NOT NULL DEFAULT '',
    site_name  TEXT NOT NULL DEFAULT '',
    currency   TEXT NOT NULL DEFAULT '',
    paused     BOOLEAN NOT NULL DEFAULT FALSE,
    notes      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS prices (
    id                BIGSERIAL PRIMARY KEY,
    item_id           BIGINT NOT NULL REFERENCES items(id),
    price_cents       BIGINT NOT NULL CHECK (price_cents >= 0),
    currency          TEXT NOT NULL,
    fetched_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    source_confidence DOUBLE PRECISION NOT NULL DEFAULT 1.0
);
CREATE INDEX IF NOT EXISTS prices_item_fetched_idx ON prices (item_id, fetched_at);
CREATE TABLE IF NOT EXISTS targets (
    id           BIGSERIAL PRIMARY KEY,
    item_id      BIGINT NOT NULL REFERENCES items(id),
    target_cents BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS flags (
    item_id        BIGINT PRIMARY KEY REFERENCES items(id),
    free_shipping  BOOLEAN NOT NULL DEFAULT FALSE,
    accepts_offers BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	return nil
}

func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	const q = `
SELECT id, url, domain, title, image_url, site_name, currency, paused, notes, created_at, updated_at
FROM items
ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "query items")
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.URL, &it.Domain, &it.Title, &it.ImageURL,
			&it.SiteName, &it.Currency, &it.Paused, &it.Notes, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan item")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) AddItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	const q = `
INSERT INTO items (url, domain, title, image_url, site_name, currency, paused, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, q,
		item.URL, item.Domain, item.Title, item.ImageURL,
		item.SiteName, item.Currency, item.Paused, item.Notes,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.Item{}, errors.Wrap(err, "insert item")
	}
	return item, nil
}

func (s *Store) UpdateItemListing(ctx context.Context, itemID int64, snap domain.ListingSnapshot) error {
	const q = `
UPDATE items SET
    title      = COALESCE(NULLIF($2, ''), title),
    image_url  = COALESCE(NULLIF($3, ''), image_url),
    site_name  = COALESCE(NULLIF($4, ''), site_name),
    currency   = COALESCE(NULLIF($5, ''), currency),
    updated_at = now()
WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, itemID, snap.Title, snap.ImageURL, snap.SiteName, snap.Currency)
	if err != nil {
		return errors.Wrap(err, "update item listing")
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("item %d not found", itemID)
	}
	return nil
}

func (s *Store) PriceHistory(ctx context.Context, itemID int64) ([]domain.PriceRecord, error) {
	const q = `
SELECT item_id, price_cents, currency, fetched_at, source_confidence
FROM prices
WHERE item_id = $1
ORDER BY fetched_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, q, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "query price history")
	}
	defer rows.Close()

	var history []domain.PriceRecord
	for rows.Next() {
		var rec domain.PriceRecord
		if err := rows.Scan(&rec.ItemID, &rec.PriceCents, &rec.Currency,
			&rec.FetchedAt, &rec.SourceConfidence); err != nil {
			return nil, errors.Wrap(err, "scan price record")
		}
		history = append(history, rec)
	}
	return history, rows.Err()
}

func (s *Store) AppendPrice(ctx context.Context, rec domain.PriceRecord) error {
	const q = `
INSERT INTO prices (item_id, price_cents, currency, fetched_at, source_confidence)
VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.pool.Exec(ctx, q,
		rec.ItemID, rec.PriceCents, rec.Currency, rec.FetchedAt, rec.SourceConfidence); err != nil {
		return errors.Wrap(err, "insert price")
	}
	return nil
}

func (s *Store) TargetFor(ctx context.Context, itemID int64) (domain.Target, bool, error) {
	const q = `
SELECT item_id, target_cents
FROM targets
WHERE item_id = $1
ORDER BY id ASC
LIMIT 1`

	var target domain.Target
	err := s.pool.QueryRow(ctx, q, itemID).Scan(&target.ItemID, &target.TargetCents)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Target{}, false, nil
	}
	if err != nil {
		return domain.Target{}, false, errors.Wrap(err, "query target")
	}
	return target, true, nil
}

func (s *Store) SetTarget(ctx context.Context, target domain.Target) error {
	const q = `INSERT INTO targets (item_id, target_cents) VALUES ($1, $2)`
	if _, err := s.pool.Exec(ctx, q, target.ItemID, target.TargetCents); err != nil {
		return errors.Wrap(err, "insert target")
	}
	return nil
}

func (s *Store) UpsertFlags(ctx context.Context, rec domain.FlagRecord) error {
	const q = `
INSERT INTO flags (item_id, free_shipping, accepts_offers, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (item_id) DO UPDATE SET
    free_shipping  = EXCLUDED.free_shipping,
    accepts_offers = EXCLUDED.accepts_offers,
    updated_at     = now()`

	if _, err := s.pool.Exec(ctx, q, rec.ItemID, rec.FreeShipping, rec.AcceptsOffers); err != nil {
		return errors.Wrap(err, "upsert flags")
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
