package domain

import "time"

// Item is a tracked listing on the watchlist.
type Item struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	Title     string    `json:"title,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	SiteName  string    `json:"site_name,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Paused    bool      `json:"paused"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PriceRecord is one observed price for an item. Records are append-only and
// read back ordered by FetchedAt ascending.
type PriceRecord struct {
	ItemID           int64     `json:"item_id"`
	PriceCents       int64     `json:"price_cents"`
	Currency         string    `json:"currency"`
	FetchedAt        time.Time `json:"fetched_at"`
	SourceConfidence float64   `json:"source_confidence"`
}

// Target is a desired price for an item. At most one target is honored per
// item; when duplicates exist upstream the first one wins.
type Target struct {
	ItemID      int64 `json:"item_id"`
	TargetCents int64 `json:"target_cents"`
}

// FlagRecord is the latest observed listing flags for an item.
type FlagRecord struct {
	ItemID        int64     `json:"item_id"`
	FreeShipping  bool      `json:"free_shipping"`
	AcceptsOffers bool      `json:"accepts_offers"`
	UpdatedAt     time.Time `json:"updated_at"`
}
