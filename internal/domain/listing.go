package domain

import "github.com/shopspring/decimal"

// ListingFlags holds boolean facts detected on a listing page.
type ListingFlags struct {
	FreeShipping  bool `json:"free_shipping"`
	AcceptsOffers bool `json:"accepts_offers"`
}

// Any reports whether at least one flag is set.
func (f ListingFlags) Any() bool {
	return f.FreeShipping || f.AcceptsOffers
}

// ListingSnapshot is the result of a single fetch attempt. A field left at
// its zero value means the adapter could not extract it; a partially filled
// snapshot is a normal outcome, not an error.
type ListingSnapshot struct {
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	Currency string `json:"currency"`

	// Price is valid only when HasPrice is true.
	Price    decimal.Decimal `json:"price,omitempty"`
	HasPrice bool            `json:"has_price"`

	// Confidence describes how the price was obtained: 1.0 for a structured
	// selector hit, 0.5 for a regex match over the whole body text.
	Confidence float64 `json:"confidence,omitempty"`

	// Fallback marks a snapshot synthesized after a failed fetch. Its fields
	// are placeholders (URL as title), not extracted data, and must never
	// overwrite stored listing metadata.
	Fallback bool `json:"-"`

	Flags ListingFlags `json:"flags"`
}

// PriceCents converts the snapshot price into integer cents for persistence.
func (s ListingSnapshot) PriceCents() int64 {
	return s.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
