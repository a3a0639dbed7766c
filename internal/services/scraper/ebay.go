package scraper

import (
	"github.com/purserdev/purser/internal/domain"
	"github.com/purserdev/purser/internal/services/parser"
)

// ebayPriceSelectors are tried in order, most reliable structured locations
// first. The list is a hand-tuned guess against the live site and goes stale
// silently when eBay changes its markup; the body-text fallback below is the
// safety net.
var ebayPriceSelectors = []string{
	"#prcIsum",
	`[data-testid="x-bin-price"]`,
	`[data-testid="x-price-primary"]`,
	"#mm-saleDscPrc",
	"#prcIsum_bidPrice",
	".notranslate",
	".u-flL.condText",
}

// EbayAdapter extracts listing data from eBay product pages.
type EbayAdapter struct{}

func (a *EbayAdapter) Domains() []string {
	return []string{"ebay.com", "www.ebay.com"}
}

func (a *EbayAdapter) Scrape(page Page, rawURL string) domain.ListingSnapshot {
	snap := domain.ListingSnapshot{
		SiteName: "eBay",
		Currency: "USD",
	}
	if page == nil {
		return snap
	}

	if v, ok := page.MetaProperty("og:title"); ok {
		snap.Title = v
	}
	if v, ok := page.MetaProperty("og:image"); ok {
		snap.ImageURL = v
	}

	for _, selector := range ebayPriceSelectors {
		text, ok := page.SelectorText(selector)
		if !ok {
			continue
		}
		if amount, currency, ok := parser.ParsePrice(text); ok {
			snap.Price = amount
			snap.Currency = currency
			snap.HasPrice = true
			snap.Confidence = 1.0
			break
		}
	}

	body := page.BodyText()
	if !snap.HasPrice {
		if amount, currency, ok := parser.ParsePrice(body); ok {
			snap.Price = amount
			snap.Currency = currency
			snap.HasPrice = true
			snap.Confidence = 0.5
		}
	}

	snap.Flags = parser.ParseFlags(body)
	return snap
}
