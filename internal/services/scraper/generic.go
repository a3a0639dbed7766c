package scraper

import "github.com/purserdev/purser/internal/domain"

// MatchAny is the wildcard domain claimed by the fallback adapter.
const MatchAny = "*"

// GenericAdapter handles any site via OpenGraph metadata. It never attempts
// price extraction: no selector list exists for an arbitrary site, so price
// discovery for unknown sites is a known limitation.
type GenericAdapter struct{}

func (a *GenericAdapter) Domains() []string {
	return []string{MatchAny}
}

func (a *GenericAdapter) Scrape(page Page, rawURL string) domain.ListingSnapshot {
	snap := domain.ListingSnapshot{Currency: "USD"}

	if page != nil {
		if v, ok := page.MetaProperty("og:title"); ok {
			snap.Title = v
		} else if title := page.Title(); title != "" {
			snap.Title = title
		}
		if v, ok := page.MetaProperty("og:image"); ok {
			snap.ImageURL = v
		}
		if v, ok := page.MetaProperty("og:site_name"); ok {
			snap.SiteName = v
		}
	}

	if snap.SiteName == "" {
		snap.SiteName = RegistrableDomain(rawURL)
	}
	return snap
}
