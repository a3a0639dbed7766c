package scraper

import (
	"net/url"
	"strings"

	"github.com/purserdev/purser/internal/domain"
)

// Adapter is a stateless extraction strategy for a family of sites.
//
// Scrape must never fail: a selector or meta tag that is absent simply leaves
// the corresponding snapshot field empty, and a nil page yields a snapshot
// with all fields absent.
type Adapter interface {
	// Domains lists the registrable domains this adapter claims.
	Domains() []string
	Scrape(page Page, rawURL string) domain.ListingSnapshot
}

// RegistrableDomain extracts the lower-cased host of a URL with a leading
// "www." stripped. Unparseable URLs map to "unknown".
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
