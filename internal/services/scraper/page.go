// Package scraper fetches listing pages and extracts structured data from
// them through site-specific adapters with a generic fallback.
package scraper

import "context"

// Page is the read-only capability an adapter uses against an already-loaded
// document. Every read may report "not found" without that being a failure
// of the overall scrape.
type Page interface {
	// MetaProperty returns the content attribute of <meta property=name>.
	MetaProperty(name string) (string, bool)
	// SelectorText returns the text of the first match for a CSS selector.
	SelectorText(selector string) (string, bool)
	// BodyText returns the rendered text of the document body.
	BodyText() string
	// Title returns the document title.
	Title() string
}

// Session is one isolated page-access session. Sessions share no state with
// each other and must be closed on every exit path.
type Session interface {
	Navigate(ctx context.Context, url string) (Page, error)
	Close() error
}

// SessionFactory acquires fresh sessions. Implementations must support many
// concurrent sessions, each isolated from the others.
type SessionFactory interface {
	NewSession() (Session, error)
}
