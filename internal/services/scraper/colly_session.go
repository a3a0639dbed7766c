package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/pkg/errors"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; purser/1.0)"

// CollyFactory creates colly-backed page sessions. Each session gets its own
// collector, so cookies and visit state never leak across concurrent fetches.
type CollyFactory struct {
	userAgent string
	timeout   time.Duration
}

// NewCollyFactory returns a session factory with the given request timeout.
func NewCollyFactory(userAgent string, timeout time.Duration) *CollyFactory {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CollyFactory{userAgent: userAgent, timeout: timeout}
}

func (f *CollyFactory) NewSession() (Session, error) {
	// AllowURLRevisit lets the fetcher retry a failed navigation on the
	// same session.
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.timeout)
	return &collySession{collector: c}, nil
}

type collySession struct {
	collector *colly.Collector
}

// Navigate fetches the URL and returns the parsed document. The request is
// bounded by the factory timeout, tightened further if ctx carries an
// earlier deadline.
func (s *collySession) Navigate(ctx context.Context, rawURL string) (Page, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			s.collector.SetRequestTimeout(remaining)
		}
	}

	var root *goquery.Selection
	s.collector.OnHTML("html", func(e *colly.HTMLElement) {
		root = e.DOM
	})

	if err := s.collector.Visit(rawURL); err != nil {
		return nil, errors.Wrapf(err, "visit %s", rawURL)
	}
	if root == nil {
		return nil, errors.Errorf("no html document at %s", rawURL)
	}
	return &collyPage{root: root}, nil
}

func (s *collySession) Close() error {
	s.collector.Wait()
	return nil
}

type collyPage struct {
	root *goquery.Selection
}

func (p *collyPage) MetaProperty(name string) (string, bool) {
	content, ok := p.root.Find(fmt.Sprintf("meta[property=%q]", name)).First().Attr("content")
	content = strings.TrimSpace(content)
	if !ok || content == "" {
		return "", false
	}
	return content, true
}

func (p *collyPage) SelectorText(selector string) (string, bool) {
	match := p.root.Find(selector).First()
	if match.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(match.Text())
	if text == "" {
		return "", false
	}
	return text, true
}

func (p *collyPage) BodyText() string {
	return p.root.Find("body").Text()
}

func (p *collyPage) Title() string {
	return strings.TrimSpace(p.root.Find("title").First().Text())
}
