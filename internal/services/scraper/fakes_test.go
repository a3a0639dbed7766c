package scraper

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// fakePage serves canned values for adapter tests.
type fakePage struct {
	meta      map[string]string
	selectors map[string]string
	body      string
	title     string
}

func (p *fakePage) MetaProperty(name string) (string, bool) {
	v, ok := p.meta[name]
	return v, ok && v != ""
}

func (p *fakePage) SelectorText(selector string) (string, bool) {
	v, ok := p.selectors[selector]
	return v, ok && v != ""
}

func (p *fakePage) BodyText() string { return p.body }
func (p *fakePage) Title() string    { return p.title }

// fakeFactory hands out scripted sessions and counts lifecycle events.
type fakeFactory struct {
	page        Page
	factoryErr  error
	navigateErr error
	delay       time.Duration

	sessionsOpened atomic.Int32
	sessionsClosed atomic.Int32
}

func (f *fakeFactory) NewSession() (Session, error) {
	if f.factoryErr != nil {
		return nil, f.factoryErr
	}
	f.sessionsOpened.Add(1)
	return &fakeSession{factory: f}, nil
}

type fakeSession struct {
	factory *fakeFactory
}

func (s *fakeSession) Navigate(ctx context.Context, rawURL string) (Page, error) {
	if s.factory.delay > 0 {
		select {
		case <-time.After(s.factory.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.factory.navigateErr != nil {
		return nil, s.factory.navigateErr
	}
	if s.factory.page == nil {
		return nil, errors.New("no page scripted")
	}
	return s.factory.page, nil
}

func (s *fakeSession) Close() error {
	s.factory.sessionsClosed.Add(1)
	return nil
}
