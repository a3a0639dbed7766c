package scraper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(factory SessionFactory, timeout time.Duration) *Fetcher {
	return NewFetcher(factory, newTestRegistry(), timeout, zap.NewNop())
}

func TestFetcherSuccess(t *testing.T) {
	factory := &fakeFactory{
		page: &fakePage{
			meta:      map[string]string{"og:title": "Camera"},
			selectors: map[string]string{"#prcIsum": "$99.95"},
		},
	}
	f := newTestFetcher(factory, time.Second)

	snap := f.Fetch(context.Background(), "https://www.ebay.com/itm/1")

	require.Equal(t, "Camera", snap.Title)
	require.True(t, snap.Price.Equal(decimal.RequireFromString("99.95")))
	require.False(t, snap.Fallback)
	require.Equal(t, int32(1), factory.sessionsClosed.Load(), "session must be released")
}

func TestFetcherSessionAcquisitionFailure(t *testing.T) {
	factory := &fakeFactory{factoryErr: errors.New("browser pool exhausted")}
	f := newTestFetcher(factory, time.Second)

	url := "https://www.ebay.com/itm/2"
	snap := f.Fetch(context.Background(), url)

	require.Equal(t, url, snap.Title, "fallback uses the URL as title")
	require.Equal(t, "ebay.com", snap.SiteName)
	require.Equal(t, "USD", snap.Currency)
	require.False(t, snap.HasPrice)
	require.True(t, snap.Fallback, "consumers must be able to tell placeholders from extracted data")
}

func TestFetcherNavigationFailure(t *testing.T) {
	factory := &fakeFactory{navigateErr: errors.New("connection refused")}
	f := newTestFetcher(factory, time.Second)

	url := "https://shop.example.org/p/3"
	snap := f.Fetch(context.Background(), url)

	require.Equal(t, url, snap.Title)
	require.Equal(t, "shop.example.org", snap.SiteName)
	require.False(t, snap.HasPrice)
	require.True(t, snap.Fallback)
	require.Equal(t, int32(1), factory.sessionsClosed.Load(), "session released on failure path")
}

func TestFetcherTimeout(t *testing.T) {
	factory := &fakeFactory{delay: 500 * time.Millisecond, page: &fakePage{}}
	f := newTestFetcher(factory, 50*time.Millisecond)

	url := "https://slow.example.com/p/4"
	start := time.Now()
	snap := f.Fetch(context.Background(), url)

	require.Less(t, time.Since(start), 400*time.Millisecond, "fetch must not hang past its timeout")
	require.Equal(t, url, snap.Title)
	require.False(t, snap.HasPrice)

	// The abandoned worker still closes its session.
	require.Eventually(t, func() bool {
		return factory.sessionsClosed.Load() == factory.sessionsOpened.Load()
	}, time.Second, 10*time.Millisecond)
}

func TestFetcherConcurrentTimeoutsAreIsolated(t *testing.T) {
	factory := &fakeFactory{delay: 300 * time.Millisecond, navigateErr: errors.New("unreachable")}
	f := newTestFetcher(factory, 50*time.Millisecond)

	url := "https://unreachable.example.com/p/5"

	var wg sync.WaitGroup
	snaps := make([]struct {
		title    string
		hasPrice bool
	}, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap := f.Fetch(context.Background(), url)
			snaps[i].title = snap.Title
			snaps[i].hasPrice = snap.HasPrice
		}(i)
	}
	wg.Wait()

	for _, s := range snaps {
		require.Equal(t, url, s.title, "each fetch independently falls back")
		require.False(t, s.hasPrice)
	}

	require.Eventually(t, func() bool {
		return factory.sessionsClosed.Load() == factory.sessionsOpened.Load()
	}, time.Second, 10*time.Millisecond, "no session may leak")
}
