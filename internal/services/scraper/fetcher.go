package scraper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/purserdev/purser/internal/domain"
	"github.com/purserdev/purser/pkg/retrier"
)

// Fetcher owns the page-access lifecycle for a single fetch: acquire an
// isolated session, navigate, dispatch to the resolved adapter, and collapse
// any failure into a fallback snapshot. Callers always get a snapshot back,
// never an error.
type Fetcher struct {
	sessions SessionFactory
	registry *Registry
	timeout  time.Duration
	retry    *retrier.Retrier
	logger   *zap.Logger
}

func NewFetcher(sessions SessionFactory, registry *Registry, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		sessions: sessions,
		registry: registry,
		timeout:  timeout,
		retry:    retrier.New(retrier.WithMaxRetries(1), retrier.WithInitialInterval(200*time.Millisecond)),
		logger:   logger,
	}
}

// Fetch scrapes one URL, bounded by the per-fetch timeout. On timeout the
// in-flight work is abandoned; its session still closes in the worker
// goroutine, so no resource outlives the fetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) domain.ListingSnapshot {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	log := f.logger.With(
		zap.String("fetch_id", uuid.NewString()),
		zap.String("url", rawURL),
	)

	adapter := f.registry.Resolve(rawURL)

	type result struct {
		snap domain.ListingSnapshot
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: errors.Errorf("adapter panic: %v", r)}
			}
		}()

		session, err := f.sessions.NewSession()
		if err != nil {
			done <- result{err: errors.Wrap(err, "acquire session")}
			return
		}
		defer session.Close()

		page, err := retrier.DoWithData(f.retry, ctx, func(ctx context.Context) (Page, error) {
			return session.Navigate(ctx, rawURL)
		})
		if err != nil {
			done <- result{err: errors.Wrap(err, "navigate")}
			return
		}

		done <- result{snap: adapter.Scrape(page, rawURL)}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			log.Warn("fetch failed, returning fallback snapshot", zap.Error(res.err))
			return FallbackSnapshot(rawURL)
		}
		log.Debug("fetch succeeded", zap.Bool("has_price", res.snap.HasPrice))
		return res.snap
	case <-ctx.Done():
		log.Warn("fetch timed out, returning fallback snapshot", zap.Error(ctx.Err()))
		return FallbackSnapshot(rawURL)
	}
}

// FallbackSnapshot is the safe minimal snapshot returned when extraction
// fails: the URL stands in for the title and the price stays absent.
func FallbackSnapshot(rawURL string) domain.ListingSnapshot {
	return domain.ListingSnapshot{
		Title:    rawURL,
		SiteName: RegistrableDomain(rawURL),
		Currency: "USD",
		Fallback: true,
	}
}
