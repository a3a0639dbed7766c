// Package scheduler drives the periodic batch check and the daily digest.
// Cadence is configuration; the jobs themselves live elsewhere.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Config holds the two cadences the scheduler knows about.
type Config struct {
	// CheckInterval is the gap between batch checks.
	CheckInterval time.Duration
	// DigestTime is a wall-clock "HH:MM" at which the digest goes out.
	DigestTime string
}

// Run wires the jobs into cron, fires one batch check immediately, and
// blocks until ctx is cancelled.
func Run(ctx context.Context, logger *zap.Logger, cfg Config, check func(context.Context) error, digest func(context.Context)) error {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Hour
	}

	c := cron.New()

	_, err := c.AddFunc("@every "+cfg.CheckInterval.String(), func() {
		if err := check(ctx); err != nil {
			logger.Error("scheduled batch check failed", zap.Error(err))
		}
	})
	if err != nil {
		return errors.Wrap(err, "schedule batch check")
	}

	if cfg.DigestTime != "" {
		spec, err := digestCronSpec(cfg.DigestTime)
		if err != nil {
			return errors.Wrap(err, "schedule digest")
		}
		if _, err := c.AddFunc(spec, func() { digest(ctx) }); err != nil {
			return errors.Wrap(err, "schedule digest")
		}
	}

	c.Start()
	logger.Info("scheduler started",
		zap.Duration("check_interval", cfg.CheckInterval),
		zap.String("digest_time", cfg.DigestTime),
	)

	// One pass right away so a fresh deployment has data before the first tick.
	if err := check(ctx); err != nil {
		logger.Error("initial batch check failed", zap.Error(err))
	}

	<-ctx.Done()
	stop := c.Stop()
	<-stop.Done()
	logger.Info("scheduler stopped")
	return nil
}

// digestCronSpec converts "HH:MM" into a daily cron spec.
func digestCronSpec(digestTime string) (string, error) {
	parts := strings.SplitN(digestTime, ":", 2)
	if len(parts) != 2 {
		return "", errors.Errorf("invalid digest time %q, want HH:MM", digestTime)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", errors.Errorf("invalid digest hour in %q", digestTime)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", errors.Errorf("invalid digest minute in %q", digestTime)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
