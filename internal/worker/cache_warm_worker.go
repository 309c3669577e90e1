package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheRefresher reloads the cached product list.
type CacheRefresher interface {
	RefreshCache(ctx context.Context) (int, error)
}

// CacheWarmWorker periodically repopulates the product list cache so reads
// after a write or TTL expiry rarely fall through to the database.
type CacheWarmWorker struct {
	refresher CacheRefresher
	interval  time.Duration
}

// NewCacheWarmWorker constructs a CacheWarmWorker.
func NewCacheWarmWorker(refresher CacheRefresher, interval time.Duration) *CacheWarmWorker {
	return &CacheWarmWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
func (w *CacheWarmWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting cache warm worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Cache warm worker stopped")
			return
		}
	}
}

func (w *CacheWarmWorker) run(ctx context.Context) {
	start := time.Now()
	n, err := w.refresher.RefreshCache(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to refresh product cache")
		}
		return
	}

	log.Debug().Int("products", n).Dur("duration", time.Since(start)).Msg("Product cache refreshed")
}
