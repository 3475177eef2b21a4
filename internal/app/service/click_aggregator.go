package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/snapurl/snapurl/internal/app/cache"
	"github.com/snapurl/snapurl/internal/app/repository"
	infraprom "github.com/snapurl/snapurl/internal/infra/prometheus"
	"go.uber.org/zap"
)

const defaultFlushInterval = 60 * time.Second

// ClickAggregator periodically drains per-code click counters out of the
// cache and folds them into the durable records.
//
// The drain is at-least-once: a counter is deleted only after its persist
// succeeds, so a failed persist is retried on the next period, and a
// failed delete after a successful persist can double-count. There is no
// transactional link between the two stores.
type ClickAggregator struct {
	logger   *zap.Logger
	repo     repository.URLRepository
	cache    cache.Cache
	interval time.Duration
	stopChan chan struct{}
}

// NewClickAggregator creates an aggregator flushing on the given
// interval (default 60s when non-positive).
func NewClickAggregator(logger *zap.Logger, repo repository.URLRepository, c cache.Cache, interval time.Duration) *ClickAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	return &ClickAggregator{
		logger:   logger,
		repo:     repo,
		cache:    c,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic flushing.
func (a *ClickAggregator) Start() {
	go a.run()
}

// Stop stops the periodic flushing.
func (a *ClickAggregator) Stop() {
	close(a.stopChan)
}

func (a *ClickAggregator) run() {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Flush(context.Background())
		case <-a.stopChan:
			a.logger.Info("click aggregator stopped")
			return
		}
	}
}

// Flush drains every click counter once. A failure on one counter never
// blocks the rest of the run.
func (a *ClickAggregator) Flush(ctx context.Context) {
	keys, err := a.cache.Keys(ctx, cache.ClickPrefix+"*")
	if err != nil {
		a.logger.Warn("failed to enumerate click counters", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}

	for _, key := range keys {
		a.flushCounter(ctx, key)
	}
}

func (a *ClickAggregator) flushCounter(ctx context.Context, key string) {
	code := strings.TrimPrefix(key, cache.ClickPrefix)

	value, err := a.cache.Get(ctx, key)
	if err != nil {
		a.logger.Warn("failed to read click counter", zap.String("key", key), zap.Error(err))
		return
	}

	// Unparseable counters read as zero; zero counters are neither
	// flushed nor deleted, to avoid racing a concurrent increment into
	// the gap between read and delete.
	count, _ := strconv.ParseInt(value, 10, 64)
	if count <= 0 {
		return
	}

	mapping, err := a.repo.FindActiveByShortCode(ctx, code)
	if err != nil {
		// The counter is kept: deleting it would silently drop clicks
		// for a record committed after this enumeration.
		a.logger.Debug("no active record for click counter, skipping",
			zap.String("code", code), zap.Error(err))
		return
	}

	mapping.ClickCount += count
	if err := a.repo.Save(ctx, mapping); err != nil {
		// Persist failed: keep the counter so the delta is retried.
		a.logger.Error("failed to persist click count",
			zap.String("code", code), zap.Int64("count", count), zap.Error(err))
		return
	}

	infraprom.ClicksFlushed.Add(float64(count))

	if err := a.cache.Del(ctx, key); err != nil {
		a.logger.Warn("failed to delete flushed click counter, next run may double-count",
			zap.String("key", key), zap.Error(err))
	}
}
