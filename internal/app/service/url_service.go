package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/snapurl/snapurl/internal/app/cache"
	"github.com/snapurl/snapurl/internal/app/model"
	"github.com/snapurl/snapurl/internal/app/repository"
	infraprom "github.com/snapurl/snapurl/internal/infra/prometheus"
	"github.com/snapurl/snapurl/pkg/base62"
	"go.uber.org/zap"
)

// ErrBlankURL signals a shorten request without a usable long URL.
var ErrBlankURL = errors.New("long url cannot be blank")

const defaultCacheTTL = 24 * time.Hour

// URLService defines behaviour-level operations on short URLs.
type URLService interface {
	CreateShortURL(ctx context.Context, longURL string, expiryAt *time.Time) (string, error)
	ResolveLongURL(ctx context.Context, shortCode string) (string, error)
}

// URLServiceDeps groups collaborators of the shortening service. Filter
// and Publisher are optional; a nil Logger falls back to a no-op logger.
type URLServiceDeps struct {
	Logger          *zap.Logger
	Repo            repository.URLRepository
	Cache           cache.Cache
	Filter          *CodeFilter
	Publisher       *URLEventPublisher
	DefaultCacheTTL time.Duration
}

type urlService struct {
	logger     *zap.Logger
	repo       repository.URLRepository
	cache      cache.Cache
	filter     *CodeFilter
	publisher  *URLEventPublisher
	defaultTTL time.Duration
	now        func() time.Time
}

// NewURLService returns a service implementation backed by the given
// store and cache.
func NewURLService(deps URLServiceDeps) URLService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.DefaultCacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &urlService{
		logger:     logger,
		repo:       deps.Repo,
		cache:      deps.Cache,
		filter:     deps.Filter,
		publisher:  deps.Publisher,
		defaultTTL: ttl,
		now:        time.Now,
	}
}

// CreateShortURL persists a mapping for longURL and returns its short
// code. Repeated requests for the same URL return the existing code and
// may extend, but never shorten, the stored expiry. Creation is
// two-phase: the first persist obtains the store-assigned id the code is
// derived from, the second attaches the code.
func (s *urlService) CreateShortURL(ctx context.Context, longURL string, expiryAt *time.Time) (string, error) {
	if strings.TrimSpace(longURL) == "" {
		return "", ErrBlankURL
	}

	mapping, err := s.repo.FindByLongURL(ctx, longURL)
	if err != nil && !errors.Is(err, repository.ErrURLNotFound) {
		return "", fmt.Errorf("lookup by long url: %w", err)
	}

	if mapping != nil {
		if expiryAt != nil && (mapping.ExpiryAt == nil || mapping.ExpiryAt.Before(*expiryAt)) {
			mapping.ExpiryAt = expiryAt
			if err := s.repo.Save(ctx, mapping); err != nil {
				return "", fmt.Errorf("extend expiry: %w", err)
			}
		}
		if mapping.ShortCode != nil {
			return *mapping.ShortCode, nil
		}
		// A crash between the two persistence phases leaves a record
		// without a code; finish the second phase below.
	} else {
		mapping = &model.URLMapping{
			LongURL:  longURL,
			ExpiryAt: expiryAt,
			Active:   true,
		}
		if err := s.repo.Save(ctx, mapping); err != nil {
			return "", fmt.Errorf("persist url mapping: %w", err)
		}
	}

	code, err := base62.Encode(mapping.ID)
	if err != nil {
		return "", fmt.Errorf("encode id %d: %w", mapping.ID, err)
	}
	mapping.ShortCode = &code
	if err := s.repo.Save(ctx, mapping); err != nil {
		return "", fmt.Errorf("attach short code: %w", err)
	}

	if s.filter != nil {
		s.filter.Add(code)
	}
	s.cacheMapping(ctx, code, mapping)
	s.publishCreated(mapping)
	infraprom.URLsCreated.Inc()

	return code, nil
}

// ResolveLongURL returns the long URL behind a short code. The cache is
// consulted first; on a miss or a cache fault the durable store is the
// fallback of record, and a successful store lookup repopulates the
// cache. Expired records resolve like absent ones.
func (s *urlService) ResolveLongURL(ctx context.Context, shortCode string) (string, error) {
	if s.filter != nil && !s.filter.MightContain(shortCode) {
		return "", repository.ErrURLNotFound
	}

	cached, err := s.cache.Get(ctx, cache.ShortPrefix+shortCode)
	if err == nil {
		infraprom.CacheHits.Inc()
		s.countClick(ctx, shortCode)
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("cache unavailable, falling back to store",
			zap.String("code", shortCode), zap.Error(err))
	}
	infraprom.CacheMisses.Inc()

	mapping, err := s.repo.FindActiveByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			return "", repository.ErrURLNotFound
		}
		return "", fmt.Errorf("lookup by short code: %w", err)
	}
	if mapping.Expired(s.now()) {
		// The record stays put; it is merely hidden from reads.
		return "", repository.ErrURLNotFound
	}

	s.cacheMapping(ctx, shortCode, mapping)
	s.countClick(ctx, shortCode)

	return mapping.LongURL, nil
}

// cacheMapping populates short:<code> best-effort. The TTL is bounded by
// the record's remaining validity; entries that would already be expired
// are not written.
func (s *urlService) cacheMapping(ctx context.Context, code string, mapping *model.URLMapping) {
	ttl := s.defaultTTL
	if mapping.ExpiryAt != nil {
		ttl = mapping.ExpiryAt.Sub(s.now())
	}
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, cache.ShortPrefix+code, mapping.LongURL, ttl); err != nil {
		s.logger.Warn("failed to cache short url", zap.String("code", code), zap.Error(err))
	}
}

// countClick bumps the write-absorbing click counter best-effort; the
// aggregator folds it into the durable record later.
func (s *urlService) countClick(ctx context.Context, code string) {
	if _, err := s.cache.Incr(ctx, cache.ClickPrefix+code); err != nil {
		s.logger.Debug("failed to count click", zap.String("code", code), zap.Error(err))
	}
}

func (s *urlService) publishCreated(mapping *model.URLMapping) {
	if s.publisher == nil || mapping.ShortCode == nil {
		return
	}
	event := model.URLCreatedEvent{
		ID:        mapping.ID,
		ShortCode: *mapping.ShortCode,
		CreatedAt: mapping.CreatedAt,
	}
	if err := s.publisher.Publish(event); err != nil {
		s.logger.Warn("failed to publish url created event",
			zap.String("code", event.ShortCode), zap.Error(err))
	}
}
