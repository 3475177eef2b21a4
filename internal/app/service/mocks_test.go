package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/snapurl/snapurl/internal/app/cache"
	"github.com/snapurl/snapurl/internal/app/model"
	"github.com/snapurl/snapurl/internal/app/repository"
)

var errCacheDown = errors.New("cache down")

type mockURLRepository struct {
	findByLongURLFn func(ctx context.Context, longURL string) (*model.URLMapping, error)
	findActiveFn    func(ctx context.Context, code string) (*model.URLMapping, error)
	saveFn          func(ctx context.Context, mapping *model.URLMapping) error
	activeCodesFn   func(ctx context.Context) ([]string, error)

	findByLongURLCalls int
	findActiveCalls    int
	saveCalls          int
}

func (m *mockURLRepository) FindByLongURL(ctx context.Context, longURL string) (*model.URLMapping, error) {
	m.findByLongURLCalls++
	if m.findByLongURLFn != nil {
		return m.findByLongURLFn(ctx, longURL)
	}
	return nil, repository.ErrURLNotFound
}

func (m *mockURLRepository) FindActiveByShortCode(ctx context.Context, code string) (*model.URLMapping, error) {
	m.findActiveCalls++
	if m.findActiveFn != nil {
		return m.findActiveFn(ctx, code)
	}
	return nil, repository.ErrURLNotFound
}

func (m *mockURLRepository) Save(ctx context.Context, mapping *model.URLMapping) error {
	m.saveCalls++
	if m.saveFn != nil {
		return m.saveFn(ctx, mapping)
	}
	return nil
}

func (m *mockURLRepository) ActiveShortCodes(ctx context.Context) ([]string, error) {
	if m.activeCodesFn != nil {
		return m.activeCodesFn(ctx)
	}
	return nil, nil
}

// fakeCache is an in-memory Cache with per-operation failure injection.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration

	failGet    bool
	failSet    bool
	failIncr   bool
	failExpire bool
	failDel    bool
	failKeys   bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return "", errCacheDown
	}
	val, ok := f.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return val, nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return errCacheDown
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIncr {
		return 0, errCacheDown
	}
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failExpire {
		return errCacheDown
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel {
		return errCacheDown
	}
	delete(f.data, key)
	delete(f.ttls, key)
	return nil
}

func (f *fakeCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys {
		return nil, errCacheDown
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeCache) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.data[key]
	return val, ok
}

func (f *fakeCache) ttl(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}
