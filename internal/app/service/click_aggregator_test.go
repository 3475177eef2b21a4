package service

import (
	"context"
	"testing"

	"github.com/snapurl/snapurl/internal/app/cache"
	"github.com/snapurl/snapurl/internal/app/model"
	"github.com/snapurl/snapurl/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlush_DrainsCountersIntoStore(t *testing.T) {
	// code "b" has 5 pending clicks, "c" has a zero counter, "d" has
	// clicks but no active record.
	fc := newFakeCache()
	fc.data[cache.ClickPrefix+"b"] = "5"
	fc.data[cache.ClickPrefix+"c"] = "0"
	fc.data[cache.ClickPrefix+"d"] = "7"

	var saved *model.URLMapping
	repo := &mockURLRepository{
		findActiveFn: func(ctx context.Context, code string) (*model.URLMapping, error) {
			switch code {
			case "b":
				return &model.URLMapping{ID: 1, ShortCode: strPtr("b"), LongURL: "https://a.example", ClickCount: 10, Active: true}, nil
			case "c":
				t.Fatal("zero counters must not trigger a store lookup")
				return nil, nil
			default:
				return nil, repository.ErrURLNotFound
			}
		},
		saveFn: func(ctx context.Context, m *model.URLMapping) error {
			saved = m
			return nil
		},
	}

	agg := NewClickAggregator(nil, repo, fc, 0)
	agg.Flush(context.Background())

	require.NotNil(t, saved)
	assert.Equal(t, int64(15), saved.ClickCount, "5 cached clicks folded into the stored 10")

	_, ok := fc.value(cache.ClickPrefix + "b")
	assert.False(t, ok, "flushed counter must be deleted")
	val, ok := fc.value(cache.ClickPrefix + "c")
	require.True(t, ok, "zero counter must be left in place")
	assert.Equal(t, "0", val)
	_, ok = fc.value(cache.ClickPrefix + "d")
	assert.True(t, ok, "counter without a record must not be deleted")
}

func TestFlush_EmptyEnumerationIsNoOp(t *testing.T) {
	repo := &mockURLRepository{}
	agg := NewClickAggregator(nil, repo, newFakeCache(), 0)

	agg.Flush(context.Background())

	assert.Equal(t, 0, repo.findActiveCalls)
	assert.Equal(t, 0, repo.saveCalls)
}

func TestFlush_EnumerationFailureEndsRun(t *testing.T) {
	fc := newFakeCache()
	fc.data[cache.ClickPrefix+"b"] = "5"
	fc.failKeys = true
	repo := &mockURLRepository{}

	agg := NewClickAggregator(nil, repo, fc, 0)
	agg.Flush(context.Background())

	assert.Equal(t, 0, repo.findActiveCalls)
}

func TestFlush_UnparseableCounterSkipped(t *testing.T) {
	fc := newFakeCache()
	fc.data[cache.ClickPrefix+"b"] = "not-a-number"
	repo := &mockURLRepository{}

	agg := NewClickAggregator(nil, repo, fc, 0)
	agg.Flush(context.Background())

	assert.Equal(t, 0, repo.findActiveCalls)
	_, ok := fc.value(cache.ClickPrefix + "b")
	assert.True(t, ok, "unparseable counter is left alone")
}

func TestFlush_FailedPersistKeepsCounter(t *testing.T) {
	fc := newFakeCache()
	fc.data[cache.ClickPrefix+"b"] = "3"

	repo := &mockURLRepository{
		findActiveFn: func(ctx context.Context, code string) (*model.URLMapping, error) {
			return &model.URLMapping{ID: 1, ShortCode: strPtr("b"), LongURL: "https://a.example", ClickCount: 1, Active: true}, nil
		},
		saveFn: func(ctx context.Context, m *model.URLMapping) error {
			return assert.AnError
		},
	}

	agg := NewClickAggregator(nil, repo, fc, 0)
	agg.Flush(context.Background())

	val, ok := fc.value(cache.ClickPrefix + "b")
	require.True(t, ok, "the delta must be retried on the next period")
	assert.Equal(t, "3", val)
}

func TestFlush_OneBadCounterDoesNotBlockTheRest(t *testing.T) {
	fc := newFakeCache()
	fc.data[cache.ClickPrefix+"b"] = "2"
	fc.data[cache.ClickPrefix+"c"] = "4"

	flushed := make(map[string]int64)
	repo := &mockURLRepository{
		findActiveFn: func(ctx context.Context, code string) (*model.URLMapping, error) {
			return &model.URLMapping{ID: 1, ShortCode: strPtr(code), LongURL: "https://a.example", Active: true}, nil
		},
		saveFn: func(ctx context.Context, m *model.URLMapping) error {
			if *m.ShortCode == "b" {
				return assert.AnError
			}
			flushed[*m.ShortCode] = m.ClickCount
			return nil
		},
	}

	agg := NewClickAggregator(nil, repo, fc, 0)
	agg.Flush(context.Background())

	assert.Equal(t, int64(4), flushed["c"], "failure on one key must not stop the run")
	_, ok := fc.value(cache.ClickPrefix + "b")
	assert.True(t, ok)
	_, ok = fc.value(cache.ClickPrefix + "c")
	assert.False(t, ok)
}

func TestAggregator_StartStop(t *testing.T) {
	agg := NewClickAggregator(nil, &mockURLRepository{}, newFakeCache(), defaultFlushInterval)
	agg.Start()
	agg.Stop()
}
