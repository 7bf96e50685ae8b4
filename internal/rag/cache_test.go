package rag

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRetriever records how many upstream calls were made.
type countingRetriever struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	err   error
}

func (r *countingRetriever) Query(_ context.Context, text string) (*Answer, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return nil, r.err
	}
	return &Answer{Text: "answer for " + text}, nil
}

func (r *countingRetriever) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestCachedQuery_HitWithinTTL(t *testing.T) {
	inner := &countingRetriever{}
	cached := NewCachedRetriever(inner, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := cached.Query(ctx, "what is jollof rice")
	require.NoError(t, err)

	second, err := cached.Query(ctx, "what is jollof rice")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, inner.callCount())
}

func TestCachedQuery_KeyNormalization(t *testing.T) {
	inner := &countingRetriever{}
	cached := NewCachedRetriever(inner, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := cached.Query(ctx, "What Is Jollof Rice")
	require.NoError(t, err)
	_, err = cached.Query(ctx, "  what is jollof rice  ")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.callCount())
}

func TestCachedQuery_ExpiredEntryRefetches(t *testing.T) {
	inner := &countingRetriever{}
	cached := NewCachedRetriever(inner, 10*time.Millisecond, zerolog.Nop())
	ctx := context.Background()

	_, err := cached.Query(ctx, "menu")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = cached.Query(ctx, "menu")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.callCount())
}

func TestCachedQuery_ErrorNotCached(t *testing.T) {
	inner := &countingRetriever{err: errors.New("index down")}
	cached := NewCachedRetriever(inner, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := cached.Query(ctx, "menu")
	assert.Error(t, err)

	inner.err = nil

	answer, err := cached.Query(ctx, "menu")
	require.NoError(t, err)
	assert.Equal(t, "answer for menu", answer.Text)
	assert.Equal(t, 2, inner.callCount())
}

func TestCachedQuery_ConcurrentCallsCollapse(t *testing.T) {
	inner := &countingRetriever{delay: 30 * time.Millisecond}
	cached := NewCachedRetriever(inner, time.Minute, zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answer, err := cached.Query(ctx, "popular dishes")
			assert.NoError(t, err)
			assert.Equal(t, "answer for popular dishes", answer.Text)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inner.callCount())
}
