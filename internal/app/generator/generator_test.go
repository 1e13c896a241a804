package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/jianyuhu/TinyLink/internal/app/encoding"
	"github.com/jianyuhu/TinyLink/internal/app/kv"
	"github.com/jianyuhu/TinyLink/internal/app/model"
	"github.com/jianyuhu/TinyLink/internal/app/repository"
	"github.com/jianyuhu/TinyLink/internal/app/sequence"
	"github.com/jianyuhu/TinyLink/internal/app/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAllocator struct {
	inner *sequence.Allocator
	calls int
}

func (c *countingAllocator) Next(ctx context.Context) (int64, error) {
	c.calls++
	return c.inner.Next(ctx)
}

type mockLinkRepository struct {
	insertFn func(ctx context.Context, link *model.Link) error
	getFn    func(ctx context.Context, code string) (*model.Link, error)
}

func (m *mockLinkRepository) Insert(ctx context.Context, link *model.Link) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, link)
	}
	return nil
}

func (m *mockLinkRepository) GetByShortCode(ctx context.Context, code string) (*model.Link, error) {
	if m.getFn != nil {
		return m.getFn(ctx, code)
	}
	return nil, repository.ErrLinkNotFound
}

func newTestAllocator(t *testing.T) *countingAllocator {
	t.Helper()
	a := sequence.NewAllocator(kv.NewMemory())
	require.NoError(t, a.Initialize(context.Background()))
	return &countingAllocator{inner: a}
}

func TestGenerator_CreateProducesSixCharCode(t *testing.T) {
	var inserted *model.Link
	repo := &mockLinkRepository{
		insertFn: func(ctx context.Context, link *model.Link) error {
			link.ID = 1
			inserted = link
			return nil
		},
	}

	g := New(newTestAllocator(t), repo, nil)
	link, err := g.CreateShortenedFor(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Len(t, link.ShortCode, 6)
	assert.True(t, encoding.IsValid(link.ShortCode))
	assert.Equal(t, "https://example.com", link.OriginalURL)
	assert.Same(t, inserted, link)
}

func TestGenerator_SameURLGetsDistinctCodes(t *testing.T) {
	repo := &mockLinkRepository{}
	g := New(newTestAllocator(t), repo, nil)
	ctx := context.Background()

	first, err := g.CreateShortenedFor(ctx, "https://example.com")
	require.NoError(t, err)
	second, err := g.CreateShortenedFor(ctx, "https://example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.ShortCode, second.ShortCode,
		"codes derive from the counter, not from content")
}

func TestGenerator_CollisionRetriesWithFreshCounterValue(t *testing.T) {
	alloc := newTestAllocator(t)

	var codes []string
	repo := &mockLinkRepository{
		insertFn: func(ctx context.Context, link *model.Link) error {
			codes = append(codes, link.ShortCode)
			if len(codes) == 1 {
				return repository.ErrShortCodeTaken
			}
			return nil
		},
	}

	g := New(alloc, repo, nil)
	link, err := g.CreateShortenedFor(context.Background(), "https://example.com")
	require.NoError(t, err)

	require.Len(t, codes, 2, "exactly one retry")
	assert.NotEqual(t, codes[0], codes[1])
	assert.Equal(t, codes[1], link.ShortCode)
	assert.Equal(t, 2, alloc.calls)
}

func TestGenerator_ExhaustedRetriesIsFatal(t *testing.T) {
	repo := &mockLinkRepository{
		insertFn: func(ctx context.Context, link *model.Link) error {
			return repository.ErrShortCodeTaken
		},
	}

	alloc := newTestAllocator(t)
	g := New(alloc, repo, nil, WithMaxAttempts(3))

	_, err := g.CreateShortenedFor(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrAllocationExhausted)
	assert.Equal(t, 3, alloc.calls)
}

func TestGenerator_InvalidURLNeverReachesAllocator(t *testing.T) {
	alloc := newTestAllocator(t)
	g := New(alloc, &mockLinkRepository{}, nil)
	ctx := context.Background()

	for _, raw := range []string{"", "   ", "javascript:alert(1)", "ftp://example.com", "not a url"} {
		_, err := g.CreateShortenedFor(ctx, raw)
		assert.Error(t, err, raw)
		assert.True(t,
			errors.Is(err, validate.ErrEmptyURL) || errors.Is(err, validate.ErrMalformedURL),
			"expected a validation error for %q, got %v", raw, err)
	}

	assert.Zero(t, alloc.calls, "no counter value may be consumed for invalid input")
}

func TestGenerator_StoreFailureIsNotRetried(t *testing.T) {
	storeDown := errors.New("connection refused")
	repo := &mockLinkRepository{
		insertFn: func(ctx context.Context, link *model.Link) error {
			return storeDown
		},
	}

	alloc := newTestAllocator(t)
	g := New(alloc, repo, nil)

	_, err := g.CreateShortenedFor(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, storeDown, "dependency errors propagate, they are not collisions")
	assert.Equal(t, 1, alloc.calls)
}
