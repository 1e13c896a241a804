// Package generator composes the counter allocator, the encoder and the
// durable store into the short-code allocation pipeline.
package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jianyuhu/TinyLink/internal/app/encoding"
	"github.com/jianyuhu/TinyLink/internal/app/metrics"
	"github.com/jianyuhu/TinyLink/internal/app/model"
	"github.com/jianyuhu/TinyLink/internal/app/repository"
	"github.com/jianyuhu/TinyLink/internal/app/sequence"
	"github.com/jianyuhu/TinyLink/internal/app/validate"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds the collision-retry loop. Collisions are
// vanishingly rare with a monotonic counter, so exhausting the ceiling
// points at something systemic (a reset counter, a restored database) and
// is surfaced instead of looped on forever.
const DefaultMaxAttempts = 5

// ErrAllocationExhausted is returned when every attempt hit the unique
// constraint. The caller sees it only after MaxAttempts collisions.
var ErrAllocationExhausted = errors.New("generator: allocation attempts exhausted")

// Allocator is the counter side of the pipeline.
type Allocator interface {
	Next(ctx context.Context) (int64, error)
}

var _ Allocator = (*sequence.Allocator)(nil)

// Generator turns an original URL into a persisted Link with a fresh
// short code.
type Generator struct {
	allocator   Allocator
	links       repository.LinkRepository
	logger      *zap.Logger
	maxAttempts int
}

// Option tweaks generator construction.
type Option func(*Generator)

// WithMaxAttempts overrides the collision-retry ceiling.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// New returns a generator over the given allocator and repository.
func New(allocator Allocator, links repository.LinkRepository, logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		allocator:   allocator,
		links:       links,
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreateShortenedFor validates originalURL, then allocates, encodes and
// persists until the store accepts the code or the retry ceiling is hit.
//
// Validation failures never consume a counter value. A caller that gives
// up mid-retry may have burned counter values without a persisted link;
// that gap is harmless, counter values are cheap and the range is vast.
func (g *Generator) CreateShortenedFor(ctx context.Context, originalURL string) (*model.Link, error) {
	if err := validate.URL(originalURL); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		n, err := g.allocator.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("generator: allocate: %w", err)
		}

		code, err := encoding.Encode(n)
		if err != nil {
			return nil, fmt.Errorf("generator: encode %d: %w", n, err)
		}
		if len(code) > 6 {
			// The counter has outgrown the six-character range. Codes keep
			// working, but the operational assumption changed.
			g.logger.Warn("short code exceeds six characters",
				zap.Int64("counter", n),
				zap.String("code", code))
		}

		link := &model.Link{
			OriginalURL: originalURL,
			ShortCode:   code,
		}

		err = g.links.Insert(ctx, link)
		if err == nil {
			metrics.LinksCreated.Inc()
			return link, nil
		}
		if !errors.Is(err, repository.ErrShortCodeTaken) {
			return nil, fmt.Errorf("generator: insert: %w", err)
		}

		metrics.Collisions.Inc()
		g.logger.Warn("short code collision, retrying with a fresh counter value",
			zap.String("code", code),
			zap.Int64("counter", n),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.maxAttempts))
	}

	return nil, ErrAllocationExhausted
}
