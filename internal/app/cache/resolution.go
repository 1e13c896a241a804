// Package cache implements the cache-aside read path for short-code
// resolution: the shared cache tier first, then a bloom guard in front of
// the durable store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/jianyuhu/TinyLink/internal/app/kv"
	"github.com/jianyuhu/TinyLink/internal/app/metrics"
	"github.com/jianyuhu/TinyLink/internal/app/model"
	"github.com/jianyuhu/TinyLink/internal/app/repository"
	"go.uber.org/zap"
)

const (
	// DefaultTTL bounds how long a populated entry serves reads. Expiry is
	// lazy: the cache tier evicts on its own, nothing sweeps proactively.
	DefaultTTL = 12 * time.Hour

	keyPrefix = "link:"
)

// Resolver serves short-code lookups cache-aside.
//
// The cache tier is shared by every instance; the bloom filter is
// per-process and may lag a sibling's create until its event arrives, so
// it is only consulted after the shared cache missed, as a guard in front
// of the durable store. There is no negative caching: a store miss is
// never written to the cache tier, so repeated lookups of a dead code
// always reach the store unless the filter rejects them first.
type Resolver struct {
	store  kv.Store
	links  repository.LinkRepository
	logger *zap.Logger
	ttl    time.Duration

	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// Option tweaks resolver construction.
type Option func(*Resolver)

// WithTTL overrides the cache entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithBloom enables the negative-lookup guard, sized for n expected codes
// at false-positive rate fp. The guard is only sound when it is seeded
// from the store at startup and fed every created code afterwards.
func WithBloom(n uint, fp float64) Option {
	return func(r *Resolver) {
		r.filter = bloom.NewWithEstimates(n, fp)
	}
}

// NewResolver builds a resolver over the cache tier and the durable store.
func NewResolver(store kv.Store, links repository.LinkRepository, logger *zap.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		store:  store,
		links:  links,
		logger: logger,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Seed feeds existing short codes into the bloom filter. No-op when the
// guard is disabled.
func (r *Resolver) Seed(codes []string) {
	if r.filter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range codes {
		r.filter.AddString(code)
	}
}

// Observe records a freshly created short code so the guard never rejects
// it. Called on the creating instance directly and on siblings via the
// link-created event stream.
func (r *Resolver) Observe(code string) {
	if r.filter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter.AddString(code)
}

func (r *Resolver) mightExist(code string) bool {
	if r.filter == nil {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter.TestString(code)
}

// Resolve returns the link for code, consulting the shared cache tier
// before the durable store and populating the cache on a store hit. The
// bloom guard gates the store lookup only, never the cache read: a sibling
// instance may have created and cached the code before this instance's
// guard learned about it.
func (r *Resolver) Resolve(ctx context.Context, code string) (*model.Link, error) {
	key := keyPrefix + code

	cachedKey := false
	raw, err := r.store.Read(ctx, key)
	switch {
	case err == nil:
		var link model.Link
		if jsonErr := json.Unmarshal([]byte(raw), &link); jsonErr == nil {
			metrics.CacheHits.Inc()
			// A cache hit proves the code exists; let the guard catch up.
			r.Observe(code)
			return &link, nil
		}
		// A corrupt entry falls through to the store and gets rewritten.
		// Its presence still proves the code exists, so the guard must not
		// veto the store lookup below.
		cachedKey = true
		r.logger.Warn("dropping corrupt cache entry", zap.String("key", key))
	case errors.Is(err, kv.ErrKeyMissing):
		// fall through
	default:
		// A cache-tier outage must surface as a dependency failure, not
		// masquerade as a missing link.
		return nil, fmt.Errorf("cache: read %q: %w", key, err)
	}

	if !cachedKey && !r.mightExist(code) {
		metrics.BloomRejections.Inc()
		return nil, repository.ErrLinkNotFound
	}

	metrics.CacheMisses.Inc()

	link, err := r.links.GetByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, repository.ErrLinkNotFound
		}
		return nil, fmt.Errorf("cache: load %q: %w", code, err)
	}

	r.Observe(code)
	r.Populate(ctx, link)
	return link, nil
}

// Populate writes link into the cache tier under its TTL. Failures are
// logged, not returned: the caller already holds the link.
func (r *Resolver) Populate(ctx context.Context, link *model.Link) {
	data, err := json.Marshal(link)
	if err != nil {
		r.logger.Error("failed to encode link for cache", zap.Error(err), zap.String("code", link.ShortCode))
		return
	}
	if err := r.store.Write(ctx, keyPrefix+link.ShortCode, string(data), r.ttl); err != nil {
		r.logger.Warn("failed to populate resolution cache",
			zap.Error(err), zap.String("code", link.ShortCode))
	}
}
