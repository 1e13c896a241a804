package service

import (
	"context"

	"github.com/jianyuhu/TinyLink/internal/app/cache"
	"github.com/jianyuhu/TinyLink/internal/app/generator"
	"github.com/jianyuhu/TinyLink/internal/app/model"
	"github.com/jianyuhu/TinyLink/internal/app/validate"
	"go.uber.org/zap"
)

// LinkService is the surface the transport layer talks to: create a short
// link, resolve a short code. Nothing else is exposed.
type LinkService interface {
	CreateShortenedFor(ctx context.Context, originalURL string) (*model.Link, error)
	Resolve(ctx context.Context, code string) (*model.Link, error)
}

type linkService struct {
	generator *generator.Generator
	resolver  *cache.Resolver
	events    *LinkPublisher
	logger    *zap.Logger
}

// NewLinkService composes the generator and the resolver. events may be
// nil when no JetStream connection is available (development mode).
func NewLinkService(gen *generator.Generator, resolver *cache.Resolver, events *LinkPublisher, logger *zap.Logger) LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{
		generator: gen,
		resolver:  resolver,
		events:    events,
		logger:    logger,
	}
}

func (s *linkService) CreateShortenedFor(ctx context.Context, originalURL string) (*model.Link, error) {
	link, err := s.generator.CreateShortenedFor(ctx, originalURL)
	if err != nil {
		return nil, err
	}

	// The local bloom guard must admit the code immediately, and the
	// shared cache entry makes the code resolvable on sibling instances
	// before their warmers have consumed the event.
	s.resolver.Observe(link.ShortCode)
	s.resolver.Populate(ctx, link)

	if s.events != nil {
		if err := s.events.Publish(link); err != nil {
			// Event loss only delays sibling cache warming; the link is
			// already durable.
			s.logger.Warn("failed to publish link-created event",
				zap.Error(err), zap.String("code", link.ShortCode))
		}
	}

	return link, nil
}

func (s *linkService) Resolve(ctx context.Context, code string) (*model.Link, error) {
	if err := validate.ShortCode(code); err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, code)
}
