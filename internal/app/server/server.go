package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jianyuhu/TinyLink/internal/app/service"
	inthttp "github.com/jianyuhu/TinyLink/internal/http/handler"
	"github.com/jianyuhu/TinyLink/internal/http/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles everything the HTTP server needs.
type Dependencies struct {
	Logger      *zap.Logger
	Redis       *redis.Client
	LinkService service.LinkService
	BaseURL     string
	RateLimit   middleware.RateLimitConfig
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with routes and middleware wired.
func New(deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, s.deps.RateLimit, s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:      s.deps.Logger,
		LinkService: s.deps.LinkService,
		BaseURL:     s.deps.BaseURL,
	})
	apiHandler.Register(s.app)

	// Registered last: GET /:code must not shadow /api or /health.
	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:      s.deps.Logger,
		LinkService: s.deps.LinkService,
	})
	redirectHandler.Register(s.app)
}
