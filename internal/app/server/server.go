package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/snapurl/snapurl/internal/app/cache"
	"github.com/snapurl/snapurl/internal/app/service"
	inthttp "github.com/snapurl/snapurl/internal/http/handler"
	"github.com/snapurl/snapurl/internal/http/middleware"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure dependencies required by the HTTP server.
type Dependencies struct {
	Logger    *zap.Logger
	Postgres  *pgxpool.Pool
	Redis     *redis.Client
	Cache     cache.Cache
	NATS      *nats.Conn
	JetStream nats.JetStreamContext
	Service   service.URLService
	BaseURL   string
	RateLimit middleware.RateLimitConfig
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

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

func (s *Server) registerRoutes() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.CORS())

	healthHandler := inthttp.NewHealthHandler(inthttp.HealthDeps{
		Postgres: s.deps.Postgres,
		Redis:    s.deps.Redis,
	})
	healthHandler.Register(s.app)

	urlHandler := inthttp.NewURLHandler(inthttp.URLDeps{
		Logger:  s.deps.Logger,
		Service: s.deps.Service,
		BaseURL: s.deps.BaseURL,
	})
	// The throttle guards only the two hot URL endpoints.
	urlHandler.Register(s.app, middleware.RateLimit(s.deps.Cache, s.deps.RateLimit, s.deps.Logger))
}
