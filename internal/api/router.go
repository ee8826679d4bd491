package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/marcusvale/bidforge/internal/api/handlers"
	"github.com/marcusvale/bidforge/internal/api/middleware"
	"github.com/marcusvale/bidforge/internal/auth"
	"github.com/marcusvale/bidforge/internal/config"
	"github.com/marcusvale/bidforge/internal/llm"
	"github.com/marcusvale/bidforge/internal/prompt"
	"github.com/marcusvale/bidforge/internal/queue"
	"github.com/marcusvale/bidforge/internal/tenant"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	ts    *tenant.Service
	jwt   *auth.JWTMiddleware
	rl    *middleware.RateLimiter
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	ts := tenant.NewService(db)
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		ts:    ts,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret, ts),
		rl:    middleware.NewRateLimiter(100, 200),
	}
}

// Close stops the router's background work.
func (rt *Router) Close() {
	rt.rl.Close()
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	r.Use(rt.rl.Limit)

	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	store := prompt.NewPGStore(rt.db)
	mgr := prompt.NewManager(store, rt.redis)
	queueClient := queue.NewClient(rt.cfg.Redis)

	var completer llm.Completer
	if c, err := llm.New(rt.cfg.LLM); err != nil {
		slog.Warn("llm provider unavailable, preview disabled", "error", err)
	} else {
		completer = c
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		promptH := handlers.NewPromptHandler(mgr, completer)
		r.Route("/prompts", func(r chi.Router) {
			r.Post("/", promptH.Save)
			r.Get("/", promptH.List)
			r.Get("/{name}", promptH.Get)
			r.Get("/{name}/versions", promptH.Versions)
			r.Post("/{name}/rollback", promptH.Rollback)
			r.Post("/{name}/render", promptH.Render)
			r.Post("/{name}/preview", promptH.Preview)
			r.Delete("/{name}", promptH.Delete)
		})

		adminH := handlers.NewAdminHandler(queueClient)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/tenants/bootstrap", adminH.Bootstrap)
		})
	})

	return r
}
