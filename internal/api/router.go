package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/doorro/gatekeeper/internal/api/handlers"
	"github.com/doorro/gatekeeper/internal/api/middleware"
	"github.com/doorro/gatekeeper/internal/auth"
	"github.com/doorro/gatekeeper/internal/config"
	"github.com/doorro/gatekeeper/internal/store"
)

type Router struct {
	mux      *chi.Mux
	db       *pgxpool.Pool
	redis    *redis.Client
	cfg      *config.Config
	store    *store.Store
	resolver handlers.DoorCacheInvalidator
	jwt      *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, st *store.Store, resolver handlers.DoorCacheInvalidator) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		db:       db,
		redis:    rdb,
		cfg:      cfg,
		store:    st,
		resolver: resolver,
		jwt:      auth.NewJWTMiddleware(cfg.Admin.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Admin.Origins))

	rl := middleware.NewRateLimiter(50, 100)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	userH := handlers.NewUserHandler(rt.store)
	doorH := handlers.NewDoorHandler(rt.store, rt.resolver)
	eventH := handlers.NewEventHandler(rt.store)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userH.List)
			r.Post("/", userH.Create)
			r.Patch("/{id}", userH.Update)
			r.Delete("/{id}", userH.Delete)
		})

		r.Route("/doors", func(r chi.Router) {
			r.Get("/", doorH.List)
			r.Post("/", doorH.Create)
			r.Patch("/{id}", doorH.Update)
			r.Delete("/{id}", doorH.Delete)
		})

		r.Get("/events", eventH.List)
	})

	return r
}
