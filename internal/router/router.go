package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/manwah-pos/api/internal/catalog"
	"github.com/manwah-pos/api/internal/config"
	"github.com/manwah-pos/api/internal/handler"
	mw "github.com/manwah-pos/api/internal/middleware"
	"github.com/manwah-pos/api/internal/service"
	"github.com/manwah-pos/api/internal/store"
	"github.com/manwah-pos/api/internal/ws"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the long-lived components the routes serve from.
type Deps struct {
	Catalog *catalog.Catalog
	Store   *store.Store
	Hub     *ws.Hub
	Logger  *slog.Logger
}

// New creates a Chi router with all application routes wired up.
// Sessions are read when present; no route requires one.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(deps.Logger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.Metrics)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		last := deps.Store.LastUpdate()
		if last.IsZero() {
			w.Write([]byte(`{"status":"ok"}`))
			return
		}
		w.Write([]byte(`{"status":"ok","last_update":"` + last.UTC().Format(time.RFC3339) + `"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// WebSocket route (reads the session from the token query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, cfg.SessionSecret, w, r)
	})

	orderService := service.NewOrderService(deps.Catalog, deps.Store)

	r.Group(func(r chi.Router) {
		r.Use(mw.Session(cfg.SessionSecret))

		handler.NewSessionHandler(cfg.SessionSecret).RegisterRoutes(r)
		handler.NewMenuHandler(deps.Catalog, orderService).RegisterRoutes(r)

		orderHandler := handler.NewOrderHandler(orderService, deps.Store)
		r.Route("/orders", orderHandler.RegisterRoutes)

		viewHandler := handler.NewViewHandler(deps.Store, nil)
		r.Route("/views", viewHandler.RegisterRoutes)
	})

	return r
}
