package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/catalog"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/slot"
)

type SlotService interface {
	ListAvailable(ctx context.Context) ([]slot.Slot, error)
	CheckAvailability(ctx context.Context, date, timeOfDay string) (bool, error)
}

type CatalogService interface {
	List(ctx context.Context) ([]catalog.Package, error)
	Create(ctx context.Context, in catalog.CreateInput) (*catalog.Package, error)
}

type RouterConfig struct {
	Slots          SlotService
	Catalog        CatalogService
	Health         *HealthHandler
	Logger         *zap.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(RecoverMiddleware(logger))
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(PreflightMiddleware)
	r.Use(TimeoutMiddleware(cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/slots", listSlotsHandler(cfg.Slots, logger))
		r.Get("/slots/check", checkSlotHandler(cfg.Slots, logger))

		r.Get("/services", listServicesHandler(cfg.Catalog, logger))
		r.Post("/services", createServiceHandler(cfg.Catalog, logger))
		r.Put("/services", notImplementedHandler("updating"))
		r.Put("/services/{id}", notImplementedHandler("updating"))
		r.Delete("/services", notImplementedHandler("deleting"))
		r.Delete("/services/{id}", notImplementedHandler("deleting"))
	})

	return r
}
