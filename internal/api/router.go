package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openclaip/claip/internal/api/handlers"
	mw "github.com/openclaip/claip/internal/api/middleware"
	"github.com/openclaip/claip/internal/buildconfig"
	"github.com/openclaip/claip/internal/checkpoint"
	"github.com/openclaip/claip/internal/config"
	"github.com/openclaip/claip/internal/learner"
	"go.uber.org/zap"
)

// App holds the router and process-level counters.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires the learner's HTTP surface. cm may be nil when
// checkpointing is disabled.
func NewApp(l *learner.Learner, cm *checkpoint.Manager, logger *zap.Logger) *App {
	learnerHandler := handlers.NewLearnerHandler(l, cm)

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/claims", learnerHandler.Ingest)
		r.Get("/subjects/{subject}/report", learnerHandler.SubjectReport)

		r.Route("/predictions", func(r chi.Router) {
			r.Post("/", learnerHandler.Predict)
			r.Post("/imagine", learnerHandler.Imagine)
			r.Post("/{index}/resolve", learnerHandler.Resolve)
		})

		r.Post("/reflect", learnerHandler.Reflect)

		r.Route("/checkpoints", func(r chi.Router) {
			r.Get("/", learnerHandler.ListCheckpoints)
			r.Post("/", learnerHandler.CreateCheckpoint)
			r.Post("/restore", learnerHandler.RestoreCheckpoint)
		})
	})

	return app
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": buildconfig.Version(),
			"commit":  buildconfig.Commit(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
