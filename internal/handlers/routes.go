package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/evaluaciones/internal/app"
	"github.com/shrimpsizemoose/evaluaciones/internal/render"
)

// NewRouter registers every route on a fresh mux. Teacher routes are
// gated before the handler runs.
func NewRouter(service *app.Service) (http.Handler, error) {
	pages, err := render.New()
	if err != nil {
		return nil, fmt.Errorf("failed to init renderer: %w", err)
	}

	h := NewHandler(service, pages)
	teacher := func(f http.HandlerFunc) http.Handler {
		return service.Sessions.RequireTeacher(f)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /ver", h.Lookup)

	mux.Handle("GET /admin", teacher(h.Admin))
	mux.Handle("GET /admin/export.csv", teacher(h.ExportCSV))
	mux.Handle("GET /evaluations/new", teacher(h.NewEvaluation))
	mux.Handle("POST /evaluations", teacher(h.CreateEvaluation))
	mux.Handle("GET /evaluations/{id}", teacher(h.Detail))
	mux.Handle("POST /evaluations/{id}/delete", teacher(h.Delete))

	mux.HandleFunc("GET /healthz", h.Health)
	if service.Config.Server.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	mux.HandleFunc("/", h.NotFound)

	return withRequestMetrics(mux), nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.service.Store.Ping(ctx); err != nil {
		logger.Error.Printf("Health check failed: %v", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
