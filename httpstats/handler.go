// Package httpstats exposes a priority queue's live state over HTTP:
// aggregate stats, worker and DLQ listings, and a health probe. This is
// purely a read-only operational surface — it never pushes or acks jobs.
package httpstats

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/nats-taskqueue/natsqueue/natsqueue"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler wires a *natsqueue.Storage[T] into a small read-only API.
type Handler[T any] struct {
	storage *natsqueue.Storage[T]
}

// NewHandler builds a Handler for the given storage.
func NewHandler[T any](storage *natsqueue.Storage[T]) *Handler[T] {
	return &Handler[T]{storage: storage}
}

// RegisterRoutes mounts /stats, /workers and /dlq under /api/v1/queue on
// router, each instrumented with an otelhttp span so the operational
// surface shows up in the same traces as the jobs it reports on, plus an
// uninstrumented /healthz at the router root.
func (h *Handler[T]) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1/queue").Subrouter()
	api.Handle("/stats", otelhttp.NewHandler(http.HandlerFunc(h.handleStats), "queue.stats")).Methods("GET")
	api.Handle("/workers", otelhttp.NewHandler(http.HandlerFunc(h.handleWorkers), "queue.workers")).Methods("GET")
	api.Handle("/dlq", otelhttp.NewHandler(http.HandlerFunc(h.handleDLQPeek), "queue.dlq")).Methods("GET")
	router.HandleFunc("/healthz", h.handleHealthz).Methods("GET")
}

// NewCORSHandler wraps router with the same permissive localhost CORS
// policy the teacher's admin API server uses for its dashboard origins.
func NewCORSHandler(router http.Handler, allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

func (h *Handler[T]) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.storage.Stats(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler[T]) handleWorkers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	workers, err := h.storage.ListWorkers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, workers)
}

func (h *Handler[T]) handleDLQPeek(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.storage.DLQPeek(ctx, limit)
	if err != nil {
		if natsqueue.IsNotSupported(err) {
			writeJSON(w, http.StatusOK, []natsqueue.DLQEnvelope{})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler[T]) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.storage.Stats(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
