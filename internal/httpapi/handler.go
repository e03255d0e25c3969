// Package httpapi exposes the forecast cache over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unkn0wn-root/asidecache"
	"github.com/unkn0wn-root/asidecache/internal/forecast"
)

// KeyPrefix groups every forecast entry so it can be expired as a family.
const KeyPrefix = "forecasts:"

type Handler struct {
	Cache   asidecache.Cache[forecast.Result]
	Origin  *forecast.Service
	Health  func(context.Context) error
	Metrics http.Handler
	Logger  *slog.Logger
}

// Routes builds the router:
//
//	GET  /forecasts/{location}         cached forecast (?nocache=1, ?stale=1)
//	POST /forecasts/{location}/expire  expire one location
//	POST /forecasts/expire             expire every location
//	GET  /healthz
//	GET  /metrics
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/forecasts", func(r chi.Router) {
		r.Post("/expire", h.expireAll)
		r.Get("/{location}", h.get)
		r.Post("/{location}/expire", h.expire)
	})
	r.Get("/healthz", h.healthz)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}
	return r
}

func (h *Handler) log() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	location := chi.URLParam(r, "location")
	q := r.URL.Query()
	opts := &asidecache.GetOptions[forecast.Result]{
		DisableCache:      q.Get("nocache") == "1",
		UseStaleOnInvalid: q.Get("stale") == "1",
	}

	res, err := h.Cache.GetOrSet(r.Context(), KeyPrefix+location, func(ctx context.Context) (forecast.Result, error) {
		return h.Origin.Get(ctx, location)
	}, opts)
	switch {
	case errors.Is(err, forecast.ErrUnknownLocation):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	case err != nil:
		h.log().ErrorContext(r.Context(), "forecast load failed", slog.String("location", location), slog.Any("error", err))
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "forecast origin unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) expire(w http.ResponseWriter, r *http.Request) {
	if err := h.Cache.Expire(r.Context(), KeyPrefix+chi.URLParam(r, "location")); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) expireAll(w http.ResponseWriter, r *http.Request) {
	err := h.Cache.ExpireByPrefix(r.Context(), KeyPrefix)
	var perr *asidecache.PartialBatchError
	switch {
	case errors.As(err, &perr):
		h.log().WarnContext(r.Context(), "partial prefix expiration",
			slog.Int("failed", len(perr.Failed)), slog.Int("total", perr.Total))
		writeJSON(w, http.StatusMultiStatus, partialBody{
			Error:  perr.Error(),
			Failed: len(perr.Failed),
			Total:  perr.Total,
		})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health(r.Context()); err != nil {
			// the cache degrades to the origin, so the service stays up
			writeJSON(w, http.StatusOK, healthBody{Status: "degraded", Store: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Store: "ok"})
}

type errorBody struct {
	Error string `json:"error"`
}

type partialBody struct {
	Error  string `json:"error"`
	Failed int    `json:"failed"`
	Total  int    `json:"total"`
}

type healthBody struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
