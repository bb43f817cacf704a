package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/gift-radar/internal/config"
	"github.com/DeafMist/gift-radar/internal/elasticsearch"
	"github.com/DeafMist/gift-radar/internal/metrics"
	"github.com/DeafMist/gift-radar/internal/models"
	"github.com/DeafMist/gift-radar/internal/recommend"
)

const (
	sessionHeader = "X-Session-ID"
	maxBodyBytes  = 64 << 10
)

type giftProducer interface {
	Produce(ctx context.Context, req recommend.Request) ([]models.SearchResult, error)
}

type historyStore interface {
	SearchResults(ctx context.Context, params elasticsearch.HistoryParams) (*elasticsearch.HistoryResult, error)
	Health(ctx context.Context) error
}

type server struct {
	log     *slog.Logger
	cfg     *config.API
	gifts   giftProducer
	history historyStore
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Post("/generate_gift_idea", s.handleGenerate)
	r.Post("/api/gifts", s.handleGenerate)
	r.Get("/history", s.handleHistory)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.ArchiveResults {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.history.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var criteria models.Criteria
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&criteria); err != nil {
		metrics.RecordRequest(recommend.StatusInvalid)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	requestID := middleware.GetReqID(r.Context())
	results, err := s.gifts.Produce(ctx, recommend.Request{
		ID:       requestID,
		Scope:    strings.TrimSpace(r.Header.Get(sessionHeader)),
		Criteria: criteria,
	})
	if err != nil {
		if recommend.IsClientError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.log.Error("generate gift ideas", slog.String("request_id", requestID), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Error generating gift ideas: " + err.Error()})
		return
	}

	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.ArchiveResults {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history is disabled: set API_ARCHIVE_RESULTS=true"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	params := elasticsearch.HistoryParams{
		Query:     strings.TrimSpace(q.Get("q")),
		Scope:     strings.TrimSpace(q.Get("scope")),
		RequestID: strings.TrimSpace(q.Get("request_id")),
		From:      clampInt(q.Get("from"), 0, 10_000),
		Size:      clampInt(q.Get("size"), s.cfg.HistorySize, s.cfg.MaxHistorySize),
	}

	result, err := s.history.SearchResults(ctx, params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
