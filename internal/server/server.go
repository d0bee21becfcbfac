// Package server exposes the keyword service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cognicore/hanrank/internal/service"
	"github.com/cognicore/hanrank/pkg/hanrank/internalerr"
)

const (
	maxBodyBytes     = 4 << 20
	defaultPageSize  = 20
	maxPageSize      = 200
	requestTimeout   = 5 * time.Second
	refreshTimeout   = 60 * time.Second
	maxRequestTitles = 10_000
)

// Server holds the handler dependencies.
type Server struct {
	log  *slog.Logger
	svc  *service.Service
	load service.Loader
}

// New returns a Server. load backs POST /v1/refresh and may be nil, in which
// case the route answers 501.
func New(svc *service.Service, load service.Loader, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{log: log, svc: svc, load: load}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/keywords", s.handleKeywords)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/snapshots", s.handleSnapshots)
		r.Get("/snapshots/latest", s.handleLatest)
		r.Get("/changes", s.handleChanges)
		r.Get("/articles", s.handleArticles)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type keywordsRequest struct {
	Titles []string `json:"titles"`
	service.Overrides
}

type articlesResponse struct {
	Keyword string   `json:"keyword"`
	Titles  []string `json:"titles"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	var req keywordsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if len(req.Titles) > maxRequestTitles {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "too many titles"})
		return
	}

	res, err := s.svc.Extract(req.Titles, req.Overrides)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.load == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "no title source configured"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), refreshTimeout)
	defer cancel()

	snap, err := s.svc.Refresh(ctx, s.load)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	limit := clampInt(r.URL.Query().Get("limit"), defaultPageSize, maxPageSize)
	snaps, err := s.svc.History(ctx, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap, err := s.svc.Latest(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	d, err := s.svc.Changes(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	titles, err := s.svc.Articles(ctx, keyword)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articlesResponse{Keyword: keyword, Titles: titles})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, internalerr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, internalerr.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, internalerr.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", slog.Any("err", err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
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
