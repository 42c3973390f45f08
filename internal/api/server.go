package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"veredito/internal/processor"
	"veredito/internal/store"
)

// VerdictReader is the store surface the read endpoints need. Satisfied
// by *store.Store; nil disables those endpoints.
type VerdictReader interface {
	ListVerdicts(ctx context.Context, limit int, onlyActionRequired bool) ([]store.Record, error)
	CountByFailureType(ctx context.Context) (map[string]int, error)
}

type Server struct {
	router        *chi.Mux
	port          int
	engines       map[string]processor.Classifier
	defaultEngine string
	store         VerdictReader
}

func NewServer(port int, engines map[string]processor.Classifier, defaultEngine string, st VerdictReader) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:        router,
		port:          port,
		engines:       engines,
		defaultEngine: defaultEngine,
		store:         st,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/veredito/status", s.status)
	router.Post("/api/v1/analyze", s.analyze)
	router.Get("/api/v1/verdicts", s.verdicts)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	engines := make([]string, 0, len(s.engines))
	for name := range s.engines {
		engines = append(engines, name)
	}

	body := map[string]any{
		"agent":          "veredito",
		"status":         "ok",
		"default_engine": s.defaultEngine,
		"engines":        engines,
	}

	if s.store != nil {
		counts, err := s.store.CountByFailureType(r.Context())
		if err != nil {
			slog.Error("failed to count verdicts", "error", err)
		} else {
			body["verdicts_by_failure_type"] = counts
		}
	}

	writeJSON(w, http.StatusOK, body)
}

type analyzeRequest struct {
	Conversa string `json:"conversa"`
	Engine   string `json:"engine,omitempty"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if strings.TrimSpace(req.Conversa) == "" {
		writeError(w, http.StatusBadRequest, "conversa is required")
		return
	}

	engine := req.Engine
	if engine == "" {
		engine = s.defaultEngine
	}
	classify, ok := s.engines[engine]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown engine %q", engine))
		return
	}

	v := classify(r.Context(), req.Conversa).Normalize()
	writeJSON(w, http.StatusOK, map[string]any{
		"engine":  engine,
		"verdict": v,
	})
}

func (s *Server) verdicts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "verdict store not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	onlyAction := r.URL.Query().Get("acao") == "true"

	recs, err := s.store.ListVerdicts(r.Context(), limit, onlyAction)
	if err != nil {
		slog.Error("failed to list verdicts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list verdicts")
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"verdicts": recs,
		"count":    len(recs),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
