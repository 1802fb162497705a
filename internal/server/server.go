// Package server exposes the middleware over HTTP: /process, /feedback
// and /history, mirroring the boundary operations one to one.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebreed/promptmill/internal/enhancer"
	"github.com/calebreed/promptmill/internal/provider"
	"github.com/calebreed/promptmill/internal/service"
)

// Server handles HTTP requests against an engine registry.
type Server struct {
	engines *service.Engines
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates a Server with all routes registered.
func New(engines *service.Engines, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engines: engines,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /process", s.handleProcess)
	s.mux.HandleFunc("POST /feedback", s.handleFeedback)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return withCORS(withRequestLog(s.logger, s.mux))
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req service.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.Provider == "" {
		req.Provider = "openai"
	}

	resp, err := s.engines.Process(r.Context(), req)
	if err != nil {
		s.writeProcessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeProcessError maps the provider error taxonomy onto HTTP statuses:
// caller mistakes are 400s, upstream failures are 502s.
func (s *Server) writeProcessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, provider.ErrUnknownProvider):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, provider.ErrMissingAPIKey):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		var pe *provider.Error
		if errors.As(err, &pe) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type feedbackRequest struct {
	EngineKey        string `json:"engine_id"`
	EnhancementIndex int    `json:"enhancement_index"`
	Rating           int    `json:"rating"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.EngineKey == "" {
		writeError(w, http.StatusBadRequest, "engine_id is required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	err := s.engines.Feedback(r.Context(), req.EngineKey, req.EnhancementIndex, req.Rating)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	case errors.Is(err, service.ErrEngineNotFound), errors.Is(err, enhancer.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if key := r.URL.Query().Get("engine_id"); key != "" {
		records, err := s.engines.History(key)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": records})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"engines": s.engines.Histories()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
