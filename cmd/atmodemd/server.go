package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/collab-project/atcmd/modem"
	"github.com/collab-project/atcmd/registers"
)

// Server exposes the admin API: health, unsolicited line injection and
// read access to the stored profile.
type Server struct {
	Logger *zap.Logger
	Modem  *modem.Modem
	Store  *registers.Store
}

// Router builds the chi router for the admin API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/notify", s.handleNotify)
	r.Get("/registers/{index}", s.handleRegister)

	return r
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleNotify injects an unsolicited result code into the host channel.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	type NotifyRequest struct {
		Line string `json:"line"`
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Line == "" {
		s.sendError(w, "'line' field is required", http.StatusBadRequest)
		return
	}

	if err := s.Modem.Notify(req.Line); err != nil {
		s.Logger.Error("failed to emit unsolicited line", zap.Error(err), zap.String("line", req.Line))
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Logger.Info("unsolicited line emitted", zap.String("line", req.Line))
	w.WriteHeader(http.StatusOK)
}

// handleRegister reports one S-register value from the stored profile.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.sendError(w, "index must be an integer", http.StatusBadRequest)
		return
	}

	value, err := s.Store.Get(index)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	type RegisterResponse struct {
		Index int `json:"index"`
		Value int `json:"value"`
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RegisterResponse{Index: index, Value: value})
}
