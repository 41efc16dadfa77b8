package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"repolens/internal/gateway"
	"repolens/internal/history"
	"repolens/internal/tool"
)

const maxQueryBytes = 64 << 10

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is returned by POST /api/v1/ask.
type AskResponse struct {
	ID       string           `json:"id"`
	Answer   string           `json:"answer"`
	Strategy string           `json:"strategy"`
	Degraded bool             `json:"degraded"`
	Results  []gateway.Result `json:"results"`
}

// writeJSON serialises data as JSON and writes it to the response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// writeError writes a JSON error envelope to the response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "gateway": "ok"}
	if err := s.service.Health(r.Context()); err != nil {
		resp["gateway"] = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	rec, err := s.service.Ask(r.Context(), req.Query)
	if err != nil {
		// The answer exists even when it could not be stored.
		s.logger.Warn("history save failed", zap.Error(err))
	}
	if rec == nil {
		s.writeError(w, http.StatusInternalServerError, "no answer produced")
		return
	}

	results := rec.Results
	if results == nil {
		results = []gateway.Result{}
	}
	s.writeJSON(w, http.StatusOK, AskResponse{
		ID:       rec.ID,
		Answer:   rec.Answer,
		Strategy: rec.Strategy,
		Degraded: rec.Degraded,
		Results:  results,
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	specs := s.service.Tools()
	if specs == nil {
		specs = []tool.Spec{}
	}
	s.writeJSON(w, http.StatusOK, specs)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.service.Lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "history record not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
