package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aps-wallet/agentperf/internal/report"
)

func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/metrics", s.handleMetrics)
		r.Get("/summary", s.handleSummary)
		r.Get("/monthly", s.handleMonthly)
		r.Get("/top-agents", s.handleTopAgents)
		r.Get("/services", s.handleServices)
		r.Get("/status", s.handleStatus)
		r.Get("/network", s.handleNetwork)
		r.Get("/daily-volume", s.handleDailyVolume)
		r.Get("/runs", s.handleRuns)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// snap returns the current snapshot, or nil before the first refresh
// completes.
func (s *Server) snap(w http.ResponseWriter) *snapshot {
	snap := s.current.Load()
	if snap == nil {
		s.writeError(w, http.StatusServiceUnavailable, "metrics not yet computed")
		return nil
	}
	return snap
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := map[string]string{"status": "ok"}
	if snap := s.current.Load(); snap != nil {
		status["computed_at"] = snap.ComputedAt.Format("2006-01-02T15:04:05Z")
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	snap := s.snap(w)
	if snap == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	snap := s.snap(w)
	if snap == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, report.Summary(snap.Metrics))
}

func (s *Server) handleMonthly(w http.ResponseWriter, _ *http.Request) {
	snap := s.snap(w)
	if snap == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, report.Monthly(snap.Metrics))
}

func (s *Server) handleTopAgents(w http.ResponseWriter, r *http.Request) {
	snap := s.snap(w)
	if snap == nil {
		return
	}
	t := report.TopPerformers(snap.Metrics)
	if limit := queryInt(r, "limit", 0); limit > 0 && limit < len(t.Rows) {
		t.Rows = t.Rows[:limit]
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleServices(w http.ResponseWriter, _ *http.Request) {
	snap := s.snap(w)
	if snap == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, report.Services(snap.Metrics))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.snap(w)
	if snap == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, report.StatusBreakdown(snap.Metrics))
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	snap := s.snap(w)
	if snap == nil {
		return
	}
	hubs := snap.Hubs
	if limit := queryInt(r, "limit", 10); limit > 0 && limit < len(hubs) {
		hubs = hubs[:limit]
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"stats": snap.Network,
		"hubs":  hubs,
	})
}

func (s *Server) handleDailyVolume(w http.ResponseWriter, r *http.Request) {
	snap := s.snap(w)
	if snap == nil {
		return
	}
	days := snap.DailyVolume
	if n := queryInt(r, "days", 0); n > 0 && n < len(days) {
		days = days[len(days)-n:]
	}
	s.writeJSON(w, http.StatusOK, report.DailyVolume(days))
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		s.writeError(w, http.StatusNotFound, "run history not configured")
		return
	}
	runs, err := s.cfg.Store.ListRuns(queryInt(r, "limit", 20))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}
