package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// handleHealth reports process liveness and whether the scheduler loop runs.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":            "ok",
		"scheduler_running": s.scheduler.Status().Running,
	})
}

// handleCurrent takes a live snapshot without persisting it.
func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	rec, err := s.collector.Collect(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, rec)
}

// handleLatest returns the most recently stored record.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Latest(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if rec == nil {
		s.writeError(w, "no metrics recorded yet", http.StatusNotFound)
		return
	}
	s.writeJSON(w, rec)
}

// handleHistory returns records from the trailing N hours, default 24.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, fmt.Sprintf("hours must be a positive integer, got %q", raw), http.StatusBadRequest)
			return
		}
		hours = n
	}

	records, err := s.store.Recent(r.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"hours":   hours,
		"count":   len(records),
		"records": records,
	})
}

// handleHistoryRange returns records between two explicit instants.
func (s *Server) handleHistoryRange(w http.ResponseWriter, r *http.Request) {
	start, ok := s.parseTimeParam(w, r, "start")
	if !ok {
		return
	}
	end, ok := s.parseTimeParam(w, r, "end")
	if !ok {
		return
	}

	records, err := s.store.Range(r.Context(), start, end)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"start":   start.UTC(),
		"end":     end.UTC(),
		"count":   len(records),
		"records": records,
	})
}

// handleStats aggregates over an explicit window, default the trailing 24h.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)

	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		var ok bool
		if start, ok = s.parseTimeParam(w, r, "start"); !ok {
			return
		}
		if end, ok = s.parseTimeParam(w, r, "end"); !ok {
			return
		}
	}

	summary, err := s.store.Stats(r.Context(), start, end)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, summary)
}

// handleCollect runs one collection cycle immediately and returns the record.
func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	rec, err := s.scheduler.RunOnce(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, rec)
}

// handleCleanup deletes records older than N days, default the configured
// retention window.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	days := s.retentionDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, fmt.Sprintf("days must be a positive integer, got %q", raw), http.StatusBadRequest)
			return
		}
		days = n
	}

	deleted, err := s.store.Prune(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"deleted_records": deleted,
		"days_kept":       days,
	})
}

func (s *Server) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.scheduler.Status())
}

func (s *Server) handleSchedulerStart(w http.ResponseWriter, r *http.Request) {
	started := s.scheduler.Start()
	s.writeJSON(w, map[string]interface{}{
		"started": started,
		"status":  s.scheduler.Status(),
	})
}

func (s *Server) handleSchedulerStop(w http.ResponseWriter, r *http.Request) {
	stopped := s.scheduler.Stop()
	s.writeJSON(w, map[string]interface{}{
		"stopped": stopped,
		"status":  s.scheduler.Status(),
	})
}

// handleSchedulerConfigure changes the collection interval. The new value
// takes effect when the next cycle is armed.
func (s *Server) handleSchedulerConfigure(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IntervalSeconds int `json:"interval_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.scheduler.Configure(time.Duration(req.IntervalSeconds) * time.Second); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, s.scheduler.Status())
}

// parseTimeParam reads a required RFC3339 query parameter. On failure it
// writes a 400 and returns ok=false.
func (s *Server) parseTimeParam(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		s.writeError(w, fmt.Sprintf("missing required parameter %q", key), http.StatusBadRequest)
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		s.writeError(w, fmt.Sprintf("%s must be an RFC3339 timestamp, got %q", key, raw), http.StatusBadRequest)
		return time.Time{}, false
	}
	return t, true
}
