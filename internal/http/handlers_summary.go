package http

import (
	"log/slog"
	"net/http"
	"strings"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		respondError(w, r, err)
		return
	}

	key := string(date)
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "date", key)
		respondJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.svc.Summary(r.Context(), date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.summaryCache.Set(key, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRangeSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	summary, err := s.svc.RangeSummary(r.Context(), start, end)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleNozzles(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		respondError(w, r, err)
		return
	}
	fuelType := strings.TrimSpace(r.URL.Query().Get("fuel_type"))

	nozzles, err := s.svc.Nozzles(r.Context(), fuelType, date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nozzles)
}
