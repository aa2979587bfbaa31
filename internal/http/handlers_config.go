package http

import (
	"net/http"

	"mpump/internal/core"
)

func (s *Server) handleGetFuelConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.GetFuelConfig(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutFuelType(w http.ResponseWriter, r *http.Request) {
	var cfg core.FuelTypeConfig
	if err := decodeJSON(r, &cfg); err != nil {
		respondError(w, r, err)
		return
	}
	if err := cfg.Validate(); err != nil {
		respondError(w, r, err)
		return
	}
	fuelType := r.PathValue("type")
	if err := s.svc.PutFuelType(r.Context(), fuelType, cfg); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries("")
	respondJSON(w, http.StatusOK, map[string]core.FuelTypeConfig{fuelType: cfg})
}

func (s *Server) handleDeleteFuelType(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteFuelType(r.Context(), r.PathValue("type")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries("")
	respondJSON(w, http.StatusNoContent, nil)
}
