package http

import (
	"net/http"
	"strings"

	"mpump/internal/core"
	"mpump/internal/services"
)

// listFilter narrows list responses by exact date or inclusive range. With no
// parameters everything is returned.
type listFilter struct {
	date       core.Date
	start, end core.Date
}

func parseListFilter(r *http.Request) (listFilter, error) {
	var f listFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("date")); v != "" {
		f.date = core.Date(v)
		if err := f.date.Validate(); err != nil {
			return f, err
		}
		return f, nil
	}

	if v := strings.TrimSpace(q.Get("start")); v != "" {
		f.start = core.Date(v)
		if err := f.start.Validate(); err != nil {
			return f, err
		}
	}
	if v := strings.TrimSpace(q.Get("end")); v != "" {
		f.end = core.Date(v)
		if err := f.end.Validate(); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (f listFilter) match(d core.Date) bool {
	if f.date != "" {
		return d == f.date
	}
	if f.start != "" && d < f.start {
		return false
	}
	if f.end != "" && d > f.end {
		return false
	}
	return true
}

func filterByDate[T any](items []T, date func(T) core.Date, f listFilter) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.match(date(item)) {
			out = append(out, item)
		}
	}
	return out
}

func (s *Server) handleListFuelSales(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	sales, err := s.store.ListFuelSales(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, filterByDate(sales, func(v core.FuelSale) core.Date { return v.Date }, f))
}

func (s *Server) handleCreateFuelSale(w http.ResponseWriter, r *http.Request) {
	var in services.FuelSaleInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	sale, err := s.svc.CreateFuelSale(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries(string(sale.Date))
	respondJSON(w, http.StatusCreated, sale)
}

func (s *Server) handleUpdateFuelSale(w http.ResponseWriter, r *http.Request) {
	var in services.FuelSaleInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	sale, err := s.svc.UpdateFuelSale(r.Context(), r.PathValue("id"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries("")
	respondJSON(w, http.StatusOK, sale)
}

func (s *Server) handleDeleteFuelSale(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteFuelSale(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries("")
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListCreditSales(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	credits, err := s.store.ListCreditSales(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, filterByDate(credits, func(v core.CreditSale) core.Date { return v.Date }, f))
}

func (s *Server) handleCreateCreditSale(w http.ResponseWriter, r *http.Request) {
	var c core.CreditSale
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, r, err)
		return
	}
	// The amount can be entered directly or derived from liters and rate.
	if c.Amount == 0 && c.Liters > 0 && c.Rate > 0 {
		c.Amount = c.Liters * c.Rate
	}
	saved, err := s.svc.CreateCreditSale(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries(string(saved.Date))
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateCreditSale(w http.ResponseWriter, r *http.Request) {
	var c core.CreditSale
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.svc.UpdateCreditSale(r.Context(), r.PathValue("id"), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries("")
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleSettleCreditSale(w http.ResponseWriter, r *http.Request) {
	saved, err := s.svc.SettleCreditSale(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries(string(saved.Date))
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteCreditSale(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteCreditSale(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries("")
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	entries, err := s.store.ListEntries(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	entries = filterByDate(entries, func(v core.Entry) core.Date { return v.Date }, f)
	if kind := strings.TrimSpace(r.URL.Query().Get("kind")); kind != "" {
		switch core.EntryKind(kind) {
		case core.KindIncome, core.KindExpense:
		default:
			respondError(w, r, core.ErrInvalidKind)
			return
		}
		kept := entries[:0]
		for _, e := range entries {
			if string(e.Kind) == kind {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var e core.Entry
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.svc.CreateEntry(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries(string(saved.Date))
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var e core.Entry
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.svc.UpdateEntry(r.Context(), r.PathValue("id"), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries("")
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries("")
	respondJSON(w, http.StatusNoContent, nil)
}
