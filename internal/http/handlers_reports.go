package http

import (
	"fmt"
	"net/http"

	"mpump/internal/core"
	"mpump/internal/report"
)

func setAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (s *Server) handleSalesCSV(w http.ResponseWriter, r *http.Request) {
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
	sales = filterByDate(sales, func(v core.FuelSale) core.Date { return v.Date }, f)

	setAttachment(w, "text/csv; charset=utf-8", "fuel-sales.csv")
	if err := report.WriteSalesCSV(w, sales); err != nil {
		respondError(w, r, err)
	}
}

func (s *Server) handleCreditCSV(w http.ResponseWriter, r *http.Request) {
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
	credits = filterByDate(credits, func(v core.CreditSale) core.Date { return v.Date }, f)

	setAttachment(w, "text/csv; charset=utf-8", "credit-sales.csv")
	if err := report.WriteCreditCSV(w, credits); err != nil {
		respondError(w, r, err)
	}
}

func (s *Server) handleEntriesCSV(w http.ResponseWriter, r *http.Request) {
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

	setAttachment(w, "text/csv; charset=utf-8", "entries.csv")
	if err := report.WriteEntriesCSV(w, entries); err != nil {
		respondError(w, r, err)
	}
}

func (s *Server) handleSummaryCSV(w http.ResponseWriter, r *http.Request) {
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

	setAttachment(w, "text/csv; charset=utf-8", "summary.csv")
	if err := report.WriteRangeSummaryCSV(w, summary); err != nil {
		respondError(w, r, err)
	}
}

func (s *Server) handleDailyText(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		respondError(w, r, err)
		return
	}
	summary, err := s.svc.Summary(r.Context(), date)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := report.WriteDailyText(w, summary); err != nil {
		respondError(w, r, err)
	}
}

func (s *Server) handleDailyPDF(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		respondError(w, r, err)
		return
	}
	summary, err := s.svc.Summary(r.Context(), date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	doc, err := report.DailyPDF(summary)
	if err != nil {
		respondError(w, r, err)
		return
	}

	setAttachment(w, "application/pdf", fmt.Sprintf("daily-report-%s.pdf", date))
	_, _ = w.Write(doc)
}

func (s *Server) handleRangePDF(w http.ResponseWriter, r *http.Request) {
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
	doc, err := report.RangePDF(summary)
	if err != nil {
		respondError(w, r, err)
		return
	}

	setAttachment(w, "application/pdf", fmt.Sprintf("report-%s-%s.pdf", start, end))
	_, _ = w.Write(doc)
}

// handleBackup downloads the full store as a snapshot file, the same format
// the backup worker writes to disk.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	setAttachment(w, "application/json; charset=utf-8", fmt.Sprintf("mpump-backup-%s.json", core.Today()))
	respondRawJSON(w, snap)
}

// handleRestore replaces the store contents with an uploaded snapshot.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.store.Restore(r.Context(), snap); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries("")
	respondJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}
