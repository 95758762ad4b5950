package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finbook/internal/core"
	"finbook/internal/reports"
)

type timeBucketJSON struct {
	Period   string     `json:"period"`
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
}

type categoryShareJSON struct {
	Category string     `json:"category"`
	Key      string     `json:"key"`
	Value    core.Money `json:"value"`
}

type totalsJSON struct {
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Net      core.Money `json:"net"`
}

// snapshot loads the filtered transaction set a report runs over.
func (s *Server) snapshot(r *http.Request) ([]core.Transaction, error) {
	filter, err := filterFromQuery(r)
	if err != nil {
		return nil, err
	}
	return s.store.ListTransactions(r.Context(), filter)
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	tfParam := r.URL.Query().Get("timeframe")
	if strings.TrimSpace(tfParam) == "" {
		tfParam = string(reports.Monthly)
	}
	tf, err := reports.ParseTimeframe(tfParam)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	txs, err := s.snapshot(r)
	if err != nil {
		s.reportError(w, r, err, "time series")
		return
	}

	series := reports.BuildTimeSeries(txs, tf)
	out := make([]timeBucketJSON, 0, len(series))
	for _, b := range series {
		out = append(out, timeBucketJSON{Period: b.Period, Income: b.Income, Expenses: b.Expenses})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"timeframe": string(tf),
		"series":    out,
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	txs, err := s.snapshot(r)
	if err != nil {
		s.reportError(w, r, err, "breakdown")
		return
	}

	breakdown := reports.BuildCategoryBreakdown(txs)
	if limit > 0 {
		breakdown = reports.TopCategories(breakdown, limit)
	}

	out := make([]categoryShareJSON, 0, len(breakdown))
	for _, share := range breakdown {
		out = append(out, categoryShareJSON{Category: share.Category, Key: share.Key, Value: share.Value})
	}
	writeJSON(w, http.StatusOK, map[string]any{"breakdown": out})
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	txs, err := s.snapshot(r)
	if err != nil {
		s.reportError(w, r, err, "totals")
		return
	}

	totals := reports.BuildTotals(txs)
	writeJSON(w, http.StatusOK, totalsJSON{
		Income:   totals.Income,
		Expenses: totals.Expenses,
		Net:      totals.Net,
	})
}

func (s *Server) reportError(w http.ResponseWriter, r *http.Request, err error, report string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "report query failed", "error", err, "report", report)
		writeError(w, status, "could not build report")
		return
	}
	writeError(w, status, err.Error())
}
