package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finbook/internal/core"
	"finbook/internal/ledger"
	"finbook/internal/reports"
	"finbook/internal/services"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a bounded request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// statusForError maps domain errors onto HTTP status codes. Validation
// failures are the client's fault; unknown records are 404; anything
// else is treated as an internal failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidLimit),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, reports.ErrInvalidTimeframe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, services.ErrBudgetNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type transactionJSON struct {
	ID          int64      `json:"id"`
	Date        core.Date  `json:"date"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Amount      core.Money `json:"amount"`
	Type        string     `json:"type"`
	Recurring   bool       `json:"recurring"`
}

func fromTransaction(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		Date:        tx.Date,
		Description: tx.Description,
		Category:    tx.Category,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Recurring:   tx.Recurring,
	}
}

type budgetJSON struct {
	Category    string     `json:"category"`
	CategoryKey string     `json:"category_key"`
	Limit       core.Money `json:"limit"`
	Spent       core.Money `json:"spent"`
	Utilization any        `json:"utilization"`
	Alert       bool       `json:"alert"`
}

func fromBudget(b core.Budget) budgetJSON {
	var utilization any
	if u := reports.Utilization(b); reports.Unbounded(u) {
		// Infinity has no JSON encoding; a zero-limit budget with
		// spending reports the sentinel instead.
		utilization = "unbounded"
	} else {
		utilization = u
	}
	return budgetJSON{
		Category:    b.Category.Display,
		CategoryKey: b.Category.Key,
		Limit:       b.Limit,
		Spent:       b.Spent,
		Utilization: utilization,
		Alert:       reports.Alert(b),
	}
}
