package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finbook/internal/core"
	"finbook/internal/ledger"
)

type recordTransactionRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Recurring   bool   `json:"recurring"`
}

type recordTransactionResponse struct {
	Transaction  transactionJSON `json:"transaction"`
	BudgetStatus string          `json:"budget_status"`
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "amount must be a positive decimal")
		return
	}

	in := core.TransactionInput{
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Amount:      amount,
		Type:        core.TransactionType(req.Type),
		Recurring:   req.Recurring,
	}

	result, err := s.accountant.RecordTransaction(r.Context(), in)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "transaction record failed", "error", err)
			writeError(w, status, "could not record transaction")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, recordTransactionResponse{
		Transaction:  fromTransaction(result.Transaction),
		BudgetStatus: string(result.Status),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "transaction list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}

	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, fromTransaction(tx))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "transaction id must be an integer")
		return
	}

	tx, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "transaction read failed", "error", err, "transaction_id", id)
			writeError(w, status, "could not read transaction")
			return
		}
		writeError(w, status, "transaction not found")
		return
	}

	writeJSON(w, http.StatusOK, fromTransaction(tx))
}

// filterFromQuery builds the ledger filter from from/to/category query
// parameters. Dates are inclusive bounds in YYYY-MM-DD form.
func filterFromQuery(r *http.Request) (ledger.Filter, error) {
	var f ledger.Filter

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return ledger.Filter{}, err
		}
		f.From = d
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return ledger.Filter{}, err
		}
		f.To = d
	}
	if v := r.URL.Query().Get("category"); strings.TrimSpace(v) != "" {
		cat, err := core.NormalizeCategory(v)
		if err != nil {
			return ledger.Filter{}, err
		}
		f.CategoryKey = cat.Key
	}

	return f, nil
}
