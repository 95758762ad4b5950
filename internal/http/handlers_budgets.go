package http

import (
	"log/slog"
	"net/http"

	"finbook/internal/core"
)

type createBudgetRequest struct {
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	limit, err := core.ParseAmount(req.Limit)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "limit must be a positive decimal")
		return
	}

	budget, err := s.accountant.CreateBudget(r.Context(), req.Category, limit)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "budget create failed", "error", err, "category", req.Category)
			writeError(w, status, "could not create budget")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, fromBudget(budget))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.store.ListBudgets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "budget list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list budgets")
		return
	}

	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, fromBudget(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": out})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	if err := s.accountant.DeleteBudget(r.Context(), category); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "budget delete failed", "error", err, "category", category)
			writeError(w, status, "could not delete budget")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReconcileBudget(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	budget, err := s.accountant.Reconcile(r.Context(), category)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "budget reconcile failed", "error", err, "category", category)
			writeError(w, status, "could not reconcile budget")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, fromBudget(budget))
}
