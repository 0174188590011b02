// Package ledger exposes expenses, logged time and statement import.
package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/solo/internal/expense"
	"github.com/duartefn/solo/internal/importer"
	"github.com/duartefn/solo/internal/timelog"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Handler struct {
	expenses *expense.Service
	timelogs *timelog.Service
	imports  *importer.Service
}

func NewHandler(expenses *expense.Service, timelogs *timelog.Service, imports *importer.Service) *Handler {
	return &Handler{
		expenses: expenses,
		timelogs: timelogs,
		imports:  imports,
	}
}

func (h *Handler) ExpenseRoutes(r chi.Router) {
	r.Post("/", h.createExpense)
	r.Get("/", h.listExpenses)
	r.Get("/{id}", h.getExpense)
	r.Delete("/{id}", h.deleteExpense)
}

func (h *Handler) TimeRoutes(r chi.Router) {
	r.Post("/", h.createEntry)
	r.Get("/", h.listEntries)
	r.Get("/{id}", h.getEntry)
}

func (h *Handler) ImportRoutes(r chi.Router) {
	r.Post("/", h.importStatement)
}

type createExpenseRequest struct {
	ProjectID   *uuid.UUID      `json:"project_id,omitempty"`
	Description string          `json:"description" validate:"required"`
	AmountCents int64           `json:"amount_cents" validate:"required,gt=0"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	Date        time.Time       `json:"date" validate:"required"`
	Category    string          `json:"category"`
}

type expenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   *uuid.UUID      `json:"project_id,omitempty"`
	Description string          `json:"description"`
	AmountCents int64           `json:"amount_cents"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category,omitempty"`
	RecurringID *uuid.UUID      `json:"recurring_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.expenses.Create(r.Context(), expense.CreateParams{
		ProjectID:   req.ProjectID,
		Description: req.Description,
		AmountCents: req.AmountCents,
		TaxPercent:  req.TaxPercent,
		Date:        req.Date,
		Category:    req.Category,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	filter := expense.ListFilter{}

	if s := r.URL.Query().Get("project_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.ProjectID = &id
		}
	}

	if s := r.URL.Query().Get("category"); s != "" {
		filter.Category = &s
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = &t
		}
	}

	expenses, err := h.expenses.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getExpense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	e, err := h.expenses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			http.Error(w, "expense not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.expenses.Delete(r.Context(), id); err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			http.Error(w, "expense not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type createEntryRequest struct {
	ProjectID       uuid.UUID `json:"project_id" validate:"required"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date" validate:"required"`
	DurationSeconds int64     `json:"duration_seconds" validate:"required,gt=0"`
}

type entryResponse struct {
	ID              uuid.UUID  `json:"id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	Description     string     `json:"description,omitempty"`
	Date            time.Time  `json:"date"`
	DurationSeconds int64      `json:"duration_seconds"`
	InvoiceID       *uuid.UUID `json:"invoice_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.timelogs.Create(r.Context(), timelog.CreateParams{
		ProjectID:       req.ProjectID,
		Description:     req.Description,
		Date:            req.Date,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	filter := timelog.ListFilter{}

	if s := r.URL.Query().Get("project_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.ProjectID = &id
		}
	}

	if r.URL.Query().Get("unbilled") == "true" {
		filter.Unbilled = true
	}

	entries, err := h.timelogs.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entry, err := h.timelogs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, timelog.ErrNotFound) {
			http.Error(w, "time entry not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

type importResponse struct {
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Expenses []expenseResponse `json:"expenses"`
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.imports.Import(r.Context(), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := importResponse{
		Imported: len(result.Created),
		Skipped:  result.Skipped,
		Expenses: make([]expenseResponse, 0, len(result.Created)),
	}
	for _, e := range result.Created {
		resp.Expenses = append(resp.Expenses, toExpenseResponse(e))
	}

	writeJSON(w, http.StatusCreated, resp)
}

func toExpenseResponse(e *expense.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Description: e.Description,
		AmountCents: e.AmountCents,
		TaxPercent:  e.TaxPercent,
		Date:        e.Date,
		Category:    e.Category,
		RecurringID: e.RecurringID,
		CreatedAt:   e.CreatedAt,
	}
}

func toEntryResponse(e *timelog.Entry) entryResponse {
	return entryResponse{
		ID:              e.ID,
		ProjectID:       e.ProjectID,
		Description:     e.Description,
		Date:            e.Date,
		DurationSeconds: e.DurationSeconds,
		InvoiceID:       e.InvoiceID,
		CreatedAt:       e.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
