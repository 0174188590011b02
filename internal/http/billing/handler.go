// Package billing exposes recurring templates and manual scheduler runs.
package billing

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

	"github.com/duartefn/solo/internal/money"
	"github.com/duartefn/solo/internal/recurring"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Handler struct {
	svc       *recurring.Service
	scheduler *recurring.Scheduler
}

func NewHandler(svc *recurring.Service, scheduler *recurring.Scheduler) *Handler {
	return &Handler{svc: svc, scheduler: scheduler}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/invoices", h.createInvoiceTemplate)
	r.Get("/invoices", h.listInvoiceTemplates)
	r.Delete("/invoices/{id}", h.deleteInvoiceTemplate)

	r.Post("/expenses", h.createExpenseTemplate)
	r.Get("/expenses", h.listExpenseTemplates)
	r.Delete("/expenses/{id}", h.deleteExpenseTemplate)

	r.Post("/run", h.run)
}

type createInvoiceTemplateRequest struct {
	ClientID    uuid.UUID           `json:"client_id" validate:"required"`
	ProjectID   *uuid.UUID          `json:"project_id,omitempty"`
	Description string              `json:"description"`
	Items       []money.Item        `json:"items" validate:"required,min=1"`
	TaxPercent  decimal.Decimal     `json:"tax_percent"`
	Frequency   recurring.Frequency `json:"frequency" validate:"required,oneof=monthly yearly"`
	StartDate   time.Time           `json:"start_date" validate:"required"`
}

type invoiceTemplateResponse struct {
	ID          uuid.UUID           `json:"id"`
	ClientID    uuid.UUID           `json:"client_id"`
	ProjectID   *uuid.UUID          `json:"project_id,omitempty"`
	Description string              `json:"description,omitempty"`
	Items       []money.Item        `json:"items"`
	TaxPercent  decimal.Decimal     `json:"tax_percent"`
	Frequency   recurring.Frequency `json:"frequency"`
	StartDate   time.Time           `json:"start_date"`
	NextDueDate time.Time           `json:"next_due_date"`
	CreatedAt   time.Time           `json:"created_at"`
}

func (h *Handler) createInvoiceTemplate(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t, err := h.svc.CreateInvoiceTemplate(r.Context(), recurring.InvoiceTemplateParams{
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Items:       req.Items,
		TaxPercent:  req.TaxPercent,
		Frequency:   req.Frequency,
		StartDate:   req.StartDate,
	})
	if err != nil {
		var itemErr *money.ItemError
		if errors.As(err, &itemErr) {
			http.Error(w, itemErr.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusCreated, toInvoiceTemplateResponse(t))
}

func (h *Handler) listInvoiceTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.ListInvoiceTemplates(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]invoiceTemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toInvoiceTemplateResponse(t))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteInvoiceTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteInvoiceTemplate(r.Context(), id); err != nil {
		if errors.Is(err, recurring.ErrNotFound) {
			http.Error(w, "template not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type createExpenseTemplateRequest struct {
	Description string              `json:"description" validate:"required"`
	AmountCents int64               `json:"amount_cents" validate:"required,gt=0"`
	Category    string              `json:"category"`
	Frequency   recurring.Frequency `json:"frequency" validate:"required,oneof=monthly yearly"`
	StartDate   time.Time           `json:"start_date" validate:"required"`
}

type expenseTemplateResponse struct {
	ID          uuid.UUID           `json:"id"`
	Description string              `json:"description"`
	AmountCents int64               `json:"amount_cents"`
	Category    string              `json:"category,omitempty"`
	Frequency   recurring.Frequency `json:"frequency"`
	StartDate   time.Time           `json:"start_date"`
	NextDueDate time.Time           `json:"next_due_date"`
	CreatedAt   time.Time           `json:"created_at"`
}

func (h *Handler) createExpenseTemplate(w http.ResponseWriter, r *http.Request) {
	var req createExpenseTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t, err := h.svc.CreateExpenseTemplate(r.Context(), recurring.ExpenseTemplateParams{
		Description: req.Description,
		AmountCents: req.AmountCents,
		Category:    req.Category,
		Frequency:   req.Frequency,
		StartDate:   req.StartDate,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseTemplateResponse(t))
}

func (h *Handler) listExpenseTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.ListExpenseTemplates(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]expenseTemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toExpenseTemplateResponse(t))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteExpenseTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteExpenseTemplate(r.Context(), id); err != nil {
		if errors.Is(err, recurring.ErrNotFound) {
			http.Error(w, "template not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type runResponse struct {
	InvoicesCreated int      `json:"invoices_created"`
	ExpensesCreated int      `json:"expenses_created"`
	Errors          []string `json:"errors,omitempty"`
}

// run triggers a scheduler pass outside the periodic ticker, useful
// after creating a backdated template.
func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduler.Run(r.Context(), time.Now().UTC())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := runResponse{
		InvoicesCreated: result.InvoicesCreated,
		ExpensesCreated: result.ExpensesCreated,
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}

	writeJSON(w, http.StatusOK, resp)
}

func toInvoiceTemplateResponse(t *recurring.InvoiceTemplate) invoiceTemplateResponse {
	return invoiceTemplateResponse{
		ID:          t.ID,
		ClientID:    t.ClientID,
		ProjectID:   t.ProjectID,
		Description: t.Description,
		Items:       t.Items,
		TaxPercent:  t.TaxPercent,
		Frequency:   t.Frequency,
		StartDate:   t.StartDate,
		NextDueDate: t.NextDueDate,
		CreatedAt:   t.CreatedAt,
	}
}

func toExpenseTemplateResponse(t *recurring.ExpenseTemplate) expenseTemplateResponse {
	return expenseTemplateResponse{
		ID:          t.ID,
		Description: t.Description,
		AmountCents: t.AmountCents,
		Category:    t.Category,
		Frequency:   t.Frequency,
		StartDate:   t.StartDate,
		NextDueDate: t.NextDueDate,
		CreatedAt:   t.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
