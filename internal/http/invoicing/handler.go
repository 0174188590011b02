// Package invoicing exposes invoice issuance, payment and time billing.
package invoicing

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

	"github.com/duartefn/solo/internal/client"
	"github.com/duartefn/solo/internal/invoice"
	"github.com/duartefn/solo/internal/money"
	"github.com/duartefn/solo/internal/project"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/bill-time", h.billTime)
	r.Get("/{id}", h.get)
	r.Post("/{id}/pay", h.markPaid)
}

type createInvoiceRequest struct {
	ClientID   uuid.UUID       `json:"client_id" validate:"required"`
	ProjectID  *uuid.UUID      `json:"project_id,omitempty"`
	Items      []money.Item    `json:"items" validate:"required,min=1"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
	IssueDate  time.Time       `json:"issue_date" validate:"required"`
	DueDate    time.Time       `json:"due_date"`
}

type invoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"client_id"`
	ProjectID     *uuid.UUID      `json:"project_id,omitempty"`
	Number        string          `json:"number"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Items         []money.Item    `json:"items"`
	TaxPercent    decimal.Decimal `json:"tax_percent"`
	SubtotalCents int64           `json:"subtotal_cents"`
	TotalCents    int64           `json:"total_cents"`
	Paid          bool            `json:"paid"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Create(r.Context(), invoice.CreateParams{
		ClientID:   req.ClientID,
		ProjectID:  req.ProjectID,
		Items:      req.Items,
		TaxPercent: req.TaxPercent,
		IssueDate:  req.IssueDate,
		DueDate:    req.DueDate,
	})
	if err != nil {
		writeCreateError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(inv))
}

// writeCreateError maps issuance failures: bad items and dangling
// references are the caller's fault, everything else is ours.
func writeCreateError(w http.ResponseWriter, err error) {
	var itemErr *money.ItemError

	switch {
	case errors.As(err, &itemErr):
		http.Error(w, itemErr.Error(), http.StatusBadRequest)
	case errors.Is(err, client.ErrNotFound), errors.Is(err, project.ErrNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{}

	if s := r.URL.Query().Get("client_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.ClientID = &id
		}
	}

	if s := r.URL.Query().Get("project_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.ProjectID = &id
		}
	}

	if s := r.URL.Query().Get("paid"); s != "" {
		paid := s == "true"
		filter.Paid = &paid
	}

	invoices, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toResponse(inv))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(inv))
}

type markPaidRequest struct {
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req markPaidRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	paidAt := time.Now().UTC()
	if req.PaymentDate != nil {
		paidAt = *req.PaymentDate
	}

	inv, err := h.svc.MarkPaid(r.Context(), id, paidAt)
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrNotFound):
			http.Error(w, "invoice not found", http.StatusNotFound)
		case errors.Is(err, invoice.ErrAlreadyPaid):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusOK, toResponse(inv))
}

type billTimeRequest struct {
	ProjectID  uuid.UUID       `json:"project_id" validate:"required"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
}

type billTimeResponse struct {
	Invoice invoiceResponse `json:"invoice"`
	Billed  []uuid.UUID     `json:"billed"`
	Failed  []uuid.UUID     `json:"failed,omitempty"`
}

func (h *Handler) billTime(w http.ResponseWriter, r *http.Request) {
	var req billTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.BillTimeEntries(r.Context(), req.ProjectID, req.TaxPercent, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrNothingToBill):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, project.ErrNotFound):
			http.Error(w, "project not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusCreated, billTimeResponse{
		Invoice: toResponse(result.Invoice),
		Billed:  result.Billed,
		Failed:  result.Failed,
	})
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:            inv.ID,
		ClientID:      inv.ClientID,
		ProjectID:     inv.ProjectID,
		Number:        inv.Number,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Items:         inv.Items,
		TaxPercent:    inv.TaxPercent,
		SubtotalCents: inv.SubtotalCents,
		TotalCents:    inv.TotalCents,
		Paid:          inv.Paid,
		PaymentDate:   inv.PaymentDate,
		CreatedAt:     inv.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
