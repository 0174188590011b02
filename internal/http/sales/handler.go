// Package sales exposes the pre-sale documents: budgets, proposals and
// contracts. Transition endpoints surface guard violations as 409 with
// the state machine's own message, so a client-facing page can show the
// user exactly why a decided document refused another decision.
package sales

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/budget"
	"github.com/duartefn/solo/internal/contract"
	"github.com/duartefn/solo/internal/money"
	"github.com/duartefn/solo/internal/proposal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Handler struct {
	budgets   *budget.Service
	proposals *proposal.Service
	contracts *contract.Service
}

func NewHandler(budgets *budget.Service, proposals *proposal.Service, contracts *contract.Service) *Handler {
	return &Handler{
		budgets:   budgets,
		proposals: proposals,
		contracts: contracts,
	}
}

func (h *Handler) BudgetRoutes(r chi.Router) {
	r.Post("/", h.createBudget)
	r.Get("/", h.listBudgets)
	r.Get("/{id}", h.getBudget)
	r.Post("/{id}/accept", h.acceptBudget)
	r.Post("/{id}/reject", h.rejectBudget)
}

func (h *Handler) ProposalRoutes(r chi.Router) {
	r.Post("/", h.createProposal)
	r.Get("/", h.listProposals)
	r.Get("/{id}", h.getProposal)
	r.Post("/{id}/send", h.sendProposal)
	r.Post("/{id}/accept", h.acceptProposal)
	r.Post("/{id}/reject", h.rejectProposal)
}

func (h *Handler) ContractRoutes(r chi.Router) {
	r.Post("/", h.createContract)
	r.Get("/", h.listContracts)
	r.Get("/{id}", h.getContract)
	r.Post("/{id}/send", h.sendContract)
	r.Post("/{id}/sign", h.signContract)
	r.Patch("/{id}/expiry", h.setContractExpiry)
}

type createBudgetRequest struct {
	ClientID    uuid.UUID    `json:"client_id" validate:"required"`
	Description string       `json:"description"`
	Items       []money.Item `json:"items" validate:"required,min=1"`
}

type budgetResponse struct {
	ID          uuid.UUID     `json:"id"`
	ClientID    uuid.UUID     `json:"client_id"`
	Description string        `json:"description,omitempty"`
	Items       []money.Item  `json:"items"`
	AmountCents int64         `json:"amount_cents"`
	Status      budget.Status `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
}

func (h *Handler) createBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.budgets.Create(r.Context(), budget.CreateParams{
		ClientID:    req.ClientID,
		Description: req.Description,
		Items:       req.Items,
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

	writeJSON(w, http.StatusCreated, toBudgetResponse(b))
}

func (h *Handler) listBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.budgets.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getBudget(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b, err := h.budgets.Get(r.Context(), id)
	if err != nil {
		writeBudgetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (h *Handler) acceptBudget(w http.ResponseWriter, r *http.Request) {
	h.budgetTransition(w, r, h.budgets.Accept)
}

func (h *Handler) rejectBudget(w http.ResponseWriter, r *http.Request) {
	h.budgetTransition(w, r, h.budgets.Reject)
}

func (h *Handler) budgetTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) (*budget.Budget, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b, err := apply(r.Context(), id)
	if err != nil {
		writeBudgetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func writeBudgetError(w http.ResponseWriter, err error) {
	var stateErr *budget.StateError

	switch {
	case errors.Is(err, budget.ErrNotFound):
		http.Error(w, "budget not found", http.StatusNotFound)
	case errors.As(err, &stateErr):
		http.Error(w, stateErr.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type createProposalRequest struct {
	ClientID    uuid.UUID `json:"client_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Content     string    `json:"content"`
	AmountCents int64     `json:"amount_cents" validate:"gte=0"`
	Draft       bool      `json:"draft"`
}

type proposalResponse struct {
	ID          uuid.UUID       `json:"id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Title       string          `json:"title"`
	Content     string          `json:"content,omitempty"`
	AmountCents int64           `json:"amount_cents"`
	Status      proposal.Status `json:"status"`
	SignedBy    *string         `json:"signed_by,omitempty"`
	SignedAt    *time.Time      `json:"signed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

func (h *Handler) createProposal(w http.ResponseWriter, r *http.Request) {
	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.proposals.Create(r.Context(), proposal.CreateParams{
		ClientID:    req.ClientID,
		Title:       req.Title,
		Content:     req.Content,
		AmountCents: req.AmountCents,
		Draft:       req.Draft,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toProposalResponse(p))
}

func (h *Handler) listProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.proposals.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]proposalResponse, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, toProposalResponse(p))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProposal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.proposals.Get(r.Context(), id)
	if err != nil {
		writeProposalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProposalResponse(p))
}

func (h *Handler) sendProposal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.proposals.Send(r.Context(), id)
	if err != nil {
		writeProposalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProposalResponse(p))
}

type acceptProposalRequest struct {
	SignedBy string `json:"signed_by"`
}

func (h *Handler) acceptProposal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req acceptProposalRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	p, err := h.proposals.Accept(r.Context(), id, req.SignedBy, time.Now().UTC())
	if err != nil {
		writeProposalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProposalResponse(p))
}

func (h *Handler) rejectProposal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.proposals.Reject(r.Context(), id)
	if err != nil {
		writeProposalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProposalResponse(p))
}

func writeProposalError(w http.ResponseWriter, err error) {
	var stateErr *proposal.StateError

	switch {
	case errors.Is(err, proposal.ErrNotFound):
		http.Error(w, "proposal not found", http.StatusNotFound)
	case errors.As(err, &stateErr):
		http.Error(w, stateErr.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type createContractRequest struct {
	ClientID  uuid.UUID  `json:"client_id" validate:"required"`
	ProjectID uuid.UUID  `json:"project_id" validate:"required"`
	Content   string     `json:"content" validate:"required"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type contractResponse struct {
	ID        uuid.UUID       `json:"id"`
	ClientID  uuid.UUID       `json:"client_id"`
	ProjectID uuid.UUID       `json:"project_id"`
	Content   string          `json:"content"`
	Status    contract.Status `json:"status"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	SignedBy  *string         `json:"signed_by,omitempty"`
	SignedAt  *time.Time      `json:"signed_at,omitempty"`
	Signature *string         `json:"signature,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func (h *Handler) createContract(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.contracts.Create(r.Context(), contract.CreateParams{
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		Content:   req.Content,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toContractResponse(c))
}

func (h *Handler) listContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contracts.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]contractResponse, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, toContractResponse(c))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getContract(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.contracts.Get(r.Context(), id)
	if err != nil {
		writeContractError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(c))
}

func (h *Handler) sendContract(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.contracts.Send(r.Context(), id)
	if err != nil {
		writeContractError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(c))
}

type signContractRequest struct {
	SignedBy  string `json:"signed_by" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

func (h *Handler) signContract(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req signContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.contracts.Sign(r.Context(), id, req.SignedBy, req.Signature, time.Now().UTC())
	if err != nil {
		writeContractError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(c))
}

type setExpiryRequest struct {
	ExpiresAt time.Time `json:"expires_at" validate:"required"`
}

func (h *Handler) setContractExpiry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req setExpiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.contracts.SetExpiry(r.Context(), id, req.ExpiresAt)
	if err != nil {
		writeContractError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(c))
}

func writeContractError(w http.ResponseWriter, err error) {
	var stateErr *contract.StateError

	switch {
	case errors.Is(err, contract.ErrNotFound):
		http.Error(w, "contract not found", http.StatusNotFound)
	case errors.As(err, &stateErr):
		http.Error(w, stateErr.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toBudgetResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:          b.ID,
		ClientID:    b.ClientID,
		Description: b.Description,
		Items:       b.Items,
		AmountCents: b.AmountCents,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toProposalResponse(p *proposal.Proposal) proposalResponse {
	return proposalResponse{
		ID:          p.ID,
		ClientID:    p.ClientID,
		Title:       p.Title,
		Content:     p.Content,
		AmountCents: p.AmountCents,
		Status:      p.Status,
		SignedBy:    p.SignedBy,
		SignedAt:    p.SignedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toContractResponse(c *contract.Contract) contractResponse {
	return contractResponse{
		ID:        c.ID,
		ClientID:  c.ClientID,
		ProjectID: c.ProjectID,
		Content:   c.Content,
		Status:    c.Status,
		ExpiresAt: c.ExpiresAt,
		SignedBy:  c.SignedBy,
		SignedAt:  c.SignedAt,
		Signature: c.Signature,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
