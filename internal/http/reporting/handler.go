// Package reporting exposes profitability and cash-flow views.
package reporting

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/profitability", h.profitability)
	r.Get("/forecast", h.forecast)
}

type projectProfitResponse struct {
	ProjectID                uuid.UUID `json:"project_id"`
	ProjectName              string    `json:"project_name"`
	IncomeCents              int64     `json:"income_cents"`
	ExpenseCents             int64     `json:"expense_cents"`
	TimeCostCents            int64     `json:"time_cost_cents"`
	NetCents                 int64     `json:"net_cents"`
	MarginPercent            float64   `json:"margin_percent"`
	TotalHours               float64   `json:"total_hours"`
	EffectiveHourlyRateCents int64     `json:"effective_hourly_rate_cents"`
}

type portfolioResponse struct {
	IncomeCents              int64   `json:"income_cents"`
	ExpenseCents             int64   `json:"expense_cents"`
	TimeCostCents            int64   `json:"time_cost_cents"`
	NetCents                 int64   `json:"net_cents"`
	MarginPercent            float64 `json:"margin_percent"`
	TotalHours               float64 `json:"total_hours"`
	EffectiveHourlyRateCents int64   `json:"effective_hourly_rate_cents"`
}

type profitabilityResponse struct {
	Projects  []projectProfitResponse `json:"projects"`
	Portfolio portfolioResponse       `json:"portfolio"`
}

func (h *Handler) profitability(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Profitability(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := profitabilityResponse{
		Projects: make([]projectProfitResponse, 0, len(rep.Projects)),
		Portfolio: portfolioResponse{
			IncomeCents:              rep.Portfolio.IncomeCents,
			ExpenseCents:             rep.Portfolio.ExpenseCents,
			TimeCostCents:            rep.Portfolio.TimeCostCents,
			NetCents:                 rep.Portfolio.NetCents,
			MarginPercent:            rep.Portfolio.MarginPercent,
			TotalHours:               rep.Portfolio.TotalHours,
			EffectiveHourlyRateCents: rep.Portfolio.EffectiveHourlyRateCents,
		},
	}
	for _, p := range rep.Projects {
		resp.Projects = append(resp.Projects, projectProfitResponse{
			ProjectID:                p.ProjectID,
			ProjectName:              p.ProjectName,
			IncomeCents:              p.IncomeCents,
			ExpenseCents:             p.ExpenseCents,
			TimeCostCents:            p.TimeCostCents,
			NetCents:                 p.NetCents,
			MarginPercent:            p.MarginPercent,
			TotalHours:               p.TotalHours,
			EffectiveHourlyRateCents: p.EffectiveHourlyRateCents,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type monthFlowResponse struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	NetCents     int64  `json:"net_cents"`
	Label        string `json:"label"`
}

func (h *Handler) forecast(w http.ResponseWriter, r *http.Request) {
	from := time.Now().UTC()

	if s := r.URL.Query().Get("from"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			from = t
		}
	}

	flows, err := h.svc.Forecast(r.Context(), from)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]monthFlowResponse, 0, len(flows))
	for _, f := range flows {
		out = append(out, monthFlowResponse{
			Year:         f.Year,
			Month:        int(f.Month),
			IncomeCents:  f.IncomeCents,
			ExpenseCents: f.ExpenseCents,
			NetCents:     f.NetCents,
			Label:        time.Date(f.Year, f.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
