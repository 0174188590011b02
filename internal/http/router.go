package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/duartefn/solo/internal/http/billing"
	"github.com/duartefn/solo/internal/http/directory"
	"github.com/duartefn/solo/internal/http/invoicing"
	"github.com/duartefn/solo/internal/http/ledger"
	"github.com/duartefn/solo/internal/http/reporting"
	"github.com/duartefn/solo/internal/http/sales"
)

func New(
	directoryV1 *directory.Handler,
	invoicingV1 *invoicing.Handler,
	salesV1 *sales.Handler,
	billingV1 *billing.Handler,
	ledgerV1 *ledger.Handler,
	reportingV1 *reporting.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		json := middleware.AllowContentType("application/json")

		r.Route("/clients", func(r chi.Router) {
			r.Use(json)
			directoryV1.ClientRoutes(r)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Use(json)
			directoryV1.ProjectRoutes(r)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(json)
			invoicingV1.Routes(r)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Use(json)
			salesV1.BudgetRoutes(r)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Use(json)
			salesV1.ProposalRoutes(r)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Use(json)
			salesV1.ContractRoutes(r)
		})

		r.Route("/recurring", func(r chi.Router) {
			r.Use(json)
			billingV1.Routes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(json)
			ledgerV1.ExpenseRoutes(r)
		})

		r.Route("/time-entries", func(r chi.Router) {
			r.Use(json)
			ledgerV1.TimeRoutes(r)
		})

		// Statement upload is multipart, so no content-type restriction.
		r.Route("/import", ledgerV1.ImportRoutes)

		r.Route("/reports", func(r chi.Router) {
			reportingV1.Routes(r)
		})
	})

	return router
}
