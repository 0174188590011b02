package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/duartefn/solo/internal/budget"
	budgetStore "github.com/duartefn/solo/internal/budget/store"
	"github.com/duartefn/solo/internal/client"
	clientStore "github.com/duartefn/solo/internal/client/store"
	"github.com/duartefn/solo/internal/config"
	"github.com/duartefn/solo/internal/contract"
	contractStore "github.com/duartefn/solo/internal/contract/store"
	"github.com/duartefn/solo/internal/database"
	"github.com/duartefn/solo/internal/expense"
	expenseStore "github.com/duartefn/solo/internal/expense/store"
	soloHttp "github.com/duartefn/solo/internal/http"
	billingHandler "github.com/duartefn/solo/internal/http/billing"
	directoryHandler "github.com/duartefn/solo/internal/http/directory"
	invoicingHandler "github.com/duartefn/solo/internal/http/invoicing"
	ledgerHandler "github.com/duartefn/solo/internal/http/ledger"
	reportingHandler "github.com/duartefn/solo/internal/http/reporting"
	salesHandler "github.com/duartefn/solo/internal/http/sales"
	"github.com/duartefn/solo/internal/importer"
	"github.com/duartefn/solo/internal/invoice"
	invoiceStore "github.com/duartefn/solo/internal/invoice/store"
	"github.com/duartefn/solo/internal/notify"
	"github.com/duartefn/solo/internal/project"
	projectStore "github.com/duartefn/solo/internal/project/store"
	"github.com/duartefn/solo/internal/proposal"
	proposalStore "github.com/duartefn/solo/internal/proposal/store"
	"github.com/duartefn/solo/internal/recurring"
	recurringStore "github.com/duartefn/solo/internal/recurring/store"
	"github.com/duartefn/solo/internal/report"
	"github.com/duartefn/solo/internal/timelog"
	timelogStore "github.com/duartefn/solo/internal/timelog/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		clientService   = client.NewService(clientStore.New(db))
		projectService  = project.NewService(projectStore.New(db))
		timelogService  = timelog.NewService(timelogStore.New(db))
		expenseService  = expense.NewService(expenseStore.New(db))
		budgetService   = budget.NewService(budgetStore.New(db))
		proposalService = proposal.NewService(proposalStore.New(db))
		contractService = contract.NewService(contractStore.New(db))
		importService   = importer.NewService(expenseService)
	)

	invoiceService := invoice.NewService(
		invoiceStore.New(db),
		clientService,
		projectService,
		timelogService,
		notify.Log{},
		cfg.Billing.HourlyRateCents,
		cfg.Billing.InvoiceDueDays,
	)

	recurringRepo := recurringStore.New(db)
	recurringService := recurring.NewService(recurringRepo)
	scheduler := recurring.NewScheduler(recurringRepo, invoiceService, expenseService, cfg.Billing.InvoiceDueDays)

	reportService := report.NewService(
		invoiceService,
		expenseService,
		timelogService,
		projectService,
		recurringService,
		cfg.Billing.HourlyRateCents,
	)

	var (
		directoryH = directoryHandler.NewHandler(clientService, projectService)
		invoicingH = invoicingHandler.NewHandler(invoiceService)
		salesH     = salesHandler.NewHandler(budgetService, proposalService, contractService)
		billingH   = billingHandler.NewHandler(recurringService, scheduler)
		ledgerH    = ledgerHandler.NewHandler(expenseService, timelogService, importService)
		reportingH = reportingHandler.NewHandler(reportService)
	)

	router := soloHttp.New(directoryH, invoicingH, salesH, billingH, ledgerH, reportingH)

	go runScheduler(context.Background(), scheduler, cfg.Billing.RunInterval)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// runScheduler materializes recurring documents on startup and then on
// every tick, so templates that came due while the process was down are
// caught up immediately.
func runScheduler(ctx context.Context, scheduler *recurring.Scheduler, interval time.Duration) {
	run := func() {
		result, err := scheduler.Run(ctx, time.Now().UTC())
		if err != nil {
			slog.Error("recurring billing run failed", "error", err)
			return
		}

		if result.InvoicesCreated > 0 || result.ExpensesCreated > 0 || len(result.Errors) > 0 {
			slog.Info("recurring billing run finished",
				"invoices_created", result.InvoicesCreated,
				"expenses_created", result.ExpensesCreated,
				"errors", len(result.Errors),
			)
		}

		for _, err := range result.Errors {
			slog.Warn("recurring billing error", "error", err)
		}
	}

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
