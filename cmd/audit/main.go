// Command audit reports purchase order and settlement invoice pairs that have
// drifted apart, and with --fix corrects the invoices and logs every change.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	recapp "github.com/printchain/backend/internal/application/reconciliation"
	"github.com/printchain/backend/internal/domain/reconciliation"
	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/printchain/backend/internal/infrastructure/event"
	"github.com/printchain/backend/internal/infrastructure/export"
	"github.com/printchain/backend/internal/infrastructure/logger"
	"github.com/printchain/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	fix      bool
	jobs     []string
	format   string
	out      string
	since    string
	actor    string
	logLevel string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare purchase orders with their settlement invoices",
		Long: `audit walks every purchase order in scope, pairs it with its settlement
invoice and reports the pairs whose amounts differ. Mismatches are data, not
failures: the command exits 0 whenever the report was produced.

With --fix each mismatched invoice is set to its purchase order amount and
the change is written to the sync log. If a repair fails the report is still
written and the command exits non-zero.`,
		Example: `  audit
  audit --fix --job J-1 --job J-2
  audit --format xlsx --out audit.xlsx`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.fix, "fix", false, "repair mismatched invoices and record a sync log entry for each")
	flags.StringSliceVar(&opts.jobs, "job", nil, "limit the audit to these job numbers (repeatable)")
	flags.StringVar(&opts.format, "format", "table", "report format: table, csv or xlsx")
	flags.StringVar(&opts.out, "out", "", "write the report to this file instead of stdout")
	flags.StringVar(&opts.since, "since", "", "only purchase orders created on or after this date (YYYY-MM-DD)")
	flags.StringVar(&opts.actor, "actor", "", "actor recorded on repairs (default: the configured system actor)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	return cmd
}

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if format == export.FormatXLSX && opts.out == "" {
		return fmt.Errorf("--format xlsx needs --out")
	}
	scope := reconciliation.Scope{JobNos: opts.jobs}
	if opts.since != "" {
		since, err := time.Parse(time.DateOnly, opts.since)
		if err != nil {
			return fmt.Errorf("--since: %w", err)
		}
		scope.From = &since
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log, err := logger.New(config.LogConfig{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := persistence.NewDatabase(cfg.Database, log, opts.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	auditConfig, err := recapp.AuditConfigFrom(cfg.Reconciliation)
	if err != nil {
		return err
	}
	publisher := event.NewOutboxPublisher(event.NewDefaultSerializer(), cfg.Event.MaxRetries)
	syncLogs := persistence.NewGormSyncLogRepository(db.DB)
	audits := recapp.NewAuditService(recapp.AuditServiceDeps{
		Jobs:        persistence.NewGormJobRepository(db.DB, publisher),
		Orders:      persistence.NewGormPurchaseOrderRepository(db.DB, publisher),
		Invoices:    persistence.NewGormInvoiceRepository(db.DB, publisher),
		Companies:   persistence.NewGormCompanyRepository(db.DB),
		Corrections: syncLogs,
		Logs:        syncLogs,
	}, auditConfig, log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		report   *reconciliation.Report
		auditErr error
	)
	if opts.fix {
		actor := opts.actor
		if actor == "" {
			actor = auditConfig.SystemActor
		}
		report, auditErr = audits.AuditAndRepair(ctx, scope, actor, reconciliation.TriggerManualAudit)
	} else {
		report, auditErr = audits.Audit(ctx, scope)
	}
	if report == nil {
		return auditErr
	}
	// a repair that stopped part way still reports what was found

	w := stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, format, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	log.Info("Audit finished",
		zap.Int("total_pairs", report.TotalPairs),
		zap.Int("mismatched", report.Mismatched),
		zap.Int("missing_invoices", report.MissingInvoices),
		zap.Int("repaired", report.Repaired),
	)
	if opts.out != "" {
		fmt.Fprintf(stdout, "%d pairs, %d mismatched, %d repaired, %s%% in sync -> %s\n",
			report.TotalPairs, report.Mismatched, report.Repaired, report.PercentInSync.StringFixed(2), opts.out)
	}
	if auditErr != nil {
		return fmt.Errorf("repair stopped after %d of %d mismatches: %w", report.Repaired, report.Mismatched, auditErr)
	}
	return nil
}
