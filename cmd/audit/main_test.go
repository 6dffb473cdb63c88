package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/printchain/backend/internal/domain/billing"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/printchain/backend/internal/infrastructure/event"
	"github.com/printchain/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sqliteEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	t.Setenv("PRINTCHAIN_DATABASE_DRIVER", "sqlite")
	t.Setenv("PRINTCHAIN_DATABASE_SQLITE_PATH", path)

	db, err := persistence.NewDatabase(config.DatabaseConfig{Driver: "sqlite", SQLitePath: path}, zap.NewNop(), "silent")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	require.NoError(t, db.Close())
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAudit_RejectsBadFlags(t *testing.T) {
	_, err := execute(t, "--format", "pdf")
	assert.ErrorContains(t, err, "unknown export format")

	_, err = execute(t, "--format", "xlsx")
	assert.ErrorContains(t, err, "--out")

	_, err = execute(t, "--since", "yesterday")
	assert.ErrorContains(t, err, "--since")
}

func TestAudit_EmptyDatabaseReportsInSync(t *testing.T) {
	sqliteEnv(t)

	out, err := execute(t, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "job_no,po_number")
}

func TestAudit_FixWritesReportFile(t *testing.T) {
	sqliteEnv(t)
	target := filepath.Join(t.TempDir(), "report.xlsx")

	out, err := execute(t, "--fix", "--format", "xlsx", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "0 pairs, 0 mismatched, 0 repaired, 100.00% in sync")

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// seedDriftedLeg stores one settled broker leg whose invoice no longer
// matches and makes every sync log insert fail.
func seedDriftedLeg(t *testing.T, path string) {
	t.Helper()
	ctx := context.Background()
	db, err := persistence.NewDatabase(config.DatabaseConfig{Driver: "sqlite", SQLitePath: path}, zap.NewNop(), "silent")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	publisher := event.NewOutboxPublisher(event.NewDefaultSerializer(), 0)

	companies := persistence.NewGormCompanyRepository(db.DB)
	company := func(name string, role partner.Role, code string) *partner.Company {
		c, err := partner.NewCompany(name, role, code, "")
		require.NoError(t, err)
		require.NoError(t, companies.Save(ctx, c))
		return c
	}
	parties := job.Parties{
		CustomerID:     company("Jolly Jumbo SA", partner.RoleCustomer, "JJSA").ID,
		BrokerID:       company("Northline Brokerage", partner.RoleBroker, "").ID,
		IntermediaryID: company("Acme Print Services", partner.RoleIntermediary, "ACME").ID,
		ManufacturerID: company("Riverside Press", partner.RoleManufacturer, "").ID,
	}

	rate, err := pricing.NewRateCardEntry("6x9",
		decimal.RequireFromString("34.74"),
		decimal.RequireFromString("15.46"),
		decimal.RequireFromString("18.55"),
		decimal.RequireFromString("67.56"))
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormRateCardRepository(db.DB).Save(ctx, rate))

	j, err := job.NewJob("J-000700", "", parties, rate, 10000, pricing.AllocationModeNormal, pricing.Overrides{})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormJobRepository(db.DB, publisher).Create(ctx, j))

	leg, err := trade.BrokerLeg(j)
	require.NoError(t, err)
	stored, _, err := persistence.NewGormPurchaseOrderRepository(db.DB, publisher).CreateIfAbsent(ctx, leg)
	require.NoError(t, err)
	inv, err := billing.NewSettlementInvoice(stored)
	require.NoError(t, err)
	inv.IssuedAt = time.Now()
	require.NoError(t, persistence.NewGormInvoiceRepository(db.DB, publisher).Issue(ctx, inv))

	require.NoError(t, db.DB.Exec("UPDATE invoices SET amount = ? WHERE id = ?", decimal.RequireFromString("600.00"), inv.ID).Error)
	require.NoError(t, db.DB.Exec(`CREATE TRIGGER sync_logs_unavailable BEFORE INSERT ON sync_logs
BEGIN SELECT RAISE(ABORT, 'sync log unavailable'); END`).Error)
}

func TestAudit_FailedRepairStillWritesReport(t *testing.T) {
	path := sqliteEnv(t)
	seedDriftedLeg(t, path)

	out, err := execute(t, "--fix", "--format", "csv")
	require.Error(t, err)
	assert.ErrorContains(t, err, "repair stopped after 0 of 1 mismatches")
	assert.Contains(t, out, "job_no,po_number")
	assert.Contains(t, out, "PO-J-000700-1")
}
