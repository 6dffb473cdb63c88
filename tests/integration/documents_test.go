package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/billing"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/reconciliation"
	"github.com/printchain/backend/internal/domain/shared/valueobject"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/event"
	"github.com/printchain/backend/internal/infrastructure/persistence"
	"github.com/printchain/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type documents struct {
	db       *TestDB
	jobs     *persistence.GormJobRepository
	pos      *persistence.GormPurchaseOrderRepository
	invoices *persistence.GormInvoiceRepository
	logs     *persistence.GormSyncLogRepository
	parties  job.Parties
	rate     *pricing.RateCardEntry
}

func newDocuments(t *testing.T) *documents {
	t.Helper()
	ctx := context.Background()
	testDB := NewTestDB(t)
	outbox := event.NewOutboxPublisher(event.NewDefaultSerializer(), 0)

	d := &documents{
		db:       testDB,
		jobs:     persistence.NewGormJobRepository(testDB.DB, outbox),
		pos:      persistence.NewGormPurchaseOrderRepository(testDB.DB, outbox),
		invoices: persistence.NewGormInvoiceRepository(testDB.DB, outbox),
		logs:     persistence.NewGormSyncLogRepository(testDB.DB),
	}

	companies := persistence.NewGormCompanyRepository(testDB.DB)
	ids := make(map[partner.Role]uuid.UUID)
	for _, role := range []partner.Role{partner.RoleCustomer, partner.RoleBroker, partner.RoleIntermediary, partner.RoleManufacturer} {
		c, err := partner.NewCompany(string(role)+" co", role, string(role)[:4], "")
		require.NoError(t, err)
		require.NoError(t, companies.Save(ctx, c))
		ids[role] = c.ID
	}
	d.parties = job.Parties{
		CustomerID:     ids[partner.RoleCustomer],
		BrokerID:       ids[partner.RoleBroker],
		IntermediaryID: ids[partner.RoleIntermediary],
		ManufacturerID: ids[partner.RoleManufacturer],
	}

	rate, err := pricing.NewRateCardEntry("6x9",
		decimal.RequireFromString("34.74"), decimal.RequireFromString("15.46"),
		decimal.RequireFromString("18.55"), decimal.RequireFromString("67.56"))
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormRateCardRepository(testDB.DB).Save(ctx, rate))
	d.rate = rate
	return d
}

func (d *documents) newJob(t *testing.T, jobNo string) *job.Job {
	t.Helper()
	j, err := job.NewJob(jobNo, "flyers", d.parties, d.rate, 10000, pricing.AllocationModeNormal, pricing.Overrides{})
	require.NoError(t, err)
	require.NoError(t, d.jobs.Create(context.Background(), j))
	return j
}

// TestJobFinancials_Integration checks NUMERIC(20,8) columns keep full precision
func TestJobFinancials_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	d := newDocuments(t)
	j := d.newJob(t, "J-000001")

	got, err := d.jobs.FindByJobNo(context.Background(), "J-000001")
	require.NoError(t, err)
	assert.True(t, got.Financials.BrokerMarginCPM.Equal(decimal.RequireFromString("7.135")))
	assert.True(t, got.Financials.CustomerTotal.Equal(j.Financials.CustomerTotal))
	assert.True(t, got.Financials.ManufacturerTotal.Equal(j.Financials.ManufacturerTotal))
	assert.Equal(t, d.parties, got.Parties)
}

// TestPurchaseOrderUniqueness_Integration runs CreateIfAbsent against the real
// unique indexes on the party triple and the external reference.
func TestPurchaseOrderUniqueness_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	d := newDocuments(t)

	t.Run("concurrent cascades leave one order per leg", func(t *testing.T) {
		j := d.newJob(t, "J-000010")

		const workers = 6
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			ids     = make(map[uuid.UUID]struct{})
			created int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				leg, err := trade.BrokerLeg(j)
				if !assert.NoError(t, err) {
					return
				}
				stored, isNew, err := d.pos.CreateIfAbsent(ctx, leg)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				ids[stored.ID] = struct{}{}
				if isNew {
					created++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Len(t, ids, 1)
		n, err := d.pos.CountByJob(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("party triple is enforced by the schema", func(t *testing.T) {
		j := d.newJob(t, "J-000011")
		leg, err := trade.BrokerLeg(j)
		require.NoError(t, err)
		_, _, err = d.pos.CreateIfAbsent(ctx, leg)
		require.NoError(t, err)

		again, err := trade.BrokerLeg(j)
		require.NoError(t, err)
		err = d.db.DB.WithContext(ctx).Create(models.PurchaseOrderModelFromDomain(again)).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("external reference returns the stored order", func(t *testing.T) {
		j := d.newJob(t, "J-000012")
		first, err := trade.InboundManufacturerLeg(j, "ACME-JJSA-2001")
		require.NoError(t, err)
		stored, created, err := d.pos.CreateIfAbsent(ctx, first)
		require.NoError(t, err)
		require.True(t, created)

		replay, err := trade.InboundManufacturerLeg(j, "ACME-JJSA-2001")
		require.NoError(t, err)
		dup, created, err := d.pos.CreateIfAbsent(ctx, replay)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, stored.ID, dup.ID)

		brokerLeg, err := trade.BrokerLeg(j)
		require.NoError(t, err)
		cascade, err := trade.ManufacturerLeg(j, brokerLeg)
		require.NoError(t, err)
		dup, created, err = d.pos.CreateIfAbsent(ctx, cascade)
		require.NoError(t, err)
		assert.False(t, created, "the cascade leg converges on the inbound order")
		assert.Equal(t, stored.ID, dup.ID)
	})
}

// TestSyncLogAppendOnly_Integration checks the trigger that keeps sync_logs append-only
func TestSyncLogAppendOnly_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	d := newDocuments(t)
	j := d.newJob(t, "J-000020")

	leg, err := trade.BrokerLeg(j)
	require.NoError(t, err)
	_, _, err = d.pos.CreateIfAbsent(ctx, leg)
	require.NoError(t, err)
	inv, err := billing.NewSettlementInvoice(leg)
	require.NoError(t, err)
	require.NoError(t, d.invoices.Issue(ctx, inv))

	require.NoError(t, d.db.DB.Exec("UPDATE invoices SET amount = ? WHERE id = ?", "600.00", inv.ID).Error)
	drifted, err := d.invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)

	correction, err := reconciliation.NewCorrection(drifted, leg, valueobject.CentTolerance, reconciliation.TriggerManualAudit, "auditor")
	require.NoError(t, err)
	require.NotNil(t, correction)
	require.NoError(t, d.logs.ApplyCorrection(ctx, correction))

	repaired, err := d.invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, repaired.Amount.Equal(leg.VendorAmount))

	err = d.db.DB.Exec("UPDATE sync_logs SET new_value = '0.00' WHERE id = ?", correction.Log.ID).Error
	assert.ErrorContains(t, err, "append-only")
	err = d.db.DB.Exec("DELETE FROM sync_logs WHERE id = ?", correction.Log.ID).Error
	assert.ErrorContains(t, err, "append-only")

	n, err := d.logs.CountBySubject(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
