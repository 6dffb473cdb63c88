package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/billing"
	"github.com/printchain/backend/internal/domain/intake"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/reconciliation"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/shared/valueobject"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/persistence/testdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSaver struct {
	events []shared.DomainEvent
}

func (s *recordingSaver) SaveEvents(_ context.Context, tx interface{}, events ...shared.DomainEvent) error {
	if _, ok := tx.(*gorm.DB); !ok {
		return errors.New("expected a transaction handle")
	}
	s.events = append(s.events, events...)
	return nil
}

func (s *recordingSaver) types() []string {
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.EventType()
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	db       *gorm.DB
	outbox   *recordingSaver
	jobs     *GormJobRepository
	pos      *GormPurchaseOrderRepository
	invoices *GormInvoiceRepository
	logs     *GormSyncLogRepository
	events   *GormInboundEventRepository
	parties  job.Parties
	rate     *pricing.RateCardEntry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	outbox := &recordingSaver{}
	f := &fixture{
		db:       db,
		outbox:   outbox,
		jobs:     NewGormJobRepository(db, outbox),
		pos:      NewGormPurchaseOrderRepository(db, outbox),
		invoices: NewGormInvoiceRepository(db, outbox),
		logs:     NewGormSyncLogRepository(db),
		events:   NewGormInboundEventRepository(db, outbox),
	}

	companies := NewGormCompanyRepository(db)
	ids := make(map[partner.Role]uuid.UUID)
	for _, role := range []partner.Role{partner.RoleCustomer, partner.RoleBroker, partner.RoleIntermediary, partner.RoleManufacturer} {
		c, err := partner.NewCompany(string(role)+" co", role, string(role)[:4], "")
		require.NoError(t, err)
		require.NoError(t, companies.Save(context.Background(), c))
		ids[role] = c.ID
	}
	f.parties = job.Parties{
		CustomerID:     ids[partner.RoleCustomer],
		BrokerID:       ids[partner.RoleBroker],
		IntermediaryID: ids[partner.RoleIntermediary],
		ManufacturerID: ids[partner.RoleManufacturer],
	}

	rate, err := pricing.NewRateCardEntry("6x9", dec("34.74"), dec("15.46"), dec("18.55"), dec("67.56"))
	require.NoError(t, err)
	require.NoError(t, NewGormRateCardRepository(db).Save(context.Background(), rate))
	f.rate = rate
	return f
}

func (f *fixture) newJob(t *testing.T, jobNo string) *job.Job {
	t.Helper()
	j, err := job.NewJob(jobNo, "flyers", f.parties, f.rate, 10000, pricing.AllocationModeNormal, pricing.Overrides{})
	require.NoError(t, err)
	require.NoError(t, f.jobs.Create(context.Background(), j))
	return j
}

func TestGormRateCardRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := NewGormRateCardRepository(f.db)

	entry, err := repo.Lookup(ctx, " 6x9")
	require.NoError(t, err)
	assert.True(t, entry.ManufacturerCPM.Equal(dec("34.74")))
	assert.True(t, entry.StandardCustomerCPM().Equal(dec("67.56")))

	_, err = repo.Lookup(ctx, "11x17")
	assert.True(t, errors.Is(err, pricing.ErrUnknownSize))

	dup, err := pricing.NewRateCardEntry("6X9", dec("1"), dec("1"), dec("1"), dec("2"))
	require.NoError(t, err)
	assert.True(t, errors.Is(repo.Save(ctx, dup), shared.ErrAlreadyExists))

	cached := NewCachedRateCard(repo)
	first, err := cached.Lookup(ctx, "6x9")
	require.NoError(t, err)
	first.ManufacturerCPM = decimal.Zero
	second, err := cached.Lookup(ctx, "6X9")
	require.NoError(t, err)
	assert.True(t, second.ManufacturerCPM.Equal(dec("34.74")), "cached entries are handed out as copies")
}

func TestGormJobRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips the financial record exactly", func(t *testing.T) {
		f := newFixture(t)
		j := f.newJob(t, "J-100")

		got, err := f.jobs.FindByJobNo(ctx, "J-100")
		require.NoError(t, err)
		assert.Equal(t, j.ID, got.ID)
		assert.Equal(t, f.parties, got.Parties)
		assert.True(t, got.Financials.CustomerTotal.Equal(j.Financials.CustomerTotal))
		assert.True(t, got.Financials.BrokerMarginCPM.Equal(dec("7.135")))
		assert.True(t, got.Financials.QuantityInThousands.Equal(dec("10")))
		assert.Equal(t, pricing.AllocationModeNormal, got.Financials.Mode)
		assert.Equal(t, []string{job.EventTypeJobPriced}, f.outbox.types())
		assert.Empty(t, j.GetDomainEvents())
	})

	t.Run("duplicate job number", func(t *testing.T) {
		f := newFixture(t)
		f.newJob(t, "J-1")
		again, err := job.NewJob("J-1", "", f.parties, f.rate, 5, pricing.AllocationModeNormal, pricing.Overrides{})
		require.NoError(t, err)
		assert.True(t, errors.Is(f.jobs.Create(ctx, again), shared.ErrAlreadyExists))
	})

	t.Run("save detects stale copies", func(t *testing.T) {
		f := newFixture(t)
		override := dec("60")
		j, err := job.NewJob("J-2", "", f.parties, f.rate, 1000, pricing.AllocationModeNormal, pricing.Overrides{CustomerCPM: &override})
		require.NoError(t, err)
		require.NoError(t, f.jobs.Create(ctx, j))

		a, err := f.jobs.FindByID(ctx, j.ID)
		require.NoError(t, err)
		b, err := f.jobs.FindByID(ctx, j.ID)
		require.NoError(t, err)

		require.NoError(t, a.Approve("lead"))
		require.NoError(t, f.jobs.Save(ctx, a))
		require.NoError(t, b.Approve("someone else"))
		assert.True(t, errors.Is(f.jobs.Save(ctx, b), shared.ErrConcurrencyConflict))

		stored, err := f.jobs.FindByID(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ApprovalApproved, stored.ApprovalStatus)
		assert.Equal(t, "lead", stored.ApprovedBy)
		assert.Equal(t, 2, stored.Version)
	})

	t.Run("job numbers are sequential", func(t *testing.T) {
		f := newFixture(t)
		first, err := f.jobs.NextJobNo(ctx)
		require.NoError(t, err)
		second, err := f.jobs.NextJobNo(ctx)
		require.NoError(t, err)
		assert.Equal(t, "J-000001", first)
		assert.Equal(t, "J-000002", second)
	})

	t.Run("list filters and paginates", func(t *testing.T) {
		f := newFixture(t)
		for _, no := range []string{"J-a", "J-b", "J-c"} {
			f.newJob(t, no)
		}
		filter := shared.DefaultFilter()
		filter.PageSize = 2
		filter.OrderBy = "job_no"
		filter.OrderDir = "asc"
		jobs, total, err := f.jobs.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, jobs, 2)
		assert.Equal(t, "J-a", jobs[0].JobNo)

		filter.Filters["approval_status"] = string(job.ApprovalPending)
		_, total, err = f.jobs.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestGormPurchaseOrderRepository_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.newJob(t, "J-7")

	leg, err := trade.BrokerLeg(j)
	require.NoError(t, err)
	stored, created, err := f.pos.CreateIfAbsent(ctx, leg)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, leg.ID, stored.ID)

	again, err := trade.BrokerLeg(j)
	require.NoError(t, err)
	stored, created, err = f.pos.CreateIfAbsent(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, leg.ID, stored.ID)

	n, err := f.pos.CountByJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	byParties, err := f.pos.FindByParties(ctx, trade.PartyKey{JobID: j.ID, OriginCompanyID: f.parties.BrokerID, TargetCompanyID: f.parties.IntermediaryID})
	require.NoError(t, err)
	assert.True(t, byParties.VendorAmount.Equal(j.Financials.IntermediaryPayable()))
}

func TestGormPurchaseOrderRepository_ExternalRef(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	newInbound := func(ref string, amount string) *trade.PurchaseOrder {
		po, err := trade.NewPurchaseOrder(trade.NewPurchaseOrderParams{
			PONumber:        "EXT-1",
			Leg:             trade.LegInbound,
			Source:          trade.SourceWebhook,
			OriginCompanyID: f.parties.IntermediaryID,
			TargetCompanyID: f.parties.ManufacturerID,
			OriginalAmount:  dec(amount),
			VendorAmount:    dec(amount),
			ExternalRef:     ref,
		})
		require.NoError(t, err)
		return po
	}

	first, created, err := f.pos.CreateIfAbsent(ctx, newInbound("ACME-JJSA-1001", "250"))
	require.NoError(t, err)
	require.True(t, created)

	// orders without a job never collide on the party triple
	_, created, err = f.pos.CreateIfAbsent(ctx, newInbound("ACME-JJSA-1002", "300"))
	require.NoError(t, err)
	assert.True(t, created)

	dup, created, err := f.pos.CreateIfAbsent(ctx, newInbound("ACME-JJSA-1001", "999"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, dup.ID)
	assert.True(t, dup.VendorAmount.Equal(dec("250")))

	found, err := f.pos.FindByExternalRef(ctx, "ACME-JJSA-1001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	listed, err := f.pos.List(ctx, trade.PurchaseOrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed, "audit listing only covers job-linked orders")
}

func TestGormPurchaseOrderRepository_Save(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.newJob(t, "J-8")
	leg, err := trade.BrokerLeg(j)
	require.NoError(t, err)
	_, _, err = f.pos.CreateIfAbsent(ctx, leg)
	require.NoError(t, err)

	require.NoError(t, leg.Acknowledge())
	require.NoError(t, f.pos.Save(ctx, leg))

	stale, err := f.pos.FindByID(ctx, leg.ID)
	require.NoError(t, err)
	stale.Version = 1
	require.NoError(t, stale.Cancel())
	assert.True(t, errors.Is(f.pos.Save(ctx, stale), shared.ErrConcurrencyConflict))
}

func TestGormInvoiceRepository_Issue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.newJob(t, "J-9")
	year := time.Now().Year()

	customer, err := billing.NewCustomerInvoice(j)
	require.NoError(t, err)
	require.NoError(t, f.invoices.Issue(ctx, customer))
	assert.Equal(t, billing.FormatInvoiceNo(year, 1), customer.InvoiceNo)

	second, err := billing.NewCustomerInvoice(j)
	require.NoError(t, err)
	assert.True(t, errors.Is(f.invoices.Issue(ctx, second), billing.ErrAlreadyInvoiced))
	assert.Empty(t, second.InvoiceNo)

	leg, err := trade.BrokerLeg(j)
	require.NoError(t, err)
	_, _, err = f.pos.CreateIfAbsent(ctx, leg)
	require.NoError(t, err)
	settlement, err := billing.NewSettlementInvoice(leg)
	require.NoError(t, err)
	require.NoError(t, f.invoices.Issue(ctx, settlement))
	assert.Equal(t, billing.FormatInvoiceNo(year, 2), settlement.InvoiceNo, "a rejected issue does not consume a number")

	found, err := f.invoices.FindCustomerInvoice(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.ID)

	byPO, err := f.invoices.FindSettlementsByPurchaseOrders(ctx, []uuid.UUID{leg.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, byPO, 1)
	assert.True(t, byPO[leg.ID].Amount.Equal(leg.VendorAmount))

	require.NoError(t, found.MarkPaid(time.Now()))
	require.NoError(t, f.invoices.Save(ctx, found))
	paid, err := f.invoices.FindByInvoiceNo(ctx, customer.InvoiceNo)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	assert.Contains(t, f.outbox.types(), billing.EventTypeInvoiceIssued)
}

func TestGormSyncLogRepository_ApplyCorrection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.newJob(t, "J-10")
	leg, err := trade.BrokerLeg(j)
	require.NoError(t, err)
	_, _, err = f.pos.CreateIfAbsent(ctx, leg)
	require.NoError(t, err)
	inv, err := billing.NewSettlementInvoice(leg)
	require.NoError(t, err)
	inv.Amount = dec("500")
	require.NoError(t, f.invoices.Issue(ctx, inv))

	stale, err := f.invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)

	c, err := reconciliation.NewCorrection(inv, leg, valueobject.CentTolerance, reconciliation.TriggerManualAudit, "ops")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.NoError(t, f.logs.ApplyCorrection(ctx, c))

	stored, err := f.invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(leg.VendorAmount))
	n, err := f.logs.CountBySubject(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// a correction computed from a stale copy writes nothing
	stale.Amount = dec("1")
	c2, err := reconciliation.NewCorrection(stale, leg, valueobject.CentTolerance, reconciliation.TriggerManualAudit, "ops")
	require.NoError(t, err)
	assert.True(t, errors.Is(f.logs.ApplyCorrection(ctx, c2), shared.ErrConcurrencyConflict))
	n, err = f.logs.CountBySubject(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	logs, total, err := f.logs.List(ctx, reconciliation.SyncLogFilter{SubjectID: &inv.ID, Trigger: reconciliation.TriggerManualAudit})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, "500.00", logs[0].OldValue)
	assert.Equal(t, "ops", logs[0].ChangedBy)
}

func TestGormInboundEventRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	newEvent := func() *intake.InboundEvent {
		e := intake.NewEmailEvent("acme", "orders@acme.example", "PO for JJSA", "body",
			[]intake.Attachment{{Filename: "po.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")}})
		require.NoError(t, f.events.Create(ctx, e))
		return e
	}
	advance := func(e *intake.InboundEvent, ref string) {
		require.NoError(t, e.Validated("JJSA"))
		require.NoError(t, f.events.Save(ctx, e))
		require.NoError(t, e.Parsed(intake.ExtractedPO{CustomerCode: "JJSA", PONumber: "1001", Amount: dec("250")}))
		require.NoError(t, e.DedupChecked(ref))
		require.NoError(t, f.events.Save(ctx, e))
	}
	inbound := func(ref string) *trade.PurchaseOrder {
		po, err := trade.NewPurchaseOrder(trade.NewPurchaseOrderParams{
			PONumber:        "1001",
			Leg:             trade.LegInbound,
			Source:          trade.SourceWebhook,
			OriginCompanyID: f.parties.IntermediaryID,
			TargetCompanyID: f.parties.ManufacturerID,
			OriginalAmount:  dec("250"),
			VendorAmount:    dec("250"),
			ExternalRef:     ref,
		})
		require.NoError(t, err)
		return po
	}

	first := newEvent()
	advance(first, "ACME-JJSA-1001")
	po, created, err := f.events.CompleteWithPurchaseOrder(ctx, first, inbound("ACME-JJSA-1001"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, intake.StateCreated, first.State)

	second := newEvent()
	advance(second, "ACME-JJSA-1001")
	dup, created, err := f.events.CompleteWithPurchaseOrder(ctx, second, inbound("ACME-JJSA-1001"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, po.ID, dup.ID)
	assert.Equal(t, intake.StateDuplicate, second.State)

	reloaded, err := f.events.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, intake.StateDuplicate, reloaded.State)
	require.NotNil(t, reloaded.PurchaseOrderID)
	assert.Equal(t, po.ID, *reloaded.PurchaseOrderID)
	require.NotNil(t, reloaded.Extracted)
	assert.Equal(t, "1001", reloaded.Extracted.PONumber)
	require.NotNil(t, reloaded.Attachment)
	assert.Equal(t, []byte("%PDF-1.4"), reloaded.Attachment.Content)

	stuck := newEvent()
	stalled, err := f.events.FindStalled(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stalled, 1)
	assert.Equal(t, stuck.ID, stalled[0].ID)

	listed, total, err := f.events.List(ctx, intake.InboundEventFilter{States: []intake.State{intake.StateCreated, intake.StateDuplicate}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, listed, 2)

	// a stale writer loses
	copyOfStuck, err := f.events.FindByID(ctx, stuck.ID)
	require.NoError(t, err)
	require.NoError(t, stuck.Validated("JJSA"))
	require.NoError(t, f.events.Save(ctx, stuck))
	require.NoError(t, copyOfStuck.Reject(intake.RejectInvalidSender))
	assert.True(t, errors.Is(f.events.Save(ctx, copyOfStuck), shared.ErrConcurrencyConflict))
}
