// Package apptest wires the gorm repositories over a private sqlite database
// with the real outbox publisher, and seeds the four parties and one rate card
// entry. Application service tests build on it.
package apptest

import (
	"context"
	"testing"

	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/infrastructure/event"
	"github.com/printchain/backend/internal/infrastructure/persistence"
	"github.com/printchain/backend/internal/infrastructure/persistence/testdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Env is a seeded database with every repository
type Env struct {
	DB        *gorm.DB
	Outbox    *event.GormOutboxRepository
	Rates     *persistence.GormRateCardRepository
	Companies *persistence.GormCompanyRepository
	Jobs      *persistence.GormJobRepository
	Orders    *persistence.GormPurchaseOrderRepository
	Invoices  *persistence.GormInvoiceRepository
	SyncLogs  *persistence.GormSyncLogRepository
	Inbound   *persistence.GormInboundEventRepository

	Customer     *partner.Company
	Broker       *partner.Company
	Intermediary *partner.Company
	Manufacturer *partner.Company
	Rate         *pricing.RateCardEntry
}

// New opens and seeds a database for t. The rate card holds size 6X9 at
// manufacturer 34.74, paper cost 15.46, paper charged 18.55 and customer 67.56.
func New(t testing.TB) *Env {
	t.Helper()
	ctx := context.Background()
	db := testdb.Open(t)
	publisher := event.NewOutboxPublisher(event.NewDefaultSerializer(), 0)

	env := &Env{
		DB:        db,
		Outbox:    event.NewGormOutboxRepository(db),
		Rates:     persistence.NewGormRateCardRepository(db),
		Companies: persistence.NewGormCompanyRepository(db),
		Jobs:      persistence.NewGormJobRepository(db, publisher),
		Orders:    persistence.NewGormPurchaseOrderRepository(db, publisher),
		Invoices:  persistence.NewGormInvoiceRepository(db, publisher),
		SyncLogs:  persistence.NewGormSyncLogRepository(db),
		Inbound:   persistence.NewGormInboundEventRepository(db, publisher),
	}

	env.Customer = env.company(t, "Jolly Jumbo SA", partner.RoleCustomer, "JJSA", "ap@jjsa.example")
	env.Broker = env.company(t, "Northline Brokerage", partner.RoleBroker, "", "billing@northline.example")
	env.Intermediary = env.company(t, "Acme Print Services", partner.RoleIntermediary, "ACME", "orders@acme.example")
	env.Manufacturer = env.company(t, "Riverside Press", partner.RoleManufacturer, "", "ar@riverside.example")

	rate, err := pricing.NewRateCardEntry("6x9", Dec("34.74"), Dec("15.46"), Dec("18.55"), Dec("67.56"))
	require.NoError(t, err)
	rate.PaperWeightPer1000 = Dec("12.5")
	require.NoError(t, env.Rates.Save(ctx, rate))
	env.Rate = rate
	return env
}

func (e *Env) company(t testing.TB, name string, role partner.Role, code, email string) *partner.Company {
	t.Helper()
	c, err := partner.NewCompany(name, role, code, email)
	require.NoError(t, err)
	require.NoError(t, e.Companies.Save(context.Background(), c))
	return c
}

// Parties returns the seeded supply chain
func (e *Env) Parties() job.Parties {
	return job.Parties{
		CustomerID:     e.Customer.ID,
		BrokerID:       e.Broker.ID,
		IntermediaryID: e.Intermediary.ID,
		ManufacturerID: e.Manufacturer.ID,
	}
}

// CreateJob stores a job priced from the seeded rate
func (e *Env) CreateJob(t testing.TB, jobNo string, quantity int64, mode pricing.AllocationMode, overrides pricing.Overrides) *job.Job {
	t.Helper()
	j, err := job.NewJob(jobNo, "test job", e.Parties(), e.Rate, quantity, mode, overrides)
	require.NoError(t, err)
	require.NoError(t, e.Jobs.Create(context.Background(), j))
	return j
}

// OutboxTypes lists the event types stored in the outbox, oldest first
func (e *Env) OutboxTypes(t testing.TB) []string {
	t.Helper()
	entries, err := e.Outbox.FindPending(context.Background(), 1000)
	require.NoError(t, err)
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.EventType
	}
	return out
}

// Count returns the number of rows in table
func (e *Env) Count(t testing.TB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.DB.Table(table).Count(&n).Error)
	return n
}

// Dec parses a decimal literal
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var _ shared.OutboxRepository = (*event.GormOutboxRepository)(nil)
