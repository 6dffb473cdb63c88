package trade

import (
	"context"
	"sync"
	"testing"

	"github.com/printchain/backend/internal/application/apptest"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeService_EnsureCascade(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	svc := NewCascadeService(env.Jobs, env.Orders, nil)
	j := env.CreateJob(t, "J-000010", 10000, pricing.AllocationModeNormal, pricing.Overrides{})

	first, err := svc.EnsureCascade(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, first.Legs, 2)
	assert.Equal(t, 2, first.CreatedCount())

	broker := first.Legs[0].PurchaseOrder
	assert.Equal(t, "PO-J-000010-1", broker.PONumber)
	assert.Equal(t, env.Broker.ID, broker.OriginCompanyID)
	assert.Equal(t, env.Intermediary.ID, broker.TargetCompanyID)
	assert.Equal(t, "675.60", broker.OriginalAmount.StringFixed(2))
	assert.Equal(t, "604.25", broker.VendorAmount.StringFixed(2))
	assert.Equal(t, "71.35", broker.MarginAmount.StringFixed(2))

	manufacturer := first.Legs[1].PurchaseOrder
	assert.Equal(t, "PO-J-000010-2", manufacturer.PONumber)
	assert.Equal(t, env.Intermediary.ID, manufacturer.OriginCompanyID)
	assert.Equal(t, env.Manufacturer.ID, manufacturer.TargetCompanyID)
	assert.True(t, manufacturer.OriginalAmount.Equal(broker.VendorAmount))
	assert.Equal(t, "347.40", manufacturer.VendorAmount.StringFixed(2))
	assert.Equal(t, "102.25", manufacturer.MarginAmount.StringFixed(2))

	second, err := svc.EnsureCascade(ctx, j.ID)
	require.NoError(t, err)
	assert.Zero(t, second.CreatedCount())
	assert.Equal(t, first.PurchaseOrderIDs(), second.PurchaseOrderIDs())

	count, err := env.Orders.CountByJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCascadeService_CompletesPartialChain(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	svc := NewCascadeService(env.Jobs, env.Orders, nil)
	j := env.CreateJob(t, "J-000011", 5000, pricing.AllocationModeManufacturerSuppliesPaper, pricing.Overrides{})

	leg, err := trade.BrokerLeg(j)
	require.NoError(t, err)
	_, created, err := env.Orders.CreateIfAbsent(ctx, leg)
	require.NoError(t, err)
	require.True(t, created)

	result, err := svc.EnsureCascade(ctx, j.ID)
	require.NoError(t, err)
	assert.False(t, result.Legs[0].Created)
	assert.True(t, result.Legs[1].Created)
	assert.Equal(t, leg.ID, result.Legs[0].PurchaseOrder.ID)
}

func TestCascadeService_ConcurrentRunsCreateOneChain(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	svc := NewCascadeService(env.Jobs, env.Orders, nil)
	j := env.CreateJob(t, "J-000012", 2500, pricing.AllocationModeIntermediaryWaivesPaper, pricing.Overrides{})

	var wg sync.WaitGroup
	results := make([]*CascadeResult, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.EnsureCascade(ctx, j.ID)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range results {
		require.NoError(t, errs[i])
		created += results[i].CreatedCount()
		assert.Equal(t, results[0].PurchaseOrderIDs(), results[i].PurchaseOrderIDs())
	}
	assert.Equal(t, 2, created)
	assert.Equal(t, int64(2), env.Count(t, "purchase_orders"))
}

func TestCascadeService_WaitsForApproval(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	svc := NewCascadeService(env.Jobs, env.Orders, nil)
	override := apptest.Dec("60")
	j := env.CreateJob(t, "J-000013", 10000, pricing.AllocationModeNormal, pricing.Overrides{CustomerCPM: &override})

	_, err := svc.EnsureCascade(ctx, j.ID)
	assert.ErrorIs(t, err, ErrAwaitingApproval)
	assert.Zero(t, env.Count(t, "purchase_orders"))

	require.NoError(t, j.Approve("dana"))
	require.NoError(t, env.Jobs.Save(ctx, j))

	result, err := svc.EnsureCascade(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "600.00", result.Legs[0].PurchaseOrder.OriginalAmount.StringFixed(2))
}

func TestCascadeService_StatusChanges(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	svc := NewCascadeService(env.Jobs, env.Orders, nil)
	j := env.CreateJob(t, "J-000014", 1000, pricing.AllocationModeNormal, pricing.Overrides{})
	result, err := svc.EnsureCascade(ctx, j.ID)
	require.NoError(t, err)
	id := result.Legs[1].PurchaseOrder.ID

	acked, err := svc.Acknowledge(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ACKNOWLEDGED", acked.Status)

	cancelled, err := svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.True(t, cancelled.VendorAmount.Equal(result.Legs[1].PurchaseOrder.VendorAmount))

	_, err = svc.Acknowledge(ctx, id)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	listed, err := svc.ListForJob(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "PO-J-000014-1", listed[0].PONumber)
}
