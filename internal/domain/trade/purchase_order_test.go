package trade

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricedJob(t *testing.T, mode pricing.AllocationMode) *job.Job {
	t.Helper()
	rate, err := pricing.NewRateCardEntry("6x9",
		decimal.RequireFromString("34.74"),
		decimal.RequireFromString("15.46"),
		decimal.RequireFromString("18.55"),
		decimal.RequireFromString("67.56"))
	require.NoError(t, err)
	j, err := job.NewJob("J-000042", "", job.Parties{
		CustomerID:     uuid.New(),
		BrokerID:       uuid.New(),
		IntermediaryID: uuid.New(),
		ManufacturerID: uuid.New(),
	}, rate, 10000, mode, pricing.Overrides{})
	require.NoError(t, err)
	return j
}

func TestCascadeLegs(t *testing.T) {
	j := pricedJob(t, pricing.AllocationModeNormal)

	leg1, err := BrokerLeg(j)
	require.NoError(t, err)
	assert.Equal(t, "PO-J-000042-1", leg1.PONumber)
	assert.Equal(t, j.BrokerID, leg1.OriginCompanyID)
	assert.Equal(t, j.IntermediaryID, leg1.TargetCompanyID)
	assert.True(t, leg1.OriginalAmount.Equal(decimal.RequireFromString("675.60")))
	assert.True(t, leg1.VendorAmount.Equal(decimal.RequireFromString("604.25")))
	assert.True(t, leg1.MarginAmount.Equal(decimal.RequireFromString("71.35")))
	assert.Equal(t, SourceCascade, leg1.Source)
	assert.Nil(t, leg1.ExternalRef)

	leg2, err := ManufacturerLeg(j, leg1)
	require.NoError(t, err)
	assert.Equal(t, "PO-J-000042-2", leg2.PONumber)
	assert.Equal(t, j.IntermediaryID, leg2.OriginCompanyID)
	assert.Equal(t, j.ManufacturerID, leg2.TargetCompanyID)
	assert.True(t, leg2.OriginalAmount.Equal(leg1.VendorAmount))
	assert.True(t, leg2.VendorAmount.Equal(decimal.RequireFromString("347.40")))
	assert.True(t, leg2.MarginAmount.Equal(decimal.RequireFromString("102.25")))
	require.Len(t, leg2.GetDomainEvents(), 1)
	assert.Equal(t, EventTypePurchaseOrderIssued, leg2.GetDomainEvents()[0].EventType())
}

func TestInboundManufacturerLeg(t *testing.T) {
	j := pricedJob(t, pricing.AllocationModeNormal)

	po, err := InboundManufacturerLeg(j, " ACME-JJSA-EST-1 ")
	require.NoError(t, err)
	assert.Equal(t, "PO-J-000042-2", po.PONumber)
	assert.Equal(t, LegIntermediaryToManufacturer, po.Leg)
	assert.Equal(t, SourceWebhook, po.Source)
	assert.Equal(t, j.IntermediaryID, po.OriginCompanyID)
	assert.Equal(t, j.ManufacturerID, po.TargetCompanyID)
	assert.True(t, po.OriginalAmount.Equal(decimal.RequireFromString("604.25")))
	assert.True(t, po.VendorAmount.Equal(decimal.RequireFromString("347.40")))
	require.NotNil(t, po.ExternalRef)
	assert.Equal(t, "ACME-JJSA-EST-1", *po.ExternalRef)
	require.NotNil(t, po.JobID)
	assert.Equal(t, j.ID, *po.JobID)
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	company := uuid.New()
	tests := []struct {
		name   string
		params NewPurchaseOrderParams
		code   string
	}{
		{
			name:   "missing origin",
			params: NewPurchaseOrderParams{PONumber: "X", TargetCompanyID: company},
			code:   "INVALID_PARTIES",
		},
		{
			name:   "self order",
			params: NewPurchaseOrderParams{PONumber: "X", OriginCompanyID: company, TargetCompanyID: company},
			code:   "INVALID_PARTIES",
		},
		{
			name:   "empty number",
			params: NewPurchaseOrderParams{PONumber: " ", OriginCompanyID: uuid.New(), TargetCompanyID: company},
			code:   "INVALID_PO_NUMBER",
		},
		{
			name: "negative amount",
			params: NewPurchaseOrderParams{PONumber: "X", OriginCompanyID: uuid.New(), TargetCompanyID: company,
				VendorAmount: decimal.NewFromInt(-1)},
			code: "INVALID_AMOUNT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPurchaseOrder(tt.params)
			require.Error(t, err)
			assert.Equal(t, tt.code, shared.CodeOf(err))
		})
	}
}

func TestPurchaseOrder_ExternalRefIsTrimmed(t *testing.T) {
	po, err := NewPurchaseOrder(NewPurchaseOrderParams{
		PONumber:        "BR-1001",
		Leg:             LegInbound,
		Source:          SourceWebhook,
		OriginCompanyID: uuid.New(),
		TargetCompanyID: uuid.New(),
		VendorAmount:    decimal.NewFromInt(100),
		ExternalRef:     "  BRAD-ACME-1001 ",
	})
	require.NoError(t, err)
	require.NotNil(t, po.ExternalRef)
	assert.Equal(t, "BRAD-ACME-1001", *po.ExternalRef)
	assert.False(t, po.HasJob())
}

func TestPurchaseOrder_StatusTransitions(t *testing.T) {
	po, err := BrokerLeg(pricedJob(t, pricing.AllocationModeNormal))
	require.NoError(t, err)

	require.NoError(t, po.Acknowledge())
	assert.Equal(t, PurchaseOrderStatusAcknowledged, po.Status)
	assert.True(t, errors.Is(po.Acknowledge(), shared.ErrInvalidState))
	require.NoError(t, po.Cancel())
	assert.True(t, errors.Is(po.Cancel(), shared.ErrInvalidState))
	assert.Equal(t, 3, po.GetVersion())
}
