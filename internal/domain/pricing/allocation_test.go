package pricing

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleRate(t *testing.T) *RateCardEntry {
	t.Helper()
	rate, err := NewRateCardEntry("6x9", d("34.74"), d("15.46"), d("18.55"), d("67.56"))
	require.NoError(t, err)
	rate.PaperWeightPer1000 = d("12.5")
	return rate
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, got.Sub(d(want)).Abs().LessThanOrEqual(d("0.01")),
		"%s: want %s, got %s", field, want, got.String())
}

func TestAllocate_Examples(t *testing.T) {
	t.Run("normal split", func(t *testing.T) {
		result, err := Allocate(sampleRate(t), 10000, AllocationModeNormal, Overrides{})
		require.NoError(t, err)

		assertMoney(t, "675.60", result.CustomerTotal, "customerTotal")
		assertMoney(t, "71.35", result.BrokerMarginTotal, "brokerMargin")
		assertMoney(t, "71.35", result.IntermediaryPrintMarginTotal, "intermediaryPrintMargin")
		assertMoney(t, "30.90", result.IntermediaryPaperMarginTotal, "intermediaryPaperMargin")
		assertMoney(t, "102.25", result.IntermediaryTotalMarginTotal, "intermediaryTotalMargin")
		assertMoney(t, "347.40", result.ManufacturerTotal, "manufacturerTotal")
		assertMoney(t, "154.60", result.PaperCostTotal, "paperCostTotal")
		assertMoney(t, "185.50", result.PaperChargedTotal, "paperChargedTotal")
		assert.Equal(t, "125", result.PaperWeightTotal.String())
		assert.False(t, result.RequiresApproval)
		assert.True(t, result.UnderchargeAmount.IsZero())
	})

	t.Run("manufacturer supplies paper", func(t *testing.T) {
		result, err := Allocate(sampleRate(t), 10000, AllocationModeManufacturerSuppliesPaper, Overrides{})
		require.NoError(t, err)

		assertMoney(t, "67.56", result.BrokerMarginTotal, "brokerMargin")
		assertMoney(t, "67.56", result.IntermediaryPrintMarginTotal, "intermediaryPrintMargin")
		assertMoney(t, "540.48", result.ManufacturerTotal, "manufacturerTotal")
		assert.True(t, result.IntermediaryPaperMarginTotal.IsZero())
		assert.True(t, result.IntermediaryPaperMarginCPM.IsZero())
		assert.True(t, result.PaperCostTotal.IsZero())
		assert.True(t, result.PaperChargedTotal.IsZero())
	})

	t.Run("intermediary waives paper margin", func(t *testing.T) {
		result, err := Allocate(sampleRate(t), 10000, AllocationModeIntermediaryWaivesPaper, Overrides{})
		require.NoError(t, err)

		assertMoney(t, "86.80", result.BrokerMarginTotal, "brokerMargin")
		assertMoney(t, "86.80", result.IntermediaryPrintMarginTotal, "intermediaryPrintMargin")
		assert.True(t, result.IntermediaryPaperMarginTotal.IsZero())
		assert.True(t, result.PaperChargedCPM.Equal(d("15.46")))
	})
}

func TestAllocate_TotalsAreExtendedFromCPM(t *testing.T) {
	for _, mode := range AllAllocationModes() {
		t.Run(mode.String(), func(t *testing.T) {
			result, err := Allocate(sampleRate(t), 2750, mode, Overrides{})
			require.NoError(t, err)
			q := result.QuantityInThousands

			pairs := map[string][2]decimal.Decimal{
				"customer":          {result.CustomerCPM, result.CustomerTotal},
				"manufacturer":      {result.ManufacturerCPM, result.ManufacturerTotal},
				"paperCost":         {result.PaperCostCPM, result.PaperCostTotal},
				"paperCharged":      {result.PaperChargedCPM, result.PaperChargedTotal},
				"broker":            {result.BrokerMarginCPM, result.BrokerMarginTotal},
				"intermediaryPrint": {result.IntermediaryPrintMarginCPM, result.IntermediaryPrintMarginTotal},
				"intermediaryPaper": {result.IntermediaryPaperMarginCPM, result.IntermediaryPaperMarginTotal},
				"intermediaryTotal": {result.IntermediaryTotalMarginCPM, result.IntermediaryTotalMarginTotal},
			}
			for name, p := range pairs {
				assert.True(t, p[0].Mul(q).Equal(p[1]), "%s total is not cpm × q", name)
			}
		})
	}
}

func TestAllocate_SumEqualsCustomerTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tolerance := d("0.01")

	for i := 0; i < 500; i++ {
		manufacturer := decimal.New(rng.Int63n(50000), -2)
		paperCost := decimal.New(rng.Int63n(20000), -2)
		paperCharged := paperCost.Add(decimal.New(rng.Int63n(5000), -2))
		customer := manufacturer.Add(paperCharged).Add(decimal.New(rng.Int63n(40000)+1, -2))
		rate, err := NewRateCardEntry("SIZE", manufacturer, paperCost, paperCharged, customer)
		require.NoError(t, err)
		quantity := rng.Int63n(2_000_000) + 1

		for _, mode := range AllAllocationModes() {
			result, err := Allocate(rate, quantity, mode, Overrides{})
			require.NoError(t, err)
			diff := result.PartyTotal().Sub(result.CustomerTotal).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance),
				"mode %s qty %d: parties %s vs customer %s", mode, quantity, result.PartyTotal(), result.CustomerTotal)
		}
	}
}

func TestAllocate_ManufacturerSuppliesPaperIdentity(t *testing.T) {
	rate := sampleRate(t)
	for _, quantity := range []int64{1, 7, 999, 1000, 1001, 33333, 250000, 1234567} {
		result, err := Allocate(rate, quantity, AllocationModeManufacturerSuppliesPaper, Overrides{})
		require.NoError(t, err)

		sum := result.BrokerMarginTotal.Add(result.IntermediaryPrintMarginTotal).Add(result.ManufacturerTotal)
		assert.True(t, sum.Equal(result.CustomerTotal), "qty %d: %s != %s", quantity, sum, result.CustomerTotal)
		assert.True(t, result.BrokerMarginTotal.Equal(result.CustomerTotal.Mul(d("0.10"))))
		assert.True(t, result.ManufacturerTotal.Equal(result.CustomerTotal.Mul(d("0.80"))))
	}
}

func TestAllocate_IntermediaryWaivesPaperInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		paperCost := decimal.New(rng.Int63n(10000), -2)
		rate, err := NewRateCardEntry("SIZE", decimal.New(rng.Int63n(10000), -2), paperCost,
			paperCost.Add(decimal.New(rng.Int63n(3000), -2)), decimal.New(rng.Int63n(30000)+1, -2))
		require.NoError(t, err)

		result, err := Allocate(rate, rng.Int63n(100000)+1, AllocationModeIntermediaryWaivesPaper, Overrides{})
		require.NoError(t, err)
		assert.True(t, result.IntermediaryPaperMarginCPM.IsZero())
		assert.True(t, result.IntermediaryPaperMarginTotal.IsZero())
		assert.True(t, result.PaperChargedCPM.Equal(rate.PaperCostCPM))
	}
}

func TestAllocate_Overrides(t *testing.T) {
	t.Run("override below standard requires approval", func(t *testing.T) {
		override := d("60.00")
		result, err := Allocate(sampleRate(t), 10000, AllocationModeNormal, Overrides{CustomerCPM: &override})
		require.NoError(t, err)

		assert.True(t, result.RequiresApproval)
		assertMoney(t, "75.60", result.UnderchargeAmount, "undercharge")
		assertMoney(t, "600.00", result.CustomerTotal, "customerTotal")
		// (60 - 34.74 - 18.55) / 2 = 3.355 per thousand
		assertMoney(t, "33.55", result.BrokerMarginTotal, "brokerMargin")
		assert.True(t, result.StandardCustomerCPM.Equal(d("67.56")))
	})

	t.Run("override above standard does not", func(t *testing.T) {
		override := d("70")
		result, err := Allocate(sampleRate(t), 10000, AllocationModeManufacturerSuppliesPaper, Overrides{CustomerCPM: &override})
		require.NoError(t, err)

		assert.False(t, result.RequiresApproval)
		assert.True(t, result.UnderchargeAmount.IsZero())
		assertMoney(t, "70.00", result.BrokerMarginTotal, "brokerMargin")
	})

	t.Run("non-positive override is rejected", func(t *testing.T) {
		override := decimal.Zero
		_, err := Allocate(sampleRate(t), 10000, AllocationModeNormal, Overrides{CustomerCPM: &override})
		assert.True(t, errors.Is(err, ErrInvalidRate))
	})
}

func TestAllocate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rate     *RateCardEntry
		quantity int64
		mode     AllocationMode
		want     error
	}{
		{name: "missing rate", rate: nil, quantity: 100, mode: AllocationModeNormal, want: ErrUnknownSize},
		{name: "zero quantity", rate: sampleRate(t), quantity: 0, mode: AllocationModeNormal, want: ErrInvalidQuantity},
		{name: "negative quantity", rate: sampleRate(t), quantity: -5, mode: AllocationModeNormal, want: ErrInvalidQuantity},
		{name: "unknown mode", rate: sampleRate(t), quantity: 100, mode: "SPLIT_THREE_WAYS", want: ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(tt.rate, tt.quantity, tt.mode, Overrides{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAllocate_NegativeMarginIsReported(t *testing.T) {
	rate, err := NewRateCardEntry("TINY", d("50"), d("10"), d("12"), d("55"))
	require.NoError(t, err)

	result, err := Allocate(rate, 1000, AllocationModeNormal, Overrides{})
	require.NoError(t, err)
	assert.True(t, result.HasNegativeMargin())
	assertMoney(t, "-3.50", result.BrokerMarginTotal, "brokerMargin")
}

func TestRateCardEntry_Validate(t *testing.T) {
	_, err := NewRateCardEntry("6x9", d("-1"), d("1"), d("1"), d("10"))
	assert.True(t, errors.Is(err, ErrInvalidRate))

	_, err = NewRateCardEntry("6x9", d("1"), d("1"), d("1"), decimal.Zero)
	assert.True(t, errors.Is(err, ErrInvalidRate))

	_, err = NewRateCardEntry("  ", d("1"), d("1"), d("1"), d("10"))
	assert.Error(t, err)
}

func TestNormalizeSizeKey(t *testing.T) {
	assert.Equal(t, "6X9", NormalizeSizeKey(" 6x9 "))
	assert.Equal(t, "8.5X11", NormalizeSizeKey("8.5 x 11"))
}
