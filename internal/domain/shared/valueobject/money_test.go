package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPerThousand(t *testing.T) {
	assert.True(t, decimal.RequireFromString("10").Equal(PerThousand(10000)))
	assert.True(t, decimal.RequireFromString("0.001").Equal(PerThousand(1)))
	assert.True(t, decimal.RequireFromString("1234.567").Equal(PerThousand(1234567)))
}

func TestExtendCPM(t *testing.T) {
	got := ExtendCPM(decimal.RequireFromString("7.135"), PerThousand(10000))
	assert.Equal(t, "71.35", got.String())
}

func TestWithinTolerance(t *testing.T) {
	a := decimal.RequireFromString("100.00")
	assert.True(t, WithinTolerance(a, decimal.RequireFromString("100.01"), CentTolerance))
	assert.True(t, WithinTolerance(a, decimal.RequireFromString("99.99"), CentTolerance))
	assert.False(t, WithinTolerance(a, decimal.RequireFromString("100.011"), CentTolerance))
}

func TestRoundingHelpers(t *testing.T) {
	assert.Equal(t, "0.13", RoundCents(decimal.RequireFromString("0.125")).String())
	assert.Equal(t, "1.00", FormatCents(decimal.NewFromInt(1)))
	assert.Equal(t, "0.12345679", Normalize(decimal.RequireFromString("0.123456789")).String())
}
