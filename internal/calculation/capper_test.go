package calculation

import (
	"testing"

	"github.com/rgehrsitz/psupdate/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapUnderMaximum(t *testing.T) {
	pv := basePointValues()
	a := domain.Allocation{Contribution: dec("50.00"), Forfeiture: dec("20.00")}

	got, capped, diag := Cap(a, decimal.Zero, 1, 1000, pv)
	assert.False(t, capped)
	assert.Nil(t, diag)
	assertDec(t, "20.00", got.Forfeiture)
	assert.True(t, got.MaxOver.IsZero())
}

func TestCapAtMaximumIsNotCapped(t *testing.T) {
	pv := basePointValues()
	pv.MaximumContribution = dec("70.00")

	_, capped, _ := Cap(domain.Allocation{Contribution: dec("50.00"), Forfeiture: dec("20.00")}, decimal.Zero, 1, 1000, pv)
	assert.False(t, capped)
}

func TestCapReducesForfeiture(t *testing.T) {
	pv := basePointValues()
	pv.MaximumContribution = dec("60.00")
	a := domain.Allocation{Contribution: dec("50.00"), Forfeiture: dec("20.00")}

	got, capped, diag := Cap(a, decimal.Zero, 7, 1000, pv)
	assert.True(t, capped)
	assert.Nil(t, diag)
	assertDec(t, "10.00", got.Forfeiture)
	assertDec(t, "10.00", got.MaxOver)
	assert.Equal(t, int64(1000), got.MaxPoints)

	total := got.Contribution.Add(got.Forfeiture)
	assert.True(t, total.LessThanOrEqual(pv.MaximumContribution))
}

func TestCapCountsMilitary(t *testing.T) {
	pv := basePointValues()
	pv.MaximumContribution = dec("100.00")
	a := domain.Allocation{Contribution: dec("50.00"), Forfeiture: dec("20.00")}

	got, capped, diag := Cap(a, dec("40.00"), 7, 1000, pv)
	assert.True(t, capped)
	assert.Nil(t, diag)
	assertDec(t, "10.00", got.MaxOver)
	assertDec(t, "10.00", got.Forfeiture)
}

func TestCapForfeitureInsufficient(t *testing.T) {
	pv := basePointValues()
	pv.MaximumContribution = dec("60.00")
	a := domain.Allocation{Contribution: dec("50.00"), Forfeiture: dec("20.00")}

	got, capped, diag := Cap(a, dec("100.00"), 7, 1000, pv)
	assert.True(t, capped)
	require.NotNil(t, diag)
	assert.True(t, got.Forfeiture.IsZero())
	assertDec(t, "110.00", got.MaxOver)
	assert.Equal(t, int64(7), diag.Badge)
	assert.Contains(t, diag.Error(), "FORFEITURES NOT ENOUGH FOR AMOUNT OVER MAX")
}

func TestCapOverEqualsForfeiture(t *testing.T) {
	pv := basePointValues()
	pv.MaximumContribution = dec("50.00")
	a := domain.Allocation{Contribution: dec("50.00"), Forfeiture: dec("20.00")}

	got, capped, diag := Cap(a, decimal.Zero, 7, 1000, pv)
	assert.True(t, capped)
	assert.NotNil(t, diag)
	assert.True(t, got.Forfeiture.IsZero())
	assertDec(t, "50.00", got.Contribution.Add(got.Forfeiture))
}
