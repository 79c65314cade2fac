package calculation

import (
	"context"
	"errors"
	"testing"

	"github.com/rgehrsitz/psupdate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberGrouperSumsConsecutiveRows(t *testing.T) {
	ctx := context.Background()
	g := NewMemberGrouper(NewSliceMemberSource([]domain.MemberRow{
		{Badge: 10, SSN: 100, Name: "ALPHA", Points: 400, BeginningBalance: dec("1000")},
		{Badge: 10, SSN: 100, Name: "ALPHA", Points: 600, BeginningBalance: dec("500")},
		{Badge: 20, SSN: 200, Name: "BRAVO", Points: 50},
	}))

	p, ok, err := g.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(100), p.SSN)
	assert.Equal(t, int64(1000), p.TotalPoints)
	assertDec(t, "1500", p.BeginningBalance)
	assert.Equal(t, 2, p.RowCount)

	p, ok, err = g.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(200), p.SSN)
	assert.Equal(t, int64(50), p.TotalPoints)

	_, ok, err = g.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = g.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "stays exhausted")
}

func TestMemberGrouperIdentityFollowsLastRow(t *testing.T) {
	g := NewMemberGrouper(NewSliceMemberSource([]domain.MemberRow{
		{Badge: 10, SSN: 100, Name: "ALPHA", Points: 100, PriorEtva: dec("300"), YearsInPlan: 2,
			PriorContribution: dec("11"), PriorForfeiture: dec("1")},
		{Badge: 10, SSN: 100, Name: "ALPHA", Points: 100, PriorEtva: dec("75"), YearsInPlan: 7,
			PriorContribution: dec("22"), PriorForfeiture: dec("2")},
	}))

	p, ok, err := g.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assertDec(t, "75", p.PriorEtva)
	assert.Equal(t, 7, p.YearsInPlan)
	assertDec(t, "22", p.PriorContribution)
	assertDec(t, "2", p.PriorForfeiture)
	assert.Equal(t, int64(200), p.TotalPoints)
}

func TestMemberGrouperEmptyStream(t *testing.T) {
	_, ok, err := NewMemberGrouper(NewSliceMemberSource(nil)).Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemberGrouperOutOfOrder(t *testing.T) {
	ctx := context.Background()
	g := NewMemberGrouper(NewSliceMemberSource([]domain.MemberRow{
		{Badge: 1, SSN: 100, Points: 1},
		{Badge: 2, SSN: 200, Points: 1},
		{Badge: 1, SSN: 100, Points: 1},
		{Badge: 3, SSN: 300, Points: 1},
	}))

	var keys []int64
	var outOfOrder int
	for {
		p, ok, err := g.Next(ctx)
		if errors.Is(err, ErrOutOfOrder) {
			outOfOrder++
			continue
		}
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, p.SSN)
	}
	assert.Equal(t, []int64{100, 200, 300}, keys)
	assert.Equal(t, 1, outOfOrder)
}

type failingSource struct{}

func (failingSource) Next(context.Context) (domain.MemberRow, bool, error) {
	return domain.MemberRow{}, false, errors.New("disk gone")
}

func TestMemberGrouperPropagatesSourceError(t *testing.T) {
	_, ok, err := NewMemberGrouper(failingSource{}).Next(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestBeneficiaryDeduper(t *testing.T) {
	ctx := context.Background()
	d := NewBeneficiaryDeduper(NewSliceBeneficiarySource([]domain.BeneficiaryRow{
		{PSN: 5000001, SSN: 900, Name: "FIRST"},
		{PSN: 5000001, SSN: 900, Name: "FIRST AGAIN"},
		{PSN: 5000002, SSN: 901, Name: "SECOND"},
		{PSN: 5000001, SSN: 900, Name: "NOT CONSECUTIVE"},
	}))

	var names []string
	for {
		row, ok, err := d.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		names = append(names, row.Name)
	}
	assert.Equal(t, []string{"FIRST", "SECOND", "NOT CONSECUTIVE"}, names)
	assert.Equal(t, 1, d.Skipped)
}
