package revenue_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headline-goat/lift-goat/internal/revenue"
	"github.com/headline-goat/lift-goat/internal/stats"
)

func TestProject_Reference(t *testing.T) {
	p := revenue.New(0)
	proj, err := p.Project(revenue.Input{
		BaselineRate:  0.30,
		NewRate:       0.33,
		VisitorVolume: 1462,
		AvgOrderValue: 2729.43,
		TargetRevenue: 100000,
	})
	require.NoError(t, err)

	assert.InDelta(t, 438.6, proj.CurrentCustomers, 1e-9)
	assert.InDelta(t, 482.46, proj.NewCustomers, 1e-9)
	assert.InDelta(t, 119712.80, proj.DeltaRevenue, 0.01)
	assert.InDelta(t, 119712.80*12, proj.AnnualDelta, 0.1)
	assert.True(t, proj.MeetsTarget)
	require.True(t, proj.RelativeDefined)
	assert.InDelta(t, 0.10, proj.RelativeIncrease, 1e-9)
	assert.False(t, proj.HasROI)
}

func TestProject_MissesTarget(t *testing.T) {
	proj, err := revenue.New(0).Project(revenue.Input{
		BaselineRate:  0.30,
		NewRate:       0.31,
		VisitorVolume: 1462,
		AvgOrderValue: 2729.43,
		TargetRevenue: 100000,
	})
	require.NoError(t, err)
	assert.InDelta(t, 39904.27, proj.DeltaRevenue, 0.01)
	assert.False(t, proj.MeetsTarget)
}

func TestProject_TargetIsInclusive(t *testing.T) {
	proj, err := revenue.New(0).Project(revenue.Input{
		BaselineRate:  0.25,
		NewRate:       0.50,
		VisitorVolume: 100,
		AvgOrderValue: 40,
		TargetRevenue: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, proj.DeltaRevenue)
	assert.True(t, proj.MeetsTarget)
}

func TestProject_NegativeDelta(t *testing.T) {
	proj, err := revenue.New(0).Project(revenue.Input{
		BaselineRate:  0.40,
		NewRate:       0.30,
		VisitorVolume: 1000,
		AvgOrderValue: 50,
	})
	require.NoError(t, err)
	assert.InDelta(t, -5000, proj.DeltaRevenue, 1e-9)
	assert.False(t, proj.MeetsTarget)
}

func TestProject_ROI(t *testing.T) {
	p := &revenue.Projector{MonthsPerYear: 12, SpendCap: 50000}
	proj, err := p.Project(revenue.Input{
		BaselineRate:  0.25,
		NewRate:       0.50,
		VisitorVolume: 1000,
		AvgOrderValue: 400,
	})
	require.NoError(t, err)

	require.True(t, proj.HasROI)
	assert.InDelta(t, 100000, proj.DeltaRevenue, 1e-9)
	assert.InDelta(t, 1.0, proj.ROI, 1e-12)
	assert.InDelta(t, 23.0, proj.AnnualROI, 1e-12)
}

func TestProject_ZeroBaseline(t *testing.T) {
	proj, err := revenue.New(0).Project(revenue.Input{
		BaselineRate:  0,
		NewRate:       0.05,
		VisitorVolume: 1000,
		AvgOrderValue: 20,
	})
	require.NoError(t, err)
	assert.False(t, proj.RelativeDefined)
	assert.InDelta(t, 1000, proj.DeltaRevenue, 1e-9)
}

func TestProject_InvalidInput(t *testing.T) {
	valid := revenue.Input{BaselineRate: 0.3, NewRate: 0.33, VisitorVolume: 100, AvgOrderValue: 10}

	tests := []struct {
		name   string
		mutate func(*revenue.Input)
	}{
		{"baseline above one", func(in *revenue.Input) { in.BaselineRate = 1.2 }},
		{"negative new rate", func(in *revenue.Input) { in.NewRate = -0.1 }},
		{"negative volume", func(in *revenue.Input) { in.VisitorVolume = -1 }},
		{"NaN order value", func(in *revenue.Input) { in.AvgOrderValue = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := revenue.New(0).Project(in)
			assert.ErrorIs(t, err, stats.ErrInvalidInput)
		})
	}

	_, err := (&revenue.Projector{SpendCap: -1}).Project(valid)
	assert.ErrorIs(t, err, stats.ErrInvalidInput)
}

func TestAverageOrderValue(t *testing.T) {
	aov, err := revenue.AverageOrderValue([]float64{0, 100, 0, 300, -50, 200})
	require.NoError(t, err)
	assert.InDelta(t, 200, aov, 1e-12)

	_, err = revenue.AverageOrderValue([]float64{0, 0, -10})
	assert.ErrorIs(t, err, stats.ErrUndefined)
}
