package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headline-goat/lift-goat/internal/stats"
	"github.com/headline-goat/lift-goat/internal/testutil"
)

func TestRunTest_Reference(t *testing.T) {
	control := testutil.Binary(200, 60)
	treatment := testutil.Binary(180, 70)

	res, err := stats.RunTest(control, treatment)
	require.NoError(t, err)

	assert.InDelta(t, 0.30, res.ControlMean, 1e-12)
	assert.InDelta(t, 70.0/180, res.TreatmentMean, 1e-12)
	assert.InDelta(t, 0.0888888888888889, res.Estimate, 1e-12)
	assert.InDelta(t, 0.04865591703441626, res.StandardError, 1e-12)
	assert.InDelta(t, 1.8268875464008676, res.Statistic, 1e-9)
	assert.Equal(t, 378.0, res.DegreesOfFreedom)
	assert.Greater(t, res.PValue, 0.05)
	assert.Less(t, res.PValue, 0.1)
	assert.False(t, res.Significant(0.05))
	assert.True(t, res.Significant(0.1))

	require.True(t, res.RelativeDefined)
	assert.InDelta(t, 0.0888888888888889/0.30, res.RelativeEffect, 1e-12)
}

func TestRunTest_RegressionAgreesWithTTest(t *testing.T) {
	samples := []struct {
		name      string
		control   []float64
		treatment []float64
	}{
		{"reference", testutil.Binary(200, 60), testutil.Binary(180, 70)},
		{"small", testutil.Binary(12, 3), testutil.Binary(15, 9)},
		{"negative lift", testutil.Binary(1000, 320), testutil.Binary(1000, 281)},
		{"unbalanced", testutil.Binary(5000, 1511), testutil.Binary(800, 262)},
	}

	for _, s := range samples {
		t.Run(s.name, func(t *testing.T) {
			res, err := stats.RunTest(s.control, s.treatment)
			require.NoError(t, err)
			reg := res.Regression
			require.NotNil(t, reg)

			assert.InDelta(t, res.ControlMean, reg.Intercept, 1e-9)
			assert.InDelta(t, res.Estimate, reg.Coefficient, 1e-9)
			assert.InDelta(t, res.StandardError, reg.StandardError, 1e-9)
			assert.InDelta(t, res.Statistic, reg.Statistic, 1e-9)
			assert.InDelta(t, res.PValue, reg.PValue, 1e-9)
			assert.Equal(t, res.DegreesOfFreedom, reg.DegreesOfFreedom)
		})
	}
}

func TestLinearProbabilityModel_RSquared(t *testing.T) {
	reg, err := stats.LinearProbabilityModel(testutil.Binary(200, 60), testutil.Binary(180, 70))
	require.NoError(t, err)
	assert.InDelta(t, 0.00875213675213038, reg.RSquared, 1e-9)
}

func TestRunTest_IdenticalMeans(t *testing.T) {
	control := []float64{1, 0, 0, 1}
	treatment := []float64{0, 1, 1, 0, 1, 0, 0, 1}

	res, err := stats.RunTest(control, treatment)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Estimate)
	assert.Equal(t, 0.0, res.Statistic)
	assert.InDelta(t, 1.0, res.PValue, 1e-12)
	assert.Equal(t, 0.0, res.Regression.Coefficient)
	assert.InDelta(t, 1.0, res.Regression.PValue, 1e-12)
}

func TestRunTest_NoVariance(t *testing.T) {
	res, err := stats.RunTest(testutil.Binary(50, 0), testutil.Binary(40, 0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Statistic)
	assert.Equal(t, 1.0, res.PValue)
	assert.False(t, res.RelativeDefined)

	_, err = stats.RunTest(testutil.Binary(50, 0), testutil.Binary(40, 40))
	assert.ErrorIs(t, err, stats.ErrUndefined)
}

func TestRunTest_ZeroControlRate(t *testing.T) {
	res, err := stats.RunTest(testutil.Binary(100, 0), testutil.Binary(100, 5))
	require.NoError(t, err)
	assert.False(t, res.RelativeDefined)
	assert.Greater(t, res.Estimate, 0.0)
}

func TestRunTest_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		control   []float64
		treatment []float64
	}{
		{"empty control", nil, []float64{1, 0}},
		{"empty treatment", []float64{1, 0}, []float64{}},
		{"non-binary", []float64{1, 0, 3}, []float64{1, 0}},
		{"one each", []float64{1}, []float64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stats.RunTest(tt.control, tt.treatment)
			assert.ErrorIs(t, err, stats.ErrInvalidInput)
		})
	}
}

func TestTTest_Welch(t *testing.T) {
	res, err := stats.TTest(testutil.Binary(200, 60), testutil.Binary(180, 70), stats.Welch)
	require.NoError(t, err)
	assert.Equal(t, stats.Welch, res.Variance)
	assert.InDelta(t, 0.04881551139535777, res.StandardError, 1e-12)
	assert.InDelta(t, 1.8209148352247315, res.Statistic, 1e-9)
	assert.InDelta(t, 367.68930196318547, res.DegreesOfFreedom, 1e-6)

	_, err = stats.TTest([]float64{1}, []float64{0, 1}, stats.Welch)
	assert.ErrorIs(t, err, stats.ErrInvalidInput)
}

func TestRelativeImpact(t *testing.T) {
	rel, err := stats.RelativeImpact(0.03, 0.30)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, rel, 1e-12)

	_, err = stats.RelativeImpact(0.03, 0)
	assert.ErrorIs(t, err, stats.ErrUndefined)
}

func TestZTest_ClearWinner(t *testing.T) {
	res, err := stats.ZTest(
		stats.Observation{Trials: 1000, Successes: 50},
		stats.Observation{Trials: 1000, Successes: 100},
	)
	require.NoError(t, err)
	assert.InDelta(t, 4.244763599780089, res.Statistic, 1e-9)
	assert.Greater(t, res.Confidence, 0.95)
	assert.Less(t, res.PValue, 0.001)
}

func TestZTest_NoDifference(t *testing.T) {
	res, err := stats.ZTest(
		stats.Observation{Trials: 1000, Successes: 100},
		stats.Observation{Trials: 1000, Successes: 100},
	)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Statistic)
	assert.InDelta(t, 1.0, res.PValue, 1e-12)
	assert.InDelta(t, 0.5, res.Confidence, 1e-12)
}

func TestZTest_TreatmentWorse(t *testing.T) {
	res, err := stats.ZTest(
		stats.Observation{Trials: 1000, Successes: 100},
		stats.Observation{Trials: 1000, Successes: 50},
	)
	require.NoError(t, err)
	assert.Less(t, res.Confidence, 0.05)
}

func TestZTest_Errors(t *testing.T) {
	_, err := stats.ZTest(stats.Observation{}, stats.Observation{Trials: 10, Successes: 1})
	assert.ErrorIs(t, err, stats.ErrUndefined)

	_, err = stats.ZTest(stats.Observation{Trials: 10, Successes: 11}, stats.Observation{Trials: 10, Successes: 1})
	assert.ErrorIs(t, err, stats.ErrInvalidInput)
}
