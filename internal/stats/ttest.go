package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Variance selects the variance assumption of a two-sample t-test.
type Variance int

const (
	// Pooled assumes equal group variances (Student's t-test).
	Pooled Variance = iota
	// Welch allows unequal group variances.
	Welch
)

func (v Variance) String() string {
	if v == Welch {
		return "welch"
	}
	return "pooled"
}

// TTestResult is the outcome of a two-sample mean-difference test.
type TTestResult struct {
	Variance         Variance
	ControlMean      float64
	TreatmentMean    float64
	Difference       float64 // treatment - control
	StandardError    float64
	Statistic        float64
	PValue           float64 // two-sided
	DegreesOfFreedom float64
}

// TTest compares mean(treatment) against mean(control).
func TTest(control, treatment []float64, v Variance) (*TTestResult, error) {
	const op = "t-test"

	n1, n2 := float64(len(control)), float64(len(treatment))
	if n1 == 0 {
		return nil, invalid(op, "control_size", 0)
	}
	if n2 == 0 {
		return nil, invalid(op, "treatment_size", 0)
	}

	m1, ss1, err := moments(control)
	if err != nil {
		return nil, invalid(op, "control", math.NaN())
	}
	m2, ss2, err := moments(treatment)
	if err != nil {
		return nil, invalid(op, "treatment", math.NaN())
	}

	res := &TTestResult{
		Variance:      v,
		ControlMean:   m1,
		TreatmentMean: m2,
		Difference:    m2 - m1,
	}

	switch v {
	case Welch:
		if n1 < 2 {
			return nil, invalid(op, "control_size", n1)
		}
		if n2 < 2 {
			return nil, invalid(op, "treatment_size", n2)
		}
		a := ss1 / (n1 - 1) / n1
		b := ss2 / (n2 - 1) / n2
		res.StandardError = math.Sqrt(a + b)
		if res.StandardError > 0 {
			res.DegreesOfFreedom = (a + b) * (a + b) / (a*a/(n1-1) + b*b/(n2-1))
		} else {
			res.DegreesOfFreedom = n1 + n2 - 2
		}
	default:
		df := n1 + n2 - 2
		if df < 1 {
			return nil, invalid(op, "sample_size", n1+n2)
		}
		pooled := (ss1 + ss2) / df
		res.StandardError = math.Sqrt(pooled * (1/n1 + 1/n2))
		res.DegreesOfFreedom = df
	}

	stat, p, err := tStatistic(op, res.Difference, res.StandardError, res.DegreesOfFreedom)
	if err != nil {
		return nil, err
	}
	res.Statistic = stat
	res.PValue = p
	return res, nil
}

// moments returns the mean and the sum of squared deviations.
func moments(x []float64) (mean, ss float64, err error) {
	mean, err = mstats.Mean(x)
	if err != nil {
		return 0, 0, err
	}
	pv, err := mstats.PopulationVariance(x)
	if err != nil {
		return 0, 0, err
	}
	return mean, pv * float64(len(x)), nil
}

// tStatistic turns an estimate and its standard error into t and a two-sided
// p-value. A zero standard error is only meaningful when the estimate is
// also zero.
func tStatistic(op string, estimate, se, df float64) (float64, float64, error) {
	if se == 0 {
		if estimate == 0 {
			return 0, 1, nil
		}
		return 0, 0, undefined(op, "standard_error", 0)
	}

	t := estimate / se
	return t, twoSidedP(t, df), nil
}

func twoSidedP(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	if p > 1 {
		p = 1
	}
	return p
}
