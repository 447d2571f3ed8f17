package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RegressionResult is an ordinary least-squares fit of
//
//	outcome = intercept + coefficient*treated + e
//
// With a single binary regressor the intercept is the control mean and the
// coefficient is the difference in group means.
type RegressionResult struct {
	Intercept        float64 `json:"intercept"`
	Coefficient      float64 `json:"coefficient"`
	StandardError    float64 `json:"standard_error"`
	Statistic        float64 `json:"statistic"`
	PValue           float64 `json:"p_value"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	RSquared         float64 `json:"r_squared"`
}

// residual sums below this are QR round-off on a perfect fit
const perfectFitSSR = 1e-9

// LinearProbabilityModel regresses the stacked outcomes of both groups on a
// treatment indicator and reports the classical standard error of the
// treatment coefficient.
func LinearProbabilityModel(control, treatment []float64) (*RegressionResult, error) {
	const op = "linear probability model"

	n0, n1 := len(control), len(treatment)
	if n0 == 0 {
		return nil, invalid(op, "control_size", 0)
	}
	if n1 == 0 {
		return nil, invalid(op, "treatment_size", 0)
	}
	n := n0 + n1
	df := float64(n - 2)
	if df < 1 {
		return nil, invalid(op, "sample_size", float64(n))
	}

	x := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i, v := range control {
		x.Set(i, 0, 1)
		y.SetVec(i, v)
	}
	for j, v := range treatment {
		i := n0 + j
		x.Set(i, 0, 1)
		x.Set(i, 1, 1)
		y.SetVec(i, v)
	}

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, undefined(op, "design_matrix", 0)
	}

	var fitted, resid mat.VecDense
	fitted.MulVec(x, &beta)
	resid.SubVec(y, &fitted)
	ssr := mat.Dot(&resid, &resid)
	if ssr < perfectFitSSR {
		ssr = 0
	}

	var xtx, inv mat.Dense
	xtx.Mul(x.T(), x)
	if err := inv.Inverse(&xtx); err != nil {
		return nil, undefined(op, "design_matrix", 0)
	}

	res := &RegressionResult{
		Intercept:        beta.AtVec(0),
		Coefficient:      beta.AtVec(1),
		StandardError:    math.Sqrt(ssr / df * inv.At(1, 1)),
		DegreesOfFreedom: df,
	}

	ybar := mat.Sum(y) / float64(n)
	var sst float64
	for i := 0; i < n; i++ {
		d := y.AtVec(i) - ybar
		sst += d * d
	}
	if sst > 0 {
		res.RSquared = 1 - ssr/sst
	}

	// exact zero when the means coincide; QR leaves ~1e-17 behind
	if math.Abs(res.Coefficient) < 1e-15 {
		res.Coefficient = 0
	}

	stat, p, err := tStatistic(op, res.Coefficient, res.StandardError, df)
	if err != nil {
		return nil, err
	}
	res.Statistic = stat
	res.PValue = p
	return res, nil
}
