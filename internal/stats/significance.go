package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TestResult is the evaluation of a control/treatment experiment on binary
// outcomes.
type TestResult struct {
	ControlMean   float64 `json:"control_mean"`
	TreatmentMean float64 `json:"treatment_mean"`
	// Estimate is the absolute rate difference, treatment - control.
	Estimate float64 `json:"estimate"`
	// RelativeEffect is Estimate / ControlMean. Only set when RelativeDefined.
	RelativeEffect   float64 `json:"relative_effect"`
	RelativeDefined  bool    `json:"relative_defined"`
	StandardError    float64 `json:"standard_error"`
	Statistic        float64 `json:"statistic"`
	PValue           float64 `json:"p_value"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`

	// Regression is the equivalent linear probability model fit.
	Regression *RegressionResult `json:"regression"`
}

// Significant reports whether the two-sided p-value clears alpha.
func (r *TestResult) Significant(alpha float64) bool {
	return r.PValue < alpha
}

// RunTest runs a pooled-variance t-test and the linear probability model
// on two binary outcome samples.
func RunTest(control, treatment []float64) (*TestResult, error) {
	const op = "run test"

	if len(control) == 0 {
		return nil, invalid(op, "control_size", 0)
	}
	if len(treatment) == 0 {
		return nil, invalid(op, "treatment_size", 0)
	}
	if err := validateBinary(op, control); err != nil {
		return nil, err
	}
	if err := validateBinary(op, treatment); err != nil {
		return nil, err
	}

	tt, err := TTest(control, treatment, Pooled)
	if err != nil {
		return nil, err
	}
	reg, err := LinearProbabilityModel(control, treatment)
	if err != nil {
		return nil, err
	}

	res := &TestResult{
		ControlMean:      tt.ControlMean,
		TreatmentMean:    tt.TreatmentMean,
		Estimate:         tt.Difference,
		StandardError:    tt.StandardError,
		Statistic:        tt.Statistic,
		PValue:           tt.PValue,
		DegreesOfFreedom: tt.DegreesOfFreedom,
		Regression:       reg,
	}

	if rel, err := RelativeImpact(res.Estimate, res.ControlMean); err == nil {
		res.RelativeEffect = rel
		res.RelativeDefined = true
	}

	return res, nil
}

// RelativeImpact is the lift of an absolute difference over the control mean.
func RelativeImpact(absolute, controlMean float64) (float64, error) {
	if controlMean == 0 {
		return 0, undefined("relative impact", "control_mean", 0)
	}
	return absolute / controlMean, nil
}

// ZTestResult is a pooled two-proportion z-test over aggregated counts.
type ZTestResult struct {
	ControlRate   float64 `json:"control_rate"`
	TreatmentRate float64 `json:"treatment_rate"`
	Estimate      float64 `json:"estimate"`
	StandardError float64 `json:"standard_error"`
	Statistic     float64 `json:"statistic"`
	PValue        float64 `json:"p_value"` // two-sided
	// Confidence is P(Z < z): the confidence that treatment beats control.
	Confidence float64 `json:"confidence"`
}

// ZTest performs a two-proportion z-test for group-level aggregates.
func ZTest(control, treatment Observation) (*ZTestResult, error) {
	const op = "z-test"

	pC, err := control.Rate()
	if err != nil {
		return nil, err
	}
	pT, err := treatment.Rate()
	if err != nil {
		return nil, err
	}

	// Pooled proportion under the null hypothesis pC = pT
	pooled := float64(control.Successes+treatment.Successes) / float64(control.Trials+treatment.Trials)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(control.Trials) + 1/float64(treatment.Trials)))

	res := &ZTestResult{
		ControlRate:   pC,
		TreatmentRate: pT,
		Estimate:      pT - pC,
		StandardError: se,
	}

	if se == 0 {
		if res.Estimate != 0 {
			return nil, undefined(op, "standard_error", 0)
		}
		res.PValue = 1
		res.Confidence = 0.5
		return res, nil
	}

	res.Statistic = res.Estimate / se
	res.PValue = 2 * distuv.UnitNormal.CDF(-math.Abs(res.Statistic))
	res.Confidence = distuv.UnitNormal.CDF(res.Statistic)
	return res, nil
}
