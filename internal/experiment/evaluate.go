package experiment

import (
	"fmt"
	"log/slog"

	"github.com/headline-goat/lift-goat/internal/revenue"
	"github.com/headline-goat/lift-goat/internal/stats"
)

// GroupSample is the per-visitor binary outcome sequence of one group.
type GroupSample struct {
	Label    string
	Outcomes []float64
}

// EvaluationInput is everything needed to judge a finished experiment.
type EvaluationInput struct {
	Control   GroupSample
	Treatment GroupSample
	Alpha     float64

	// Revenue assumptions. VisitorVolume is the traffic of one period
	// (a month) the observed rates are projected onto.
	VisitorVolume float64
	AvgOrderValue float64
	TargetRevenue float64
	Projector     *revenue.Projector
}

// GroupSummary is the observed conversion of one group.
type GroupSummary struct {
	Label       string  `json:"label"`
	Visitors    int     `json:"visitors"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
}

// Evaluation is the statistical and financial verdict of an experiment.
type Evaluation struct {
	Control   GroupSummary `json:"control"`
	Treatment GroupSummary `json:"treatment"`
	Alpha     float64      `json:"alpha"`

	Test  *stats.TestResult  `json:"test"`
	ZTest *stats.ZTestResult `json:"z_test"`

	Significant            bool                `json:"significant"`
	Projection             *revenue.Projection `json:"projection,omitempty"`
	FinanciallySignificant bool                `json:"financially_significant"`
}

// Evaluate runs the hypothesis tests on both groups and projects the
// observed rate difference onto revenue.
func Evaluate(in EvaluationInput, logger *slog.Logger) (*Evaluation, error) {
	logger = orDefault(logger)

	if !(in.Alpha > 0 && in.Alpha < 1) {
		return nil, &stats.Error{Op: "evaluate", Param: "alpha", Value: in.Alpha, Err: stats.ErrInvalidInput}
	}

	result, err := stats.RunTest(in.Control.Outcomes, in.Treatment.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("hypothesis test: %w", err)
	}

	control, err := summarize(in.Control, in.Alpha)
	if err != nil {
		return nil, fmt.Errorf("control group: %w", err)
	}
	treatment, err := summarize(in.Treatment, in.Alpha)
	if err != nil {
		return nil, fmt.Errorf("treatment group: %w", err)
	}
	logger.Debug("groups summarized",
		slog.String("control", control.Label),
		slog.Int("control_visitors", control.Visitors),
		slog.String("treatment", treatment.Label),
		slog.Int("treatment_visitors", treatment.Visitors),
	)

	zt, err := stats.ZTest(
		stats.Observation{Trials: control.Visitors, Successes: control.Conversions},
		stats.Observation{Trials: treatment.Visitors, Successes: treatment.Conversions},
	)
	if err != nil {
		return nil, fmt.Errorf("z-test: %w", err)
	}

	ev := &Evaluation{
		Control:     control,
		Treatment:   treatment,
		Alpha:       in.Alpha,
		Test:        result,
		ZTest:       zt,
		Significant: result.Significant(in.Alpha),
	}

	logger.Info("experiment evaluated",
		slog.Float64("estimate", result.Estimate),
		slog.Float64("t", result.Statistic),
		slog.Float64("p_value", result.PValue),
		slog.Bool("significant", ev.Significant),
	)

	if in.Projector == nil || in.VisitorVolume == 0 {
		return ev, nil
	}

	proj, err := in.Projector.Project(revenue.Input{
		BaselineRate:  result.ControlMean,
		NewRate:       result.TreatmentMean,
		VisitorVolume: in.VisitorVolume,
		AvgOrderValue: in.AvgOrderValue,
		TargetRevenue: in.TargetRevenue,
	})
	if err != nil {
		return nil, fmt.Errorf("revenue projection: %w", err)
	}
	ev.Projection = proj
	ev.FinanciallySignificant = ev.Significant && proj.MeetsTarget

	logger.Info("revenue projected",
		slog.Float64("delta_revenue", proj.DeltaRevenue),
		slog.Float64("target", proj.TargetRevenue),
		slog.Bool("meets_target", proj.MeetsTarget),
	)

	return ev, nil
}

func summarize(g GroupSample, alpha float64) (GroupSummary, error) {
	obs, err := stats.CountOutcomes(g.Outcomes)
	if err != nil {
		return GroupSummary{}, err
	}
	rate, err := obs.Rate()
	if err != nil {
		return GroupSummary{}, err
	}

	lower, upper := stats.WilsonInterval(obs.Successes, obs.Trials, 1-alpha)
	return GroupSummary{
		Label:       g.Label,
		Visitors:    obs.Trials,
		Conversions: obs.Successes,
		Rate:        rate,
		CILower:     lower,
		CIUpper:     upper,
	}, nil
}
