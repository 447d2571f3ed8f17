// Package experiment composes the statistics and revenue packages into the
// design and evaluation pipelines of a two-group conversion experiment.
package experiment

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/headline-goat/lift-goat/internal/stats"
)

// DesignInput is everything needed to size an experiment.
type DesignInput struct {
	// Baseline, when set, takes precedence over BaselineRate.
	Baseline     *stats.Observation
	BaselineRate float64

	// MDE is the minimum detectable effect: a relative lift when RelativeMDE
	// is set, otherwise an absolute change in rate.
	MDE         float64
	RelativeMDE bool

	Alpha         float64
	Power         float64
	Tails         stats.Tails
	Ratio         float64
	MaxSampleSize float64

	// VisitorsPerMonth, when positive, turns the total sample into a
	// duration estimate.
	VisitorsPerMonth float64
}

// Plan is a sized experiment.
type Plan struct {
	BaselineRate float64     `json:"baseline_rate"`
	TargetRate   float64     `json:"target_rate"`
	EffectSize   float64     `json:"effect_size"`
	Alpha        float64     `json:"alpha"`
	Power        float64     `json:"power"`
	Tails        stats.Tails `json:"tails"`
	Ratio        float64     `json:"ratio"`

	SampleSize    float64 `json:"sample_size"`
	PerGroup      int64   `json:"per_group"`
	TreatmentSize int64   `json:"treatment_size"`
	Total         int64   `json:"total"`

	AchievedPower float64 `json:"achieved_power"`

	DurationMonths float64 `json:"duration_months,omitempty"`
	HasDuration    bool    `json:"has_duration"`

	// MonthlyEffectSize is the smallest |h| one month of traffic can detect
	// at the plan's alpha and power; MonthlyTargetRate is the upward rate it
	// corresponds to, when that stays within [0, 1].
	MonthlyEffectSize float64 `json:"monthly_effect_size,omitempty"`
	MonthlyTargetRate float64 `json:"monthly_target_rate,omitempty"`
	HasMonthlyTarget  bool    `json:"has_monthly_target"`
}

// Design runs rate estimation, effect translation and sample sizing.
func Design(in DesignInput, logger *slog.Logger) (*Plan, error) {
	logger = orDefault(logger)

	baseline := in.BaselineRate
	if in.Baseline != nil {
		rate, err := in.Baseline.Rate()
		if err != nil {
			return nil, fmt.Errorf("baseline rate: %w", err)
		}
		baseline = rate
		logger.Debug("baseline estimated",
			slog.Int("trials", in.Baseline.Trials),
			slog.Int("successes", in.Baseline.Successes),
			slog.Float64("rate", rate),
		)
	}

	target, err := stats.TargetRate(baseline, in.MDE, in.RelativeMDE)
	if err != nil {
		return nil, fmt.Errorf("target rate: %w", err)
	}

	effect, err := stats.EffectSize(baseline, target)
	if err != nil {
		return nil, fmt.Errorf("effect size: %w", err)
	}
	logger.Debug("effect translated",
		slog.Float64("baseline", baseline),
		slog.Float64("target", target),
		slog.Float64("effect_size", effect),
	)

	ratio := in.Ratio
	if ratio == 0 {
		ratio = 1
	}

	n, err := stats.SolveSampleSize(stats.PowerRequest{
		EffectSize:    effect,
		Alpha:         in.Alpha,
		Power:         in.Power,
		Tails:         in.Tails,
		Ratio:         ratio,
		MaxSampleSize: in.MaxSampleSize,
	})
	if err != nil {
		return nil, fmt.Errorf("sample size: %w", err)
	}

	plan := &Plan{
		BaselineRate:  baseline,
		TargetRate:    target,
		EffectSize:    effect,
		Alpha:         in.Alpha,
		Power:         in.Power,
		Tails:         in.Tails,
		Ratio:         ratio,
		SampleSize:    n,
		PerGroup:      stats.Ceil(n),
		TreatmentSize: stats.Ceil(n * ratio),
	}
	plan.Total = plan.PerGroup + plan.TreatmentSize

	plan.AchievedPower, err = stats.Power(effect, float64(plan.PerGroup), in.Alpha, in.Tails, ratio)
	if err != nil {
		return nil, fmt.Errorf("achieved power: %w", err)
	}

	if in.VisitorsPerMonth > 0 {
		plan.DurationMonths = float64(plan.Total) / in.VisitorsPerMonth
		plan.HasDuration = true

		n1 := in.VisitorsPerMonth / (1 + ratio)
		plan.MonthlyEffectSize, err = stats.MinimumDetectableEffect(n1, in.Alpha, in.Power, in.Tails, ratio)
		if err != nil {
			return nil, fmt.Errorf("monthly detectable effect: %w", err)
		}
		if rate, err := stats.ShiftRate(baseline, plan.MonthlyEffectSize); err == nil {
			plan.MonthlyTargetRate = rate
			plan.HasMonthlyTarget = true
		}
	}

	logger.Info("experiment sized",
		slog.Int64("per_group", plan.PerGroup),
		slog.Int64("total", plan.Total),
		slog.Float64("achieved_power", plan.AchievedPower),
	)

	return plan, nil
}

// DurationDays converts the month estimate into days (30-day months).
func (p *Plan) DurationDays() int {
	if !p.HasDuration {
		return 0
	}
	return int(math.Ceil(p.DurationMonths * 30))
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
