// Package revenue maps conversion-rate changes onto dollar impact.
package revenue

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/headline-goat/lift-goat/internal/stats"
)

// DefaultMonthsPerYear annualizes a monthly revenue delta.
const DefaultMonthsPerYear = 12

// Projector holds the financial assumptions of a projection.
type Projector struct {
	// MonthsPerYear multiplies the (monthly) delta into an annual figure.
	MonthsPerYear float64
	// SpendCap is the investment ceiling ROI is measured against. Zero
	// disables ROI.
	SpendCap float64
}

// New returns a Projector with the default annualization.
func New(spendCap float64) *Projector {
	return &Projector{MonthsPerYear: DefaultMonthsPerYear, SpendCap: spendCap}
}

// Input describes one period of traffic at two conversion rates.
type Input struct {
	BaselineRate  float64
	NewRate       float64
	VisitorVolume float64
	AvgOrderValue float64
	TargetRevenue float64
}

// Projection is the revenue impact of moving from BaselineRate to NewRate.
type Projection struct {
	BaselineRate  float64 `json:"baseline_rate"`
	NewRate       float64 `json:"new_rate"`
	VisitorVolume float64 `json:"visitor_volume"`
	AvgOrderValue float64 `json:"avg_order_value"`

	CurrentCustomers float64 `json:"current_customers"`
	NewCustomers     float64 `json:"new_customers"`
	CurrentRevenue   float64 `json:"current_revenue"`
	NewRevenue       float64 `json:"new_revenue"`
	DeltaRevenue     float64 `json:"delta_revenue"`
	AnnualDelta      float64 `json:"annual_delta"`

	RelativeIncrease float64 `json:"relative_increase"`
	RelativeDefined  bool    `json:"relative_defined"`

	ROI       float64 `json:"roi"`
	AnnualROI float64 `json:"annual_roi"`
	HasROI    bool    `json:"has_roi"`

	TargetRevenue float64 `json:"target_revenue"`
	MeetsTarget   bool    `json:"meets_target"`
}

// Project computes the revenue projection for in.
func (p *Projector) Project(in Input) (*Projection, error) {
	const op = "project revenue"

	if !validRate(in.BaselineRate) {
		return nil, &stats.Error{Op: op, Param: "baseline_rate", Value: in.BaselineRate, Err: stats.ErrInvalidInput}
	}
	if !validRate(in.NewRate) {
		return nil, &stats.Error{Op: op, Param: "new_rate", Value: in.NewRate, Err: stats.ErrInvalidInput}
	}
	if !(in.VisitorVolume >= 0) {
		return nil, &stats.Error{Op: op, Param: "visitor_volume", Value: in.VisitorVolume, Err: stats.ErrInvalidInput}
	}
	if !(in.AvgOrderValue >= 0) {
		return nil, &stats.Error{Op: op, Param: "avg_order_value", Value: in.AvgOrderValue, Err: stats.ErrInvalidInput}
	}
	if !(p.SpendCap >= 0) {
		return nil, &stats.Error{Op: op, Param: "spend_cap", Value: p.SpendCap, Err: stats.ErrInvalidInput}
	}

	months := p.MonthsPerYear
	if months <= 0 {
		months = DefaultMonthsPerYear
	}

	out := &Projection{
		BaselineRate:     in.BaselineRate,
		NewRate:          in.NewRate,
		VisitorVolume:    in.VisitorVolume,
		AvgOrderValue:    in.AvgOrderValue,
		CurrentCustomers: in.BaselineRate * in.VisitorVolume,
		NewCustomers:     in.NewRate * in.VisitorVolume,
		TargetRevenue:    in.TargetRevenue,
	}
	out.CurrentRevenue = out.CurrentCustomers * in.AvgOrderValue
	out.NewRevenue = out.NewCustomers * in.AvgOrderValue
	out.DeltaRevenue = out.NewRevenue - out.CurrentRevenue
	out.AnnualDelta = out.DeltaRevenue * months
	out.MeetsTarget = out.DeltaRevenue >= in.TargetRevenue

	if out.CurrentRevenue != 0 {
		out.RelativeIncrease = out.DeltaRevenue / out.CurrentRevenue
		out.RelativeDefined = true
	}

	if p.SpendCap > 0 {
		out.ROI = out.DeltaRevenue/p.SpendCap - 1
		out.AnnualROI = out.AnnualDelta/p.SpendCap - 1
		out.HasROI = true
	}

	return out, nil
}

// AverageOrderValue is the mean of the positive order amounts. Zero and
// negative amounts (visits without a purchase, refunds) are ignored.
func AverageOrderValue(amounts []float64) (float64, error) {
	orders := make([]float64, 0, len(amounts))
	for _, a := range amounts {
		if a > 0 && !math.IsInf(a, 0) {
			orders = append(orders, a)
		}
	}
	if len(orders) == 0 {
		return 0, &stats.Error{Op: "average order value", Param: "orders", Err: stats.ErrUndefined}
	}

	return mstats.Mean(orders)
}

func validRate(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r <= 1
}
