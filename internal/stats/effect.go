package stats

import "math"

// EffectSize converts two proportions into Cohen's h:
//
//	h = 2*asin(sqrt(p2)) - 2*asin(sqrt(p1))
//
// The arcsine transform equalizes the variance of a proportion across [0, 1],
// so h can feed the unit-variance normal approximation in SolveSampleSize no
// matter where the baseline sits. The sign follows p2 - p1.
func EffectSize(p1, p2 float64) (float64, error) {
	const op = "effect size"

	if !validProportion(p1) {
		return 0, invalid(op, "p1", p1)
	}
	if !validProportion(p2) {
		return 0, invalid(op, "p2", p2)
	}

	return 2*math.Asin(math.Sqrt(p2)) - 2*math.Asin(math.Sqrt(p1)), nil
}

// TargetRate applies a minimum detectable effect to a baseline rate. With
// relative set, mde is a lift (0.10 means +10%); otherwise it is an absolute
// change in rate.
func TargetRate(baseline, mde float64, relative bool) (float64, error) {
	const op = "target rate"

	if !validProportion(baseline) {
		return 0, invalid(op, "baseline", baseline)
	}
	if math.IsNaN(mde) || math.IsInf(mde, 0) {
		return 0, invalid(op, "mde", mde)
	}

	target := baseline + mde
	if relative {
		target = baseline * (1 + mde)
	}
	if !validProportion(target) {
		return 0, invalid(op, "mde", mde)
	}
	return target, nil
}

// ShiftRate inverts EffectSize: it returns p2 such that EffectSize(p1, p2) == h.
// Effects that would carry the rate past 0 or 1 are invalid.
func ShiftRate(p1, h float64) (float64, error) {
	const op = "shift rate"

	if !validProportion(p1) {
		return 0, invalid(op, "p1", p1)
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, invalid(op, "effect_size", h)
	}

	angle := math.Asin(math.Sqrt(p1)) + h/2
	if angle < 0 || angle > math.Pi/2 {
		return 0, invalid(op, "effect_size", h)
	}
	s := math.Sin(angle)
	return s * s, nil
}
