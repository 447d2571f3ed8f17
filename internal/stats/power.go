package stats

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultMaxSampleSize is the per-group size past which a design is reported
// as effectively infinite.
const DefaultMaxSampleSize = 1e9

// SampleSizeLimit is the largest cap MaxSampleSize may take: every integer
// up to it is exact as a float64 and fits an int64 after Ceil.
const SampleSizeLimit = 1 << 53

// Tails is the number of tails alpha is split across.
type Tails int

const (
	OneSided Tails = 1
	TwoSided Tails = 2
)

func (t Tails) String() string {
	switch t {
	case OneSided:
		return "one"
	case TwoSided:
		return "two"
	default:
		return fmt.Sprintf("tails(%d)", int(t))
	}
}

func (t Tails) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tails) UnmarshalText(b []byte) error {
	parsed, err := ParseTails(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTails accepts "one"/"two" (and the usual aliases).
func ParseTails(s string) (Tails, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one", "1", "one-sided", "larger", "smaller":
		return OneSided, nil
	case "two", "2", "two-sided":
		return TwoSided, nil
	default:
		return 0, fmt.Errorf("invalid tails %q: must be 'one' or 'two'", s)
	}
}

// PowerRequest is the input to SolveSampleSize.
type PowerRequest struct {
	EffectSize float64
	Alpha      float64
	Power      float64
	Tails      Tails
	// Ratio is n2/n1. Zero means equal groups.
	Ratio float64
	// MaxSampleSize caps the per-group result. Zero means DefaultMaxSampleSize;
	// values above SampleSizeLimit are clamped to it.
	MaxSampleSize float64
}

// SolveSampleSize returns the per-group sample size n1 needed to detect
// EffectSize at the given alpha and power, using the normal approximation
// for two independent proportions:
//
//	n1 = (1 + 1/ratio) * ((z(1-alpha/tails) + z(power)) / h)^2
//
// The result is a positive real; use Ceil for reporting.
func SolveSampleSize(req PowerRequest) (float64, error) {
	const op = "solve sample size"

	ratio, err := checkDesign(op, req.Alpha, req.Power, req.Tails, req.Ratio)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(req.EffectSize) || math.IsInf(req.EffectSize, 0) {
		return 0, invalid(op, "effect_size", req.EffectSize)
	}
	if req.EffectSize == 0 {
		return 0, undefined(op, "effect_size", 0)
	}

	maxN := req.MaxSampleSize
	if maxN <= 0 {
		maxN = DefaultMaxSampleSize
	}
	if maxN > SampleSizeLimit {
		maxN = SampleSizeLimit
	}

	z := criticalZ(req.Alpha, req.Tails) + distuv.UnitNormal.Quantile(req.Power)
	n := (1 + 1/ratio) * math.Pow(z/req.EffectSize, 2)

	if math.IsInf(n, 0) || math.IsNaN(n) || n > maxN || n*ratio > SampleSizeLimit {
		return 0, overflow(op, "effect_size", req.EffectSize)
	}
	return n, nil
}

// Power returns the probability of detecting effect with n1 subjects in the
// first group and ratio*n1 in the second. For two-sided tests it includes
// the rejection mass in the opposite tail.
func Power(effect, n1, alpha float64, tails Tails, ratio float64) (float64, error) {
	const op = "power"

	ratio, err := checkDesign(op, alpha, 0.5, tails, ratio)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(effect) || math.IsInf(effect, 0) {
		return 0, invalid(op, "effect_size", effect)
	}
	if !(n1 > 0) || math.IsInf(n1, 0) {
		return 0, invalid(op, "n", n1)
	}

	crit := criticalZ(alpha, tails)
	shift := math.Abs(effect) * math.Sqrt(n1/(1+1/ratio))

	p := distuv.UnitNormal.CDF(shift - crit)
	if tails == TwoSided {
		p += distuv.UnitNormal.CDF(-shift - crit)
	}
	return p, nil
}

// MinimumDetectableEffect is the smallest |h| detectable with n1 subjects in
// the first group at the given alpha and power.
func MinimumDetectableEffect(n1, alpha, power float64, tails Tails, ratio float64) (float64, error) {
	const op = "minimum detectable effect"

	ratio, err := checkDesign(op, alpha, power, tails, ratio)
	if err != nil {
		return 0, err
	}
	if !(n1 > 0) || math.IsInf(n1, 0) {
		return 0, invalid(op, "n", n1)
	}

	z := criticalZ(alpha, tails) + distuv.UnitNormal.Quantile(power)
	return z * math.Sqrt((1+1/ratio)/n1), nil
}

// Ceil rounds a sample size up. Rounding down would under-provision the test.
func Ceil(n float64) int64 {
	return int64(math.Ceil(n))
}

func criticalZ(alpha float64, tails Tails) float64 {
	return distuv.UnitNormal.Quantile(1 - alpha/float64(tails))
}

func checkDesign(op string, alpha, power float64, tails Tails, ratio float64) (float64, error) {
	if !(alpha > 0 && alpha < 1) {
		return 0, invalid(op, "alpha", alpha)
	}
	if !(power > 0 && power < 1) {
		return 0, invalid(op, "power", power)
	}
	if tails != OneSided && tails != TwoSided {
		return 0, invalid(op, "tails", float64(tails))
	}
	if math.IsNaN(ratio) || ratio < 0 || math.IsInf(ratio, 0) {
		return 0, invalid(op, "ratio", ratio)
	}
	if ratio == 0 {
		ratio = 1
	}
	return ratio, nil
}
