package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
)

// Observation is a raw count of trials (visitors) and successes (purchases).
type Observation struct {
	Trials    int
	Successes int
}

// Rate returns Successes/Trials.
func (o Observation) Rate() (float64, error) {
	return EstimateRate(o.Trials, o.Successes)
}

// EstimateRate derives a proportion from raw counts.
func EstimateRate(trials, successes int) (float64, error) {
	const op = "estimate rate"

	if trials < 0 {
		return 0, invalid(op, "trials", float64(trials))
	}
	if successes < 0 {
		return 0, invalid(op, "successes", float64(successes))
	}
	if successes > trials {
		return 0, invalid(op, "successes", float64(successes))
	}
	if trials == 0 {
		return 0, undefined(op, "trials", 0)
	}

	return float64(successes) / float64(trials), nil
}

// GroupRate returns the mean of a binary outcome sequence.
func GroupRate(outcomes []float64) (float64, error) {
	const op = "group rate"

	if len(outcomes) == 0 {
		return 0, undefined(op, "trials", 0)
	}
	if err := validateBinary(op, outcomes); err != nil {
		return 0, err
	}

	mean, err := mstats.Mean(outcomes)
	if err != nil {
		return 0, undefined(op, "trials", 0)
	}
	return mean, nil
}

// CountOutcomes folds a binary outcome sequence into an Observation.
func CountOutcomes(outcomes []float64) (Observation, error) {
	if err := validateBinary("count outcomes", outcomes); err != nil {
		return Observation{}, err
	}

	obs := Observation{Trials: len(outcomes)}
	for _, v := range outcomes {
		if v == 1 {
			obs.Successes++
		}
	}
	return obs, nil
}

func validateBinary(op string, outcomes []float64) error {
	for _, v := range outcomes {
		if v != 0 && v != 1 {
			return invalid(op, "outcome", v)
		}
	}
	return nil
}

func validProportion(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
