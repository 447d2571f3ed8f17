package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/headline-goat/lift-goat/internal/stats"
)

var errCancelled = errors.New("cancelled")

// promptFloat asks for a number, re-prompting until validate accepts it.
func promptFloat(label string, def float64, validate func(float64) error) (float64, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: strconv.FormatFloat(def, 'g', -1, 64),
		Validate: func(s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("not a number")
			}
			return validate(v)
		},
	}

	result, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt || err == promptui.ErrAbort {
			return 0, errCancelled
		}
		return 0, err
	}
	return strconv.ParseFloat(result, 64)
}

func promptTails(current stats.Tails) (stats.Tails, error) {
	items := []string{"Two-sided (treatment could be better or worse)", "One-sided (only an improvement matters)"}
	cursor := 0
	if current == stats.OneSided {
		cursor = 1
	}

	prompt := promptui.Select{
		Label:     "Test type",
		Items:     items,
		CursorPos: cursor,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			return 0, errCancelled
		}
		return 0, err
	}
	return tailsFromIndex(idx), nil
}

func tailsFromIndex(idx int) stats.Tails {
	if idx == 1 {
		return stats.OneSided
	}
	return stats.TwoSided
}

func inUnitInterval(v float64) error {
	if v <= 0 || v >= 1 {
		return fmt.Errorf("must be between 0 and 1")
	}
	return nil
}

func nonZero(v float64) error {
	if v == 0 {
		return fmt.Errorf("must not be zero")
	}
	return nil
}
