package stats_test

import (
	"math"
	"testing"

	"github.com/headline-goat/lift-goat/internal/stats"
)

func TestWilsonInterval(t *testing.T) {
	tests := []struct {
		name      string
		successes int
		trials    int
		lowerMin  float64
		lowerMax  float64
		upperMin  float64
		upperMax  float64
	}{
		{"half", 50, 100, 0.38, 0.42, 0.58, 0.62},
		{"low rate", 5, 100, 0.01, 0.03, 0.09, 0.13},
		{"high rate", 95, 100, 0.87, 0.91, 0.97, 0.99},
		{"no successes", 0, 100, 0, 0.001, 0.01, 0.05},
		{"all successes", 100, 100, 0.95, 0.99, 0.99, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper := stats.WilsonInterval(tt.successes, tt.trials, 0.95)
			if lower < tt.lowerMin || lower > tt.lowerMax {
				t.Errorf("lower bound %f not in [%f, %f]", lower, tt.lowerMin, tt.lowerMax)
			}
			if upper < tt.upperMin || upper > tt.upperMax {
				t.Errorf("upper bound %f not in [%f, %f]", upper, tt.upperMin, tt.upperMax)
			}
		})
	}
}

func TestWilsonInterval_ZeroTrials(t *testing.T) {
	lower, upper := stats.WilsonInterval(0, 0, 0.95)
	if lower != 0 || upper != 0 {
		t.Errorf("expected (0, 0) for zero trials, got (%f, %f)", lower, upper)
	}
}

func TestWilsonInterval_NarrowsWithSampleSize(t *testing.T) {
	l1, u1 := stats.WilsonInterval(5, 10, 0.95)
	l2, u2 := stats.WilsonInterval(500, 1000, 0.95)
	if u2-l2 >= u1-l1 {
		t.Errorf("expected narrower interval for larger sample: %f vs %f", u2-l2, u1-l1)
	}
}

func TestWilsonInterval_WidensWithConfidence(t *testing.T) {
	l90, u90 := stats.WilsonInterval(30, 100, 0.90)
	l99, u99 := stats.WilsonInterval(30, 100, 0.99)
	if u99-l99 <= u90-l90 {
		t.Errorf("expected 99%% interval wider than 90%%: %f vs %f", u99-l99, u90-l90)
	}
}

func TestZScore(t *testing.T) {
	tests := []struct {
		confidence float64
		want       float64
	}{
		{0.90, 1.645},
		{0.95, 1.960},
		{0.99, 2.576},
	}
	for _, tt := range tests {
		got := stats.ZScore(tt.confidence)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("ZScore(%v) = %f, want %f", tt.confidence, got, tt.want)
		}
	}
}
