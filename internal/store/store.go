package store

import "context"

// Reader defines the read operations on an experiment event log
type Reader interface {
	GetTest(ctx context.Context, name string) (*Test, error)
	ListTests(ctx context.Context) ([]*Test, error)

	// Event aggregates
	GetVariantStats(ctx context.Context, testName string, r Range) ([]VariantStats, error)
	GetOutcomes(ctx context.Context, testName string, variant int, r Range) ([]float64, error)

	// Lifecycle
	Close() error
}
