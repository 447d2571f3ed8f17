package store

import "time"

type TestState string

const (
	StateRunning   TestState = "running"
	StatePaused    TestState = "paused"
	StateCompleted TestState = "completed"
)

// Test is an experiment recorded in the event log. Variant 0 is the control.
type Test struct {
	ID             int64
	Name           string
	Variants       []string // Decoded from JSON
	ConversionGoal string
	State          TestState
	WinnerVariant  *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type VariantStats struct {
	Variant     int
	Views       int
	Conversions int
}

// Range bounds event timestamps. A zero From or To is open.
type Range struct {
	From time.Time
	To   time.Time
}
