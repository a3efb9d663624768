package search

import "errors"

// Sentinel kinds for search outcomes.
var (
	ErrNoFeasibleSchedule = errors.New("no feasible schedule")
	ErrBudgetExceeded     = errors.New("search budget exceeded")
	ErrSearchCancelled    = errors.New("search cancelled")
)
