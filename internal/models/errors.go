package models

import (
	"fmt"
)

// InputStructureError reports a malformed raw statement. It is the only
// condition that aborts normalization entirely; missing line items never do.
type InputStructureError struct {
	Statement StatementType
	Reason    string
}

func (e *InputStructureError) Error() string {
	return fmt.Sprintf("invalid %s structure: %s", e.Statement, e.Reason)
}

// InsufficientDataError reports a computation with too few data points to be
// defined (a regression or a cash-flow projection). Fatal to that single
// computation only.
type InsufficientDataError struct {
	Computation string
	Points      int
	Required    int
	Reason      string // optional detail beyond the point count
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Computation, e.Reason)
	}
	return fmt.Sprintf("%s requires at least %d data points, got %d", e.Computation, e.Required, e.Points)
}

// DegenerateValuationError reports a valuation whose terminal value is
// undefined or negative. Surfaced distinctly from InsufficientDataError so
// callers can render "valuation not meaningful" versus "not enough data".
type DegenerateValuationError struct {
	Reason string
}

func (e *DegenerateValuationError) Error() string {
	return fmt.Sprintf("valuation not meaningful: %s", e.Reason)
}
