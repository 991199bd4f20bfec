/*
errors.go - Centralized error types for the goal engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  The four data-outcome errors never cross the evaluator boundary as Go
  errors: the evaluator converts them into failed verdicts with a reason a
  caller can show to an end user. The only errors the evaluator returns are
  failures of the supplied lookup capabilities (infrastructure errors),
  which callers should retry rather than treat as "bonus not earned".

ERROR CATEGORIES:
  1. Data outcomes - broken or missing configuration (failed verdicts)
  2. Infrastructure - lookup capability failures (propagated as errors)

USAGE:
  rule, err := goal.ParsePrerequisite(text)
  if errors.Is(err, goal.ErrUnrecognizedPrerequisite) {
      // reject at configuration time
  }

SEE ALSO:
  - evaluator.go: Converts data outcomes into verdicts
  - rule.go: Produces ErrUnrecognizedPrerequisite
*/
package goal

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriodReference is returned when a month (yyyyMM) or week
	// (WWyyyy) reference string is malformed.
	ErrInvalidPeriodReference = errors.New("invalid period reference")

	// ErrUnrecognizedPrerequisite is returned when a prerequisite statement
	// does not unambiguously match one of the eight supported rule shapes.
	// Unrecognized prerequisites never silently pass.
	ErrUnrecognizedPrerequisite = errors.New("unrecognized prerequisite")

	// ErrMissingScopeIdentifier is returned when an individual-scope rule is
	// evaluated without a salesperson identifier. This is an evaluation-time
	// outcome, not a parse error.
	ErrMissingScopeIdentifier = errors.New("missing scope identifier")

	// ErrGoalNotFound is returned when no goal row matches the requested
	// scope and period, or the requested metric is unset on the row.
	// A missing target can never be satisfied.
	ErrGoalNotFound = errors.New("goal not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnrecognizedPrerequisiteError reports which statement failed to parse and
// what was missing from it.
type UnrecognizedPrerequisiteError struct {
	Text    string
	Missing string // e.g. "scope keyword", "period keyword"
}

func (e *UnrecognizedPrerequisiteError) Error() string {
	return fmt.Sprintf("unrecognized prerequisite %q: %s", e.Text, e.Missing)
}

func (e *UnrecognizedPrerequisiteError) Unwrap() error {
	return ErrUnrecognizedPrerequisite
}

// InvalidReferenceError reports a malformed period reference.
type InvalidReferenceError struct {
	Reference string
	Kind      string // "month" or "week"
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid %s reference %q", e.Kind, e.Reference)
}

func (e *InvalidReferenceError) Unwrap() error {
	return ErrInvalidPeriodReference
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDataOutcome returns true if the error is a business-rule outcome that
// the evaluator reports as a failed verdict rather than a Go error.
func IsDataOutcome(err error) bool {
	return errors.Is(err, ErrInvalidPeriodReference) ||
		errors.Is(err, ErrUnrecognizedPrerequisite) ||
		errors.Is(err, ErrMissingScopeIdentifier) ||
		errors.Is(err, ErrGoalNotFound)
}
