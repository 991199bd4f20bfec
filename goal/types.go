/*
Package goal provides the core goal allocation and eligibility engine.

PURPOSE:
  This package contains the types and algorithms for turning a monthly
  sales target into dynamic daily and weekly sub-targets, and for deciding
  whether a store or salesperson has earned a bonus. The engine is pure:
  it computes derived targets and verdicts from goal rows and sales
  aggregates supplied by the caller.

KEY CONCEPTS IN THIS FILE (types.go):
  - Goal: One target row per (scope, period, reference)
  - Scope: Store-wide vs individual salesperson
  - Metric: Minimum target vs stretch target
  - EvalContext: Who and when an evaluation applies to
  - Verdict: The pass/fail outcome with a human-readable reason
  - GoalLookup / SalesLookup: Read-only capabilities the host supplies

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for every monetary value
  2. Purity: The engine never writes to the underlying store
  3. Determinism: The evaluation date is always passed explicitly
  4. Fail-closed: Broken configuration yields a failed verdict, never a
     silently passing one

USAGE:
  g := goal.Goal{
      Scope:          goal.ScopeStore,
      PeriodType:     goal.TypeMonthly,
      MonthReference: "202603",
      TargetValue:    decimal.NewFromInt(3000),
  }
  target := goal.DailyTarget(g, today, salesToDate)

SEE ALSO:
  - period.go: Month/week reference calendar
  - allocator.go: Dynamic daily and weekly target computation
  - rule.go: Prerequisite text parsing
  - evaluator.go: Verdict production
*/
package goal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCOPE - Who a goal or rule applies to
// =============================================================================

type Scope string

const (
	// ScopeStore applies to the whole store; the goal has no individual owner.
	ScopeStore Scope = "store"

	// ScopeIndividual applies to one salesperson.
	ScopeIndividual Scope = "individual"
)

// Subject returns the display name used in verdict reasons.
func (s Scope) Subject() string {
	if s == ScopeIndividual {
		return "Salesperson"
	}
	return "Store"
}

// =============================================================================
// PERIOD TYPE - How a goal row is keyed in the goals table
// =============================================================================

// PeriodType mirrors the source schema: store-wide monthly goals are stored
// as MENSAL with no owner, individual monthly goals as INDIVIDUAL, and
// standalone weekly goals as SEMANAL.
type PeriodType string

const (
	TypeMonthly    PeriodType = "MENSAL"
	TypeWeekly     PeriodType = "SEMANAL"
	TypeIndividual PeriodType = "INDIVIDUAL"
)

// =============================================================================
// METRIC - Which bar on the goal row a rule compares against
// =============================================================================

type Metric string

const (
	// MetricTarget is the minimum target (meta_valor).
	MetricTarget Metric = "meta"

	// MetricStretchTarget is the optional higher bar (super_meta_valor)
	// used by premium bonus tiers.
	MetricStretchTarget Metric = "super_meta"
)

// Describe returns the display name used in verdict reasons.
func (m Metric) Describe() string {
	if m == MetricStretchTarget {
		return "stretch target"
	}
	return "target"
}

// =============================================================================
// RULE PERIOD - Time granularity of a derived target
// =============================================================================

type RulePeriod string

const (
	PeriodDaily   RulePeriod = "daily"
	PeriodWeekly  RulePeriod = "weekly"
	PeriodMonthly RulePeriod = "monthly"
)

// =============================================================================
// GOAL - One target row per (scope, period, reference)
// =============================================================================

// DateKeyLayout is the format for daily weight map keys.
const DateKeyLayout = "2006-01-02"

// DateKey returns the daily weight map key for a calendar day.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// Goal is a target row read from the goals table. Rows are created and
// updated by the admin surface; the engine treats them as read-only.
type Goal struct {
	ID      string
	StoreID string

	// OwnerID identifies the salesperson for individual goals.
	// Empty for store-wide goals.
	OwnerID string

	Scope      Scope
	PeriodType PeriodType

	// Exactly one reference is meaningful per period type:
	// MonthReference (yyyyMM) for MENSAL/INDIVIDUAL rows,
	// WeekReference (WWyyyy) for SEMANAL rows.
	MonthReference string
	WeekReference  string

	// TargetValue is the minimum target (meta_valor), >= 0.
	TargetValue decimal.Decimal

	// StretchTargetValue is the optional stretch bar (super_meta_valor).
	// Zero means not configured.
	StretchTargetValue decimal.Decimal

	// DailyWeights maps calendar dates (yyyy-MM-dd) to a percentage of the
	// month (0-100). Empty means uniform distribution. The allocator never
	// renormalizes these, even when they don't sum to 100.
	DailyWeights map[string]decimal.Decimal
}

// MetricValue returns the goal's bar for the given metric.
// Zero means the metric is not configured on this row.
func (g Goal) MetricValue(m Metric) decimal.Decimal {
	if m == MetricStretchTarget {
		return g.StretchTargetValue
	}
	return g.TargetValue
}

// =============================================================================
// EVALUATION CONTEXT AND VERDICT
// =============================================================================

// EvalContext identifies who an evaluation applies to and when.
// AsOf is always explicit so evaluation is deterministic and testable.
type EvalContext struct {
	StoreID      string
	IndividualID string
	AsOf         time.Time
}

// Verdict is the outcome of evaluating one or more prerequisites.
// Reason is set only on failure and is safe to show to an end user.
type Verdict struct {
	Passed bool
	Reason string
}

// Pass returns a passing verdict.
func Pass() Verdict { return Verdict{Passed: true} }

// Fail returns a failing verdict with the given reason.
func Fail(reason string) Verdict { return Verdict{Passed: false, Reason: reason} }

// =============================================================================
// LOOKUP CAPABILITIES - Supplied by the surrounding application
// =============================================================================

// GoalLookup reads goal rows filtered by scope, owner, and month reference.
// Returning (nil, nil) means no matching row exists; errors are reserved
// for infrastructure failures (unreachable data source).
type GoalLookup interface {
	FindGoal(ctx context.Context, scope Scope, ec EvalContext, monthRef string) (*Goal, error)
}

// SalesLookup sums completed (non-excluded) sale amounts for a scope within
// an inclusive date range. Errors are reserved for infrastructure failures.
type SalesLookup interface {
	SalesTotal(ctx context.Context, scope Scope, ec EvalContext, from, to time.Time) (decimal.Decimal, error)
}
