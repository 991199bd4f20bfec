/*
evaluator.go - Bonus eligibility evaluation

PURPOSE:
  Combines a parsed Rule with the caller-supplied lookups: resolve the
  applicable goal row, compute the comparison target (delegating weekly
  metrics to the allocator), aggregate the actual sales for the rule's
  scope and period, compare, and return a verdict with a human-readable
  reason.

ERROR DISCIPLINE:
  Bonus eligibility is a business decision that must always resolve to a
  definite yes/no with an explanation, even when the underlying
  configuration is broken. The four data outcomes (invalid reference,
  unrecognized prerequisite, missing scope identifier, goal not found) are
  therefore reported as failed verdicts, never as Go errors. The only
  errors Evaluate returns are failures of the lookup capabilities
  themselves - those are infrastructure problems the caller should retry,
  not "bonus not earned".

SEE ALSO:
  - rule.go: Prerequisite parsing
  - allocator.go: Weekly target derivation
  - bonus package: AND-aggregation across a bonus's prerequisite list
*/
package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EVALUATOR
// =============================================================================

// Evaluator decides single-rule eligibility against goal rows and sales
// aggregates. It holds no mutable state; both lookups are read-only.
type Evaluator struct {
	Goals GoalLookup
	Sales SalesLookup
}

// NewEvaluator creates an evaluator over the given lookups.
func NewEvaluator(goals GoalLookup, sales SalesLookup) *Evaluator {
	return &Evaluator{Goals: goals, Sales: sales}
}

// EvaluatePrerequisite parses and evaluates one prerequisite statement.
// A statement that doesn't parse yields a failed verdict (fail-closed).
func (e *Evaluator) EvaluatePrerequisite(ctx context.Context, text string, ec EvalContext) (Verdict, error) {
	rule, err := ParsePrerequisite(text)
	if err != nil {
		return Fail(err.Error()), nil
	}
	return e.Evaluate(ctx, rule, ec)
}

// Evaluate resolves the rule's goal row, computes the comparison target and
// the actual sales aggregate, and returns the verdict.
func (e *Evaluator) Evaluate(ctx context.Context, rule Rule, ec EvalContext) (Verdict, error) {
	subject := rule.Scope.Subject()

	if rule.Scope == ScopeIndividual && ec.IndividualID == "" {
		return Fail("no salesperson identified for an individual prerequisite"), nil
	}

	monthRef := MonthReference(ec.AsOf)
	g, err := e.Goals.FindGoal(ctx, rule.Scope, ec, monthRef)
	if err != nil {
		return Verdict{}, fmt.Errorf("goal lookup: %w", err)
	}
	if g == nil {
		return Fail(fmt.Sprintf("%s has no goal configured for period %s", subject, monthRef)), nil
	}
	if g.MetricValue(rule.Metric).Sign() <= 0 {
		return Fail(fmt.Sprintf("%s goal for period %s has no %s configured", subject, monthRef, rule.Metric.Describe())), nil
	}

	target, failed, err := comparisonTarget(g, rule, ec)
	if err != nil {
		return Verdict{}, err
	}
	if failed != nil {
		return *failed, nil
	}

	from, to, err := periodRange(rule, ec)
	if err != nil {
		return Fail(fmt.Sprintf("invalid evaluation period: %v", err)), nil
	}

	actual, err := e.Sales.SalesTotal(ctx, rule.Scope, ec, from, to)
	if err != nil {
		return Verdict{}, fmt.Errorf("sales lookup: %w", err)
	}

	if actual.GreaterThanOrEqual(target) {
		return Pass(), nil
	}
	return Fail(fmt.Sprintf("%s did not reach the %s (%s / %s)",
		subject, rule.Describe(), actual.StringFixed(2), target.StringFixed(2))), nil
}

// comparisonTarget computes the bar the actual sales are compared against.
// Monthly metrics use the goal row directly; weekly metrics derive the
// week's weighted share via the allocator. A non-nil failed verdict means
// broken configuration on the goal row.
func comparisonTarget(g *Goal, rule Rule, ec EvalContext) (decimal.Decimal, *Verdict, error) {
	if rule.Period != PeriodWeekly {
		return g.MetricValue(rule.Metric), nil, nil
	}
	target, err := WeeklyTargetFor(*g, WeekReference(ec.AsOf), rule.Metric)
	if err != nil {
		// A malformed reference on the goal row is broken configuration,
		// not an infrastructure failure.
		if IsDataOutcome(err) {
			v := Fail(fmt.Sprintf("%s goal has an invalid period reference: %v", rule.Scope.Subject(), err))
			return decimal.Zero, &v, nil
		}
		return decimal.Zero, nil, err
	}
	return target, nil, nil
}

// periodRange returns the inclusive date range the rule's actuals cover:
// the full calendar month for monthly rules, Monday-Sunday for weekly ones.
func periodRange(rule Rule, ec EvalContext) (time.Time, time.Time, error) {
	if rule.Period == PeriodWeekly {
		return WeekRange(WeekReference(ec.AsOf))
	}
	return MonthRange(MonthReference(ec.AsOf))
}
