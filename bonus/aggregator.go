package bonus

import (
	"context"

	"github.com/eleve/goal-engine/goal"
)

// =============================================================================
// AGGREGATOR - AND semantics over a prerequisite list
// =============================================================================

// Aggregator folds a bonus's prerequisite list into one verdict.
type Aggregator struct {
	Evaluator *goal.Evaluator
}

// NewAggregator creates an aggregator over the given evaluator.
func NewAggregator(e *goal.Evaluator) *Aggregator {
	return &Aggregator{Evaluator: e}
}

// EvaluateAll evaluates every prerequisite and requires ALL to pass.
// An empty list imposes no conditions and passes. On failure the returned
// reason is the FIRST failing prerequisite's reason in input order, so
// audit trails and tests are reproducible. Only lookup infrastructure
// failures surface as errors.
func (a *Aggregator) EvaluateAll(ctx context.Context, prerequisites []string, ec goal.EvalContext) (goal.Verdict, error) {
	for _, text := range prerequisites {
		verdict, err := a.Evaluator.EvaluatePrerequisite(ctx, text, ec)
		if err != nil {
			return goal.Verdict{}, err
		}
		if !verdict.Passed {
			return verdict, nil
		}
	}
	return goal.Pass(), nil
}

// Eligible evaluates one bonus definition.
func (a *Aggregator) Eligible(ctx context.Context, b Bonus, ec goal.EvalContext) (goal.Verdict, error) {
	return a.EvaluateAll(ctx, b.Prerequisites, ec)
}
