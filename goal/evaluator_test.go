package goal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleve/goal-engine/goal"
	"github.com/eleve/goal-engine/goal/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestEvaluator() (*goal.Evaluator, *store.Memory) {
	mem := store.NewMemory()
	return goal.NewEvaluator(mem, mem), mem
}

func storeGoal(target, stretch float64) goal.Goal {
	return goal.Goal{
		ID:                 "goal-store",
		StoreID:            "loja1",
		Scope:              goal.ScopeStore,
		PeriodType:         goal.TypeMonthly,
		MonthReference:     "202606",
		TargetValue:        decimal.NewFromFloat(target),
		StretchTargetValue: decimal.NewFromFloat(stretch),
	}
}

func sellerGoal(sellerID string, target float64) goal.Goal {
	return goal.Goal{
		ID:             "goal-" + sellerID,
		StoreID:        "loja1",
		OwnerID:        sellerID,
		Scope:          goal.ScopeIndividual,
		PeriodType:     goal.TypeIndividual,
		MonthReference: "202606",
		TargetValue:    decimal.NewFromFloat(target),
	}
}

func sale(id string, day int, amount float64, sellerID string) store.Sale {
	return store.Sale{
		ID:       id,
		StoreID:  "loja1",
		SellerID: sellerID,
		SoldAt:   time.Date(2026, time.June, day, 14, 30, 0, 0, time.UTC),
		Amount:   decimal.NewFromFloat(amount),
	}
}

func storeCtx() goal.EvalContext {
	return goal.EvalContext{
		StoreID: "loja1",
		AsOf:    time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC),
	}
}

func sellerCtx(sellerID string) goal.EvalContext {
	ec := storeCtx()
	ec.IndividualID = sellerID
	return ec
}

var storeMonthlyRule = goal.Rule{
	Scope:  goal.ScopeStore,
	Period: goal.PeriodMonthly,
	Metric: goal.MetricTarget,
}

// =============================================================================
// MONTHLY EVALUATION
// =============================================================================

func TestEvaluate_StoreMonthlyTarget_Reached(t *testing.T) {
	// GIVEN: A 5000 monthly store target and 5200 in aggregated sales
	// WHEN: Evaluating the store monthly target rule
	// THEN: Passed, no reason

	eval, mem := newTestEvaluator()
	mem.PutGoal(storeGoal(5000, 0))
	mem.AddSale(sale("s1", 5, 3000, "ana"))
	mem.AddSale(sale("s2", 12, 2200, "bia"))

	verdict, err := eval.Evaluate(context.Background(), storeMonthlyRule, storeCtx())
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
	assert.Empty(t, verdict.Reason)
}

func TestEvaluate_StoreMonthlyTarget_Missed_ReasonCarriesBothAmounts(t *testing.T) {
	// GIVEN: A 5000 monthly store target and only 4800 in sales
	// WHEN: Evaluating the store monthly target rule
	// THEN: Failed with both amounts formatted to two decimals

	eval, mem := newTestEvaluator()
	mem.PutGoal(storeGoal(5000, 0))
	mem.AddSale(sale("s1", 5, 3000, "ana"))
	mem.AddSale(sale("s2", 12, 1800, "bia"))

	verdict, err := eval.Evaluate(context.Background(), storeMonthlyRule, storeCtx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, "Store did not reach the monthly target (4800.00 / 5000.00)", verdict.Reason)
}

func TestEvaluate_ExcludedSalesDoNotCount(t *testing.T) {
	// A cancelled/returned sale is flagged excluded and must not tip the
	// verdict.
	eval, mem := newTestEvaluator()
	mem.PutGoal(storeGoal(5000, 0))
	mem.AddSale(sale("s1", 5, 4800, "ana"))
	excluded := sale("s2", 12, 400, "bia")
	excluded.Excluded = true
	mem.AddSale(excluded)

	verdict, err := eval.Evaluate(context.Background(), storeMonthlyRule, storeCtx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "(4800.00 / 5000.00)")
}

func TestEvaluate_StretchTarget_UsesStretchBar(t *testing.T) {
	eval, mem := newTestEvaluator()
	mem.PutGoal(storeGoal(5000, 7000))
	mem.AddSale(sale("s1", 5, 6000, "ana"))

	rule := storeMonthlyRule
	rule.Metric = goal.MetricStretchTarget

	verdict, err := eval.Evaluate(context.Background(), rule, storeCtx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, "Store did not reach the monthly stretch target (6000.00 / 7000.00)", verdict.Reason)
}

func TestEvaluate_IndividualMonthlyTarget(t *testing.T) {
	// Only the salesperson's own sales count at individual scope.
	eval, mem := newTestEvaluator()
	mem.PutGoal(sellerGoal("ana", 2000))
	mem.AddSale(sale("s1", 5, 1500, "ana"))
	mem.AddSale(sale("s2", 6, 900, "bia"))

	rule := goal.Rule{Scope: goal.ScopeIndividual, Period: goal.PeriodMonthly, Metric: goal.MetricTarget}
	verdict, err := eval.Evaluate(context.Background(), rule, sellerCtx("ana"))
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "(1500.00 / 2000.00)")
}

// =============================================================================
// WEEKLY EVALUATION
// =============================================================================

func TestEvaluate_WeeklyTarget_DerivedFromMonthlyGoal(t *testing.T) {
	// GIVEN: A 3000/30-day June goal; the week of June 15-21 carries a
	//        derived 700 share
	// WHEN: The store sold 700 inside that week
	// THEN: Passed

	eval, mem := newTestEvaluator()
	mem.PutGoal(storeGoal(3000, 0))
	mem.AddSale(sale("s1", 16, 400, "ana"))
	mem.AddSale(sale("s2", 19, 300, "bia"))

	rule := goal.Rule{Scope: goal.ScopeStore, Period: goal.PeriodWeekly, Metric: goal.MetricTarget}
	verdict, err := eval.Evaluate(context.Background(), rule, storeCtx())
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
}

func TestEvaluate_WeeklyTarget_SalesOutsideWeekIgnored(t *testing.T) {
	// Sales from earlier in the month don't count toward the week.
	eval, mem := newTestEvaluator()
	mem.PutGoal(storeGoal(3000, 0))
	mem.AddSale(sale("s1", 2, 5000, "ana"))
	mem.AddSale(sale("s2", 16, 650, "bia"))

	rule := goal.Rule{Scope: goal.ScopeStore, Period: goal.PeriodWeekly, Metric: goal.MetricTarget}
	verdict, err := eval.Evaluate(context.Background(), rule, storeCtx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, "Store did not reach the weekly target (650.00 / 700.00)", verdict.Reason)
}

// =============================================================================
// DATA OUTCOMES - failed verdicts, never errors
// =============================================================================

func TestEvaluate_NoGoalConfigured_FailsWithReason(t *testing.T) {
	eval, _ := newTestEvaluator()

	verdict, err := eval.Evaluate(context.Background(), storeMonthlyRule, storeCtx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, "Store has no goal configured for period 202606", verdict.Reason)
}

func TestEvaluate_UnsetStretchMetric_FailsWithReason(t *testing.T) {
	// A goal row without a stretch bar can never satisfy a stretch rule.
	eval, mem := newTestEvaluator()
	mem.PutGoal(storeGoal(5000, 0))
	mem.AddSale(sale("s1", 5, 9000, "ana"))

	rule := storeMonthlyRule
	rule.Metric = goal.MetricStretchTarget

	verdict, err := eval.Evaluate(context.Background(), rule, storeCtx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, "Store goal for period 202606 has no stretch target configured", verdict.Reason)
}

func TestEvaluate_IndividualRuleWithoutSeller_FailsWithReason(t *testing.T) {
	// Parsing succeeds for individual rules; it's the evaluation that needs
	// a salesperson identifier.
	eval, mem := newTestEvaluator()
	mem.PutGoal(sellerGoal("ana", 2000))

	rule := goal.Rule{Scope: goal.ScopeIndividual, Period: goal.PeriodMonthly, Metric: goal.MetricTarget}
	verdict, err := eval.Evaluate(context.Background(), rule, storeCtx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, "no salesperson identified for an individual prerequisite", verdict.Reason)
}

func TestEvaluatePrerequisite_UnparseableText_FailsClosed(t *testing.T) {
	eval, mem := newTestEvaluator()
	mem.PutGoal(storeGoal(5000, 0))
	mem.AddSale(sale("s1", 5, 9000, "ana"))

	verdict, err := eval.EvaluatePrerequisite(context.Background(), "the sky is blue", storeCtx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "unrecognized prerequisite")
}

// =============================================================================
// INFRASTRUCTURE FAILURES - the only errors that propagate
// =============================================================================

type failingLookups struct {
	err error
}

func (f failingLookups) FindGoal(context.Context, goal.Scope, goal.EvalContext, string) (*goal.Goal, error) {
	return nil, f.err
}

func (f failingLookups) SalesTotal(context.Context, goal.Scope, goal.EvalContext, time.Time, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, f.err
}

func TestEvaluate_GoalLookupFailure_PropagatesAsError(t *testing.T) {
	// An unreachable data source is an infrastructure error the caller
	// should retry, never a "bonus not earned".
	boom := errors.New("connection refused")
	eval := goal.NewEvaluator(failingLookups{err: boom}, store.NewMemory())

	_, err := eval.Evaluate(context.Background(), storeMonthlyRule, storeCtx())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "goal lookup")
}

func TestEvaluate_SalesLookupFailure_PropagatesAsError(t *testing.T) {
	boom := errors.New("connection refused")
	mem := store.NewMemory()
	mem.PutGoal(storeGoal(5000, 0))
	eval := goal.NewEvaluator(mem, failingLookups{err: boom})

	_, err := eval.Evaluate(context.Background(), storeMonthlyRule, storeCtx())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sales lookup")
}
