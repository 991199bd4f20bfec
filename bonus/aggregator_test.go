package bonus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleve/goal-engine/bonus"
	"github.com/eleve/goal-engine/goal"
	"github.com/eleve/goal-engine/goal/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestAggregator seeds June 2026 data for store "loja1": a 5000 monthly
// target with a 7000 stretch bar, and 5500 in sales (stretch not reached).
func newTestAggregator() (*bonus.Aggregator, *store.Memory) {
	mem := store.NewMemory()
	mem.PutGoal(goal.Goal{
		ID:                 "goal-store",
		StoreID:            "loja1",
		Scope:              goal.ScopeStore,
		PeriodType:         goal.TypeMonthly,
		MonthReference:     "202606",
		TargetValue:        decimal.NewFromInt(5000),
		StretchTargetValue: decimal.NewFromInt(7000),
	})
	mem.AddSale(store.Sale{
		ID:      "s1",
		StoreID: "loja1",
		SoldAt:  time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.NewFromInt(5500),
	})
	return bonus.NewAggregator(goal.NewEvaluator(mem, mem)), mem
}

func june2026Ctx() goal.EvalContext {
	return goal.EvalContext{
		StoreID: "loja1",
		AsOf:    time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// AND SEMANTICS
// =============================================================================

func TestEvaluateAll_EmptyList_Passes(t *testing.T) {
	// No conditions imposed means the bonus is unconditionally payable.
	agg, _ := newTestAggregator()

	verdict, err := agg.EvaluateAll(context.Background(), nil, june2026Ctx())
	require.NoError(t, err)
	assert.True(t, verdict.Passed)

	verdict, err = agg.EvaluateAll(context.Background(), []string{}, june2026Ctx())
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
}

func TestEvaluateAll_AllPass(t *testing.T) {
	agg, _ := newTestAggregator()

	verdict, err := agg.EvaluateAll(context.Background(), []string{
		"Store must reach the monthly target",
	}, june2026Ctx())
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
}

func TestEvaluateAll_OneFails_WholeBonusFails(t *testing.T) {
	// GIVEN: Target reached (5500 >= 5000) but stretch missed (5500 < 7000)
	// WHEN: A bonus requires both
	// THEN: The bonus fails with the stretch failure's reason

	agg, _ := newTestAggregator()

	verdict, err := agg.EvaluateAll(context.Background(), []string{
		"Store must reach the monthly target",
		"Store must reach the monthly stretch target",
	}, june2026Ctx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, "Store did not reach the monthly stretch target (5500.00 / 7000.00)", verdict.Reason)
}

func TestEvaluateAll_FirstFailureReasonWins(t *testing.T) {
	// GIVEN: Two failing prerequisites
	// WHEN: Evaluating them in each order
	// THEN: The reported reason follows input order, so audit trails are
	//       reproducible

	agg, _ := newTestAggregator()
	stretch := "Store must reach the monthly stretch target"
	weekly := "Store must reach the weekly target"

	verdict, err := agg.EvaluateAll(context.Background(), []string{stretch, weekly}, june2026Ctx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "monthly stretch target")

	verdict, err = agg.EvaluateAll(context.Background(), []string{weekly, stretch}, june2026Ctx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "weekly target")
}

func TestEvaluateAll_UnrecognizedPrerequisite_FailsClosed(t *testing.T) {
	agg, _ := newTestAggregator()

	verdict, err := agg.EvaluateAll(context.Background(), []string{
		"Store must reach the monthly target",
		"the sky is blue",
	}, june2026Ctx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "unrecognized prerequisite")
}

func TestEligible_EvaluatesBonusPrerequisites(t *testing.T) {
	agg, _ := newTestAggregator()

	standard := bonus.MonthlyStoreBonus("b1", 500)
	verdict, err := agg.Eligible(context.Background(), standard, june2026Ctx())
	require.NoError(t, err)
	assert.True(t, verdict.Passed)

	premium := bonus.MonthlyStoreStretchBonus("b2", 1500)
	verdict, err = agg.Eligible(context.Background(), premium, june2026Ctx())
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
}

// =============================================================================
// BONUS DEFINITION
// =============================================================================

func TestBonus_Validate_RejectsUnparseablePrerequisite(t *testing.T) {
	b := bonus.Bonus{
		ID:   "b1",
		Name: "Broken",
		Prerequisites: []string{
			"Store must reach the monthly target",
			"whenever it feels right",
		},
	}
	err := b.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, goal.ErrUnrecognizedPrerequisite)
}

func TestBonus_Validate_AcceptsEmptyPrerequisites(t *testing.T) {
	b := bonus.Bonus{ID: "b1", Name: "Unconditional"}
	assert.NoError(t, b.Validate())
}

func TestBonus_Scope_IndividualWhenAnyPrerequisiteTargetsSalesperson(t *testing.T) {
	b := bonus.Bonus{
		Prerequisites: []string{
			"Store must reach the monthly target",
			"Salesperson must reach the weekly target",
		},
	}
	assert.Equal(t, goal.ScopeIndividual, b.Scope())

	b.Prerequisites = []string{"Store must reach the monthly target"}
	assert.Equal(t, goal.ScopeStore, b.Scope())
}

// =============================================================================
// INFRASTRUCTURE FAILURES
// =============================================================================

type failingGoals struct{ err error }

func (f failingGoals) FindGoal(context.Context, goal.Scope, goal.EvalContext, string) (*goal.Goal, error) {
	return nil, f.err
}

func TestEvaluateAll_LookupFailure_Propagates(t *testing.T) {
	boom := errors.New("database locked")
	agg := bonus.NewAggregator(goal.NewEvaluator(failingGoals{err: boom}, store.NewMemory()))

	_, err := agg.EvaluateAll(context.Background(), []string{
		"Store must reach the monthly target",
	}, june2026Ctx())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
