// Package store provides lookup implementations for the goal engine.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eleve/goal-engine/goal"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds goal rows and sale records in memory and implements both
// goal.GoalLookup and goal.SalesLookup.
type Memory struct {
	mu    sync.RWMutex
	goals []goal.Goal
	sales []Sale
}

// Sale is one recorded sale. Excluded sales never count toward aggregates.
type Sale struct {
	ID       string
	StoreID  string
	SellerID string
	SoldAt   time.Time
	Amount   decimal.Decimal
	Excluded bool
}

// Compile-time checks that Memory implements both lookup capabilities.
var (
	_ goal.GoalLookup  = (*Memory)(nil)
	_ goal.SalesLookup = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{}
}

// PutGoal adds or replaces a goal row (keyed by ID when set).
func (m *Memory) PutGoal(g goal.Goal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID != "" {
		for i, existing := range m.goals {
			if existing.ID == g.ID {
				m.goals[i] = g
				return
			}
		}
	}
	m.goals = append(m.goals, g)
}

// AddSale records a sale.
func (m *Memory) AddSale(s Sale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = append(m.sales, s)
}

// FindGoal implements goal.GoalLookup. Store scope matches MENSAL rows with
// no owner; individual scope matches INDIVIDUAL rows owned by the context's
// salesperson.
func (m *Memory) FindGoal(_ context.Context, scope goal.Scope, ec goal.EvalContext, monthRef string) (*goal.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.goals {
		g := m.goals[i]
		if g.StoreID != ec.StoreID || g.MonthReference != monthRef {
			continue
		}
		switch scope {
		case goal.ScopeStore:
			if g.PeriodType == goal.TypeMonthly && g.OwnerID == "" {
				copied := g
				return &copied, nil
			}
		case goal.ScopeIndividual:
			if g.PeriodType == goal.TypeIndividual && g.OwnerID == ec.IndividualID {
				copied := g
				return &copied, nil
			}
		}
	}
	return nil, nil
}

// SalesTotal implements goal.SalesLookup: the sum of non-excluded sale
// amounts for the scope within [from, to], both inclusive.
func (m *Memory) SalesTotal(_ context.Context, scope goal.Scope, ec goal.EvalContext, from, to time.Time) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := decimal.Zero
	for _, s := range m.sales {
		if s.Excluded || s.StoreID != ec.StoreID {
			continue
		}
		if scope == goal.ScopeIndividual && s.SellerID != ec.IndividualID {
			continue
		}
		day := time.Date(s.SoldAt.Year(), s.SoldAt.Month(), s.SoldAt.Day(), 0, 0, 0, 0, time.UTC)
		if day.Before(from) || day.After(to) {
			continue
		}
		total = total.Add(s.Amount)
	}
	return total, nil
}
