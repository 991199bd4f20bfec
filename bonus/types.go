/*
Package bonus provides bonus definitions and eligibility aggregation on top
of the goal engine.

PURPOSE:
  A bonus is a payout attached to a list of free-text prerequisite
  statements. The aggregator evaluates every prerequisite against actual
  sales and requires ALL of them to pass. This is the piece the cash
  register dashboard and the bonus validation module both call.

KEY CONCEPTS:
  - Bonus: Named payout with a tier and prerequisite list
  - Tier: Standard bonuses gate on the minimum target, premium tiers on
    the stretch target
  - Aggregator: AND semantics over the prerequisite list, deterministic
    first-failure reason

SEE ALSO:
  - aggregator.go: EvaluateAll
  - presets.go: Common retail bonus shapes
  - goal package: Rule parsing and single-rule evaluation
*/
package bonus

import (
	"github.com/shopspring/decimal"

	"github.com/eleve/goal-engine/goal"
)

// =============================================================================
// BONUS DEFINITION
// =============================================================================

// Tier classifies the bar a bonus gates on.
type Tier string

const (
	// TierStandard gates on the minimum target.
	TierStandard Tier = "standard"

	// TierPremium gates on the stretch target.
	TierPremium Tier = "premium"
)

// Bonus is one payable bonus definition. Prerequisites are free-text
// statements parsed by goal.ParsePrerequisite; an empty list imposes no
// conditions.
type Bonus struct {
	ID     string
	Name   string
	Tier   Tier
	Payout decimal.Decimal

	Prerequisites []string

	// Active bonuses are picked up by the eligibility sweep.
	Active bool
}

// Scope returns the widest scope the bonus's prerequisites reach:
// individual if any prerequisite targets a salesperson, store otherwise.
// Unparseable prerequisites are ignored here; they fail at evaluation.
func (b Bonus) Scope() goal.Scope {
	for _, p := range b.Prerequisites {
		rule, err := goal.ParsePrerequisite(p)
		if err == nil && rule.Scope == goal.ScopeIndividual {
			return goal.ScopeIndividual
		}
	}
	return goal.ScopeStore
}

// Validate parses every prerequisite and returns the first parse failure.
// Admin surfaces call this at save time so unrecognized statements are
// rejected before they reach an evaluation.
func (b Bonus) Validate() error {
	for _, p := range b.Prerequisites {
		if _, err := goal.ParsePrerequisite(p); err != nil {
			return err
		}
	}
	return nil
}
