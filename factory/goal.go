/*
Package factory provides JSON to Go goal conversion.

PURPOSE:
  Converts JSON goal definitions into goal.Goal rows. This is what the
  admin surface posts: store managers define monthly targets, stretch
  targets, and per-day weight maps without code changes.

JSON SCHEMA:
  {
    "id": "goal-loja1-202603",
    "store_id": "loja1",
    "scope": "store",
    "period_type": "MENSAL",
    "month_reference": "202603",
    "target_value": 3000,
    "stretch_target_value": 4500,
    "daily_weights": {
      "2026-03-07": 8.5,
      "2026-03-14": 8.5
    }
  }

VALIDATION:
  Hard failures (error): unknown scope or period type, malformed or
  missing reference, negative target, stretch below target, weight keys
  outside the referenced month, weights outside 0-100.

  Diagnostics (warnings): a non-empty weight map whose entries for the
  month don't sum to 100. The allocator tolerates this by design and
  never renormalizes, but it almost always means a typo in the map, so
  the factory reports it instead of fixing it.

USAGE:
  g, warnings, err := factory.ParseGoal(jsonStr)

SEE ALSO:
  - goal/types.go: Goal definition
  - goal/allocator.go: How weights are consumed
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eleve/goal-engine/goal"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// GoalJSON is the JSON representation of a goal row.
type GoalJSON struct {
	ID                 string             `json:"id"`
	StoreID            string             `json:"store_id"`
	OwnerID            string             `json:"owner_id,omitempty"`
	Scope              string             `json:"scope"`       // store, individual
	PeriodType         string             `json:"period_type"` // MENSAL, SEMANAL, INDIVIDUAL
	MonthReference     string             `json:"month_reference,omitempty"`
	WeekReference      string             `json:"week_reference,omitempty"`
	TargetValue        float64            `json:"target_value"`
	StretchTargetValue float64            `json:"stretch_target_value,omitempty"`
	DailyWeights       map[string]float64 `json:"daily_weights,omitempty"`
}

// =============================================================================
// GOAL FACTORY
// =============================================================================

// ParseGoal parses a JSON string into a goal.Goal plus validation warnings.
func ParseGoal(jsonStr string) (goal.Goal, []string, error) {
	var gj GoalJSON
	if err := json.Unmarshal([]byte(jsonStr), &gj); err != nil {
		return goal.Goal{}, nil, fmt.Errorf("failed to parse goal JSON: %w", err)
	}
	return FromJSON(gj)
}

// FromJSON converts GoalJSON to a goal.Goal, validating the row.
func FromJSON(gj GoalJSON) (goal.Goal, []string, error) {
	scope, err := parseScope(gj.Scope)
	if err != nil {
		return goal.Goal{}, nil, err
	}
	periodType, err := parsePeriodType(gj.PeriodType)
	if err != nil {
		return goal.Goal{}, nil, err
	}

	if scope == goal.ScopeIndividual && gj.OwnerID == "" {
		return goal.Goal{}, nil, fmt.Errorf("individual goal requires owner_id")
	}
	if scope == goal.ScopeStore && gj.OwnerID != "" {
		return goal.Goal{}, nil, fmt.Errorf("store goal must not have an owner_id")
	}

	if gj.TargetValue < 0 {
		return goal.Goal{}, nil, fmt.Errorf("target_value must be >= 0, got %v", gj.TargetValue)
	}
	if gj.StretchTargetValue != 0 && gj.StretchTargetValue < gj.TargetValue {
		return goal.Goal{}, nil, fmt.Errorf("stretch_target_value %v is below target_value %v",
			gj.StretchTargetValue, gj.TargetValue)
	}

	monthFirst, err := validateReferences(periodType, gj.MonthReference, gj.WeekReference)
	if err != nil {
		return goal.Goal{}, nil, err
	}

	weights, warnings, err := parseWeights(gj.DailyWeights, monthFirst)
	if err != nil {
		return goal.Goal{}, nil, err
	}

	g := goal.Goal{
		ID:                 gj.ID,
		StoreID:            gj.StoreID,
		OwnerID:            gj.OwnerID,
		Scope:              scope,
		PeriodType:         periodType,
		MonthReference:     gj.MonthReference,
		WeekReference:      gj.WeekReference,
		TargetValue:        decimal.NewFromFloat(gj.TargetValue),
		StretchTargetValue: decimal.NewFromFloat(gj.StretchTargetValue),
		DailyWeights:       weights,
	}
	return g, warnings, nil
}

func parseScope(s string) (goal.Scope, error) {
	switch goal.Scope(s) {
	case goal.ScopeStore, goal.ScopeIndividual:
		return goal.Scope(s), nil
	default:
		return "", fmt.Errorf("unknown scope %q", s)
	}
}

func parsePeriodType(s string) (goal.PeriodType, error) {
	switch goal.PeriodType(s) {
	case goal.TypeMonthly, goal.TypeWeekly, goal.TypeIndividual:
		return goal.PeriodType(s), nil
	default:
		return "", fmt.Errorf("unknown period_type %q", s)
	}
}

// validateReferences checks that exactly the reference matching the period
// type is present and well-formed. Returns the first day of the month for
// monthly rows (zero time for weekly rows).
func validateReferences(pt goal.PeriodType, monthRef, weekRef string) (time.Time, error) {
	switch pt {
	case goal.TypeWeekly:
		if monthRef != "" {
			return time.Time{}, fmt.Errorf("weekly goal must not carry a month_reference")
		}
		if _, _, err := goal.WeekRange(weekRef); err != nil {
			return time.Time{}, err
		}
		return time.Time{}, nil
	default: // MENSAL, INDIVIDUAL
		if weekRef != "" {
			return time.Time{}, fmt.Errorf("monthly goal must not carry a week_reference")
		}
		first, err := goal.ParseMonthReference(monthRef)
		if err != nil {
			return time.Time{}, err
		}
		return first, nil
	}
}

// parseWeights validates the weight map against the goal's month and sums
// the entries for the sum-to-100 diagnostic.
func parseWeights(raw map[string]float64, monthFirst time.Time) (map[string]decimal.Decimal, []string, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}

	weights := make(map[string]decimal.Decimal, len(raw))
	sum := decimal.Zero
	for key, pct := range raw {
		day, err := time.ParseInLocation(goal.DateKeyLayout, key, time.UTC)
		if err != nil {
			return nil, nil, fmt.Errorf("daily_weights key %q is not a yyyy-MM-dd date", key)
		}
		if !monthFirst.IsZero() && (day.Year() != monthFirst.Year() || day.Month() != monthFirst.Month()) {
			return nil, nil, fmt.Errorf("daily_weights key %q is outside month %s", key, monthFirst.Format("200601"))
		}
		if pct < 0 || pct > 100 {
			return nil, nil, fmt.Errorf("daily_weights[%q] must be within 0-100, got %v", key, pct)
		}
		w := decimal.NewFromFloat(pct)
		weights[key] = w
		sum = sum.Add(w)
	}

	var warnings []string
	if !sum.Equal(decimal.NewFromInt(100)) {
		warnings = append(warnings, fmt.Sprintf("daily weights sum to %s, not 100; shares are taken as-is", sum.String()))
	}
	return weights, warnings, nil
}
