/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the factory, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/goal.go: GoalJSON type
*/
package api

import (
	"time"

	"github.com/eleve/goal-engine/bonus"
	"github.com/eleve/goal-engine/factory"
	"github.com/eleve/goal-engine/goal"
	"github.com/eleve/goal-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// StoreDTO represents a tenant store.
type StoreDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateStoreRequest is the request to create a store.
type CreateStoreRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileDTO represents a salesperson.
type ProfileDTO struct {
	ID      string `json:"id"`
	StoreID string `json:"store_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// CreateProfileRequest is the request to create a salesperson profile.
type CreateProfileRequest struct {
	ID      string `json:"id"`
	StoreID string `json:"store_id"`
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
}

// GoalDTO represents a goal row in API responses.
type GoalDTO struct {
	ID                 string             `json:"id"`
	StoreID            string             `json:"store_id"`
	OwnerID            string             `json:"owner_id,omitempty"`
	Scope              string             `json:"scope"`
	PeriodType         string             `json:"period_type"`
	MonthReference     string             `json:"month_reference,omitempty"`
	WeekReference      string             `json:"week_reference,omitempty"`
	TargetValue        float64            `json:"target_value"`
	StretchTargetValue float64            `json:"stretch_target_value,omitempty"`
	DailyWeights       map[string]float64 `json:"daily_weights,omitempty"`
	Warnings           []string           `json:"warnings,omitempty"`
}

// SaveGoalRequest is the request to create or update a goal row.
// It reuses the factory's JSON schema.
type SaveGoalRequest = factory.GoalJSON

// RecordSaleRequest is the request to record a sale.
type RecordSaleRequest struct {
	ID       string  `json:"id"`
	StoreID  string  `json:"store_id"`
	SellerID string  `json:"seller_id,omitempty"`
	SoldAt   string  `json:"sold_at"` // yyyy-MM-dd
	Amount   float64 `json:"amount"`
}

// DailyTargetDTO is the response for a dynamic daily target query.
type DailyTargetDTO struct {
	StoreID     string  `json:"store_id"`
	OwnerID     string  `json:"owner_id,omitempty"`
	Date        string  `json:"date"`
	Target      float64 `json:"target"`
	SalesToDate float64 `json:"sales_to_date"`
}

// WeeklyTargetDTO is the response for a weekly target query.
type WeeklyTargetDTO struct {
	StoreID       string  `json:"store_id"`
	OwnerID       string  `json:"owner_id,omitempty"`
	WeekReference string  `json:"week_reference"`
	Target        float64 `json:"target"`
	StretchTarget float64 `json:"stretch_target,omitempty"`
}

// BonusDTO represents a bonus definition.
type BonusDTO struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Tier          string   `json:"tier"`
	Payout        float64  `json:"payout"`
	Prerequisites []string `json:"prerequisites"`
	Active        bool     `json:"active"`
}

// SaveBonusRequest is the request to create or update a bonus.
type SaveBonusRequest struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Tier          string   `json:"tier,omitempty"`
	Payout        float64  `json:"payout"`
	Prerequisites []string `json:"prerequisites"`
	Active        *bool    `json:"active,omitempty"`
}

// CheckEligibilityRequest is the request to evaluate prerequisites.
// Either BonusID or Prerequisites must be supplied.
type CheckEligibilityRequest struct {
	BonusID       string   `json:"bonus_id,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	StoreID       string   `json:"store_id"`
	IndividualID  string   `json:"individual_id,omitempty"`
	AsOf          string   `json:"as_of,omitempty"` // yyyy-MM-dd, defaults to today
}

// VerdictDTO is the eligibility outcome.
type VerdictDTO struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// EligibilityRunDTO is one recorded sweep verdict.
type EligibilityRunDTO struct {
	ID           int64  `json:"id"`
	BonusID      string `json:"bonus_id"`
	StoreID      string `json:"store_id"`
	IndividualID string `json:"individual_id,omitempty"`
	Passed       bool   `json:"passed"`
	Reason       string `json:"reason,omitempty"`
	EvaluatedAt  string `json:"evaluated_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toGoalDTO(g goal.Goal, warnings []string) GoalDTO {
	target, _ := g.TargetValue.Float64()
	stretch, _ := g.StretchTargetValue.Float64()

	var weights map[string]float64
	if len(g.DailyWeights) > 0 {
		weights = make(map[string]float64, len(g.DailyWeights))
		for k, w := range g.DailyWeights {
			weights[k], _ = w.Float64()
		}
	}

	return GoalDTO{
		ID:                 g.ID,
		StoreID:            g.StoreID,
		OwnerID:            g.OwnerID,
		Scope:              string(g.Scope),
		PeriodType:         string(g.PeriodType),
		MonthReference:     g.MonthReference,
		WeekReference:      g.WeekReference,
		TargetValue:        target,
		StretchTargetValue: stretch,
		DailyWeights:       weights,
		Warnings:           warnings,
	}
}

func toBonusDTO(b bonus.Bonus) BonusDTO {
	payout, _ := b.Payout.Float64()
	return BonusDTO{
		ID:            b.ID,
		Name:          b.Name,
		Tier:          string(b.Tier),
		Payout:        payout,
		Prerequisites: b.Prerequisites,
		Active:        b.Active,
	}
}

func toRunDTO(run sqlite.EligibilityRun) EligibilityRunDTO {
	return EligibilityRunDTO{
		ID:           run.ID,
		BonusID:      run.BonusID,
		StoreID:      run.StoreID,
		IndividualID: run.IndividualID,
		Passed:       run.Passed,
		Reason:       run.Reason,
		EvaluatedAt:  run.EvaluatedAt.Format(time.RFC3339),
	}
}
