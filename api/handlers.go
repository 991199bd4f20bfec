/*
handlers.go - HTTP API handlers for the goal engine

PURPOSE:
  Exposes the allocation and eligibility engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Stores:
    GET    /api/stores                       List stores
    POST   /api/stores                       Create store
    GET    /api/stores/{id}/profiles         List salespeople
    GET    /api/stores/{id}/goals            List goal rows
    GET    /api/stores/{id}/targets/daily    Today's dynamic target
    GET    /api/stores/{id}/targets/weekly   Week's derived target
    GET    /api/stores/{id}/eligibility/runs Sweep verdict history

  Profiles / Goals / Sales:
    POST   /api/profiles                     Create salesperson
    POST   /api/goals                        Create/update goal row
    GET    /api/goals/{id}                   Get goal row
    POST   /api/sales                        Record sale
    DELETE /api/sales/{id}                   Exclude sale from aggregates

  Bonuses:
    GET    /api/bonuses                      List bonus definitions
    POST   /api/bonuses                      Create/update bonus (validates
                                             prerequisites at save time)
    POST   /api/eligibility/check            Evaluate prerequisites now

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors (store/lookup failures)

  Failed verdicts are NOT errors: a 200 response with passed=false and
  the reason is the normal outcome of an unearned bonus.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/eleve/goal-engine/bonus"
	"github.com/eleve/goal-engine/factory"
	"github.com/eleve/goal-engine/goal"
	"github.com/eleve/goal-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Evaluator  *goal.Evaluator
	Aggregator *bonus.Aggregator

	// now is injectable so tests can pin the evaluation date.
	now func() time.Time
}

// NewHandler creates a new handler over the given store.
func NewHandler(store *sqlite.Store) *Handler {
	evaluator := goal.NewEvaluator(store, store)
	return &Handler{
		Store:      store,
		Evaluator:  evaluator,
		Aggregator: bonus.NewAggregator(evaluator),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// =============================================================================
// STORES AND PROFILES
// =============================================================================

func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListStores(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]StoreDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, StoreDTO{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt.Format(time.RFC3339)})
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "id and name are required")
		return
	}
	if err := h.Store.SaveStore(r.Context(), sqlite.StoreRecord{ID: req.ID, Name: req.Name}); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, StoreDTO{ID: req.ID, Name: req.Name})
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ID == "" || req.StoreID == "" {
		respondError(w, http.StatusBadRequest, "id and store_id are required")
		return
	}
	rec := sqlite.ProfileRecord{ID: req.ID, StoreID: req.StoreID, Name: req.Name, Role: req.Role}
	if err := h.Store.SaveProfile(r.Context(), rec); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, ProfileDTO{ID: req.ID, StoreID: req.StoreID, Name: req.Name, Role: req.Role})
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "id")
	records, err := h.Store.ListProfiles(r.Context(), storeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]ProfileDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, ProfileDTO{ID: rec.ID, StoreID: rec.StoreID, Name: rec.Name, Role: rec.Role})
	}
	respondJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// GOALS
// =============================================================================

func (h *Handler) SaveGoal(w http.ResponseWriter, r *http.Request) {
	var req SaveGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	g, warnings, err := factory.FromJSON(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if g.ID == "" || g.StoreID == "" {
		respondError(w, http.StatusBadRequest, "id and store_id are required")
		return
	}

	if err := h.Store.SaveGoal(r.Context(), g); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, toGoalDTO(g, warnings))
}

func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.Store.GetGoal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if g == nil {
		respondError(w, http.StatusNotFound, "goal not found")
		return
	}
	respondJSON(w, http.StatusOK, toGoalDTO(*g, nil))
}

func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.Store.ListGoals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]GoalDTO, 0, len(goals))
	for _, g := range goals {
		dtos = append(dtos, toGoalDTO(g, nil))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SALES
// =============================================================================

func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ID == "" || req.StoreID == "" {
		respondError(w, http.StatusBadRequest, "id and store_id are required")
		return
	}
	soldAt, err := time.ParseInLocation(goal.DateKeyLayout, req.SoldAt, time.UTC)
	if err != nil {
		respondError(w, http.StatusBadRequest, "sold_at must be yyyy-MM-dd")
		return
	}
	if req.Amount < 0 {
		respondError(w, http.StatusBadRequest, "amount must be >= 0")
		return
	}

	rec := sqlite.SaleRecord{
		ID:       req.ID,
		StoreID:  req.StoreID,
		SellerID: req.SellerID,
		SoldAt:   soldAt,
		Amount:   decimal.NewFromFloat(req.Amount),
	}
	if err := h.Store.RecordSale(r.Context(), rec); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// ExcludeSale marks a sale as excluded (return/cancellation) so it stops
// counting toward targets and eligibility.
func (h *Handler) ExcludeSale(w http.ResponseWriter, r *http.Request) {
	err := h.Store.ExcludeSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "sale not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TARGETS
// =============================================================================

// GetDailyTarget computes the dynamic target for one day.
// Query params: owner_id (optional, switches to individual scope),
// date (yyyy-MM-dd, defaults to today).
func (h *Handler) GetDailyTarget(w http.ResponseWriter, r *http.Request) {
	ec, scope, day, ok := h.targetQuery(w, r)
	if !ok {
		return
	}

	g, err := h.Store.FindGoal(r.Context(), scope, ec, goal.MonthReference(day))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if g == nil {
		respondError(w, http.StatusNotFound, "no goal configured for "+goal.MonthReference(day))
		return
	}

	// Sales accumulated on the days strictly before the target day.
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	salesToDate, err := h.Store.SalesTotal(r.Context(), scope, ec, monthStart, day.AddDate(0, 0, -1))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	target, _ := goal.DailyTarget(*g, day, salesToDate).Float64()
	sales, _ := salesToDate.Float64()
	respondJSON(w, http.StatusOK, DailyTargetDTO{
		StoreID:     ec.StoreID,
		OwnerID:     ec.IndividualID,
		Date:        day.Format(goal.DateKeyLayout),
		Target:      target,
		SalesToDate: sales,
	})
}

// GetWeeklyTarget computes the week's derived share of the monthly goal.
func (h *Handler) GetWeeklyTarget(w http.ResponseWriter, r *http.Request) {
	ec, scope, day, ok := h.targetQuery(w, r)
	if !ok {
		return
	}
	weekRef := goal.WeekReference(day)

	g, err := h.Store.FindGoal(r.Context(), scope, ec, goal.MonthReference(day))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if g == nil {
		respondError(w, http.StatusNotFound, "no goal configured for "+goal.MonthReference(day))
		return
	}

	target, err := goal.WeeklyTarget(*g, weekRef)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stretch, err := goal.WeeklyTargetFor(*g, weekRef, goal.MetricStretchTarget)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	targetF, _ := target.Float64()
	stretchF, _ := stretch.Float64()
	respondJSON(w, http.StatusOK, WeeklyTargetDTO{
		StoreID:       ec.StoreID,
		OwnerID:       ec.IndividualID,
		WeekReference: weekRef,
		Target:        targetF,
		StretchTarget: stretchF,
	})
}

// targetQuery parses the shared query surface of the target endpoints.
func (h *Handler) targetQuery(w http.ResponseWriter, r *http.Request) (goal.EvalContext, goal.Scope, time.Time, bool) {
	storeID := chi.URLParam(r, "id")
	ownerID := r.URL.Query().Get("owner_id")

	day := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(goal.DateKeyLayout, raw, time.UTC)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be yyyy-MM-dd")
			return goal.EvalContext{}, "", time.Time{}, false
		}
		day = parsed
	}

	scope := goal.ScopeStore
	if ownerID != "" {
		scope = goal.ScopeIndividual
	}
	ec := goal.EvalContext{StoreID: storeID, IndividualID: ownerID, AsOf: day}
	return ec, scope, day, true
}

// =============================================================================
// BONUSES AND ELIGIBILITY
// =============================================================================

func (h *Handler) ListBonuses(w http.ResponseWriter, r *http.Request) {
	bonuses, err := h.Store.ListBonuses(r.Context(), false)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]BonusDTO, 0, len(bonuses))
	for _, b := range bonuses {
		dtos = append(dtos, toBonusDTO(b))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// SaveBonus creates or updates a bonus definition. Unparseable
// prerequisites are rejected here, at configuration time, rather than
// failing every future evaluation.
func (h *Handler) SaveBonus(w http.ResponseWriter, r *http.Request) {
	var req SaveBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "id and name are required")
		return
	}

	tier := bonus.TierStandard
	if req.Tier != "" {
		tier = bonus.Tier(req.Tier)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	b := bonus.Bonus{
		ID:            req.ID,
		Name:          req.Name,
		Tier:          tier,
		Payout:        decimal.NewFromFloat(req.Payout),
		Prerequisites: req.Prerequisites,
		Active:        active,
	}
	if err := b.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Store.SaveBonus(r.Context(), b); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, toBonusDTO(b))
}

// CheckEligibility evaluates a bonus's (or an ad-hoc list of)
// prerequisites for a store or salesperson.
func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req CheckEligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.StoreID == "" {
		respondError(w, http.StatusBadRequest, "store_id is required")
		return
	}

	asOf := h.now()
	if req.AsOf != "" {
		parsed, err := time.ParseInLocation(goal.DateKeyLayout, req.AsOf, time.UTC)
		if err != nil {
			respondError(w, http.StatusBadRequest, "as_of must be yyyy-MM-dd")
			return
		}
		asOf = parsed
	}

	prerequisites := req.Prerequisites
	if req.BonusID != "" {
		b, err := h.Store.GetBonus(r.Context(), req.BonusID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if b == nil {
			respondError(w, http.StatusNotFound, "bonus not found")
			return
		}
		prerequisites = b.Prerequisites
	}

	ec := goal.EvalContext{StoreID: req.StoreID, IndividualID: req.IndividualID, AsOf: asOf}
	verdict, err := h.Aggregator.EvaluateAll(r.Context(), prerequisites, ec)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, VerdictDTO{Passed: verdict.Passed, Reason: verdict.Reason})
}

func (h *Handler) ListEligibilityRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	runs, err := h.Store.ListEligibilityRuns(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dtos := make([]EligibilityRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toRunDTO(run))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
