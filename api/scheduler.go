/*
scheduler.go - Automated eligibility sweep

PURPOSE:
  Periodically re-evaluates every active bonus against every store (and,
  for individually-scoped bonuses, every salesperson) and records the
  verdicts for audit and UI display.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Store-scoped bonuses are evaluated once per store
  - Individually-scoped bonuses are evaluated once per salesperson
  - Lookup failures are logged and skipped; failed verdicts are recorded
    like any other outcome

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the sweep is active (default: true)

USAGE:
  sweep := NewEligibilitySweep(store, handler)
  sweep.Start()
  // ... later
  sweep.Stop()

SEE ALSO:
  - handlers.go: CheckEligibility endpoint (on-demand evaluation)
  - bonus/aggregator.go: Aggregator
*/
package api

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/eleve/goal-engine/bonus"
	"github.com/eleve/goal-engine/goal"
	"github.com/eleve/goal-engine/store/sqlite"
)

// EligibilitySweep re-evaluates bonus eligibility on a schedule.
type EligibilitySweep struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewEligibilitySweep creates a new sweep.
func NewEligibilitySweep(store *sqlite.Store, handler *Handler) *EligibilitySweep {
	return &EligibilitySweep{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweep.
func (es *EligibilitySweep) Start() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.Enabled {
		log.Println("[Sweep] Disabled, not starting")
		return
	}

	es.ticker = time.NewTicker(es.CheckInterval)
	es.wg.Add(1)

	go es.run()

	log.Printf("[Sweep] Started with check interval: %v", es.CheckInterval)
}

// Stop stops the sweep.
func (es *EligibilitySweep) Stop() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.ticker != nil {
		es.ticker.Stop()
		close(es.stop)
		es.wg.Wait()
		log.Println("[Sweep] Stopped")
	}
}

func (es *EligibilitySweep) run() {
	defer es.wg.Done()

	// Run immediately on start
	es.checkAndRecord()

	for {
		select {
		case <-es.ticker.C:
			es.checkAndRecord()
		case <-es.stop:
			return
		}
	}
}

func (es *EligibilitySweep) checkAndRecord() {
	ctx := context.Background()
	now := es.Handler.now()

	log.Printf("[Sweep] Evaluating bonus eligibility at %v", now)

	stores, err := es.Store.ListStores(ctx)
	if err != nil {
		log.Printf("[Sweep] Error listing stores: %v", err)
		return
	}
	bonuses, err := es.Store.ListBonuses(ctx, true)
	if err != nil {
		log.Printf("[Sweep] Error listing bonuses: %v", err)
		return
	}

	recorded := 0
	for _, st := range stores {
		for _, b := range bonuses {
			if b.Scope() == goal.ScopeStore {
				ec := goal.EvalContext{StoreID: st.ID, AsOf: now}
				if err := es.evaluateAndRecord(ctx, b, ec); err != nil {
					log.Printf("[Sweep] Error evaluating %s for store %s: %v", b.ID, st.ID, err)
					continue
				}
				recorded++
				continue
			}

			// Individually-scoped bonus: one verdict per salesperson.
			profiles, err := es.Store.ListProfiles(ctx, st.ID)
			if err != nil {
				log.Printf("[Sweep] Error listing profiles for store %s: %v", st.ID, err)
				continue
			}
			for _, p := range profiles {
				ec := goal.EvalContext{StoreID: st.ID, IndividualID: p.ID, AsOf: now}
				if err := es.evaluateAndRecord(ctx, b, ec); err != nil {
					log.Printf("[Sweep] Error evaluating %s for %s/%s: %v", b.ID, st.ID, p.ID, err)
					continue
				}
				recorded++
			}
		}
	}

	if recorded > 0 {
		log.Printf("[Sweep] Completed: %d verdicts recorded", recorded)
	}
}

func (es *EligibilitySweep) evaluateAndRecord(ctx context.Context, b bonus.Bonus, ec goal.EvalContext) error {
	verdict, err := es.Handler.Aggregator.Eligible(ctx, b, ec)
	if err != nil {
		return err
	}

	run := sqlite.EligibilityRun{
		BonusID:      b.ID,
		StoreID:      ec.StoreID,
		IndividualID: ec.IndividualID,
		Passed:       verdict.Passed,
		Reason:       verdict.Reason,
		EvaluatedAt:  ec.AsOf,
	}
	if err := es.Store.RecordEligibilityRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

// RunNow triggers an immediate sweep (for testing/admin).
func (es *EligibilitySweep) RunNow() {
	es.checkAndRecord()
}

// GetNextRunTime returns when the next scheduled sweep will occur.
func (es *EligibilitySweep) GetNextRunTime() time.Time {
	return time.Now().Add(es.CheckInterval)
}
