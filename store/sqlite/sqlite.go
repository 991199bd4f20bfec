/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Persists the tables the engine reads (goals, sales, stores, profiles)
  plus bonus definitions and eligibility run history, and implements the
  goal.GoalLookup and goal.SalesLookup capabilities over them. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  stores:           Tenant store records
  profiles:         Salespeople per store
  goals:            Target rows keyed by (scope, period, reference)
  sales:            Sale records; excluded sales never count in aggregates
  bonuses:          Bonus definitions with prerequisite lists
  eligibility_runs: Verdict history written by the sweep (audit trail)

PRECISION:
  Monetary values are stored as TEXT and summed in Go with
  decimal.Decimal. SQLite's numeric affinity would silently coerce to
  float64 and lose cents.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/goals.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  evaluator := goal.NewEvaluator(store, store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - goal/types.go: Lookup interface definitions
  - goal/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/eleve/goal-engine/bonus"
	"github.com/eleve/goal-engine/goal"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time checks that Store implements the engine's lookup capabilities.
var (
	_ goal.GoalLookup  = (*Store)(nil)
	_ goal.SalesLookup = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id),
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'seller',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_profiles_store ON profiles(store_id);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id),
		owner_id TEXT NOT NULL DEFAULT '',
		scope TEXT NOT NULL,
		period_type TEXT NOT NULL,
		month_reference TEXT NOT NULL DEFAULT '',
		week_reference TEXT NOT NULL DEFAULT '',
		target_value TEXT NOT NULL,
		stretch_target_value TEXT NOT NULL DEFAULT '0',
		daily_weights TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_goals_lookup
		ON goals(store_id, period_type, month_reference, owner_id);

	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id),
		seller_id TEXT NOT NULL DEFAULT '',
		sold_at TEXT NOT NULL,
		amount TEXT NOT NULL,
		excluded INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sales_store_date ON sales(store_id, sold_at);
	CREATE INDEX IF NOT EXISTS idx_sales_seller_date ON sales(store_id, seller_id, sold_at);

	CREATE TABLE IF NOT EXISTS bonuses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tier TEXT NOT NULL,
		payout TEXT NOT NULL,
		prerequisites TEXT NOT NULL DEFAULT '[]',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS eligibility_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bonus_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		individual_id TEXT NOT NULL DEFAULT '',
		passed INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		evaluated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_store ON eligibility_runs(store_id, evaluated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const (
	dayLayout = "2006-01-02"
)

// =============================================================================
// STORES AND PROFILES
// =============================================================================

// StoreRecord is one tenant store.
type StoreRecord struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ProfileRecord is one salesperson.
type ProfileRecord struct {
	ID        string
	StoreID   string
	Name      string
	Role      string
	CreatedAt time.Time
}

func (s *Store) SaveStore(ctx context.Context, rec StoreRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stores (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		rec.ID, rec.Name, rec.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) ListStores(ctx context.Context) ([]StoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM stores ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StoreRecord
	for rows.Next() {
		var rec StoreRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Name, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (s *Store) SaveProfile(ctx context.Context, rec ProfileRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Role == "" {
		rec.Role = "seller"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, store_id, name, role, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, role = excluded.role`,
		rec.ID, rec.StoreID, rec.Name, rec.Role, rec.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) ListProfiles(ctx context.Context, storeID string) ([]ProfileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, name, role, created_at FROM profiles
		WHERE store_id = ? ORDER BY id`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProfileRecord
	for rows.Next() {
		var rec ProfileRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.StoreID, &rec.Name, &rec.Role, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, rec)
	}
	return result, rows.Err()
}

// =============================================================================
// GOALS
// =============================================================================

// SaveGoal inserts or replaces a goal row.
func (s *Store) SaveGoal(ctx context.Context, g goal.Goal) error {
	weights, err := json.Marshal(g.DailyWeights)
	if err != nil {
		return fmt.Errorf("marshal daily weights: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO goals (id, store_id, owner_id, scope, period_type,
			month_reference, week_reference, target_value,
			stretch_target_value, daily_weights, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			scope = excluded.scope,
			period_type = excluded.period_type,
			month_reference = excluded.month_reference,
			week_reference = excluded.week_reference,
			target_value = excluded.target_value,
			stretch_target_value = excluded.stretch_target_value,
			daily_weights = excluded.daily_weights,
			updated_at = excluded.updated_at`,
		g.ID, g.StoreID, g.OwnerID, string(g.Scope), string(g.PeriodType),
		g.MonthReference, g.WeekReference, g.TargetValue.String(),
		g.StretchTargetValue.String(), string(weights), now, now)
	return err
}

// GetGoal returns one goal row by ID, or nil if absent.
func (s *Store) GetGoal(ctx context.Context, id string) (*goal.Goal, error) {
	row := s.db.QueryRowContext(ctx, goalSelect+` WHERE id = ?`, id)
	return scanGoal(row)
}

// ListGoals returns all goal rows for a store.
func (s *Store) ListGoals(ctx context.Context, storeID string) ([]goal.Goal, error) {
	rows, err := s.db.QueryContext(ctx, goalSelect+` WHERE store_id = ? ORDER BY month_reference, owner_id`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []goal.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *g)
	}
	return result, rows.Err()
}

// FindGoal implements goal.GoalLookup. Store scope resolves the MENSAL row
// with no owner; individual scope resolves the INDIVIDUAL row owned by the
// context's salesperson. Returns (nil, nil) when no row matches.
func (s *Store) FindGoal(ctx context.Context, scope goal.Scope, ec goal.EvalContext, monthRef string) (*goal.Goal, error) {
	var row *sql.Row
	switch scope {
	case goal.ScopeIndividual:
		row = s.db.QueryRowContext(ctx, goalSelect+`
			WHERE store_id = ? AND month_reference = ?
			  AND period_type = ? AND owner_id = ?`,
			ec.StoreID, monthRef, string(goal.TypeIndividual), ec.IndividualID)
	default:
		row = s.db.QueryRowContext(ctx, goalSelect+`
			WHERE store_id = ? AND month_reference = ?
			  AND period_type = ? AND owner_id = ''`,
			ec.StoreID, monthRef, string(goal.TypeMonthly))
	}
	return scanGoal(row)
}

const goalSelect = `
	SELECT id, store_id, owner_id, scope, period_type, month_reference,
	       week_reference, target_value, stretch_target_value, daily_weights
	FROM goals`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*goal.Goal, error) {
	var g goal.Goal
	var scope, periodType, target, stretch, weights string
	err := row.Scan(&g.ID, &g.StoreID, &g.OwnerID, &scope, &periodType,
		&g.MonthReference, &g.WeekReference, &target, &stretch, &weights)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	g.Scope = goal.Scope(scope)
	g.PeriodType = goal.PeriodType(periodType)
	if g.TargetValue, err = decimal.NewFromString(target); err != nil {
		return nil, fmt.Errorf("goal %s: bad target_value %q: %w", g.ID, target, err)
	}
	if g.StretchTargetValue, err = decimal.NewFromString(stretch); err != nil {
		return nil, fmt.Errorf("goal %s: bad stretch_target_value %q: %w", g.ID, stretch, err)
	}
	if weights != "" && weights != "{}" && weights != "null" {
		if err := json.Unmarshal([]byte(weights), &g.DailyWeights); err != nil {
			return nil, fmt.Errorf("goal %s: bad daily_weights: %w", g.ID, err)
		}
	}
	return &g, nil
}

// =============================================================================
// SALES
// =============================================================================

// SaleRecord is one recorded sale.
type SaleRecord struct {
	ID       string
	StoreID  string
	SellerID string
	SoldAt   time.Time
	Amount   decimal.Decimal
	Excluded bool
}

func (s *Store) RecordSale(ctx context.Context, rec SaleRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (id, store_id, seller_id, sold_at, amount, excluded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StoreID, rec.SellerID, rec.SoldAt.Format(dayLayout),
		rec.Amount.String(), boolToInt(rec.Excluded), time.Now().UTC().Format(time.RFC3339))
	return err
}

// ExcludeSale marks a sale as excluded so it no longer counts toward any
// aggregate (returns, cancellations).
func (s *Store) ExcludeSale(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sales SET excluded = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SalesTotal implements goal.SalesLookup: the sum of non-excluded sale
// amounts for the scope within [from, to]. Amounts are summed in Go to
// keep decimal precision.
func (s *Store) SalesTotal(ctx context.Context, scope goal.Scope, ec goal.EvalContext, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT amount FROM sales
		WHERE store_id = ? AND excluded = 0 AND sold_at >= ? AND sold_at <= ?`
	args := []any{ec.StoreID, from.Format(dayLayout), to.Format(dayLayout)}
	if scope == goal.ScopeIndividual {
		query += ` AND seller_id = ?`
		args = append(args, ec.IndividualID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("bad sale amount %q: %w", amount, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// =============================================================================
// BONUSES
// =============================================================================

// SaveBonus inserts or replaces a bonus definition. Prerequisites are
// validated at save time so unrecognized statements never reach an
// evaluation (legacy rows still fail closed there).
func (s *Store) SaveBonus(ctx context.Context, b bonus.Bonus) error {
	if err := b.Validate(); err != nil {
		return err
	}
	prereqs, err := json.Marshal(b.Prerequisites)
	if err != nil {
		return fmt.Errorf("marshal prerequisites: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bonuses (id, name, tier, payout, prerequisites, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			tier = excluded.tier,
			payout = excluded.payout,
			prerequisites = excluded.prerequisites,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		b.ID, b.Name, string(b.Tier), b.Payout.String(), string(prereqs), boolToInt(b.Active), now, now)
	return err
}

// GetBonus returns one bonus by ID, or nil if absent.
func (s *Store) GetBonus(ctx context.Context, id string) (*bonus.Bonus, error) {
	row := s.db.QueryRowContext(ctx, bonusSelect+` WHERE id = ?`, id)
	b, err := scanBonus(row)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBonuses returns bonus definitions, optionally only active ones.
func (s *Store) ListBonuses(ctx context.Context, activeOnly bool) ([]bonus.Bonus, error) {
	query := bonusSelect
	if activeOnly {
		query += ` WHERE active = 1`
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []bonus.Bonus
	for rows.Next() {
		b, err := scanBonus(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

const bonusSelect = `SELECT id, name, tier, payout, prerequisites, active FROM bonuses`

func scanBonus(row rowScanner) (*bonus.Bonus, error) {
	var b bonus.Bonus
	var tier, payout, prereqs string
	var active int
	err := row.Scan(&b.ID, &b.Name, &tier, &payout, &prereqs, &active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	b.Tier = bonus.Tier(tier)
	b.Active = active != 0
	if b.Payout, err = decimal.NewFromString(payout); err != nil {
		return nil, fmt.Errorf("bonus %s: bad payout %q: %w", b.ID, payout, err)
	}
	if err := json.Unmarshal([]byte(prereqs), &b.Prerequisites); err != nil {
		return nil, fmt.Errorf("bonus %s: bad prerequisites: %w", b.ID, err)
	}
	return &b, nil
}

// =============================================================================
// ELIGIBILITY RUNS - Audit trail written by the sweep
// =============================================================================

// EligibilityRun is one recorded verdict.
type EligibilityRun struct {
	ID           int64
	BonusID      string
	StoreID      string
	IndividualID string
	Passed       bool
	Reason       string
	EvaluatedAt  time.Time
}

func (s *Store) RecordEligibilityRun(ctx context.Context, run EligibilityRun) error {
	if run.EvaluatedAt.IsZero() {
		run.EvaluatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO eligibility_runs (bonus_id, store_id, individual_id, passed, reason, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.BonusID, run.StoreID, run.IndividualID, boolToInt(run.Passed),
		run.Reason, run.EvaluatedAt.Format(time.RFC3339))
	return err
}

// ListEligibilityRuns returns the most recent runs for a store.
func (s *Store) ListEligibilityRuns(ctx context.Context, storeID string, limit int) ([]EligibilityRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bonus_id, store_id, individual_id, passed, reason, evaluated_at
		FROM eligibility_runs
		WHERE store_id = ?
		ORDER BY evaluated_at DESC, id DESC
		LIMIT ?`, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EligibilityRun
	for rows.Next() {
		var run EligibilityRun
		var passed int
		var evaluatedAt string
		if err := rows.Scan(&run.ID, &run.BonusID, &run.StoreID, &run.IndividualID,
			&passed, &run.Reason, &evaluatedAt); err != nil {
			return nil, err
		}
		run.Passed = passed != 0
		run.EvaluatedAt, _ = time.Parse(time.RFC3339, evaluatedAt)
		result = append(result, run)
	}
	return result, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
