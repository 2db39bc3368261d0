/*
Package sqlite provides a SQLite-backed implementation of the storage ports.

PURPOSE:
  Implements the planner's store interfaces (WorkOrderStore, CapabilityStore,
  CustomerOrderStore) plus the listing operations the API needs. In
  production the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  work_orders:          the production backlog and its computed schedule
  product_capabilities: per-product ceiling and daily multiplier
  customer_orders:      propagated delivery estimates

IDEMPOTENT WRITES:
  UpdateSchedule and UpdateDeliveryEstimate overwrite with the values the
  simulator computed; replaying the same recalculation with unchanged input
  produces an identical row. There is no append semantics here - the schedule
  columns are derived data, owned by the recalculator.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's WAL mode. The
  recalculator additionally serializes whole recalculation runs with its own
  lock; the store lock only protects individual statements.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/production.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - planner/ports.go: interface definitions
  - store/memory:     in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/production-engine/schedule"
)

const dateLayout = "2006-01-02"

// Store implements all storage ports using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

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
	schemaSQL := `
	-- Production backlog. start_date/end_date/quantity_pending are derived
	-- columns owned by the recalculator.
	CREATE TABLE IF NOT EXISTS work_orders (
		id TEXT PRIMARY KEY,
		customer_order_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity_total INTEGER NOT NULL CHECK (quantity_total >= 0),
		quantity_pending INTEGER NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0,
		assigned_capacity INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'queued',
		start_date TEXT,
		end_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Backlog fetch is the hot path: status filter plus scheduling order.
	CREATE INDEX IF NOT EXISTS idx_work_orders_active
		ON work_orders(status, priority DESC, created_at ASC);
	CREATE INDEX IF NOT EXISTS idx_work_orders_customer_order
		ON work_orders(customer_order_id);

	CREATE TABLE IF NOT EXISTS product_capabilities (
		product_id TEXT PRIMARY KEY,
		capacity_ceiling INTEGER NOT NULL CHECK (capacity_ceiling >= 1),
		daily_multiplier INTEGER NOT NULL CHECK (daily_multiplier >= 1),
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS customer_orders (
		id TEXT PRIMARY KEY,
		estimated_delivery TEXT,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schemaSQL)
	return err
}

// =============================================================================
// WORK ORDERS
// =============================================================================

// Enqueue inserts a new work order into the backlog.
func (s *Store) Enqueue(ctx context.Context, wo schedule.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_orders
			(id, customer_order_id, product_id, quantity_total, quantity_pending,
			 priority, assigned_capacity, status, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(wo.ID), string(wo.CustomerOrderID), string(wo.ProductID),
		wo.QuantityTotal, wo.QuantityPending,
		boolToInt(wo.Priority), wo.AssignedCapacity, string(wo.Status),
		dateOrNull(wo.StartDate), dateOrNull(wo.EndDate),
		wo.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return schedule.ErrDuplicateWorkOrder
		}
		return fmt.Errorf("failed to enqueue work order: %w", err)
	}
	return nil
}

// GetWorkOrder returns one order, or nil when absent.
func (s *Store) GetWorkOrder(ctx context.Context, id schedule.WorkOrderID) (*schedule.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectWorkOrder+` WHERE id = ?`, string(id))
	wo, err := scanWorkOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wo, nil
}

// ListActive returns queued and in-progress orders in strict scheduling
// order: priority first, then creation time, then ID.
func (s *Store) ListActive(ctx context.Context) ([]schedule.WorkOrder, error) {
	return s.listWhere(ctx, `WHERE status IN ('queued', 'in_progress')`)
}

// ListAll returns every order regardless of status.
func (s *Store) ListAll(ctx context.Context) ([]schedule.WorkOrder, error) {
	return s.listWhere(ctx, ``)
}

func (s *Store) listWhere(ctx context.Context, where string) ([]schedule.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectWorkOrder + ` ` + where + `
		ORDER BY priority DESC, created_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	defer rows.Close()

	var result []schedule.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *wo)
	}
	return result, rows.Err()
}

// UpdateSchedule writes the simulator's verdict back to one order.
func (s *Store) UpdateSchedule(ctx context.Context, id schedule.WorkOrderID, start, end *time.Time, pending int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE work_orders
		SET start_date = ?, end_date = ?, quantity_pending = ?
		WHERE id = ?`,
		dateOrNull(start), dateOrNull(end), pending, string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrWorkOrderNotFound
	}
	return nil
}

// UpdateStatus applies a manual lifecycle transition.
func (s *Store) UpdateStatus(ctx context.Context, id schedule.WorkOrderID, status schedule.WorkOrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE work_orders SET status = ? WHERE id = ?`, string(status), string(id))
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrWorkOrderNotFound
	}
	return nil
}

// =============================================================================
// PRODUCT CAPABILITIES
// =============================================================================

// UpsertCapability creates or replaces a product's capability record.
func (s *Store) UpsertCapability(ctx context.Context, c schedule.ProductCapability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO product_capabilities (product_id, capacity_ceiling, daily_multiplier, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			capacity_ceiling = excluded.capacity_ceiling,
			daily_multiplier = excluded.daily_multiplier,
			updated_at = excluded.updated_at`,
		string(c.ProductID), c.CapacityCeiling, c.DailyMultiplier,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert capability: %w", err)
	}
	return nil
}

// Capabilities returns the records for the given products in one query.
// Products without a record are absent from the result (fail-open is the
// engine's job, not the store's).
func (s *Store) Capabilities(ctx context.Context, ids []schedule.ProductID) ([]schedule.ProductCapability, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, capacity_ceiling, daily_multiplier
		FROM product_capabilities
		WHERE product_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load capabilities: %w", err)
	}
	defer rows.Close()

	return scanCapabilities(rows)
}

// ListCapabilities returns every capability record.
func (s *Store) ListCapabilities(ctx context.Context) ([]schedule.ProductCapability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, capacity_ceiling, daily_multiplier
		FROM product_capabilities
		ORDER BY product_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list capabilities: %w", err)
	}
	defer rows.Close()

	return scanCapabilities(rows)
}

// =============================================================================
// CUSTOMER ORDERS
// =============================================================================

// UpdateDeliveryEstimate upserts a customer order's estimated delivery date.
func (s *Store) UpdateDeliveryEstimate(ctx context.Context, id schedule.CustomerOrderID, estimated time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customer_orders (id, estimated_delivery, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			estimated_delivery = excluded.estimated_delivery,
			updated_at = excluded.updated_at`,
		string(id), estimated.Format(dateLayout), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to update delivery estimate: %w", err)
	}
	return nil
}

// GetDeliveryEstimate returns a customer order's estimate, or nil when none
// has been written.
func (s *Store) GetDeliveryEstimate(ctx context.Context, id schedule.CustomerOrderID) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var estimated sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT estimated_delivery FROM customer_orders WHERE id = ?`, string(id)).
		Scan(&estimated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseDateOrNil(estimated)
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

const selectWorkOrder = `
	SELECT id, customer_order_id, product_id, quantity_total, quantity_pending,
	       priority, assigned_capacity, status, start_date, end_date, created_at
	FROM work_orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkOrder(row rowScanner) (*schedule.WorkOrder, error) {
	var (
		wo         schedule.WorkOrder
		id         string
		orderID    string
		productID  string
		priority   int
		status     string
		start, end sql.NullString
		createdAt  string
	)
	err := row.Scan(&id, &orderID, &productID, &wo.QuantityTotal, &wo.QuantityPending,
		&priority, &wo.AssignedCapacity, &status, &start, &end, &createdAt)
	if err != nil {
		return nil, err
	}

	wo.ID = schedule.WorkOrderID(id)
	wo.CustomerOrderID = schedule.CustomerOrderID(orderID)
	wo.ProductID = schedule.ProductID(productID)
	wo.Priority = priority != 0
	wo.Status = schedule.WorkOrderStatus(status)

	if wo.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at for %s: %w", id, err)
	}
	if wo.StartDate, err = parseDateOrNil(start); err != nil {
		return nil, fmt.Errorf("bad start_date for %s: %w", id, err)
	}
	if wo.EndDate, err = parseDateOrNil(end); err != nil {
		return nil, fmt.Errorf("bad end_date for %s: %w", id, err)
	}
	return &wo, nil
}

func scanCapabilities(rows *sql.Rows) ([]schedule.ProductCapability, error) {
	var result []schedule.ProductCapability
	for rows.Next() {
		var (
			c  schedule.ProductCapability
			id string
		)
		if err := rows.Scan(&id, &c.CapacityCeiling, &c.DailyMultiplier); err != nil {
			return nil, err
		}
		c.ProductID = schedule.ProductID(id)
		result = append(result, c)
	}
	return result, rows.Err()
}

func dateOrNull(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseDateOrNil(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
