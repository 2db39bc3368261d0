/*
Package schedule provides the production capacity scheduling engine.

PURPOSE:
  This package contains the pure scheduling core: given a backlog of
  work-orders competing for a shared, weekday-varying pool of capacity units
  (mold slots), it decides when each work-order starts, how many working days
  it occupies, and when it finishes. Everything here is deterministic,
  single-threaded, and I/O-free: callers hand in a snapshot and get a result.

KEY CONCEPTS IN THIS FILE (types.go):
  - WorkOrder: one unit of scheduled production, tied to a customer order line
  - ProductCapability: per-product scheduling parameters (ceiling, multiplier)
  - WeekSchedule: weekday -> capacity units available that day
  - Typed identifiers for work-orders, products, and customer orders

DESIGN PRINCIPLES:
  1. Purity: the simulator mutates only its own working copies, never inputs
  2. Determinism: identical snapshots always produce identical schedules
  3. Precision: decimal arithmetic at the waste/yield boundary (capacity.go)
  4. Fail-open defaults: a product without a capability record still schedules

USAGE:
  model, _ := schedule.NewCapacityModel(week, waste, caps)
  sim := schedule.Simulation{Model: model}
  outcome, err := sim.Run(orders, startDate)

SEE ALSO:
  - calendar.go:  business-day arithmetic on top of WeekSchedule
  - capacity.go:  capacity pools, ceilings, waste adjustment
  - simulator.go: the day-stepped allocation loop
*/
package schedule

import (
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkOrderID string
type ProductID string
type CustomerOrderID string

// =============================================================================
// WORK ORDER - One schedulable production task
// =============================================================================

// WorkOrderStatus tracks the manual lifecycle. The simulator only looks at
// orders in StatusQueued or StatusInProgress; transitions themselves are the
// surrounding application's concern.
type WorkOrderStatus string

const (
	StatusQueued     WorkOrderStatus = "queued"
	StatusInProgress WorkOrderStatus = "in_progress"
	StatusDone       WorkOrderStatus = "done"
	StatusCancelled  WorkOrderStatus = "cancelled"
)

// WorkOrder is one unit of scheduled production.
//
// QuantityTotal is fixed at creation. QuantityPending starts at the
// waste-adjusted total and only ever decreases during simulation.
// StartDate/EndDate are nil until the simulator assigns them.
type WorkOrder struct {
	ID              WorkOrderID
	CustomerOrderID CustomerOrderID
	ProductID       ProductID

	QuantityTotal   int
	QuantityPending int

	// Priority orders are scheduled ahead of all non-priority orders;
	// ties break by CreatedAt (earliest first), then ID.
	Priority  bool
	CreatedAt time.Time

	// AssignedCapacity is the capacity units this order consumes on any day
	// it is active. Clamped to the product's ceiling before simulation.
	AssignedCapacity int

	Status    WorkOrderStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// Active reports whether the order still competes for capacity.
func (w WorkOrder) Active() bool {
	return w.Status == StatusQueued || w.Status == StatusInProgress
}

// =============================================================================
// PRODUCT CAPABILITY - Per-product scheduling parameters
// =============================================================================

// ProductCapability holds the per-product ceiling and output multiplier.
// Read-only for the duration of a simulation run.
type ProductCapability struct {
	ProductID ProductID

	// CapacityCeiling is the maximum capacity units one work-order of this
	// product may occupy concurrently, independent of the global pool.
	CapacityCeiling int

	// DailyMultiplier is the output produced per capacity unit per active day
	// (casting rounds per mold per day).
	DailyMultiplier int
}

// DefaultCapability is the fail-open record used when a product has no
// capability row: absence must never block scheduling.
func DefaultCapability(id ProductID) ProductCapability {
	return ProductCapability{ProductID: id, CapacityCeiling: 1, DailyMultiplier: 1}
}

// =============================================================================
// WEEK SCHEDULE - Weekday -> global capacity units
// =============================================================================

// WeekSchedule maps each weekday to the shared capacity pool available that
// day. A weekday with pool 0 is a rest day; a weekday with a reduced pool
// (e.g. half capacity on Saturday) is still a work day.
type WeekSchedule struct {
	pools [7]int // indexed by time.Weekday (Sunday = 0)
}

// NewWeekSchedule builds a schedule from explicit weekday pools.
// At least one weekday must have a positive pool, and no pool may be
// negative; otherwise the calendar could never advance.
func NewWeekSchedule(pools map[time.Weekday]int) (WeekSchedule, error) {
	var ws WeekSchedule
	anyWork := false
	for day, pool := range pools {
		if pool < 0 {
			return WeekSchedule{}, &ConfigError{
				Field:  "week_schedule",
				Reason: "negative pool for " + day.String(),
				Err:    ErrInvalidWeekSchedule,
			}
		}
		ws.pools[day] = pool
		if pool > 0 {
			anyWork = true
		}
	}
	if !anyWork {
		return WeekSchedule{}, &ConfigError{
			Field:  "week_schedule",
			Reason: "no weekday has capacity",
			Err:    ErrInvalidWeekSchedule,
		}
	}
	return ws, nil
}

// StandardWeek is the historical shop-floor rule: full pool Monday-Friday,
// half pool Saturday, closed Sunday.
func StandardWeek(weekdayPool int) WeekSchedule {
	var ws WeekSchedule
	for d := time.Monday; d <= time.Friday; d++ {
		ws.pools[d] = weekdayPool
	}
	ws.pools[time.Saturday] = weekdayPool / 2
	ws.pools[time.Sunday] = 0
	return ws
}

// PoolOn returns the capacity units available on the given weekday.
func (ws WeekSchedule) PoolOn(day time.Weekday) int {
	return ws.pools[day]
}

// MaxPool returns the largest daily pool across the week. An order whose
// assigned capacity exceeds this can never be scheduled.
func (ws WeekSchedule) MaxPool() int {
	max := 0
	for _, p := range ws.pools {
		if p > max {
			max = p
		}
	}
	return max
}
