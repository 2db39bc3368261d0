/*
Package planner orchestrates the scheduling engine against persistence.

PURPOSE:
  The schedule package is pure; this package brackets it with the two
  collaborator calls the core needs: fetching the backlog and product
  capabilities (read), and writing computed dates back (write). It hosts the
  two entry points of the subsystem:

    Estimator    - non-mutating ETA quotes against a backlog snapshot
    Recalculator - mutating full-queue recalculation with write-back

KEY CONCEPTS IN THIS FILE (ports.go):
  - WorkOrderStore:     backlog reads and per-order schedule write-back
  - CapabilityStore:    product capability reads (batched, up-front)
  - CustomerOrderStore: delivery-estimate write-back per customer order
  - LeadTimes:          fixed post-processing and shipping offsets

DESIGN PRINCIPLES:
  1. No I/O inside the simulation loop: capabilities are fetched once,
     up front, before the engine runs
  2. Write failures are per-order and collected, never fatal; read failures
     abort (no partial backlog is safe to simulate against)
  3. The estimator never takes the recalculation lock - it never writes

SEE ALSO:
  - estimator.go, recalculator.go: the two entry points
  - store/sqlite, store/memory:    the concrete stores
*/
package planner

import (
	"context"
	"time"

	"github.com/warp/production-engine/schedule"
)

// =============================================================================
// STORE PORTS - What the planner needs from persistence
// =============================================================================

// WorkOrderStore is the backlog port. ListActive returns every order with
// status queued or in_progress, ordered by priority then creation time.
type WorkOrderStore interface {
	ListActive(ctx context.Context) ([]schedule.WorkOrder, error)

	// UpdateSchedule writes the simulator's verdict back to one order.
	// Idempotent: replaying the same schedule is a no-op.
	UpdateSchedule(ctx context.Context, id schedule.WorkOrderID, start, end *time.Time, pending int) error
}

// CapabilityStore serves product capability records. A nil record for a
// product means "no record"; the engine fails open to ceiling 1,
// multiplier 1.
type CapabilityStore interface {
	// Capabilities returns the records for the given products in one fetch.
	// Products without a record are simply absent from the result.
	Capabilities(ctx context.Context, ids []schedule.ProductID) ([]schedule.ProductCapability, error)
}

// CustomerOrderStore receives the propagated delivery estimate: the latest
// finish date across a customer order's work-orders plus lead times.
type CustomerOrderStore interface {
	UpdateDeliveryEstimate(ctx context.Context, id schedule.CustomerOrderID, estimated time.Time) error
}

// =============================================================================
// LEAD TIMES
// =============================================================================

// LeadTimes are the fixed downstream offsets applied after production
// finishes: finishing/curing, then shipping. Business days.
type LeadTimes struct {
	PostProcessingDays int
	ShippingDays       int
}

// DefaultLeadTimes matches the shop's historical 3+3 day tail.
func DefaultLeadTimes() LeadTimes {
	return LeadTimes{PostProcessingDays: 3, ShippingDays: 3}
}

// deliveryFrom applies both offsets to a production end date, each landing
// on a work day.
func (lt LeadTimes) deliveryFrom(cal schedule.Calendar, end time.Time) time.Time {
	afterFinishing := cal.AddBusinessDays(end, lt.PostProcessingDays)
	return cal.AddBusinessDays(afterFinishing, lt.ShippingDays)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// uniqueProducts extracts the distinct product IDs of a backlog, preserving
// first-seen order.
func uniqueProducts(orders []schedule.WorkOrder) []schedule.ProductID {
	seen := make(map[schedule.ProductID]bool, len(orders))
	var ids []schedule.ProductID
	for _, wo := range orders {
		if !seen[wo.ProductID] {
			seen[wo.ProductID] = true
			ids = append(ids, wo.ProductID)
		}
	}
	return ids
}
