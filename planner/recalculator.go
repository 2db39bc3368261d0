/*
recalculator.go - Full-queue recalculation with write-back

PURPOSE:
  The mutating wrapper around the simulator. Fetches the live backlog, runs
  the engine, writes the computed start/finish dates and pending quantities
  back to every work-order, then propagates the latest finish date of each
  customer order's work-orders (plus the fixed lead times) into that order's
  estimated delivery date.

CONCURRENCY:
  Recalculate holds a mutex for its whole span. The simulation itself is
  deterministic, so concurrent runs would only waste work - but their
  interleaved writes could mix two schedules, so "run simulator, then write
  back" is one critical section. The estimator never takes this lock.

PARTIAL FAILURE:
  A failed write for one order is recorded and the rest continue; the
  simulation results for unrelated orders remain valid and valuable. A failed
  backlog or capability read aborts the whole run - no partial backlog is
  safe to simulate against.

SEE ALSO:
  - estimator.go: the non-mutating counterpart
  - api/scheduler.go: runs this periodically in the background
*/
package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/warp/production-engine/schedule"
)

// =============================================================================
// RESULT
// =============================================================================

// RecalcResult reports which work-orders were updated and every per-order
// failure (unschedulable orders and failed writes) encountered on the way.
type RecalcResult struct {
	Updated  []schedule.WorkOrderID
	Failures []string

	// DeliveryEstimates maps each customer order to the estimate written
	// back, for callers that want to echo the result.
	DeliveryEstimates map[schedule.CustomerOrderID]time.Time
}

// =============================================================================
// RECALCULATOR
// =============================================================================

// Recalculator runs the simulator over the live backlog and persists the
// outcome. One logical transaction from the caller's perspective, even
// though the underlying writes are per-order.
type Recalculator struct {
	Config         Config
	WorkOrders     WorkOrderStore
	Capabilities   CapabilityStore
	CustomerOrders CustomerOrderStore

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time

	mu sync.Mutex
}

func (r *Recalculator) now() time.Time {
	if r.Now != nil {
		return schedule.Normalize(r.Now())
	}
	return schedule.Normalize(time.Now())
}

// Recalculate simulates the whole backlog and writes the schedule back.
// Returns an error only for fatal conditions (reads, configuration);
// per-order problems land in the result's Failures.
func (r *Recalculator) Recalculate(ctx context.Context) (*RecalcResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	backlog, err := r.WorkOrders.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch backlog: %w", err)
	}

	result := &RecalcResult{
		DeliveryEstimates: make(map[schedule.CustomerOrderID]time.Time),
	}
	if len(backlog) == 0 {
		return result, nil
	}

	model, err := r.Config.buildModel(ctx, r.Capabilities, uniqueProducts(backlog))
	if err != nil {
		return nil, fmt.Errorf("failed to build capacity model: %w", err)
	}

	sim := schedule.Simulation{Model: model, MaxDays: r.Config.MaxSimulationDays}
	outcome, err := sim.Run(backlog, r.now())
	if err != nil {
		return nil, err
	}

	for _, u := range outcome.Unschedulable {
		result.Failures = append(result.Failures, u.Error())
	}

	// Per-order write-back. One failed write must not abort the rest.
	for _, wo := range backlog {
		sched, ok := outcome.Schedules[wo.ID]
		if !ok {
			continue
		}
		err := r.WorkOrders.UpdateSchedule(ctx, wo.ID, sched.StartDate, sched.EndDate, sched.QuantityPending)
		if err != nil {
			result.Failures = append(result.Failures,
				fmt.Sprintf("work order %s: write failed: %v", wo.ID, err))
			continue
		}
		result.Updated = append(result.Updated, wo.ID)
	}

	r.propagateDeliveries(ctx, backlog, outcome, model.Calendar(), result)
	return result, nil
}

// propagateDeliveries writes, per customer order, the maximum end date across
// its work-orders plus the lead-time tail. Customer orders with any
// unfinished work-order are skipped and recorded: there is no honest
// delivery date to write.
func (r *Recalculator) propagateDeliveries(
	ctx context.Context,
	backlog []schedule.WorkOrder,
	outcome *schedule.Outcome,
	cal schedule.Calendar,
	result *RecalcResult,
) {
	type orderSpan struct {
		latest   *time.Time
		complete bool
	}

	spans := make(map[schedule.CustomerOrderID]*orderSpan)
	var orderIDs []schedule.CustomerOrderID

	for _, wo := range backlog {
		if wo.CustomerOrderID == "" {
			continue
		}
		span, ok := spans[wo.CustomerOrderID]
		if !ok {
			span = &orderSpan{complete: true}
			spans[wo.CustomerOrderID] = span
			orderIDs = append(orderIDs, wo.CustomerOrderID)
		}

		sched := outcome.Schedules[wo.ID]
		if sched.EndDate == nil {
			span.complete = false
			continue
		}
		if span.latest == nil || sched.EndDate.After(*span.latest) {
			span.latest = sched.EndDate
		}
	}

	for _, id := range orderIDs {
		span := spans[id]
		if !span.complete || span.latest == nil {
			result.Failures = append(result.Failures,
				fmt.Sprintf("customer order %s: delivery estimate skipped, unfinished work orders", id))
			continue
		}

		estimated := r.Config.LeadTimes.deliveryFrom(cal, *span.latest)
		if err := r.CustomerOrders.UpdateDeliveryEstimate(ctx, id, estimated); err != nil {
			result.Failures = append(result.Failures,
				fmt.Sprintf("customer order %s: write failed: %v", id, err))
			continue
		}
		result.DeliveryEstimates[id] = estimated
	}
}
