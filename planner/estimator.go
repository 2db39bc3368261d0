/*
estimator.go - Non-mutating delivery estimates

PURPOSE:
  Answers "if we committed this order right now, when would it ship?" without
  committing anything. One hypothetical work-order is injected into a snapshot
  of the live backlog, the simulator runs against the snapshot, and the
  synthetic order's dates become the quote. Nothing is persisted and no lock
  is taken; two identical calls against an unchanged backlog return identical
  results.

QUOTE BREAKDOWN:
  waitDays       business days from today until production starts
  productionDays business days of production, inclusive of both ends
  then the fixed post-processing and shipping lead times, and a week-range
  summary (total business days / 5, plus the standard two-week buffer).

FAILURE:
  If the synthetic order cannot be scheduled within the safety bound the
  estimate comes back explicitly unschedulable - never a guessed date.

SEE ALSO:
  - recalculator.go: the mutating counterpart
  - schedule/simulator.go: the engine both wrap
*/
package planner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warp/production-engine/schedule"
)

// workingDaysPerWeek sizes the week-range summary on the quote.
const workingDaysPerWeek = 5

// weekBufferWeeks is the standard buffer between the optimistic and quoted
// week counts.
const weekBufferWeeks = 2

// =============================================================================
// REQUEST / RESULT
// =============================================================================

// EstimateRequest describes the hypothetical order to quote.
type EstimateRequest struct {
	ProductID        schedule.ProductID
	Quantity         int
	Priority         bool
	AssignedCapacity int
}

// Estimate is the quote. When Schedulable is false only Reason is set.
type Estimate struct {
	Schedulable bool
	Reason      string

	WaitDays           int
	ProductionDays     int
	PostProcessingDays int
	ShippingDays       int
	TotalDays          int

	WeeksMin int
	WeeksMax int

	StartDate    *time.Time
	EndDate      *time.Time
	DeliveryDate *time.Time
}

// =============================================================================
// ESTIMATOR
// =============================================================================

// Estimator produces delivery estimates. Safe for concurrent use: it reads
// the backlog, simulates a private snapshot, and writes nothing.
type Estimator struct {
	Config       Config
	WorkOrders   WorkOrderStore
	Capabilities CapabilityStore

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

func (e *Estimator) now() time.Time {
	if e.Now != nil {
		return schedule.Normalize(e.Now())
	}
	return schedule.Normalize(time.Now())
}

// Estimate injects one synthetic order into a snapshot of the live backlog
// and reports when it would ship.
func (e *Estimator) Estimate(ctx context.Context, req EstimateRequest) (*Estimate, error) {
	backlog, err := e.WorkOrders.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	today := e.now()
	synthetic := schedule.WorkOrder{
		ID:               schedule.WorkOrderID("estimate-" + uuid.NewString()),
		ProductID:        req.ProductID,
		QuantityTotal:    req.Quantity,
		QuantityPending:  req.Quantity,
		Priority:         req.Priority,
		CreatedAt:        e.nowClock(),
		AssignedCapacity: req.AssignedCapacity,
		Status:           schedule.StatusQueued,
	}

	// Snapshot = live backlog + the hypothetical order. The snapshot is
	// discarded after the call; nothing below writes.
	snapshot := make([]schedule.WorkOrder, 0, len(backlog)+1)
	snapshot = append(snapshot, backlog...)
	snapshot = append(snapshot, synthetic)

	model, err := e.Config.buildModel(ctx, e.Capabilities, uniqueProducts(snapshot))
	if err != nil {
		return nil, err
	}

	sim := schedule.Simulation{Model: model, MaxDays: e.Config.MaxSimulationDays}
	outcome, err := sim.Run(snapshot, today)
	if err != nil {
		return nil, err
	}

	if failed := outcome.Failed(synthetic.ID); failed != nil {
		return &Estimate{Schedulable: false, Reason: failed.Reason}, nil
	}
	sched, ok := outcome.Schedules[synthetic.ID]
	if !ok || !sched.Scheduled() {
		return &Estimate{Schedulable: false, Reason: "simulation produced no dates"}, nil
	}

	cal := model.Calendar()
	lead := e.Config.LeadTimes
	delivery := lead.deliveryFrom(cal, *sched.EndDate)

	waitDays := cal.BusinessDayDistance(today, *sched.StartDate)
	productionDays := sched.DurationDays
	totalDays := waitDays + productionDays + lead.PostProcessingDays + lead.ShippingDays
	weeksMin := (totalDays + workingDaysPerWeek - 1) / workingDaysPerWeek

	return &Estimate{
		Schedulable:        true,
		WaitDays:           waitDays,
		ProductionDays:     productionDays,
		PostProcessingDays: lead.PostProcessingDays,
		ShippingDays:       lead.ShippingDays,
		TotalDays:          totalDays,
		WeeksMin:           weeksMin,
		WeeksMax:           weeksMin + weekBufferWeeks,
		StartDate:          sched.StartDate,
		EndDate:            sched.EndDate,
		DeliveryDate:       &delivery,
	}, nil
}

// nowClock returns the un-normalized wall time for CreatedAt, so the
// synthetic order sorts after every existing order of equal priority.
func (e *Estimator) nowClock() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
