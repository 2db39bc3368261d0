/*
simulator.go - The day-stepped queue simulator

PURPOSE:
  The core algorithm of the engine. Given an ordered backlog of work-orders
  competing for the shared daily capacity pool, the simulator steps forward
  one calendar day at a time, allocates each work day's pool to orders in
  priority order, advances their progress, and records the business day on
  which each order starts and finishes.

ALLOCATION POLICY (re-contested every day):
  Capacity is never reserved for an order's full duration at the moment it
  starts. Every simulated day the whole backlog is walked again in priority
  order, so a premium order enqueued after a normal order has already started
  crowds out the normal order's remaining allocation from the next day on.
  This "premium jumps the queue" rule is deliberate; committing capacity at
  start time would break it.

PRIORITY ORDER:
  Premium flag first, then CreatedAt (earliest first), then ID as a stable
  tiebreak. The order is fixed before the loop and never re-evaluated
  mid-simulation.

SAFETY BOUND:
  The loop is bounded in elapsed calendar days. An order that cannot fit the
  largest daily pool, or that is still pending when the bound is hit, is
  reported as unschedulable. The bound is never treated as normal completion.

SEE ALSO:
  - capacity.go: pool sizes, ceilings, waste adjustment
  - calendar.go: work-day classification
*/
package schedule

import (
	"sort"
	"time"
)

// DefaultMaxSimulationDays bounds the day loop at two years of calendar
// days. A backlog that cannot drain in two years is a scheduling failure,
// not a long schedule.
const DefaultMaxSimulationDays = 730

// =============================================================================
// RESULTS
// =============================================================================

// OrderSchedule is the simulator's verdict for a single work-order.
type OrderSchedule struct {
	WorkOrderID WorkOrderID

	// StartDate is the first day any capacity was allocated; EndDate the day
	// pending quantity reached zero. Nil when the order never started or
	// never finished.
	StartDate *time.Time
	EndDate   *time.Time

	// QuantityAdjusted is the waste-inflated production target the order was
	// simulated against. QuantityPending is what remains (0 for scheduled
	// orders, >0 only for unschedulable ones).
	QuantityAdjusted int
	QuantityPending  int

	// DurationDays is the inclusive business-day span from start to end.
	DurationDays int
}

// Scheduled reports whether the order received both dates.
func (s OrderSchedule) Scheduled() bool {
	return s.StartDate != nil && s.EndDate != nil
}

// Outcome is the result of one simulation run: a schedule per order, plus the
// per-order failures. Failures never abort the rest of the backlog.
type Outcome struct {
	Schedules     map[WorkOrderID]OrderSchedule
	Unschedulable []*UnschedulableError

	// ElapsedDays is how many calendar days the loop stepped through.
	ElapsedDays int
}

// Failed returns the unschedulable error for the given order, if any.
func (o *Outcome) Failed(id WorkOrderID) *UnschedulableError {
	for _, u := range o.Unschedulable {
		if u.WorkOrderID == id {
			return u
		}
	}
	return nil
}

// =============================================================================
// SIMULATION
// =============================================================================

// Simulation runs the day-stepped allocation over a backlog snapshot.
// The zero MaxDays means DefaultMaxSimulationDays.
type Simulation struct {
	Model   *CapacityModel
	MaxDays int
}

// simOrder is the simulator's private working copy of one work-order.
// Inputs are never mutated.
type simOrder struct {
	id        WorkOrderID
	priority  bool
	createdAt time.Time

	assigned   int // capacity units per active day, clamped to the ceiling
	multiplier int // output per unit per day

	adjusted int // waste-inflated target
	pending  int

	start *time.Time
	end   *time.Time
}

// Run simulates the given backlog starting at startDate (normalized forward
// to the next work day). The input slice and its orders are left untouched.
func (s *Simulation) Run(orders []WorkOrder, startDate time.Time) (*Outcome, error) {
	model := s.Model
	cal := model.Calendar()
	maxDays := s.MaxDays
	if maxDays <= 0 {
		maxDays = DefaultMaxSimulationDays
	}

	outcome := &Outcome{Schedules: make(map[WorkOrderID]OrderSchedule, len(orders))}

	// Pre-processing, once per order: waste adjustment and ceiling clamp.
	// Orders that cannot fit the largest daily pool even alone are rejected
	// here instead of looping forever.
	sim := make([]*simOrder, 0, len(orders))
	for _, wo := range orders {
		capability := model.Capability(wo.ProductID)
		assigned := wo.AssignedCapacity
		if assigned < 1 {
			assigned = 1
		}
		if assigned > capability.CapacityCeiling {
			assigned = capability.CapacityCeiling
		}
		if assigned > model.MaxDailyPool() {
			outcome.Unschedulable = append(outcome.Unschedulable, &UnschedulableError{
				WorkOrderID: wo.ID,
				Reason:      "assigned capacity exceeds the largest daily pool",
				Err:         ErrUnschedulable,
			})
			continue
		}
		sim = append(sim, &simOrder{
			id:         wo.ID,
			priority:   wo.Priority,
			createdAt:  wo.CreatedAt,
			assigned:   assigned,
			multiplier: capability.DailyMultiplier,
			adjusted:   model.AdjustQuantity(wo.QuantityTotal),
			pending:    model.AdjustQuantity(wo.QuantityTotal),
		})
	}

	// Strict total order: premium first, then earliest created, then ID.
	sort.SliceStable(sim, func(i, j int) bool {
		if sim[i].priority != sim[j].priority {
			return sim[i].priority
		}
		if !sim[i].createdAt.Equal(sim[j].createdAt) {
			return sim[i].createdAt.Before(sim[j].createdAt)
		}
		return sim[i].id < sim[j].id
	})

	current := cal.NextWorkDay(startDate)

	// Zero-quantity orders complete instantly: start and end on the first
	// day considered, no capacity consumed.
	firstDay := current
	remaining := 0
	for _, o := range sim {
		if o.pending > 0 {
			remaining++
		} else {
			o.start, o.end = &firstDay, &firstDay
		}
	}

	elapsed := 0
	for remaining > 0 && elapsed < maxDays {
		elapsed++

		if !cal.IsWorkDay(current) {
			// Rest days are visited and skipped; the next iteration
			// re-checks. Reduced-capacity days fall through and allocate.
			current = current.AddDate(0, 0, 1)
			continue
		}

		pool := model.PoolFor(current)
		day := current

		for _, o := range sim {
			if pool <= 0 {
				break
			}
			if o.pending == 0 {
				continue
			}

			// Not enough room for this order today. Lower-priority orders
			// behind it may still fit in what remains.
			if pool < o.assigned {
				continue
			}

			if o.start == nil {
				o.start = &day
			}

			output := o.assigned * o.multiplier
			if output > o.pending {
				output = o.pending
			}
			o.pending -= output

			// The day's reservation is in capacity units, independent of how
			// much output those units actually produced.
			pool -= o.assigned

			if o.pending == 0 {
				o.end = &day
				remaining--
			}
		}

		// One calendar day, not one business day: rest days must be visited
		// so the work-day check above can run again.
		current = current.AddDate(0, 0, 1)
	}

	// Anything still pending means the safety bound was hit. Report it
	// explicitly; silent truncation is never acceptable.
	for _, o := range sim {
		if o.pending > 0 {
			outcome.Unschedulable = append(outcome.Unschedulable, &UnschedulableError{
				WorkOrderID: o.id,
				Reason:      "still pending after safety bound",
				Err:         ErrSimulationBound,
			})
		}

		sched := OrderSchedule{
			WorkOrderID:      o.id,
			StartDate:        o.start,
			EndDate:          o.end,
			QuantityAdjusted: o.adjusted,
			QuantityPending:  o.pending,
		}
		if sched.Scheduled() {
			sched.DurationDays = cal.BusinessDayDistance(*o.start, *o.end)
		}
		outcome.Schedules[o.id] = sched
	}

	// Orders rejected in pre-processing still get a (dateless) entry so
	// callers can write back a consistent pending quantity.
	for _, u := range outcome.Unschedulable {
		if _, ok := outcome.Schedules[u.WorkOrderID]; !ok {
			for _, wo := range orders {
				if wo.ID == u.WorkOrderID {
					adj := model.AdjustQuantity(wo.QuantityTotal)
					outcome.Schedules[wo.ID] = OrderSchedule{
						WorkOrderID:      wo.ID,
						QuantityAdjusted: adj,
						QuantityPending:  adj,
					}
					break
				}
			}
		}
	}

	outcome.ElapsedDays = elapsed
	return outcome, nil
}
