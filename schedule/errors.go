/*
errors.go - Centralized error types for the scheduling engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  Callers (planner, api) wrap these with additional context.

ERROR CATEGORIES:
  1. Configuration errors - invalid calendar rule or waste factor (fatal)
  2. Scheduling errors    - per-order failures surfaced by the simulator

USAGE:
  if errors.Is(err, schedule.ErrUnschedulable) {
      // report the order, keep processing the rest of the backlog
  }

SEE ALSO:
  - capacity.go:  raises configuration errors at construction time
  - simulator.go: raises scheduling errors per order
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidWeekSchedule is returned when the weekday capacity rule is
	// missing or leaves no working day. Fatal: the simulation could never
	// advance past a rest day.
	ErrInvalidWeekSchedule = errors.New("invalid week schedule")

	// ErrInvalidWasteFactor is returned for a zero, negative, or >= 1 waste
	// factor. Fatal: never silently defaulted.
	ErrInvalidWasteFactor = errors.New("invalid waste factor")

	// ErrUnschedulable is returned for an order that cannot be completed:
	// either its assigned capacity exceeds the largest daily pool, or the
	// simulation hit its safety day-bound before the order finished.
	ErrUnschedulable = errors.New("order cannot be scheduled")

	// ErrSimulationBound is returned when the day-stepped loop exceeds its
	// safety bound. Hitting the bound is always reported, never treated as
	// "done".
	ErrSimulationBound = errors.New("simulation exceeded safety day bound")

	// ErrWorkOrderNotFound is returned by stores for writes against an
	// unknown work-order.
	ErrWorkOrderNotFound = errors.New("work order not found")

	// ErrDuplicateWorkOrder is returned when enqueueing an ID that already
	// exists. Enqueues are not idempotent; callers generate fresh IDs.
	ErrDuplicateWorkOrder = errors.New("work order already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError describes an invalid scheduling configuration value.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UnschedulableError identifies a single order the simulator could not place.
type UnschedulableError struct {
	WorkOrderID WorkOrderID
	Reason      string
	Err         error
}

func (e *UnschedulableError) Error() string {
	return fmt.Sprintf("work order %s unschedulable: %s", e.WorkOrderID, e.Reason)
}

func (e *UnschedulableError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError returns true if the error is a fatal configuration problem.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidWeekSchedule) ||
		errors.Is(err, ErrInvalidWasteFactor)
}
