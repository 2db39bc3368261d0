package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/production-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newModelWith(t *testing.T, week schedule.WeekSchedule, caps ...schedule.ProductCapability) *schedule.CapacityModel {
	t.Helper()
	m, err := schedule.NewCapacityModel(week, waste(0.09), caps)
	if err != nil {
		t.Fatalf("unexpected error building model: %v", err)
	}
	return m
}

func weekdayPool(t *testing.T, pool int) schedule.WeekSchedule {
	t.Helper()
	week, err := schedule.NewWeekSchedule(map[time.Weekday]int{
		time.Monday:    pool,
		time.Tuesday:   pool,
		time.Wednesday: pool,
		time.Thursday:  pool,
		time.Friday:    pool,
	})
	if err != nil {
		t.Fatalf("unexpected error building week: %v", err)
	}
	return week
}

func order(id string, qty int, priority bool, created time.Time, assigned int) schedule.WorkOrder {
	return schedule.WorkOrder{
		ID:               schedule.WorkOrderID(id),
		ProductID:        "vessel",
		QuantityTotal:    qty,
		QuantityPending:  qty,
		Priority:         priority,
		CreatedAt:        created,
		AssignedCapacity: assigned,
		Status:           schedule.StatusQueued,
	}
}

func mustSchedule(t *testing.T, o *schedule.Outcome, id string) schedule.OrderSchedule {
	t.Helper()
	s, ok := o.Schedules[schedule.WorkOrderID(id)]
	if !ok {
		t.Fatalf("no schedule entry for %s", id)
	}
	return s
}

func wantDates(t *testing.T, s schedule.OrderSchedule, start, end time.Time) {
	t.Helper()
	if !s.Scheduled() {
		t.Fatalf("%s: not scheduled (start=%v end=%v)", s.WorkOrderID, s.StartDate, s.EndDate)
	}
	if !s.StartDate.Equal(start) {
		t.Errorf("%s: start = %v, want %v", s.WorkOrderID, s.StartDate, start)
	}
	if !s.EndDate.Equal(end) {
		t.Errorf("%s: end = %v, want %v", s.WorkOrderID, s.EndDate, end)
	}
}

// =============================================================================
// SINGLE ORDER THROUGHPUT
// =============================================================================

func TestSimulation_SingleOrderFullPool(t *testing.T) {
	// GIVEN: 1000 units requested at 9% waste (1090 target), one order
	//        occupying the full 270-slot weekday pool at multiplier 1
	// WHEN: Simulating from Monday
	// THEN: 270/day drains the target in five week days, Monday through Friday

	m := newShopModel(t, schedule.ProductCapability{
		ProductID:       "vessel",
		CapacityCeiling: 270,
		DailyMultiplier: 1,
	})
	sim := schedule.Simulation{Model: m}

	monday := date(2025, time.January, 6)
	out, err := sim.Run([]schedule.WorkOrder{
		order("wo-1", 1000, false, date(2025, time.January, 2), 270),
	}, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := mustSchedule(t, out, "wo-1")
	if s.QuantityAdjusted != 1090 {
		t.Errorf("adjusted = %d, want 1090", s.QuantityAdjusted)
	}
	wantDates(t, s, monday, date(2025, time.January, 10))
	if s.DurationDays != 5 {
		t.Errorf("duration = %d, want 5", s.DurationDays)
	}
	if s.QuantityPending != 0 {
		t.Errorf("pending = %d, want 0", s.QuantityPending)
	}
}

func TestSimulation_StartOnRestDayRollsForward(t *testing.T) {
	// GIVEN: A simulation started on a closed Sunday
	// WHEN: Running a zero-quantity order
	// THEN: It completes instantly on the first work day, consuming nothing

	m := newShopModel(t)
	sim := schedule.Simulation{Model: m}

	sunday := date(2025, time.January, 5)
	monday := date(2025, time.January, 6)

	out, err := sim.Run([]schedule.WorkOrder{
		order("wo-empty", 0, false, sunday, 1),
	}, sunday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := mustSchedule(t, out, "wo-empty")
	wantDates(t, s, monday, monday)
	if s.DurationDays != 1 {
		t.Errorf("duration = %d, want 1", s.DurationDays)
	}
}

// =============================================================================
// PRIORITY AND DAILY RE-CONTESTING
// =============================================================================

func TestSimulation_PremiumJumpsQueue(t *testing.T) {
	// GIVEN: A one-slot weekday pool; a normal order created first and a
	//        premium order created later, both needing the whole slot
	// WHEN: Simulating from Monday 2025-01-06
	// THEN: The premium order takes every day until done; the normal order
	//       only starts afterwards

	m := newModelWith(t, weekdayPool(t, 1))
	sim := schedule.Simulation{Model: m}

	normal := order("wo-normal", 5, false, date(2025, time.January, 1), 1)  // target 6
	premium := order("wo-premium", 3, true, date(2025, time.January, 2), 1) // target 4

	out, err := sim.Run([]schedule.WorkOrder{normal, premium}, date(2025, time.January, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Premium: Mon 6 through Thu 9
	wantDates(t, mustSchedule(t, out, "wo-premium"),
		date(2025, time.January, 6), date(2025, time.January, 9))

	// Normal: Fri 10, then Mon 13 through Fri 17 (weekend closed)
	s := mustSchedule(t, out, "wo-normal")
	wantDates(t, s, date(2025, time.January, 10), date(2025, time.January, 17))
	if s.DurationDays != 6 {
		t.Errorf("normal duration = %d, want 6", s.DurationDays)
	}
}

func TestSimulation_SmallerOrderFitsPoolRemainder(t *testing.T) {
	// GIVEN: A three-slot pool; two two-slot orders and a one-slot order
	//        created last
	// WHEN: Simulating from Monday
	// THEN: The first two-slot order and the one-slot order share day one;
	//       the second two-slot order waits for room, it is skipped, not
	//       partially allocated

	m := newModelWith(t, weekdayPool(t, 3))
	sim := schedule.Simulation{Model: m}

	a := order("wo-a", 2, false, date(2025, time.January, 1), 2) // target 3
	b := order("wo-b", 2, false, date(2025, time.January, 2), 2) // target 3
	c := order("wo-c", 1, false, date(2025, time.January, 3), 1) // target 2

	out, err := sim.Run([]schedule.WorkOrder{a, b, c}, date(2025, time.January, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantDates(t, mustSchedule(t, out, "wo-a"),
		date(2025, time.January, 6), date(2025, time.January, 7))
	wantDates(t, mustSchedule(t, out, "wo-c"),
		date(2025, time.January, 6), date(2025, time.January, 7))
	wantDates(t, mustSchedule(t, out, "wo-b"),
		date(2025, time.January, 8), date(2025, time.January, 9))
}

func TestSimulation_TiesBreakByID(t *testing.T) {
	// GIVEN: Two identical orders with the same creation instant
	// WHEN: Competing for a one-slot pool
	// THEN: The lower ID wins deterministically

	m := newModelWith(t, weekdayPool(t, 1))
	sim := schedule.Simulation{Model: m}

	created := date(2025, time.January, 1)
	out, err := sim.Run([]schedule.WorkOrder{
		order("wo-b", 1, false, created, 1), // target 2
		order("wo-a", 1, false, created, 1),
	}, date(2025, time.January, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantDates(t, mustSchedule(t, out, "wo-a"),
		date(2025, time.January, 6), date(2025, time.January, 7))
	wantDates(t, mustSchedule(t, out, "wo-b"),
		date(2025, time.January, 8), date(2025, time.January, 9))
}

// =============================================================================
// CEILINGS AND MULTIPLIERS
// =============================================================================

func TestSimulation_AssignedCapacityClamped(t *testing.T) {
	// GIVEN: An order asking for far more capacity than its product ceiling
	// WHEN: Simulating
	// THEN: The allocation is clamped to the ceiling, not rejected

	m := newModelWith(t, weekdayPool(t, 10), schedule.ProductCapability{
		ProductID:       "vessel",
		CapacityCeiling: 2,
		DailyMultiplier: 1,
	})
	sim := schedule.Simulation{Model: m}

	// Target ceil(4 * 1.09) = 5 at 2/day: Mon 2, Tue 2, Wed 1.
	out, err := sim.Run([]schedule.WorkOrder{
		order("wo-1", 4, false, date(2025, time.January, 1), 50),
	}, date(2025, time.January, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := mustSchedule(t, out, "wo-1")
	wantDates(t, s, date(2025, time.January, 6), date(2025, time.January, 8))
	if s.DurationDays != 3 {
		t.Errorf("duration = %d, want 3", s.DurationDays)
	}
}

func TestSimulation_MultiplierScalesDailyOutput(t *testing.T) {
	// GIVEN: A product producing 4 units per slot per day, order holding 2 slots
	// WHEN: Simulating a target of ceil(20 * 1.09) = 22 at 8/day
	// THEN: Three days: 8, 8, 6

	m := newModelWith(t, weekdayPool(t, 10), schedule.ProductCapability{
		ProductID:       "vessel",
		CapacityCeiling: 5,
		DailyMultiplier: 4,
	})
	sim := schedule.Simulation{Model: m}

	out, err := sim.Run([]schedule.WorkOrder{
		order("wo-1", 20, false, date(2025, time.January, 1), 2),
	}, date(2025, time.January, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := mustSchedule(t, out, "wo-1")
	wantDates(t, s, date(2025, time.January, 6), date(2025, time.January, 8))
}

// =============================================================================
// FAILURE REPORTING
// =============================================================================

func TestSimulation_OversizedOrderReportedNotLooped(t *testing.T) {
	// GIVEN: An order whose clamped allocation exceeds the largest daily pool
	// WHEN: Simulating alongside a normal order
	// THEN: The oversized order is reported unschedulable with a dateless
	//       entry; the normal order still schedules

	m := newModelWith(t, weekdayPool(t, 3), schedule.ProductCapability{
		ProductID:       "vessel",
		CapacityCeiling: 100,
		DailyMultiplier: 1,
	})
	sim := schedule.Simulation{Model: m}

	out, err := sim.Run([]schedule.WorkOrder{
		order("wo-big", 10, false, date(2025, time.January, 1), 50),
		order("wo-ok", 2, false, date(2025, time.January, 2), 1),
	}, date(2025, time.January, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failed := out.Failed("wo-big")
	if failed == nil {
		t.Fatal("expected wo-big to be unschedulable")
	}
	if !errors.Is(failed, schedule.ErrUnschedulable) {
		t.Errorf("failure does not wrap ErrUnschedulable: %v", failed)
	}

	big := mustSchedule(t, out, "wo-big")
	if big.Scheduled() {
		t.Errorf("oversized order received dates: %+v", big)
	}
	if big.QuantityPending != big.QuantityAdjusted {
		t.Errorf("oversized order pending = %d, want full target %d",
			big.QuantityPending, big.QuantityAdjusted)
	}

	if !mustSchedule(t, out, "wo-ok").Scheduled() {
		t.Error("normal order should still be scheduled")
	}
}

func TestSimulation_SafetyBoundReported(t *testing.T) {
	// GIVEN: A backlog that cannot drain within the configured day bound
	// WHEN: Simulating with MaxDays = 3
	// THEN: The order is reported against the bound with its leftover pending,
	//       never silently truncated into a fake completion

	m := newModelWith(t, weekdayPool(t, 1))
	sim := schedule.Simulation{Model: m, MaxDays: 3}

	out, err := sim.Run([]schedule.WorkOrder{
		order("wo-long", 10, false, date(2025, time.January, 1), 1), // target 11
	}, date(2025, time.January, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failed := out.Failed("wo-long")
	if failed == nil {
		t.Fatal("expected the bound to be reported")
	}
	if !errors.Is(failed, schedule.ErrSimulationBound) {
		t.Errorf("failure does not wrap ErrSimulationBound: %v", failed)
	}

	s := mustSchedule(t, out, "wo-long")
	if s.StartDate == nil {
		t.Error("order did start before the bound; start date expected")
	}
	if s.EndDate != nil {
		t.Error("unfinished order must not carry an end date")
	}
	if s.QuantityPending != 8 { // 11 - 3 produced
		t.Errorf("pending = %d, want 8", s.QuantityPending)
	}
	if out.ElapsedDays != 3 {
		t.Errorf("elapsed = %d, want 3", out.ElapsedDays)
	}
}

// =============================================================================
// PURITY AND DETERMINISM
// =============================================================================

func TestSimulation_InputsNeverMutated(t *testing.T) {
	// GIVEN: A backlog snapshot
	// WHEN: Simulating
	// THEN: The input orders keep their original pending quantities and dates

	m := newShopModel(t)
	sim := schedule.Simulation{Model: m}

	orders := []schedule.WorkOrder{
		order("wo-1", 100, false, date(2025, time.January, 1), 1),
	}
	if _, err := sim.Run(orders, date(2025, time.January, 6)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if orders[0].QuantityPending != 100 {
		t.Errorf("input pending mutated to %d", orders[0].QuantityPending)
	}
	if orders[0].StartDate != nil || orders[0].EndDate != nil {
		t.Error("input dates mutated")
	}
}

func TestSimulation_Deterministic(t *testing.T) {
	// GIVEN: The same snapshot simulated twice
	// WHEN: Comparing the two outcomes
	// THEN: Every schedule is identical

	m := newShopModel(t, schedule.ProductCapability{
		ProductID:       "vessel",
		CapacityCeiling: 50,
		DailyMultiplier: 2,
	})
	sim := schedule.Simulation{Model: m}

	orders := []schedule.WorkOrder{
		order("wo-1", 500, false, date(2025, time.January, 1), 40),
		order("wo-2", 300, true, date(2025, time.January, 2), 30),
		order("wo-3", 200, false, date(2025, time.January, 3), 20),
	}
	start := date(2025, time.January, 6)

	first, err := sim.Run(orders, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := sim.Run(orders, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for id, a := range first.Schedules {
		b := second.Schedules[id]
		if a.DurationDays != b.DurationDays || a.QuantityPending != b.QuantityPending {
			t.Errorf("%s: runs disagree: %+v vs %+v", id, a, b)
		}
		if (a.StartDate == nil) != (b.StartDate == nil) ||
			(a.StartDate != nil && !a.StartDate.Equal(*b.StartDate)) {
			t.Errorf("%s: start dates disagree", id)
		}
		if (a.EndDate == nil) != (b.EndDate == nil) ||
			(a.EndDate != nil && !a.EndDate.Equal(*b.EndDate)) {
			t.Errorf("%s: end dates disagree", id)
		}
	}
}
