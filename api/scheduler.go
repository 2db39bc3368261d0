/*
scheduler.go - Automated queue recalculation

PURPOSE:
  Periodically re-runs the queue recalculation so the persisted schedule
  tracks the calendar: as days pass, waiting orders move forward and stale
  start/end dates are refreshed without anyone clicking a button.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Delegates to the planner's Recalculator, which already serializes runs
    behind its own lock - a tick overlapping a manual recalculation just
    waits its turn
  - Per-order failures are logged, not fatal; the loop keeps ticking

CONFIGURATION:
  - CheckInterval: How often to recalculate (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  rs := NewRecalcScheduler(handler)
  rs.Start()
  // ... later
  rs.Stop()

SEE ALSO:
  - planner/recalculator.go: the work being scheduled
  - handlers.go: RecalculateQueue endpoint (manual trigger)
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"
)

// RecalcScheduler re-runs the queue recalculation on a timer.
type RecalcScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRecalcScheduler creates a new scheduler.
func NewRecalcScheduler(handler *Handler) *RecalcScheduler {
	return &RecalcScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *RecalcScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *RecalcScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *RecalcScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.recalculate()

	for {
		select {
		case <-rs.ticker.C:
			rs.recalculate()
		case <-rs.stop:
			return
		}
	}
}

func (rs *RecalcScheduler) recalculate() {
	ctx := context.Background()

	result, err := rs.Handler.Recalc.Recalculate(ctx)
	if err != nil {
		log.Printf("[Scheduler] Recalculation failed: %v", err)
		return
	}

	if len(result.Failures) > 0 {
		log.Printf("[Scheduler] Recalculated %d orders with %d failures", len(result.Updated), len(result.Failures))
		for _, f := range result.Failures {
			log.Printf("[Scheduler]   %s", f)
		}
		return
	}
	if len(result.Updated) > 0 {
		log.Printf("[Scheduler] Recalculated %d orders", len(result.Updated))
	}
}

// RunNow triggers an immediate recalculation (for testing/admin).
func (rs *RecalcScheduler) RunNow() {
	rs.recalculate()
}
