/*
config.go - Scheduling configuration shared by both entry points

The estimator and recalculator build a fresh CapacityModel per run from this
config plus the capability records fetched for that run's backlog. The model
itself stays immutable for the duration of a simulation.
*/
package planner

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/production-engine/schedule"
)

// Config carries the run-independent scheduling parameters.
type Config struct {
	Week              schedule.WeekSchedule
	WasteFactor       decimal.Decimal
	LeadTimes         LeadTimes
	MaxSimulationDays int
}

// Calendar returns the business calendar for this config's week rule.
func (c Config) Calendar() schedule.Calendar {
	return schedule.Calendar{Week: c.Week}
}

// buildModel fetches capability records for the given products (one
// up-front read, keeping the simulation loop I/O-free) and assembles the
// capacity model.
func (c Config) buildModel(ctx context.Context, store CapabilityStore, products []schedule.ProductID) (*schedule.CapacityModel, error) {
	caps, err := store.Capabilities(ctx, products)
	if err != nil {
		return nil, err
	}
	return schedule.NewCapacityModel(c.Week, c.WasteFactor, caps)
}
