/*
capacity.go - Capacity pools, product ceilings, and waste adjustment

PURPOSE:
  Maps dates to the shared daily capacity pool, maps products to their
  per-order ceiling and daily output multiplier, and converts a requested
  quantity into the waste-adjusted production target.

WASTE CONVENTION (important):
  Production loss can be priced in exactly one of two places: inflate the
  requested quantities, or shrink the daily pool. Doing both double-counts
  waste. This model inflates quantities - AdjustQuantity returns
  ceil(qty * (1 + wasteFactor)) - and allocates the pool at face value.
  The inflation uses decimal arithmetic so the ceil boundary is exact
  (1000 * 1.09 must be 1090, not 1089.9999...).

FAIL-OPEN CAPABILITIES:
  A product without a capability record defaults to ceiling 1, multiplier 1.
  A missing record must never block scheduling; it only slows that product
  down to the most conservative rate.

SEE ALSO:
  - types.go:     WeekSchedule, ProductCapability
  - simulator.go: the only consumer of PoolFor during allocation
*/
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CAPACITY MODEL
// =============================================================================

// CapacityModel bundles the weekday pool rule, the waste factor, and the
// product capability records for one simulation run. Immutable once built.
type CapacityModel struct {
	week         WeekSchedule
	wasteFactor  decimal.Decimal
	capabilities map[ProductID]ProductCapability
}

// NewCapacityModel validates and builds a capacity model.
// The waste factor must be strictly between 0 and 1; zero and negative
// values are configuration errors, never silently defaulted.
func NewCapacityModel(week WeekSchedule, wasteFactor decimal.Decimal, caps []ProductCapability) (*CapacityModel, error) {
	if week.MaxPool() == 0 {
		return nil, &ConfigError{
			Field:  "week_schedule",
			Reason: "no weekday has capacity",
			Err:    ErrInvalidWeekSchedule,
		}
	}
	if !wasteFactor.IsPositive() || wasteFactor.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, &ConfigError{
			Field:  "waste_factor",
			Reason: "must be in (0, 1), got " + wasteFactor.String(),
			Err:    ErrInvalidWasteFactor,
		}
	}

	m := &CapacityModel{
		week:         week,
		wasteFactor:  wasteFactor,
		capabilities: make(map[ProductID]ProductCapability, len(caps)),
	}
	for _, c := range caps {
		if c.CapacityCeiling < 1 {
			c.CapacityCeiling = 1
		}
		if c.DailyMultiplier < 1 {
			c.DailyMultiplier = 1
		}
		m.capabilities[c.ProductID] = c
	}
	return m, nil
}

// Calendar returns the business calendar induced by this model's week rule.
func (m *CapacityModel) Calendar() Calendar {
	return Calendar{Week: m.week}
}

// WasteFactor returns the configured fractional waste factor.
func (m *CapacityModel) WasteFactor() decimal.Decimal {
	return m.wasteFactor
}

// PoolFor returns the global capacity units allocatable on the given date:
// the weekday pool, 0 on rest days. Waste is carried on the quantities (see
// AdjustQuantity), so the pool is never reduced here.
func (m *CapacityModel) PoolFor(t time.Time) int {
	return m.week.PoolOn(t.Weekday())
}

// MaxDailyPool returns the largest pool of any weekday.
func (m *CapacityModel) MaxDailyPool() int {
	return m.week.MaxPool()
}

// Capability returns the product's capability record, or the fail-open
// default when the product has none.
func (m *CapacityModel) Capability(id ProductID) ProductCapability {
	if c, ok := m.capabilities[id]; ok {
		return c
	}
	return DefaultCapability(id)
}

// OrderCeiling returns the maximum capacity units one work-order of this
// product may occupy concurrently.
func (m *CapacityModel) OrderCeiling(id ProductID) int {
	return m.Capability(id).CapacityCeiling
}

// AdjustQuantity converts a requested quantity into the production target:
// ceil(qty * (1 + wasteFactor)). Decimal arithmetic keeps the ceil exact.
func (m *CapacityModel) AdjustQuantity(qty int) int {
	if qty <= 0 {
		return 0
	}
	adjusted := decimal.NewFromInt(int64(qty)).Mul(decimal.NewFromInt(1).Add(m.wasteFactor))
	return int(adjusted.Ceil().IntPart())
}
