/*
Package factory provides JSON to Go scheduling-configuration conversion.

PURPOSE:
  Converts JSON scheduling definitions into the engine's WeekSchedule, waste
  factor, and lead times. This enables capacity configuration without code
  changes - operations staff can adjust the week rule or waste factor in
  JSON, and the factory builds the proper Go objects.

JSON SCHEMA:
  {
    "week": {
      "monday": 270, "tuesday": 270, "wednesday": 270,
      "thursday": 270, "friday": 270, "saturday": 135, "sunday": 0
    },
    "waste_factor": 0.09,
    "post_processing_days": 3,
    "shipping_days": 3,
    "max_simulation_days": 730
  }

KEY FEATURES:
  - Validates structure and values (week rule, waste factor bounds)
  - Sets sensible defaults for omitted lead times and the safety bound
  - Exposes the historical shop-floor preset

VALIDATION:
  Invalid configuration is fatal and surfaced immediately via the engine's
  ConfigError types. The one deliberate exception is product capabilities,
  which fail open at simulation time - but those live in the store, not here.

SEE ALSO:
  - schedule/capacity.go: consumes the parsed values
  - planner/config.go:    the assembled Config
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/production-engine/planner"
	"github.com/warp/production-engine/schedule"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of the scheduling configuration.
type ConfigJSON struct {
	Week               map[string]int `json:"week"`
	WasteFactor        float64        `json:"waste_factor"`
	PostProcessingDays *int           `json:"post_processing_days,omitempty"`
	ShippingDays       *int           `json:"shipping_days,omitempty"`
	MaxSimulationDays  *int           `json:"max_simulation_days,omitempty"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// =============================================================================
// FACTORY
// =============================================================================

// ParseConfig converts a JSON document into a planner.Config.
func ParseConfig(data []byte) (planner.Config, error) {
	var raw ConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return planner.Config{}, fmt.Errorf("failed to parse scheduling config: %w", err)
	}
	return FromJSON(raw)
}

// FromJSON builds a planner.Config from the decoded JSON form.
func FromJSON(raw ConfigJSON) (planner.Config, error) {
	if len(raw.Week) == 0 {
		return planner.Config{}, &schedule.ConfigError{
			Field:  "week",
			Reason: "missing week schedule",
			Err:    schedule.ErrInvalidWeekSchedule,
		}
	}

	pools := make(map[time.Weekday]int, len(raw.Week))
	for name, pool := range raw.Week {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return planner.Config{}, &schedule.ConfigError{
				Field:  "week",
				Reason: "unknown weekday " + name,
				Err:    schedule.ErrInvalidWeekSchedule,
			}
		}
		pools[day] = pool
	}

	week, err := schedule.NewWeekSchedule(pools)
	if err != nil {
		return planner.Config{}, err
	}

	waste := decimal.NewFromFloat(raw.WasteFactor)
	if !waste.IsPositive() || waste.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return planner.Config{}, &schedule.ConfigError{
			Field:  "waste_factor",
			Reason: fmt.Sprintf("must be in (0, 1), got %v", raw.WasteFactor),
			Err:    schedule.ErrInvalidWasteFactor,
		}
	}

	lead := planner.DefaultLeadTimes()
	if raw.PostProcessingDays != nil {
		if *raw.PostProcessingDays < 0 {
			return planner.Config{}, &schedule.ConfigError{
				Field:  "post_processing_days",
				Reason: "must not be negative",
				Err:    schedule.ErrInvalidWeekSchedule,
			}
		}
		lead.PostProcessingDays = *raw.PostProcessingDays
	}
	if raw.ShippingDays != nil {
		if *raw.ShippingDays < 0 {
			return planner.Config{}, &schedule.ConfigError{
				Field:  "shipping_days",
				Reason: "must not be negative",
				Err:    schedule.ErrInvalidWeekSchedule,
			}
		}
		lead.ShippingDays = *raw.ShippingDays
	}

	maxDays := schedule.DefaultMaxSimulationDays
	if raw.MaxSimulationDays != nil && *raw.MaxSimulationDays > 0 {
		maxDays = *raw.MaxSimulationDays
	}

	return planner.Config{
		Week:              week,
		WasteFactor:       waste,
		LeadTimes:         lead,
		MaxSimulationDays: maxDays,
	}, nil
}

// =============================================================================
// PRESETS
// =============================================================================

// StandardShopJSON is the historical mold-shop configuration: 270 slots
// Monday-Friday, 135 on Saturday, closed Sunday, 9% waste, 3+3 day tail.
func StandardShopJSON() string {
	return `{
  "week": {
    "monday": 270, "tuesday": 270, "wednesday": 270,
    "thursday": 270, "friday": 270, "saturday": 135, "sunday": 0
  },
  "waste_factor": 0.09,
  "post_processing_days": 3,
  "shipping_days": 3,
  "max_simulation_days": 730
}`
}

// ToJSON renders a config back into its JSON form, for the config endpoint.
func ToJSON(cfg planner.Config) ConfigJSON {
	week := make(map[string]int, 7)
	for name, day := range weekdayNames {
		week[name] = cfg.Week.PoolOn(day)
	}
	waste, _ := cfg.WasteFactor.Float64()
	post := cfg.LeadTimes.PostProcessingDays
	ship := cfg.LeadTimes.ShippingDays
	maxDays := cfg.MaxSimulationDays
	return ConfigJSON{
		Week:               week,
		WasteFactor:        waste,
		PostProcessingDays: &post,
		ShippingDays:       &ship,
		MaxSimulationDays:  &maxDays,
	}
}
