/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES:
  Schedule dates travel as ISO "YYYY-MM-DD" strings; timestamps as RFC3339.
  Nil dates are omitted.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/production-engine/planner"
	"github.com/warp/production-engine/schedule"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// WorkOrderDTO represents a work order in API responses.
type WorkOrderDTO struct {
	ID               string `json:"id"`
	CustomerOrderID  string `json:"customer_order_id"`
	ProductID        string `json:"product_id"`
	QuantityTotal    int    `json:"quantity_total"`
	QuantityPending  int    `json:"quantity_pending"`
	Priority         bool   `json:"priority"`
	AssignedCapacity int    `json:"assigned_capacity"`
	Status           string `json:"status"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// EnqueueRequest is the request to add a work order to the backlog.
type EnqueueRequest struct {
	CustomerOrderID  string `json:"customer_order_id"`
	ProductID        string `json:"product_id"`
	Quantity         int    `json:"quantity"`
	Priority         bool   `json:"priority"`
	AssignedCapacity int    `json:"assigned_capacity"`
}

// EnqueueResponse returns the stored order with its freshly computed
// schedule, plus any per-order failures from the triggered recalculation.
type EnqueueResponse struct {
	WorkOrder         WorkOrderDTO `json:"work_order"`
	EstimatedDelivery string       `json:"estimated_delivery,omitempty"`
	RecalcFailures    []string     `json:"recalc_failures,omitempty"`
}

// StatusRequest is the request body for a manual status transition.
type StatusRequest struct {
	Status string `json:"status"`
}

// EstimateRequestDTO is the request for a non-mutating delivery quote.
type EstimateRequestDTO struct {
	ProductID        string `json:"product_id"`
	Quantity         int    `json:"quantity"`
	Priority         bool   `json:"priority"`
	AssignedCapacity int    `json:"assigned_capacity"`
}

// EstimateDTO is the delivery quote.
type EstimateDTO struct {
	Schedulable        bool   `json:"schedulable"`
	Reason             string `json:"reason,omitempty"`
	WaitDays           int    `json:"wait_days"`
	ProductionDays     int    `json:"production_days"`
	PostProcessingDays int    `json:"post_processing_days"`
	ShippingDays       int    `json:"shipping_days"`
	TotalDays          int    `json:"total_days"`
	WeeksMin           int    `json:"weeks_min"`
	WeeksMax           int    `json:"weeks_max"`
	StartDate          string `json:"start_date,omitempty"`
	EndDate            string `json:"end_date,omitempty"`
	DeliveryDate       string `json:"delivery_date,omitempty"`
}

// RecalcResultDTO reports a recalculation run.
type RecalcResultDTO struct {
	Updated            []string          `json:"updated"`
	Failures           []string          `json:"failures"`
	DeliveryEstimates  map[string]string `json:"delivery_estimates,omitempty"`
}

// CapabilityDTO represents a product capability record.
type CapabilityDTO struct {
	ProductID       string `json:"product_id"`
	CapacityCeiling int    `json:"capacity_ceiling"`
	DailyMultiplier int    `json:"daily_multiplier"`
}

// CustomerOrderDTO reports a customer order's propagated delivery estimate.
type CustomerOrderDTO struct {
	ID                string `json:"id"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toWorkOrderDTO(wo schedule.WorkOrder) WorkOrderDTO {
	return WorkOrderDTO{
		ID:               string(wo.ID),
		CustomerOrderID:  string(wo.CustomerOrderID),
		ProductID:        string(wo.ProductID),
		QuantityTotal:    wo.QuantityTotal,
		QuantityPending:  wo.QuantityPending,
		Priority:         wo.Priority,
		AssignedCapacity: wo.AssignedCapacity,
		Status:           string(wo.Status),
		StartDate:        formatDate(wo.StartDate),
		EndDate:          formatDate(wo.EndDate),
		CreatedAt:        wo.CreatedAt.Format(time.RFC3339),
	}
}

func toEstimateDTO(e *planner.Estimate) EstimateDTO {
	return EstimateDTO{
		Schedulable:        e.Schedulable,
		Reason:             e.Reason,
		WaitDays:           e.WaitDays,
		ProductionDays:     e.ProductionDays,
		PostProcessingDays: e.PostProcessingDays,
		ShippingDays:       e.ShippingDays,
		TotalDays:          e.TotalDays,
		WeeksMin:           e.WeeksMin,
		WeeksMax:           e.WeeksMax,
		StartDate:          formatDate(e.StartDate),
		EndDate:            formatDate(e.EndDate),
		DeliveryDate:       formatDate(e.DeliveryDate),
	}
}

func toRecalcResultDTO(r *planner.RecalcResult) RecalcResultDTO {
	dto := RecalcResultDTO{
		Updated:  make([]string, 0, len(r.Updated)),
		Failures: r.Failures,
	}
	if dto.Failures == nil {
		dto.Failures = []string{}
	}
	for _, id := range r.Updated {
		dto.Updated = append(dto.Updated, string(id))
	}
	if len(r.DeliveryEstimates) > 0 {
		dto.DeliveryEstimates = make(map[string]string, len(r.DeliveryEstimates))
		for id, t := range r.DeliveryEstimates {
			dto.DeliveryEstimates[string(id)] = t.Format("2006-01-02")
		}
	}
	return dto
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
