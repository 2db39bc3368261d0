/*
handlers.go - HTTP API handlers for the production scheduler

PURPOSE:
  Exposes the scheduling engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the planner.

ENDPOINTS:
  Queue:
    GET    /api/queue                  List the backlog with its schedule
    POST   /api/queue                  Enqueue work order + recalculate
    POST   /api/queue/recalculate      Explicit full recalculation
    POST   /api/queue/{id}/status      Manual status transition

  Estimates:
    POST   /api/estimates              Non-mutating delivery quote

  Capabilities:
    GET    /api/capabilities           List capability records
    PUT    /api/capabilities/{productID}  Upsert a capability record

  Orders:
    GET    /api/orders/{id}            Customer order delivery estimate

  Config:
    GET    /api/config                 Active scheduling configuration

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call planner / store
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate work order)
  - 422: Unschedulable estimate input
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. The service sits behind the main
  application, which owns auth.

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/production-engine/factory"
	"github.com/warp/production-engine/planner"
	"github.com/warp/production-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the handlers need from persistence. Both store/sqlite
// and store/memory satisfy it.
type Store interface {
	planner.WorkOrderStore
	planner.CapabilityStore
	planner.CustomerOrderStore

	Enqueue(ctx context.Context, wo schedule.WorkOrder) error
	GetWorkOrder(ctx context.Context, id schedule.WorkOrderID) (*schedule.WorkOrder, error)
	ListAll(ctx context.Context) ([]schedule.WorkOrder, error)
	UpdateStatus(ctx context.Context, id schedule.WorkOrderID, status schedule.WorkOrderStatus) error
	UpsertCapability(ctx context.Context, c schedule.ProductCapability) error
	ListCapabilities(ctx context.Context) ([]schedule.ProductCapability, error)
	GetDeliveryEstimate(ctx context.Context, id schedule.CustomerOrderID) (*time.Time, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     Store
	Config    planner.Config
	Recalc    *planner.Recalculator
	Estimator *planner.Estimator
}

// NewHandler wires the planner entry points around the given store.
func NewHandler(store Store, cfg planner.Config) *Handler {
	return &Handler{
		Store:  store,
		Config: cfg,
		Recalc: &planner.Recalculator{
			Config:         cfg,
			WorkOrders:     store,
			Capabilities:   store,
			CustomerOrders: store,
		},
		Estimator: &planner.Estimator{
			Config:       cfg,
			WorkOrders:   store,
			Capabilities: store,
		},
	}
}

// =============================================================================
// QUEUE HANDLERS
// =============================================================================

// ListQueue returns the backlog. ?all=true includes done/cancelled orders.
func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	var (
		orders []schedule.WorkOrder
		err    error
	)
	if r.URL.Query().Get("all") == "true" {
		orders, err = h.Store.ListAll(r.Context())
	} else {
		orders, err = h.Store.ListActive(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list queue", err)
		return
	}

	dtos := make([]WorkOrderDTO, len(orders))
	for i, wo := range orders {
		dtos[i] = toWorkOrderDTO(wo)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// EnqueueWorkOrder appends a work order to the backlog, recalculates the
// whole queue, and responds with the new order's computed dates.
func (h *Handler) EnqueueWorkOrder(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required", nil)
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative", nil)
		return
	}
	if req.AssignedCapacity < 1 {
		writeError(w, http.StatusBadRequest, "assigned_capacity must be at least 1", nil)
		return
	}

	wo := schedule.WorkOrder{
		ID:               schedule.WorkOrderID("wo-" + uuid.NewString()),
		CustomerOrderID:  schedule.CustomerOrderID(req.CustomerOrderID),
		ProductID:        schedule.ProductID(req.ProductID),
		QuantityTotal:    req.Quantity,
		QuantityPending:  req.Quantity,
		Priority:         req.Priority,
		AssignedCapacity: req.AssignedCapacity,
		Status:           schedule.StatusQueued,
		CreatedAt:        time.Now().UTC(),
	}

	if err := h.Store.Enqueue(r.Context(), wo); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, schedule.ErrDuplicateWorkOrder) {
			status = http.StatusConflict
		}
		writeError(w, status, "Failed to enqueue work order", err)
		return
	}

	result, err := h.Recalc.Recalculate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Enqueued but recalculation failed", err)
		return
	}

	stored, err := h.Store.GetWorkOrder(r.Context(), wo.ID)
	if err != nil || stored == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload work order", err)
		return
	}

	resp := EnqueueResponse{
		WorkOrder:      toWorkOrderDTO(*stored),
		RecalcFailures: result.Failures,
	}
	if est, ok := result.DeliveryEstimates[wo.CustomerOrderID]; ok {
		resp.EstimatedDelivery = est.Format("2006-01-02")
	}
	writeJSON(w, http.StatusCreated, resp)
}

// RecalculateQueue triggers an explicit full recalculation.
func (h *Handler) RecalculateQueue(w http.ResponseWriter, r *http.Request) {
	result, err := h.Recalc.Recalculate(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if schedule.IsConfigError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Recalculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecalcResultDTO(result))
}

// UpdateWorkOrderStatus applies a manual lifecycle transition and, when the
// order leaves the backlog, recalculates the remaining queue.
func (h *Handler) UpdateWorkOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := schedule.WorkOrderID(chi.URLParam(r, "id"))

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status := schedule.WorkOrderStatus(req.Status)
	switch status {
	case schedule.StatusQueued, schedule.StatusInProgress, schedule.StatusDone, schedule.StatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, "Unknown status "+req.Status, nil)
		return
	}

	if err := h.Store.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, schedule.ErrWorkOrderNotFound) {
			writeError(w, http.StatusNotFound, "Work order not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update status", err)
		return
	}

	// Completion and cancellation free up capacity: the rest of the
	// backlog moves forward.
	if status == schedule.StatusDone || status == schedule.StatusCancelled {
		if _, err := h.Recalc.Recalculate(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "Status updated but recalculation failed", err)
			return
		}
	}

	stored, err := h.Store.GetWorkOrder(r.Context(), id)
	if err != nil || stored == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload work order", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkOrderDTO(*stored))
}

// =============================================================================
// ESTIMATE HANDLER
// =============================================================================

// CreateEstimate answers a delivery quote without touching the backlog.
func (h *Handler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required", nil)
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative", nil)
		return
	}
	if req.AssignedCapacity < 1 {
		writeError(w, http.StatusBadRequest, "assigned_capacity must be at least 1", nil)
		return
	}

	estimate, err := h.Estimator.Estimate(r.Context(), planner.EstimateRequest{
		ProductID:        schedule.ProductID(req.ProductID),
		Quantity:         req.Quantity,
		Priority:         req.Priority,
		AssignedCapacity: req.AssignedCapacity,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute estimate", err)
		return
	}

	status := http.StatusOK
	if !estimate.Schedulable {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, toEstimateDTO(estimate))
}

// =============================================================================
// CAPABILITY HANDLERS
// =============================================================================

// ListCapabilities returns every product capability record.
func (h *Handler) ListCapabilities(w http.ResponseWriter, r *http.Request) {
	caps, err := h.Store.ListCapabilities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list capabilities", err)
		return
	}

	dtos := make([]CapabilityDTO, len(caps))
	for i, c := range caps {
		dtos[i] = CapabilityDTO{
			ProductID:       string(c.ProductID),
			CapacityCeiling: c.CapacityCeiling,
			DailyMultiplier: c.DailyMultiplier,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertCapability creates or replaces a product's scheduling parameters.
func (h *Handler) UpsertCapability(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req CapabilityDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CapacityCeiling < 1 {
		writeError(w, http.StatusBadRequest, "capacity_ceiling must be at least 1", nil)
		return
	}
	if req.DailyMultiplier < 1 {
		writeError(w, http.StatusBadRequest, "daily_multiplier must be at least 1", nil)
		return
	}

	c := schedule.ProductCapability{
		ProductID:       schedule.ProductID(productID),
		CapacityCeiling: req.CapacityCeiling,
		DailyMultiplier: req.DailyMultiplier,
	}
	if err := h.Store.UpsertCapability(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save capability", err)
		return
	}

	writeJSON(w, http.StatusOK, CapabilityDTO{
		ProductID:       productID,
		CapacityCeiling: c.CapacityCeiling,
		DailyMultiplier: c.DailyMultiplier,
	})
}

// =============================================================================
// CUSTOMER ORDER HANDLER
// =============================================================================

// GetCustomerOrder reports a customer order's propagated delivery estimate.
func (h *Handler) GetCustomerOrder(w http.ResponseWriter, r *http.Request) {
	id := schedule.CustomerOrderID(chi.URLParam(r, "id"))

	estimated, err := h.Store.GetDeliveryEstimate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get delivery estimate", err)
		return
	}
	if estimated == nil {
		writeError(w, http.StatusNotFound, "No delivery estimate for order", nil)
		return
	}

	writeJSON(w, http.StatusOK, CustomerOrderDTO{
		ID:                string(id),
		EstimatedDelivery: estimated.Format("2006-01-02"),
	})
}

// =============================================================================
// CONFIG HANDLER
// =============================================================================

// GetConfig returns the active scheduling configuration.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.ToJSON(h.Config))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
