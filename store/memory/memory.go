// Package memory provides an in-memory store implementation (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/production-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of the planner/api store ports
// =============================================================================

type Store struct {
	mu         sync.RWMutex
	orders     map[schedule.WorkOrderID]schedule.WorkOrder
	caps       map[schedule.ProductID]schedule.ProductCapability
	deliveries map[schedule.CustomerOrderID]time.Time

	// FailScheduleWrites injects per-order write failures, used by tests of
	// the partial-failure policy.
	FailScheduleWrites map[schedule.WorkOrderID]error
}

func New() *Store {
	return &Store{
		orders:     make(map[schedule.WorkOrderID]schedule.WorkOrder),
		caps:       make(map[schedule.ProductID]schedule.ProductCapability),
		deliveries: make(map[schedule.CustomerOrderID]time.Time),
	}
}

// =============================================================================
// WORK ORDERS
// =============================================================================

func (s *Store) Enqueue(_ context.Context, wo schedule.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[wo.ID]; exists {
		return schedule.ErrDuplicateWorkOrder
	}
	s.orders[wo.ID] = wo
	return nil
}

func (s *Store) GetWorkOrder(_ context.Context, id schedule.WorkOrderID) (*schedule.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wo, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return &wo, nil
}

// ListActive returns queued and in-progress orders in strict scheduling
// order: priority first, then creation time, then ID.
func (s *Store) ListActive(_ context.Context) ([]schedule.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []schedule.WorkOrder
	for _, wo := range s.orders {
		if wo.Active() {
			result = append(result, wo)
		}
	}
	sortBacklog(result)
	return result, nil
}

func (s *Store) ListAll(_ context.Context) ([]schedule.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]schedule.WorkOrder, 0, len(s.orders))
	for _, wo := range s.orders {
		result = append(result, wo)
	}
	sortBacklog(result)
	return result, nil
}

func (s *Store) UpdateSchedule(_ context.Context, id schedule.WorkOrderID, start, end *time.Time, pending int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.FailScheduleWrites[id]; ok {
		return err
	}
	wo, ok := s.orders[id]
	if !ok {
		return schedule.ErrWorkOrderNotFound
	}
	wo.StartDate = start
	wo.EndDate = end
	wo.QuantityPending = pending
	s.orders[id] = wo
	return nil
}

func (s *Store) UpdateStatus(_ context.Context, id schedule.WorkOrderID, status schedule.WorkOrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wo, ok := s.orders[id]
	if !ok {
		return schedule.ErrWorkOrderNotFound
	}
	wo.Status = status
	s.orders[id] = wo
	return nil
}

// =============================================================================
// PRODUCT CAPABILITIES
// =============================================================================

func (s *Store) UpsertCapability(_ context.Context, c schedule.ProductCapability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps[c.ProductID] = c
	return nil
}

func (s *Store) Capabilities(_ context.Context, ids []schedule.ProductID) ([]schedule.ProductCapability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []schedule.ProductCapability
	for _, id := range ids {
		if c, ok := s.caps[id]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *Store) ListCapabilities(_ context.Context) ([]schedule.ProductCapability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]schedule.ProductCapability, 0, len(s.caps))
	for _, c := range s.caps {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProductID < result[j].ProductID })
	return result, nil
}

// =============================================================================
// CUSTOMER ORDERS
// =============================================================================

func (s *Store) UpdateDeliveryEstimate(_ context.Context, id schedule.CustomerOrderID, estimated time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries[id] = estimated
	return nil
}

func (s *Store) GetDeliveryEstimate(_ context.Context, id schedule.CustomerOrderID) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.deliveries[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func sortBacklog(orders []schedule.WorkOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Priority != orders[j].Priority {
			return orders[i].Priority
		}
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
}
