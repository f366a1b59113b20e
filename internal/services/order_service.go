package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Desla-ai/Doeum/internal/metrics"
	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultEventType is recorded when a transition does not name its event
const DefaultEventType = "status_change"

// requestStatusMirror maps order statuses to the status their request takes
var requestStatusMirror = map[models.OrderStatus]models.RequestStatus{
	models.OrderStatusEscrowHeld: models.RequestStatusInProgress,
	models.OrderStatusPaidOut:    models.RequestStatusCompleted,
	models.OrderStatusCancelled:  models.RequestStatusCancelled,
}

// OrderService drives the order lifecycle
type OrderService struct {
	repo    *repository.Repository
	payouts *PayoutService
	metrics *metrics.Metrics
	fx      sideEffects
}

// NewOrderService creates a new OrderService
func NewOrderService(repo *repository.Repository, payouts *PayoutService, m *metrics.Metrics) *OrderService {
	return &OrderService{repo: repo, payouts: payouts, metrics: m, fx: sideEffects{metrics: m}}
}

// GetOrder returns an order the caller participates in
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, lookupError(err, "order")
	}
	if !order.IsParticipant(userID) {
		return nil, forbiddenError("not a participant of this order")
	}
	return order, nil
}

// ListOrders returns orders where the caller is customer or helper
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	orders, err := s.repo.GetUserOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Transition moves an order to a new status. The status write is conditional
// on the order still being in the status it was read in. Audit log, payment
// ledger and request status follow as best-effort writes.
func (s *OrderService) Transition(
	ctx context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
	input models.TransitionInput,
) (*models.Order, error) {
	to := models.OrderStatus(input.ToStatus)
	if !to.Valid() {
		return nil, validationError("unknown status %q", input.ToStatus)
	}

	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !from.CanTransitionTo(to) {
		return nil, newError(ErrInvalidTransition, "cannot transition order from %s to %s", from, to)
	}

	ok, err := s.repo.CompareAndSetOrderStatus(ctx, order.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !ok {
		return nil, conflictError("order status changed concurrently, reload and retry")
	}

	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	s.metrics.RecordOrderTransition(string(from), string(to))

	fields := log.Fields{"order_id": order.ID, "from": from, "to": to, "actor_id": userID}
	log.WithFields(fields).Info("[Order] status changed")

	eventType := input.EventType
	if eventType == "" {
		eventType = DefaultEventType
	}
	payload := input.Payload
	if payload == nil {
		payload = models.JSONMap{}
	}

	s.fx.run(ctx, "work_event", fields, func(ctx context.Context) error {
		return s.repo.CreateWorkEvent(ctx, &models.WorkEvent{
			OrderID:    order.ID,
			ActorID:    userID,
			EventType:  eventType,
			FromStatus: from,
			ToStatus:   to,
			Payload:    payload,
		})
	})

	s.fx.run(ctx, "payment", fields, func(ctx context.Context) error {
		return s.payouts.Settle(ctx, order, from, to)
	})

	if mirrored, ok := requestStatusMirror[to]; ok {
		s.fx.run(ctx, "request_status", fields, func(ctx context.Context) error {
			return s.repo.UpdateRequestStatus(ctx, order.RequestID, mirrored)
		})
	}

	return order, nil
}

// ListWorkEvents returns the audit log of an order, oldest first
func (s *OrderService) ListWorkEvents(ctx context.Context, userID, orderID uuid.UUID) ([]*models.WorkEvent, error) {
	if _, err := s.GetOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}

	events, err := s.repo.GetOrderWorkEvents(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work events: %w", err)
	}
	return events, nil
}

// Checkout quotes the amount the customer pays into escrow
func (s *OrderService) Checkout(ctx context.Context, userID, orderID uuid.UUID) (*models.CheckoutQuote, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	fee := s.payouts.PlatformFee(order.Amount)
	return &models.CheckoutQuote{
		OrderID:     order.ID,
		Amount:      order.Amount,
		PlatformFee: fee,
		Total:       s.payouts.EscrowTotal(order.Amount),
		FeePercent:  s.payouts.FeePercent().String(),
	}, nil
}

// ListPayments returns the payment ledger of an order
func (s *OrderService) ListPayments(ctx context.Context, userID, orderID uuid.UUID) ([]*models.PaymentTransaction, error) {
	if _, err := s.GetOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}

	payments, err := s.repo.GetOrderPayments(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	return payments, nil
}
