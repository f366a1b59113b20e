package repository

import (
	"context"

	"github.com/Desla-ai/Doeum/internal/models"

	"github.com/google/uuid"
)

// CreateOrder inserts a new order
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetOrderByID retrieves an order by ID
func (r *Repository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CountOrdersForRequest counts orders created from a request (0 or 1)
func (r *Repository) CountOrdersForRequest(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	return count, err
}

// GetUserOrders retrieves orders where the user is customer or helper, newest first
func (r *Repository) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ? OR helper_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// CompareAndSetOrderStatus moves an order from one status to another only if
// it is still in the expected status. Returns false when another writer won.
func (r *Repository) CompareAndSetOrderStatus(
	ctx context.Context,
	orderID uuid.UUID,
	from models.OrderStatus,
	to models.OrderStatus,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CreateWorkEvent appends an entry to the order's audit log
func (r *Repository) CreateWorkEvent(ctx context.Context, event *models.WorkEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetOrderWorkEvents retrieves the audit log of an order, oldest first
func (r *Repository) GetOrderWorkEvents(ctx context.Context, orderID uuid.UUID) ([]*models.WorkEvent, error) {
	var events []*models.WorkEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error

	if err != nil {
		return nil, err
	}

	return events, nil
}

// CreatePaymentTransaction records a ledger line
func (r *Repository) CreatePaymentTransaction(ctx context.Context, tx *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetOrderPayments retrieves the payment ledger of an order, oldest first
func (r *Repository) GetOrderPayments(ctx context.Context, orderID uuid.UUID) ([]*models.PaymentTransaction, error) {
	var payments []*models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error

	if err != nil {
		return nil, err
	}

	return payments, nil
}

// HasPaymentOfType reports whether a ledger line of the given type exists
func (r *Repository) HasPaymentOfType(
	ctx context.Context,
	orderID uuid.UUID,
	paymentType models.PaymentTransactionType,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("order_id = ? AND type = ? AND status = ?", orderID, paymentType, models.PaymentStatusConfirmed).
		Count(&count).Error
	return count > 0, err
}
