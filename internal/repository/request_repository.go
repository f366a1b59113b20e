package repository

import (
	"context"

	"github.com/Desla-ai/Doeum/internal/models"

	"github.com/google/uuid"
)

// CreateRequest inserts a new request
func (r *Repository) CreateRequest(ctx context.Context, req *models.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetRequestByID retrieves a request by ID
func (r *Repository) GetRequestByID(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	var req models.Request
	err := r.db.WithContext(ctx).Where("id = ?", requestID).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetCustomerRequests retrieves all requests posted by a customer, newest first
func (r *Repository) GetCustomerRequests(ctx context.Context, customerID uuid.UUID) ([]*models.Request, error) {
	var requests []*models.Request
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&requests).Error

	if err != nil {
		return nil, err
	}

	return requests, nil
}

// GetPostedRequestsByRegion retrieves open requests in a region, newest first.
// An empty dong matches every dong of the sigungu.
func (r *Repository) GetPostedRequestsByRegion(
	ctx context.Context,
	sigungu string,
	dong string,
	limit int,
) ([]*models.Request, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND region_sigungu = ?", models.RequestStatusPosted, sigungu)
	if dong != "" {
		query = query.Where("region_dong = ?", dong)
	}

	var requests []*models.Request
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error

	if err != nil {
		return nil, err
	}

	return requests, nil
}

// UpdateRequestStatus sets the status of a request
func (r *Repository) UpdateRequestStatus(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ?", requestID).
		Update("status", status).Error
}
