package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Desla-ai/Doeum/internal/metrics"
	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// RequestService handles posting and reading service requests
type RequestService struct {
	repo *repository.Repository
	fx   sideEffects
}

// NewRequestService creates a new RequestService
func NewRequestService(repo *repository.Repository, m *metrics.Metrics) *RequestService {
	return &RequestService{repo: repo, fx: sideEffects{metrics: m}}
}

// CreateRequest posts a new request for customerID
func (s *RequestService) CreateRequest(
	ctx context.Context,
	customerID uuid.UUID,
	input models.NewRequestInput,
) (*models.Request, error) {
	req := &models.Request{
		CustomerID:    customerID,
		Category:      strings.TrimSpace(input.Category),
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		ScheduledAt:   input.ScheduledAt,
		RegionSigungu: strings.TrimSpace(input.RegionSigungu),
		RegionDong:    strings.TrimSpace(input.RegionDong),
		Status:        models.RequestStatusPosted,
	}

	required := []struct {
		name  string
		value string
	}{
		{"category", req.Category},
		{"description", req.Description},
		{"region_sigungu", req.RegionSigungu},
		{"region_dong", req.RegionDong},
		{"address_id", strings.TrimSpace(input.AddressID)},
	}
	for _, field := range required {
		if field.value == "" {
			return nil, validationError("%s is required", field.name)
		}
	}

	if req.Price < 0 {
		return nil, validationError("price must not be negative")
	}

	addressID, err := uuid.Parse(strings.TrimSpace(input.AddressID))
	if err != nil {
		return nil, validationError("address_id is invalid")
	}
	if _, err := s.repo.GetUserAddress(ctx, customerID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("address_id does not match any of your addresses")
		}
		return nil, fmt.Errorf("failed to load address: %w", err)
	}
	req.AddressID = addressID

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.WithFields(log.Fields{"request_id": req.ID, "customer_id": customerID}).Info("[Request] posted")
	return req, nil
}

// ListRequests returns the caller's requests, newest first
func (s *RequestService) ListRequests(ctx context.Context, customerID uuid.UUID) ([]*models.Request, error) {
	requests, err := s.repo.GetCustomerRequests(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

// GetRequest returns a request owned by the caller together with its proposals
func (s *RequestService) GetRequest(
	ctx context.Context,
	customerID uuid.UUID,
	requestID uuid.UUID,
) (*models.RequestDetail, error) {
	req, err := s.ownedRequest(ctx, customerID, requestID)
	if err != nil {
		return nil, err
	}

	proposals, err := s.repo.GetRequestProposals(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load proposals: %w", err)
	}

	return &models.RequestDetail{Request: req, Proposals: proposals}, nil
}

// ListProposals returns the proposals made on a request owned by the caller
func (s *RequestService) ListProposals(
	ctx context.Context,
	customerID uuid.UUID,
	requestID uuid.UUID,
) ([]*models.Proposal, error) {
	if _, err := s.ownedRequest(ctx, customerID, requestID); err != nil {
		return nil, err
	}

	proposals, err := s.repo.GetRequestProposals(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load proposals: %w", err)
	}
	return proposals, nil
}

// HelperFeed lists open requests in a region for helpers looking for work
func (s *RequestService) HelperFeed(
	ctx context.Context,
	sigungu string,
	dong string,
	limit int,
) ([]*models.Request, error) {
	sigungu = strings.TrimSpace(sigungu)
	if sigungu == "" {
		return nil, validationError("sigungu is required")
	}

	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	requests, err := s.repo.GetPostedRequestsByRegion(ctx, sigungu, strings.TrimSpace(dong), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	return requests, nil
}

func (s *RequestService) ownedRequest(ctx context.Context, customerID, requestID uuid.UUID) (*models.Request, error) {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, lookupError(err, "request")
	}
	if req.CustomerID != customerID {
		return nil, forbiddenError("not the owner of this request")
	}
	return req, nil
}
