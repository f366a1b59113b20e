package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/repository"

	"github.com/google/uuid"
)

// AddressService manages a user's saved addresses
type AddressService struct {
	repo *repository.Repository
}

// NewAddressService creates a new AddressService
func NewAddressService(repo *repository.Repository) *AddressService {
	return &AddressService{repo: repo}
}

// ListAddresses returns the caller's active addresses, newest first
func (s *AddressService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*models.Address, error) {
	addresses, err := s.repo.GetUserAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// AddAddress saves a new address for the caller
func (s *AddressService) AddAddress(ctx context.Context, userID uuid.UUID, input models.AddressInput) (*models.Address, error) {
	address := &models.Address{
		UserID:        userID,
		RegionSigungu: strings.TrimSpace(input.RegionSigungu),
		RegionDong:    strings.TrimSpace(input.RegionDong),
		AddressLine:   strings.TrimSpace(input.AddressLine),
		AddressDetail: strings.TrimSpace(input.AddressDetail),
		Lat:           input.Lat,
		Lng:           input.Lng,
	}

	if address.RegionSigungu == "" || address.RegionDong == "" || address.AddressLine == "" {
		return nil, validationError("region_sigungu, region_dong and address_line are required")
	}

	if err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}

// DeleteAddress soft-deletes one of the caller's addresses
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	deleted, err := s.repo.SoftDeleteAddress(ctx, userID, addressID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if deleted == 0 {
		return notFoundError("address not found")
	}
	return nil
}
