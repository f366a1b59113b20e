package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/repository"
	"github.com/Desla-ai/Doeum/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileService handles the caller's own profile
type ProfileService struct {
	repo *repository.Repository
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo *repository.Repository) *ProfileService {
	return &ProfileService{repo: repo}
}

// GetProfile returns the caller's profile, creating it with defaults on
// first access
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	fresh := &models.Profile{
		ID:            userID,
		Name:          utils.NicknameOrDefault(),
		Tier:          models.TierBronze,
		MatchingScore: models.DefaultMatchingScore,
	}
	if err := s.repo.CreateProfileIfMissing(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	// A concurrent first access may have won the insert; read the stored row.
	profile, err = s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields of patch
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch models.ProfilePatch) (*models.Profile, error) {
	updates := map[string]interface{}{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, validationError("name must not be empty")
		}
		updates["name"] = name
	}
	if patch.RegionSigungu != nil {
		updates["region_sigungu"] = strings.TrimSpace(*patch.RegionSigungu)
	}
	if patch.RegionDong != nil {
		updates["region_dong"] = strings.TrimSpace(*patch.RegionDong)
	}
	if patch.IsOnline != nil {
		updates["is_online"] = *patch.IsOnline
	}

	// Make sure the row exists before patching it.
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateProfile(ctx, userID, updates); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return s.GetProfile(ctx, userID)
}
