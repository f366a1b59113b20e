package repository

import (
	"context"

	"github.com/Desla-ai/Doeum/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// GetUserAddresses retrieves the non-deleted addresses of a user, newest first
func (r *Repository) GetUserAddresses(ctx context.Context, userID uuid.UUID) ([]*models.Address, error) {
	var addresses []*models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&addresses).Error

	if err != nil {
		return nil, err
	}

	return addresses, nil
}

// GetUserAddress retrieves a non-deleted address owned by userID
func (r *Repository) GetUserAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// CreateAddress inserts an address
func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// SoftDeleteAddress marks an address of userID deleted. Returns the number of
// rows changed; already-deleted or foreign addresses yield zero.
func (r *Repository) SoftDeleteAddress(ctx context.Context, userID, addressID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{})
	return result.RowsAffected, result.Error
}

// GetProfile retrieves a profile by user ID
func (r *Repository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfileIfMissing inserts a profile unless one already exists for the id
func (r *Repository) CreateProfileIfMissing(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(profile).Error
}

// UpdateProfile applies column updates to a profile
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(updates).Error
}
