package repository

import (
	"context"
	"time"

	"github.com/Desla-ai/Doeum/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// UpsertThread returns the thread of an order, creating it on first use
func (r *Repository) UpsertThread(ctx context.Context, orderID uuid.UUID) (*models.ChatThread, error) {
	thread := &models.ChatThread{OrderID: orderID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(thread).Error
	if err != nil {
		return nil, err
	}

	// On conflict nothing was written; read back the existing row.
	var existing models.ChatThread
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// GetThreadByID retrieves a thread by ID
func (r *Repository) GetThreadByID(ctx context.Context, threadID uuid.UUID) (*models.ChatThread, error) {
	var thread models.ChatThread
	err := r.db.WithContext(ctx).Where("id = ?", threadID).First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// UpsertThreadMembers adds members to a thread, updating roles of existing ones
func (r *Repository) UpsertThreadMembers(ctx context.Context, members []*models.ChatMember) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(&members).Error
}

// IsThreadMember reports whether a membership row exists
func (r *Repository) IsThreadMember(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChatMember{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&count).Error
	return count > 0, err
}

// GetThreadMessages retrieves messages oldest first. A non-nil after limits
// the result to messages created strictly later.
func (r *Repository) GetThreadMessages(
	ctx context.Context,
	threadID uuid.UUID,
	after *time.Time,
	limit int,
) ([]*models.ChatMessage, error) {
	query := r.db.WithContext(ctx).Where("thread_id = ?", threadID)
	if after != nil {
		query = query.Where("created_at > ?", *after)
	}

	var messages []*models.ChatMessage
	err := query.
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error

	if err != nil {
		return nil, err
	}

	return messages, nil
}

// CreateMessage inserts a chat message
func (r *Repository) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
