package repository

import (
	"context"
	"fmt"

	"beatsensei/db"
	"beatsensei/model"

	"gorm.io/gorm"
)

// InteractionRepository logs served recommendations for analytics.
// Backed by GORM, matching how the newer modules are managed.
type InteractionRepository struct {
	DB *gorm.DB
}

// NewInteractionRepository creates a new InteractionRepository.
func NewInteractionRepository() *InteractionRepository {
	return &InteractionRepository{DB: db.GormDB}
}

// CreateBatch inserts a batch of interaction records.
func (r *InteractionRepository) CreateBatch(ctx context.Context, interactions []model.Interaction) error {
	if r.DB == nil {
		return fmt.Errorf("GORM database not initialized")
	}
	if len(interactions) == 0 {
		return nil
	}
	if err := r.DB.WithContext(ctx).Create(&interactions).Error; err != nil {
		return fmt.Errorf("failed to create interactions: %w", err)
	}
	return nil
}

// ListRecentByUser returns the most recent interactions for a user.
func (r *InteractionRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.Interaction, error) {
	if r.DB == nil {
		return nil, fmt.Errorf("GORM database not initialized")
	}
	var interactions []model.Interaction
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&interactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions for user %s: %w", userID, err)
	}
	return interactions, nil
}
