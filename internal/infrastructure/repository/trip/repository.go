package trip

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "travelbro-server/internal/domain/trip"
	"travelbro-server/internal/infrastructure/database/entities"
	"travelbro-server/internal/utils/platformerrors"
)

// Repository reads trip snapshots and accumulates per-trip spend.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs the trip repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a trip by its public id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Trip, error) {
	var entity entities.Trip
	err := r.db.WithContext(ctx).Where("public_id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find trip",
			err,
		)
	}
	return entity.EtoD(), nil
}

// AddVisionCost atomically increments the vision spend column.
func (r *Repository) AddVisionCost(ctx context.Context, tripID string, eur float64) error {
	return r.addCost(ctx, tripID, "vision_cost_eur", eur)
}

// AddChatCost atomically increments the chat spend column.
func (r *Repository) AddChatCost(ctx context.Context, tripID string, eur float64) error {
	return r.addCost(ctx, tripID, "chat_cost_eur", eur)
}

func (r *Repository) addCost(ctx context.Context, tripID, column string, eur float64) error {
	if eur <= 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&entities.Trip{}).
		Where("public_id = ?", tripID).
		UpdateColumn(column, gorm.Expr(column+" + ?", eur)).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to track trip cost",
			err,
		)
	}
	return nil
}
