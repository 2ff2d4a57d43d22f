package conversation

import (
	"context"

	"gorm.io/gorm"

	domain "travelbro-server/internal/domain/conversation"
	"travelbro-server/internal/infrastructure/database/entities"
	"travelbro-server/internal/utils/platformerrors"
)

// TurnRepository persists conversation turns.
type TurnRepository struct {
	db *gorm.DB
}

// NewTurnRepository constructs the turn repository.
func NewTurnRepository(db *gorm.DB) *TurnRepository {
	return &TurnRepository{db: db}
}

// Append inserts a single turn.
func (r *TurnRepository) Append(ctx context.Context, turn *domain.Turn) error {
	entity := entities.NewSchemaConversationTurn(turn)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to append conversation turn",
			err,
		)
	}
	turn.ID = entity.ID
	return nil
}

// ListRecent returns the last limit turns for the session/trip pair in
// chronological order.
func (r *TurnRepository) ListRecent(ctx context.Context, sessionToken, tripID string, limit int) ([]domain.Turn, error) {
	var rows []entities.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("session_token = ? AND trip_id = ?", sessionToken, tripID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list conversation turns",
			err,
		)
	}

	// Newest-first from the query, oldest-first for prompt replay.
	turns := make([]domain.Turn, len(rows))
	for i := range rows {
		turns[len(rows)-1-i] = rows[i].EtoD()
	}
	return turns, nil
}
