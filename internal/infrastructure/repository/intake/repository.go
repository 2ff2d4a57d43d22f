package intake

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	domain "travelbro-server/internal/domain/intake"
	"travelbro-server/internal/infrastructure/database/entities"
)

// Repository reads the traveler questionnaire written by the intake form.
type Repository struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewRepository constructs the intake repository.
func NewRepository(db *gorm.DB, log zerolog.Logger) *Repository {
	return &Repository{db: db, log: log.With().Str("component", "intake").Logger()}
}

// FindBySession returns the intake for a session, or nil when none exists.
// Read failures degrade to nil so a turn is never blocked by personalization.
func (r *Repository) FindBySession(ctx context.Context, sessionToken string) *domain.Intake {
	var entity entities.TravelIntake
	err := r.db.WithContext(ctx).
		Where("session_token = ?", sessionToken).
		First(&entity).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn().Err(err).Msg("intake read failed, skipping personalization")
		}
		return nil
	}
	return entity.EtoD()
}

var _ domain.Repository = (*Repository)(nil)
