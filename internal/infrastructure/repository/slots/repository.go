package slots

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	domain "travelbro-server/internal/domain/slots"
	"travelbro-server/internal/infrastructure/database/entities"
	"travelbro-server/internal/utils/platformerrors"
)

// Store persists the per-(session, trip) slot memory. Writes go through an
// optimistic revision check and retry once on a lost race; the session lease
// upstream makes races rare, the revision check makes them harmless.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewStore constructs the slot store.
func NewStore(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log.With().Str("component", "slot-store").Logger()}
}

// Get returns the stored slots, or empty defaults when no row exists yet.
// Read failures degrade to empty defaults so a turn is never blocked by a
// slot read.
func (s *Store) Get(ctx context.Context, sessionToken, tripID string) domain.Slots {
	var entity entities.ConversationSlots
	err := s.db.WithContext(ctx).
		Where("session_token = ? AND trip_id = ?", sessionToken, tripID).
		First(&entity).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Err(err).Str("trip_id", tripID).Msg("slot read failed, using empty slots")
		}
		return domain.Slots{}
	}
	return entity.EtoD()
}

// Update applies a partial slot update with read-merge-write semantics.
func (s *Store) Update(ctx context.Context, sessionToken, tripID string, update domain.Update) error {
	if update.IsEmpty() {
		return nil
	}

	// One retry absorbs a single lost revision race or insert conflict.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if err = s.tryUpdate(ctx, sessionToken, tripID, update); err == nil {
			return nil
		}
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to update conversation slots",
		err,
	)
}

var errRevisionConflict = errors.New("slot revision conflict")

func (s *Store) tryUpdate(ctx context.Context, sessionToken, tripID string, update domain.Update) error {
	var entity entities.ConversationSlots
	err := s.db.WithContext(ctx).
		Where("session_token = ? AND trip_id = ?", sessionToken, tripID).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := entities.ConversationSlots{
			TripID:       tripID,
			SessionToken: sessionToken,
			Revision:     1,
		}
		if applyErr := fresh.ApplyMerged(domain.Slots{}.Merge(update)); applyErr != nil {
			return applyErr
		}
		// A concurrent insert trips the unique index and triggers the retry.
		return s.db.WithContext(ctx).Create(&fresh).Error
	}
	if err != nil {
		return err
	}

	merged := entity.EtoD().Merge(update)
	if applyErr := entity.ApplyMerged(merged); applyErr != nil {
		return applyErr
	}

	result := s.db.WithContext(ctx).
		Model(&entities.ConversationSlots{}).
		Where("id = ? AND revision = ?", entity.ID, entity.Revision).
		Updates(map[string]any{
			"current_destination": entity.CurrentDestination,
			"current_hotel":       entity.CurrentHotel,
			"current_day":         entity.CurrentDay,
			"current_country":     entity.CurrentCountry,
			"last_intent":         entity.LastIntent,
			"metadata":            entity.Metadata,
			"revision":            entity.Revision + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errRevisionConflict
	}
	return nil
}
