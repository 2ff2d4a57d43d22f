package audit

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"travelbro-server/internal/domain/chat"
	"travelbro-server/internal/domain/vision"
	"travelbro-server/internal/infrastructure/database/entities"
	"travelbro-server/internal/utils/platformerrors"
)

// Repository appends the per-turn decision trail and per-call vision log.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs the audit repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Log appends one conversation audit row.
func (r *Repository) Log(ctx context.Context, entry *chat.AuditEntry) error {
	slotsBefore, err := marshalJSON(entry.SlotsBefore)
	if err != nil {
		return err
	}
	slotsAfter, err := marshalJSON(entry.SlotsAfter)
	if err != nil {
		return err
	}
	toolsCalled, err := marshalJSON(entry.ToolsCalled)
	if err != nil {
		return err
	}

	row := entities.ConversationLog{
		TripID:       entry.TripID,
		SessionToken: entry.SessionToken,
		MessageID:    entry.MessageID,
		SlotsBefore:  slotsBefore,
		SlotsAfter:   slotsAfter,
		ToolsCalled:  toolsCalled,
		Temperature:  entry.Temperature,
		TokensUsed:   entry.TokensUsed,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to append conversation log",
			err,
		)
	}
	return nil
}

// AppendVisionLog appends one vision call row.
func (r *Repository) AppendVisionLog(ctx context.Context, entry *vision.LogEntry) error {
	categories, err := marshalJSON(entry.Categories)
	if err != nil {
		return err
	}

	row := entities.VisionLog{
		TripID:       entry.TripID,
		SessionToken: entry.SessionToken,
		AttachmentID: entry.AttachmentID,
		Prompt:       entry.Prompt,
		Response:     entry.Response,
		Confidence:   entry.Confidence,
		Categories:   categories,
		Location:     entry.Location,
		Model:        entry.Model,
		TokensUsed:   entry.TokensUsed,
		CostEUR:      entry.CostEUR,
		LatencyMS:    entry.LatencyMS,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to append vision log",
			err,
		)
	}
	return nil
}

func marshalJSON(value any) (datatypes.JSON, error) {
	if value == nil {
		return datatypes.JSON([]byte("null")), nil
	}
	bytes, err := json.Marshal(value)
	return datatypes.JSON(bytes), err
}
