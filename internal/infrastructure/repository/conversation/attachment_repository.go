package conversation

import (
	"context"

	"gorm.io/gorm"

	domain "travelbro-server/internal/domain/conversation"
	"travelbro-server/internal/infrastructure/database/entities"
	"travelbro-server/internal/utils/platformerrors"
)

// AttachmentRepository persists attachment records.
type AttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository constructs the attachment repository.
func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts a single attachment record.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	entity := entities.NewSchemaAttachment(attachment)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create attachment",
			err,
		)
	}
	attachment.ID = entity.ID
	return nil
}
