package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
	"gorm.io/gorm"
)

// AttachmentServicer — интерфейс для handler-слоя (подменяется моком в тестах).
type AttachmentServicer interface {
	Save(ctx context.Context, a *model.Attachment) error
	Get(ctx context.Context, token string) (*model.Attachment, error)
}

type AttachmentService struct {
	db *gorm.DB
}

func NewAttachmentService(db *gorm.DB) *AttachmentService {
	return &AttachmentService{db: db}
}

// Save сохраняет загруженный файл и присваивает ему непрозрачный токен.
// Заявки и инструкции хранят только токены, не содержимое.
func (s *AttachmentService) Save(ctx context.Context, a *model.Attachment) error {
	if a.Token == "" {
		a.Token = uuid.NewString()
	}
	a.Size = int64(len(a.Data))
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *AttachmentService) Get(ctx context.Context, token string) (*model.Attachment, error) {
	var a model.Attachment
	if err := s.db.WithContext(ctx).First(&a, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &a, nil
}
