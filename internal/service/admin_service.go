package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
	"gorm.io/gorm"
)

// AdminServicer — интерфейс для handler-слоя (подменяется моком в тестах).
type AdminServicer interface {
	List(ctx context.Context) ([]model.Admin, error)
	Add(ctx context.Context, a *model.Admin) error
	Delete(ctx context.Context, email string) error
	IsAdmin(ctx context.Context, email string) (bool, error)
	EnsureDefault(ctx context.Context, email string) error
}

type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	var items []model.Admin
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Add добавляет администратора. Email нормализуется в нижний регистр;
// дубликат — конфликт.
func (s *AdminService) Add(ctx context.Context, a *model.Admin) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Admin{}).Where("email = ?", a.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.ErrAdminExists
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		return tx.Create(a).Error
	})
}

// Delete убирает администратора из ростера. Последнего администратора
// удалить нельзя — ростер никогда не пустеет.
func (s *AdminService) Delete(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Admin{}).Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return errs.ErrLastAdmin
		}
		res := tx.Delete(&model.Admin{}, "email = ?", email)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrAdminNotFound
		}
		return nil
	})
}

func (s *AdminService) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Admin{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// EnsureDefault заводит администратора по умолчанию, если ростер пуст.
// Вызывается на старте сервиса и из команды seed-admin.
func (s *AdminService) EnsureDefault(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Admin{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		name := email
		if i := strings.IndexByte(email, '@'); i > 0 {
			name = email[:i]
		}
		return tx.Create(&model.Admin{
			ID:      uuid.NewString(),
			Email:   email,
			Name:    name,
			AddedBy: "system",
		}).Error
	})
}
