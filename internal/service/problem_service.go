package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
	"gorm.io/gorm"
)

// ProblemFilter — критерии выборки заявок. Поиск выполняется на сервере
// (ILIKE по заголовку и описанию), а не на клиенте.
type ProblemFilter struct {
	Status   string
	Category string
	Search   string
}

// ProblemStats — сводка по заявкам для /stats.
type ProblemStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByCategory map[string]int64 `json:"by_category"`
}

// ProblemServicer — интерфейс для handler-слоя (подменяется моком в тестах).
type ProblemServicer interface {
	Create(ctx context.Context, p *model.Problem) error
	GetByID(ctx context.Context, id string) (*model.Problem, error)
	List(ctx context.Context, filter ProblemFilter) ([]model.Problem, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (*model.Problem, error)
	UpdateStatus(ctx context.Context, id string, status model.ProblemStatus) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*ProblemStats, error)
}

type ProblemService struct {
	db *gorm.DB
}

func NewProblemService(db *gorm.DB) *ProblemService {
	return &ProblemService{db: db}
}

// Create сохраняет новую заявку. Статус всегда форсируется в "new".
func (s *ProblemService) Create(ctx context.Context, p *model.Problem) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Status = model.ProblemStatusNew
	if p.Attachments == nil {
		p.Attachments = []string{}
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *ProblemService) GetByID(ctx context.Context, id string) (*model.Problem, error) {
	var p model.Problem
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrProblemNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *ProblemService) List(ctx context.Context, filter ProblemFilter) ([]model.Problem, error) {
	var items []model.Problem
	tx := s.db.WithContext(ctx).Model(&model.Problem{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		tx = tx.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		q := "%" + escapeLike(filter.Search) + "%"
		tx = tx.Where("title ILIKE ? OR description ILIKE ?", q, q)
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update меняет заголовок/описание/категорию. Статус через UpdateStatus.
func (s *ProblemService) Update(ctx context.Context, id string, changes map[string]interface{}) (*model.Problem, error) {
	var p model.Problem
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrProblemNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&p).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProblemService) UpdateStatus(ctx context.Context, id string, status model.ProblemStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Problem{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrProblemNotFound
	}
	return nil
}

// Delete удаляет заявку; связанная инструкция удаляется каскадно (FK).
func (s *ProblemService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Problem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrProblemNotFound
	}
	return nil
}

func (s *ProblemService) Stats(ctx context.Context) (*ProblemStats, error) {
	stats := &ProblemStats{
		ByStatus:   make(map[string]int64),
		ByCategory: make(map[string]int64),
	}
	type bucket struct {
		Key   string
		Count int64
	}
	var rows []bucket
	if err := s.db.WithContext(ctx).Model(&model.Problem{}).
		Select("status AS key, count(*) AS count").
		Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByStatus[r.Key] = r.Count
		stats.Total += r.Count
	}
	rows = rows[:0]
	if err := s.db.WithContext(ctx).Model(&model.Problem{}).
		Select("category AS key, count(*) AS count").
		Group("category").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByCategory[r.Key] = r.Count
	}
	return stats, nil
}

// escapeLike экранирует спецсимволы LIKE в пользовательском запросе.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
