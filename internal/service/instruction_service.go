package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
	"gorm.io/gorm"
)

// InstructionServicer — интерфейс для handler-слоя (подменяется моком в тестах).
type InstructionServicer interface {
	Create(ctx context.Context, ins *model.Instruction) error
	GetByProblem(ctx context.Context, problemID string) (*model.Instruction, error)
	DeleteByProblem(ctx context.Context, problemID string) error
}

type InstructionService struct {
	db *gorm.DB
}

func NewInstructionService(db *gorm.DB) *InstructionService {
	return &InstructionService{db: db}
}

// Create сохраняет инструкцию и в той же транзакции переводит заявку в
// "resolved". Это единственный путь, которым заявка становится решённой.
// Для уже решённой заявки или заявки с инструкцией возвращает конфликт.
func (s *InstructionService) Create(ctx context.Context, ins *model.Instruction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Problem
		if err := tx.First(&p, "id = ?", ins.ProblemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrProblemNotFound
			}
			return err
		}
		if p.Status == model.ProblemStatusResolved {
			return errs.ErrProblemResolved
		}
		var count int64
		if err := tx.Model(&model.Instruction{}).
			Where("problem_id = ?", ins.ProblemID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.ErrInstructionExists
		}
		if ins.ID == "" {
			ins.ID = uuid.NewString()
		}
		if ins.Images == nil {
			ins.Images = []string{}
		}
		if err := tx.Create(ins).Error; err != nil {
			return err
		}
		return tx.Model(&p).Update("status", model.ProblemStatusResolved).Error
	})
}

func (s *InstructionService) GetByProblem(ctx context.Context, problemID string) (*model.Instruction, error) {
	var ins model.Instruction
	if err := s.db.WithContext(ctx).First(&ins, "problem_id = ?", problemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrInstructionNotFound
		}
		return nil, err
	}
	return &ins, nil
}

// DeleteByProblem удаляет инструкцию и возвращает заявку в "in_progress".
func (s *InstructionService) DeleteByProblem(ctx context.Context, problemID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Instruction{}, "problem_id = ?", problemID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrInstructionNotFound
		}
		return tx.Model(&model.Problem{}).
			Where("id = ?", problemID).
			Update("status", model.ProblemStatusInProgress).Error
	})
}
