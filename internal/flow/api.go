package flow

import (
	"context"
	"strings"

	"github.com/it-helpdesk/helpdesk-service/internal/model"
)

// API — узкий интерфейс бэкенда, который нужен машине экранов.
// Реализуется internal/client, в тестах подменяется фейком.
type API interface {
	Problems(ctx context.Context, c Criteria) ([]model.Problem, error)
	CreateProblem(ctx context.Context, d ProblemDraft) (*model.Problem, error)
	DeleteProblem(ctx context.Context, id string) error

	// Instruction возвращает (nil, nil), когда инструкции ещё нет.
	Instruction(ctx context.Context, problemID string) (*model.Instruction, error)
	CreateInstruction(ctx context.Context, d InstructionDraft) (*model.Instruction, error)

	Admins(ctx context.Context) ([]model.Admin, error)
	AddAdmin(ctx context.Context, d AdminDraft) (*model.Admin, error)
	DeleteAdmin(ctx context.Context, email string) error
	CheckAdmin(ctx context.Context, email string) (bool, error)
}

type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// ProblemDraft — форма создания заявки. CreatedBy проставляет машина из сессии.
type ProblemDraft struct {
	Title       string
	Description string
	Category    model.ProblemCategory
	Attachments []string
	CreatedBy   string
}

func (d ProblemDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError("title is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		return ValidationError("description is required")
	}
	if !d.Category.Valid() {
		return ValidationError("unknown category")
	}
	return nil
}

// InstructionDraft — форма решения. ProblemID и CreatedBy проставляет машина.
type InstructionDraft struct {
	ProblemID       string
	InstructionText string
	Images          []string
	CreatedBy       string
}

func (d InstructionDraft) Validate() error {
	if strings.TrimSpace(d.InstructionText) == "" {
		return ValidationError("instruction text is required")
	}
	return nil
}

type AdminDraft struct {
	Email   string
	Name    string
	AddedBy string
}

func (d AdminDraft) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return ValidationError("email is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError("name is required")
	}
	return nil
}
