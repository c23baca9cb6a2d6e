package flow

import (
	"strings"

	"github.com/it-helpdesk/helpdesk-service/internal/model"
)

// Criteria — критерии отображения списка заявок. Status/Category/Search
// уходят в запрос к бэкенду; Apply повторяет те же условия на клиенте и
// добавляет ограничение очереди администратора.
type Criteria struct {
	Status   model.ProblemStatus
	Category model.ProblemCategory
	Search   string

	// Queue — режим очереди администратора: решённые заявки скрыты всегда.
	Queue bool
}

// Matches проверяет одну заявку против критериев.
func (c Criteria) Matches(p model.Problem) bool {
	if c.Status != "" && p.Status != c.Status {
		return false
	}
	if c.Category != "" && p.Category != c.Category {
		return false
	}
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if c.Queue && p.Status == model.ProblemStatusResolved {
		return false
	}
	return true
}

// Apply фильтрует список, сохраняя порядок бэкенда.
func (c Criteria) Apply(items []model.Problem) []model.Problem {
	out := make([]model.Problem, 0, len(items))
	for _, p := range items {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
