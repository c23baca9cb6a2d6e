package flow

import "github.com/it-helpdesk/helpdesk-service/internal/model"

// Action — действие, доступность которого решается capability-таблицей,
// а не разрозненными if-ами по ролям.
type Action int

const (
	ActionCreateProblem Action = iota
	ActionViewDetail
	ActionDeleteProblem
	ActionOpenAdminQueue
	ActionCreateInstruction
	ActionManageAdmins
)

var capabilities = map[Role]map[Action]bool{
	RoleUser: {
		ActionCreateProblem: true,
		ActionViewDetail:    true,
		ActionDeleteProblem: true,
	},
	RoleAdmin: {
		ActionCreateProblem:     true,
		ActionViewDetail:        true,
		ActionDeleteProblem:     true,
		ActionOpenAdminQueue:    true,
		ActionCreateInstruction: true,
		ActionManageAdmins:      true,
	},
}

func (r Role) Can(a Action) bool {
	return capabilities[r][a]
}

// CanCreateInstruction: инструкция добавляется только к нерешённой заявке.
func CanCreateInstruction(r Role, status model.ProblemStatus) bool {
	return r.Can(ActionCreateInstruction) && status != model.ProblemStatusResolved
}

// CanViewInstruction: инструкция существует только у решённой заявки.
func CanViewInstruction(status model.ProblemStatus) bool {
	return status == model.ProblemStatusResolved
}
