package flow

import (
	"context"

	"github.com/it-helpdesk/helpdesk-service/internal/model"
)

// Screen — экран машины состояний.
type Screen int

const (
	Listing Screen = iota
	Creating
	ViewingDetail
	AdminQueue
	AddingInstruction
	ManagingAdmins
)

func (s Screen) String() string {
	switch s {
	case Listing:
		return "listing"
	case Creating:
		return "creating"
	case ViewingDetail:
		return "viewing_detail"
	case AdminQueue:
		return "admin_queue"
	case AddingInstruction:
		return "adding_instruction"
	case ManagingAdmins:
		return "managing_admins"
	}
	return "unknown"
}

// Machine держит список заявок, критерии, выбранную заявку и текущий экран;
// все переходы идут через его методы. Переход, не прошедший guard, — no-op:
// состояние не меняется и ошибки нет (интерфейс такие действия не
// показывает). Ошибки удалённых вызовов остаются в Notice, состояние не
// меняется, ничего не повторяется автоматически.
//
// Машина однопоточная: один потребитель, события обрабатываются по одному.
type Machine struct {
	session Session
	api     API

	screen      Screen
	criteria    Criteria
	problems    []model.Problem
	admins      []model.Admin
	selected    *model.Problem
	instruction *model.Instruction

	busy   bool
	notice string
}

func NewMachine(session Session, api API) *Machine {
	return &Machine{session: session, api: api, screen: Listing}
}

func (m *Machine) Session() Session { return m.session }

func (m *Machine) Screen() Screen { return m.screen }

func (m *Machine) Criteria() Criteria { return m.criteria }

func (m *Machine) Problems() []model.Problem { return m.problems }

func (m *Machine) Admins() []model.Admin { return m.admins }

func (m *Machine) Selected() *model.Problem { return m.selected }

func (m *Machine) Instruction() *model.Instruction { return m.instruction }

func (m *Machine) Notice() string { return m.notice }

// Refresh перечитывает список заявок по текущим критериям. Фильтры уходят
// в запрос; Apply дублирует их на полученном списке и скрывает решённые
// заявки в режиме очереди.
func (m *Machine) Refresh(ctx context.Context) error {
	items, err := m.api.Problems(ctx, m.criteria)
	if err != nil {
		m.notice = "failed to load problems"
		return err
	}
	m.problems = m.criteria.Apply(items)
	return nil
}

// SetCriteria меняет фильтры списка и перечитывает его. Режим очереди
// задаётся переходами, не фильтрами.
func (m *Machine) SetCriteria(ctx context.Context, c Criteria) error {
	if m.screen != Listing && m.screen != AdminQueue {
		return nil
	}
	c.Queue = m.criteria.Queue
	m.criteria = c
	m.notice = ""
	return m.Refresh(ctx)
}

// OpenCreate: Listing -> Creating, любой участник.
func (m *Machine) OpenCreate() {
	if m.screen != Listing {
		return
	}
	m.notice = ""
	m.screen = Creating
}

// Select: Listing -> ViewingDetail. Для решённой заявки подтягивает
// инструкцию; её отсутствие — не ошибка, просто "ещё нет".
func (m *Machine) Select(ctx context.Context, id string) error {
	if m.screen != Listing || !m.session.Role.Can(ActionViewDetail) {
		return nil
	}
	p := m.findProblem(id)
	if p == nil {
		return nil
	}
	m.notice = ""
	m.instruction = nil
	if CanViewInstruction(p.Status) {
		ins, err := m.api.Instruction(ctx, p.ID)
		if err != nil {
			m.notice = "failed to load instruction"
			return err
		}
		m.instruction = ins
	}
	m.selected = p
	m.screen = ViewingDetail
	return nil
}

// OpenAdminQueue: Listing -> AdminQueue, только админ. Решённые заявки в
// очереди не показываются никогда.
func (m *Machine) OpenAdminQueue(ctx context.Context) error {
	if m.screen != Listing || !m.session.Role.Can(ActionOpenAdminQueue) {
		return nil
	}
	m.notice = ""
	m.criteria.Queue = true
	if err := m.Refresh(ctx); err != nil {
		m.criteria.Queue = false
		return err
	}
	m.screen = AdminQueue
	return nil
}

// OpenManageAdmins: Listing -> ManagingAdmins, только админ.
func (m *Machine) OpenManageAdmins(ctx context.Context) error {
	if m.screen != Listing || !m.session.Role.Can(ActionManageAdmins) {
		return nil
	}
	admins, err := m.api.Admins(ctx)
	if err != nil {
		m.notice = "failed to load admins"
		return err
	}
	m.notice = ""
	m.admins = admins
	m.screen = ManagingAdmins
	return nil
}

// PickForInstruction: AdminQueue -> AddingInstruction для нерешённой заявки.
func (m *Machine) PickForInstruction(id string) {
	if m.screen != AdminQueue {
		return
	}
	p := m.findProblem(id)
	if p == nil || !CanCreateInstruction(m.session.Role, p.Status) {
		return
	}
	m.notice = ""
	m.selected = p
	m.screen = AddingInstruction
}

// SubmitProblem: Creating -> Listing при успехе. Пустые поля не доходят до
// бэкенда; при ошибке вызова экран не меняется.
func (m *Machine) SubmitProblem(ctx context.Context, d ProblemDraft) error {
	if m.screen != Creating || !m.session.Role.Can(ActionCreateProblem) {
		return nil
	}
	if m.busy {
		return nil
	}
	if err := d.Validate(); err != nil {
		m.notice = err.Error()
		return err
	}
	m.busy = true
	defer func() { m.busy = false }()

	d.CreatedBy = m.session.Email
	if _, err := m.api.CreateProblem(ctx, d); err != nil {
		m.notice = "failed to create problem"
		return err
	}
	m.notice = ""
	m.screen = Listing
	return m.Refresh(ctx)
}

// SubmitInstruction: AddingInstruction -> AdminQueue при успехе.
func (m *Machine) SubmitInstruction(ctx context.Context, d InstructionDraft) error {
	if m.screen != AddingInstruction || m.selected == nil {
		return nil
	}
	if !CanCreateInstruction(m.session.Role, m.selected.Status) {
		return nil
	}
	if m.busy {
		return nil
	}
	if err := d.Validate(); err != nil {
		m.notice = err.Error()
		return err
	}
	m.busy = true
	defer func() { m.busy = false }()

	d.ProblemID = m.selected.ID
	d.CreatedBy = m.session.Email
	if _, err := m.api.CreateInstruction(ctx, d); err != nil {
		m.notice = "failed to create instruction"
		return err
	}
	m.notice = ""
	m.selected = nil
	m.screen = AdminQueue
	return m.Refresh(ctx)
}

// DeleteSelected: ViewingDetail -> Listing при успехе.
func (m *Machine) DeleteSelected(ctx context.Context) error {
	if m.screen != ViewingDetail || m.selected == nil {
		return nil
	}
	if !m.session.Role.Can(ActionDeleteProblem) {
		return nil
	}
	if m.busy {
		return nil
	}
	m.busy = true
	defer func() { m.busy = false }()

	if err := m.api.DeleteProblem(ctx, m.selected.ID); err != nil {
		m.notice = "failed to delete problem"
		return err
	}
	m.notice = ""
	m.selected = nil
	m.instruction = nil
	m.screen = Listing
	return m.Refresh(ctx)
}

// AddAdmin остаётся на ManagingAdmins; конфликт (дубликат) — уведомление,
// ростер не меняется.
func (m *Machine) AddAdmin(ctx context.Context, d AdminDraft) error {
	if m.screen != ManagingAdmins || !m.session.Role.Can(ActionManageAdmins) {
		return nil
	}
	if m.busy {
		return nil
	}
	if err := d.Validate(); err != nil {
		m.notice = err.Error()
		return err
	}
	m.busy = true
	defer func() { m.busy = false }()

	d.AddedBy = m.session.Email
	if _, err := m.api.AddAdmin(ctx, d); err != nil {
		m.notice = "failed to add admin"
		return err
	}
	m.notice = ""
	return m.refreshAdmins(ctx)
}

// RemoveAdmin остаётся на ManagingAdmins; удаление последнего админа
// отклоняется бэкендом — ростер никогда не пустеет.
func (m *Machine) RemoveAdmin(ctx context.Context, email string) error {
	if m.screen != ManagingAdmins || !m.session.Role.Can(ActionManageAdmins) {
		return nil
	}
	if m.busy {
		return nil
	}
	m.busy = true
	defer func() { m.busy = false }()

	if err := m.api.DeleteAdmin(ctx, email); err != nil {
		m.notice = "failed to delete admin"
		return err
	}
	m.notice = ""
	return m.refreshAdmins(ctx)
}

// Cancel закрывает форму без отправки.
func (m *Machine) Cancel() {
	switch m.screen {
	case Creating:
		m.screen = Listing
	case AddingInstruction:
		m.selected = nil
		m.screen = AdminQueue
	}
	m.notice = ""
}

// Back возвращается к списку.
func (m *Machine) Back(ctx context.Context) error {
	switch m.screen {
	case ViewingDetail:
		m.selected = nil
		m.instruction = nil
		m.screen = Listing
		return m.Refresh(ctx)
	case AdminQueue:
		m.criteria.Queue = false
		m.screen = Listing
		return m.Refresh(ctx)
	case ManagingAdmins:
		m.screen = Listing
		return m.Refresh(ctx)
	}
	return nil
}

func (m *Machine) findProblem(id string) *model.Problem {
	for i := range m.problems {
		if m.problems[i].ID == id {
			return &m.problems[i]
		}
	}
	return nil
}

func (m *Machine) refreshAdmins(ctx context.Context) error {
	admins, err := m.api.Admins(ctx)
	if err != nil {
		m.notice = "failed to load admins"
		return err
	}
	m.admins = admins
	return nil
}
