package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/flow"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
)

// fakeAPI implements flow.API in memory with the same lifecycle rules as
// the backend: creating an instruction resolves the problem, deleting a
// problem removes its instruction, the admin roster never empties.
type fakeAPI struct {
	problems     []model.Problem
	instructions map[string]model.Instruction
	admins       []model.Admin

	failNext error
	nextID   int

	createProblemCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{instructions: make(map[string]model.Instruction)}
}

func (f *fakeAPI) id() string {
	f.nextID++
	return string(rune('a' + f.nextID - 1))
}

func (f *fakeAPI) fail() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeAPI) Problems(ctx context.Context, c flow.Criteria) ([]model.Problem, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return c.Apply(f.problems), nil
}

func (f *fakeAPI) CreateProblem(ctx context.Context, d flow.ProblemDraft) (*model.Problem, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	f.createProblemCalls++
	p := model.Problem{
		ID:          f.id(),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Status:      model.ProblemStatusNew,
		CreatedBy:   d.CreatedBy,
	}
	f.problems = append(f.problems, p)
	return &p, nil
}

func (f *fakeAPI) DeleteProblem(ctx context.Context, id string) error {
	if err := f.fail(); err != nil {
		return err
	}
	for i := range f.problems {
		if f.problems[i].ID == id {
			f.problems = append(f.problems[:i], f.problems[i+1:]...)
			delete(f.instructions, id)
			return nil
		}
	}
	return errs.ErrProblemNotFound
}

func (f *fakeAPI) Instruction(ctx context.Context, problemID string) (*model.Instruction, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	if ins, ok := f.instructions[problemID]; ok {
		return &ins, nil
	}
	return nil, nil
}

func (f *fakeAPI) CreateInstruction(ctx context.Context, d flow.InstructionDraft) (*model.Instruction, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	if _, ok := f.instructions[d.ProblemID]; ok {
		return nil, errs.ErrInstructionExists
	}
	ins := model.Instruction{
		ID:              f.id(),
		ProblemID:       d.ProblemID,
		InstructionText: d.InstructionText,
		CreatedBy:       d.CreatedBy,
	}
	f.instructions[d.ProblemID] = ins
	for i := range f.problems {
		if f.problems[i].ID == d.ProblemID {
			f.problems[i].Status = model.ProblemStatusResolved
		}
	}
	return &ins, nil
}

func (f *fakeAPI) Admins(ctx context.Context) ([]model.Admin, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.admins, nil
}

func (f *fakeAPI) AddAdmin(ctx context.Context, d flow.AdminDraft) (*model.Admin, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	for _, a := range f.admins {
		if a.Email == d.Email {
			return nil, errs.ErrAdminExists
		}
	}
	a := model.Admin{ID: f.id(), Email: d.Email, Name: d.Name, AddedBy: d.AddedBy}
	f.admins = append(f.admins, a)
	return &a, nil
}

func (f *fakeAPI) DeleteAdmin(ctx context.Context, email string) error {
	if err := f.fail(); err != nil {
		return err
	}
	if len(f.admins) <= 1 {
		return errs.ErrLastAdmin
	}
	for i := range f.admins {
		if f.admins[i].Email == email {
			f.admins = append(f.admins[:i], f.admins[i+1:]...)
			return nil
		}
	}
	return errs.ErrAdminNotFound
}

func (f *fakeAPI) CheckAdmin(ctx context.Context, email string) (bool, error) {
	if err := f.fail(); err != nil {
		return false, err
	}
	for _, a := range f.admins {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func userSession() flow.Session {
	return flow.Session{Email: "user@example.com", Name: "user", Role: flow.RoleUser}
}

func adminSession() flow.Session {
	return flow.Session{Email: "admin@example.com", Name: "admin", Role: flow.RoleAdmin}
}

func TestSubmitProblemCreatesNewTicket(t *testing.T) {
	api := newFakeAPI()
	m := flow.NewMachine(userSession(), api)
	ctx := context.Background()

	m.OpenCreate()
	if m.Screen() != flow.Creating {
		t.Fatalf("expected Creating, got %s", m.Screen())
	}

	err := m.SubmitProblem(ctx, flow.ProblemDraft{
		Title:       "Printer jam",
		Description: "Tray 2 stuck",
		Category:    model.CategoryHardware,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if m.Screen() != flow.Listing {
		t.Fatalf("expected Listing after submit, got %s", m.Screen())
	}
	if len(m.Problems()) != 1 {
		t.Fatalf("expected 1 problem, got %d", len(m.Problems()))
	}
	p := m.Problems()[0]
	if p.Status != model.ProblemStatusNew {
		t.Fatalf("expected status new, got %q", p.Status)
	}
	if p.CreatedBy != "user@example.com" {
		t.Fatalf("expected created_by from session, got %q", p.CreatedBy)
	}
}

func TestSubmitProblemEmptyFieldsNeverReachBackend(t *testing.T) {
	api := newFakeAPI()
	m := flow.NewMachine(userSession(), api)
	ctx := context.Background()

	m.OpenCreate()
	for _, d := range []flow.ProblemDraft{
		{Title: "", Description: "desc", Category: model.CategoryOther},
		{Title: "title", Description: "", Category: model.CategoryOther},
		{Title: "   ", Description: "desc", Category: model.CategoryOther},
	} {
		err := m.SubmitProblem(ctx, d)
		var verr flow.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if m.Screen() != flow.Creating {
			t.Fatalf("expected to stay on Creating, got %s", m.Screen())
		}
	}
	if api.createProblemCalls != 0 {
		t.Fatalf("expected no backend calls, got %d", api.createProblemCalls)
	}
}

func TestSubmitProblemFailureStaysOnForm(t *testing.T) {
	api := newFakeAPI()
	m := flow.NewMachine(userSession(), api)
	ctx := context.Background()

	m.OpenCreate()
	api.failNext = errors.New("connection refused")
	err := m.SubmitProblem(ctx, flow.ProblemDraft{
		Title:       "No network",
		Description: "Cable unplugged",
		Category:    model.CategoryNetwork,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if m.Screen() != flow.Creating {
		t.Fatalf("expected to stay on Creating, got %s", m.Screen())
	}
	if m.Notice() == "" {
		t.Fatalf("expected a failure notice")
	}
}

func TestNonAdminCannotOpenAdminQueue(t *testing.T) {
	api := newFakeAPI()
	m := flow.NewMachine(userSession(), api)

	if err := m.OpenAdminQueue(context.Background()); err != nil {
		t.Fatalf("guard must be a no-op, got %v", err)
	}
	if m.Screen() != flow.Listing {
		t.Fatalf("expected to remain in Listing, got %s", m.Screen())
	}
}

func TestNonAdminCannotOpenManageAdmins(t *testing.T) {
	api := newFakeAPI()
	m := flow.NewMachine(userSession(), api)

	if err := m.OpenManageAdmins(context.Background()); err != nil {
		t.Fatalf("guard must be a no-op, got %v", err)
	}
	if m.Screen() != flow.Listing {
		t.Fatalf("expected to remain in Listing, got %s", m.Screen())
	}
}

func TestAdminQueueHidesResolvedProblems(t *testing.T) {
	api := newFakeAPI()
	api.problems = []model.Problem{
		{ID: "1", Title: "a", Status: model.ProblemStatusNew, Category: model.CategoryOther},
		{ID: "2", Title: "b", Status: model.ProblemStatusResolved, Category: model.CategoryOther},
		{ID: "3", Title: "c", Status: model.ProblemStatusInProgress, Category: model.CategoryOther},
	}
	m := flow.NewMachine(adminSession(), api)
	ctx := context.Background()

	if err := m.OpenAdminQueue(ctx); err != nil {
		t.Fatalf("open queue: %v", err)
	}
	if m.Screen() != flow.AdminQueue {
		t.Fatalf("expected AdminQueue, got %s", m.Screen())
	}
	for _, p := range m.Problems() {
		if p.Status == model.ProblemStatusResolved {
			t.Fatalf("resolved problem %s visible in admin queue", p.ID)
		}
	}
	if len(m.Problems()) != 2 {
		t.Fatalf("expected 2 problems in queue, got %d", len(m.Problems()))
	}
}

func TestInstructionResolvesProblem(t *testing.T) {
	api := newFakeAPI()
	api.problems = []model.Problem{
		{ID: "T", Title: "Printer jam", Description: "Tray 2 stuck", Status: model.ProblemStatusNew, Category: model.CategoryHardware},
	}
	m := flow.NewMachine(adminSession(), api)
	ctx := context.Background()

	if err := m.OpenAdminQueue(ctx); err != nil {
		t.Fatalf("open queue: %v", err)
	}
	m.PickForInstruction("T")
	if m.Screen() != flow.AddingInstruction {
		t.Fatalf("expected AddingInstruction, got %s", m.Screen())
	}

	err := m.SubmitInstruction(ctx, flow.InstructionDraft{InstructionText: "Reseat tray"})
	if err != nil {
		t.Fatalf("submit instruction: %v", err)
	}
	if m.Screen() != flow.AdminQueue {
		t.Fatalf("expected AdminQueue after submit, got %s", m.Screen())
	}

	// The queue no longer shows the resolved ticket.
	if len(m.Problems()) != 0 {
		t.Fatalf("expected empty queue, got %d", len(m.Problems()))
	}

	ins, err := api.Instruction(ctx, "T")
	if err != nil || ins == nil {
		t.Fatalf("expected stored instruction, got %v, %v", ins, err)
	}
	if ins.InstructionText != "Reseat tray" {
		t.Fatalf("expected instruction text round-trip, got %q", ins.InstructionText)
	}
	if ins.CreatedBy != "admin@example.com" {
		t.Fatalf("expected created_by from session, got %q", ins.CreatedBy)
	}
	if api.problems[0].Status != model.ProblemStatusResolved {
		t.Fatalf("expected problem resolved, got %q", api.problems[0].Status)
	}
}

func TestPickForInstructionSkipsResolved(t *testing.T) {
	api := newFakeAPI()
	api.problems = []model.Problem{
		{ID: "R", Status: model.ProblemStatusResolved, Category: model.CategoryOther},
	}
	m := flow.NewMachine(adminSession(), api)
	ctx := context.Background()

	if err := m.OpenAdminQueue(ctx); err != nil {
		t.Fatalf("open queue: %v", err)
	}
	m.PickForInstruction("R")
	if m.Screen() != flow.AdminQueue {
		t.Fatalf("expected to remain in AdminQueue, got %s", m.Screen())
	}
}

func TestSelectLoadsInstructionForResolvedProblem(t *testing.T) {
	api := newFakeAPI()
	api.problems = []model.Problem{
		{ID: "T", Title: "x", Status: model.ProblemStatusResolved, Category: model.CategoryOther},
	}
	api.instructions["T"] = model.Instruction{ID: "i", ProblemID: "T", InstructionText: "done"}
	m := flow.NewMachine(userSession(), api)
	ctx := context.Background()

	if err := m.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := m.Select(ctx, "T"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if m.Screen() != flow.ViewingDetail {
		t.Fatalf("expected ViewingDetail, got %s", m.Screen())
	}
	if m.Instruction() == nil || m.Instruction().InstructionText != "done" {
		t.Fatalf("expected instruction to be loaded, got %+v", m.Instruction())
	}
}

func TestSelectUnresolvedProblemHasNoInstruction(t *testing.T) {
	api := newFakeAPI()
	api.problems = []model.Problem{
		{ID: "T", Title: "x", Status: model.ProblemStatusNew, Category: model.CategoryOther},
	}
	m := flow.NewMachine(userSession(), api)
	ctx := context.Background()

	if err := m.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := m.Select(ctx, "T"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if m.Instruction() != nil {
		t.Fatalf("expected no instruction for unresolved problem")
	}
}

func TestDeleteSelectedReturnsToListing(t *testing.T) {
	api := newFakeAPI()
	api.problems = []model.Problem{
		{ID: "T", Title: "x", Status: model.ProblemStatusNew, Category: model.CategoryOther},
	}
	m := flow.NewMachine(adminSession(), api)
	ctx := context.Background()

	if err := m.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := m.Select(ctx, "T"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := m.DeleteSelected(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if m.Screen() != flow.Listing {
		t.Fatalf("expected Listing, got %s", m.Screen())
	}
	if len(api.problems) != 0 {
		t.Fatalf("expected problem deleted, got %d", len(api.problems))
	}
}

func TestLastAdminCannotBeRemoved(t *testing.T) {
	api := newFakeAPI()
	api.admins = []model.Admin{{ID: "1", Email: "admin@example.com", Name: "admin"}}
	m := flow.NewMachine(adminSession(), api)
	ctx := context.Background()

	if err := m.OpenManageAdmins(ctx); err != nil {
		t.Fatalf("open manage admins: %v", err)
	}
	err := m.RemoveAdmin(ctx, "admin@example.com")
	if !errors.Is(err, errs.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
	if m.Screen() != flow.ManagingAdmins {
		t.Fatalf("expected to stay on ManagingAdmins, got %s", m.Screen())
	}
	if len(api.admins) != 1 {
		t.Fatalf("roster must never reach 0, got %d", len(api.admins))
	}
	if m.Notice() == "" {
		t.Fatalf("expected a failure notice")
	}
}

func TestDuplicateAdminRejected(t *testing.T) {
	api := newFakeAPI()
	api.admins = []model.Admin{{ID: "1", Email: "admin@example.com", Name: "admin"}}
	m := flow.NewMachine(adminSession(), api)
	ctx := context.Background()

	if err := m.OpenManageAdmins(ctx); err != nil {
		t.Fatalf("open manage admins: %v", err)
	}
	err := m.AddAdmin(ctx, flow.AdminDraft{Email: "admin@example.com", Name: "again"})
	if !errors.Is(err, errs.ErrAdminExists) {
		t.Fatalf("expected ErrAdminExists, got %v", err)
	}
	if len(api.admins) != 1 {
		t.Fatalf("expected roster unchanged, got %d", len(api.admins))
	}
}

func TestCancelReturnsToOrigin(t *testing.T) {
	api := newFakeAPI()
	api.problems = []model.Problem{
		{ID: "T", Status: model.ProblemStatusNew, Category: model.CategoryOther},
	}
	m := flow.NewMachine(adminSession(), api)
	ctx := context.Background()

	m.OpenCreate()
	m.Cancel()
	if m.Screen() != flow.Listing {
		t.Fatalf("expected Listing after cancel, got %s", m.Screen())
	}

	if err := m.OpenAdminQueue(ctx); err != nil {
		t.Fatalf("open queue: %v", err)
	}
	m.PickForInstruction("T")
	m.Cancel()
	if m.Screen() != flow.AdminQueue {
		t.Fatalf("expected AdminQueue after cancel, got %s", m.Screen())
	}
}

func TestBackFromQueueClearsQueueCriteria(t *testing.T) {
	api := newFakeAPI()
	api.problems = []model.Problem{
		{ID: "R", Status: model.ProblemStatusResolved, Category: model.CategoryOther},
	}
	m := flow.NewMachine(adminSession(), api)
	ctx := context.Background()

	if err := m.OpenAdminQueue(ctx); err != nil {
		t.Fatalf("open queue: %v", err)
	}
	if len(m.Problems()) != 0 {
		t.Fatalf("expected empty queue")
	}
	if err := m.Back(ctx); err != nil {
		t.Fatalf("back: %v", err)
	}
	if m.Screen() != flow.Listing {
		t.Fatalf("expected Listing, got %s", m.Screen())
	}
	if len(m.Problems()) != 1 {
		t.Fatalf("expected resolved problem visible again, got %d", len(m.Problems()))
	}
}

func TestGuardedActionsAreNoOpsOutsideTheirScreen(t *testing.T) {
	api := newFakeAPI()
	m := flow.NewMachine(adminSession(), api)
	ctx := context.Background()

	// All of these fire from Listing, where they are not wired.
	if err := m.SubmitProblem(ctx, flow.ProblemDraft{Title: "t", Description: "d", Category: model.CategoryOther}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if err := m.SubmitInstruction(ctx, flow.InstructionDraft{InstructionText: "x"}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if err := m.DeleteSelected(ctx); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if err := m.AddAdmin(ctx, flow.AdminDraft{Email: "e@x", Name: "n"}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if m.Screen() != flow.Listing {
		t.Fatalf("expected to remain in Listing, got %s", m.Screen())
	}
	if api.createProblemCalls != 0 {
		t.Fatalf("expected no backend calls, got %d", api.createProblemCalls)
	}
}
