package flow

import "context"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Session — участник, определённый один раз при старте; дальше read-only.
type Session struct {
	Email string
	Name  string
	Role  Role
}

// ResolveSession определяет роль через check-admin. Недоступность бэкенда
// деградирует в обычного пользователя, а не блокирует приложение.
func ResolveSession(ctx context.Context, api API, email, name string) Session {
	s := Session{Email: email, Name: name, Role: RoleUser}
	isAdmin, err := api.CheckAdmin(ctx, email)
	if err != nil {
		return s
	}
	if isAdmin {
		s.Role = RoleAdmin
	}
	return s
}
