package auth

import "context"

type contextKey struct{}

const (
	RoleKantin     = "kantin"
	RoleSuperAdmin = "super-admin"
)

// Session is the authenticated identity attached to a request.
type Session struct {
	Role       string
	KantinID   string
	KantinName string
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// KantinID returns the authenticated vendor's id, empty for anonymous or
// super-admin requests.
func KantinID(ctx context.Context) string {
	s, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return s.KantinID
}

func IsKantin(ctx context.Context) bool {
	s, ok := FromContext(ctx)
	return ok && s.Role == RoleKantin
}

func IsSuperAdmin(ctx context.Context) bool {
	s, ok := FromContext(ctx)
	return ok && s.Role == RoleSuperAdmin
}
