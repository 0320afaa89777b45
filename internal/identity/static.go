// Package identity resolves the authenticated caller. The static
// provider reads its user directory from configuration; swapping in a
// real directory (LDAP, SSO) only means implementing port.IdentityProvider.
package identity

import (
	"context"
	"errors"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

// ErrUnauthenticated is returned when no caller identity is attached to
// the context. The HTTP layer maps it to 401.
var ErrUnauthenticated = errors.New("no authenticated user in context")

type contextKey string

const userKey contextKey = "user_id"

// WithUserID attaches the caller's user id to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserIDFromContext extracts the caller's user id from the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey).(string)
	return id, ok && id != ""
}

// StaticProvider implements port.IdentityProvider from a fixed user
// directory.
type StaticProvider struct {
	users map[string]*entity.User
}

// NewStaticProvider creates a provider over the given users.
func NewStaticProvider(users []entity.User) *StaticProvider {
	index := make(map[string]*entity.User, len(users))
	for i := range users {
		u := users[i]
		index[u.ID] = &u
	}
	return &StaticProvider{users: index}
}

// CurrentUser resolves the caller from the context.
func (p *StaticProvider) CurrentUser(ctx context.Context) (*entity.User, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	u, ok := p.users[id]
	if !ok {
		return nil, errs.NewNotFound("user", id)
	}
	clone := *u
	clone.Permissions = append([]string(nil), u.Permissions...)
	return &clone, nil
}

// HasPermission reports whether the user carries the given permission.
func (p *StaticProvider) HasPermission(u *entity.User, permission string) bool {
	return u != nil && u.HasPermission(permission)
}

// Verify interface compliance
var _ port.IdentityProvider = (*StaticProvider)(nil)
