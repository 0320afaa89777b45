package port

import (
	"context"

	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
)

// IdentityProvider surfaces the authenticated caller. Permission
// computation belongs to the identity collaborator; the workflow engine
// only gates operations on the result.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*entity.User, error)
	HasPermission(u *entity.User, permission string) bool
}
