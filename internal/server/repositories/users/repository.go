package users

import (
	"context"

	"github.com/dmitrijs2005/linkmark/internal/server/models"
)

// Repository is the user-record store the auth service depends on. Email
// uniqueness is enforced at this level by the backing store.
type Repository interface {
	// Create inserts the record and returns it with ID and CreatedAt filled in.
	// A duplicate email yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the credential fields (id, salt, password hash) for
	// the given normalized email, or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the sanitized record (no salt, no password hash), or
	// common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
