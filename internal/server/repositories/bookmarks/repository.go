package bookmarks

import (
	"context"

	"github.com/dmitrijs2005/linkmark/internal/server/models"
)

// Repository stores bookmarks. Every operation is scoped to the owning user;
// a bookmark belonging to someone else behaves like one that does not exist.
type Repository interface {
	Create(ctx context.Context, b *models.Bookmark) (*models.Bookmark, error)
	GetByID(ctx context.Context, userID, id string) (*models.Bookmark, error)
	Update(ctx context.Context, b *models.Bookmark) error
	Delete(ctx context.Context, userID, id string) error
	SetPinned(ctx context.Context, userID, id string, pinned bool) error
	SetArchived(ctx context.Context, userID, id string, archived bool) error
	RecordVisit(ctx context.Context, userID, id string) error

	// List returns the user's bookmarks in one archive bucket, pinned first,
	// newest first within each group.
	List(ctx context.Context, userID string, archived bool) ([]*models.Bookmark, error)
}
