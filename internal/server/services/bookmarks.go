package services

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/linkmark/internal/common"
	"github.com/dmitrijs2005/linkmark/internal/dbx"
	"github.com/dmitrijs2005/linkmark/internal/logging"
	"github.com/dmitrijs2005/linkmark/internal/server/models"
	"github.com/dmitrijs2005/linkmark/internal/server/repositories/repomanager"
)

// User-facing bookmark outcomes.
var (
	ErrInvalidBookmark  = errors.New("Invalid bookmark data.")
	ErrBookmarkNotFound = errors.New("Bookmark not found.")
	ErrBookmarkCreate   = errors.New("Failed to create bookmark.")
	ErrBookmarkInternal = errors.New("Internal server error.")
)

// BookmarkInput is the create form payload.
type BookmarkInput struct {
	Title       string
	URL         string
	Description string
	Tags        []string
}

// BookmarkEdit is a partial update; nil fields are left unchanged.
type BookmarkEdit struct {
	Title       *string
	URL         *string
	Description *string
	Tags        []string
}

// BookmarkService implements user-scoped bookmark CRUD on top of the
// bookmarks repository. Callers resolve the user first; every method takes
// the authenticated user's id.
type BookmarkService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewBookmarkService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *BookmarkService {
	return &BookmarkService{
		db:     db,
		repos:  repos,
		logger: logger.With("module", "bookmark_service"),
	}
}

// Create validates and stores a new bookmark for the user.
func (s *BookmarkService) Create(ctx context.Context, userID string, in BookmarkInput) (*models.Bookmark, error) {
	in, ok := validateBookmark(in)
	if !ok {
		return nil, ErrInvalidBookmark
	}

	b, err := s.repos.Bookmarks(s.db).Create(ctx, &models.Bookmark{
		UserID:      userID,
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
		Tags:        in.Tags,
	})
	if err != nil {
		s.logger.Error(ctx, "bookmark creation failed", "error", err.Error())
		return nil, ErrBookmarkCreate
	}
	return b, nil
}

// Get returns one of the user's bookmarks.
func (s *BookmarkService) Get(ctx context.Context, userID, id string) (*models.Bookmark, error) {
	b, err := s.repos.Bookmarks(s.db).GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.mapLookupError(ctx, err)
	}
	return b, nil
}

// List returns the user's active or archived bookmarks.
func (s *BookmarkService) List(ctx context.Context, userID string, archived bool) ([]*models.Bookmark, error) {
	list, err := s.repos.Bookmarks(s.db).List(ctx, userID, archived)
	if err != nil {
		s.logger.Error(ctx, "bookmark list failed", "error", err.Error())
		return nil, ErrBookmarkInternal
	}
	return list, nil
}

// Edit applies a partial update inside a transaction: the current row is read
// owner-checked, patched, and written back.
func (s *BookmarkService) Edit(ctx context.Context, userID, id string, edit BookmarkEdit) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Bookmarks(tx)

		b, err := repo.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		if edit.Title != nil {
			b.Title = *edit.Title
		}
		if edit.URL != nil {
			b.URL = *edit.URL
		}
		if edit.Description != nil {
			b.Description = *edit.Description
		}
		if edit.Tags != nil {
			b.Tags = edit.Tags
		}

		if _, ok := validateBookmark(BookmarkInput{
			Title:       b.Title,
			URL:         b.URL,
			Description: b.Description,
			Tags:        b.Tags,
		}); !ok {
			return ErrInvalidBookmark
		}

		return repo.Update(ctx, b)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidBookmark) {
			return ErrInvalidBookmark
		}
		return s.mapLookupError(ctx, err)
	}
	return nil
}

// Delete removes one of the user's bookmarks.
func (s *BookmarkService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repos.Bookmarks(s.db).Delete(ctx, userID, id); err != nil {
		return s.mapLookupError(ctx, err)
	}
	return nil
}

// SetPinned pins or unpins a bookmark.
func (s *BookmarkService) SetPinned(ctx context.Context, userID, id string, pinned bool) error {
	if err := s.repos.Bookmarks(s.db).SetPinned(ctx, userID, id, pinned); err != nil {
		return s.mapLookupError(ctx, err)
	}
	return nil
}

// SetArchived moves a bookmark into or out of the archive.
func (s *BookmarkService) SetArchived(ctx context.Context, userID, id string, archived bool) error {
	if err := s.repos.Bookmarks(s.db).SetArchived(ctx, userID, id, archived); err != nil {
		return s.mapLookupError(ctx, err)
	}
	return nil
}

// RecordVisit bumps the visit counter and stamps the visit time.
func (s *BookmarkService) RecordVisit(ctx context.Context, userID, id string) error {
	if err := s.repos.Bookmarks(s.db).RecordVisit(ctx, userID, id); err != nil {
		return s.mapLookupError(ctx, err)
	}
	return nil
}

func (s *BookmarkService) mapLookupError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return ErrBookmarkNotFound
	}
	s.logger.Error(ctx, "bookmark operation failed", "error", err.Error())
	return ErrBookmarkInternal
}

func validateBookmark(in BookmarkInput) (BookmarkInput, bool) {
	out := BookmarkInput{
		Title:       strings.TrimSpace(in.Title),
		URL:         strings.TrimSpace(in.URL),
		Description: strings.TrimSpace(in.Description),
	}
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out.Tags = append(out.Tags, tag)
		}
	}

	if out.Title == "" || out.Description == "" || len(out.Tags) == 0 {
		return out, false
	}

	u, err := url.Parse(out.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return out, false
	}
	return out, true
}
