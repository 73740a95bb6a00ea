package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/linkmark/internal/server/models"
	"github.com/dmitrijs2005/linkmark/internal/server/services"
)

type bookmarkRequest struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type bookmarkEditRequest struct {
	Title       *string  `json:"title"`
	URL         *string  `json:"url"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

type flagRequest struct {
	Value bool `json:"value"`
}

type bookmarkPayload struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Description   string     `json:"description"`
	Tags          []string   `json:"tags"`
	Pinned        bool       `json:"pinned"`
	IsArchived    bool       `json:"is_archived"`
	VisitCount    int64      `json:"visit_count"`
	LastVisitedAt *time.Time `json:"last_visited_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toBookmarkPayload(b *models.Bookmark) bookmarkPayload {
	return bookmarkPayload{
		ID:            b.ID,
		Title:         b.Title,
		URL:           b.URL,
		Description:   b.Description,
		Tags:          b.Tags,
		Pinned:        b.Pinned,
		IsArchived:    b.IsArchived,
		VisitCount:    b.VisitCount,
		LastVisitedAt: b.LastVisitedAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// bookmarkID validates the :id path segment. A malformed id can't match any
// row, so it gets the same not-found answer a missing row would.
func bookmarkID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", services.ErrBookmarkNotFound
	}
	return id, nil
}

func (s *Server) createBookmark(c *fiber.Ctx) error {
	var body bookmarkRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	b, err := s.bookmarks.Create(c.UserContext(), userID(c), services.BookmarkInput{
		Title:       body.Title,
		URL:         body.URL,
		Description: body.Description,
		Tags:        body.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toBookmarkPayload(b))
}

func (s *Server) getBookmark(c *fiber.Ctx) error {
	id, err := bookmarkID(c)
	if err != nil {
		return err
	}
	b, err := s.bookmarks.Get(c.UserContext(), userID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(toBookmarkPayload(b))
}

func (s *Server) listBookmarks(c *fiber.Ctx) error {
	list, err := s.bookmarks.List(c.UserContext(), userID(c), c.QueryBool("archived"))
	if err != nil {
		return err
	}

	payload := make([]bookmarkPayload, 0, len(list))
	for _, b := range list {
		payload = append(payload, toBookmarkPayload(b))
	}
	return c.JSON(payload)
}

func (s *Server) editBookmark(c *fiber.Ctx) error {
	id, err := bookmarkID(c)
	if err != nil {
		return err
	}

	var body bookmarkEditRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	edit := services.BookmarkEdit{
		Title:       body.Title,
		URL:         body.URL,
		Description: body.Description,
		Tags:        body.Tags,
	}
	if err := s.bookmarks.Edit(c.UserContext(), userID(c), id, edit); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) deleteBookmark(c *fiber.Ctx) error {
	id, err := bookmarkID(c)
	if err != nil {
		return err
	}
	if err := s.bookmarks.Delete(c.UserContext(), userID(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) pinBookmark(c *fiber.Ctx) error {
	id, err := bookmarkID(c)
	if err != nil {
		return err
	}

	var body flagRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := s.bookmarks.SetPinned(c.UserContext(), userID(c), id, body.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) archiveBookmark(c *fiber.Ctx) error {
	id, err := bookmarkID(c)
	if err != nil {
		return err
	}

	var body flagRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := s.bookmarks.SetArchived(c.UserContext(), userID(c), id, body.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) visitBookmark(c *fiber.Ctx) error {
	id, err := bookmarkID(c)
	if err != nil {
		return err
	}
	if err := s.bookmarks.RecordVisit(c.UserContext(), userID(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}
