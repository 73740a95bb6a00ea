// Package httpapi exposes the application over HTTP using fiber. Handlers
// translate requests into service calls; the central error handler maps the
// services' user-facing errors to status codes, so handlers just return them.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/linkmark/internal/logging"
	"github.com/dmitrijs2005/linkmark/internal/server/auth"
	"github.com/dmitrijs2005/linkmark/internal/server/models"
	"github.com/dmitrijs2005/linkmark/internal/server/services"
	"github.com/dmitrijs2005/linkmark/internal/server/session"
)

const shutdownTimeout = 5 * time.Second

// AuthProvider is the slice of the auth service the HTTP layer needs.
type AuthProvider interface {
	SignUp(ctx context.Context, in auth.SignUpInput, w session.CookieWriter) error
	SignIn(ctx context.Context, in auth.SignInInput, w session.CookieWriter) error
	LogOut(ctx context.Context, rd session.CookieReadDeleter)
	CurrentUser(ctx context.Context, r session.CookieReader, opts services.CurrentUserOptions) (*services.CurrentUser, error)
}

// BookmarkProvider is the slice of the bookmark service the HTTP layer needs.
type BookmarkProvider interface {
	Create(ctx context.Context, userID string, in services.BookmarkInput) (*models.Bookmark, error)
	Get(ctx context.Context, userID, id string) (*models.Bookmark, error)
	List(ctx context.Context, userID string, archived bool) ([]*models.Bookmark, error)
	Edit(ctx context.Context, userID, id string, edit services.BookmarkEdit) error
	Delete(ctx context.Context, userID, id string) error
	SetPinned(ctx context.Context, userID, id string, pinned bool) error
	SetArchived(ctx context.Context, userID, id string, archived bool) error
	RecordVisit(ctx context.Context, userID, id string) error
}

type Server struct {
	addr      string
	app       *fiber.App
	auth      AuthProvider
	bookmarks BookmarkProvider
	logger    logging.Logger
}

func NewServer(addr string, authSvc AuthProvider, bookmarkSvc BookmarkProvider, logger logging.Logger) *Server {
	s := &Server{
		addr:      addr,
		auth:      authSvc,
		bookmarks: bookmarkSvc,
		logger:    logger.With("module", "httpapi"),
	}
	s.app = fiber.New(fiber.Config{
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(requestCache())

	s.app.Get("/", s.home)
	s.app.Get(services.SignInRoute, s.signInPage)

	api := s.app.Group("/api")
	api.Post("/auth/sign-up", s.signUp)
	api.Post("/auth/sign-in", s.signIn)
	api.Post("/auth/log-out", s.logOut)
	api.Get("/me", s.me)

	bm := api.Group("/bookmarks", s.requireUser)
	bm.Get("/", s.listBookmarks)
	bm.Post("/", s.createBookmark)
	bm.Get("/:id", s.getBookmark)
	bm.Patch("/:id", s.editBookmark)
	bm.Delete("/:id", s.deleteBookmark)
	bm.Post("/:id/pin", s.pinBookmark)
	bm.Post("/:id/archive", s.archiveBookmark)
	bm.Post("/:id/visit", s.visitBookmark)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "http server shutting down")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

// App exposes the fiber application for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrRedirectToSignIn):
		return c.Redirect(services.SignInRoute, fiber.StatusSeeOther)

	case errors.Is(err, services.ErrInvalidForm),
		errors.Is(err, services.ErrInvalidBookmark):
		return writeError(c, fiber.StatusBadRequest, err)

	case errors.Is(err, services.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, err)

	case errors.Is(err, services.ErrEmailTaken):
		return writeError(c, fiber.StatusConflict, err)

	case errors.Is(err, services.ErrBookmarkNotFound):
		return writeError(c, fiber.StatusNotFound, err)

	case errors.Is(err, services.ErrCreateFailed),
		errors.Is(err, services.ErrSignUpInternal),
		errors.Is(err, services.ErrSignInInternal),
		errors.Is(err, services.ErrBookmarkCreate),
		errors.Is(err, services.ErrBookmarkInternal):
		return writeError(c, fiber.StatusInternalServerError, err)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return writeError(c, fiberErr.Code, fiberErr)
	}

	s.logger.Error(c.UserContext(), "unhandled request error", "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error."})
}

func writeError(c *fiber.Ctx, code int, err error) error {
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
