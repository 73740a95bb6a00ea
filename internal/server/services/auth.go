// Package services contains server-side business logic. This file implements
// AuthService, the single boundary between credential/session plumbing and
// callers: it validates form input, drives the hasher and the session
// manager, and converts every failure into one of the documented user-facing
// outcomes. Nothing below this layer produces user-visible messages.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/linkmark/internal/common"
	"github.com/dmitrijs2005/linkmark/internal/logging"
	"github.com/dmitrijs2005/linkmark/internal/server/auth"
	"github.com/dmitrijs2005/linkmark/internal/server/models"
	"github.com/dmitrijs2005/linkmark/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/linkmark/internal/server/session"
)

// User-facing auth outcomes. The exact strings are a fixed contract with the
// UI; sign-in failures deliberately never distinguish an unknown email from a
// wrong password, while sign-up may reveal that an email is taken.
var (
	ErrInvalidForm        = errors.New("Invalid form data.")
	ErrEmailTaken         = errors.New("Email is already registered.")
	ErrInvalidCredentials = errors.New("Invalid credentials.")
	ErrCreateFailed       = errors.New("Failed to create user.")
	ErrSignUpInternal     = errors.New("Internal server error during sign-up.")
	ErrSignInInternal     = errors.New("Internal server error during sign-in.")

	// ErrRedirectToSignIn is a control-transfer sentinel: the HTTP boundary
	// converts it into a redirect to the sign-in page and nothing else ever
	// inspects it.
	ErrRedirectToSignIn = errors.New("redirect to sign-in")
)

// SignInRoute is where ErrRedirectToSignIn sends the client.
const SignInRoute = "/sign-in"

// AuthService implements sign-up, sign-in, log-out, and current-user
// resolution over an injected user store and session manager.
type AuthService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	sessions *session.Manager
	logger   logging.Logger
}

func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, sessions *session.Manager, logger logging.Logger) *AuthService {
	return &AuthService{
		db:       db,
		repos:    repos,
		sessions: sessions,
		logger:   logger.With("module", "auth_service"),
	}
}

// SignUp validates the form, creates the user record, and establishes a
// session. A created-but-sessionless user is acceptable on late failure:
// signing in afterwards succeeds against the stored credentials.
func (s *AuthService) SignUp(ctx context.Context, in auth.SignUpInput, w session.CookieWriter) error {
	in, ok := auth.ValidateSignUp(in)
	if !ok {
		return ErrInvalidForm
	}

	repo := s.repos.Users(s.db)

	_, err := repo.GetByEmail(ctx, in.Email)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "sign-up email lookup failed", "error", err.Error())
		return ErrSignUpInternal
	}

	salt, err := auth.GenerateSalt()
	if err != nil {
		s.logger.Error(ctx, "salt generation failed", "error", err.Error())
		return ErrSignUpInternal
	}
	hash, err := auth.HashPassword(in.Password, salt)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err.Error())
		return ErrSignUpInternal
	}

	user, err := repo.Create(ctx, &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Salt:         salt,
	})
	if err != nil {
		// two sign-ups racing on one email: the store's unique constraint
		// turns the loser into the same already-registered outcome
		if errors.Is(err, common.ErrorConflict) {
			return ErrEmailTaken
		}
		s.logger.Error(ctx, "user creation failed", "error", err.Error())
		return ErrSignUpInternal
	}
	if user == nil {
		return ErrCreateFailed
	}

	if err := s.sessions.Create(ctx, user.ID, w); err != nil {
		s.logger.Error(ctx, "session creation failed", "error", err.Error())
		return ErrSignUpInternal
	}

	s.logger.Info(ctx, "user signed up", "user_id", user.ID)
	return nil
}

// SignIn verifies credentials and establishes a session.
func (s *AuthService) SignIn(ctx context.Context, in auth.SignInInput, w session.CookieWriter) error {
	in, ok := auth.ValidateSignIn(in)
	if !ok {
		return ErrInvalidForm
	}

	user, err := s.repos.Users(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrInvalidCredentials
		}
		s.logger.Error(ctx, "sign-in lookup failed", "error", err.Error())
		return ErrSignInInternal
	}

	match, err := auth.ComparePassword(in.Password, user.Salt, user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "password comparison failed", "error", err.Error())
		return ErrSignInInternal
	}
	if !match {
		return ErrInvalidCredentials
	}

	if err := s.sessions.Create(ctx, user.ID, w); err != nil {
		s.logger.Error(ctx, "session creation failed", "error", err.Error())
		return ErrSignInInternal
	}

	s.logger.Info(ctx, "user signed in", "user_id", user.ID)
	return nil
}

// LogOut revokes the current session. It always succeeds from the caller's
// perspective, active session or not.
func (s *AuthService) LogOut(ctx context.Context, rd session.CookieReadDeleter) {
	if err := s.sessions.Remove(ctx, rd); err != nil {
		s.logger.Error(ctx, "session removal failed", "error", err.Error())
	}
}

// CurrentUserOptions controls CurrentUser behavior. Redirect turns the
// unauthenticated outcome into ErrRedirectToSignIn; UserData additionally
// loads the sanitized user record.
type CurrentUserOptions struct {
	Redirect bool
	UserData bool
}

// CurrentUser is the resolved identity of the request. User is populated only
// when UserData was requested and never carries PasswordHash or Salt.
type CurrentUser struct {
	UserID string
	User   *models.User
}

// CurrentUser resolves the user behind the request's session cookie. The
// unauthenticated outcome is (nil, nil), or ErrRedirectToSignIn when
// opts.Redirect is set. Every internal failure is logged and then treated
// exactly like "no session" — this path fails closed and never surfaces a raw
// error.
//
// Results are memoized per request (see WithCurrentUserCache): page rendering
// calls this from several independent places and only the first call per
// options does any store work.
func (s *AuthService) CurrentUser(ctx context.Context, r session.CookieReader, opts CurrentUserOptions) (*CurrentUser, error) {
	cache := currentUserCacheFrom(ctx)
	if cache != nil {
		if entry, ok := cache.lookup(opts); ok {
			return entry.result, entry.err
		}
	}

	result, err := s.resolveCurrentUser(ctx, r, opts)

	if cache != nil {
		cache.store(opts, result, err)
	}
	return result, err
}

func (s *AuthService) resolveCurrentUser(ctx context.Context, r session.CookieReader, opts CurrentUserOptions) (*CurrentUser, error) {
	userID, err := s.sessions.UserID(ctx, r)
	if err != nil {
		s.logger.Error(ctx, "session lookup failed", "error", err.Error())
		return s.unauthenticated(opts)
	}
	if userID == "" {
		return s.unauthenticated(opts)
	}

	if !opts.UserData {
		return &CurrentUser{UserID: userID}, nil
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		// a session can outlive its user; treat exactly like no session
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "current user lookup failed", "error", err.Error())
		}
		return s.unauthenticated(opts)
	}

	return &CurrentUser{UserID: userID, User: user}, nil
}

func (s *AuthService) unauthenticated(opts CurrentUserOptions) (*CurrentUser, error) {
	if opts.Redirect {
		return nil, ErrRedirectToSignIn
	}
	return nil, nil
}
