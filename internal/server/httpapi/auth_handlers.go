package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/linkmark/internal/server/auth"
	"github.com/dmitrijs2005/linkmark/internal/server/services"
)

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type meResponse struct {
	UserID string       `json:"user_id"`
	User   *userPayload `json:"user,omitempty"`
}

func (s *Server) signUp(c *fiber.Ctx) error {
	var body signUpRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	in := auth.SignUpInput{Name: body.Name, Email: body.Email, Password: body.Password}
	if err := s.auth.SignUp(c.UserContext(), in, jar(c)); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

func (s *Server) signIn(c *fiber.Ctx) error {
	var body signInRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	in := auth.SignInInput{Email: body.Email, Password: body.Password}
	if err := s.auth.SignIn(c.UserContext(), in, jar(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) logOut(c *fiber.Ctx) error {
	s.auth.LogOut(c.UserContext(), jar(c))
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) me(c *fiber.Ctx) error {
	opts := services.CurrentUserOptions{UserData: c.QueryBool("userdata")}
	cu, err := s.auth.CurrentUser(c.UserContext(), jar(c), opts)
	if err != nil {
		return err
	}
	if cu == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required.")
	}

	resp := meResponse{UserID: cu.UserID}
	if cu.User != nil {
		resp.User = &userPayload{Name: cu.User.Name, Email: cu.User.Email, CreatedAt: cu.User.CreatedAt}
	}
	return c.JSON(resp)
}

// home is the page-style entry point: anonymous visitors are redirected to
// the sign-in page instead of getting a bare 401.
func (s *Server) home(c *fiber.Ctx) error {
	cu, err := s.auth.CurrentUser(c.UserContext(), jar(c), services.CurrentUserOptions{Redirect: true, UserData: true})
	if err != nil {
		return err
	}
	resp := meResponse{UserID: cu.UserID}
	if cu.User != nil {
		resp.User = &userPayload{Name: cu.User.Name, Email: cu.User.Email, CreatedAt: cu.User.CreatedAt}
	}
	return c.JSON(resp)
}

func (s *Server) signInPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Sign in required."})
}
