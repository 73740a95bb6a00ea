package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/linkmark/internal/server/session"
)

// fiberJar adapts a request/response pair to the session cookie contracts.
type fiberJar struct {
	c *fiber.Ctx
}

func jar(c *fiber.Ctx) *fiberJar {
	return &fiberJar{c: c}
}

func (j *fiberJar) Set(name, value string, opts session.CookieOptions) {
	j.c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  opts.Expires,
		Secure:   opts.Secure,
		HTTPOnly: opts.HTTPOnly,
		SameSite: opts.SameSite,
	})
}

func (j *fiberJar) Get(name string) (string, bool) {
	v := j.c.Cookies(name)
	return v, v != ""
}

func (j *fiberJar) Delete(name string) {
	// fiber has no dedicated clear; an expired empty cookie does it
	j.c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
}
