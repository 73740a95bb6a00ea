package session

import "time"

// CookieOptions carries the attributes the manager sets on the session cookie.
// SameSite uses the http.SameSite-style names ("Lax", "Strict", "None").
type CookieOptions struct {
	Secure   bool
	HTTPOnly bool
	SameSite string
	Expires  time.Time
}

// CookieWriter sets a named cookie on the outgoing response.
type CookieWriter interface {
	Set(name, value string, opts CookieOptions)
}

// CookieReader reads a named cookie from the incoming request. ok is false
// when the cookie is absent.
type CookieReader interface {
	Get(name string) (value string, ok bool)
}

// CookieDeleter clears a named cookie on the outgoing response.
type CookieDeleter interface {
	Delete(name string)
}

// CookieReadDeleter is what Remove needs: read the current cookie, then clear it.
type CookieReadDeleter interface {
	CookieReader
	CookieDeleter
}
