package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/linkmark/internal/common"
)

const (
	// CookieName is the single cookie carrying the session identifier.
	CookieName = "session-id"

	// keyPrefix namespaces session entries in the shared store.
	keyPrefix = "session:"

	// DefaultTTL is how long a session lives; no renewal happens after creation.
	DefaultTTL = 7 * 24 * time.Hour

	// idBytes sized so the hex identifier carries 512 bits of randomness;
	// guessing stays infeasible at any request volume.
	idBytes = 64
)

// Manager issues, resolves, and revokes sessions, bridging the Store and the
// HTTP cookie on each request.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
}

// NewManager builds a Manager over the given store. ttl <= 0 falls back to
// DefaultTTL. secure controls the cookie's Secure attribute; it is disabled
// only for plain-HTTP local runs.
func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl, secure: secure}
}

// Create generates a fresh session identifier, writes session:{id} -> userID
// with the configured TTL, and sets the cookie. Prior sessions for the same
// user are left alone: concurrent sessions are allowed, and a fresh key is
// used every time so nothing is ever overwritten.
func (m *Manager) Create(ctx context.Context, userID string, w CookieWriter) error {
	sessionID, err := common.MakeRandHexString(idBytes)
	if err != nil {
		return err
	}

	if err := m.store.Set(ctx, keyPrefix+sessionID, userID, m.ttl); err != nil {
		return err
	}

	w.Set(CookieName, sessionID, CookieOptions{
		Secure:   m.secure,
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(m.ttl),
	})
	return nil
}

// UserID resolves the user behind the request's session cookie. A missing
// cookie or an absent/expired store entry is the normal unauthenticated case
// and returns ("", nil); only infrastructure failures surface as errors.
func (m *Manager) UserID(ctx context.Context, r CookieReader) (string, error) {
	sessionID, ok := r.Get(CookieName)
	if !ok || sessionID == "" {
		return "", nil
	}

	userID, err := m.store.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil
		}
		return "", err
	}
	return userID, nil
}

// Remove deletes the session entry and clears the cookie. With no cookie
// present it does nothing, and an already-expired store entry is tolerated.
func (m *Manager) Remove(ctx context.Context, rd CookieReadDeleter) error {
	sessionID, ok := rd.Get(CookieName)
	if !ok || sessionID == "" {
		return nil
	}

	if err := m.store.Delete(ctx, keyPrefix+sessionID); err != nil {
		return err
	}
	rd.Delete(CookieName)
	return nil
}

// TTL reports the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
