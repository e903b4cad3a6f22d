// Package auth is the admin session gate: a fixed credential list and
// time-boxed opaque session tokens. It is a placeholder, not a hardened
// login system.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionTTL bounds an admin session at 8 hours from login.
const SessionTTL = 8 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

type Credential struct {
	Username string
	Password string
	Role     string
}

type Session struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	LoginAt  time.Time `json:"loginTime"`
}

type SessionStore interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

type Gate struct {
	creds []Credential
	store SessionStore
	now   func() time.Time
}

func NewGate(creds []Credential, store SessionStore) *Gate {
	return &Gate{creds: creds, store: store, now: time.Now}
}

// WithClock overrides the gate clock. Tests only.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Authenticate compares against the fixed credential list and, on match,
// opens a session stamped with the login time.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (Session, error) {
	for _, c := range g.creds {
		if c.Username == username && c.Password == password {
			s := Session{
				Token:    uuid.NewString(),
				Username: c.Username,
				Role:     c.Role,
				LoginAt:  g.now().UTC(),
			}
			if err := g.store.Put(ctx, s); err != nil {
				return Session{}, err
			}
			return s, nil
		}
	}
	return Session{}, ErrInvalidCredentials
}

// Validate returns the session behind the token, dropping it once more than
// eight hours have elapsed since login.
func (g *Gate) Validate(ctx context.Context, token string) (Session, error) {
	s, err := g.store.Get(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if g.now().UTC().Sub(s.LoginAt) > SessionTTL {
		_ = g.store.Delete(ctx, token)
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (g *Gate) Logout(ctx context.Context, token string) error {
	return g.store.Delete(ctx, token)
}
