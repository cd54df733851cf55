package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"jobdesk/internal/logging"
)

// ErrNoSession reports that no admin token is available, either because none
// was ever stored or because the backend rejected it.
var ErrNoSession = errors.New("no admin session; run 'jobdesk login'")

// Guard gates protected backend calls on the presence of an admin token.
type Guard struct {
	store  TokenStore
	logger *slog.Logger

	mu        sync.Mutex
	revoked   bool
	listeners []func()
}

// NewGuard constructs a Guard over store.
func NewGuard(store TokenStore, logger *slog.Logger) *Guard {
	return &Guard{store: store, logger: logging.NewComponentLogger(logger, "session")}
}

// Token returns the admin token or ErrNoSession.
func (g *Guard) Token() (string, error) {
	g.mu.Lock()
	revoked := g.revoked
	g.mu.Unlock()
	if revoked {
		return "", ErrNoSession
	}
	token, err := g.store.Load()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// Require returns ErrNoSession when no protected call may be issued.
func (g *Guard) Require() error {
	_, err := g.Token()
	return err
}

// Login stores a new token and lifts any earlier revocation.
func (g *Guard) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token must not be empty")
	}
	if err := g.store.Save(token); err != nil {
		return err
	}
	g.mu.Lock()
	g.revoked = false
	g.mu.Unlock()
	g.logger.Info("admin token stored")
	return nil
}

// Logout discards the stored token.
func (g *Guard) Logout() error {
	if err := g.store.Clear(); err != nil {
		return err
	}
	g.logger.Info("admin token discarded")
	return nil
}

// Invalidate discards the token after the backend rejected it. Every later
// Token call fails with ErrNoSession until Login succeeds.
func (g *Guard) Invalidate(reason string) error {
	g.mu.Lock()
	already := g.revoked
	g.revoked = true
	listeners := append([]func(){}, g.listeners...)
	g.mu.Unlock()

	if already {
		return nil
	}
	g.logger.Warn("admin token rejected by backend; session cleared",
		logging.String("reason", reason),
		logging.String(logging.FieldEventType, "session_revoked"),
	)
	err := g.store.Clear()
	for _, fn := range listeners {
		fn()
	}
	if err != nil {
		return fmt.Errorf("clear revoked token: %w", err)
	}
	return nil
}

// Revoked reports whether Invalidate has been called since the last Login.
func (g *Guard) Revoked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.revoked
}

// OnRevoke registers fn to run once when the session is invalidated.
func (g *Guard) OnRevoke(fn func()) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}
