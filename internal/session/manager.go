package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// LogoutHook runs after a session has been removed from the store.
type LogoutHook func(ctx context.Context, id string)

// Manager is the injectable session context shared by the console and the
// CLI. It owns the lifecycle (SetAuth, Current, Logout) on top of a Store.
type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	hooks []LogoutHook
}

func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger, now: time.Now}
}

// OnLogout registers a hook run after every Logout and every expiry.
func (m *Manager) OnLogout(h LogoutHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// SetAuth stores token and user as the session for id, replacing any
// earlier one in a single store write.
func (m *Manager) SetAuth(ctx context.Context, id, token string, user domain.User) (*domain.Session, error) {
	if id == "" {
		return nil, errors.New("session id is required")
	}
	if token == "" {
		return nil, domain.ValidationError{Field: "token", Msg: "token is required"}
	}
	if user.Email == "" && user.Name == "" {
		return nil, domain.ValidationError{Field: "user", Msg: "user is required"}
	}

	u := user
	s := &domain.Session{
		Token:     token,
		User:      &u,
		CreatedAt: m.now(),
		ExpiresAt: tokenExpiry(token),
	}
	if err := m.store.Save(ctx, id, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.logger.Info("session established", "email", u.Email, "role", u.Role)
	return s, nil
}

// Current returns the live session for id, or nil. Expired sessions are
// cleared on the way out.
func (m *Manager) Current(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, nil
	}
	s, err := m.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !s.Valid() {
		return nil, nil
	}
	if s.Expired(m.now()) {
		m.logger.Info("session expired", "email", s.User.Email)
		if err := m.Logout(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s, nil
}

func (m *Manager) CurrentUser(ctx context.Context, id string) (*domain.User, error) {
	s, err := m.Current(ctx, id)
	if err != nil || s == nil {
		return nil, err
	}
	return s.User, nil
}

// Logout clears the session and runs the logout hooks.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.mu.RLock()
	hooks := append([]LogoutHook(nil), m.hooks...)
	m.mu.RUnlock()
	for _, h := range hooks {
		h(ctx, id)
	}
	return nil
}

// Token implements apiclient.TokenSource for the session bound to ctx.
func (m *Manager) Token(ctx context.Context) (string, error) {
	s, err := m.Current(ctx, IDFromContext(ctx))
	if err != nil || s == nil {
		return "", err
	}
	return s.Token, nil
}

// tokenExpiry reads the exp claim without verifying the signature.
// Opaque or malformed tokens yield nil.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
