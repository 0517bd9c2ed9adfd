// Package session holds the operator's authenticated identity and bearer
// token, persisted in a durable Store so it survives reloads and restarts.
package session

import (
	"context"
	"errors"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
)

var ErrNotFound = errors.New("session not found")

// Store persists whole sessions by ID. Save replaces any previous record
// in one step; implementations must never expose a half-written session.
type Store interface {
	Load(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, id string, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// WithID scopes ctx to one session. The API client's token lookup and
// the data cache both key off this ID.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type userKey struct{}

// WithUser attaches the signed-in user so downstream services can name
// the actor without another store read.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey{}).(*domain.User)
	return u
}
