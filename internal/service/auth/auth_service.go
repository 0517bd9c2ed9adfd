package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/kafka"
	"github.com/SivaTeja36/Bus-reservation/internal/logging"
)

type AuthUseCase interface {
	Login(ctx context.Context, sessionID, email, password string) (*domain.User, error)
	Logout(ctx context.Context, sessionID string) error
}

// Gateway performs the credential exchange, satisfied by *apiclient.Client.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
}

// Sessions is the part of session.Manager the login flow drives.
type Sessions interface {
	SetAuth(ctx context.Context, id, token string, user domain.User) (*domain.Session, error)
	CurrentUser(ctx context.Context, id string) (*domain.User, error)
	Logout(ctx context.Context, id string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type AuthService struct {
	gateway     Gateway
	sessions    Sessions
	producer    Producer
	eventsTopic string
	logger      *slog.Logger
	now         func() time.Time
}

type AuthServiceOption func(*AuthService)

func WithEvents(producer Producer, topic string) AuthServiceOption {
	return func(s *AuthService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithLogger(logger *slog.Logger) AuthServiceOption {
	return func(s *AuthService) {
		s.logger = logger
	}
}

func NewAuthService(gateway Gateway, sessions Sessions, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		gateway:  gateway,
		sessions: sessions,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateCredentials performs the only client-side checks: both fields
// must be present.
func ValidateCredentials(email, password string) error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(email) == "" {
		errs = append(errs, domain.ValidationError{Field: "email", Msg: "Email is required"})
	}
	if password == "" {
		errs = append(errs, domain.ValidationError{Field: "password", Msg: "Password is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Login exchanges credentials and, on success, stores the session in one
// write. On any failure the existing session is left as it was.
func (s *AuthService) Login(ctx context.Context, sessionID, email, password string) (*domain.User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	log := logging.FromContext(ctx, s.logger)

	result, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		log.Info("login rejected", "email", email, "error", err)
		if domain.IsAuthentication(err) {
			return nil, err
		}
		return nil, domain.AuthenticationError{Err: err}
	}

	sess, err := s.sessions.SetAuth(ctx, sessionID, result.Token, result.User)
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.publish(ctx, kafka.EventLogin, sess.User)
	return sess.User, nil
}

// Logout clears the session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	user, err := s.sessions.CurrentUser(ctx, sessionID)
	if err != nil {
		logging.FromContext(ctx, s.logger).Warn("load session before logout", "error", err)
	}
	if err := s.sessions.Logout(ctx, sessionID); err != nil {
		return err
	}
	if user != nil {
		s.publish(ctx, kafka.EventLogout, user)
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, u *domain.User) {
	if s.producer == nil || s.eventsTopic == "" || u == nil {
		return
	}
	event := kafka.ConsoleEvent{
		Type:      eventType,
		Actor:     u.Email,
		Role:      string(u.Role),
		RequestID: logging.RequestIDFromContext(ctx),
		At:        s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, u.Email, event); err != nil {
		logging.FromContext(ctx, s.logger).Warn("failed to publish console event", "type", eventType, "error", err)
	}
}

var _ AuthUseCase = (*AuthService)(nil)
