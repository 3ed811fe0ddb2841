// Package service implements registration, login and session lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lead_management_backend/internal/auth/password"
	"lead_management_backend/internal/auth/repository"
	"lead_management_backend/internal/auth/token"
	"lead_management_backend/internal/auth/transport"
	"lead_management_backend/platform/apperr"
	"lead_management_backend/platform/config"
	"lead_management_backend/platform/httpkit"
	"lead_management_backend/platform/logger"
	"lead_management_backend/platform/validator"
)

const (
	msgRegisterFieldsRequired = "Name, email and password are required"
	msgLoginFieldsRequired    = "Email and password required"
	msgEmailInUse             = "Email already in use"
	msgInvalidCredentials     = "Invalid credentials"
	msgUserNotFound           = "User not found"
	msgPasswordTooLong        = "password must be at most 72 bytes"
)

// Auth event names used for logs and metrics.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventLogout   = "logout"
)

// Revoker records logged-out session token ids.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// EventRecorder counts auth attempts by outcome.
type EventRecorder interface {
	IncAuthEvent(event string, success bool)
}

type Service struct {
	users     repository.UserStore
	revoker   Revoker
	cfg       config.SessionConfig
	recorder  EventRecorder
	validator *validator.Validator
	log       *logger.Logger
	now       func() time.Time
}

// New creates the auth service. revoker and recorder may be nil.
func New(users repository.UserStore, revoker Revoker, cfg config.SessionConfig, recorder EventRecorder, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		users:     users,
		revoker:   revoker,
		cfg:       cfg,
		recorder:  recorder,
		validator: validator.New(),
		log:       log,
		now:       time.Now,
	}
}

// Register creates an account and opens a session for it.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (transport.AuthResponse, token.Session, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		s.record(ctx, EventRegister, req.Email, false, "missing fields")
		return transport.AuthResponse{}, token.Session{}, apperr.BadRequest(msgRegisterFieldsRequired)
	}
	if err := s.validator.Struct(req); err != nil {
		s.record(ctx, EventRegister, req.Email, false, "invalid fields")
		return transport.AuthResponse{}, token.Session{}, apperr.Validation(validator.Messages(err))
	}
	if password.TooLong(req.Password) {
		s.record(ctx, EventRegister, req.Email, false, "invalid fields")
		return transport.AuthResponse{}, token.Session{}, apperr.Validation([]string{msgPasswordTooLong})
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.AuthResponse{}, token.Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.record(ctx, EventRegister, req.Email, false, "email in use")
			return transport.AuthResponse{}, token.Session{}, apperr.Conflict(msgEmailInUse)
		}
		return transport.AuthResponse{}, token.Session{}, fmt.Errorf("create user: %w", err)
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return transport.AuthResponse{}, token.Session{}, err
	}

	s.record(ctx, EventRegister, user.Email, true, "")

	return toAuthResponse(user), session, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.AuthResponse, token.Session, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		s.record(ctx, EventLogin, email, false, "missing fields")
		return transport.AuthResponse{}, token.Session{}, apperr.BadRequest(msgLoginFieldsRequired)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.record(ctx, EventLogin, email, false, "unknown email")
			return transport.AuthResponse{}, token.Session{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return transport.AuthResponse{}, token.Session{}, fmt.Errorf("get user: %w", err)
	}

	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.record(ctx, EventLogin, email, false, "wrong password")
		return transport.AuthResponse{}, token.Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return transport.AuthResponse{}, token.Session{}, err
	}

	s.record(ctx, EventLogin, user.Email, true, "")

	return toAuthResponse(user), session, nil
}

// Me returns the profile of the session owner.
func (s *Service) Me(ctx context.Context, userID string) (transport.AuthResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AuthResponse{}, apperr.NotFound(msgUserNotFound)
		}
		return transport.AuthResponse{}, fmt.Errorf("get user: %w", err)
	}
	return toAuthResponse(user), nil
}

// Logout revokes rawToken when it is still valid and a revoker is configured.
// Missing or invalid tokens are not an error.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" || s.revoker == nil {
		return nil
	}

	claims, err := httpkit.ParseSessionToken(rawToken, s.cfg.GetJWTSecret())
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.record(ctx, EventLogout, "", true, "")
	return nil
}

func (s *Service) issue(userID string) (token.Session, error) {
	session, err := token.Issue(userID, s.cfg.GetJWTSecret(), s.cfg.GetSessionTTL(), s.now())
	if err != nil {
		return token.Session{}, fmt.Errorf("sign session: %w", err)
	}
	return session, nil
}

func (s *Service) record(ctx context.Context, event, email string, success bool, reason string) {
	if s.recorder != nil {
		s.recorder.IncAuthEvent(event, success)
	}
	s.log.WithContext(ctx).AuthEvent(event, email, success, reason)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toAuthResponse(user repository.User) transport.AuthResponse {
	return transport.AuthResponse{User: transport.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}}
}
