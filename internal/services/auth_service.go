package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BradenHooton/portfolio/internal/models"
	pkglogger "github.com/BradenHooton/portfolio/pkg/logger"
)

const (
	msgLoginFailed   = "Login failed. Please try again."
	msgNotAdmin      = "Account is not authorized for admin access"
	msgInvalidLogins = "Invalid login credentials"
)

// PasswordAuthenticator signs a user in with email and password.
type PasswordAuthenticator interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
}

// AttemptRecorder stores a sign-in outcome without reporting failures.
type AttemptRecorder interface {
	Record(ctx context.Context, in LoginAttemptInput)
}

// AdminAllowList decides which accounts may use the admin area.
type AdminAllowList interface {
	IsAdminEmail(email string) bool
}

// AuthService handles admin sign-in
type AuthService struct {
	provider PasswordAuthenticator
	allow    AdminAllowList
	attempts AttemptRecorder
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(provider PasswordAuthenticator, allow AdminAllowList, attempts AttemptRecorder, logger *slog.Logger) *AuthService {
	return &AuthService{
		provider: provider,
		allow:    allow,
		attempts: attempts,
		logger:   logger,
	}
}

// Login authenticates an admin through the auth provider. Every outcome is
// recorded as a login attempt; recording never changes the result.
func (s *AuthService) Login(ctx context.Context, email, password string, identity models.Identity) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			s.logger.Info("login failed: invalid credentials")
			s.record(ctx, email, false, providerMessage(err), identity)
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("auth provider sign-in failed", slog.String("error", err.Error()))
		s.record(ctx, email, false, msgLoginFailed, identity)
		return nil, err
	}

	if !s.allow.IsAdminEmail(email) {
		s.logger.Warn("login blocked: account not on admin allow-list",
			slog.String("email", pkglogger.SanitizedEmail(email)))
		s.record(ctx, email, false, msgNotAdmin, identity)
		return nil, models.ErrForbidden
	}

	s.logger.Info("admin logged in", slog.String("email", pkglogger.SanitizedEmail(email)))
	s.record(ctx, email, true, "", identity)
	return session, nil
}

func (s *AuthService) record(ctx context.Context, email string, success bool, errMsg string, identity models.Identity) {
	if s.attempts == nil {
		return
	}
	s.attempts.Record(ctx, LoginAttemptInput{
		Email:        email,
		Success:      success,
		ErrorMessage: errMsg,
		Identity:     identity,
	})
}

// providerMessage strips the sentinel prefix from a wrapped credentials error.
func providerMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), models.ErrInvalidCredentials.Error()+": ")
	if msg == "" || msg == err.Error() {
		return msgInvalidLogins
	}
	return msg
}
