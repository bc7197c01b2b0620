package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pogoda-app/pogoda-go/internal/infrastructure/observability/logging"
	"github.com/pogoda-app/pogoda-go/internal/infrastructure/security"
)

// ErrInvalidPassword is returned when a login attempt does not match the
// configured dashboard password.
var ErrInvalidPassword = errors.New("invalid password")

// AuthConfig carries the dashboard access settings. It is injected at
// construction so no credential lives in package state.
type AuthConfig struct {
	Password   string
	CookieName string
	JWTSecret  string
	SessionTTL time.Duration
}

// AuthService gates the analytics dashboard behind a single shared
// password and issues signed session tokens on success.
type AuthService struct {
	config AuthConfig
	logger *logging.ChanneledLogger
}

// NewAuthService creates a new dashboard auth service.
func NewAuthService(config AuthConfig, logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{
		config: config,
		logger: logger,
	}
}

// CookieName returns the configured session cookie name.
func (s *AuthService) CookieName() string {
	return s.config.CookieName
}

// SessionTTL returns the configured session lifetime.
func (s *AuthService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

// Login verifies the submitted password and returns a session token.
// The stored password may be a bcrypt hash or plaintext; hashes are
// tried first so a plaintext value that happens to look like a hash
// still authenticates.
func (s *AuthService) Login(password string) (string, error) {
	if s.config.Password == "" {
		s.logger.Auth().Warn("Dashboard login rejected, no password configured")
		return "", ErrInvalidPassword
	}

	if !s.passwordMatches(password) {
		s.logger.Auth().Warn("Dashboard login failed, password mismatch")
		return "", ErrInvalidPassword
	}

	token, err := security.GenerateSessionToken(s.config.JWTSecret, s.config.SessionTTL)
	if err != nil {
		return "", err
	}

	s.logger.Auth().Info("Dashboard session issued", "ttl", s.config.SessionTTL)
	return token, nil
}

// IsAuthorized reports whether token is a valid, unexpired session token.
func (s *AuthService) IsAuthorized(token string) bool {
	if token == "" {
		return false
	}
	claims, err := security.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return false
	}
	return security.IsSessionToken(claims)
}

func (s *AuthService) passwordMatches(candidate string) bool {
	stored := s.config.Password
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)); err == nil {
		return true
	}
	return stored == candidate
}
