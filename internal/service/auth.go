package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/lead-tracker/internal/auth"
)

// ErrInvalidCredentials is returned when a login attempt fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService validates the configured admin credential and issues tokens.
// There is a single principal: the admin account described by the
// ADMIN_EMAIL / ADMIN_PASSWORD_HASH configuration values.
type AuthService struct {
	adminEmail string
	adminHash  string
	jwt        *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(adminEmail, adminPasswordHash string, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{adminEmail: adminEmail, adminHash: adminPasswordHash, jwt: jwtManager}
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", errors.New("email and password must not be empty")
	}
	if s.adminHash == "" || !strings.EqualFold(email, s.adminEmail) {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.adminHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken("admin", strings.ToLower(email), "admin")
	if err != nil {
		return "", err
	}

	return token, nil
}
