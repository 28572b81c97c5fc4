package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

const ownerSubject = "owner"

// AuthService authenticates the single owner of a Daybook instance. The
// owner's bcrypt password hash comes from configuration; a successful
// login yields a signed JWT.
type AuthService struct {
	cfg    config.AuthConfig
	logger *logger.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(cfg config.AuthConfig, appLogger *logger.Logger) *AuthService {
	return &AuthService{
		cfg:    cfg,
		logger: appLogger,
	}
}

// Login verifies the owner password and issues an access token.
func (s *AuthService) Login(_ context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	if s.cfg.PasswordHash == "" {
		return nil, fmt.Errorf("owner password is not configured: %w", entities.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Login attempt with wrong password")
		return nil, entities.ErrUnauthorized
	}

	return s.IssueToken(time.Now())
}

// IssueToken mints a token for the owner without a password check. Used by
// the CLI, which already runs with local credentials.
func (s *AuthService) IssueToken(now time.Time) (*ports.AuthResponse, error) {
	expiresAt := now.Add(s.cfg.ExpiresIn)

	claims := jwt.RegisteredClaims{
		Subject:   ownerSubject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &ports.AuthResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject != ownerSubject {
		return nil, entities.ErrUnauthorized
	}

	out := &ports.Claims{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
