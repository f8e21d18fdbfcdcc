package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	userserrors "karabook/internal/customers/errors"
	"karabook/internal/customers/repository"
	"karabook/pkg/config"
	apperrors "karabook/pkg/errors"
	"karabook/pkg/model"
	"karabook/pkg/sanitizer"
)

type AuthService interface {
	// Authenticate verifies credentials against the stored bcrypt hash.
	// Unknown email and wrong password return the same error so callers
	// cannot enumerate accounts.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Register(ctx context.Context, user *model.User, password string) error
	IssueToken(user *model.User) (string, error)
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		repo: repo,
		cfg:  cfg,
	}
}

var errBadCredentials = apperrors.Unauthorized("Invalid email or password")

func (s *authService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errBadCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.cfg.Log.Warn("Failed login attempt", "email", email)
		return nil, errBadCredentials
	}

	return user, nil
}

func (s *authService) Register(ctx context.Context, user *model.User, password string) error {
	user.Name = sanitizer.NormalizeName(user.Name)
	user.Email = sanitizer.NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	if user.Name == "" || user.Email == "" {
		return apperrors.Validation("Registration failed", map[string]any{
			"error": "name and email are required",
		})
	}
	if len(password) < 8 {
		return apperrors.Validation("Registration failed", map[string]any{
			"error": "password must be at least 8 characters",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return apperrors.Internal("Failed to hash password", err)
	}
	user.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return apperrors.Conflict(userserrors.ErrDuplicateEmail.Error())
		}
		s.cfg.Log.Error("Failed to register user", "error", err)
		return apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "role", user.Role)
	return nil
}

func (s *authService) IssueToken(user *model.User) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", apperrors.Internal("JWT secret is not configured", nil)
	}

	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", apperrors.Internal("Failed to sign token", err)
	}
	return signed, nil
}
