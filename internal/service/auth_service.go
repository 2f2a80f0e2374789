package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/repository"
)

var (
	// ErrUsernameTaken indicates an account with the username already exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials indicates the username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService registers accounts and issues access tokens.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error)
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	secret    []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService builds the auth service. Tokens are HS256-signed with secret.
func NewAuthService(users repository.UserRepository, validate *validator.Validate, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		users:     users,
		validator: validate,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	payload.Username = strings.TrimSpace(payload.Username)
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	_, err := s.users.GetByUsername(ctx, payload.Username)
	switch {
	case err == nil:
		return dto.UserResponse{}, ErrUsernameTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     payload.Username,
		PasswordHash: string(hash),
	}
	if err := s.users.Save(ctx, &user); err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info().Str("username", user.Username).Msg("user registered")

	return dto.UserResponse{Username: user.Username, CreatedAt: user.CreatedAt}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error) {
	payload.Username = strings.TrimSpace(payload.Username)
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		s.logger.Debug().Str("username", user.Username).Msg("password mismatch")
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return dto.TokenResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC(),
		Username:    user.Username,
	}, nil
}
