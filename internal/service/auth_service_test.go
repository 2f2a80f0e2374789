package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/repository"
)

const testJWTSecret = "test-secret"

func setupAuthService(t *testing.T) AuthService {
	t.Helper()
	db := setupGradebookDB(t)
	return NewAuthService(repository.NewUserRepository(db), validator.New(validator.WithRequiredStructEnabled()), testJWTSecret, time.Hour, zerolog.Nop())
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, dto.RegisterRequest{Username: "  alice ", Password: "s3cret!"})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	token, err := svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "s3cret!"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", token.TokenType)
	require.Equal(t, "alice", token.Username)
	require.True(t, token.ExpiresAt.After(time.Now()))

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	require.Equal(t, "alice", claims.Subject)
}

func TestAuthServiceKeepsPasswordWhitespace(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: " alice ", Password: " s3cret! "})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: " s3cret! "})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "s3cret!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceStoresHashedPassword(t *testing.T) {
	db := setupGradebookDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), validator.New(), testJWTSecret, time.Hour, zerolog.Nop())

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Username: "alice", Password: "s3cret!"})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&stored).Error)
	require.NotEqual(t, "s3cret!", stored.PasswordHash)
	require.NotEmpty(t, stored.PasswordHash)
}

func TestAuthServiceRegisterRejectsDuplicates(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "s3cret!"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "other-pass"})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthServiceRegisterValidates(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Username: "al", Password: "123"})
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "s3cret!"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "mallory", Password: "s3cret!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
