package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/dto"
)

func TestAuthHandlerRegisterAndLogin(t *testing.T) {
	app := setupGradebookApp(t)
	credentials := map[string]string{"username": "alice", "password": "s3cret!"}

	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", credentials)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, payload.Message)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", credentials)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, payload = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", credentials)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var token dto.TokenResponse
	require.NoError(t, json.Unmarshal(payload.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	require.Equal(t, "Bearer", token.TokenType)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "nope-nope"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandlerValidation(t *testing.T) {
	app := setupGradebookApp(t)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "al", "password": "1"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.False(t, payload.Success)
}
