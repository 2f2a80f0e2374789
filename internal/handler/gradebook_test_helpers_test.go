package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gradebook-api/internal/database"
	"github.com/noah-isme/gradebook-api/internal/handler"
	"github.com/noah-isme/gradebook-api/internal/middleware"
	"github.com/noah-isme/gradebook-api/internal/repository"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/internal/utils"
)

const testUserHeader = "X-Test-User"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupGradebookApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zerolog.Nop()
	validate := utils.NewValidator()

	activitySvc := service.NewActivityService(repository.NewActivityLogRepository(db), validate, logger)
	courseSvc := service.NewCourseService(repository.NewCourseRepository(db), validate, activitySvc, nil, nil, 0, logger)
	authSvc := service.NewAuthService(repository.NewUserRepository(db), validate, "handler-secret", time.Hour, logger)

	app := fiber.New()
	api := app.Group("/api/v1")
	handler.NewAuthHandler(authSvc, logger).Register(api.Group("/auth"))

	protected := api.Group("", func(c *fiber.Ctx) error {
		if user := c.Get(testUserHeader); user != "" {
			c.Locals(middleware.UsernameLocal, user)
		}
		return c.Next()
	})
	handler.NewCourseHandler(courseSvc, logger).Register(protected.Group("/courses"))
	handler.NewActivityHandler(activitySvc, logger).Register(protected.Group("/activity"))

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, user string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}

	return send(t, app, req)
}

func doUpload(t *testing.T, app *fiber.App, path, user, filename string, content []byte) (*http.Response, envelope) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(testUserHeader, user)

	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	var payload envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp, payload
}

func calculusPayload() map[string]interface{} {
	return map[string]interface{}{
		"code": "MATH2",
		"name": "Calculus",
		"groups": []map[string]interface{}{
			{"name": "Quizzes", "weight_percent": 30, "total_items": 3, "items_to_count": 2},
			{"name": "Midterm", "weight_percent": 30, "total_items": 1},
			{"name": "Final", "weight_percent": 40, "total_items": 1},
		},
	}
}
