package utils_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/utils"
)

type responseBody struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Details map[string]string      `json:"details"`
}

func TestSendSuccessDefaultsMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "", map[string]string{"hello": "world"})
	})

	resp := performRequest(t, app)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload responseBody
	decode(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
	require.Equal(t, "world", payload.Data["hello"])
}

func TestSendSuccessWithStatus(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", map[string]string{"code": "MATH2"})
	})

	resp := performRequest(t, app)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestSendErrorOmitsData(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	})

	resp := performRequest(t, app)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var payload responseBody
	decode(t, resp, &payload)
	require.False(t, payload.Success)
	require.Equal(t, "course not found", payload.Message)
	require.Nil(t, payload.Data)
}

func TestSendValidationErrorListsFields(t *testing.T) {
	type group struct {
		Weight float64 `json:"weight_percent" validate:"gt=0"`
	}
	type course struct {
		Code   string  `json:"code" validate:"required"`
		Groups []group `json:"groups" validate:"dive"`
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})

	err := validate.Struct(course{Groups: []group{{Weight: 0}}})
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendValidationError(c, validationErrors)
	})

	resp := performRequest(t, app)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload responseBody
	decode(t, resp, &payload)
	require.Equal(t, "validation failed", payload.Message)
	require.Equal(t, "required", payload.Details["code"])
	require.Equal(t, "gt", payload.Details["groups[0].weight_percent"])
}

func performRequest(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
