package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gradebook-api/internal/middleware"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseIndexParam(c *fiber.Ctx, key string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(c.Params(key)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s index", key)
	}
	return value, nil
}

// courseCodeParam returns the decoded :code segment. Codes may contain spaces
// and other characters that arrive percent-encoded.
func courseCodeParam(c *fiber.Ctx) (string, error) {
	code, err := url.PathUnescape(c.Params("code"))
	if err != nil {
		return "", fmt.Errorf("invalid course code")
	}
	return code, nil
}

func usernameFromContext(c *fiber.Ctx) (string, error) {
	username := strings.TrimSpace(middleware.UsernameFromContext(c))
	if username == "" {
		return "", fmt.Errorf("missing user context")
	}
	return username, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
