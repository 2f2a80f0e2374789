package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/internal/utils"
)

// CourseHandler exposes course definition and score endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler creates a new handler instance.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches the course routes to the provided router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/import", h.importSnapshot)
	router.Get("/:code", h.get)
	router.Get("/:code/export", h.export)
	router.Put("/:code/scores", h.updateScores)
	router.Patch("/:code/groups/:group/items/:item", h.updateScore)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	owner, err := usernameFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	dashboard, err := h.service.List(c.UserContext(), owner)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "courses retrieved", dashboard)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	owner, err := usernameFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Create(c.UserContext(), owner, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	owner, err := usernameFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	code, err := courseCodeParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.service.Get(c.UserContext(), owner, code)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) updateScores(c *fiber.Ctx) error {
	owner, err := usernameFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	code, err := courseCodeParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ScoreBatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.UpdateScores(c.UserContext(), owner, code, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "scores saved", course)
}

func (h *CourseHandler) updateScore(c *fiber.Ctx) error {
	owner, err := usernameFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	code, err := courseCodeParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	groupIdx, err := parseIndexParam(c, "group")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	itemIdx, err := parseIndexParam(c, "item")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ScoreUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.GroupIndex = groupIdx
	payload.ItemIndex = itemIdx

	course, err := h.service.UpdateScores(c.UserContext(), owner, code, dto.ScoreBatchRequest{
		Updates: []dto.ScoreUpdateRequest{payload},
	})
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "score saved", course)
}

func (h *CourseHandler) export(c *fiber.Ctx) error {
	owner, err := usernameFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	code, err := courseCodeParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	snapshot, err := h.service.Export(c.UserContext(), owner, code)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", snapshot.Code+".json"))
	return c.JSON(snapshot)
}

func (h *CourseHandler) importSnapshot(c *fiber.Ctx) error {
	owner, err := usernameFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	course, err := h.service.Import(c.UserContext(), owner, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course imported", course)
}

func (h *CourseHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.SendValidationError(c, validationErrors)
	case errors.Is(err, service.ErrWeightTotalInvalid),
		errors.Is(err, service.ErrInvalidBestOfN),
		errors.Is(err, service.ErrUnsupportedSnapshot):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrCourseExists):
		return utils.SendError(c, fiber.StatusConflict, "course already exists")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("course request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
