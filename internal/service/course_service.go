package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/grading"
	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/observability"
	"github.com/noah-isme/gradebook-api/internal/repository"
)

const maxSnapshotBytes = 1 << 20

var (
	// ErrCourseNotFound indicates the requested course does not exist for the owner.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseExists indicates the owner already has a course with the same code.
	ErrCourseExists = errors.New("course already exists")
	// ErrUnsupportedSnapshot indicates an uploaded course document cannot be imported.
	ErrUnsupportedSnapshot = errors.New("unsupported course snapshot")
)

// CourseService exposes course definition and grade tracking use cases.
type CourseService interface {
	List(ctx context.Context, owner string) (dto.DashboardResponse, error)
	Get(ctx context.Context, owner, code string) (dto.CourseDetailResponse, error)
	Create(ctx context.Context, owner string, payload dto.CourseCreateRequest) (dto.CourseDetailResponse, error)
	UpdateScores(ctx context.Context, owner, code string, payload dto.ScoreBatchRequest) (dto.CourseDetailResponse, error)
	Export(ctx context.Context, owner, code string) (dto.CourseSnapshot, error)
	Import(ctx context.Context, owner string, file *multipart.FileHeader) (dto.CourseDetailResponse, error)
}

type courseService struct {
	repo       repository.CourseRepository
	definition courseDefinitionValidator
	validator  *validator.Validate
	activity   ActivityRecorder
	publisher  GradePublisher
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewCourseService builds the course service. cache, activity and publisher may be nil.
func NewCourseService(repo repository.CourseRepository, validate *validator.Validate, activity ActivityRecorder, publisher GradePublisher, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:       repo,
		definition: newCourseDefinitionValidator(validate),
		validator:  validate,
		activity:   activity,
		publisher:  publisher,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger.With().Str("component", "course_service").Logger(),
		now:        time.Now,
	}
}

func (s *courseService) List(ctx context.Context, owner string) (dto.DashboardResponse, error) {
	cacheKey := dashboardCacheKey(owner)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.DashboardCache().WithLabelValues("hit").Inc()
				s.logger.Debug().Str("owner", owner).Msg("dashboard cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.DashboardCache().WithLabelValues("miss").Inc()
	}

	records, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{Courses: make([]dto.CourseSummaryResponse, 0, len(records))}
	for _, record := range records {
		response.Courses = append(response.Courses, dto.NewCourseSummaryResponse(record))
		observability.GradeRecalculations().Inc()
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *courseService) Get(ctx context.Context, owner, code string) (dto.CourseDetailResponse, error) {
	record, err := s.load(ctx, owner, code)
	if err != nil {
		return dto.CourseDetailResponse{}, err
	}

	observability.GradeRecalculations().Inc()
	return dto.NewCourseDetailResponse(record.ToDomain(), record.UpdatedAt), nil
}

func (s *courseService) Create(ctx context.Context, owner string, payload dto.CourseCreateRequest) (dto.CourseDetailResponse, error) {
	course, err := s.definition.build(owner, payload)
	if err != nil {
		return dto.CourseDetailResponse{}, err
	}

	record, err := s.insert(ctx, course)
	if err != nil {
		return dto.CourseDetailResponse{}, err
	}

	s.recordActivity(ctx, ActivityEntry{
		Actor:      owner,
		Action:     models.ActivityCourseCreated,
		EntityType: "course",
		EntityID:   course.ID,
		Metadata: map[string]interface{}{
			"name":   course.Name,
			"groups": len(course.Groups),
		},
	})
	s.logger.Info().Str("owner", owner).Str("course", course.ID).Msg("course created")

	return dto.NewCourseDetailResponse(course, record.UpdatedAt), nil
}

func (s *courseService) UpdateScores(ctx context.Context, owner, code string, payload dto.ScoreBatchRequest) (dto.CourseDetailResponse, error) {
	ctx, span := courseTracer().Start(ctx, "course.update_scores", trace.WithAttributes(
		attribute.String("course.owner", owner),
		attribute.String("course.code", code),
		attribute.Int("course.updates", len(payload.Updates)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.CourseDetailResponse{}, err
	}

	record, err := s.load(ctx, owner, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "course_lookup_failed")
		return dto.CourseDetailResponse{}, err
	}

	course := record.ToDomain()
	previous := course.CurrentGrade()
	applyScoreUpdates(course, payload.Updates)
	grade := course.CurrentGrade()
	observability.GradeRecalculations().Inc()

	updated := models.CourseFromDomain(course)
	if err := s.repo.Save(ctx, &updated); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "course_save_failed")
		return dto.CourseDetailResponse{}, fmt.Errorf("failed to save course: %w", err)
	}
	span.SetAttributes(attribute.Float64("course.grade", grade))

	s.invalidateDashboard(ctx, owner)
	s.recordActivity(ctx, ActivityEntry{
		Actor:      owner,
		Action:     models.ActivityScoresUpdated,
		EntityType: "course",
		EntityID:   course.ID,
		Metadata: map[string]interface{}{
			"updates":        len(payload.Updates),
			"previous_grade": grading.RoundForDisplay(previous),
			"grade":          grading.RoundForDisplay(grade),
		},
	})
	s.publishGrade(ctx, course, grade)

	s.logger.Info().
		Str("owner", owner).
		Str("course", course.ID).
		Int("updates", len(payload.Updates)).
		Float64("grade", grade).
		Msg("scores updated")

	return dto.NewCourseDetailResponse(course, updated.UpdatedAt), nil
}

func (s *courseService) Export(ctx context.Context, owner, code string) (dto.CourseSnapshot, error) {
	record, err := s.load(ctx, owner, code)
	if err != nil {
		return dto.CourseSnapshot{}, err
	}

	return dto.NewCourseSnapshot(record.ToDomain(), s.now().UTC()), nil
}

func (s *courseService) Import(ctx context.Context, owner string, file *multipart.FileHeader) (response dto.CourseDetailResponse, err error) {
	ctx, span := courseTracer().Start(ctx, "course.import", trace.WithAttributes(
		attribute.String("course.owner", owner),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "import_failed")
		}
		span.End()
	}()

	if file == nil {
		return dto.CourseDetailResponse{}, fmt.Errorf("%w: file is required", ErrUnsupportedSnapshot)
	}
	if file.Size > maxSnapshotBytes {
		return dto.CourseDetailResponse{}, fmt.Errorf("%w: file too large", ErrUnsupportedSnapshot)
	}

	content, err := readUpload(file)
	if err != nil {
		return dto.CourseDetailResponse{}, err
	}

	detected := mimetype.Detect(content)
	if !detected.Is("application/json") && !detected.Is("text/plain") {
		return dto.CourseDetailResponse{}, fmt.Errorf("%w: content type %s", ErrUnsupportedSnapshot, detected.String())
	}

	var snapshot dto.CourseSnapshot
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return dto.CourseDetailResponse{}, fmt.Errorf("%w: %v", ErrUnsupportedSnapshot, err)
	}
	if snapshot.SchemaVersion != models.CourseSchemaVersion {
		return dto.CourseDetailResponse{}, fmt.Errorf("%w: schema version %d", ErrUnsupportedSnapshot, snapshot.SchemaVersion)
	}

	course, err := s.definition.build(owner, snapshot.CreateRequest())
	if err != nil {
		return dto.CourseDetailResponse{}, err
	}
	applySnapshotScores(course, snapshot)

	record, err := s.insert(ctx, course)
	if err != nil {
		return dto.CourseDetailResponse{}, err
	}

	s.recordActivity(ctx, ActivityEntry{
		Actor:      owner,
		Action:     models.ActivityCourseImported,
		EntityType: "course",
		EntityID:   course.ID,
		Metadata: map[string]interface{}{
			"file":      file.Filename,
			"mime_type": detected.String(),
		},
	})
	s.logger.Info().Str("owner", owner).Str("course", course.ID).Msg("course imported")

	return dto.NewCourseDetailResponse(course, record.UpdatedAt), nil
}

func (s *courseService) load(ctx context.Context, owner, code string) (models.Course, error) {
	record, err := s.repo.GetByOwnerAndCode(ctx, owner, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return record, nil
}

func (s *courseService) insert(ctx context.Context, course *grading.Course) (models.Course, error) {
	exists, err := s.repo.Exists(ctx, course.OwnerKey, course.ID)
	if err != nil {
		return models.Course{}, err
	}
	if exists {
		return models.Course{}, ErrCourseExists
	}

	record := models.CourseFromDomain(course)
	if err := s.repo.Save(ctx, &record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Course{}, ErrCourseExists
		}
		return models.Course{}, fmt.Errorf("failed to save course: %w", err)
	}

	s.invalidateDashboard(ctx, course.OwnerKey)
	return record, nil
}

func (s *courseService) invalidateDashboard(ctx context.Context, owner string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(owner)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("owner", owner).Msg("failed to invalidate dashboard cache")
	}
}

func (s *courseService) recordActivity(ctx context.Context, entry ActivityEntry) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to record activity")
	}
}

func (s *courseService) publishGrade(ctx context.Context, course *grading.Course, grade float64) {
	if s.publisher == nil {
		return
	}
	event := GradeUpdatedEvent{
		Owner:       course.OwnerKey,
		CourseCode:  course.ID,
		Grade:       grading.RoundForDisplay(grade),
		LetterGrade: grading.LetterGrade(grade),
		OccurredAt:  s.now().UTC(),
	}
	if err := s.publisher.PublishGradeUpdated(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("course", course.ID).Msg("failed to publish grade event")
	}
}

// applyScoreUpdates mutates the course leniently: nil scores clear the item and
// unknown indices are skipped by the model.
func applyScoreUpdates(course *grading.Course, updates []dto.ScoreUpdateRequest) {
	for _, update := range updates {
		if update.Score == nil {
			course.ClearScore(update.GroupIndex, update.ItemIndex)
			observability.ScoreUpdates().WithLabelValues("clear").Inc()
			continue
		}

		maxPoints := 1.0
		if update.MaxPoints != nil {
			maxPoints = *update.MaxPoints
		}
		course.UpdateScore(update.GroupIndex, update.ItemIndex, *update.Score, maxPoints)
		observability.ScoreUpdates().WithLabelValues("set").Inc()
	}
}

func applySnapshotScores(course *grading.Course, snapshot dto.CourseSnapshot) {
	for groupIdx, group := range snapshot.Groups {
		for itemIdx, item := range group.Items {
			if item.Score == nil {
				continue
			}
			course.UpdateScore(groupIdx, itemIdx, *item.Score, item.MaxPoints)
		}
	}
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, io.LimitReader(src, maxSnapshotBytes+1)); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if buf.Len() > maxSnapshotBytes {
		return nil, fmt.Errorf("%w: file too large", ErrUnsupportedSnapshot)
	}
	return buf.Bytes(), nil
}

func courseTracer() trace.Tracer {
	return otel.Tracer("github.com/noah-isme/gradebook-api/internal/service/course")
}

func dashboardCacheKey(owner string) string {
	return fmt.Sprintf("dashboard:owner:%s", owner)
}
