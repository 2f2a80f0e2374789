package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/gradebook-api/internal/dto"
	"github.com/noah-isme/gradebook-api/internal/grading"
)

// RequiredTotalWeight is the exact weight sum a course definition must reach.
const RequiredTotalWeight = 100.0

var (
	// ErrWeightTotalInvalid indicates the group weights do not add up to exactly 100.
	ErrWeightTotalInvalid = errors.New("total weight must equal 100.0%")
	// ErrInvalidBestOfN indicates a group counts more items than it has.
	ErrInvalidBestOfN = errors.New("invalid best-of-n settings")
)

type courseDefinitionValidator struct {
	validator *validator.Validate
	sanitizer *bluemonday.Policy
}

func newCourseDefinitionValidator(validate *validator.Validate) courseDefinitionValidator {
	return courseDefinitionValidator{
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// build validates the definition in full and only then constructs the course,
// so a rejected definition never yields a partial course.
func (v courseDefinitionValidator) build(owner string, payload dto.CourseCreateRequest) (*grading.Course, error) {
	payload = v.normalize(payload)

	if err := v.validator.Struct(payload); err != nil {
		return nil, err
	}

	var totalWeight float64
	for _, group := range payload.Groups {
		if group.ItemsToCount != nil && *group.ItemsToCount > group.TotalItems {
			return nil, fmt.Errorf("%w for %q", ErrInvalidBestOfN, group.Name)
		}
		totalWeight += group.WeightPercent
	}

	// Exact comparison is intentional: 33.3+33.3+33.4 is rejected if it does
	// not sum to 100.0 in float64.
	if totalWeight != RequiredTotalWeight {
		return nil, fmt.Errorf("%w (got %.1f%%)", ErrWeightTotalInvalid, totalWeight)
	}

	course := grading.NewCourse(payload.Code, payload.Name, owner)
	for _, group := range payload.Groups {
		if group.ItemsToCount == nil {
			course.AddEvaluationGroupAllCounted(group.Name, group.WeightPercent, group.TotalItems)
			continue
		}
		course.AddEvaluationGroup(group.Name, group.WeightPercent, group.TotalItems, *group.ItemsToCount)
	}

	return course, nil
}

func (v courseDefinitionValidator) normalize(payload dto.CourseCreateRequest) dto.CourseCreateRequest {
	normalized := dto.CourseCreateRequest{
		Code: v.clean(payload.Code),
		Name: v.clean(payload.Name),
	}
	if payload.Groups != nil {
		normalized.Groups = make([]dto.EvaluationGroupRequest, 0, len(payload.Groups))
	}
	for _, group := range payload.Groups {
		group.Name = v.clean(group.Name)
		normalized.Groups = append(normalized.Groups, group)
	}
	return normalized
}

// clean strips markup from user-entered names while keeping plain text such
// as "Labs & Quizzes" readable.
func (v courseDefinitionValidator) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(v.sanitizer.Sanitize(strings.TrimSpace(value))))
}
