package dto

import (
	"time"

	"github.com/noah-isme/gradebook-api/internal/grading"
	"github.com/noah-isme/gradebook-api/internal/models"
)

// EvaluationGroupRequest defines one weighted group of a new course. A nil
// ItemsToCount means every item counts.
type EvaluationGroupRequest struct {
	Name          string  `json:"name" validate:"max=120"`
	WeightPercent float64 `json:"weight_percent" validate:"gt=0,lte=100"`
	TotalItems    int     `json:"total_items" validate:"gt=0,lte=1000"`
	ItemsToCount  *int    `json:"items_to_count,omitempty" validate:"omitempty,gt=0,lte=1000"`
}

// CourseCreateRequest describes the payload for creating a course definition.
type CourseCreateRequest struct {
	Code   string                   `json:"code" validate:"required,max=64"`
	Name   string                   `json:"name" validate:"required,max=255"`
	Groups []EvaluationGroupRequest `json:"groups" validate:"required,min=1,dive"`
}

// ScoreUpdateRequest sets a single item's score. A nil Score clears the item;
// a nil MaxPoints defaults to 1.
type ScoreUpdateRequest struct {
	GroupIndex int      `json:"group_index"`
	ItemIndex  int      `json:"item_index"`
	Score      *float64 `json:"score"`
	MaxPoints  *float64 `json:"max_points"`
}

// ScoreBatchRequest applies several score edits before saving once.
type ScoreBatchRequest struct {
	Updates []ScoreUpdateRequest `json:"updates" validate:"required,min=1"`
}

// ScoreItemResponse is the read-only projection of one item.
type ScoreItemResponse struct {
	Index      int      `json:"index"`
	Label      string   `json:"label"`
	Graded     bool     `json:"graded"`
	Score      *float64 `json:"score"`
	MaxPoints  *float64 `json:"max_points"`
	Normalized float64  `json:"normalized"`
}

// EvaluationGroupResponse is the read-only projection of one group.
type EvaluationGroupResponse struct {
	Index         int                 `json:"index"`
	Name          string              `json:"name"`
	WeightPercent float64             `json:"weight_percent"`
	WeightShare   float64             `json:"weight_share"`
	TotalItems    int                 `json:"total_items"`
	ItemsToCount  int                 `json:"items_to_count"`
	GradedItems   int                 `json:"graded_items"`
	Contribution  float64             `json:"contribution"`
	Items         []ScoreItemResponse `json:"items"`
}

// CourseDetailResponse is the full projection rendered on the course screen.
type CourseDetailResponse struct {
	Code        string                    `json:"code"`
	Name        string                    `json:"name"`
	Owner       string                    `json:"owner"`
	Grade       float64                   `json:"grade"`
	RawGrade    float64                   `json:"raw_grade"`
	LetterGrade string                    `json:"letter_grade"`
	TotalWeight float64                   `json:"total_weight"`
	Groups      []EvaluationGroupResponse `json:"groups"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// CourseSummaryResponse is one dashboard card.
type CourseSummaryResponse struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Grade       float64   `json:"grade"`
	LetterGrade string    `json:"letter_grade"`
	GroupCount  int       `json:"group_count"`
	GradedItems int       `json:"graded_items"`
	TotalItems  int       `json:"total_items"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DashboardResponse lists every course of the signed-in user.
type DashboardResponse struct {
	Courses []CourseSummaryResponse `json:"courses"`
}

// NewCourseDetailResponse projects a domain course for rendering.
func NewCourseDetailResponse(course *grading.Course, updatedAt time.Time) CourseDetailResponse {
	grade := course.CurrentGrade()
	totalWeight := course.TotalWeight()

	groups := make([]EvaluationGroupResponse, 0, len(course.Groups))
	for groupIdx, group := range course.Groups {
		items := make([]ScoreItemResponse, 0, len(group.Items))
		for itemIdx, item := range group.Items {
			projected := ScoreItemResponse{
				Index:      itemIdx,
				Label:      item.Label(),
				Graded:     item.IsGraded(),
				Normalized: item.NormalizedScore(),
			}
			if item.IsGraded() {
				score, maxPoints := item.Score(), item.MaxPoints()
				projected.Score = &score
				projected.MaxPoints = &maxPoints
			}
			items = append(items, projected)
		}

		share := 0.0
		if totalWeight > 0 {
			share = group.WeightPercent / totalWeight
		}

		groups = append(groups, EvaluationGroupResponse{
			Index:         groupIdx,
			Name:          group.Name,
			WeightPercent: group.WeightPercent,
			WeightShare:   share,
			TotalItems:    group.TotalItems,
			ItemsToCount:  group.ItemsToCount,
			GradedItems:   group.GradedCount(),
			Contribution:  group.Contribution() * 100,
			Items:         items,
		})
	}

	return CourseDetailResponse{
		Code:        course.ID,
		Name:        course.Name,
		Owner:       course.OwnerKey,
		Grade:       grading.RoundForDisplay(grade),
		RawGrade:    grade,
		LetterGrade: grading.LetterGrade(grade),
		TotalWeight: totalWeight,
		Groups:      groups,
		UpdatedAt:   updatedAt,
	}
}

// NewCourseSummaryResponse projects a stored course into a dashboard card.
func NewCourseSummaryResponse(record models.Course) CourseSummaryResponse {
	course := record.ToDomain()
	grade := course.CurrentGrade()

	summary := CourseSummaryResponse{
		Code:        course.ID,
		Name:        course.Name,
		Grade:       grading.RoundForDisplay(grade),
		LetterGrade: grading.LetterGrade(grade),
		GroupCount:  len(course.Groups),
		UpdatedAt:   record.UpdatedAt,
	}
	for _, group := range course.Groups {
		summary.GradedItems += group.GradedCount()
		summary.TotalItems += len(group.Items)
	}

	return summary
}
