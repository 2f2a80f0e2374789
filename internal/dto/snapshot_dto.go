package dto

import (
	"time"

	"github.com/noah-isme/gradebook-api/internal/grading"
	"github.com/noah-isme/gradebook-api/internal/models"
)

// ScoreItemSnapshot is one item inside an exported course document.
type ScoreItemSnapshot struct {
	Label     string   `json:"label"`
	Score     *float64 `json:"score"`
	MaxPoints float64  `json:"max_points"`
}

// EvaluationGroupSnapshot is one group inside an exported course document.
type EvaluationGroupSnapshot struct {
	Name          string              `json:"name"`
	WeightPercent float64             `json:"weight_percent"`
	TotalItems    int                 `json:"total_items"`
	ItemsToCount  int                 `json:"items_to_count"`
	Items         []ScoreItemSnapshot `json:"items"`
}

// CourseSnapshot is the portable, versioned course document used for export and import.
type CourseSnapshot struct {
	SchemaVersion int                       `json:"schema_version"`
	Code          string                    `json:"code"`
	Name          string                    `json:"name"`
	ExportedAt    time.Time                 `json:"exported_at"`
	Groups        []EvaluationGroupSnapshot `json:"groups"`
}

// NewCourseSnapshot builds the export document for a course.
func NewCourseSnapshot(course *grading.Course, exportedAt time.Time) CourseSnapshot {
	record := models.CourseFromDomain(course)

	snapshot := CourseSnapshot{
		SchemaVersion: record.SchemaVersion,
		Code:          record.Code,
		Name:          record.Name,
		ExportedAt:    exportedAt,
		Groups:        make([]EvaluationGroupSnapshot, 0, len(record.Groups)),
	}
	for _, group := range record.Groups {
		items := make([]ScoreItemSnapshot, 0, len(group.Items))
		for _, item := range group.Items {
			items = append(items, ScoreItemSnapshot{
				Label:     item.Label,
				Score:     item.Score,
				MaxPoints: item.MaxPoints,
			})
		}
		snapshot.Groups = append(snapshot.Groups, EvaluationGroupSnapshot{
			Name:          group.Name,
			WeightPercent: group.WeightPercent,
			TotalItems:    group.TotalItems,
			ItemsToCount:  group.ItemsToCount,
			Items:         items,
		})
	}

	return snapshot
}

// CreateRequest extracts the course definition carried by the snapshot.
func (s CourseSnapshot) CreateRequest() CourseCreateRequest {
	req := CourseCreateRequest{
		Code:   s.Code,
		Name:   s.Name,
		Groups: make([]EvaluationGroupRequest, 0, len(s.Groups)),
	}
	for _, group := range s.Groups {
		count := group.ItemsToCount
		req.Groups = append(req.Groups, EvaluationGroupRequest{
			Name:          group.Name,
			WeightPercent: group.WeightPercent,
			TotalItems:    group.TotalItems,
			ItemsToCount:  &count,
		})
	}
	return req
}
