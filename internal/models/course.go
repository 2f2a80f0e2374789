package models

import (
	"time"

	"github.com/noah-isme/gradebook-api/internal/grading"
)

// CourseSchemaVersion is the version stamped on every persisted course.
const CourseSchemaVersion = 1

// Course is the stored form of a grading.Course, keyed by (OwnerUsername, Code).
type Course struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	OwnerUsername string            `gorm:"size:64;not null;uniqueIndex:idx_course_owner_code,priority:1" json:"owner_username"`
	Code          string            `gorm:"size:64;not null;uniqueIndex:idx_course_owner_code,priority:2" json:"code"`
	Name          string            `gorm:"size:255;not null" json:"name"`
	SchemaVersion int               `gorm:"not null;default:1" json:"schema_version"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Groups        []EvaluationGroup `gorm:"constraint:OnDelete:CASCADE" json:"groups"`
}

// EvaluationGroup is one weighted category of a stored course.
type EvaluationGroup struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	CourseID      uint        `gorm:"index;not null" json:"course_id"`
	Position      int         `gorm:"not null" json:"position"`
	Name          string      `gorm:"size:255" json:"name"`
	WeightPercent float64     `gorm:"not null" json:"weight_percent"`
	TotalItems    int         `gorm:"not null" json:"total_items"`
	ItemsToCount  int         `gorm:"not null" json:"items_to_count"`
	Items         []ScoreItem `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"items"`
}

// ScoreItem is one stored score slot. A nil Score means ungraded.
type ScoreItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	GroupID   uint     `gorm:"index;not null" json:"group_id"`
	Position  int      `gorm:"not null" json:"position"`
	Label     string   `gorm:"size:255" json:"label"`
	Score     *float64 `json:"score"`
	MaxPoints float64  `gorm:"not null;default:1" json:"max_points"`
}

// CourseFromDomain converts a domain course into its stored form.
func CourseFromDomain(course *grading.Course) Course {
	record := Course{
		OwnerUsername: course.OwnerKey,
		Code:          course.ID,
		Name:          course.Name,
		SchemaVersion: CourseSchemaVersion,
		Groups:        make([]EvaluationGroup, 0, len(course.Groups)),
	}

	for groupIdx, group := range course.Groups {
		storedGroup := EvaluationGroup{
			Position:      groupIdx,
			Name:          group.Name,
			WeightPercent: group.WeightPercent,
			TotalItems:    group.TotalItems,
			ItemsToCount:  group.ItemsToCount,
			Items:         make([]ScoreItem, 0, len(group.Items)),
		}
		for itemIdx, item := range group.Items {
			stored := ScoreItem{
				Position:  itemIdx,
				Label:     item.Label(),
				MaxPoints: item.MaxPoints(),
			}
			if item.IsGraded() {
				score := item.Score()
				stored.Score = &score
			}
			storedGroup.Items = append(storedGroup.Items, stored)
		}
		record.Groups = append(record.Groups, storedGroup)
	}

	return record
}

// ToDomain rebuilds the domain course. Groups and items must already be
// ordered by Position.
func (c Course) ToDomain() *grading.Course {
	course := grading.NewCourse(c.Code, c.Name, c.OwnerUsername)

	for _, stored := range c.Groups {
		group := &grading.EvaluationGroup{
			Name:          stored.Name,
			WeightPercent: stored.WeightPercent,
			TotalItems:    stored.TotalItems,
			ItemsToCount:  stored.ItemsToCount,
			Items:         make([]grading.ScoreItem, 0, len(stored.Items)),
		}
		for _, storedItem := range stored.Items {
			item := grading.NewScoreItem(storedItem.Label)
			if storedItem.Score != nil {
				item.SetScore(*storedItem.Score, storedItem.MaxPoints)
			}
			group.Items = append(group.Items, item)
		}
		course.Groups = append(course.Groups, group)
	}

	return course
}
