package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity actions recorded by the gradebook.
const (
	ActivityCourseCreated  = "course.created"
	ActivityCourseImported = "course.imported"
	ActivityScoresUpdated  = "scores.updated"
)

// ActivityLog captures auditable events triggered by a user on their courses.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Actor      string            `gorm:"size:64;index;not null" json:"actor"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   string            `gorm:"size:64" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
