package dto

import (
	"time"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// ActivityListRequest captures paging for the activity feed.
type ActivityListRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ActivityResponse is one audit entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse is a page of the caller's activity.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	var metadata map[string]interface{}
	if len(entry.Metadata) > 0 {
		metadata = map[string]interface{}(entry.Metadata)
	}

	return ActivityResponse{
		ID:         entry.ID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
		CreatedAt:  entry.CreatedAt,
	}
}
