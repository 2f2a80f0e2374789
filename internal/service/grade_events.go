package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gradebook-api/internal/observability"
)

// GradeUpdatedEvent is emitted after a course's scores are saved.
type GradeUpdatedEvent struct {
	Owner       string    `json:"owner"`
	CourseCode  string    `json:"course_code"`
	Grade       float64   `json:"grade"`
	LetterGrade string    `json:"letter_grade"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// GradePublisher fans out grade changes to interested consumers.
type GradePublisher interface {
	PublishGradeUpdated(ctx context.Context, event GradeUpdatedEvent) error
}

type natsGradePublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSGradePublisher publishes grade events on subject. A nil connection
// yields a publisher that drops events.
func NewNATSGradePublisher(conn *nats.Conn, subject string, logger zerolog.Logger) GradePublisher {
	return &natsGradePublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "grade_publisher").Logger(),
	}
}

func (p *natsGradePublisher) PublishGradeUpdated(_ context.Context, event GradeUpdatedEvent) error {
	if p.conn == nil || p.subject == "" {
		observability.GradeEventsPublished().WithLabelValues("skipped").Inc()
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode grade event: %w", err)
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		observability.GradeEventsPublished().WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to publish grade event: %w", err)
	}

	observability.GradeEventsPublished().WithLabelValues("published").Inc()
	p.logger.Debug().Str("owner", event.Owner).Str("course", event.CourseCode).Msg("grade event published")
	return nil
}
