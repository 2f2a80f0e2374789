package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNATSGradePublisherWithoutConnectionIsNoop(t *testing.T) {
	publisher := NewNATSGradePublisher(nil, "gradebook.grade.updated", zerolog.Nop())

	err := publisher.PublishGradeUpdated(context.Background(), GradeUpdatedEvent{Owner: "alice", CourseCode: "MATH2"})
	require.NoError(t, err)
}

func TestGradeUpdatedEventEncoding(t *testing.T) {
	event := GradeUpdatedEvent{
		Owner:       "alice",
		CourseCode:  "MATH2",
		Grade:       85,
		LetterGrade: "B+",
		OccurredAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)
	require.JSONEq(t, `{"owner":"alice","course_code":"MATH2","grade":85,"letter_grade":"B+","occurred_at":"2024-01-02T03:04:05Z"}`, string(payload))
}
