package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gradebook-api/internal/grading"
	"github.com/noah-isme/gradebook-api/internal/models"
)

func setupGradebookDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.EvaluationGroup{},
		&models.ScoreItem{},
		&models.ActivityLog{},
	))
	return db
}

func sampleCourse(owner, code string) *grading.Course {
	course := grading.NewCourse(code, "Course "+code, owner)
	course.AddEvaluationGroup("Quizzes", 30, 3, 2)
	course.AddEvaluationGroupAllCounted("Final", 70, 1)
	return course
}

func TestUserRepositorySaveUpsertsByUsername(t *testing.T) {
	db := setupGradebookDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.User{Username: "alice", PasswordHash: "first"}))
	require.NoError(t, repo.Save(ctx, &models.User{Username: "alice", PasswordHash: "second"}))

	user, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "second", user.PasswordHash)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUserRepositoryGetMissing(t *testing.T) {
	repo := NewUserRepository(setupGradebookDB(t))

	_, err := repo.GetByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCourseRepositoryRoundTripKeepsGrade(t *testing.T) {
	db := setupGradebookDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	course := sampleCourse("alice", "CS101")
	course.UpdateScore(0, 0, 10, 10)
	course.UpdateScore(0, 1, 5, 10)
	course.UpdateScore(0, 2, 0, 10)
	course.UpdateScore(1, 0, 60, 80)

	record := models.CourseFromDomain(course)
	require.NoError(t, repo.Save(ctx, &record))
	require.NotZero(t, record.ID)

	loaded, err := repo.GetByOwnerAndCode(ctx, "alice", "CS101")
	require.NoError(t, err)
	require.Len(t, loaded.Groups, 2)
	require.Equal(t, "Quizzes", loaded.Groups[0].Name)
	require.Len(t, loaded.Groups[0].Items, 3)
	require.Equal(t, "Quizzes 1", loaded.Groups[0].Items[0].Label)

	restored := loaded.ToDomain()
	require.InDelta(t, course.CurrentGrade(), restored.CurrentGrade(), 1e-9)
}

func TestCourseRepositorySaveOverwritesWholeCourse(t *testing.T) {
	db := setupGradebookDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	course := sampleCourse("alice", "CS101")
	first := models.CourseFromDomain(course)
	require.NoError(t, repo.Save(ctx, &first))

	course.UpdateScore(1, 0, 40, 80)
	second := models.CourseFromDomain(course)
	require.NoError(t, repo.Save(ctx, &second))
	require.Equal(t, first.ID, second.ID)

	var groups, items int64
	require.NoError(t, db.Model(&models.EvaluationGroup{}).Count(&groups).Error)
	require.NoError(t, db.Model(&models.ScoreItem{}).Count(&items).Error)
	require.Equal(t, int64(2), groups)
	require.Equal(t, int64(4), items)

	loaded, err := repo.GetByOwnerAndCode(ctx, "alice", "CS101")
	require.NoError(t, err)
	require.NotNil(t, loaded.Groups[1].Items[0].Score)
	require.Equal(t, 40.0, *loaded.Groups[1].Items[0].Score)
	require.InDelta(t, course.CurrentGrade(), loaded.ToDomain().CurrentGrade(), 1e-9)
}

func TestCourseRepositoryListByOwnerPartitionsByUser(t *testing.T) {
	db := setupGradebookDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	for _, c := range []*grading.Course{
		sampleCourse("alice", "MATH2"),
		sampleCourse("alice", "CS101"),
		sampleCourse("bob", "CS101"),
	} {
		record := models.CourseFromDomain(c)
		require.NoError(t, repo.Save(ctx, &record))
	}

	courses, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.Equal(t, "CS101", courses[0].Code)
	require.Equal(t, "MATH2", courses[1].Code)
	require.Len(t, courses[0].Groups, 2)

	exists, err := repo.Exists(ctx, "bob", "CS101")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(ctx, "bob", "MATH2")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = repo.GetByOwnerAndCode(ctx, "bob", "MATH2")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestActivityLogRepositoryFiltersByActor(t *testing.T) {
	db := setupGradebookDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	entries := []models.ActivityLog{
		{Actor: "alice", Action: models.ActivityCourseCreated, EntityType: "course", EntityID: "CS101"},
		{Actor: "alice", Action: models.ActivityScoresUpdated, EntityType: "course", EntityID: "CS101"},
		{Actor: "bob", Action: models.ActivityCourseCreated, EntityType: "course", EntityID: "BIO1"},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	items, total, err := repo.List(ctx, ActivityLogFilter{Actor: "alice", PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 1)

	items, total, err = repo.List(ctx, ActivityLogFilter{Action: models.ActivityCourseCreated})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 2)
}
