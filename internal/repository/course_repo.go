package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// CourseRepository persists whole course snapshots keyed by owner and code.
type CourseRepository interface {
	Save(ctx context.Context, course *models.Course) error
	GetByOwnerAndCode(ctx context.Context, owner, code string) (models.Course, error)
	ListByOwner(ctx context.Context, owner string) ([]models.Course, error)
	Exists(ctx context.Context, owner, code string) (bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// Save overwrites the stored course with the same (owner, code), replacing all
// of its groups and items in one transaction.
func (r *courseRepository) Save(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Course
		err := tx.Where("owner_username = ? AND code = ?", course.OwnerUsername, course.Code).First(&existing).Error
		switch {
		case err == nil:
			if err := deleteCourseChildren(tx, existing.ID); err != nil {
				return err
			}
			course.ID = existing.ID
			course.CreatedAt = existing.CreatedAt
		case errors.Is(err, gorm.ErrRecordNotFound):
			course.ID = 0
		default:
			return err
		}

		if course.SchemaVersion == 0 {
			course.SchemaVersion = models.CourseSchemaVersion
		}
		resetChildKeys(course)

		return tx.Save(course).Error
	})
}

func (r *courseRepository) GetByOwnerAndCode(ctx context.Context, owner, code string) (models.Course, error) {
	var course models.Course
	err := withCourseChildren(r.db.WithContext(ctx)).
		Where("owner_username = ? AND code = ?", owner, code).
		First(&course).Error
	if err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) ListByOwner(ctx context.Context, owner string) ([]models.Course, error) {
	var courses []models.Course
	err := withCourseChildren(r.db.WithContext(ctx)).
		Where("owner_username = ?", owner).
		Order("code ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) Exists(ctx context.Context, owner, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).
		Where("owner_username = ? AND code = ?", owner, code).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func withCourseChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Groups", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Groups.Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") })
}

func deleteCourseChildren(tx *gorm.DB, courseID uint) error {
	var groupIDs []uint
	if err := tx.Model(&models.EvaluationGroup{}).Where("course_id = ?", courseID).Pluck("id", &groupIDs).Error; err != nil {
		return err
	}
	if len(groupIDs) == 0 {
		return nil
	}
	if err := tx.Where("group_id IN ?", groupIDs).Delete(&models.ScoreItem{}).Error; err != nil {
		return err
	}
	return tx.Where("course_id = ?", courseID).Delete(&models.EvaluationGroup{}).Error
}

func resetChildKeys(course *models.Course) {
	for i := range course.Groups {
		course.Groups[i].ID = 0
		course.Groups[i].CourseID = 0
		for j := range course.Groups[i].Items {
			course.Groups[i].Items[j].ID = 0
			course.Groups[i].Items[j].GroupID = 0
		}
	}
}
