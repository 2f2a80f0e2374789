package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Connect opens the database selected by driver.
func Connect(driver, dsn string) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "":
		return ConnectSQLite(dsn)
	case DriverPostgres, "postgresql":
		return ConnectPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// gormConfig stores timestamps in UTC and translates driver errors such as
// unique violations into gorm sentinels.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Migrate creates or updates the gradebook schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.EvaluationGroup{},
		&models.ScoreItem{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
