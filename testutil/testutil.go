// Package testutil sets up throwaway databases and fixtures for tests.
package testutil

import (
	"path/filepath"
	"patron-review-api/config"
	"patron-review-api/models"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a migrated sqlite database in a temp dir and installs it
// as config.DB for the duration of the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	previous := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = previous
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Date returns the UTC instant for the given calendar date and time.
func Date(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func CreatePatron(t *testing.T, db *gorm.DB, telegramID string, isAdmin bool) models.Patron {
	t.Helper()
	p := models.Patron{
		TelegramID:   telegramID,
		TelegramData: datatypes.JSONMap{"id": telegramID, "username": "user" + telegramID},
		IsAdmin:      isAdmin,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create patron %s: %v", telegramID, err)
	}
	return p
}

func CreateWindow(t *testing.T, db *gorm.DB, title string, start, end time.Time) models.TimeWindow {
	t.Helper()
	w := models.TimeWindow{Title: title, Start: start, End: end}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("create window %s: %v", title, err)
	}
	return w
}

func CreateApplication(t *testing.T, db *gorm.DB, window models.TimeWindow, email string, submittedAt time.Time) models.Application {
	t.Helper()
	a := models.Application{
		SubmittedAt:  submittedAt,
		SessionID:    "session-" + email,
		Email:        email,
		FullName:     "Applicant " + email,
		TimeWindowID: window.ID,
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("create application %s: %v", email, err)
	}
	return a
}
