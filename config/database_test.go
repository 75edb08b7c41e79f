package config

import (
	"io"
	"path/filepath"
	"patron-review-api/models"
	"testing"
)

func countPatrons(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := DB.Model(&models.Patron{}).Count(&n).Error; err != nil {
		t.Fatalf("count patrons: %v", err)
	}
	return n
}

func closeDB(t *testing.T) {
	t.Helper()
	if sqlDB, err := DB.DB(); err == nil {
		sqlDB.Close()
	}
}

func TestConnectDB_KeepsDataWhenRecreateIsSet(t *testing.T) {
	previousApp, previousDB, previousWriter := App, DB, LogWriter
	t.Cleanup(func() { App, DB, LogWriter = previousApp, previousDB, previousWriter })

	LogWriter = io.Discard
	App = Settings{
		DBDriver:         "sqlite",
		SQLitePath:       filepath.Join(t.TempDir(), "review.db"),
		RecreateDatabase: true,
	}

	ConnectDB()
	if err := DB.Create(&models.Patron{TelegramID: "1"}).Error; err != nil {
		t.Fatalf("create patron: %v", err)
	}
	closeDB(t)

	ConnectDB()
	if n := countPatrons(t); n != 1 {
		t.Fatalf("ConnectDB dropped data: %d patrons left", n)
	}
	closeDB(t)

	InitDB()
	defer closeDB(t)
	if n := countPatrons(t); n != 0 {
		t.Fatalf("InitDB with RECREATE_DATABASE kept %d patrons", n)
	}
}
