package repository

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kurakani/kurakani/models"
)

// newTestDB opens a fresh in-memory sqlite database, isolated per test via a
// named shared-cache DSN, and migrates both tables.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps the in-memory database alive for the whole test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.Article{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func testArticle(title, content string) models.Article {
	return models.Article{
		Title:       title,
		Content:     content,
		Source:      "UnitTest",
		PublishedAt: "2025-06-12T00:00:00Z",
		Country:     "us",
		Category:    "technology",
	}
}
