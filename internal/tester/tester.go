// Package tester provides test database and store setup helpers.
package tester

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pagekeep/pagekeep/internal/model"
	"github.com/pagekeep/pagekeep/internal/store"
)

// Setup opens a migrated sqlite database in a per-test temp dir. The file
// is removed with the test's temp dir.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "pagekeep.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// SetupStore returns a gorm-backed store over a fresh test database.
func SetupStore(t *testing.T) store.Store {
	t.Helper()
	return store.NewGormStore(Setup(t))
}

// UploadDir returns a temp dir for storage strategy tests.
func UploadDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create upload dir: %v", err)
	}
	return dir
}
