// Package storage decides where a document's binary content physically
// lives. Exactly one strategy is active per deployment; it is constructed
// from configuration once and passed in, never read from the environment
// inside inner logic.
package storage

import (
	"errors"

	"github.com/pagekeep/pagekeep/internal/config"
	"github.com/pagekeep/pagekeep/internal/model"
)

var ErrNoContent = errors.New("file record has no reachable content")

// Strategy abstracts the physical home of document bytes.
type Strategy interface {
	// Name returns the configuration value this strategy answers to.
	Name() string
	// Save places the content and returns an unsaved DocumentFile record
	// describing where it went.
	Save(docID, kind, mimeType string, data []byte) (*model.DocumentFile, error)
	// Load resolves a file record into raw bytes. A record written by the
	// other strategy is still readable; each strategy prefers its own shape
	// and falls back to the other.
	Load(file *model.DocumentFile) ([]byte, error)
	// Remove deletes any on-disk content the record points at.
	Remove(file *model.DocumentFile) error
}

// ForConfig constructs the active strategy from configuration.
func ForConfig(cfg config.Config) (Strategy, error) {
	switch cfg.StorageStrategy {
	case config.StorageDatabase:
		return NewDatabaseStrategy(), nil
	case config.StorageFilesystem:
		return NewFilesystemStrategy(cfg.StorageDir), nil
	}
	return nil, errors.New("unknown storage strategy: " + cfg.StorageStrategy)
}
