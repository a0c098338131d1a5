package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/config"
	"github.com/pagekeep/pagekeep/internal/model"
)

// FilesystemStrategy writes content to files under a configured directory.
type FilesystemStrategy struct {
	dir string
}

var _ Strategy = (*FilesystemStrategy)(nil)

func NewFilesystemStrategy(dir string) *FilesystemStrategy {
	return &FilesystemStrategy{dir: dir}
}

func (s *FilesystemStrategy) Name() string {
	return config.StorageFilesystem
}

// Save writes the bytes to a fresh unique filename under the storage dir.
func (s *FilesystemStrategy) Save(docID, kind, mimeType string, data []byte) (*model.DocumentFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), docID, kind)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write document content: %w", err)
	}

	return &model.DocumentFile{
		DocumentID: docID,
		FilePath:   &path,
		MimeType:   mimeType,
	}, nil
}

func (s *FilesystemStrategy) Load(file *model.DocumentFile) ([]byte, error) {
	if file.FilePath != nil && *file.FilePath != "" {
		data, err := os.ReadFile(*file.FilePath)
		if err == nil {
			return data, nil
		}
		logrus.Warnf("content missing on disk for document %s: %v", file.DocumentID, err)
	}
	if len(file.FileData) > 0 {
		return file.FileData, nil
	}
	return nil, ErrNoContent
}

func (s *FilesystemStrategy) Remove(file *model.DocumentFile) error {
	if file == nil || file.FilePath == nil || *file.FilePath == "" {
		return nil
	}
	err := os.Remove(*file.FilePath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
