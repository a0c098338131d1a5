package storage

import (
	"os"

	"github.com/pagekeep/pagekeep/internal/config"
	"github.com/pagekeep/pagekeep/internal/model"
)

// DatabaseStrategy keeps content inline on the file record.
type DatabaseStrategy struct{}

var _ Strategy = (*DatabaseStrategy)(nil)

func NewDatabaseStrategy() *DatabaseStrategy {
	return &DatabaseStrategy{}
}

func (s *DatabaseStrategy) Name() string {
	return config.StorageDatabase
}

func (s *DatabaseStrategy) Save(docID, kind, mimeType string, data []byte) (*model.DocumentFile, error) {
	return &model.DocumentFile{
		DocumentID: docID,
		FileData:   data,
		MimeType:   mimeType,
	}, nil
}

func (s *DatabaseStrategy) Load(file *model.DocumentFile) ([]byte, error) {
	if len(file.FileData) > 0 {
		return file.FileData, nil
	}
	// Record written under the filesystem strategy before a switch.
	if file.FilePath != nil && *file.FilePath != "" {
		data, err := os.ReadFile(*file.FilePath)
		if err == nil {
			return data, nil
		}
	}
	return nil, ErrNoContent
}

func (s *DatabaseStrategy) Remove(file *model.DocumentFile) error {
	return nil
}
