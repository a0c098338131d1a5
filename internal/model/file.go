package model

import "time"

// DocumentFile holds a document's binary content: either a path on the
// local filesystem or an inline blob, depending on the storage strategy
// that wrote it. The schema does not force the two exclusive; readers
// prefer whichever side is populated.
type DocumentFile struct {
	ID         string  `gorm:"primaryKey;uuid;not null"`
	DocumentID string  `gorm:"uuid;uniqueIndex;not null"`
	FilePath   *string `gorm:"type:text"`
	FileData   []byte
	MimeType   string `gorm:"size:100;not null"`
	CreatedAt  time.Time
}

func (DocumentFile) TableName() string {
	return "document_files"
}

// HasData reports whether any binary content is reachable from this record.
func (f *DocumentFile) HasData() bool {
	return f != nil && (len(f.FileData) > 0 || (f.FilePath != nil && *f.FilePath != ""))
}
