package model

import (
	"time"

	"gorm.io/gorm"
)

// Document kinds. The library holds exactly two content kinds.
const (
	KindEpub = "epub"
	KindPdf  = "pdf"
)

type Document struct {
	gorm.Model
	ID                     string `gorm:"primaryKey;uuid;not null"`
	Title                  string `gorm:"size:500;not null"`
	Kind                   string `gorm:"column:type;size:10;not null"` // epub or pdf
	FileSize               int64
	UploadDate             time.Time
	LastOpened             *time.Time
	CurrentPage            *int
	TotalPages             *int
	CurrentCfi             *string `gorm:"type:text"`
	ReadingProgressPercent *float64
	ShelfID                *string `gorm:"uuid;index"`

	Metadata  *BookMetadata    `gorm:"foreignKey:DocumentID"`
	Bookmarks []Bookmark       `gorm:"foreignKey:DocumentID"`
	Sessions  []ReadingSession `gorm:"foreignKey:DocumentID"`
	Stats     *ReadingStats    `gorm:"foreignKey:DocumentID"`
	Goal      *ReadingGoal     `gorm:"foreignKey:DocumentID"`
	File      *DocumentFile    `gorm:"foreignKey:DocumentID"`
}

func (Document) TableName() string {
	return "documents"
}

// MimeTypeForKind returns the default mime type for a document kind.
func MimeTypeForKind(kind string) string {
	if kind == KindEpub {
		return "application/epub+zip"
	}
	return "application/pdf"
}
