package model

import "gorm.io/gorm"

// BookMetadata holds catalog information for a document. Subjects are shared
// across the whole store and attached by reference.
type BookMetadata struct {
	gorm.Model
	ID             string  `gorm:"primaryKey;uuid;not null"`
	DocumentID     string  `gorm:"uuid;uniqueIndex;not null"`
	Author         *string `gorm:"size:500"`
	Publisher      *string `gorm:"size:500"`
	PublishYear    *int
	ISBN           *string `gorm:"size:20"`
	CoverURL       *string `gorm:"type:text"`
	Description    *string `gorm:"type:text"`
	PageCount      *int
	OpenLibraryKey *string `gorm:"size:100"`

	Subjects []*Subject `gorm:"many2many:book_metadata_subjects"`
}

func (BookMetadata) TableName() string {
	return "book_metadata"
}

// Subject is a deduplicated tag, unique by name across the store.
type Subject struct {
	ID   string `gorm:"primaryKey;uuid;not null"`
	Name string `gorm:"size:200;uniqueIndex;not null"`
}

func (Subject) TableName() string {
	return "subjects"
}
