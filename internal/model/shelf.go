package model

import "gorm.io/gorm"

// Shelf is a named, colored container with a display order. The membership
// relation is owned by Document.ShelfID; Shelf.Documents is derived.
type Shelf struct {
	gorm.Model
	ID           string `gorm:"primaryKey;uuid;not null"`
	Name         string `gorm:"size:200;not null"`
	Color        string `gorm:"size:7"`
	DisplayOrder int

	Documents []Document `gorm:"foreignKey:ShelfID"`
}

func (Shelf) TableName() string {
	return "shelves"
}
