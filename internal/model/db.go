package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Shelf{},
		&Document{},
		&BookMetadata{},
		&Subject{},
		&Bookmark{},
		&ReadingSession{},
		&ReadingStats{},
		&ReadingGoal{},
		&ReadingGoalCompletedDay{},
		&DocumentFile{},
	)
}
