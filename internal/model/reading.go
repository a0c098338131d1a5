package model

import (
	"time"

	"gorm.io/gorm"
)

// Bookmark marks a location in a document. The location format depends on
// the document kind (CFI for epub, page string for pdf).
type Bookmark struct {
	ID         string    `gorm:"primaryKey;uuid;not null"`
	DocumentID string    `gorm:"uuid;index;not null"`
	Location   string    `gorm:"type:text;not null"`
	Label      string    `gorm:"size:500"`
	Note       *string   `gorm:"type:text"`
	CreatedAt  time.Time
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

// ReadingSession is an immutable record of one reading interval.
type ReadingSession struct {
	ID         uint      `gorm:"primaryKey"`
	DocumentID string    `gorm:"uuid;index;not null"`
	StartedAt  time.Time `gorm:"index"`
	EndedAt    time.Time
	Duration   int64 // seconds
	PagesRead  int
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}

// ReadingStats is the per-document running aggregate, updated as sessions
// are recorded.
type ReadingStats struct {
	gorm.Model
	ID               string `gorm:"primaryKey;uuid;not null"`
	DocumentID       string `gorm:"uuid;uniqueIndex;not null"`
	TotalReadingTime int64  // seconds
	FirstOpenedAt    *time.Time
}

func (ReadingStats) TableName() string {
	return "reading_stats"
}

// ReadingGoal is a per-document daily-minutes target with a streak counter.
type ReadingGoal struct {
	gorm.Model
	ID            string `gorm:"primaryKey;uuid;not null"`
	DocumentID    string `gorm:"uuid;uniqueIndex;not null"`
	DailyMinutes  int
	CurrentStreak int `gorm:"default:0"`

	CompletedDays []ReadingGoalCompletedDay `gorm:"foreignKey:ReadingGoalID"`
}

func (ReadingGoal) TableName() string {
	return "reading_goals"
}

// ReadingGoalCompletedDay records one calendar date a goal was met,
// unique per (goal, date). Dates are plain ISO dates without a time part.
type ReadingGoalCompletedDay struct {
	ID            uint   `gorm:"primaryKey"`
	ReadingGoalID string `gorm:"uuid;uniqueIndex:idx_goal_date;not null"`
	CompletedDate string `gorm:"size:10;uniqueIndex:idx_goal_date;not null"`
}

func (ReadingGoalCompletedDay) TableName() string {
	return "reading_goal_completed_days"
}
