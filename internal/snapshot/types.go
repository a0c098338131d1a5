// Package snapshot builds, serializes and reconciles complete library
// snapshots. A snapshot carries every document with its owned children
// and every shelf; full backups also inline the binary payloads.
package snapshot

import "time"

// Snapshot is the transport envelope. It is never persisted. Fields may be
// absent in payloads from older exports and default to empty.
type Snapshot struct {
	ExportedAt string               `json:"exportedAt"`
	Metadata   []DocumentProjection `json:"metadata"`
	Files      []FileEntry          `json:"files,omitempty"`
	Shelves    []ShelfProjection    `json:"shelves,omitempty"`
}

// FileEntry carries one document's binary content as a data-URI token.
type FileEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

type ShelfProjection struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Color       string   `json:"color"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	DocumentIDs []string `json:"documentIds"`
	// Order defaults to 0 when absent.
	Order *int `json:"order,omitempty"`
}

type DocumentProjection struct {
	ID                     string               `json:"id"`
	Title                  string               `json:"title"`
	Kind                   string               `json:"type"`
	FileSize               int64                `json:"fileSize"`
	UploadDate             time.Time            `json:"uploadDate"`
	LastOpened             *time.Time           `json:"lastOpened,omitempty"`
	CurrentPage            *int                 `json:"currentPage,omitempty"`
	TotalPages             *int                 `json:"totalPages,omitempty"`
	CurrentCfi             *string              `json:"currentCfi,omitempty"`
	ReadingProgressPercent *float64             `json:"readingProgressPercent,omitempty"`
	ShelfID                *string              `json:"shelfId,omitempty"`
	Bookmarks              []BookmarkProjection `json:"bookmarks"`
	ReadingStats           *StatsProjection     `json:"readingStats,omitempty"`
	ReadingGoal            *GoalProjection      `json:"readingGoal,omitempty"`
	Metadata               *MetadataProjection  `json:"metadata,omitempty"`
}

type BookmarkProjection struct {
	ID        string     `json:"id,omitempty"`
	Location  string     `json:"location"`
	Label     string     `json:"label"`
	Note      *string    `json:"note,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type SessionProjection struct {
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	Duration  int64     `json:"duration"`
	PagesRead int       `json:"pagesRead"`
}

type StatsProjection struct {
	TotalReadingTime int64               `json:"totalReadingTime"`
	Sessions         []SessionProjection `json:"sessions"`
	FirstOpenedAt    *time.Time          `json:"firstOpenedAt,omitempty"`
}

type GoalProjection struct {
	DailyMinutes  int      `json:"dailyMinutes"`
	CompletedDays []string `json:"completedDays"`
	CurrentStreak int      `json:"currentStreak"`
}

type MetadataProjection struct {
	Author         *string  `json:"author,omitempty"`
	Publisher      *string  `json:"publisher,omitempty"`
	PublishYear    *int     `json:"publishYear,omitempty"`
	ISBN           *string  `json:"isbn,omitempty"`
	CoverURL       *string  `json:"coverUrl,omitempty"`
	Description    *string  `json:"description,omitempty"`
	PageCount      *int     `json:"pageCount,omitempty"`
	Subjects       []string `json:"subjects,omitempty"`
	OpenLibraryKey *string  `json:"openLibraryKey,omitempty"`
}

// RestoreResult reports what a restore inserted and what it left alone.
type RestoreResult struct {
	ShelvesInserted   int `json:"shelvesInserted"`
	DocumentsInserted int `json:"documentsInserted"`
	DocumentsSkipped  int `json:"documentsSkipped"`
	SubjectsCreated   int `json:"subjectsCreated"`
}
