package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/pagekeep/pagekeep/internal/model"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm's sentinel so callers can errors.Is against either store backend.
var ErrNotFound = gorm.ErrRecordNotFound

type Store interface {
	DocumentStore
	ShelfStore
	SubjectStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type DocumentStore interface {
	// CreateDocument inserts a new document row.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document by ID with all owned children loaded.
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	// ListDocuments retrieves all documents, newest upload first, hydrated.
	ListDocuments(ctx context.Context) ([]*model.Document, error)
	// UpdateDocument persists changes to a document row.
	UpdateDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument removes a document and every owned child record.
	DeleteDocument(ctx context.Context, id string) error
	// DocumentExists reports whether a document row with the ID exists.
	DocumentExists(ctx context.Context, id string) (bool, error)

	CreateStats(ctx context.Context, stats *model.ReadingStats) error
	GetStats(ctx context.Context, docID string) (*model.ReadingStats, error)
	SaveStats(ctx context.Context, stats *model.ReadingStats) error

	CreateSession(ctx context.Context, session *model.ReadingSession) error
	// ListRecentSessions returns up to limit sessions, most recent start first.
	ListRecentSessions(ctx context.Context, docID string, limit int) ([]model.ReadingSession, error)

	CreateBookmark(ctx context.Context, bookmark *model.Bookmark) error
	GetBookmark(ctx context.Context, docID, id string) (*model.Bookmark, error)
	SaveBookmark(ctx context.Context, bookmark *model.Bookmark) error
	DeleteBookmark(ctx context.Context, docID, id string) error

	// GetGoal retrieves a document's reading goal with its completed days.
	GetGoal(ctx context.Context, docID string) (*model.ReadingGoal, error)
	SaveGoal(ctx context.Context, goal *model.ReadingGoal) error
	ReplaceCompletedDays(ctx context.Context, goalID string, days []string) error
	AddCompletedDay(ctx context.Context, goalID, date string) error

	// SaveMetadata inserts or updates a document's book metadata, including
	// its subject references.
	SaveMetadata(ctx context.Context, meta *model.BookMetadata) error

	CreateFile(ctx context.Context, file *model.DocumentFile) error
	GetFile(ctx context.Context, docID string) (*model.DocumentFile, error)
}

type ShelfStore interface {
	CreateShelf(ctx context.Context, shelf *model.Shelf) error
	// GetShelf retrieves a shelf with its member documents.
	GetShelf(ctx context.Context, id string) (*model.Shelf, error)
	// ListShelves retrieves all shelves ordered by display order.
	ListShelves(ctx context.Context) ([]*model.Shelf, error)
	UpdateShelf(ctx context.Context, shelf *model.Shelf) error
	// DeleteShelf removes a shelf; member documents become unshelved.
	DeleteShelf(ctx context.Context, id string) error
	ShelfExists(ctx context.Context, id string) (bool, error)
	CountShelves(ctx context.Context) (int64, error)
	// SetDocumentShelf moves a document onto a shelf (or off, with nil).
	SetDocumentShelf(ctx context.Context, docID string, shelfID *string) error
}

type SubjectStore interface {
	// GetSubjectByName returns the subject with the exact name, or nil when
	// no such subject exists.
	GetSubjectByName(ctx context.Context, name string) (*model.Subject, error)
	CreateSubject(ctx context.Context, subject *model.Subject) error
}
