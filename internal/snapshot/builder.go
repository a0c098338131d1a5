package snapshot

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/archive"
	"github.com/pagekeep/pagekeep/internal/model"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/store"
)

// Mode selects what a snapshot carries.
type Mode int

const (
	// ModeMetadata exports projections and shelves only.
	ModeMetadata Mode = iota
	// ModeFull additionally inlines every stored binary as a data URI.
	ModeFull
)

// sessionProjectionLimit caps the sessions carried per document. The full
// session history stays in the store; the snapshot keeps the recent window.
const sessionProjectionLimit = 30

// Builder assembles snapshots from the store and the active storage strategy.
type Builder struct {
	store    store.Store
	strategy storage.Strategy
}

func NewBuilder(s store.Store, strategy storage.Strategy) *Builder {
	return &Builder{store: s, strategy: strategy}
}

// Export builds a snapshot of the whole library. In ModeFull a document
// whose binary cannot be loaded is still exported, without a file entry.
func (b *Builder) Export(ctx context.Context, mode Mode) (*Snapshot, error) {
	docs, err := b.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	shelves, err := b.store.ListShelves(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Metadata:   make([]DocumentProjection, 0, len(docs)),
	}

	byShelf := make(map[string][]string)
	for _, doc := range docs {
		snap.Metadata = append(snap.Metadata, Project(doc))
		if doc.ShelfID != nil {
			byShelf[*doc.ShelfID] = append(byShelf[*doc.ShelfID], doc.ID)
		}
	}
	for _, shelf := range shelves {
		snap.Shelves = append(snap.Shelves, ProjectShelf(shelf, byShelf[shelf.ID]))
	}

	if mode == ModeFull {
		for _, doc := range docs {
			entry, ok := b.fileEntry(doc)
			if ok {
				snap.Files = append(snap.Files, entry)
			}
		}
	}

	return snap, nil
}

func (b *Builder) fileEntry(doc *model.Document) (FileEntry, bool) {
	if doc.File == nil {
		return FileEntry{}, false
	}
	data, err := b.strategy.Load(doc.File)
	if err != nil {
		logrus.Warnf("export: skipping file for document %s: %v", doc.ID, err)
		return FileEntry{}, false
	}
	mimeType := doc.File.MimeType
	if mimeType == "" {
		mimeType = model.MimeTypeForKind(doc.Kind)
	}
	return FileEntry{
		ID:   doc.ID,
		Name: doc.Title,
		Type: mimeType,
		Data: archive.Encode(mimeType, data),
	}, true
}

// Project maps a hydrated document onto its transport shape.
func Project(doc *model.Document) DocumentProjection {
	proj := DocumentProjection{
		ID:                     doc.ID,
		Title:                  doc.Title,
		Kind:                   doc.Kind,
		FileSize:               doc.FileSize,
		UploadDate:             doc.UploadDate,
		LastOpened:             doc.LastOpened,
		CurrentPage:            doc.CurrentPage,
		TotalPages:             doc.TotalPages,
		CurrentCfi:             doc.CurrentCfi,
		ReadingProgressPercent: doc.ReadingProgressPercent,
		ShelfID:                doc.ShelfID,
		Bookmarks:              make([]BookmarkProjection, 0, len(doc.Bookmarks)),
	}

	for _, bm := range doc.Bookmarks {
		created := bm.CreatedAt
		proj.Bookmarks = append(proj.Bookmarks, BookmarkProjection{
			ID:        bm.ID,
			Location:  bm.Location,
			Label:     bm.Label,
			Note:      bm.Note,
			CreatedAt: &created,
		})
	}

	proj.ReadingStats = projectStats(doc.Stats, doc.Sessions)

	if doc.Goal != nil {
		goal := &GoalProjection{
			DailyMinutes:  doc.Goal.DailyMinutes,
			CurrentStreak: doc.Goal.CurrentStreak,
			CompletedDays: make([]string, 0, len(doc.Goal.CompletedDays)),
		}
		for _, day := range doc.Goal.CompletedDays {
			goal.CompletedDays = append(goal.CompletedDays, day.CompletedDate)
		}
		proj.ReadingGoal = goal
	}

	if doc.Metadata != nil {
		meta := &MetadataProjection{
			Author:         doc.Metadata.Author,
			Publisher:      doc.Metadata.Publisher,
			PublishYear:    doc.Metadata.PublishYear,
			ISBN:           doc.Metadata.ISBN,
			CoverURL:       doc.Metadata.CoverURL,
			Description:    doc.Metadata.Description,
			PageCount:      doc.Metadata.PageCount,
			OpenLibraryKey: doc.Metadata.OpenLibraryKey,
		}
		for _, subj := range doc.Metadata.Subjects {
			meta.Subjects = append(meta.Subjects, subj.Name)
		}
		proj.Metadata = meta
	}

	return proj
}

// projectStats keeps the most recent sessions only, newest first.
func projectStats(stats *model.ReadingStats, sessions []model.ReadingSession) *StatsProjection {
	if stats == nil && len(sessions) == 0 {
		return nil
	}

	proj := &StatsProjection{Sessions: make([]SessionProjection, 0, len(sessions))}
	if stats != nil {
		proj.TotalReadingTime = stats.TotalReadingTime
		proj.FirstOpenedAt = stats.FirstOpenedAt
	}

	recent := make([]model.ReadingSession, len(sessions))
	copy(recent, sessions)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].StartedAt.After(recent[j].StartedAt)
	})
	if len(recent) > sessionProjectionLimit {
		recent = recent[:sessionProjectionLimit]
	}
	for _, s := range recent {
		proj.Sessions = append(proj.Sessions, SessionProjection{
			StartedAt: s.StartedAt,
			EndedAt:   s.EndedAt,
			Duration:  s.Duration,
			PagesRead: s.PagesRead,
		})
	}

	return proj
}

func ProjectShelf(shelf *model.Shelf, documentIDs []string) ShelfProjection {
	order := shelf.DisplayOrder
	if documentIDs == nil {
		documentIDs = []string{}
	}
	return ShelfProjection{
		ID:          shelf.ID,
		Name:        shelf.Name,
		Color:       shelf.Color,
		CreatedAt:   shelf.CreatedAt.UTC().Format(time.RFC3339),
		DocumentIDs: documentIDs,
		Order:       &order,
	}
}
