package snapshot

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/archive"
	"github.com/pagekeep/pagekeep/internal/model"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/store"
)

// Restorer merges a snapshot into a store additively. Existing rows always
// win: a shelf or document already present is left untouched, including its
// children. The whole merge runs in one store transaction; disk writes made
// by the storage strategy are not rolled back with it.
type Restorer struct {
	store    store.Store
	strategy storage.Strategy
}

func NewRestorer(s store.Store, strategy storage.Strategy) *Restorer {
	return &Restorer{store: s, strategy: strategy}
}

func (r *Restorer) Restore(ctx context.Context, snap *Snapshot) (*RestoreResult, error) {
	result := &RestoreResult{}
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		return r.restore(ctx, tx, snap, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Restorer) restore(ctx context.Context, tx store.Store, snap *Snapshot, result *RestoreResult) error {
	for _, shelf := range snap.Shelves {
		inserted, err := restoreShelf(ctx, tx, shelf)
		if err != nil {
			return fmt.Errorf("restore shelf %s: %w", shelf.ID, err)
		}
		if inserted {
			result.ShelvesInserted++
		}
	}

	// Shelf membership lists take precedence over the per-document shelfId.
	owner := shelfOwnership(snap.Shelves)

	files := make(map[string]*FileEntry, len(snap.Files))
	for i := range snap.Files {
		files[snap.Files[i].ID] = &snap.Files[i]
	}

	for _, proj := range snap.Metadata {
		exists, err := tx.DocumentExists(ctx, proj.ID)
		if err != nil {
			return err
		}
		if exists {
			result.DocumentsSkipped++
			continue
		}
		if err := r.restoreDocument(ctx, tx, proj, owner, files[proj.ID], result); err != nil {
			return fmt.Errorf("restore document %s: %w", proj.ID, err)
		}
		result.DocumentsInserted++
	}

	return nil
}

func restoreShelf(ctx context.Context, tx store.Store, proj ShelfProjection) (bool, error) {
	exists, err := tx.ShelfExists(ctx, proj.ID)
	if err != nil || exists {
		return false, err
	}
	order := 0
	if proj.Order != nil {
		order = *proj.Order
	}
	shelf := &model.Shelf{
		ID:           proj.ID,
		Name:         proj.Name,
		Color:        proj.Color,
		DisplayOrder: order,
	}
	return true, tx.CreateShelf(ctx, shelf)
}

func (r *Restorer) restoreDocument(ctx context.Context, tx store.Store, proj DocumentProjection, owner map[string]string, file *FileEntry, result *RestoreResult) error {
	shelfID, err := resolveShelf(ctx, tx, proj, owner)
	if err != nil {
		return err
	}

	doc := &model.Document{
		ID:                     proj.ID,
		Title:                  proj.Title,
		Kind:                   proj.Kind,
		FileSize:               proj.FileSize,
		UploadDate:             proj.UploadDate,
		LastOpened:             proj.LastOpened,
		CurrentPage:            proj.CurrentPage,
		TotalPages:             proj.TotalPages,
		CurrentCfi:             proj.CurrentCfi,
		ReadingProgressPercent: proj.ReadingProgressPercent,
		ShelfID:                shelfID,
	}
	if err := tx.CreateDocument(ctx, doc); err != nil {
		return err
	}

	if proj.ReadingStats != nil {
		stats := &model.ReadingStats{
			DocumentID:       proj.ID,
			TotalReadingTime: proj.ReadingStats.TotalReadingTime,
			FirstOpenedAt:    proj.ReadingStats.FirstOpenedAt,
		}
		if err := tx.CreateStats(ctx, stats); err != nil {
			return err
		}
		for _, s := range proj.ReadingStats.Sessions {
			session := &model.ReadingSession{
				DocumentID: proj.ID,
				StartedAt:  s.StartedAt,
				EndedAt:    s.EndedAt,
				Duration:   s.Duration,
				PagesRead:  s.PagesRead,
			}
			if err := tx.CreateSession(ctx, session); err != nil {
				return err
			}
		}
	}

	for _, bm := range proj.Bookmarks {
		bookmark := &model.Bookmark{
			ID:         bm.ID,
			DocumentID: proj.ID,
			Location:   bm.Location,
			Label:      bm.Label,
			Note:       bm.Note,
		}
		if bm.CreatedAt != nil {
			bookmark.CreatedAt = *bm.CreatedAt
		}
		if err := tx.CreateBookmark(ctx, bookmark); err != nil {
			return err
		}
	}

	if proj.ReadingGoal != nil {
		goal := &model.ReadingGoal{
			DocumentID:    proj.ID,
			DailyMinutes:  proj.ReadingGoal.DailyMinutes,
			CurrentStreak: proj.ReadingGoal.CurrentStreak,
		}
		if err := tx.SaveGoal(ctx, goal); err != nil {
			return err
		}
		for _, date := range proj.ReadingGoal.CompletedDays {
			if err := tx.AddCompletedDay(ctx, goal.ID, date); err != nil {
				return err
			}
		}
	}

	if proj.Metadata != nil {
		if err := restoreMetadata(ctx, tx, proj.ID, proj.Metadata, result); err != nil {
			return err
		}
	}

	if file != nil {
		if err := r.restoreFile(ctx, tx, proj, file); err != nil {
			return err
		}
	}

	return nil
}

// resolveShelf applies membership precedence, then clears references to
// shelves that exist neither in the snapshot nor in the store.
func resolveShelf(ctx context.Context, tx store.Store, proj DocumentProjection, owner map[string]string) (*string, error) {
	shelfID := proj.ShelfID
	if claimed, ok := owner[proj.ID]; ok {
		shelfID = &claimed
	}
	if shelfID == nil {
		return nil, nil
	}
	exists, err := tx.ShelfExists(ctx, *shelfID)
	if err != nil {
		return nil, err
	}
	if !exists {
		logrus.Warnf("restore: document %s references unknown shelf %s, unshelving", proj.ID, *shelfID)
		return nil, nil
	}
	return shelfID, nil
}

// restoreMetadata deduplicates subjects by exact name against the store.
func restoreMetadata(ctx context.Context, tx store.Store, docID string, proj *MetadataProjection, result *RestoreResult) error {
	meta := &model.BookMetadata{
		DocumentID:     docID,
		Author:         proj.Author,
		Publisher:      proj.Publisher,
		PublishYear:    proj.PublishYear,
		ISBN:           proj.ISBN,
		CoverURL:       proj.CoverURL,
		Description:    proj.Description,
		PageCount:      proj.PageCount,
		OpenLibraryKey: proj.OpenLibraryKey,
	}
	for _, name := range proj.Subjects {
		subj, err := tx.GetSubjectByName(ctx, name)
		if err != nil {
			return err
		}
		if subj == nil {
			subj = &model.Subject{Name: name}
			if err := tx.CreateSubject(ctx, subj); err != nil {
				return err
			}
			result.SubjectsCreated++
		}
		meta.Subjects = append(meta.Subjects, subj)
	}
	return tx.SaveMetadata(ctx, meta)
}

func (r *Restorer) restoreFile(ctx context.Context, tx store.Store, proj DocumentProjection, entry *FileEntry) error {
	data, err := archive.Decode(entry.Data)
	if err != nil {
		return fmt.Errorf("decode file payload: %w", err)
	}
	mimeType := entry.Type
	if mimeType == "" {
		mimeType = model.MimeTypeForKind(proj.Kind)
	}
	file, err := r.strategy.Save(proj.ID, proj.Kind, mimeType, data)
	if err != nil {
		return err
	}
	return tx.CreateFile(ctx, file)
}
