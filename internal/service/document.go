package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/archive"
	"github.com/pagekeep/pagekeep/internal/cache"
	"github.com/pagekeep/pagekeep/internal/model"
	"github.com/pagekeep/pagekeep/internal/snapshot"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/store"
	"github.com/pagekeep/pagekeep/internal/streak"
)

// DocumentService owns the document lifecycle: upload, reading state,
// bookmarks, sessions and goals. Reads go through the projection cache;
// every write invalidates the document's cached projection.
type DocumentService struct {
	store    store.Store
	strategy storage.Strategy
	cache    cache.ProjectionCache
}

func NewDocumentService(s store.Store, strategy storage.Strategy, c cache.ProjectionCache) *DocumentService {
	return &DocumentService{store: s, strategy: strategy, cache: c}
}

type CreateDocumentInput struct {
	Title string `json:"title"`
	Kind  string `json:"type"`
	// Data is the file content as a data-URI token or bare base64.
	Data    string  `json:"data"`
	ShelfID *string `json:"shelfId"`
}

func (s *DocumentService) Create(ctx context.Context, in CreateDocumentInput) (*snapshot.DocumentProjection, error) {
	if in.Kind != model.KindEpub && in.Kind != model.KindPdf {
		return nil, ErrInvalidKind
	}
	data, err := archive.Decode(in.Data)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	mimeType := archive.MimeType(in.Data, model.MimeTypeForKind(in.Kind))

	doc := &model.Document{
		Title:      in.Title,
		Kind:       in.Kind,
		FileSize:   int64(len(data)),
		UploadDate: time.Now().UTC(),
		ShelfID:    in.ShelfID,
	}
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if doc.ShelfID != nil {
			exists, err := tx.ShelfExists(ctx, *doc.ShelfID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrShelfNotFound
			}
		}
		if err := tx.CreateDocument(ctx, doc); err != nil {
			return err
		}
		file, err := s.strategy.Save(doc.ID, doc.Kind, mimeType, data)
		if err != nil {
			return err
		}
		return tx.CreateFile(ctx, file)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, doc.ID)
}

func (s *DocumentService) Get(ctx context.Context, id string) (*snapshot.DocumentProjection, error) {
	if proj, err := s.cache.GetProjection(ctx, id); err != nil {
		logrus.Warnf("document cache read %s: %v", id, err)
	} else if proj != nil {
		return proj, nil
	}

	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	proj := snapshot.Project(doc)
	if err := s.cache.SetProjection(ctx, &proj); err != nil {
		logrus.Warnf("document cache write %s: %v", id, err)
	}
	return &proj, nil
}

func (s *DocumentService) List(ctx context.Context) ([]snapshot.DocumentProjection, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	projs := make([]snapshot.DocumentProjection, 0, len(docs))
	for _, doc := range docs {
		projs = append(projs, snapshot.Project(doc))
	}
	return projs, nil
}

type ProgressInput struct {
	CurrentPage            *int     `json:"currentPage"`
	TotalPages             *int     `json:"totalPages"`
	CurrentCfi             *string  `json:"currentCfi"`
	ReadingProgressPercent *float64 `json:"readingProgressPercent"`
}

// UpdateProgress records reading position and stamps lastOpened.
func (s *DocumentService) UpdateProgress(ctx context.Context, id string, in ProgressInput) (*snapshot.DocumentProjection, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.CurrentPage != nil {
		doc.CurrentPage = in.CurrentPage
	}
	if in.TotalPages != nil {
		doc.TotalPages = in.TotalPages
	}
	if in.CurrentCfi != nil {
		doc.CurrentCfi = in.CurrentCfi
	}
	if in.ReadingProgressPercent != nil {
		doc.ReadingProgressPercent = in.ReadingProgressPercent
	}
	now := time.Now().UTC()
	doc.LastOpened = &now

	if err := s.store.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

type UpdateDocumentInput struct {
	Title *string `json:"title"`
}

func (s *DocumentService) Update(ctx context.Context, id string, in UpdateDocumentInput) (*snapshot.DocumentProjection, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		doc.Title = *in.Title
	}
	if err := s.store.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

// Delete removes the document with all children and its stored binary.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return err
	}
	if doc.File != nil {
		if err := s.strategy.Remove(doc.File); err != nil {
			logrus.Warnf("delete document %s: removing file: %v", id, err)
		}
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// DownloadFile returns the stored binary with its mime type and title.
func (s *DocumentService) DownloadFile(ctx context.Context, id string) ([]byte, string, string, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, "", "", err
	}
	if doc.File == nil {
		return nil, "", "", ErrNoFile
	}
	data, err := s.strategy.Load(doc.File)
	if err != nil {
		if errors.Is(err, storage.ErrNoContent) {
			return nil, "", "", ErrNoFile
		}
		return nil, "", "", err
	}
	mimeType := doc.File.MimeType
	if mimeType == "" {
		mimeType = model.MimeTypeForKind(doc.Kind)
	}
	return data, mimeType, doc.Title, nil
}

type BookmarkInput struct {
	Location string  `json:"location"`
	Label    string  `json:"label"`
	Note     *string `json:"note"`
}

func (s *DocumentService) AddBookmark(ctx context.Context, docID string, in BookmarkInput) (*model.Bookmark, error) {
	if _, err := s.getDocument(ctx, docID); err != nil {
		return nil, err
	}
	bookmark := &model.Bookmark{
		DocumentID: docID,
		Location:   in.Location,
		Label:      in.Label,
		Note:       in.Note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateBookmark(ctx, bookmark); err != nil {
		return nil, err
	}
	s.invalidate(ctx, docID)
	return bookmark, nil
}

func (s *DocumentService) UpdateBookmark(ctx context.Context, docID, id string, in BookmarkInput) (*model.Bookmark, error) {
	bookmark, err := s.store.GetBookmark(ctx, docID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBookmarkNotFound
		}
		return nil, err
	}
	if in.Location != "" {
		bookmark.Location = in.Location
	}
	if in.Label != "" {
		bookmark.Label = in.Label
	}
	if in.Note != nil {
		bookmark.Note = in.Note
	}
	if err := s.store.SaveBookmark(ctx, bookmark); err != nil {
		return nil, err
	}
	s.invalidate(ctx, docID)
	return bookmark, nil
}

func (s *DocumentService) DeleteBookmark(ctx context.Context, docID, id string) error {
	if err := s.store.DeleteBookmark(ctx, docID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBookmarkNotFound
		}
		return err
	}
	s.invalidate(ctx, docID)
	return nil
}

type SessionInput struct {
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	Duration  int64     `json:"duration"`
	PagesRead int       `json:"pagesRead"`
}

// RecordSession appends a reading session and folds it into the running
// stats. The first ever session stamps firstOpenedAt.
func (s *DocumentService) RecordSession(ctx context.Context, docID string, in SessionInput) (*snapshot.StatsProjection, error) {
	if _, err := s.getDocument(ctx, docID); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		session := &model.ReadingSession{
			DocumentID: docID,
			StartedAt:  in.StartedAt,
			EndedAt:    in.EndedAt,
			Duration:   in.Duration,
			PagesRead:  in.PagesRead,
		}
		if err := tx.CreateSession(ctx, session); err != nil {
			return err
		}

		stats, err := tx.GetStats(ctx, docID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if stats == nil || errors.Is(err, store.ErrNotFound) {
			started := in.StartedAt
			stats = &model.ReadingStats{
				DocumentID:       docID,
				TotalReadingTime: in.Duration,
				FirstOpenedAt:    &started,
			}
			return tx.CreateStats(ctx, stats)
		}
		stats.TotalReadingTime += in.Duration
		if stats.FirstOpenedAt == nil {
			started := in.StartedAt
			stats.FirstOpenedAt = &started
		}
		return tx.SaveStats(ctx, stats)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, docID)
	return s.Stats(ctx, docID)
}

// Stats returns the stats projection with the recent session window.
func (s *DocumentService) Stats(ctx context.Context, docID string) (*snapshot.StatsProjection, error) {
	proj, err := s.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if proj.ReadingStats == nil {
		return &snapshot.StatsProjection{Sessions: []snapshot.SessionProjection{}}, nil
	}
	return proj.ReadingStats, nil
}

type GoalInput struct {
	DailyMinutes int `json:"dailyMinutes"`
}

// SetGoal creates or updates the document's daily reading goal.
func (s *DocumentService) SetGoal(ctx context.Context, docID string, in GoalInput) (*snapshot.GoalProjection, error) {
	if _, err := s.getDocument(ctx, docID); err != nil {
		return nil, err
	}
	goal, err := s.store.GetGoal(ctx, docID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if goal == nil || errors.Is(err, store.ErrNotFound) {
		goal = &model.ReadingGoal{DocumentID: docID}
	}
	goal.DailyMinutes = in.DailyMinutes
	if err := s.store.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}
	s.invalidate(ctx, docID)
	return projectGoal(goal), nil
}

// MarkGoalComplete records today against the goal and advances the streak.
func (s *DocumentService) MarkGoalComplete(ctx context.Context, docID string, today time.Time) (*snapshot.GoalProjection, error) {
	if _, err := s.getDocument(ctx, docID); err != nil {
		return nil, err
	}
	goal, err := s.store.GetGoal(ctx, docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}

	days := make([]string, 0, len(goal.CompletedDays))
	for _, day := range goal.CompletedDays {
		days = append(days, day.CompletedDate)
	}
	days, newStreak, changed := streak.MarkComplete(days, goal.CurrentStreak, today)
	if !changed {
		return projectGoal(goal), nil
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		goal.CurrentStreak = newStreak
		if err := tx.SaveGoal(ctx, goal); err != nil {
			return err
		}
		return tx.ReplaceCompletedDays(ctx, goal.ID, days)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, docID)

	return &snapshot.GoalProjection{
		DailyMinutes:  goal.DailyMinutes,
		CompletedDays: days,
		CurrentStreak: newStreak,
	}, nil
}

func (s *DocumentService) Goal(ctx context.Context, docID string) (*snapshot.GoalProjection, error) {
	if _, err := s.getDocument(ctx, docID); err != nil {
		return nil, err
	}
	goal, err := s.store.GetGoal(ctx, docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return projectGoal(goal), nil
}

func projectGoal(goal *model.ReadingGoal) *snapshot.GoalProjection {
	proj := &snapshot.GoalProjection{
		DailyMinutes:  goal.DailyMinutes,
		CurrentStreak: goal.CurrentStreak,
		CompletedDays: make([]string, 0, len(goal.CompletedDays)),
	}
	for _, day := range goal.CompletedDays {
		proj.CompletedDays = append(proj.CompletedDays, day.CompletedDate)
	}
	return proj
}

func (s *DocumentService) getDocument(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logrus.Warnf("document cache invalidate %s: %v", id, err)
	}
}
