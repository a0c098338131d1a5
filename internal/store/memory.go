package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pagekeep/pagekeep/internal/model"
)

// MemoryStore is a map-backed Store. It backs the local-mirror side of the
// migration bridge and keeps restore tests independent of a database.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]*model.Document
	order     []string
	shelves   map[string]*model.Shelf
	stats     map[string]*model.ReadingStats             // by document ID
	bookmarks map[string][]*model.Bookmark               // by document ID
	sessions  map[string][]model.ReadingSession          // by document ID
	goals     map[string]*model.ReadingGoal              // by document ID
	days      map[string][]model.ReadingGoalCompletedDay // by goal ID
	metadata  map[string]*model.BookMetadata             // by document ID
	files     map[string]*model.DocumentFile             // by document ID
	subjects  map[string]*model.Subject                  // by name
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]*model.Document),
		shelves:   make(map[string]*model.Shelf),
		stats:     make(map[string]*model.ReadingStats),
		bookmarks: make(map[string][]*model.Bookmark),
		sessions:  make(map[string][]model.ReadingSession),
		goals:     make(map[string]*model.ReadingGoal),
		days:      make(map[string][]model.ReadingGoalCompletedDay),
		metadata:  make(map[string]*model.BookMetadata),
		files:     make(map[string]*model.DocumentFile),
		subjects:  make(map[string]*model.Subject),
	}
}

func (m *MemoryStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, ok := m.documents[doc.ID]; ok {
		return errors.New("document already exists")
	}
	row := *doc
	row.Metadata, row.Bookmarks, row.Sessions, row.Stats, row.Goal, row.File = nil, nil, nil, nil, nil, nil
	m.documents[doc.ID] = &row
	m.order = append(m.order, doc.ID)
	return nil
}

// hydrate assembles a copy of the document with its children attached.
// Callers must hold at least the read lock.
func (m *MemoryStore) hydrate(id string) *model.Document {
	row, ok := m.documents[id]
	if !ok {
		return nil
	}
	doc := *row
	if meta, ok := m.metadata[id]; ok {
		cp := *meta
		doc.Metadata = &cp
	}
	for _, b := range m.bookmarks[id] {
		doc.Bookmarks = append(doc.Bookmarks, *b)
	}
	doc.Sessions = append(doc.Sessions, m.sessions[id]...)
	if stats, ok := m.stats[id]; ok {
		cp := *stats
		doc.Stats = &cp
	}
	if goal, ok := m.goals[id]; ok {
		cp := *goal
		cp.CompletedDays = append([]model.ReadingGoalCompletedDay(nil), m.days[goal.ID]...)
		doc.Goal = &cp
	}
	if file, ok := m.files[id]; ok {
		cp := *file
		doc.File = &cp
	}
	return &doc
}

func (m *MemoryStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc := m.hydrate(id)
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (m *MemoryStore) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]*model.Document, 0, len(m.order))
	for _, id := range m.order {
		if doc := m.hydrate(id); doc != nil {
			docs = append(docs, doc)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UploadDate.After(docs[j].UploadDate)
	})
	return docs, nil
}

func (m *MemoryStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[doc.ID]; !ok {
		return ErrNotFound
	}
	row := *doc
	row.Metadata, row.Bookmarks, row.Sessions, row.Stats, row.Goal, row.File = nil, nil, nil, nil, nil, nil
	m.documents[doc.ID] = &row
	return nil
}

func (m *MemoryStore) DeleteDocument(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return ErrNotFound
	}
	if goal, ok := m.goals[id]; ok {
		delete(m.days, goal.ID)
	}
	delete(m.documents, id)
	delete(m.metadata, id)
	delete(m.bookmarks, id)
	delete(m.sessions, id)
	delete(m.stats, id)
	delete(m.goals, id)
	delete(m.files, id)
	kept := m.order[:0]
	for _, d := range m.order {
		if d != id {
			kept = append(kept, d)
		}
	}
	m.order = kept
	return nil
}

func (m *MemoryStore) DocumentExists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.documents[id]
	return ok, nil
}

func (m *MemoryStore) CreateStats(ctx context.Context, stats *model.ReadingStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats.ID == "" {
		stats.ID = uuid.NewString()
	}
	cp := *stats
	m.stats[stats.DocumentID] = &cp
	return nil
}

func (m *MemoryStore) GetStats(ctx context.Context, docID string) (*model.ReadingStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats, ok := m.stats[docID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *stats
	return &cp, nil
}

func (m *MemoryStore) SaveStats(ctx context.Context, stats *model.ReadingStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *stats
	m.stats[stats.DocumentID] = &cp
	return nil
}

func (m *MemoryStore) CreateSession(ctx context.Context, session *model.ReadingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.ID = uint(len(m.sessions[session.DocumentID]) + 1)
	m.sessions[session.DocumentID] = append(m.sessions[session.DocumentID], *session)
	return nil
}

func (m *MemoryStore) ListRecentSessions(ctx context.Context, docID string, limit int) ([]model.ReadingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessions := append([]model.ReadingSession(nil), m.sessions[docID]...)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (m *MemoryStore) CreateBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bookmark.ID == "" {
		bookmark.ID = uuid.NewString()
	}
	cp := *bookmark
	m.bookmarks[bookmark.DocumentID] = append(m.bookmarks[bookmark.DocumentID], &cp)
	return nil
}

func (m *MemoryStore) GetBookmark(ctx context.Context, docID, id string) (*model.Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookmarks[docID] {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) SaveBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.bookmarks[bookmark.DocumentID] {
		if b.ID == bookmark.ID {
			cp := *bookmark
			m.bookmarks[bookmark.DocumentID][i] = &cp
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) DeleteBookmark(ctx context.Context, docID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.bookmarks[docID]
	for i, b := range list {
		if b.ID == id {
			m.bookmarks[docID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) GetGoal(ctx context.Context, docID string) (*model.ReadingGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	goal, ok := m.goals[docID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *goal
	cp.CompletedDays = append([]model.ReadingGoalCompletedDay(nil), m.days[goal.ID]...)
	return &cp, nil
}

func (m *MemoryStore) SaveGoal(ctx context.Context, goal *model.ReadingGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	cp := *goal
	cp.CompletedDays = nil
	m.goals[goal.DocumentID] = &cp
	return nil
}

func (m *MemoryStore) ReplaceCompletedDays(ctx context.Context, goalID string, days []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]model.ReadingGoalCompletedDay, 0, len(days))
	for i, day := range days {
		rows = append(rows, model.ReadingGoalCompletedDay{
			ID:            uint(i + 1),
			ReadingGoalID: goalID,
			CompletedDate: day,
		})
	}
	m.days[goalID] = rows
	return nil
}

func (m *MemoryStore) AddCompletedDay(ctx context.Context, goalID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.days[goalID] {
		if row.CompletedDate == date {
			return errors.New("completed day already recorded")
		}
	}
	m.days[goalID] = append(m.days[goalID], model.ReadingGoalCompletedDay{
		ID:            uint(len(m.days[goalID]) + 1),
		ReadingGoalID: goalID,
		CompletedDate: date,
	})
	return nil
}

func (m *MemoryStore) SaveMetadata(ctx context.Context, meta *model.BookMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	cp := *meta
	m.metadata[meta.DocumentID] = &cp
	return nil
}

func (m *MemoryStore) CreateFile(ctx context.Context, file *model.DocumentFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	cp := *file
	m.files[file.DocumentID] = &cp
	return nil
}

func (m *MemoryStore) GetFile(ctx context.Context, docID string) (*model.DocumentFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	file, ok := m.files[docID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *file
	return &cp, nil
}

func (m *MemoryStore) CreateShelf(ctx context.Context, shelf *model.Shelf) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if shelf.ID == "" {
		shelf.ID = uuid.NewString()
	}
	if _, ok := m.shelves[shelf.ID]; ok {
		return errors.New("shelf already exists")
	}
	cp := *shelf
	cp.Documents = nil
	m.shelves[shelf.ID] = &cp
	return nil
}

func (m *MemoryStore) GetShelf(ctx context.Context, id string) (*model.Shelf, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shelf, ok := m.shelves[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *shelf
	for _, docID := range m.order {
		doc := m.documents[docID]
		if doc.ShelfID != nil && *doc.ShelfID == id {
			cp.Documents = append(cp.Documents, *doc)
		}
	}
	return &cp, nil
}

func (m *MemoryStore) ListShelves(ctx context.Context) ([]*model.Shelf, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.shelves))
	for id := range m.shelves {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	shelves := make([]*model.Shelf, 0, len(ids))
	for _, id := range ids {
		shelf, err := m.GetShelf(ctx, id)
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, shelf)
	}
	sort.SliceStable(shelves, func(i, j int) bool {
		return shelves[i].DisplayOrder < shelves[j].DisplayOrder
	})
	return shelves, nil
}

func (m *MemoryStore) UpdateShelf(ctx context.Context, shelf *model.Shelf) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shelves[shelf.ID]; !ok {
		return ErrNotFound
	}
	cp := *shelf
	cp.Documents = nil
	m.shelves[shelf.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteShelf(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shelves[id]; !ok {
		return ErrNotFound
	}
	for _, doc := range m.documents {
		if doc.ShelfID != nil && *doc.ShelfID == id {
			doc.ShelfID = nil
		}
	}
	delete(m.shelves, id)
	return nil
}

func (m *MemoryStore) ShelfExists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.shelves[id]
	return ok, nil
}

func (m *MemoryStore) CountShelves(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.shelves)), nil
}

func (m *MemoryStore) SetDocumentShelf(ctx context.Context, docID string, shelfID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[docID]
	if !ok {
		return ErrNotFound
	}
	doc.ShelfID = shelfID
	return nil
}

func (m *MemoryStore) GetSubjectByName(ctx context.Context, name string) (*model.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	subject, ok := m.subjects[name]
	if !ok {
		return nil, nil
	}
	cp := *subject
	return &cp, nil
}

func (m *MemoryStore) CreateSubject(ctx context.Context, subject *model.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if _, ok := m.subjects[subject.Name]; ok {
		return errors.New("subject already exists")
	}
	cp := *subject
	m.subjects[subject.Name] = &cp
	return nil
}

func (m *MemoryStore) Migrate() error {
	return nil
}

// Transaction runs f against the store itself. The memory store has no
// rollback; callers relying on atomicity need the gorm store.
func (m *MemoryStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return f(m)
}
