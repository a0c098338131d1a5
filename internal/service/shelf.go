package service

import (
	"context"
	"errors"

	"github.com/pagekeep/pagekeep/internal/cache"
	"github.com/pagekeep/pagekeep/internal/model"
	"github.com/pagekeep/pagekeep/internal/snapshot"
	"github.com/pagekeep/pagekeep/internal/store"
)

type ShelfService struct {
	store store.Store
	cache cache.ProjectionCache
}

func NewShelfService(s store.Store, c cache.ProjectionCache) *ShelfService {
	return &ShelfService{store: s, cache: c}
}

type ShelfInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Create appends the shelf at the end of the display order.
func (s *ShelfService) Create(ctx context.Context, in ShelfInput) (*snapshot.ShelfProjection, error) {
	count, err := s.store.CountShelves(ctx)
	if err != nil {
		return nil, err
	}
	shelf := &model.Shelf{
		Name:         in.Name,
		Color:        in.Color,
		DisplayOrder: int(count),
	}
	if err := s.store.CreateShelf(ctx, shelf); err != nil {
		return nil, err
	}
	proj := snapshot.ProjectShelf(shelf, nil)
	return &proj, nil
}

func (s *ShelfService) Get(ctx context.Context, id string) (*snapshot.ShelfProjection, error) {
	shelf, err := s.store.GetShelf(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrShelfNotFound
		}
		return nil, err
	}
	proj := snapshot.ProjectShelf(shelf, memberIDs(shelf))
	return &proj, nil
}

func (s *ShelfService) List(ctx context.Context) ([]snapshot.ShelfProjection, error) {
	shelves, err := s.store.ListShelves(ctx)
	if err != nil {
		return nil, err
	}
	projs := make([]snapshot.ShelfProjection, 0, len(shelves))
	for _, shelf := range shelves {
		projs = append(projs, snapshot.ProjectShelf(shelf, memberIDs(shelf)))
	}
	return projs, nil
}

type UpdateShelfInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Order *int    `json:"order"`
}

func (s *ShelfService) Update(ctx context.Context, id string, in UpdateShelfInput) (*snapshot.ShelfProjection, error) {
	shelf, err := s.store.GetShelf(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrShelfNotFound
		}
		return nil, err
	}
	if in.Name != nil {
		shelf.Name = *in.Name
	}
	if in.Color != nil {
		shelf.Color = *in.Color
	}
	if in.Order != nil {
		shelf.DisplayOrder = *in.Order
	}
	if err := s.store.UpdateShelf(ctx, shelf); err != nil {
		return nil, err
	}
	proj := snapshot.ProjectShelf(shelf, memberIDs(shelf))
	return &proj, nil
}

// Delete removes the shelf only; member documents become unshelved.
func (s *ShelfService) Delete(ctx context.Context, id string) error {
	shelf, err := s.store.GetShelf(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrShelfNotFound
		}
		return err
	}
	if err := s.store.DeleteShelf(ctx, id); err != nil {
		return err
	}
	for _, doc := range shelf.Documents {
		s.invalidate(ctx, doc.ID)
	}
	return nil
}

// AssignDocument moves a document onto a shelf, or off every shelf when
// shelfID is nil.
func (s *ShelfService) AssignDocument(ctx context.Context, docID string, shelfID *string) error {
	exists, err := s.store.DocumentExists(ctx, docID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrDocumentNotFound
	}
	if shelfID != nil {
		ok, err := s.store.ShelfExists(ctx, *shelfID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrShelfNotFound
		}
	}
	if err := s.store.SetDocumentShelf(ctx, docID, shelfID); err != nil {
		return err
	}
	s.invalidate(ctx, docID)
	return nil
}

type MembershipInput struct {
	AddDocumentIDs    []string `json:"addDocumentIds"`
	RemoveDocumentIDs []string `json:"removeDocumentIds"`
}

// UpdateMembership adds and removes documents from a shelf in bulk. Unknown
// document IDs are skipped; a removal only detaches a document currently on
// this shelf.
func (s *ShelfService) UpdateMembership(ctx context.Context, shelfID string, in MembershipInput) (*snapshot.ShelfProjection, error) {
	exists, err := s.store.ShelfExists(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrShelfNotFound
	}

	for _, docID := range in.RemoveDocumentIDs {
		doc, err := s.store.GetDocument(ctx, docID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if doc.ShelfID == nil || *doc.ShelfID != shelfID {
			continue
		}
		if err := s.store.SetDocumentShelf(ctx, docID, nil); err != nil {
			return nil, err
		}
		s.invalidate(ctx, docID)
	}

	for _, docID := range in.AddDocumentIDs {
		ok, err := s.store.DocumentExists(ctx, docID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		target := shelfID
		if err := s.store.SetDocumentShelf(ctx, docID, &target); err != nil {
			return nil, err
		}
		s.invalidate(ctx, docID)
	}

	return s.Get(ctx, shelfID)
}

func (s *ShelfService) invalidate(ctx context.Context, docID string) {
	_ = s.cache.Invalidate(ctx, docID)
}

func memberIDs(shelf *model.Shelf) []string {
	ids := make([]string, 0, len(shelf.Documents))
	for _, doc := range shelf.Documents {
		ids = append(ids, doc.ID)
	}
	return ids
}
