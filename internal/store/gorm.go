package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pagekeep/pagekeep/internal/model"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

var documentPreloads = []string{
	"Metadata",
	"Metadata.Subjects",
	"Bookmarks",
	"Sessions",
	"Stats",
	"Goal",
	"Goal.CompletedDays",
	"File",
}

func (g *GormStore) hydrated(ctx context.Context) *gorm.DB {
	tx := g.db.WithContext(ctx)
	for _, p := range documentPreloads {
		tx = tx.Preload(p)
	}
	return tx
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return g.db.WithContext(ctx).Omit("Metadata", "Bookmarks", "Sessions", "Stats", "Goal", "File").Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := g.hydrated(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (g *GormStore) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	var docs []*model.Document
	err := g.hydrated(ctx).Order("upload_date desc").Find(&docs).Error
	return docs, err
}

func (g *GormStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Omit("Metadata", "Bookmarks", "Sessions", "Stats", "Goal", "File").Save(doc).Error
}

// DeleteDocument removes the document and all of its owned children. The
// cascade is explicit; nothing relies on database-level cascade rules.
func (g *GormStore) DeleteDocument(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meta model.BookMetadata
		err := tx.Where("document_id = ?", id).First(&meta).Error
		if err == nil {
			if err := tx.Exec("DELETE FROM book_metadata_subjects WHERE book_metadata_id = ?", meta.ID).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var goal model.ReadingGoal
		err = tx.Where("document_id = ?", id).First(&goal).Error
		if err == nil {
			if err := tx.Where("reading_goal_id = ?", goal.ID).Delete(&model.ReadingGoalCompletedDay{}).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		for _, child := range []interface{}{
			&model.Bookmark{},
			&model.ReadingSession{},
			&model.ReadingStats{},
			&model.ReadingGoal{},
			&model.BookMetadata{},
			&model.DocumentFile{},
		} {
			if err := tx.Unscoped().Where("document_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		return tx.Unscoped().Where("id = ?", id).Delete(&model.Document{}).Error
	})
}

func (g *GormStore) DocumentExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (g *GormStore) CreateStats(ctx context.Context, stats *model.ReadingStats) error {
	if stats.ID == "" {
		stats.ID = uuid.NewString()
	}
	return g.db.WithContext(ctx).Create(stats).Error
}

func (g *GormStore) GetStats(ctx context.Context, docID string) (*model.ReadingStats, error) {
	var stats model.ReadingStats
	err := g.db.WithContext(ctx).Where("document_id = ?", docID).First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (g *GormStore) SaveStats(ctx context.Context, stats *model.ReadingStats) error {
	return g.db.WithContext(ctx).Save(stats).Error
}

func (g *GormStore) CreateSession(ctx context.Context, session *model.ReadingSession) error {
	return g.db.WithContext(ctx).Create(session).Error
}

func (g *GormStore) ListRecentSessions(ctx context.Context, docID string, limit int) ([]model.ReadingSession, error) {
	var sessions []model.ReadingSession
	err := g.db.WithContext(ctx).
		Where("document_id = ?", docID).
		Order("started_at desc").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (g *GormStore) CreateBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	if bookmark.ID == "" {
		bookmark.ID = uuid.NewString()
	}
	return g.db.WithContext(ctx).Create(bookmark).Error
}

func (g *GormStore) GetBookmark(ctx context.Context, docID, id string) (*model.Bookmark, error) {
	var bookmark model.Bookmark
	err := g.db.WithContext(ctx).Where("id = ? AND document_id = ?", id, docID).First(&bookmark).Error
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

func (g *GormStore) SaveBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	return g.db.WithContext(ctx).Save(bookmark).Error
}

func (g *GormStore) DeleteBookmark(ctx context.Context, docID, id string) error {
	res := g.db.WithContext(ctx).Where("id = ? AND document_id = ?", id, docID).Delete(&model.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormStore) GetGoal(ctx context.Context, docID string) (*model.ReadingGoal, error) {
	var goal model.ReadingGoal
	err := g.db.WithContext(ctx).Preload("CompletedDays").Where("document_id = ?", docID).First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (g *GormStore) SaveGoal(ctx context.Context, goal *model.ReadingGoal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	return g.db.WithContext(ctx).Omit("CompletedDays").Save(goal).Error
}

func (g *GormStore) ReplaceCompletedDays(ctx context.Context, goalID string, days []string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reading_goal_id = ?", goalID).Delete(&model.ReadingGoalCompletedDay{}).Error; err != nil {
			return err
		}
		for _, day := range days {
			row := model.ReadingGoalCompletedDay{ReadingGoalID: goalID, CompletedDate: day}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *GormStore) AddCompletedDay(ctx context.Context, goalID, date string) error {
	row := model.ReadingGoalCompletedDay{ReadingGoalID: goalID, CompletedDate: date}
	return g.db.WithContext(ctx).Create(&row).Error
}

func (g *GormStore) SaveMetadata(ctx context.Context, meta *model.BookMetadata) error {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Subjects").Save(meta).Error; err != nil {
			return err
		}
		return tx.Model(meta).Association("Subjects").Replace(meta.Subjects)
	})
}

func (g *GormStore) CreateFile(ctx context.Context, file *model.DocumentFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	return g.db.WithContext(ctx).Create(file).Error
}

func (g *GormStore) GetFile(ctx context.Context, docID string) (*model.DocumentFile, error) {
	var file model.DocumentFile
	err := g.db.WithContext(ctx).Where("document_id = ?", docID).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (g *GormStore) CreateShelf(ctx context.Context, shelf *model.Shelf) error {
	if shelf.ID == "" {
		shelf.ID = uuid.NewString()
	}
	return g.db.WithContext(ctx).Omit("Documents").Create(shelf).Error
}

func (g *GormStore) GetShelf(ctx context.Context, id string) (*model.Shelf, error) {
	var shelf model.Shelf
	err := g.db.WithContext(ctx).Preload("Documents").Where("id = ?", id).First(&shelf).Error
	if err != nil {
		return nil, err
	}
	return &shelf, nil
}

func (g *GormStore) ListShelves(ctx context.Context) ([]*model.Shelf, error) {
	var shelves []*model.Shelf
	err := g.db.WithContext(ctx).Preload("Documents").Order("display_order asc").Find(&shelves).Error
	return shelves, err
}

func (g *GormStore) UpdateShelf(ctx context.Context, shelf *model.Shelf) error {
	return g.db.WithContext(ctx).Omit("Documents").Save(shelf).Error
}

func (g *GormStore) DeleteShelf(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Document{}).Where("shelf_id = ?", id).Update("shelf_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", id).Delete(&model.Shelf{}).Error
	})
}

func (g *GormStore) ShelfExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Shelf{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (g *GormStore) CountShelves(ctx context.Context) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Shelf{}).Count(&count).Error
	return count, err
}

func (g *GormStore) SetDocumentShelf(ctx context.Context, docID string, shelfID *string) error {
	return g.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", docID).Update("shelf_id", shelfID).Error
}

func (g *GormStore) GetSubjectByName(ctx context.Context, name string) (*model.Subject, error) {
	var subject model.Subject
	err := g.db.WithContext(ctx).Where("name = ?", name).First(&subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (g *GormStore) CreateSubject(ctx context.Context, subject *model.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	return g.db.WithContext(ctx).Create(subject).Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
