package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/snapshot"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/store"
)

// BackupService fronts the snapshot builder and restorer. Restores are
// serialized: concurrent merges of overlapping payloads would race their
// existence checks.
type BackupService struct {
	builder  *snapshot.Builder
	restorer *snapshot.Restorer

	restoreMu sync.Mutex
}

func NewBackupService(s store.Store, strategy storage.Strategy) *BackupService {
	return &BackupService{
		builder:  snapshot.NewBuilder(s, strategy),
		restorer: snapshot.NewRestorer(s, strategy),
	}
}

// ExportMetadata builds a snapshot without binary payloads.
func (s *BackupService) ExportMetadata(ctx context.Context) (*snapshot.Snapshot, error) {
	return s.builder.Export(ctx, snapshot.ModeMetadata)
}

// ExportFull builds a snapshot carrying every stored binary.
func (s *BackupService) ExportFull(ctx context.Context) (*snapshot.Snapshot, error) {
	return s.builder.Export(ctx, snapshot.ModeFull)
}

// Restore merges a snapshot into the library. A payload without a metadata
// array is rejected before anything is touched.
func (s *BackupService) Restore(ctx context.Context, snap *snapshot.Snapshot) (*snapshot.RestoreResult, error) {
	if snap == nil || snap.Metadata == nil {
		return nil, ErrMissingMetadata
	}

	s.restoreMu.Lock()
	defer s.restoreMu.Unlock()

	result, err := s.restorer.Restore(ctx, snap)
	if err != nil {
		return nil, err
	}
	logrus.Infof("restore complete: %d shelves, %d documents inserted, %d skipped, %d subjects created",
		result.ShelvesInserted, result.DocumentsInserted, result.DocumentsSkipped, result.SubjectsCreated)
	return result, nil
}
