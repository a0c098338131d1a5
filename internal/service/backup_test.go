package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/pagekeep/internal/archive"
	"github.com/pagekeep/pagekeep/internal/cache"
	"github.com/pagekeep/pagekeep/internal/model"
	"github.com/pagekeep/pagekeep/internal/snapshot"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/tester"
)

func TestBackupService_RejectsPayloadWithoutMetadata(t *testing.T) {
	svc := NewBackupService(tester.SetupStore(t), storage.NewDatabaseStrategy())

	_, err := svc.Restore(context.Background(), &snapshot.Snapshot{})
	assert.ErrorIs(t, err, ErrMissingMetadata)

	_, err = svc.Restore(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingMetadata)
}

func TestBackupService_ExportRestoreRoundTrip(t *testing.T) {
	st := tester.SetupStore(t)
	strategy := storage.NewFilesystemStrategy(tester.UploadDir(t))
	documents := NewDocumentService(st, strategy, cache.NopProjectionCache{})
	backup := NewBackupService(st, strategy)
	ctx := context.Background()

	_, err := documents.Create(ctx, CreateDocumentInput{
		Title: "Dune",
		Kind:  model.KindEpub,
		Data:  archive.Encode("application/epub+zip", []byte("dune content")),
	})
	require.NoError(t, err)

	snap, err := backup.ExportFull(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Metadata, 1)
	require.Len(t, snap.Files, 1)

	// restoring an export of this library into itself changes nothing
	result, err := backup.Restore(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 0, result.DocumentsInserted)
	assert.Equal(t, 1, result.DocumentsSkipped)

	// and restores everything into an empty one
	st2 := tester.SetupStore(t)
	backup2 := NewBackupService(st2, storage.NewDatabaseStrategy())
	result, err = backup2.Restore(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DocumentsInserted)
}

func TestBackupService_EmptyMetadataArrayIsValid(t *testing.T) {
	svc := NewBackupService(tester.SetupStore(t), storage.NewDatabaseStrategy())

	result, err := svc.Restore(context.Background(), &snapshot.Snapshot{
		Metadata: []snapshot.DocumentProjection{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.DocumentsInserted)
}
