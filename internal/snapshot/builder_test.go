package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/pagekeep/internal/archive"
	"github.com/pagekeep/pagekeep/internal/model"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/tester"
)

func TestExportMetadataCarriesNoFiles(t *testing.T) {
	st := tester.SetupStore(t)
	strategy := storage.NewFilesystemStrategy(tester.UploadDir(t))
	ctx := context.Background()

	_, err := NewRestorer(st, strategy).Restore(ctx, sampleSnapshot())
	require.NoError(t, err)

	snap, err := NewBuilder(st, strategy).Export(ctx, ModeMetadata)
	require.NoError(t, err)

	assert.Len(t, snap.Metadata, 2)
	assert.Len(t, snap.Shelves, 1)
	assert.Empty(t, snap.Files)
	assert.NotEmpty(t, snap.ExportedAt)
	_, err = time.Parse(time.RFC3339, snap.ExportedAt)
	assert.NoError(t, err)
}

func TestExportFullRoundTrips(t *testing.T) {
	st := tester.SetupStore(t)
	strategy := storage.NewFilesystemStrategy(tester.UploadDir(t))
	ctx := context.Background()

	_, err := NewRestorer(st, strategy).Restore(ctx, sampleSnapshot())
	require.NoError(t, err)

	snap, err := NewBuilder(st, strategy).Export(ctx, ModeFull)
	require.NoError(t, err)

	// doc-2 has no stored binary, doc-1 does
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "doc-1", snap.Files[0].ID)
	assert.Equal(t, "application/epub+zip", snap.Files[0].Type)
	data, err := archive.Decode(snap.Files[0].Data)
	require.NoError(t, err)
	assert.Equal(t, []byte("dune epub 1"), data)

	// the export restores into a second, empty deployment
	st2 := tester.SetupStore(t)
	result, err := NewRestorer(st2, storage.NewDatabaseStrategy()).Restore(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DocumentsInserted)

	doc, err := st2.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, doc.File)
	assert.Equal(t, []byte("dune epub 1"), doc.File.FileData)
}

func TestExportSkipsUnreadableBinary(t *testing.T) {
	st := tester.SetupStore(t)
	ctx := context.Background()

	doc := &model.Document{ID: "doc-x", Title: "Ghost", Kind: model.KindPdf, UploadDate: time.Now().UTC()}
	require.NoError(t, st.CreateDocument(ctx, doc))
	missing := "/nonexistent/path.pdf"
	require.NoError(t, st.CreateFile(ctx, &model.DocumentFile{DocumentID: "doc-x", FilePath: &missing, MimeType: "application/pdf"}))

	snap, err := NewBuilder(st, storage.NewFilesystemStrategy(tester.UploadDir(t))).Export(ctx, ModeFull)
	require.NoError(t, err)

	assert.Len(t, snap.Metadata, 1)
	assert.Empty(t, snap.Files)
}

func TestProjectCapsSessionWindow(t *testing.T) {
	doc := &model.Document{ID: "doc-1", Title: "Long read", Kind: model.KindEpub}
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < sessionProjectionLimit+5; i++ {
		doc.Sessions = append(doc.Sessions, model.ReadingSession{
			DocumentID: "doc-1",
			StartedAt:  start.AddDate(0, 0, i),
			EndedAt:    start.AddDate(0, 0, i).Add(10 * time.Minute),
			Duration:   600,
		})
	}

	proj := Project(doc)
	require.NotNil(t, proj.ReadingStats)
	assert.Len(t, proj.ReadingStats.Sessions, sessionProjectionLimit)
	// newest first
	assert.Equal(t, start.AddDate(0, 0, sessionProjectionLimit+4), proj.ReadingStats.Sessions[0].StartedAt)
}
