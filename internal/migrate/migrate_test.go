package migrate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/pagekeep/internal/model"
	"github.com/pagekeep/pagekeep/internal/snapshot"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/store"
)

func writeArchive(t *testing.T, snap snapshot.Snapshot) string {
	t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "local-export.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func driftedSnapshot() snapshot.Snapshot {
	stray := "deleted-shelf"
	return snapshot.Snapshot{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Metadata: []snapshot.DocumentProjection{
			{ID: "doc-1", Title: "Dune", Kind: model.KindEpub, UploadDate: time.Now().UTC(), ShelfID: &stray},
			{ID: "doc-2", Title: "Paper", Kind: model.KindPdf, UploadDate: time.Now().UTC()},
		},
		Shelves: []snapshot.ShelfProjection{
			{ID: "shelf-1", Name: "Fiction", DocumentIDs: []string{"doc-2"}},
		},
	}
}

func TestBridgeLoadReconcilesShelves(t *testing.T) {
	bridge := NewBridge()
	path := writeArchive(t, driftedSnapshot())

	snap, err := bridge.Load(path)
	require.NoError(t, err)

	// doc-1 pointed at a shelf absent from the export
	assert.Nil(t, snap.Metadata[0].ShelfID)
	// doc-2 is claimed by shelf-1's membership list
	require.NotNil(t, snap.Metadata[1].ShelfID)
	assert.Equal(t, "shelf-1", *snap.Metadata[1].ShelfID)
}

func TestBridgeLoadRejectsArchiveWithoutMetadata(t *testing.T) {
	bridge := NewBridge()
	path := writeArchive(t, snapshot.Snapshot{ExportedAt: "2025-01-01T00:00:00Z"})

	_, err := bridge.Load(path)
	assert.Error(t, err)
}

func TestBridgeRestoreDirect(t *testing.T) {
	bridge := NewBridge()
	snap, err := bridge.Load(writeArchive(t, driftedSnapshot()))
	require.NoError(t, err)

	st := store.NewMemoryStore()
	result, err := bridge.RestoreDirect(context.Background(), st, storage.NewDatabaseStrategy(), snap)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DocumentsInserted)
	assert.Equal(t, 1, result.ShelvesInserted)

	doc, err := st.GetDocument(context.Background(), "doc-2")
	require.NoError(t, err)
	require.NotNil(t, doc.ShelfID)
	assert.Equal(t, "shelf-1", *doc.ShelfID)
}

func TestBridgePush(t *testing.T) {
	var received snapshot.Snapshot
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/backup/restore", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(snapshot.RestoreResult{DocumentsInserted: 2})
	}))
	defer ts.Close()

	bridge := NewBridge()
	snap, err := bridge.Load(writeArchive(t, driftedSnapshot()))
	require.NoError(t, err)

	result, err := bridge.Push(context.Background(), ts.URL, snap)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DocumentsInserted)
	assert.Len(t, received.Metadata, 2)
}

func TestBridgePushSurfacesServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"backup payload has no metadata"}}`))
	}))
	defer ts.Close()

	bridge := NewBridge()
	snap, err := bridge.Load(writeArchive(t, driftedSnapshot()))
	require.NoError(t, err)

	_, err = bridge.Push(context.Background(), ts.URL, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore rejected")
}
