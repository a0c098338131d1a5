package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/pagekeep/internal/archive"
	"github.com/pagekeep/pagekeep/internal/cache"
	"github.com/pagekeep/pagekeep/internal/config"
	"github.com/pagekeep/pagekeep/internal/model"
	"github.com/pagekeep/pagekeep/internal/service"
	"github.com/pagekeep/pagekeep/internal/snapshot"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/tester"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st := tester.SetupStore(t)
	strategy := storage.NewFilesystemStrategy(tester.UploadDir(t))
	projections := cache.NopProjectionCache{}

	cfg := config.Config{Port: "0", CORSOrigin: "*"}
	return NewServer(cfg,
		service.NewDocumentService(st, strategy, projections),
		service.NewShelfService(st, projections),
		service.NewBackupService(st, strategy),
	)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRestoreRejectsMissingMetadata(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/backup/restore", map[string]any{
		"exportedAt": time.Now().UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Error.Message)
}

func TestRestoreEndpointAliases(t *testing.T) {
	srv := newTestServer(t)

	payload := map[string]any{"metadata": []any{}}
	for _, path := range []string{"/api/backup/restore", "/api/restore/restore", "/api/export/restore"} {
		rec := doJSON(t, srv, http.MethodPost, path, payload)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestUploadDownloadLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/documents", service.CreateDocumentInput{
		Title: "Dune",
		Kind:  model.KindEpub,
		Data:  archive.Encode("application/epub+zip", []byte("dune content")),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var proj snapshot.DocumentProjection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proj))
	require.NotEmpty(t, proj.ID)

	rec = doJSON(t, srv, http.MethodGet, "/api/documents/"+proj.ID+"/file", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/epub+zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Dune")
	assert.Equal(t, "dune content", rec.Body.String())

	rec = doJSON(t, srv, http.MethodDelete, "/api/documents/"+proj.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/documents/"+proj.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHeaders(t *testing.T) {
	srv := newTestServer(t)
	date := time.Now().UTC().Format("2006-01-02")

	rec := doJSON(t, srv, http.MethodGet, "/api/export/metadata", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "library-metadata-"+date+".json")

	rec = doJSON(t, srv, http.MethodPost, "/api/backup", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "library-backup-"+date+".json")

	var snap snapshot.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.NotNil(t, snap.Metadata)
}

func TestUnknownDocumentIs404(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/documents/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "error"))
}

func TestMalformedJSONIs400(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/shelves", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRestoreFailureSurfacesCause(t *testing.T) {
	srv := newTestServer(t)

	snap := snapshot.Snapshot{
		Metadata: []snapshot.DocumentProjection{
			{
				ID: "doc-1", Title: "Dune", Kind: model.KindEpub, FileSize: 4, UploadDate: time.Now().UTC(),
				ReadingGoal: &snapshot.GoalProjection{
					DailyMinutes:  20,
					CompletedDays: []string{"2025-01-01", "2025-01-01"},
				},
			},
		},
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/backup/restore", snap)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Error.Message, "restore document doc-1")
	assert.NotEqual(t, "internal server error", envelope.Error.Message)
}

func TestPutMethodAliases(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/documents", service.CreateDocumentInput{
		Title: "Dune",
		Kind:  model.KindEpub,
		Data:  archive.Encode("application/epub+zip", []byte("dune content")),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var proj snapshot.DocumentProjection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proj))

	page := 12
	rec = doJSON(t, srv, http.MethodPut, "/api/documents/"+proj.ID+"/progress", service.ProgressInput{
		CurrentPage: &page,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated snapshot.DocumentProjection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.CurrentPage)
	assert.Equal(t, 12, *updated.CurrentPage)

	rec = doJSON(t, srv, http.MethodGet, "/api/documents/"+proj.ID+"/content", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dune content", rec.Body.String())

	rec = doJSON(t, srv, http.MethodPut, "/api/documents/"+proj.ID, map[string]any{"title": "Dune Messiah"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Dune Messiah", updated.Title)
}

func TestShelfMembershipEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/shelves", service.ShelfInput{Name: "Sci-Fi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var shelf snapshot.ShelfProjection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shelf))

	var docIDs []string
	for _, title := range []string{"Dune", "Hyperion"} {
		rec = doJSON(t, srv, http.MethodPost, "/api/documents", service.CreateDocumentInput{
			Title: title,
			Kind:  model.KindEpub,
			Data:  archive.Encode("application/epub+zip", []byte(title)),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var proj snapshot.DocumentProjection
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proj))
		docIDs = append(docIDs, proj.ID)
	}

	// unknown IDs are skipped, not an error
	rec = doJSON(t, srv, http.MethodPut, "/api/shelves/"+shelf.ID+"/documents", service.MembershipInput{
		AddDocumentIDs: append(docIDs, "no-such-doc"),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shelf))
	assert.ElementsMatch(t, docIDs, shelf.DocumentIDs)

	rec = doJSON(t, srv, http.MethodPut, "/api/shelves/"+shelf.ID+"/documents", service.MembershipInput{
		RemoveDocumentIDs: []string{docIDs[0]},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shelf))
	assert.ElementsMatch(t, docIDs[1:], shelf.DocumentIDs)

	rec = doJSON(t, srv, http.MethodPut, "/api/shelves/no-such-shelf/documents", service.MembershipInput{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRestoreThenList(t *testing.T) {
	srv := newTestServer(t)

	snap := snapshot.Snapshot{
		Metadata: []snapshot.DocumentProjection{
			{ID: "doc-1", Title: "Dune", Kind: model.KindEpub, FileSize: 4, UploadDate: time.Now().UTC()},
		},
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/backup/restore", snap)
	require.Equal(t, http.StatusOK, rec.Code)

	var result snapshot.RestoreResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.DocumentsInserted)

	rec = doJSON(t, srv, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []snapshot.DocumentProjection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-1", docs[0].ID)
}
