// Package migrate moves a library exported from a local mirror into a
// running server, or directly into a store.
package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/snapshot"
	"github.com/pagekeep/pagekeep/internal/storage"
	"github.com/pagekeep/pagekeep/internal/store"
)

// Bridge imports snapshot archives produced by a local-mirror export. The
// shelf relationship in those archives may have drifted, so it is
// reconciled before the restore.
type Bridge struct {
	httpClient *http.Client
}

func NewBridge() *Bridge {
	return &Bridge{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Load reads a snapshot archive from disk and reconciles its shelf
// relationship.
func (b *Bridge) Load(path string) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}
	if snap.Metadata == nil {
		return nil, fmt.Errorf("archive %s has no metadata", path)
	}

	snap.Metadata = snapshot.ReconcileShelves(snap.Metadata, snap.Shelves)
	logrus.Infof("loaded archive %s: %d documents, %d shelves, %d files",
		path, len(snap.Metadata), len(snap.Shelves), len(snap.Files))
	return &snap, nil
}

// RestoreDirect merges the snapshot straight into a store, bypassing HTTP.
func (b *Bridge) RestoreDirect(ctx context.Context, s store.Store, strategy storage.Strategy, snap *snapshot.Snapshot) (*snapshot.RestoreResult, error) {
	return snapshot.NewRestorer(s, strategy).Restore(ctx, snap)
}

// Push sends the snapshot to a running server's restore endpoint.
func (b *Bridge) Push(ctx context.Context, baseURL string, snap *snapshot.Snapshot) (*snapshot.RestoreResult, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/backup/restore", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("restore rejected: %s: %s", resp.Status, payload)
	}

	var result snapshot.RestoreResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	logrus.Infof("push complete: %d documents inserted, %d skipped", result.DocumentsInserted, result.DocumentsSkipped)
	return &result, nil
}
