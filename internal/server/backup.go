package server

import (
	"net/http"
	"time"

	"github.com/pagekeep/pagekeep/internal/snapshot"
)

func (s *Server) handleExportMetadata(w http.ResponseWriter, r *http.Request) error {
	snap, err := s.backup.ExportMetadata(r.Context())
	if err != nil {
		return err
	}
	date := time.Now().UTC().Format("2006-01-02")
	w.Header().Set("Content-Disposition", `attachment; filename="library-metadata-`+date+`.json"`)
	RespondJSON(w, http.StatusOK, snap)
	return nil
}

func (s *Server) handleExportFull(w http.ResponseWriter, r *http.Request) error {
	snap, err := s.backup.ExportFull(r.Context())
	if err != nil {
		return err
	}
	date := time.Now().UTC().Format("2006-01-02")
	w.Header().Set("Content-Disposition", `attachment; filename="library-backup-`+date+`.json"`)
	RespondJSON(w, http.StatusOK, snap)
	return nil
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) error {
	var snap snapshot.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		return err
	}
	result, err := s.backup.Restore(r.Context(), &snap)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, result)
	return nil
}
