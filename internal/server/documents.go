package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/pagekeep/internal/service"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) error {
	projs, err := s.documents.List(r.Context())
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, projs)
	return nil
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) error {
	var in service.CreateDocumentInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	if in.Title == "" {
		return ErrBadRequest("title is required")
	}
	proj, err := s.documents.Create(r.Context(), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusCreated, proj)
	return nil
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) error {
	proj, err := s.documents.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, proj)
	return nil
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) error {
	var in service.UpdateDocumentInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	proj, err := s.documents.Update(r.Context(), chi.URLParam(r, "documentID"), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, proj)
	return nil
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) error {
	if err := s.documents.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) error {
	data, mimeType, title, err := s.documents.DownloadFile(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", title))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) error {
	var in service.ProgressInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	proj, err := s.documents.UpdateProgress(r.Context(), chi.URLParam(r, "documentID"), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, proj)
	return nil
}

func (s *Server) handleAssignShelf(w http.ResponseWriter, r *http.Request) error {
	var in struct {
		ShelfID *string `json:"shelfId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	docID := chi.URLParam(r, "documentID")
	if err := s.shelves.AssignDocument(r.Context(), docID, in.ShelfID); err != nil {
		return err
	}
	proj, err := s.documents.Get(r.Context(), docID)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, proj)
	return nil
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request) error {
	var in service.BookmarkInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	if in.Location == "" {
		return ErrBadRequest("location is required")
	}
	bookmark, err := s.documents.AddBookmark(r.Context(), chi.URLParam(r, "documentID"), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusCreated, bookmark)
	return nil
}

func (s *Server) handleUpdateBookmark(w http.ResponseWriter, r *http.Request) error {
	var in service.BookmarkInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	bookmark, err := s.documents.UpdateBookmark(r.Context(), chi.URLParam(r, "documentID"), chi.URLParam(r, "bookmarkID"), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, bookmark)
	return nil
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) error {
	err := s.documents.DeleteBookmark(r.Context(), chi.URLParam(r, "documentID"), chi.URLParam(r, "bookmarkID"))
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := s.documents.Stats(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, stats)
	return nil
}

func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) error {
	var in service.SessionInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	if in.Duration < 0 {
		return ErrBadRequest("duration must not be negative")
	}
	stats, err := s.documents.RecordSession(r.Context(), chi.URLParam(r, "documentID"), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusCreated, stats)
	return nil
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) error {
	goal, err := s.documents.Goal(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, goal)
	return nil
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) error {
	var in service.GoalInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	if in.DailyMinutes <= 0 {
		return ErrBadRequest("dailyMinutes must be positive")
	}
	goal, err := s.documents.SetGoal(r.Context(), chi.URLParam(r, "documentID"), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, goal)
	return nil
}

func (s *Server) handleCompleteGoal(w http.ResponseWriter, r *http.Request) error {
	goal, err := s.documents.MarkGoalComplete(r.Context(), chi.URLParam(r, "documentID"), time.Now())
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, goal)
	return nil
}
