package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/pagekeep/internal/service"
)

func (s *Server) handleListShelves(w http.ResponseWriter, r *http.Request) error {
	projs, err := s.shelves.List(r.Context())
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, projs)
	return nil
}

func (s *Server) handleCreateShelf(w http.ResponseWriter, r *http.Request) error {
	var in service.ShelfInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	if in.Name == "" {
		return ErrBadRequest("name is required")
	}
	proj, err := s.shelves.Create(r.Context(), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusCreated, proj)
	return nil
}

func (s *Server) handleGetShelf(w http.ResponseWriter, r *http.Request) error {
	proj, err := s.shelves.Get(r.Context(), chi.URLParam(r, "shelfID"))
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, proj)
	return nil
}

func (s *Server) handleUpdateShelf(w http.ResponseWriter, r *http.Request) error {
	var in service.UpdateShelfInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	proj, err := s.shelves.Update(r.Context(), chi.URLParam(r, "shelfID"), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, proj)
	return nil
}

func (s *Server) handleShelfMembership(w http.ResponseWriter, r *http.Request) error {
	var in service.MembershipInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	proj, err := s.shelves.UpdateMembership(r.Context(), chi.URLParam(r, "shelfID"), in)
	if err != nil {
		return err
	}
	RespondJSON(w, http.StatusOK, proj)
	return nil
}

func (s *Server) handleDeleteShelf(w http.ResponseWriter, r *http.Request) error {
	if err := s.shelves.Delete(r.Context(), chi.URLParam(r, "shelfID")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
