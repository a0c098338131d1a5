// Package server exposes the library over a JSON REST API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/config"
	"github.com/pagekeep/pagekeep/internal/service"
)

type Server struct {
	documents *service.DocumentService
	shelves   *service.ShelfService
	backup    *service.BackupService

	httpServer *http.Server
}

func NewServer(cfg config.Config, documents *service.DocumentService, shelves *service.ShelfService, backup *service.BackupService) *Server {
	s := &Server{
		documents: documents,
		shelves:   shelves,
		backup:    backup,
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(s.routes()),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", MakeHandler(s.handleListDocuments))
			r.Post("/", MakeHandler(s.handleCreateDocument))

			r.Route("/{documentID}", func(r chi.Router) {
				r.Get("/", MakeHandler(s.handleGetDocument))
				r.Patch("/", MakeHandler(s.handleUpdateDocument))
				r.Put("/", MakeHandler(s.handleUpdateDocument))
				r.Delete("/", MakeHandler(s.handleDeleteDocument))
				r.Get("/file", MakeHandler(s.handleDownloadFile))
				r.Get("/content", MakeHandler(s.handleDownloadFile))
				r.Patch("/progress", MakeHandler(s.handleUpdateProgress))
				r.Put("/progress", MakeHandler(s.handleUpdateProgress))
				r.Put("/shelf", MakeHandler(s.handleAssignShelf))

				r.Post("/bookmarks", MakeHandler(s.handleAddBookmark))
				r.Patch("/bookmarks/{bookmarkID}", MakeHandler(s.handleUpdateBookmark))
				r.Put("/bookmarks/{bookmarkID}", MakeHandler(s.handleUpdateBookmark))
				r.Delete("/bookmarks/{bookmarkID}", MakeHandler(s.handleDeleteBookmark))

				r.Get("/stats", MakeHandler(s.handleGetStats))
				r.Post("/sessions", MakeHandler(s.handleRecordSession))

				r.Get("/goal", MakeHandler(s.handleGetGoal))
				r.Put("/goal", MakeHandler(s.handleSetGoal))
				r.Post("/goal/complete", MakeHandler(s.handleCompleteGoal))
			})
		})

		r.Route("/shelves", func(r chi.Router) {
			r.Get("/", MakeHandler(s.handleListShelves))
			r.Post("/", MakeHandler(s.handleCreateShelf))
			r.Get("/{shelfID}", MakeHandler(s.handleGetShelf))
			r.Patch("/{shelfID}", MakeHandler(s.handleUpdateShelf))
			r.Put("/{shelfID}", MakeHandler(s.handleUpdateShelf))
			r.Put("/{shelfID}/documents", MakeHandler(s.handleShelfMembership))
			r.Delete("/{shelfID}", MakeHandler(s.handleDeleteShelf))
		})

		// the backup surface answers under three mounts
		for _, mount := range []string{"/export", "/backup", "/restore"} {
			r.Route(mount, func(r chi.Router) {
				r.Get("/metadata", MakeHandler(s.handleExportMetadata))
				r.Post("/", MakeHandler(s.handleExportFull))
				r.Post("/restore", MakeHandler(s.handleRestore))
			})
		}
	})

	return r
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	logrus.Infof("listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
