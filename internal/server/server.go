// Package server exposes the document collection over a JSON HTTP API,
// the surface the browser editor talks to.
package server

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"subpad/internal/document"
	"subpad/internal/logging"
	"subpad/internal/prefs"
	"subpad/internal/translate"
)

// Server owns the in-memory collection. The collection is the single
// shared mutable resource: handlers take the lock, compute a new snapshot
// and swap it in whole, so no partial update is ever observable.
type Server struct {
	app   *fiber.App
	log   *logging.Logger
	prefs *prefs.Store
	svc   translate.Service

	mu         sync.Mutex
	collection document.Collection
}

// New builds a server seeded with the default document. svc may be nil
// when no translation API key is configured; the translate endpoints then
// report failure without touching any document.
func New(
	log *logging.Logger,
	store *prefs.Store,
	svc translate.Service,
) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "SubPad",
			DisableStartupMessage: true,
			BodyLimit:             64 * 1024 * 1024,
		}),
		log:        log,
		prefs:      store,
		svc:        svc,
		collection: document.Seed(),
	}

	s.app.Use(fiberlogger.New())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/files", s.handleListFiles)
	api.Get("/files/:id", s.handleGetFile)
	api.Post("/files/import", s.handleImport)
	api.Post("/files/raw-folder", s.handleImportRawFolder)
	api.Post("/files/:id/raw", s.handleImportRaw)
	api.Post("/files/:id/activate", s.handleActivate)
	api.Delete("/files/:id", s.handleClose)

	api.Patch("/files/:id/notepad", s.handleEditNotepad)
	api.Post("/files/:id/sync", s.handleSync)
	api.Post("/sync-all", s.handleSyncAll)
	api.Get("/files/:id/search", s.handleSearch)

	api.Post("/files/:id/entries", s.handleAddEntry)
	api.Patch("/files/:id/entries/:entryID", s.handleUpdateEntry)
	api.Post("/files/:id/entries/:entryID/nudge", s.handleNudgeEntry)
	api.Delete("/files/:id/entries/:entryID", s.handleDeleteEntry)

	api.Get("/files/:id/export", s.handleExportOne)
	api.Get("/export/bundle", s.handleExportBundle)

	api.Post("/files/:id/translate", s.handleTranslate)
	api.Post("/translate-all", s.handleTranslateAll)

	api.Get("/settings/instruction", s.handleGetInstruction)
	api.Put("/settings/instruction", s.handleSetInstruction)
}

// Listen blocks serving the API on addr.
func (s *Server) Listen(addr string) error {
	s.log.Infow("Starting SubPad server", "bind", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// snapshot returns the current collection under the lock.
func (s *Server) snapshot() document.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection
}

// update applies fn to the current collection and swaps in the result
// only when fn succeeds, keeping mutations atomic from the caller's
// perspective.
func (s *Server) update(
	fn func(document.Collection) (document.Collection, error),
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.collection)
	if err != nil {
		return err
	}
	s.collection = next
	return nil
}
