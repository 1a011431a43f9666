package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"subpad/internal/document"
	"subpad/internal/importer"
	"subpad/internal/subtitle"
	"subpad/internal/timecode"
)

type entryView struct {
	subtitle.Entry
	DurationSeconds float64 `json:"durationSeconds"`
	CPS             int     `json:"cps"`
}

type documentView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Entries     []entryView `json:"entries"`
	NotepadText string      `json:"notepadText"`
	Dirty       bool        `json:"dirty"`
	Active      bool        `json:"active"`
}

func viewOf(doc document.Document, activeID string) documentView {
	entries := make([]entryView, len(doc.Entries))
	for i, entry := range doc.Entries {
		entries[i] = entryView{
			Entry:           entry,
			DurationSeconds: entry.DurationSeconds(),
			CPS:             entry.CPS(),
		}
	}
	return documentView{
		ID:          doc.ID,
		Name:        doc.Name,
		Entries:     entries,
		NotepadText: doc.NotepadText,
		Dirty:       doc.Dirty,
		Active:      doc.ID == activeID,
	}
}

func errorResponse(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) handleListFiles(c *fiber.Ctx) error {
	collection := s.snapshot()
	active, _ := collection.Active()

	views := make([]documentView, len(collection.Documents))
	for i, doc := range collection.Documents {
		views[i] = viewOf(doc, active.ID)
	}
	return c.JSON(fiber.Map{"files": views, "activeId": active.ID})
}

func (s *Server) handleGetFile(c *fiber.Ctx) error {
	collection := s.snapshot()
	doc, ok := collection.Get(c.Params("id"))
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, fmt.Errorf("no such document"))
	}
	active, _ := collection.Active()
	return c.JSON(viewOf(doc, active.ID))
}

func (s *Server) handleActivate(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.update(func(col document.Collection) (document.Collection, error) {
		if _, ok := col.Get(id); !ok {
			return col, fmt.Errorf("no such document")
		}
		return col.Activate(id), nil
	})
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleClose(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.update(func(col document.Collection) (document.Collection, error) {
		return col.Close(id)
	})
	if errors.Is(err, document.ErrLastDocument) {
		return errorResponse(c, fiber.StatusConflict, err)
	}
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type notepadRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleEditNotepad(c *fiber.Ctx) error {
	var req notepadRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	id := c.Params("id")
	err := s.update(func(col document.Collection) (document.Collection, error) {
		if _, ok := col.Get(id); !ok {
			return col, fmt.Errorf("no such document")
		}
		return col.Update(id, func(d document.Document) document.Document {
			return d.EditNotepad(req.Text)
		}), nil
	})
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleSync(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.update(func(col document.Collection) (document.Collection, error) {
		if _, ok := col.Get(id); !ok {
			return col, fmt.Errorf("no such document")
		}
		return col.Update(id, document.Document.Sync), nil
	})
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleSyncAll(c *fiber.Ctx) error {
	_ = s.update(func(col document.Collection) (document.Collection, error) {
		return col.SyncAll(), nil
	})
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	doc, ok := s.snapshot().Get(c.Params("id"))
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, fmt.Errorf("no such document"))
	}
	query := c.Query("q")
	matches := 0
	if query != "" {
		matches = strings.Count(
			strings.ToLower(doc.NotepadText),
			strings.ToLower(query),
		)
	}
	return c.JSON(fiber.Map{"matches": matches})
}

func (s *Server) handleAddEntry(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.update(func(col document.Collection) (document.Collection, error) {
		if _, ok := col.Get(id); !ok {
			return col, fmt.Errorf("no such document")
		}
		return col.Update(id, document.Document.AddEntry), nil
	})
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

type entryUpdateRequest struct {
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Text      *string `json:"text"`
}

// Timestamp fields that fail the strict HH:MM:SS,mmm check are dropped and
// the previous value kept; this mirrors the keystroke-level revert in the
// editor and is deliberately not an error.
func applyEntryUpdate(entry subtitle.Entry, req entryUpdateRequest) subtitle.Entry {
	if req.StartTime != nil && timecode.IsValid(*req.StartTime) {
		entry.StartTime = *req.StartTime
	}
	if req.EndTime != nil && timecode.IsValid(*req.EndTime) {
		entry.EndTime = *req.EndTime
	}
	if req.Text != nil {
		entry.Text = *req.Text
	}
	return entry
}

func (s *Server) handleUpdateEntry(c *fiber.Ctx) error {
	var req entryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	id := c.Params("id")
	entryID := c.Params("entryID")

	err := s.update(func(col document.Collection) (document.Collection, error) {
		doc, ok := col.Get(id)
		if !ok {
			return col, fmt.Errorf("no such document")
		}
		for _, entry := range doc.Entries {
			if entry.ID == entryID {
				return col.Replace(
					doc.UpdateEntry(entryID, applyEntryUpdate(entry, req)),
				), nil
			}
		}
		return col, fmt.Errorf("no such entry")
	})
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type nudgeRequest struct {
	Field   string `json:"field"`
	DeltaMs int    `json:"deltaMs"`
}

func (s *Server) handleNudgeEntry(c *fiber.Ctx) error {
	var req nudgeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	if req.Field != "start" && req.Field != "end" {
		return errorResponse(
			c,
			fiber.StatusBadRequest,
			fmt.Errorf("field must be start or end"),
		)
	}

	id := c.Params("id")
	entryID := c.Params("entryID")
	err := s.update(func(col document.Collection) (document.Collection, error) {
		doc, ok := col.Get(id)
		if !ok {
			return col, fmt.Errorf("no such document")
		}
		for _, entry := range doc.Entries {
			if entry.ID == entryID {
				if req.Field == "start" {
					entry.StartTime = timecode.Nudge(entry.StartTime, req.DeltaMs)
				} else {
					entry.EndTime = timecode.Nudge(entry.EndTime, req.DeltaMs)
				}
				return col.Replace(doc.UpdateEntry(entryID, entry)), nil
			}
		}
		return col, fmt.Errorf("no such entry")
	})
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleDeleteEntry(c *fiber.Ctx) error {
	id := c.Params("id")
	entryID := c.Params("entryID")
	err := s.update(func(col document.Collection) (document.Collection, error) {
		doc, ok := col.Get(id)
		if !ok {
			return col, fmt.Errorf("no such document")
		}
		return col.Replace(doc.DeleteEntry(entryID)), nil
	})
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func sourcesFromForm(form *multipart.Form) ([]importer.Source, error) {
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, fmt.Errorf("no files in request")
	}

	sources := make([]importer.Source, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", header.Filename, err)
		}
		sources = append(sources, importer.FromBytes(header.Filename, data))
	}
	return sources, nil
}

func (s *Server) handleImport(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	sources, err := sourcesFromForm(form)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	var summary importer.Summary
	_ = s.update(func(col document.Collection) (document.Collection, error) {
		col, summary = importer.ImportFiles(c.Context(), col, sources, nil)
		return col, nil
	})

	s.log.Infow("Imported files",
		"total", summary.Total,
		"added", summary.Added,
		"failed", summary.Failed,
	)
	return c.JSON(summary)
}

func (s *Server) handleImportRawFolder(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	sources, err := sourcesFromForm(form)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	var summary importer.Summary
	_ = s.update(func(col document.Collection) (document.Collection, error) {
		col, summary = importer.ImportRawFolder(c.Context(), col, sources, nil)
		return col, nil
	})
	if summary.Total == 0 {
		return errorResponse(
			c,
			fiber.StatusBadRequest,
			fmt.Errorf("no .txt files in request"),
		)
	}
	return c.JSON(summary)
}

func (s *Server) handleImportRaw(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	sources, err := sourcesFromForm(form)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	id := c.Params("id")
	err = s.update(func(col document.Collection) (document.Collection, error) {
		if _, ok := col.Get(id); !ok {
			return col, fmt.Errorf("no such document")
		}
		return importer.ImportRaw(c.Context(), col, id, sources[0])
	})
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
