package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"subpad/internal/archive"
	"subpad/internal/document"
	"subpad/internal/subtitle"
)

func formatFromQuery(c *fiber.Ctx) (subtitle.Format, error) {
	format := subtitle.Format(c.Query("format", string(subtitle.FormatSRT)))
	if !subtitle.IsValidFormat(format) {
		return "", fmt.Errorf(
			"unsupported format %q: use srt, vtt, txt, lrc, or raw",
			format,
		)
	}
	return format, nil
}

func sendSerialized(c *fiber.Ctx, doc document.Document, format subtitle.Format) error {
	name, content := archive.ExportDocument(doc, format)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(content)
}

func (s *Server) handleExportOne(c *fiber.Ctx) error {
	format, err := formatFromQuery(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	doc, ok := s.snapshot().Get(c.Params("id"))
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, fmt.Errorf("no such document"))
	}
	return sendSerialized(c, doc, format)
}

// handleExportBundle zips the selected documents (all of them when no ids
// are given). A single-document selection skips the archive and sends the
// serialized file directly. Export reads the collection only, so a failure
// here can never leave it inconsistent.
func (s *Server) handleExportBundle(c *fiber.Ctx) error {
	format, err := formatFromQuery(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	collection := s.snapshot()
	docs := collection.Documents
	if ids := c.Query("ids"); ids != "" {
		docs = nil
		for _, id := range strings.Split(ids, ",") {
			if doc, ok := collection.Get(strings.TrimSpace(id)); ok {
				docs = append(docs, doc)
			}
		}
	}
	if len(docs) == 0 {
		return errorResponse(
			c,
			fiber.StatusBadRequest,
			fmt.Errorf("no documents selected"),
		)
	}

	if len(docs) == 1 {
		return sendSerialized(c, docs[0], format)
	}

	data, err := archive.Bundle(docs, format, nil)
	if err != nil {
		s.log.Errorw("Bundle export failed", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, err)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(
		"attachment; filename=%q",
		archive.BundleName(time.Now()),
	))
	c.Set(fiber.HeaderContentType, "application/zip")
	return c.Send(data)
}
