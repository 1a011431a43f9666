package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"subpad/internal/document"
	"subpad/internal/prefs"
	"subpad/internal/translate"
)

func (s *Server) instruction(c *fiber.Ctx) string {
	instruction, err := s.prefs.Instruction(c.Context())
	if err != nil {
		s.log.Warnw("Failed to load instruction, using default", "error", err)
		return prefs.DefaultInstruction
	}
	return instruction
}

func (s *Server) handleTranslate(c *fiber.Ctx) error {
	if s.svc == nil {
		return errorResponse(
			c,
			fiber.StatusServiceUnavailable,
			fmt.Errorf("AI processing is not configured"),
		)
	}

	id := c.Params("id")
	instruction := s.instruction(c)

	err := s.update(func(col document.Collection) (document.Collection, error) {
		return translate.ProcessDocument(c.Context(), s.svc, col, id, instruction)
	})
	if err != nil {
		s.log.Warnw("AI processing failed", "document", id, "error", err)
		return errorResponse(c, fiber.StatusBadGateway, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleTranslateAll(c *fiber.Ctx) error {
	if s.svc == nil {
		return errorResponse(
			c,
			fiber.StatusServiceUnavailable,
			fmt.Errorf("AI processing is not configured"),
		)
	}

	instruction := s.instruction(c)
	failed := 0
	_ = s.update(func(col document.Collection) (document.Collection, error) {
		var next document.Collection
		next, failed = translate.ProcessAll(c.Context(), s.svc, col, instruction)
		return next, nil
	})

	if failed > 0 {
		s.log.Warnw("Some documents failed AI processing", "failed", failed)
	}
	return c.JSON(fiber.Map{"failed": failed})
}

type instructionRequest struct {
	Instruction string `json:"instruction"`
}

func (s *Server) handleGetInstruction(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"instruction": s.instruction(c)})
}

func (s *Server) handleSetInstruction(c *fiber.Ctx) error {
	var req instructionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}
	if err := s.prefs.SetInstruction(c.Context(), req.Instruction); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
