package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wolram/jobapp/internal/models"
	"github.com/wolram/jobapp/internal/services"
)

type IngestHandler struct {
	ingestService services.IngestService
}

func NewIngestHandler(ingestService services.IngestService) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
	}
}

// HandleIngest handles POST /extension/ingest. The whole batch is validated
// up front; nothing is persisted if any field is rejected.
func (h *IngestHandler) HandleIngest(c *fiber.Ctx) error {
	var req models.IngestRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation error",
			"details": fieldErrs,
		})
	}

	result, err := h.ingestService.Ingest(c.Context(), requestUserID(c), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to ingest batch",
		})
	}

	return c.JSON(result)
}
