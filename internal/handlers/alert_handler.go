package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wolram/jobapp/internal/models"
	"github.com/wolram/jobapp/internal/repositories"
)

const defaultAlertThreshold = 50

type AlertHandler struct {
	alertRepo repositories.AlertRepository
}

func NewAlertHandler(alertRepo repositories.AlertRepository) *AlertHandler {
	return &AlertHandler{
		alertRepo: alertRepo,
	}
}

// HandleList handles GET /alerts.
func (h *AlertHandler) HandleList(c *fiber.Ctx) error {
	alerts, err := h.alertRepo.FindByUser(requestUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list alerts",
		})
	}

	return c.JSON(fiber.Map{"data": alerts})
}

// HandleCreate handles POST /alerts.
func (h *AlertHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.AlertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if !models.ValidAlertChannel(req.Channel) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "channel must be one of: in_app, email",
		})
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = "daily"
	}
	if frequency != "daily" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "frequency must be: daily",
		})
	}

	threshold := defaultAlertThreshold
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "threshold must be between 0 and 100",
			})
		}
		threshold = *req.Threshold
	}

	alert := &models.Alert{
		UserID:    requestUserID(c),
		Channel:   models.AlertChannel(req.Channel),
		Frequency: frequency,
		Threshold: threshold,
	}

	if err := h.alertRepo.Create(alert); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create alert",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(alert)
}
