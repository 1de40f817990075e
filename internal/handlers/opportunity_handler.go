package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wolram/jobapp/internal/models"
	"github.com/wolram/jobapp/internal/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type OpportunityHandler struct {
	scoreRepo   repositories.ScoreRepository
	profileRepo repositories.ProfileRepository
}

func NewOpportunityHandler(
	scoreRepo repositories.ScoreRepository,
	profileRepo repositories.ProfileRepository,
) *OpportunityHandler {
	return &OpportunityHandler{
		scoreRepo:   scoreRepo,
		profileRepo: profileRepo,
	}
}

// HandleList handles GET /opportunities. It returns scored opportunities
// for one of the caller's profiles, best matches first.
func (h *OpportunityHandler) HandleList(c *fiber.Ctx) error {
	profileID, err := uuid.Parse(c.Query("profile_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "profile_id must be a valid UUID",
		})
	}

	// The profile must belong to the caller.
	if _, err := h.profileRepo.FindByIDForUser(profileID, requestUserID(c)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}

	query := repositories.ScoredQuery{
		ProfileID: profileID,
		Limit:     defaultListLimit,
	}

	if status := c.Query("status"); status != "" {
		if status != string(models.ScoreStatusNew) && !models.ValidScoreStatus(status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "status must be one of: new, saved, dismissed, applied",
			})
		}
		parsed := models.ScoreStatus(status)
		query.Status = &parsed
	}

	if minScore := c.QueryInt("min_score", -1); minScore >= 0 {
		if minScore > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "min_score must be between 0 and 100",
			})
		}
		query.MinScore = &minScore
	}

	if limit := c.QueryInt("limit", defaultListLimit); limit > 0 {
		if limit > maxListLimit {
			limit = maxListLimit
		}
		query.Limit = limit
	}

	scores, err := h.scoreRepo.FindScored(query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list opportunities",
		})
	}

	data := make([]models.ScoredOpportunity, 0, len(scores))
	for _, score := range scores {
		data = append(data, models.ScoredOpportunity{
			ScoreID:     score.ID.String(),
			ProfileID:   score.ProfileID.String(),
			Opportunity: score.Opportunity,
			Score: models.ScoreBreakdown{
				TotalScore:    score.TotalScore,
				RuleScore:     score.RuleScore,
				SemanticScore: score.SemanticScore,
				Reasons:       score.ReasonsJSON,
				Status:        string(score.Status),
				ScoredAt:      score.ScoredAt,
			},
		})
	}

	return c.JSON(fiber.Map{"data": data})
}

// HandleUpdateStatus handles PATCH /opportunities/:id/status. The id is the
// score row's id; the status is user-owned and survives later re-scores.
func (h *OpportunityHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	scoreID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid score ID format",
		})
	}

	var req models.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if !models.ValidScoreStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be one of: saved, dismissed, applied",
		})
	}

	score, err := h.scoreRepo.FindByIDForUser(scoreID, requestUserID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Score not found",
		})
	}

	if err := h.scoreRepo.UpdateStatus(score.ID, models.ScoreStatus(req.Status)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update status",
		})
	}

	return c.JSON(fiber.Map{
		"id":     score.ID.String(),
		"status": req.Status,
	})
}
