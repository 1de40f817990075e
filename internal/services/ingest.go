package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/wolram/jobapp/internal/dedupe"
	"github.com/wolram/jobapp/internal/models"
	"github.com/wolram/jobapp/internal/repositories"
	"github.com/wolram/jobapp/internal/scoring"
	"github.com/wolram/jobapp/internal/skills"
)

// IngestService is where dedupe, extraction and scoring compose. It is
// idempotent: ingesting an identical batch twice leaves the same persisted
// state apart from scored_at timestamps.
type IngestService interface {
	Ingest(ctx context.Context, userID uuid.UUID, req *models.IngestRequest) (*models.IngestResponse, error)
}

type ingestService struct {
	oppRepo     repositories.OpportunityRepository
	profileRepo repositories.ProfileRepository
	scoreRepo   repositories.ScoreRepository
}

func NewIngestService(
	oppRepo repositories.OpportunityRepository,
	profileRepo repositories.ProfileRepository,
	scoreRepo repositories.ScoreRepository,
) IngestService {
	return &ingestService{
		oppRepo:     oppRepo,
		profileRepo: profileRepo,
		scoreRepo:   scoreRepo,
	}
}

// Ingest implements IngestService.
func (s *ingestService) Ingest(ctx context.Context, userID uuid.UUID, req *models.IngestRequest) (*models.IngestResponse, error) {
	collectedAt, err := time.Parse(time.RFC3339, req.CollectedAt)
	if err != nil {
		collectedAt = time.Now()
	}

	// Active profiles are loaded once per batch; every item is scored
	// against all of them.
	profiles, err := s.profileRepo.FindActiveByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	var insertedIDs, updatedIDs []string

	for _, item := range req.Opportunities {
		opportunityID, created, err := s.upsertOpportunity(req.Source, item, collectedAt)
		if err != nil {
			return nil, err
		}

		if created {
			insertedIDs = append(insertedIDs, opportunityID.String())
		} else {
			updatedIDs = append(updatedIDs, opportunityID.String())
		}

		// Score the current state of the opportunity, skills included.
		current, err := s.oppRepo.FindByID(opportunityID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload opportunity: %w", err)
		}

		for _, profile := range profiles {
			result := scoring.Score(profileInput(profile), opportunityInput(current))

			score := &models.ProfileOpportunityScore{
				ProfileID:     profile.ID,
				OpportunityID: current.ID,
				TotalScore:    result.TotalScore,
				RuleScore:     result.RuleScore,
				SemanticScore: result.SemanticScore,
				ReasonsJSON:   result.Reasons,
				Status:        models.ScoreStatusNew,
				ScoredAt:      time.Now(),
			}

			if err := s.scoreRepo.Upsert(score); err != nil {
				return nil, fmt.Errorf("failed to store score: %w", err)
			}
		}
	}

	log.Printf("📥 Ingested batch from %s: %d inserted, %d updated, %d profile(s) scored",
		req.Source, len(insertedIDs), len(updatedIDs), len(profiles))

	return &models.IngestResponse{
		Inserted: len(insertedIDs),
		Updated:  len(updatedIDs),
		IDs:      append(insertedIDs, updatedIDs...),
	}, nil
}

// upsertOpportunity creates or updates the row for one listing. Skills are
// extracted on first creation only; a later re-ingestion with a richer
// description updates the text but not the skill set.
func (s *ingestService) upsertOpportunity(source string, item models.IngestItem, collectedAt time.Time) (uuid.UUID, bool, error) {
	externalID := ""
	if item.ExternalID != nil {
		externalID = *item.ExternalID
	}
	key := dedupe.Key(source, item.URL, externalID)

	opp := &models.Opportunity{
		ID:             uuid.New(),
		DedupeKey:      key,
		Source:         models.OpportunitySource(source),
		ExternalID:     item.ExternalID,
		URL:            item.URL,
		Title:          item.Title,
		Company:        item.Company,
		Location:       item.Location,
		EmploymentType: item.EmploymentType,
		DescriptionRaw: item.DescriptionSnippet,
		PostedAt:       parseOptionalTime(item.PostedAt),
		CapturedAt:     collectedAt,
	}

	created, err := s.oppRepo.CreateIfAbsent(opp)
	if err != nil {
		return uuid.Nil, false, err
	}

	if created {
		description := ""
		if item.DescriptionSnippet != nil {
			description = *item.DescriptionSnippet
		}

		extracted := skills.Extract(description)
		oppSkills := make([]models.OpportunitySkill, 0, len(extracted))
		for _, skill := range extracted {
			oppSkills = append(oppSkills, models.OpportunitySkill{
				OpportunityID: opp.ID,
				SkillName:     skill.SkillName,
				Confidence:    skill.Confidence,
			})
		}

		if err := s.oppRepo.CreateSkills(oppSkills); err != nil {
			return uuid.Nil, false, err
		}

		return opp.ID, true, nil
	}

	// Row already exists for this key: patch the mutable fields, leave
	// identity and skills alone.
	existing, err := s.oppRepo.FindByDedupeKey(key)
	if err != nil {
		return uuid.Nil, false, err
	}

	patch := &repositories.OpportunityPatch{
		Title:          item.Title,
		Company:        item.Company,
		Location:       item.Location,
		EmploymentType: item.EmploymentType,
		DescriptionRaw: item.DescriptionSnippet,
	}
	if err := s.oppRepo.ApplyPatch(existing.ID, patch); err != nil {
		return uuid.Nil, false, err
	}

	return existing.ID, false, nil
}

func profileInput(profile models.CareerProfile) scoring.ProfileInput {
	input := scoring.ProfileInput{
		Title:        profile.Title,
		FunctionArea: deref(profile.FunctionArea),
		LocationPref: deref(profile.LocationPref),
		Seniority:    deref(profile.Seniority),
		WorkMode:     deref(profile.WorkMode),
	}
	for _, skill := range profile.Skills {
		input.Skills = append(input.Skills, scoring.ProfileSkillInput{
			SkillName: skill.SkillName,
			Weight:    skill.Weight,
			Required:  skill.Required,
		})
	}
	return input
}

func opportunityInput(opp *models.Opportunity) scoring.OpportunityInput {
	input := scoring.OpportunityInput{
		Title:          opp.Title,
		Company:        opp.Company,
		Location:       deref(opp.Location),
		EmploymentType: deref(opp.EmploymentType),
		Description:    deref(opp.DescriptionRaw),
	}
	for _, skill := range opp.Skills {
		input.Skills = append(input.Skills, skill.SkillName)
	}
	return input
}

func parseOptionalTime(value *string) *time.Time {
	if value == nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil
	}
	return &parsed
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
