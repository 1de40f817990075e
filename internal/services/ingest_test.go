package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolram/jobapp/internal/models"
	"github.com/wolram/jobapp/internal/repositories"
)

type fakeOpportunityRepo struct {
	byKey        map[string]*models.Opportunity
	byID         map[uuid.UUID]*models.Opportunity
	skills       map[uuid.UUID][]models.OpportunitySkill
	patchesCalls int
	skillsCalls  int
}

func newFakeOpportunityRepo() *fakeOpportunityRepo {
	return &fakeOpportunityRepo{
		byKey:  make(map[string]*models.Opportunity),
		byID:   make(map[uuid.UUID]*models.Opportunity),
		skills: make(map[uuid.UUID][]models.OpportunitySkill),
	}
}

func (f *fakeOpportunityRepo) CreateIfAbsent(opp *models.Opportunity) (bool, error) {
	if _, exists := f.byKey[opp.DedupeKey]; exists {
		return false, nil
	}
	stored := *opp
	f.byKey[opp.DedupeKey] = &stored
	f.byID[opp.ID] = &stored
	return true, nil
}

func (f *fakeOpportunityRepo) FindByDedupeKey(key string) (*models.Opportunity, error) {
	opp, ok := f.byKey[key]
	if !ok {
		return nil, fmt.Errorf("opportunity not found")
	}
	copied := *opp
	return &copied, nil
}

func (f *fakeOpportunityRepo) FindByID(id uuid.UUID) (*models.Opportunity, error) {
	opp, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("opportunity not found")
	}
	copied := *opp
	copied.Skills = append([]models.OpportunitySkill(nil), f.skills[id]...)
	return &copied, nil
}

func (f *fakeOpportunityRepo) ApplyPatch(id uuid.UUID, patch *repositories.OpportunityPatch) error {
	opp, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("opportunity not found")
	}
	f.patchesCalls++
	opp.Title = patch.Title
	opp.Company = patch.Company
	if patch.Location != nil {
		opp.Location = patch.Location
	}
	if patch.EmploymentType != nil {
		opp.EmploymentType = patch.EmploymentType
	}
	if patch.DescriptionRaw != nil {
		opp.DescriptionRaw = patch.DescriptionRaw
	}
	opp.UpdatedAt = time.Now()
	return nil
}

func (f *fakeOpportunityRepo) CreateSkills(skills []models.OpportunitySkill) error {
	f.skillsCalls++
	for _, skill := range skills {
		f.skills[skill.OpportunityID] = append(f.skills[skill.OpportunityID], skill)
	}
	return nil
}

func (f *fakeOpportunityRepo) FindSkills(opportunityID uuid.UUID) ([]models.OpportunitySkill, error) {
	return f.skills[opportunityID], nil
}

type fakeProfileRepo struct {
	profiles []models.CareerProfile
}

func (f *fakeProfileRepo) FindActiveByUser(_ uuid.UUID) ([]models.CareerProfile, error) {
	return f.profiles, nil
}

func (f *fakeProfileRepo) FindByIDForUser(id, _ uuid.UUID) (*models.CareerProfile, error) {
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			return &f.profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile not found")
}

type scorePair struct {
	profileID     uuid.UUID
	opportunityID uuid.UUID
}

type fakeScoreRepo struct {
	rows    map[scorePair]*models.ProfileOpportunityScore
	upserts int
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{rows: make(map[scorePair]*models.ProfileOpportunityScore)}
}

func (f *fakeScoreRepo) Upsert(score *models.ProfileOpportunityScore) error {
	f.upserts++
	key := scorePair{score.ProfileID, score.OpportunityID}
	if existing, ok := f.rows[key]; ok {
		existing.TotalScore = score.TotalScore
		existing.RuleScore = score.RuleScore
		existing.SemanticScore = score.SemanticScore
		existing.ReasonsJSON = score.ReasonsJSON
		existing.ScoredAt = score.ScoredAt
		return nil
	}
	stored := *score
	stored.ID = uuid.New()
	f.rows[key] = &stored
	return nil
}

func (f *fakeScoreRepo) FindByIDForUser(id, _ uuid.UUID) (*models.ProfileOpportunityScore, error) {
	for _, row := range f.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, fmt.Errorf("score not found")
}

func (f *fakeScoreRepo) UpdateStatus(id uuid.UUID, status models.ScoreStatus) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.Status = status
			return nil
		}
	}
	return fmt.Errorf("score not found")
}

func (f *fakeScoreRepo) FindScored(_ repositories.ScoredQuery) ([]models.ProfileOpportunityScore, error) {
	return nil, nil
}

func (f *fakeScoreRepo) FindRecentMatches(uuid.UUID, int, time.Time, int) ([]models.ProfileOpportunityScore, error) {
	return nil, nil
}

func strPtr(value string) *string {
	return &value
}

func testProfile(userID uuid.UUID) models.CareerProfile {
	profileID := uuid.New()
	return models.CareerProfile{
		ID:           profileID,
		UserID:       userID,
		Title:        "Backend Engineer",
		LocationPref: strPtr("Remote"),
		IsActive:     true,
		Skills: []models.ProfileSkill{
			{ProfileID: profileID, SkillName: "python", Weight: 5, Required: true},
			{ProfileID: profileID, SkillName: "docker", Weight: 3},
		},
	}
}

func testBatch() *models.IngestRequest {
	return &models.IngestRequest{
		Source:      "linkedin",
		PageURL:     "https://www.linkedin.com/jobs/search",
		CollectedAt: "2025-06-01T12:00:00Z",
		Opportunities: []models.IngestItem{
			{
				Title:              "Backend Engineer",
				Company:            "Acme",
				URL:                "https://www.linkedin.com/jobs/view/100",
				Location:           strPtr("Remote"),
				DescriptionSnippet: strPtr("We use Python and Docker heavily. Python experience required."),
				ExternalID:         strPtr("100"),
			},
			{
				Title:              "Data Engineer",
				Company:            "Globex",
				URL:                "https://www.linkedin.com/jobs/view/200",
				DescriptionSnippet: strPtr("Airflow pipelines with Python on Kubernetes."),
				ExternalID:         strPtr("200"),
			},
		},
	}
}

func newTestService(profiles ...models.CareerProfile) (IngestService, *fakeOpportunityRepo, *fakeScoreRepo) {
	oppRepo := newFakeOpportunityRepo()
	scoreRepo := newFakeScoreRepo()
	svc := NewIngestService(oppRepo, &fakeProfileRepo{profiles: profiles}, scoreRepo)
	return svc, oppRepo, scoreRepo
}

func TestIngestCreatesOpportunitiesAndScores(t *testing.T) {
	userID := uuid.New()
	svc, oppRepo, scoreRepo := newTestService(testProfile(userID))

	resp, err := svc.Ingest(context.Background(), userID, testBatch())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Inserted)
	assert.Equal(t, 0, resp.Updated)
	assert.Len(t, resp.IDs, 2)

	assert.Len(t, oppRepo.byKey, 2)
	assert.Len(t, scoreRepo.rows, 2)

	for _, row := range scoreRepo.rows {
		assert.GreaterOrEqual(t, row.TotalScore, 0)
		assert.LessOrEqual(t, row.TotalScore, 100)
		assert.Equal(t, models.ScoreStatusNew, row.Status)
		assert.NotEmpty(t, row.ReasonsJSON)
	}
}

func TestIngestExtractsSkillsOnCreate(t *testing.T) {
	userID := uuid.New()
	svc, oppRepo, _ := newTestService(testProfile(userID))

	resp, err := svc.Ingest(context.Background(), userID, testBatch())
	require.NoError(t, err)

	firstID := uuid.MustParse(resp.IDs[0])
	skills, err := oppRepo.FindSkills(firstID)
	require.NoError(t, err)

	names := make([]string, 0, len(skills))
	for _, skill := range skills {
		names = append(names, skill.SkillName)
	}
	assert.Contains(t, names, "python")
	assert.Contains(t, names, "docker")
}

func TestIngestSecondBatchUpdatesInsteadOfInserting(t *testing.T) {
	userID := uuid.New()
	svc, oppRepo, scoreRepo := newTestService(testProfile(userID))

	_, err := svc.Ingest(context.Background(), userID, testBatch())
	require.NoError(t, err)

	resp, err := svc.Ingest(context.Background(), userID, testBatch())
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Inserted)
	assert.Equal(t, 2, resp.Updated)

	// No new rows on either side of the pipeline.
	assert.Len(t, oppRepo.byKey, 2)
	assert.Len(t, scoreRepo.rows, 2)
	assert.Equal(t, 4, scoreRepo.upserts)
}

func TestIngestDoesNotReextractSkillsOnUpdate(t *testing.T) {
	userID := uuid.New()
	svc, oppRepo, _ := newTestService(testProfile(userID))

	first := testBatch()
	_, err := svc.Ingest(context.Background(), userID, first)
	require.NoError(t, err)
	callsAfterCreate := oppRepo.skillsCalls

	second := testBatch()
	second.Opportunities[0].DescriptionSnippet = strPtr("Now the role also wants Kubernetes and Terraform.")
	_, err = svc.Ingest(context.Background(), userID, second)
	require.NoError(t, err)

	assert.Equal(t, callsAfterCreate, oppRepo.skillsCalls)
}

func TestIngestPatchPreservesIdentityFields(t *testing.T) {
	userID := uuid.New()
	svc, oppRepo, _ := newTestService(testProfile(userID))

	resp, err := svc.Ingest(context.Background(), userID, testBatch())
	require.NoError(t, err)

	firstID := uuid.MustParse(resp.IDs[0])
	before, err := oppRepo.FindByID(firstID)
	require.NoError(t, err)

	second := testBatch()
	second.CollectedAt = "2025-06-02T12:00:00Z"
	second.Opportunities[0].Title = "Senior Backend Engineer"
	_, err = svc.Ingest(context.Background(), userID, second)
	require.NoError(t, err)

	after, err := oppRepo.FindByID(firstID)
	require.NoError(t, err)

	assert.Equal(t, "Senior Backend Engineer", after.Title)
	assert.Equal(t, before.DedupeKey, after.DedupeKey)
	assert.Equal(t, before.Source, after.Source)
	assert.Equal(t, before.CapturedAt, after.CapturedAt)
}

func TestIngestRescorePreservesUserStatus(t *testing.T) {
	userID := uuid.New()
	svc, _, scoreRepo := newTestService(testProfile(userID))

	_, err := svc.Ingest(context.Background(), userID, testBatch())
	require.NoError(t, err)

	var saved *models.ProfileOpportunityScore
	for _, row := range scoreRepo.rows {
		saved = row
		break
	}
	require.NotNil(t, saved)
	require.NoError(t, scoreRepo.UpdateStatus(saved.ID, models.ScoreStatusSaved))
	scoredAtBefore := saved.ScoredAt

	_, err = svc.Ingest(context.Background(), userID, testBatch())
	require.NoError(t, err)

	assert.Equal(t, models.ScoreStatusSaved, saved.Status)
	assert.True(t, saved.ScoredAt.After(scoredAtBefore) || saved.ScoredAt.Equal(scoredAtBefore))
}

func TestIngestScoresAgainstEveryActiveProfile(t *testing.T) {
	userID := uuid.New()
	svc, _, scoreRepo := newTestService(testProfile(userID), testProfile(userID))

	batch := testBatch()
	batch.Opportunities = batch.Opportunities[:1]
	_, err := svc.Ingest(context.Background(), userID, batch)
	require.NoError(t, err)

	assert.Len(t, scoreRepo.rows, 2)
}

func TestIngestWithoutProfilesStillPersists(t *testing.T) {
	userID := uuid.New()
	svc, oppRepo, scoreRepo := newTestService()

	resp, err := svc.Ingest(context.Background(), userID, testBatch())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Inserted)
	assert.Len(t, oppRepo.byKey, 2)
	assert.Empty(t, scoreRepo.rows)
}
