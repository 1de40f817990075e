// Package scoring matches a career profile against an opportunity and
// explains the result. The total blends an explicit rule component with a
// lexical-overlap semantic component; the semantic side is a placeholder
// until embedding-based matching lands.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/wolram/jobapp/internal/models"
)

const (
	ruleWeight     = 0.7
	semanticWeight = 0.3

	titleFactorWeight    = 20
	locationFactorWeight = 10
)

// ProfileInput is the slice of a career profile the engine needs.
type ProfileInput struct {
	Title        string
	FunctionArea string
	LocationPref string
	Seniority    string
	WorkMode     string
	Skills       []ProfileSkillInput
}

type ProfileSkillInput struct {
	SkillName string
	Weight    int
	Required  bool
}

// OpportunityInput is the slice of an opportunity the engine needs. Skills
// are the names previously extracted for the opportunity.
type OpportunityInput struct {
	Title          string
	Company        string
	Location       string
	EmploymentType string
	Description    string
	Skills         []string
}

// Result carries the three integer scores, all in [0,100], plus the ordered
// reasons: rule reasons first, then the single semantic_similarity reason.
type Result struct {
	TotalScore    int
	RuleScore     int
	SemanticScore int
	Reasons       models.ScoreReasons
}

// Score computes the match between a profile and an opportunity. Missing
// optional fields lower the score but never cause an error.
func Score(profile ProfileInput, opp OpportunityInput) Result {
	ruleScore, ruleReasons := ruleScore(profile, opp)
	semanticScore, semanticReason := semanticScore(profile, opp)

	total := clamp(int(math.Round(float64(ruleScore)*ruleWeight + float64(semanticScore)*semanticWeight)))

	reasons := append(ruleReasons, semanticReason)

	return Result{
		TotalScore:    total,
		RuleScore:     ruleScore,
		SemanticScore: semanticScore,
		Reasons:       reasons,
	}
}

// ruleScore is a weighted average over skill, title and location factors.
// A required skill that is missing still counts in the denominator, dragging
// the average down.
func ruleScore(profile ProfileInput, opp OpportunityInput) (int, models.ScoreReasons) {
	reasons := models.ScoreReasons{}
	totalWeight := 0.0
	earnedScore := 0.0

	oppSkillNames := make(map[string]bool, len(opp.Skills))
	for _, name := range opp.Skills {
		oppSkillNames[strings.ToLower(name)] = true
	}
	oppDescription := strings.ToLower(opp.Description)

	// Skill matching (primary factor)
	for _, skill := range profile.Skills {
		skillLower := strings.ToLower(skill.SkillName)
		matched := oppSkillNames[skillLower] || strings.Contains(oppDescription, skillLower)
		weight := float64(skill.Weight)
		totalWeight += weight

		if matched {
			earnedScore += weight
			reasons = append(reasons, models.ScoreReason{
				Factor: "skill_match",
				Score:  skill.Weight,
				Detail: fmt.Sprintf("Skill %q matched (weight: %d)", skill.SkillName, skill.Weight),
			})
		} else if skill.Required {
			reasons = append(reasons, models.ScoreReason{
				Factor: "skill_missing_required",
				Score:  0,
				Detail: fmt.Sprintf("Required skill %q not found", skill.SkillName),
			})
		}
	}

	// Title similarity: the factor weight always counts toward the
	// denominator so a missed title does not distort the average.
	titleWords := strings.Fields(strings.ToLower(profile.Title))
	oppTitleLower := strings.ToLower(opp.Title)
	titleMatches := 0
	for _, word := range titleWords {
		if strings.Contains(oppTitleLower, word) {
			titleMatches++
		}
	}
	totalWeight += titleFactorWeight
	if len(titleWords) > 0 && titleMatches > 0 {
		titleScore := float64(titleMatches) / float64(len(titleWords)) * titleFactorWeight
		earnedScore += titleScore
		reasons = append(reasons, models.ScoreReason{
			Factor: "title_match",
			Score:  int(math.Round(titleScore)),
			Detail: fmt.Sprintf("Title match: %d/%d words", titleMatches, len(titleWords)),
		})
	}

	// Location preference, only when both sides state one.
	if profile.LocationPref != "" && opp.Location != "" {
		totalWeight += locationFactorWeight
		if strings.Contains(strings.ToLower(opp.Location), strings.ToLower(profile.LocationPref)) {
			earnedScore += locationFactorWeight
			reasons = append(reasons, models.ScoreReason{
				Factor: "location_match",
				Score:  locationFactorWeight,
				Detail: fmt.Sprintf("Location %q matches preference", opp.Location),
			})
		}
	}

	if totalWeight == 0 {
		return 0, reasons
	}

	score := clamp(int(math.Round(earnedScore / totalWeight * 100)))
	return score, reasons
}

// semanticScore is a bag-of-words overlap: the share of distinct profile
// terms (longer than two characters) also present in the opportunity text.
func semanticScore(profile ProfileInput, opp OpportunityInput) (int, models.ScoreReason) {
	profileParts := []string{profile.Title, profile.FunctionArea, profile.Seniority}
	for _, skill := range profile.Skills {
		profileParts = append(profileParts, skill.SkillName)
	}
	oppParts := []string{opp.Title, opp.Company, opp.Description}

	profileWords := wordSet(profileParts)
	oppWords := wordSet(oppParts)

	overlap := 0
	for word := range profileWords {
		if oppWords[word] {
			overlap++
		}
	}

	score := 0
	if len(profileWords) > 0 {
		score = int(math.Round(float64(overlap) / float64(len(profileWords)) * 100))
		if score > 100 {
			score = 100
		}
	}

	reason := models.ScoreReason{
		Factor: "semantic_similarity",
		Score:  score,
		Detail: fmt.Sprintf("Text overlap: %d/%d profile terms found in opportunity", overlap, len(profileWords)),
	}
	return score, reason
}

func wordSet(parts []string) map[string]bool {
	words := make(map[string]bool)
	for _, part := range parts {
		for _, word := range strings.Fields(strings.ToLower(part)) {
			if len(word) > 2 {
				words[word] = true
			}
		}
	}
	return words
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
