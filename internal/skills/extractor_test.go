package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findSkill(extracted []ExtractedSkill, name string) (ExtractedSkill, bool) {
	for _, skill := range extracted {
		if skill.SkillName == name {
			return skill, true
		}
	}
	return ExtractedSkill{}, false
}

func TestExtractEmptyText(t *testing.T) {
	assert.Empty(t, Extract(""))
}

func TestExtractConfidencesInRange(t *testing.T) {
	text := "We use Python, React, Docker, Kubernetes, PostgreSQL and AWS. " +
		"Experience with machine learning and CI/CD pipelines required."

	extracted := Extract(text)
	require.NotEmpty(t, extracted)

	for _, skill := range extracted {
		assert.Greater(t, skill.Confidence, 0.0, "skill %s", skill.SkillName)
		assert.LessOrEqual(t, skill.Confidence, 1.0, "skill %s", skill.SkillName)
	}
}

func TestExtractNoDuplicates(t *testing.T) {
	extracted := Extract("python python react python react")

	seen := map[string]bool{}
	for _, skill := range extracted {
		assert.False(t, seen[skill.SkillName], "duplicate skill %s", skill.SkillName)
		seen[skill.SkillName] = true
	}
}

func TestExtractRepetitionRaisesConfidence(t *testing.T) {
	single, ok := findSkill(Extract("we want python"), "python")
	require.True(t, ok)
	assert.InDelta(t, 0.6, single.Confidence, 1e-9)

	double, ok := findSkill(Extract("python and more python"), "python")
	require.True(t, ok)
	assert.Greater(t, double.Confidence, single.Confidence)

	many, ok := findSkill(Extract("python python python python python python"), "python")
	require.True(t, ok)
	assert.InDelta(t, 0.9, many.Confidence, 1e-9)
}

func TestExtractShortTokensNeedWordBoundaries(t *testing.T) {
	// "golang" must not fire the two-letter "go" entry.
	_, matchedInsideWord := findSkill(Extract("we love golang here"), "go")
	assert.False(t, matchedInsideWord)

	standalone, ok := findSkill(Extract("experience with Go required"), "go")
	require.True(t, ok)
	assert.InDelta(t, 0.7, standalone.Confidence, 1e-9)

	// "r" must not match every word containing the letter.
	_, rInsideWord := findSkill(Extract("our recruiters care"), "r")
	assert.False(t, rInsideWord)

	rAlone, ok := findSkill(Extract("statistics in R or Python"), "r")
	require.True(t, ok)
	assert.InDelta(t, 0.7, rAlone.Confidence, 1e-9)
}

func TestExtractIsCaseInsensitive(t *testing.T) {
	lower := Extract("kubernetes and terraform")
	upper := Extract("KUBERNETES and TERRAFORM")

	assert.ElementsMatch(t, lower, upper)
}

func TestExtractLowercaseNames(t *testing.T) {
	extracted := Extract("PostgreSQL, React Native and GitHub Actions experience")

	for _, skill := range extracted {
		assert.Equal(t, strings.ToLower(skill.SkillName), skill.SkillName)
	}

	_, ok := findSkill(extracted, "postgresql")
	assert.True(t, ok)
	_, ok = findSkill(extracted, "react native")
	assert.True(t, ok)
	_, ok = findSkill(extracted, "github actions")
	assert.True(t, ok)
}
