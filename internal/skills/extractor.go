// Package skills extracts skill signals from free-form listing text.
// It is a keyword matcher over a fixed vocabulary: precision-biased and
// deterministic, not NLP.
package skills

import (
	"regexp"
	"strings"
)

// ExtractedSkill is one recognized skill with a heuristic confidence.
type ExtractedSkill struct {
	SkillName  string  `json:"skill_name"`
	Confidence float64 `json:"confidence"`
}

// shortSkillPatterns are precompiled word-boundary matchers for vocabulary
// entries of at most two characters, where plain substring matching would
// fire on almost any text (e.g. "r", "go").
var shortSkillPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, skill := range vocabulary {
		if len(skill) <= 2 {
			patterns[skill] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(skill) + `\b`)
		}
	}
	return patterns
}()

// Extract returns the vocabulary skills found in text, at most one entry per
// skill name. Short entries match only on word boundaries with a flat 0.7
// confidence; longer entries match as substrings with confidence growing by
// occurrence count, capped at 0.9. Empty text yields no skills.
func Extract(text string) []ExtractedSkill {
	if text == "" {
		return nil
	}

	lowerText := strings.ToLower(text)
	var found []ExtractedSkill

	for _, skill := range vocabulary {
		if pattern, ok := shortSkillPatterns[skill]; ok {
			if pattern.MatchString(lowerText) {
				found = append(found, ExtractedSkill{SkillName: skill, Confidence: 0.7})
			}
			continue
		}

		if strings.Contains(lowerText, skill) {
			count := strings.Count(lowerText, skill)
			confidence := 0.5 + 0.1*float64(count)
			if confidence > 0.9 {
				confidence = 0.9
			}
			found = append(found, ExtractedSkill{SkillName: skill, Confidence: confidence})
		}
	}

	return found
}
