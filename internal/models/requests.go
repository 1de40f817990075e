package models

import (
	"fmt"
	"net/url"
	"time"
)

// IngestItem is one scraped listing inside an ingest batch.
type IngestItem struct {
	Title              string  `json:"title"`
	Company            string  `json:"company"`
	URL                string  `json:"url"`
	Location           *string `json:"location,omitempty"`
	DescriptionSnippet *string `json:"description_snippet,omitempty"`
	ExternalID         *string `json:"external_id,omitempty"`
	EmploymentType     *string `json:"employment_type,omitempty"`
	PostedAt           *string `json:"posted_at,omitempty"`
}

// IngestRequest is the wire payload the collector delivers per chunk.
type IngestRequest struct {
	Source        string       `json:"source"`
	PageURL       string       `json:"page_url"`
	CollectedAt   string       `json:"collected_at"`
	Opportunities []IngestItem `json:"opportunities"`
}

// FieldError describes one validation failure on an ingest payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the payload against the wire contract. An empty slice
// means the payload is acceptable; nothing is persisted if any field fails.
func (r *IngestRequest) Validate() []FieldError {
	var errs []FieldError

	if !ValidSource(r.Source) {
		errs = append(errs, FieldError{"source", "must be one of: linkedin, gupy"})
	}

	if err := validateURL(r.PageURL, 2000); err != nil {
		errs = append(errs, FieldError{"page_url", err.Error()})
	}

	if _, err := time.Parse(time.RFC3339, r.CollectedAt); err != nil {
		errs = append(errs, FieldError{"collected_at", "must be an RFC 3339 timestamp"})
	}

	if len(r.Opportunities) == 0 {
		errs = append(errs, FieldError{"opportunities", "must contain at least 1 item"})
	} else if len(r.Opportunities) > 100 {
		errs = append(errs, FieldError{"opportunities", "must contain at most 100 items"})
	}

	for i, item := range r.Opportunities {
		prefix := fmt.Sprintf("opportunities[%d].", i)

		if l := len(item.Title); l < 1 || l > 500 {
			errs = append(errs, FieldError{prefix + "title", "must be 1-500 characters"})
		}
		if l := len(item.Company); l < 1 || l > 300 {
			errs = append(errs, FieldError{prefix + "company", "must be 1-300 characters"})
		}
		if err := validateURL(item.URL, 2000); err != nil {
			errs = append(errs, FieldError{prefix + "url", err.Error()})
		}
		if item.Location != nil && len(*item.Location) > 300 {
			errs = append(errs, FieldError{prefix + "location", "must be at most 300 characters"})
		}
		if item.DescriptionSnippet != nil && len(*item.DescriptionSnippet) > 5000 {
			errs = append(errs, FieldError{prefix + "description_snippet", "must be at most 5000 characters"})
		}
		if item.ExternalID != nil && len(*item.ExternalID) > 500 {
			errs = append(errs, FieldError{prefix + "external_id", "must be at most 500 characters"})
		}
		if item.EmploymentType != nil && len(*item.EmploymentType) > 100 {
			errs = append(errs, FieldError{prefix + "employment_type", "must be at most 100 characters"})
		}
		if item.PostedAt != nil {
			if _, err := time.Parse(time.RFC3339, *item.PostedAt); err != nil {
				errs = append(errs, FieldError{prefix + "posted_at", "must be an RFC 3339 timestamp"})
			}
		}
	}

	return errs
}

func validateURL(raw string, maxLen int) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	if len(raw) > maxLen {
		return fmt.Errorf("must be at most %d characters", maxLen)
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("must be a valid absolute URL")
	}
	return nil
}

// IngestResponse reports what a batch did.
type IngestResponse struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	IDs      []string `json:"ids"`
}

// StatusUpdateRequest sets the user-owned status on a score row.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// ScoreBreakdown is the score portion of a scored-opportunity response.
type ScoreBreakdown struct {
	TotalScore    int          `json:"total_score"`
	RuleScore     int          `json:"rule_score"`
	SemanticScore int          `json:"semantic_score"`
	Reasons       ScoreReasons `json:"reasons"`
	Status        string       `json:"status"`
	ScoredAt      time.Time    `json:"scored_at"`
}

// ScoredOpportunity pairs an opportunity with its score for one profile.
type ScoredOpportunity struct {
	ScoreID     string         `json:"score_id"`
	ProfileID   string         `json:"profile_id"`
	Opportunity Opportunity    `json:"opportunity"`
	Score       ScoreBreakdown `json:"score"`
}

// AlertRequest creates a digest alert.
type AlertRequest struct {
	Channel   string `json:"channel"`
	Frequency string `json:"frequency"`
	Threshold *int   `json:"threshold"`
}
