package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wolram/jobapp/internal/models"
	"github.com/wolram/jobapp/internal/repositories"
)

const digestTopMatches = 10

// Notifier delivers one digest to a user. Email rendering and transport
// live outside this service; the default notifier just logs.
type Notifier interface {
	SendDigest(digest *models.AlertDigest) error
}

// DigestService assembles the periodic digest: for every due email alert it
// collects fresh, unreviewed scores above the alert's threshold and hands
// them to the notifier.
type DigestService interface {
	Run(ctx context.Context) (sent, failed int, err error)
}

type digestService struct {
	alertRepo   repositories.AlertRepository
	profileRepo repositories.ProfileRepository
	scoreRepo   repositories.ScoreRepository
	notifier    Notifier
	window      time.Duration
}

func NewDigestService(
	alertRepo repositories.AlertRepository,
	profileRepo repositories.ProfileRepository,
	scoreRepo repositories.ScoreRepository,
	notifier Notifier,
	window time.Duration,
) DigestService {
	return &digestService{
		alertRepo:   alertRepo,
		profileRepo: profileRepo,
		scoreRepo:   scoreRepo,
		notifier:    notifier,
		window:      window,
	}
}

// Run implements DigestService. One alert's failure does not stop the rest.
func (s *digestService) Run(ctx context.Context) (int, int, error) {
	cutoff := time.Now().Add(-s.window)

	alerts, err := s.alertRepo.FindDue(cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load due alerts: %w", err)
	}

	sent, failed := 0, 0

	for _, alert := range alerts {
		if alert.Channel != models.AlertChannelEmail {
			continue
		}

		profiles, err := s.profileRepo.FindActiveByUser(alert.UserID)
		if err != nil {
			log.Printf("⚠️  Digest: failed to load profiles for user %s: %v", alert.UserID, err)
			failed++
			continue
		}

		for _, profile := range profiles {
			scores, err := s.scoreRepo.FindRecentMatches(profile.ID, alert.Threshold, cutoff, digestTopMatches)
			if err != nil {
				log.Printf("⚠️  Digest: failed to load matches for profile %s: %v", profile.ID, err)
				failed++
				continue
			}

			if len(scores) == 0 {
				continue
			}

			digest := &models.AlertDigest{
				UserID:       alert.UserID,
				ProfileTitle: profile.Title,
				GeneratedAt:  time.Now(),
			}
			for _, score := range scores {
				digest.Opportunities = append(digest.Opportunities, models.DigestOpportunity{
					Title:      score.Opportunity.Title,
					Company:    score.Opportunity.Company,
					URL:        score.Opportunity.URL,
					TotalScore: score.TotalScore,
					Reasons:    score.ReasonsJSON,
				})
			}

			if err := s.notifier.SendDigest(digest); err != nil {
				log.Printf("⚠️  Digest: failed to notify user %s: %v", alert.UserID, err)
				failed++
			} else {
				sent++
			}
		}

		if err := s.alertRepo.MarkSent(alert.ID, time.Now()); err != nil {
			log.Printf("⚠️  Digest: failed to mark alert %s sent: %v", alert.ID, err)
		}
	}

	log.Printf("📬 Digest run complete: %d sent, %d failed, %d alert(s) processed", sent, failed, len(alerts))
	return sent, failed, nil
}

// LogNotifier is the in-repo notifier: it records the digest in the server
// log. Outbound email is handled elsewhere.
type LogNotifier struct{}

func (LogNotifier) SendDigest(digest *models.AlertDigest) error {
	log.Printf("📨 Digest for user %s (%s): %d new match(es), top score %d",
		digest.UserID, digest.ProfileTitle, len(digest.Opportunities), topScore(digest))
	return nil
}

func topScore(digest *models.AlertDigest) int {
	best := 0
	for _, opp := range digest.Opportunities {
		if opp.TotalScore > best {
			best = opp.TotalScore
		}
	}
	return best
}
