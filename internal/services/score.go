package services

import (
	"time"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/config"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/models"
)

// ScoreBreakdown carries the computed relevance components for one gym.
// Computed distinguishes "not computed for this request" from "computed as
// zero"; the serialization boundary flattens both to 0.0.
type ScoreBreakdown struct {
	Freshness float64
	Richness  float64
	Score     float64
	Computed  bool
}

// ScoreCalculator computes freshness, richness and their weighted composite.
// Weights come from the boot-validated configuration; the calculator itself
// is pure and safe for concurrent use.
type ScoreCalculator struct {
	weightFresh float64
	weightRich  float64
	windowDays  float64
	now         func() time.Time
}

func NewScoreCalculator(cfg *config.Config) *ScoreCalculator {
	return &ScoreCalculator{
		weightFresh: cfg.ScoreWeightFresh,
		weightRich:  cfg.ScoreWeightRich,
		windowDays:  float64(cfg.FreshnessWindowDays),
		now:         time.Now,
	}
}

// Freshness decays linearly from 1 to 0 over the configured window.
// A gym that was never verified scores 0.
func (s *ScoreCalculator) Freshness(lastVerifiedAt *time.Time) float64 {
	if lastVerifiedAt == nil {
		return 0
	}
	ageDays := s.now().Sub(*lastVerifiedAt).Hours() / 24
	f := 1 - ageDays/s.windowDays
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Richness measures equipment data completeness as the mean per-link
// completeness, each link contributing equally from its count, max weight and
// verified status. Monotonic in the number of filled attributes, bounded to
// [0,1], and 0 for a gym with no links.
func (s *ScoreCalculator) Richness(links []models.GymEquipment) float64 {
	if len(links) == 0 {
		return 0
	}
	var total float64
	for _, link := range links {
		var filled float64
		if link.Count != nil {
			filled++
		}
		if link.MaxWeightKg != nil {
			filled++
		}
		if link.VerificationStatus == models.VerificationVerified {
			filled++
		}
		total += filled / 3
	}
	return total / float64(len(links))
}

// Score computes the full breakdown for a gym.
func (s *ScoreCalculator) Score(gym *models.Gym) ScoreBreakdown {
	freshness := s.Freshness(gym.LastVerifiedAtCached)
	richness := s.Richness(gym.Equipments)
	return ScoreBreakdown{
		Freshness: freshness,
		Richness:  richness,
		Score:     s.weightFresh*freshness + s.weightRich*richness,
		Computed:  true,
	}
}
