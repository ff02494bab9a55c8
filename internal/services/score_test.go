package services

import (
	"math"
	"testing"
	"time"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/config"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/models"
)

var scoreTestNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestCalculator() *ScoreCalculator {
	calc := NewScoreCalculator(&config.Config{
		ScoreWeightFresh:    0.6,
		ScoreWeightRich:     0.4,
		FreshnessWindowDays: 180,
	})
	calc.now = func() time.Time { return scoreTestNow }
	return calc
}

func daysAgo(days int) *time.Time {
	ts := scoreTestNow.AddDate(0, 0, -days)
	return &ts
}

func TestFreshness(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name     string
		at       *time.Time
		expected float64
	}{
		{"never verified", nil, 0},
		{"verified today", daysAgo(0), 1.0},
		{"half window", daysAgo(90), 0.5},
		{"window edge", daysAgo(180), 0},
		{"older than window clamps to zero", daysAgo(400), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Freshness(tt.at)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Freshness() = %f, expected %f", got, tt.expected)
			}
			if got < 0 || got > 1 {
				t.Errorf("Freshness() = %f out of [0,1]", got)
			}
		})
	}
}

func intPtr(v int) *int {
	return &v
}

func TestRichness(t *testing.T) {
	calc := newTestCalculator()

	fullLink := models.GymEquipment{
		Count:              intPtr(3),
		MaxWeightKg:        intPtr(40),
		VerificationStatus: models.VerificationVerified,
	}
	emptyLink := models.GymEquipment{
		VerificationStatus: models.VerificationUnverified,
	}

	if got := calc.Richness(nil); got != 0 {
		t.Errorf("Richness(no links) = %f, expected 0", got)
	}
	if got := calc.Richness([]models.GymEquipment{fullLink}); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Richness(fully specified link) = %f, expected 1.0", got)
	}
	if got := calc.Richness([]models.GymEquipment{emptyLink}); got != 0 {
		t.Errorf("Richness(empty link) = %f, expected 0", got)
	}
}

// Filling in one more attribute must never lower richness.
func TestRichnessMonotonic(t *testing.T) {
	calc := newTestCalculator()

	link := models.GymEquipment{VerificationStatus: models.VerificationUnverified}
	prev := calc.Richness([]models.GymEquipment{link})

	link.Count = intPtr(2)
	next := calc.Richness([]models.GymEquipment{link})
	if next < prev {
		t.Errorf("richness decreased after setting count: %f -> %f", prev, next)
	}
	prev = next

	link.MaxWeightKg = intPtr(30)
	next = calc.Richness([]models.GymEquipment{link})
	if next < prev {
		t.Errorf("richness decreased after setting max_weight_kg: %f -> %f", prev, next)
	}
	prev = next

	link.VerificationStatus = models.VerificationVerified
	next = calc.Richness([]models.GymEquipment{link})
	if next < prev {
		t.Errorf("richness decreased after verification: %f -> %f", prev, next)
	}
	if next > 1 {
		t.Errorf("richness exceeded 1: %f", next)
	}
}

func TestScoreComposite(t *testing.T) {
	calc := newTestCalculator()

	gym := models.Gym{
		LastVerifiedAtCached: daysAgo(90), // freshness 0.5
		Equipments: []models.GymEquipment{
			{Count: intPtr(1), MaxWeightKg: intPtr(20), VerificationStatus: models.VerificationVerified}, // richness 1.0
		},
	}

	breakdown := calc.Score(&gym)
	if !breakdown.Computed {
		t.Errorf("expected Computed to be set")
	}
	expected := 0.6*0.5 + 0.4*1.0
	if math.Abs(breakdown.Score-expected) > 1e-9 {
		t.Errorf("Score = %f, expected %f", breakdown.Score, expected)
	}
}

func TestConfigWeightValidation(t *testing.T) {
	cfg := &config.Config{
		ScoreWeightFresh:    0.7,
		ScoreWeightRich:     0.4,
		FreshnessWindowDays: 180,
	}
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected validation to fail for weights summing to 1.1")
	}

	cfg.ScoreWeightRich = 0.3
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected weights 0.7/0.3 to validate, got %v", err)
	}

	cfg.FreshnessWindowDays = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected validation to fail for zero freshness window")
	}
}
