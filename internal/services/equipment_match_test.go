package services

import (
	"testing"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/models"
)

func linksFor(slugs ...string) []models.GymEquipment {
	links := make([]models.GymEquipment, 0, len(slugs))
	for _, slug := range slugs {
		links = append(links, models.GymEquipment{
			Equipment: &models.Equipment{Slug: slug},
		})
	}
	return links
}

func TestEquipmentMatcher(t *testing.T) {
	tests := []struct {
		name     string
		request  []string
		mode     string
		links    []models.GymEquipment
		expected bool
	}{
		{"all with every slug linked", []string{"squat-rack", "bench"}, MatchAll, linksFor("squat-rack", "bench", "dumbbell"), true},
		{"all with one slug missing", []string{"squat-rack", "bench"}, MatchAll, linksFor("squat-rack"), false},
		{"any with one slug linked", []string{"squat-rack", "bench"}, MatchAny, linksFor("bench"), true},
		{"any with nothing linked", []string{"squat-rack", "bench"}, MatchAny, linksFor("treadmill"), false},
		{"no links at all", []string{"bench"}, MatchAny, nil, false},
		{"link without loaded equipment is ignored", []string{"bench"}, MatchAny, []models.GymEquipment{{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewEquipmentMatcher(tt.request, tt.mode)
			if got := m.Matches(tt.links); got != tt.expected {
				t.Errorf("Matches() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

// The requested slug order must never change the outcome.
func TestEquipmentMatcherOrderIndependence(t *testing.T) {
	links := linksFor("squat-rack", "bench")

	for _, mode := range []string{MatchAll, MatchAny} {
		forward := NewEquipmentMatcher([]string{"squat-rack", "bench"}, mode).Matches(links)
		backward := NewEquipmentMatcher([]string{"bench", "squat-rack"}, mode).Matches(links)
		if forward != backward {
			t.Errorf("mode %s: order changed the result (%v vs %v)", mode, forward, backward)
		}
	}
}

func TestEquipmentMatcherDuplicateSlugs(t *testing.T) {
	m := NewEquipmentMatcher([]string{"bench", "bench"}, MatchAll)
	if !m.Matches(linksFor("bench")) {
		t.Errorf("duplicate requested slugs should collapse into one")
	}
}
