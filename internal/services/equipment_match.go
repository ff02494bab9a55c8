package services

import (
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/models"
)

// Equipment match modes
const (
	MatchAll = "all"
	MatchAny = "any"
)

// EquipmentMatcher evaluates set membership of requested equipment slugs
// against a gym's links. Backing the request with a set makes the result
// independent of the order the slugs were supplied in.
//
// "all" requires a link to exist for every requested slug; whether it should
// additionally require availability=present is a product decision still to be
// confirmed, link existence is the behavior shipped today.
type EquipmentMatcher struct {
	slugs map[string]struct{}
	mode  string
}

func NewEquipmentMatcher(slugs []string, mode string) *EquipmentMatcher {
	set := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		set[slug] = struct{}{}
	}
	return &EquipmentMatcher{slugs: set, mode: mode}
}

// Matches reports whether the gym's links satisfy the requested set. Links
// whose Equipment relation is not loaded are ignored.
func (m *EquipmentMatcher) Matches(links []models.GymEquipment) bool {
	if len(m.slugs) == 0 {
		return true
	}

	linked := make(map[string]struct{}, len(links))
	for _, link := range links {
		if link.Equipment != nil {
			linked[link.Equipment.Slug] = struct{}{}
		}
	}

	switch m.mode {
	case MatchAll:
		for slug := range m.slugs {
			if _, ok := linked[slug]; !ok {
				return false
			}
		}
		return true
	default: // MatchAny
		for slug := range m.slugs {
			if _, ok := linked[slug]; ok {
				return true
			}
		}
		return false
	}
}
