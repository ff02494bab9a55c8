package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/config"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/models"
)

func newPlannerService() *SearchService {
	s := &SearchService{
		scorer: NewScoreCalculator(&config.Config{
			ScoreWeightFresh:    0.6,
			ScoreWeightRich:     0.4,
			FreshnessWindowDays: 180,
		}),
	}
	s.scorer.now = func() time.Time { return scoreTestNow }
	return s
}

func testGym(id uint, name string, lat, lng float64) models.Gym {
	return models.Gym{
		ID:        id,
		Slug:      fmt.Sprintf("gym-%d", id),
		Name:      name,
		Pref:      "tokyo",
		City:      "chiyoda",
		Lat:       &lat,
		Lng:       &lng,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
	}
}

func mustValidate(t *testing.T, c *SearchCriteria) *SearchCriteria {
	t.Helper()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	return c
}

func TestSearchCriteriaValidate(t *testing.T) {
	tests := []struct {
		name   string
		c      SearchCriteria
		field  string
		schema bool
	}{
		{"mixed case pref", SearchCriteria{Pref: "Tokyo"}, "pref", false},
		{"mixed case city", SearchCriteria{City: "Chiyoda"}, "city", false},
		{"lat without lng", SearchCriteria{Lat: floatPtr(35)}, "lat", false},
		{"lat out of range", SearchCriteria{Lat: floatPtr(95), Lng: floatPtr(139)}, "lat", true},
		{"lng out of range", SearchCriteria{Lat: floatPtr(35), Lng: floatPtr(190)}, "lng", true},
		{"radius without center", SearchCriteria{RadiusKm: floatPtr(5)}, "radius_km", false},
		{"non-positive radius", SearchCriteria{Lat: floatPtr(35), Lng: floatPtr(139), RadiusKm: floatPtr(0)}, "radius_km", false},
		{"radius combined with bounding box", SearchCriteria{Lat: floatPtr(35), Lng: floatPtr(139), RadiusKm: floatPtr(5), Bounds: BoundsFilter{MinLat: floatPtr(34)}}, "radius_km", false},
		{"distance sort without center", SearchCriteria{Sort: SortDistance}, "sort", false},
		{"unknown sort", SearchCriteria{Sort: "popularity"}, "sort", false},
		{"unknown equipment match", SearchCriteria{EquipmentMatch: "most"}, "equipment_match", false},
		{"blank equipment slug", SearchCriteria{Equipments: []string{"  "}}, "equipments", false},
		{"page size above limit", SearchCriteria{PageSize: 51}, "page_size", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("field = %q, expected %q", vErr.Field, tt.field)
			}
			if vErr.Schema != tt.schema {
				t.Errorf("schema = %v, expected %v", vErr.Schema, tt.schema)
			}
		})
	}
}

func TestSearchCriteriaDefaults(t *testing.T) {
	c := mustValidate(t, &SearchCriteria{})

	if c.Sort != SortCreatedAt {
		t.Errorf("default sort = %q, expected %q", c.Sort, SortCreatedAt)
	}
	if c.EquipmentMatch != MatchAny {
		t.Errorf("default equipment_match = %q, expected %q", c.EquipmentMatch, MatchAny)
	}
	if c.Page != 1 || c.PageSize != defaultPageSize {
		t.Errorf("default paging = %d/%d, expected 1/%d", c.Page, c.PageSize, defaultPageSize)
	}
}

// Three gyms at roughly 0, 1.9 and 10 km from the center; a 2 km radius keeps
// the first two, ordered by ascending distance.
func TestPlanRadiusFilterAndDistanceSort(t *testing.T) {
	s := newPlannerService()
	center := GeoPoint{Lat: 35.0, Lng: 139.0}

	gyms := []models.Gym{
		testGym(3, "Far Gym", 35.09, 139.0),      // ~10.0 km
		testGym(1, "Center Gym", 35.0, 139.0),    // 0 km
		testGym(2, "Near Gym", 35.0171, 139.0),   // ~1.9 km
	}

	c := mustValidate(t, &SearchCriteria{
		Lat:      &center.Lat,
		Lng:      &center.Lng,
		RadiusKm: floatPtr(2.0),
		Sort:     SortDistance,
	})

	resp, err := s.plan(gyms, c)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}

	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got total=%d len=%d", resp.Total, len(resp.Items))
	}
	if resp.Items[0].ID != 1 || resp.Items[1].ID != 2 {
		t.Errorf("expected order [1 2], got [%d %d]", resp.Items[0].ID, resp.Items[1].ID)
	}

	for _, item := range resp.Items {
		if item.DistanceKm == nil {
			t.Fatalf("expected distance for item %d", item.ID)
		}
		if *item.DistanceKm > 2.0 {
			t.Errorf("item %d at %f km escaped the radius", item.ID, *item.DistanceKm)
		}
	}
}

func TestPlanEquipmentAllAny(t *testing.T) {
	s := newPlannerService()

	gymA := testGym(1, "Gym A", 35.0, 139.0)
	gymA.Equipments = linksFor("squat-rack", "bench")
	gymB := testGym(2, "Gym B", 35.0, 139.0)
	gymB.Equipments = linksFor("squat-rack")
	gyms := []models.Gym{gymA, gymB}

	all := mustValidate(t, &SearchCriteria{
		Equipments:     []string{"squat-rack", "bench"},
		EquipmentMatch: MatchAll,
		Sort:           SortGymName,
	})
	resp, err := s.plan(gyms, all)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != 1 {
		t.Errorf("all: expected only gym A, got %+v", resp.Items)
	}

	anyMode := mustValidate(t, &SearchCriteria{
		Equipments:     []string{"squat-rack", "bench"},
		EquipmentMatch: MatchAny,
		Sort:           SortGymName,
	})
	resp, err = s.plan(gyms, anyMode)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("any: expected both gyms, got %d", len(resp.Items))
	}
	// A gym matching several requested slugs still appears exactly once
	seen := map[uint]int{}
	for _, item := range resp.Items {
		seen[item.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("gym %d duplicated %d times", id, n)
		}
	}
}

func TestPlanEquipmentOrderInvariance(t *testing.T) {
	s := newPlannerService()

	gymA := testGym(1, "Gym A", 35.0, 139.0)
	gymA.Equipments = linksFor("squat-rack", "bench")
	gymB := testGym(2, "Gym B", 35.0, 139.0)
	gymB.Equipments = linksFor("bench")
	gyms := []models.Gym{gymA, gymB}

	run := func(slugs []string) []uint {
		c := mustValidate(t, &SearchCriteria{
			Equipments:     slugs,
			EquipmentMatch: MatchAny,
			Sort:           SortGymName,
		})
		resp, err := s.plan(gyms, c)
		if err != nil {
			t.Fatalf("plan() error: %v", err)
		}
		ids := make([]uint, 0, len(resp.Items))
		for _, item := range resp.Items {
			ids = append(ids, item.ID)
		}
		return ids
	}

	forward := run([]string{"squat-rack", "bench"})
	backward := run([]string{"bench", "squat-rack"})

	if len(forward) != len(backward) {
		t.Fatalf("result sizes differ: %v vs %v", forward, backward)
	}
	for i := range forward {
		if forward[i] != backward[i] {
			t.Errorf("result order differs at %d: %v vs %v", i, forward, backward)
		}
	}
}

func TestPlanSortOrders(t *testing.T) {
	s := newPlannerService()

	gyms := []models.Gym{}
	for i := uint(1); i <= 6; i++ {
		g := testGym(i, fmt.Sprintf("Gym %c", 'F'-i+1), 35.0, 139.0)
		g.LastVerifiedAtCached = daysAgo(int(i) * 20)
		g.Equipments = []models.GymEquipment{
			{Count: intPtr(int(i)), VerificationStatus: models.VerificationVerified, Equipment: &models.Equipment{Slug: "bench"}},
		}
		gyms = append(gyms, g)
	}

	t.Run("gym_name non-decreasing", func(t *testing.T) {
		c := mustValidate(t, &SearchCriteria{Sort: SortGymName})
		resp, err := s.plan(gyms, c)
		if err != nil {
			t.Fatalf("plan() error: %v", err)
		}
		for i := 1; i < len(resp.Items); i++ {
			if resp.Items[i-1].Name > resp.Items[i].Name {
				t.Errorf("names out of order: %q > %q", resp.Items[i-1].Name, resp.Items[i].Name)
			}
		}
	})

	t.Run("score non-increasing", func(t *testing.T) {
		c := mustValidate(t, &SearchCriteria{Sort: SortScore})
		resp, err := s.plan(gyms, c)
		if err != nil {
			t.Fatalf("plan() error: %v", err)
		}
		for i := 1; i < len(resp.Items); i++ {
			if resp.Items[i-1].Score < resp.Items[i].Score {
				t.Errorf("scores out of order: %f < %f", resp.Items[i-1].Score, resp.Items[i].Score)
			}
		}
	})

	t.Run("created_at newest first", func(t *testing.T) {
		c := mustValidate(t, &SearchCriteria{})
		resp, err := s.plan(gyms, c)
		if err != nil {
			t.Fatalf("plan() error: %v", err)
		}
		for i := 1; i < len(resp.Items); i++ {
			if resp.Items[i-1].CreatedAt.Before(resp.Items[i].CreatedAt) {
				t.Errorf("created_at out of order at %d", i)
			}
		}
	})
}

// Score fields stay in the response schema but read 0.0 when the request did
// not ask for scoring; include=score forces computation.
func TestPlanScoreComputedOnlyWhenNeeded(t *testing.T) {
	s := newPlannerService()

	g := testGym(1, "Gym A", 35.0, 139.0)
	g.LastVerifiedAtCached = daysAgo(0)
	g.Equipments = []models.GymEquipment{
		{Count: intPtr(2), MaxWeightKg: intPtr(50), VerificationStatus: models.VerificationVerified, Equipment: &models.Equipment{Slug: "bench"}},
	}
	gyms := []models.Gym{g}

	plain := mustValidate(t, &SearchCriteria{})
	resp, err := s.plan(gyms, plain)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}
	if resp.Items[0].Score != 0 || resp.Items[0].FreshnessScore != 0 || resp.Items[0].RichnessScore != 0 {
		t.Errorf("expected zeroed score fields without include=score, got %+v", resp.Items[0])
	}

	scored := mustValidate(t, &SearchCriteria{IncludeScore: true})
	resp, err = s.plan(gyms, scored)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}
	if resp.Items[0].Score == 0 {
		t.Errorf("expected a computed score with include=score")
	}
}

func TestPlanOffsetPagination(t *testing.T) {
	s := newPlannerService()

	gyms := []models.Gym{}
	for i := uint(1); i <= 12; i++ {
		gyms = append(gyms, testGym(i, fmt.Sprintf("Gym %02d", i), 35.0, 139.0))
	}

	t.Run("middle page", func(t *testing.T) {
		c := mustValidate(t, &SearchCriteria{Sort: SortGymName, Page: 2, PageSize: 5})
		resp, err := s.plan(gyms, c)
		if err != nil {
			t.Fatalf("plan() error: %v", err)
		}
		if len(resp.Items) != 5 || resp.Total != 12 {
			t.Errorf("page 2: len=%d total=%d", len(resp.Items), resp.Total)
		}
		if !resp.HasMore || !resp.HasPrev {
			t.Errorf("page 2: has_more=%v has_prev=%v", resp.HasMore, resp.HasPrev)
		}
	})

	t.Run("past the end", func(t *testing.T) {
		c := mustValidate(t, &SearchCriteria{Sort: SortGymName, Page: 5, PageSize: 10})
		resp, err := s.plan(gyms, c)
		if err != nil {
			t.Fatalf("plan() error: %v", err)
		}
		if len(resp.Items) != 0 {
			t.Errorf("expected empty page, got %d items", len(resp.Items))
		}
		if resp.HasMore {
			t.Errorf("expected has_more=false past the end")
		}
		if resp.Total != 12 {
			t.Errorf("total = %d, expected 12", resp.Total)
		}
	})
}

// Walking every keyset page must visit each row exactly once, including rows
// whose sort keys collide and fall back to the id tie-break.
func TestPlanKeysetWalk(t *testing.T) {
	s := newPlannerService()

	gyms := []models.Gym{}
	for i := uint(1); i <= 23; i++ {
		// Duplicate names every third gym to exercise the tie-break
		name := fmt.Sprintf("Gym %02d", i%3)
		gyms = append(gyms, testGym(i, name, 35.0, 139.0))
	}

	for _, sortMode := range []string{SortGymName, SortCreatedAt, SortScore} {
		t.Run(sortMode, func(t *testing.T) {
			seen := map[uint]bool{}
			var token string
			pages := 0

			for {
				c := &SearchCriteria{Sort: sortMode, PageSize: 5, PageToken: token}
				mustValidate(t, c)
				resp, err := s.plan(gyms, c)
				if err != nil {
					t.Fatalf("plan() error on page %d: %v", pages, err)
				}

				for _, item := range resp.Items {
					if seen[item.ID] {
						t.Errorf("gym %d returned twice", item.ID)
					}
					seen[item.ID] = true
				}

				pages++
				if pages > 10 {
					t.Fatalf("keyset walk did not terminate")
				}
				if resp.PageToken == nil {
					break
				}
				token = *resp.PageToken
			}

			if len(seen) != len(gyms) {
				t.Errorf("walk visited %d of %d gyms", len(seen), len(gyms))
			}
		})
	}
}

func TestPlanInvalidPageToken(t *testing.T) {
	s := newPlannerService()
	gyms := []models.Gym{testGym(1, "Gym A", 35.0, 139.0)}

	c := mustValidate(t, &SearchCriteria{Sort: SortGymName, PageToken: "!!!garbage!!!"})
	if _, err := s.plan(gyms, c); !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("expected ErrInvalidCursor, got %v", err)
	}

	// A token issued under one sort mode is rejected under another
	mismatched := encodeCursor(SortScore, "0.5", 1)
	c = mustValidate(t, &SearchCriteria{Sort: SortGymName, PageToken: mismatched})
	if _, err := s.plan(gyms, c); !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("expected ErrInvalidCursor for mismatched sort, got %v", err)
	}
}

func TestPlanGymsWithoutCoordinatesSortLast(t *testing.T) {
	s := newPlannerService()

	withCoords := testGym(1, "Gym A", 35.001, 139.0)
	noCoords := testGym(2, "Gym B", 0, 0)
	noCoords.Lat = nil
	noCoords.Lng = nil

	center := GeoPoint{Lat: 35.0, Lng: 139.0}
	c := mustValidate(t, &SearchCriteria{
		Lat:  &center.Lat,
		Lng:  &center.Lng,
		Sort: SortDistance,
	})

	resp, err := s.plan([]models.Gym{noCoords, withCoords}, c)
	if err != nil {
		t.Fatalf("plan() error: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected both gyms, got %d", len(resp.Items))
	}
	if resp.Items[0].ID != 1 {
		t.Errorf("gym with coordinates should sort first")
	}
	if resp.Items[1].DistanceKm != nil {
		t.Errorf("gym without coordinates must not report a distance")
	}
}
