package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/config"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/database"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/models"
)

// Sort modes
const (
	SortDistance  = "distance"
	SortGymName   = "gym_name"
	SortCreatedAt = "created_at"
	SortScore     = "score"
	SortFreshness = "freshness"
	SortRichness  = "richness"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// unknownDistanceKm sorts gyms without coordinates after every real distance
// when sort=distance is combined with a non-radius geo filter.
const unknownDistanceKm = 999999.0

type SearchService struct {
	db     *database.DB
	scorer *ScoreCalculator
}

func NewSearchService(db *database.DB, cfg *config.Config) *SearchService {
	return &SearchService{db: db, scorer: NewScoreCalculator(cfg)}
}

// SearchCriteria is the normalized, request-scoped search input. Zero values
// mean "not supplied"; Validate fills defaults and rejects inconsistent
// combinations.
type SearchCriteria struct {
	Pref string
	City string

	// Free text, substring match over name/address
	Query string

	// Geo: either center+radius or a (partial) bounding box, never both
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
	Bounds   BoundsFilter

	Equipments     []string
	EquipmentMatch string // all|any, default any

	Sort         string // default created_at
	IncludeScore bool

	// Offset paging
	Page     int // default 1
	PageSize int // default 20, max 50

	// Keyset paging, preferred over Page when both are supplied
	PageToken string
}

// GymSummary is one search result item. The three score fields are always
// present in the response and read 0.0 when scoring was skipped for the
// request; DistanceKm is only set when a center point is known.
type GymSummary struct {
	ID             uint       `json:"id"`
	CanonicalID    string     `json:"canonical_id"`
	Slug           string     `json:"slug"`
	Name           string     `json:"name"`
	Pref           string     `json:"pref"`
	City           string     `json:"city"`
	Lat            *float64   `json:"lat,omitempty"`
	Lng            *float64   `json:"lng,omitempty"`
	DistanceKm     *float64   `json:"distance_km,omitempty"`
	Score          float64    `json:"score"`
	FreshnessScore float64    `json:"freshness_score"`
	RichnessScore  float64    `json:"richness_score"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type SearchResponse struct {
	Items     []GymSummary `json:"items"`
	Total     int64        `json:"total"`
	Page      int          `json:"page"`
	PageSize  int          `json:"page_size"`
	HasMore   bool         `json:"has_more"`
	HasPrev   bool         `json:"has_prev"`
	HasNext   bool         `json:"has_next"`
	PageToken *string      `json:"page_token"`
}

// Validate normalizes defaults and enforces the semantic rules of the search
// input. Region slug casing and logically inconsistent combinations are 400s;
// out-of-range coordinates are schema-level 422s.
func (c *SearchCriteria) Validate() error {
	if c.Pref != strings.ToLower(c.Pref) {
		return invalidParam("pref", "must be a lower-case slug")
	}
	if c.City != strings.ToLower(c.City) {
		return invalidParam("city", "must be a lower-case slug")
	}

	if (c.Lat == nil) != (c.Lng == nil) {
		return invalidParam("lat", "lat and lng must be supplied together")
	}
	if c.Lat != nil && (*c.Lat < -90 || *c.Lat > 90) {
		return invalidSchema("lat", "must be within [-90, 90]")
	}
	if c.Lng != nil && (*c.Lng < -180 || *c.Lng > 180) {
		return invalidSchema("lng", "must be within [-180, 180]")
	}

	if c.RadiusKm != nil {
		if *c.RadiusKm <= 0 {
			return invalidParam("radius_km", "must be > 0")
		}
		if c.Lat == nil {
			return invalidParam("radius_km", "requires lat and lng")
		}
		if !c.Bounds.Empty() {
			return invalidParam("radius_km", "cannot be combined with bounding box parameters")
		}
	}

	if c.Sort == "" {
		c.Sort = SortCreatedAt
	}
	switch c.Sort {
	case SortDistance:
		if c.Lat == nil {
			return invalidParam("sort", "sort=distance requires lat and lng")
		}
	case SortGymName, SortCreatedAt, SortScore, SortFreshness, SortRichness:
	default:
		return invalidParam("sort", "unknown sort mode")
	}

	if c.EquipmentMatch == "" {
		c.EquipmentMatch = MatchAny
	}
	if c.EquipmentMatch != MatchAll && c.EquipmentMatch != MatchAny {
		return invalidParam("equipment_match", "must be all or any")
	}
	for i, slug := range c.Equipments {
		c.Equipments[i] = strings.TrimSpace(slug)
		if c.Equipments[i] == "" {
			return invalidParam("equipments", "must be a non-empty list of slugs")
		}
	}

	if c.Page < 0 {
		return invalidParam("page", "must be >= 1")
	}
	if c.Page == 0 {
		c.Page = 1
	}
	if c.PageSize < 0 || c.PageSize > maxPageSize {
		return invalidParam("page_size", "must be within [1, 50]")
	}
	if c.PageSize == 0 {
		c.PageSize = defaultPageSize
	}

	return nil
}

// center returns the request's center point when both coordinates are set.
func (c *SearchCriteria) center() *GeoPoint {
	if c.Lat == nil || c.Lng == nil {
		return nil
	}
	return &GeoPoint{Lat: *c.Lat, Lng: *c.Lng}
}

func (c *SearchCriteria) needsScore() bool {
	if c.IncludeScore {
		return true
	}
	switch c.Sort {
	case SortScore, SortFreshness, SortRichness:
		return true
	}
	return false
}

// Search validates the criteria, fetches the candidate set in one store read
// and ranks/pages it. Errors are returned synchronously; no partial page is
// ever produced.
func (s *SearchService) Search(ctx context.Context, criteria *SearchCriteria) (*SearchResponse, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	gyms, err := s.fetchCandidates(ctx, criteria)
	if err != nil {
		return nil, err
	}

	return s.plan(gyms, criteria)
}

// fetchCandidates narrows the row set inside Postgres: region equality,
// free-text ILIKE and the bounding box (a derived box for radius mode) all
// run in SQL; the exact radius check, equipment matching and ranking happen
// in plan over this candidate set. Equipment links are preloaded in the same
// consistent read.
func (s *SearchService) fetchCandidates(ctx context.Context, c *SearchCriteria) ([]models.Gym, error) {
	query := s.db.WithContext(ctx).Model(&models.Gym{}).
		Preload("Equipments").
		Preload("Equipments.Equipment")

	if c.Pref != "" {
		query = query.Where("pref = ?", c.Pref)
	}
	if c.City != "" {
		query = query.Where("city = ?", c.City)
	}
	if c.Query != "" {
		term := "%" + c.Query + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ?", term, term)
	}

	bounds := c.Bounds
	if c.RadiusKm != nil {
		bounds = radiusBounds(RadiusFilter{Center: *c.center(), RadiusKm: *c.RadiusKm})
	}
	if !bounds.Empty() {
		query = query.Where("lat IS NOT NULL AND lng IS NOT NULL")
		if bounds.MinLat != nil {
			query = query.Where("lat >= ?", *bounds.MinLat)
		}
		if bounds.MaxLat != nil {
			query = query.Where("lat <= ?", *bounds.MaxLat)
		}
		if bounds.MinLng != nil {
			query = query.Where("lng >= ?", *bounds.MinLng)
		}
		if bounds.MaxLng != nil {
			query = query.Where("lng <= ?", *bounds.MaxLng)
		}
	}

	var gyms []models.Gym
	if err := query.Find(&gyms).Error; err != nil {
		return nil, &StoreError{Err: err}
	}
	return gyms, nil
}

// rankedGym is a candidate row annotated with its computed distance and score.
type rankedGym struct {
	gym        models.Gym
	distanceKm *float64
	score      ScoreBreakdown
}

// plan applies the exact filters, computes scores where the request needs
// them, imposes a total order and cuts the requested page. It operates on an
// immutable snapshot of candidate rows from a single store read, so offset
// total and keyset pages are internally consistent for this request.
func (s *SearchService) plan(gyms []models.Gym, c *SearchCriteria) (*SearchResponse, error) {
	center := c.center()
	needScore := c.needsScore()

	var radius *RadiusFilter
	if c.RadiusKm != nil {
		radius = &RadiusFilter{Center: *center, RadiusKm: *c.RadiusKm}
	}
	var matcher *EquipmentMatcher
	if len(c.Equipments) > 0 {
		matcher = NewEquipmentMatcher(c.Equipments, c.EquipmentMatch)
	}

	ranked := make([]rankedGym, 0, len(gyms))
	for _, gym := range gyms {
		if radius != nil && !radius.Contains(gym.Lat, gym.Lng) {
			continue
		}
		if matcher != nil && !matcher.Matches(gym.Equipments) {
			continue
		}

		r := rankedGym{gym: gym}
		if center != nil && gym.Lat != nil && gym.Lng != nil {
			d := HaversineKm(*center, GeoPoint{Lat: *gym.Lat, Lng: *gym.Lng})
			r.distanceKm = &d
		}
		if needScore {
			r.score = s.scorer.Score(&gym)
		}
		ranked = append(ranked, r)
	}

	sortRanked(ranked, c.Sort)

	if c.PageToken != "" {
		return paginateKeyset(ranked, c)
	}
	return paginateOffset(ranked, c), nil
}

// sortRanked imposes the total order for a sort mode: the mode's primary key
// with id DESC as the deterministic tie-break.
func sortRanked(ranked []rankedGym, sortMode string) {
	less := func(a, b rankedGym) bool {
		switch sortMode {
		case SortDistance:
			da, db := distanceOrSentinel(a), distanceOrSentinel(b)
			if da != db {
				return da < db
			}
		case SortGymName:
			if a.gym.Name != b.gym.Name {
				return a.gym.Name < b.gym.Name
			}
		case SortCreatedAt:
			if !a.gym.CreatedAt.Equal(b.gym.CreatedAt) {
				return a.gym.CreatedAt.After(b.gym.CreatedAt)
			}
		case SortScore:
			if a.score.Score != b.score.Score {
				return a.score.Score > b.score.Score
			}
		case SortFreshness:
			if a.score.Freshness != b.score.Freshness {
				return a.score.Freshness > b.score.Freshness
			}
		case SortRichness:
			if a.score.Richness != b.score.Richness {
				return a.score.Richness > b.score.Richness
			}
		}
		return a.gym.ID > b.gym.ID
	}
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
}

func distanceOrSentinel(r rankedGym) float64 {
	if r.distanceKm == nil {
		return unknownDistanceKm
	}
	return *r.distanceKm
}

// sortKeyString serializes a row's sort key for cursor encoding. Floats use
// the shortest round-trippable form, times use RFC3339Nano.
func sortKeyString(r rankedGym, sortMode string) string {
	switch sortMode {
	case SortDistance:
		return strconv.FormatFloat(distanceOrSentinel(r), 'g', -1, 64)
	case SortGymName:
		return r.gym.Name
	case SortCreatedAt:
		return r.gym.CreatedAt.UTC().Format(time.RFC3339Nano)
	case SortScore:
		return strconv.FormatFloat(r.score.Score, 'g', -1, 64)
	case SortFreshness:
		return strconv.FormatFloat(r.score.Freshness, 'g', -1, 64)
	default: // SortRichness
		return strconv.FormatFloat(r.score.Richness, 'g', -1, 64)
	}
}

// afterCursor reports whether a row comes strictly after the cursor position
// in the total order, i.e. belongs on the next page.
func afterCursor(r rankedGym, cur *pageCursor, sortMode string) (bool, error) {
	switch sortMode {
	case SortDistance:
		key, err := strconv.ParseFloat(cur.Key, 64)
		if err != nil {
			return false, ErrInvalidCursor
		}
		d := distanceOrSentinel(r)
		if d != key {
			return d > key, nil
		}
	case SortGymName:
		if r.gym.Name != cur.Key {
			return r.gym.Name > cur.Key, nil
		}
	case SortCreatedAt:
		key, err := time.Parse(time.RFC3339Nano, cur.Key)
		if err != nil {
			return false, ErrInvalidCursor
		}
		if !r.gym.CreatedAt.Equal(key) {
			return r.gym.CreatedAt.Before(key), nil
		}
	case SortScore, SortFreshness, SortRichness:
		key, err := strconv.ParseFloat(cur.Key, 64)
		if err != nil {
			return false, ErrInvalidCursor
		}
		var v float64
		switch sortMode {
		case SortScore:
			v = r.score.Score
		case SortFreshness:
			v = r.score.Freshness
		default:
			v = r.score.Richness
		}
		if v != key {
			return v < key, nil
		}
	}
	// Equal primary key: id DESC tie-break
	return r.gym.ID < cur.ID, nil
}

// paginateOffset cuts a classic numbered page. A page past the end is a valid
// request and yields an empty item list with the correct total.
func paginateOffset(ranked []rankedGym, c *SearchCriteria) *SearchResponse {
	total := len(ranked)
	offset := (c.Page - 1) * c.PageSize

	var window []rankedGym
	if offset < total {
		end := offset + c.PageSize
		if end > total {
			end = total
		}
		window = ranked[offset:end]
	}

	hasMore := c.Page*c.PageSize < total
	resp := &SearchResponse{
		Items:    summarize(window),
		Total:    int64(total),
		Page:     c.Page,
		PageSize: c.PageSize,
		HasMore:  hasMore,
		HasPrev:  c.Page > 1,
		HasNext:  hasMore,
	}
	// Hand out a keyset token as well so clients can switch to cursor paging
	// from any offset page.
	if hasMore && len(window) > 0 {
		last := window[len(window)-1]
		token := encodeCursor(c.Sort, sortKeyString(last, c.Sort), last.gym.ID)
		resp.PageToken = &token
	}
	return resp
}

// paginateKeyset resumes after the cursor position and probes one row beyond
// the limit to decide whether another page exists, without a second count
// query. The returned token is null once the result set is exhausted.
func paginateKeyset(ranked []rankedGym, c *SearchCriteria) (*SearchResponse, error) {
	cur, err := decodeCursor(c.PageToken, c.Sort)
	if err != nil {
		return nil, err
	}

	rest := make([]rankedGym, 0, len(ranked))
	for _, r := range ranked {
		after, err := afterCursor(r, cur, c.Sort)
		if err != nil {
			return nil, err
		}
		if after {
			rest = append(rest, r)
		}
	}

	limit := c.PageSize
	hasMore := len(rest) > limit
	window := rest
	if hasMore {
		window = rest[:limit]
	}

	resp := &SearchResponse{
		Items:    summarize(window),
		Total:    int64(len(ranked)),
		PageSize: limit,
		HasMore:  hasMore,
		HasPrev:  true,
		HasNext:  hasMore,
	}
	if hasMore {
		last := window[len(window)-1]
		token := encodeCursor(c.Sort, sortKeyString(last, c.Sort), last.gym.ID)
		resp.PageToken = &token
	}
	return resp, nil
}

func summarize(ranked []rankedGym) []GymSummary {
	items := make([]GymSummary, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, GymSummary{
			ID:             r.gym.ID,
			CanonicalID:    r.gym.CanonicalID,
			Slug:           r.gym.Slug,
			Name:           r.gym.Name,
			Pref:           r.gym.Pref,
			City:           r.gym.City,
			Lat:            r.gym.Lat,
			Lng:            r.gym.Lng,
			DistanceKm:     r.distanceKm,
			Score:          r.score.Score,
			FreshnessScore: r.score.Freshness,
			RichnessScore:  r.score.Richness,
			LastVerifiedAt: r.gym.LastVerifiedAtCached,
			CreatedAt:      r.gym.CreatedAt,
		})
	}
	return items
}
