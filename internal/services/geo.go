package services

import (
	"math"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// HaversineKm returns the great-circle distance between two points in km.
// The asin argument is clamped to [0,1] to absorb floating-point drift near
// antipodal and polar points.
func HaversineKm(a, b GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	if h < 0 {
		h = 0
	}
	if h > 1 {
		h = 1
	}
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// RadiusFilter keeps records within RadiusKm of Center. The boundary is
// inclusive: a record at exactly RadiusKm is retained.
type RadiusFilter struct {
	Center   GeoPoint
	RadiusKm float64
}

// Contains reports whether the given nullable coordinates fall inside the
// radius. Records without coordinates never match.
func (f RadiusFilter) Contains(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return false
	}
	return HaversineKm(f.Center, GeoPoint{Lat: *lat, Lng: *lng}) <= f.RadiusKm
}

// DistanceKm returns the distance from the filter center, or nil for records
// without coordinates.
func (f RadiusFilter) DistanceKm(lat, lng *float64) *float64 {
	if lat == nil || lng == nil {
		return nil
	}
	d := HaversineKm(f.Center, GeoPoint{Lat: *lat, Lng: *lng})
	return &d
}

// BoundsFilter keeps records inside a bounding box. Each bound is
// independently optional; an unset bound imposes no constraint on that side.
// Longitude bounds are plain numeric comparisons, no antimeridian handling.
type BoundsFilter struct {
	MinLat *float64
	MaxLat *float64
	MinLng *float64
	MaxLng *float64
}

// Empty reports whether no bound is set.
func (f BoundsFilter) Empty() bool {
	return f.MinLat == nil && f.MaxLat == nil && f.MinLng == nil && f.MaxLng == nil
}

// Contains reports whether the given nullable coordinates satisfy every
// supplied bound. Records without coordinates never match.
func (f BoundsFilter) Contains(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return false
	}
	if f.MinLat != nil && *lat < *f.MinLat {
		return false
	}
	if f.MaxLat != nil && *lat > *f.MaxLat {
		return false
	}
	if f.MinLng != nil && *lng < *f.MinLng {
		return false
	}
	if f.MaxLng != nil && *lng > *f.MaxLng {
		return false
	}
	return true
}

// kmPerDegree is the great-circle length of one degree on the haversine
// sphere. The prefilter box must be derived from the same sphere as the exact
// check, otherwise the box ends up tighter than the circle and drops
// in-radius rows before the exact check runs.
const kmPerDegree = earthRadiusKm * math.Pi / 180

// radiusBounds derives a bounding box enclosing the radius circle, used as a
// cheap SQL prefilter before the exact haversine check. Longitude degrees
// shrink with cos(lat).
func radiusBounds(f RadiusFilter) BoundsFilter {
	dLat := f.RadiusKm / kmPerDegree
	minLat := f.Center.Lat - dLat
	maxLat := f.Center.Lat + dLat

	cosLat := math.Cos(f.Center.Lat * math.Pi / 180)
	if cosLat < 0.01 {
		// Near the poles the box degenerates; fall back to unbounded longitude
		return BoundsFilter{MinLat: &minLat, MaxLat: &maxLat}
	}
	dLng := f.RadiusKm / (kmPerDegree * cosLat)
	minLng := f.Center.Lng - dLng
	maxLng := f.Center.Lng + dLng
	return BoundsFilter{MinLat: &minLat, MaxLat: &maxLat, MinLng: &minLng, MaxLng: &maxLng}
}
