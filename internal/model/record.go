// Package model defines the domain types shared across the enrichment pipeline.
package model

import (
	"fmt"

	"github.com/twpayne/go-geom"
)

// LatLon is a WGS84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Region is a resolved city area: a bounding box plus a center point.
// Immutable once built. Bounds are stored X=longitude, Y=latitude.
type Region struct {
	Bounds *geom.Bounds
	Center LatLon
}

// NewRegion builds a Region from box edges and a center. Returns an error
// when the edges are not ordered south<north and west<east.
func NewRegion(south, west, north, east float64, center LatLon) (*Region, error) {
	if south >= north || west >= east {
		return nil, fmt.Errorf("model: degenerate bounding box (%v,%v,%v,%v)", south, west, north, east)
	}
	return &Region{
		Bounds: geom.NewBounds(geom.XY).Set(west, south, east, north),
		Center: center,
	}, nil
}

// South returns the box's southern latitude.
func (r *Region) South() float64 { return r.Bounds.Min(1) }

// West returns the box's western longitude.
func (r *Region) West() float64 { return r.Bounds.Min(0) }

// North returns the box's northern latitude.
func (r *Region) North() float64 { return r.Bounds.Max(1) }

// East returns the box's eastern longitude.
func (r *Region) East() float64 { return r.Bounds.Max(0) }

// Contains reports whether a coordinate lies inside the bounding box.
func (r *Region) Contains(p LatLon) bool {
	return r.Bounds.OverlapsPoint(geom.XY, geom.Coord{p.Lon, p.Lat})
}

// BBox renders the box as "south,west,north,east" for spatial queries.
func (r *Region) BBox() string {
	return fmt.Sprintf("%g,%g,%g,%g", r.South(), r.West(), r.North(), r.East())
}

// Candidate is a raw entity from the listing source. It lives only for one
// fetch pass and is discarded after enrichment or rejection.
type Candidate struct {
	Name string
	Lat  float64
	Lon  float64
	Tags map[string]string
}

// Tag returns the named raw tag as a Field.
func (c Candidate) Tag(key string) Field {
	return FieldOf(c.Tags[key])
}

// BusinessRecord is one consolidated entity produced by the pipeline.
// Name and coordinates are always present; the rest is optional.
type BusinessRecord struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Phone        Field   `json:"phone"`
	Email        Field   `json:"email"`
	OpeningHours Field   `json:"opening_hours"`
	Website      Field   `json:"website"`
	Reviews      Field   `json:"reviews_comments"`
}
