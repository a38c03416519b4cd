// Package geo resolves city names to bounding regions.
package geo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/model"
	"github.com/localatlas/bizscout/internal/ratelimit"
	"github.com/localatlas/bizscout/pkg/nominatim"
)

// ErrNotFound means no source could place the city.
var ErrNotFound = eris.New("geo: city not found")

// Resolver maps a city name to a Region. Cities in the static table are
// authoritative and resolved without any network call; everything else
// goes through the rate-gated geocoding service.
type Resolver struct {
	client   nominatim.Client
	limiter  *ratelimit.Registry
	country  string
	province string
	static   map[string]*model.Region
}

// NewResolver creates a Resolver. country and province feed the qualified
// query variants (e.g. "Pakistan", "Sindh").
func NewResolver(client nominatim.Client, limiter *ratelimit.Registry, country, province string) *Resolver {
	return &Resolver{
		client:   client,
		limiter:  limiter,
		country:  country,
		province: province,
		static:   staticRegions(),
	}
}

// Resolve returns the Region for a city name. Resolution order: static
// table, then up to three geocoding query variants, then the static table
// once more. Per-variant network failures are logged and treated as
// no-match, never as fatal.
func (r *Resolver) Resolve(ctx context.Context, city string) (*model.Region, error) {
	key := strings.ToLower(strings.TrimSpace(city))
	if key == "" {
		return nil, ErrNotFound
	}

	if region, ok := r.static[key]; ok {
		zap.L().Info("geo: static table hit", zap.String("city", key))
		return region, nil
	}

	queries := []string{
		key,
		fmt.Sprintf("%s, %s", key, r.country),
		fmt.Sprintf("%s, %s", key, r.province),
	}

	for _, q := range queries {
		if err := r.limiter.Acquire(ctx, ratelimit.SourceGeocode); err != nil {
			return nil, err
		}

		places, err := r.client.Search(ctx, q)
		if err != nil {
			zap.L().Warn("geo: geocode query failed",
				zap.String("query", q),
				zap.Error(err),
			)
			continue
		}

		region, ok := r.match(key, places)
		if ok {
			return region, nil
		}
		zap.L().Debug("geo: no matching city for query", zap.String("query", q))
	}

	// A transient failure may have skipped the network path entirely, so
	// consult the static table one last time before giving up.
	if region, ok := r.static[key]; ok {
		return region, nil
	}
	return nil, eris.Wrapf(ErrNotFound, "city %q", key)
}

// match accepts the first place whose description names both the city and
// the target country.
func (r *Resolver) match(city string, places []nominatim.Place) (*model.Region, bool) {
	country := strings.ToLower(r.country)
	for _, p := range places {
		display := strings.ToLower(p.DisplayName)
		if !strings.Contains(display, city) || !strings.Contains(display, country) {
			continue
		}

		region, err := regionFromPlace(p)
		if err != nil {
			zap.L().Warn("geo: rejecting malformed place",
				zap.String("display_name", p.DisplayName),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("geo: geocoded city",
			zap.String("city", city),
			zap.String("display_name", p.DisplayName),
		)
		return region, true
	}
	return nil, false
}

// regionFromPlace converts a geocoding result to a Region. The source box
// order is south, north, west, east and must be re-ordered to
// south, west, north, east; inverting this silently produces boxes that
// match nothing, so NewRegion re-checks the edge ordering.
func regionFromPlace(p nominatim.Place) (*model.Region, error) {
	if len(p.BoundingBox) != 4 {
		return nil, eris.Errorf("geo: bounding box has %d coordinates", len(p.BoundingBox))
	}

	coords := make([]float64, 4)
	for i, s := range p.BoundingBox {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "geo: parse bounding box coordinate %q", s)
		}
		coords[i] = v
	}
	south, north, west, east := coords[0], coords[1], coords[2], coords[3]

	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: parse lat %q", p.Lat)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: parse lon %q", p.Lon)
	}

	return model.NewRegion(south, west, north, east, model.LatLon{Lat: lat, Lon: lon})
}
