// Package listing fetches raw business candidates from the OpenStreetMap
// Overpass API.
package listing

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/category"
	"github.com/localatlas/bizscout/internal/model"
	"github.com/localatlas/bizscout/internal/ratelimit"
	"github.com/localatlas/bizscout/pkg/overpass"
)

// Fetcher retrieves candidates for a region and category. One network call
// per Fetch; the result is finite and not restartable.
type Fetcher struct {
	client  overpass.Client
	limiter *ratelimit.Registry
	table   *category.Table
}

// NewFetcher creates a Fetcher.
func NewFetcher(client overpass.Client, limiter *ratelimit.Registry, table *category.Table) *Fetcher {
	return &Fetcher{
		client:  client,
		limiter: limiter,
		table:   table,
	}
}

// Fetch queries the listing service bounded to the region and returns up
// to limit candidates that pass the category type filter. An empty slice
// is a valid, non-error result.
func (f *Fetcher) Fetch(ctx context.Context, region *model.Region, cat string, limit int) ([]model.Candidate, error) {
	if err := f.limiter.Acquire(ctx, ratelimit.SourceListing); err != nil {
		return nil, err
	}

	resp, err := f.client.Query(ctx, f.buildQuery(region, cat))
	if err != nil {
		return nil, eris.Wrap(err, "listing: fetch candidates")
	}

	elements := resp.Elements
	if len(elements) > limit {
		elements = elements[:limit]
	}

	var out []model.Candidate
	for _, el := range elements {
		cand, ok := f.candidate(el, cat)
		if !ok {
			continue
		}
		out = append(out, cand)
	}

	zap.L().Info("listing: candidates fetched",
		zap.String("category", cat),
		zap.Int("raw", len(resp.Elements)),
		zap.Int("kept", len(out)),
	)
	return out, nil
}

// buildQuery renders the Overpass QL query for a category within the
// region's bounding box. Unmapped categories fall back to any amenity.
func (f *Fetcher) buildQuery(region *model.Region, cat string) string {
	selector := `node["amenity"]`
	if tag, ok := f.table.Tag(cat); ok {
		selector = fmt.Sprintf(`node["amenity"=%q]`, tag)
	}
	return fmt.Sprintf("[out:json][timeout:30];\n(\n  %s(%s);\n);\nout body;\n", selector, region.BBox())
}

// candidate converts one element, applying the strict type filter. The
// amenity tag must equal the category's expected tag exactly, and for
// categories with a keyword check the name must contain the keyword too —
// the source data is noisy enough that tag equality alone lets through
// pharmacies tagged as hospitals.
func (f *Fetcher) candidate(el overpass.Element, cat string) (model.Candidate, bool) {
	if el.Lat == nil || el.Lon == nil {
		zap.L().Debug("listing: skipping element without coordinates")
		return model.Candidate{}, false
	}

	name := el.Tags["name"]
	if name == "" {
		name = "Unknown"
	}

	if tag, ok := f.table.Tag(cat); ok {
		if el.Tags["amenity"] != tag {
			zap.L().Debug("listing: type filter rejected candidate",
				zap.String("name", name),
				zap.String("amenity", el.Tags["amenity"]),
				zap.String("expected", tag),
			)
			return model.Candidate{}, false
		}
	}

	if kw, ok := f.table.Keyword(cat); ok {
		if !strings.Contains(strings.ToLower(name), kw) {
			zap.L().Debug("listing: keyword filter rejected candidate",
				zap.String("name", name),
				zap.String("keyword", kw),
			)
			return model.Candidate{}, false
		}
	}

	return model.Candidate{
		Name: name,
		Lat:  *el.Lat,
		Lon:  *el.Lon,
		Tags: el.Tags,
	}, true
}
