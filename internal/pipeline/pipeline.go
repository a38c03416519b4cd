// Package pipeline is the single entry point for a city/category search:
// region resolution, candidate listing, and per-candidate enrichment.
package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/geo"
	"github.com/localatlas/bizscout/internal/model"
	"github.com/localatlas/bizscout/internal/ratelimit"
)

// Count limits match the original product surface: one result minimum,
// fifty maximum per invocation.
const (
	MinCount = 1
	MaxCount = 50
)

// ErrInvalidInput rejects malformed requests before any network activity.
var ErrInvalidInput = eris.New("pipeline: invalid input")

// ErrCityNotFound terminates a run whose city could not be resolved.
var ErrCityNotFound = eris.New("pipeline: city not found")

// ErrNoResults terminates a run whose listing fetch produced nothing.
var ErrNoResults = eris.New("pipeline: no businesses found")

// RegionResolver resolves a city to a Region.
type RegionResolver interface {
	Resolve(ctx context.Context, city string) (*model.Region, error)
}

// CandidateFetcher lists raw candidates for a region and category.
type CandidateFetcher interface {
	Fetch(ctx context.Context, region *model.Region, cat string, limit int) ([]model.Candidate, error)
}

// Enricher completes one candidate and tracks directory quota state.
type Enricher interface {
	Enrich(ctx context.Context, cand model.Candidate, cat, city string) model.BusinessRecord
	QuotaExhausted() bool
}

// Result is what downstream consumers (export, display, persistence) see.
// They never reach into pipeline internals.
type Result struct {
	City     string                 `json:"city"`
	Category string                 `json:"category"`
	Records  []model.BusinessRecord `json:"records"`
	Center   *model.LatLon          `json:"center"`
	Notices  []string               `json:"notices,omitempty"`
}

// Pipeline wires the stages together. Strictly sequential: one candidate
// at a time, one enrichment step at a time.
type Pipeline struct {
	resolver RegionResolver
	listing  CandidateFetcher
	enricher Enricher
	limiter  *ratelimit.Registry
}

// New creates a Pipeline.
func New(resolver RegionResolver, listing CandidateFetcher, enricher Enricher, limiter *ratelimit.Registry) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		listing:  listing,
		enricher: enricher,
		limiter:  limiter,
	}
}

// Run executes one search. searchTerm is "<city> <category>" (first token
// city, last token category); count bounds the candidate list. The whole
// invocation is gated by its own coarse cooldown, independent of the
// per-source limiters.
func (p *Pipeline) Run(ctx context.Context, searchTerm string, count int) (*Result, error) {
	city, cat, err := parseSearchTerm(searchTerm)
	if err != nil {
		return nil, err
	}
	if count < MinCount || count > MaxCount {
		return nil, eris.Wrapf(ErrInvalidInput, "count %d out of range %d..%d", count, MinCount, MaxCount)
	}

	if err := p.limiter.Acquire(ctx, ratelimit.SourcePipeline); err != nil {
		return nil, err
	}

	zap.L().Info("pipeline: run started",
		zap.String("city", city),
		zap.String("category", cat),
		zap.Int("count", count),
	)

	region, err := p.resolver.Resolve(ctx, city)
	if err != nil {
		if eris.Is(err, geo.ErrNotFound) {
			return &Result{City: city, Category: cat}, eris.Wrapf(ErrCityNotFound, "%q", city)
		}
		return nil, err
	}

	result := &Result{
		City:     city,
		Category: cat,
		Center:   &region.Center,
	}

	candidates, err := p.listing.Fetch(ctx, region, cat, count)
	if err != nil {
		return result, err
	}
	if len(candidates) == 0 {
		return result, eris.Wrapf(ErrNoResults, "category %q in %q", cat, city)
	}

	for _, cand := range candidates {
		result.Records = append(result.Records, p.enricher.Enrich(ctx, cand, cat, city))
	}

	if p.enricher.QuotaExhausted() {
		result.Notices = append(result.Notices,
			"Directory API quota exceeded; some fields fell back to website scraping or assumed hours.")
	}

	zap.L().Info("pipeline: run complete",
		zap.String("city", city),
		zap.Int("records", len(result.Records)),
		zap.Bool("quota_exhausted", p.enricher.QuotaExhausted()),
	)
	return result, nil
}

// parseSearchTerm splits "<city> <category>". Both tokens are required.
func parseSearchTerm(term string) (city, cat string, err error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(term)))
	if len(fields) < 2 {
		return "", "", eris.Wrapf(ErrInvalidInput, "search term %q needs a city and a category", term)
	}
	return fields[0], fields[len(fields)-1], nil
}
