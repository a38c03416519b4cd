package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/category"
	"github.com/localatlas/bizscout/internal/directory"
	"github.com/localatlas/bizscout/internal/enrich"
	"github.com/localatlas/bizscout/internal/geo"
	"github.com/localatlas/bizscout/internal/listing"
	"github.com/localatlas/bizscout/internal/phone"
	"github.com/localatlas/bizscout/internal/pipeline"
	"github.com/localatlas/bizscout/internal/ratelimit"
	"github.com/localatlas/bizscout/internal/reviews"
	"github.com/localatlas/bizscout/internal/store"
	"github.com/localatlas/bizscout/internal/webscrape"
	"github.com/localatlas/bizscout/pkg/localbiz"
	"github.com/localatlas/bizscout/pkg/nominatim"
	"github.com/localatlas/bizscout/pkg/overpass"
	"github.com/localatlas/bizscout/pkg/places"
)

// initStore opens and migrates the search-history store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initPipeline wires every client behind the pipeline entry point.
// Built fresh per invocation except for the limiter registry, which the
// caller may share to keep cooldowns across runs.
func initPipeline(limiter *ratelimit.Registry) (*pipeline.Pipeline, error) {
	table := category.Default()
	if cfg.Categories.File != "" {
		t, err := category.Load(cfg.Categories.File)
		if err != nil {
			return nil, err
		}
		table = t
	}

	phones := phone.NewNormalizer(cfg.Phone.Region)

	resolver := geo.NewResolver(
		nominatim.NewClient(
			nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
			nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
		),
		limiter,
		cfg.Geo.Country,
		cfg.Geo.Province,
	)

	fetcher := listing.NewFetcher(
		overpass.NewClient(
			overpass.WithBaseURL(cfg.Overpass.BaseURL),
			overpass.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Overpass.TimeoutSecs) * time.Second,
			}),
		),
		limiter,
		table,
	)

	dir := directory.NewClient(
		localbiz.NewClient(cfg.LocalBiz.Key, localbiz.WithBaseURL(cfg.LocalBiz.BaseURL)),
		limiter,
		phones,
		table,
	)

	scraper := webscrape.NewScraper(limiter, phones)

	reviewsEnabled := cfg.Places.Key != ""
	if !reviewsEnabled {
		zap.L().Info("reviews credential not configured, reviews source disabled")
	}
	rev := reviews.NewFetcher(
		places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL)),
		limiter,
		reviewsEnabled,
	)

	orch := enrich.NewOrchestrator(dir, scraper, rev, table)
	return pipeline.New(resolver, fetcher, orch, limiter), nil
}
