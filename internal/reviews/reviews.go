// Package reviews fetches short review excerpts for an entity. The source
// is optional: without a configured credential it never touches the network.
package reviews

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/model"
	"github.com/localatlas/bizscout/internal/ratelimit"
	"github.com/localatlas/bizscout/pkg/places"
)

// maxReviews caps how many excerpts go into one record.
const maxReviews = 3

// Fetcher resolves a place and summarizes its reviews.
type Fetcher struct {
	client  places.Client
	limiter *ratelimit.Registry
	enabled bool
}

// NewFetcher creates a Fetcher. Pass enabled=false when no reviews
// credential is configured; Fetch then short-circuits to unknown.
func NewFetcher(client places.Client, limiter *ratelimit.Registry, enabled bool) *Fetcher {
	return &Fetcher{
		client:  client,
		limiter: limiter,
		enabled: enabled,
	}
}

// Fetch returns a reviews summary for the named business. Any failure or
// missing match yields unknown; a found place with zero reviews yields the
// distinct NoReviews marker.
func (f *Fetcher) Fetch(ctx context.Context, name, city string) model.Field {
	if !f.enabled {
		return model.Unknown()
	}

	if err := f.limiter.Acquire(ctx, ratelimit.SourceReviews); err != nil {
		return model.Unknown()
	}

	placeID, err := f.client.FindPlace(ctx, fmt.Sprintf("%s %s", name, city))
	if err != nil {
		zap.L().Warn("reviews: find place failed",
			zap.String("name", name),
			zap.String("city", city),
			zap.Error(err),
		)
		return model.Unknown()
	}
	if placeID == "" {
		zap.L().Debug("reviews: no place match",
			zap.String("name", name),
			zap.String("city", city),
		)
		return model.Unknown()
	}

	if err := f.limiter.Acquire(ctx, ratelimit.SourceReviews); err != nil {
		return model.Unknown()
	}

	revs, err := f.client.Reviews(ctx, placeID)
	if err != nil {
		zap.L().Warn("reviews: details failed", zap.String("place_id", placeID), zap.Error(err))
		return model.Unknown()
	}
	if len(revs) == 0 {
		return model.Known(model.NoReviews)
	}

	if len(revs) > maxReviews {
		revs = revs[:maxReviews]
	}
	parts := make([]string, len(revs))
	for i, r := range revs {
		author := r.Author
		if author == "" {
			author = "Anonymous"
		}
		text := r.Text
		if text == "" {
			text = "No comment"
		}
		parts[i] = fmt.Sprintf("%s (Rating: %g/5): %s", author, r.Rating, text)
	}
	return model.Known(strings.Join(parts, "; "))
}
