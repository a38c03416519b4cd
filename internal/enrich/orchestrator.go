// Package enrich drives the per-candidate field-completion chain.
package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/category"
	"github.com/localatlas/bizscout/internal/directory"
	"github.com/localatlas/bizscout/internal/model"
	"github.com/localatlas/bizscout/internal/webscrape"
	"github.com/localatlas/bizscout/pkg/localbiz"
)

// DirectorySource is the directory search/detail pair.
type DirectorySource interface {
	Search(ctx context.Context, name, cat, city string) (*directory.Result, error)
	Details(ctx context.Context, id string) (*directory.Result, error)
}

// WebsiteSource extracts fields from an entity's own page.
type WebsiteSource interface {
	Scrape(ctx context.Context, url string) webscrape.Result
}

// ReviewsSource fetches a reviews summary.
type ReviewsSource interface {
	Fetch(ctx context.Context, name, city string) model.Field
}

// Orchestrator completes one candidate at a time. Field precedence is
// fixed: listing tags, then directory search, then directory detail, then
// website scrape, then assumed hours — a monotonic fill where the first
// writer wins, never a merge of two present values. Reviews are always
// attempted last.
type Orchestrator struct {
	directory DirectorySource
	website   WebsiteSource
	reviews   ReviewsSource
	table     *category.Table

	quotaHit bool
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(dir DirectorySource, web WebsiteSource, rev ReviewsSource, table *category.Table) *Orchestrator {
	return &Orchestrator{
		directory: dir,
		website:   web,
		reviews:   rev,
		table:     table,
	}
}

// QuotaExhausted reports whether the directory source returned a quota
// error at any point in this run. Once true, the orchestrator stops
// calling the directory for the remaining candidates.
func (o *Orchestrator) QuotaExhausted() bool {
	return o.quotaHit
}

// Enrich builds the finished record for one candidate.
func (o *Orchestrator) Enrich(ctx context.Context, cand model.Candidate, cat, city string) model.BusinessRecord {
	rec := model.BusinessRecord{
		Name:         cand.Name,
		Latitude:     cand.Lat,
		Longitude:    cand.Lon,
		Phone:        cand.Tag("phone"),
		Email:        cand.Tag("email"),
		OpeningHours: cand.Tag("opening_hours"),
		Website:      cand.Tag("website"),
	}

	if o.incomplete(rec) && !o.quotaHit {
		o.fillFromDirectory(ctx, &rec, cand.Name, cat, city)
	}

	if o.scrapeNeeded(rec) && rec.Website.Known {
		scraped := o.website.Scrape(ctx, rec.Website.Value)
		rec.Email.Fill(scraped.Email)
		rec.Phone.Fill(scraped.Phone)
		rec.OpeningHours.Fill(scraped.OpeningHours)
	}

	if !rec.OpeningHours.Known {
		if assumed, ok := o.table.Assumed(cat); ok {
			rec.OpeningHours = model.Known(assumed)
		}
	}

	rec.Reviews = o.reviews.Fetch(ctx, cand.Name, city)
	return rec
}

// fillFromDirectory runs the search step (retried once with the category
// omitted), then the detail step when an id is known and gaps remain.
func (o *Orchestrator) fillFromDirectory(ctx context.Context, rec *model.BusinessRecord, name, cat, city string) {
	res, err := o.directory.Search(ctx, name, cat, city)
	if eris.Is(err, directory.ErrNotFound) {
		zap.L().Debug("enrich: directory search miss, retrying without category",
			zap.String("name", name),
		)
		res, err = o.directory.Search(ctx, name, "", city)
	}
	if err != nil {
		o.noteDirectoryError(err, name)
		return
	}

	rec.Phone.Fill(res.Phone)
	rec.Email.Fill(res.Email)
	rec.OpeningHours.Fill(res.OpeningHours)
	rec.Website.Fill(res.Website)

	if res.ID == "" || !o.incomplete(*rec) {
		return
	}

	det, err := o.directory.Details(ctx, res.ID)
	if err != nil {
		o.noteDirectoryError(err, name)
		return
	}
	rec.Phone.Fill(det.Phone)
	rec.Email.Fill(det.Email)
	rec.OpeningHours.Fill(det.OpeningHours)
	rec.Website.Fill(det.Website)
}

func (o *Orchestrator) noteDirectoryError(err error, name string) {
	if eris.Is(err, localbiz.ErrQuotaExceeded) {
		o.quotaHit = true
		zap.L().Warn("enrich: directory quota exceeded, suppressing source for this run")
		return
	}
	if !eris.Is(err, directory.ErrNotFound) {
		zap.L().Warn("enrich: directory lookup failed", zap.String("name", name), zap.Error(err))
	}
}

// incomplete reports whether any directory-fillable field is still absent.
func (o *Orchestrator) incomplete(rec model.BusinessRecord) bool {
	return !rec.Phone.Known || !rec.Email.Known || !rec.OpeningHours.Known || !rec.Website.Known
}

// scrapeNeeded reports whether the website scraper could still contribute.
func (o *Orchestrator) scrapeNeeded(rec model.BusinessRecord) bool {
	return !rec.Phone.Known || !rec.Email.Known || !rec.OpeningHours.Known
}
