// Package webscrape opportunistically extracts contact fields from a
// business's own website.
package webscrape

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/model"
	"github.com/localatlas/bizscout/internal/phone"
	"github.com/localatlas/bizscout/internal/ratelimit"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}(?:\.[a-zA-Z]{2,})?`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}\s?\d{1,4}\s?\d{6,10}|\d{3}-\d{3}-\d{4}|\d{10,12}|0\d{2,3}-\d{7,8})`)
	hoursPattern = regexp.MustCompile(`(?i)(?:(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun|Mo-Fr|Mo-Su)\s*-?\s*(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)?\s*\d{1,2}:\d{2}\s*-\s*\d{1,2}:\d{2})|(?:Open\s*\d{1,2}\s*(?:AM|PM)\s*to\s*\d{1,2}\s*(?:AM|PM))`)

	// preferredLocalParts rank emails that look like a business contact
	// address above whatever happens to appear first on the page.
	preferredLocalParts = []string{"contact", "info", "support"}
)

// Result holds the fields extracted from one page.
type Result struct {
	Email        model.Field
	Phone        model.Field
	OpeningHours model.Field
}

// Scraper fetches a single known page and pulls contact fields out of its
// text. It is not a crawler.
type Scraper struct {
	http      *http.Client
	limiter   *ratelimit.Registry
	phones    *phone.Normalizer
	userAgent string
}

// NewScraper creates a Scraper.
func NewScraper(limiter *ratelimit.Registry, phones *phone.Normalizer) *Scraper {
	return &Scraper{
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
		limiter:   limiter,
		phones:    phones,
		userAgent: "bizscout/1.0 (Mozilla/5.0; compatible)",
	}
}

// WithHTTPClient overrides the page-fetch http.Client.
func (s *Scraper) WithHTTPClient(hc *http.Client) *Scraper {
	s.http = hc
	return s
}

// Scrape fetches the URL and extracts email, phone and opening hours from
// its visible text. Every failure mode collapses to all-unknown; nothing
// escapes this boundary.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) Result {
	if pageURL == "" {
		return Result{}
	}

	if err := s.limiter.Acquire(ctx, ratelimit.SourceWebsite); err != nil {
		return Result{}
	}

	text, err := s.fetchText(ctx, pageURL)
	if err != nil {
		zap.L().Warn("webscrape: page fetch failed",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return Result{}
	}

	return Result{
		Email:        extractEmail(text),
		Phone:        s.phones.Normalize(extractPhone(text)),
		OpeningHours: extractHours(text),
	}
}

func (s *Scraper) fetchText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("webscrape: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text(), nil
}

// extractEmail returns the best email match: one whose local part contains
// a preferred keyword, else the first match on the page.
func extractEmail(text string) model.Field {
	matches := emailPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return model.Unknown()
	}
	for _, m := range matches {
		local := strings.ToLower(strings.SplitN(m, "@", 2)[0])
		for _, kw := range preferredLocalParts {
			if strings.Contains(local, kw) {
				return model.Known(m)
			}
		}
	}
	return model.Known(matches[0])
}

func extractPhone(text string) model.Field {
	if m := phonePattern.FindString(text); m != "" {
		return model.Known(m)
	}
	return model.Unknown()
}

func extractHours(text string) model.Field {
	if m := hoursPattern.FindString(text); m != "" {
		return model.Known(m)
	}
	return model.Unknown()
}
