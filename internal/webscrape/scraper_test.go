package webscrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/phone"
	"github.com/localatlas/bizscout/internal/ratelimit"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestScraper() *Scraper {
	limiter := ratelimit.NewRegistry(map[string]time.Duration{ratelimit.SourceWebsite: 0})
	return NewScraper(limiter, phone.NewNormalizer("PK"))
}

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrape_ExtractsAllFields(t *testing.T) {
	srv := servePage(t, `<html><body>
		<p>Reach us at info@civilhospital.example or call +92 300 1234567.</p>
		<p>Mon-Fri 09:00 - 17:00</p>
	</body></html>`)

	res := newTestScraper().Scrape(context.Background(), srv.URL)

	require.True(t, res.Email.Known)
	assert.Equal(t, "info@civilhospital.example", res.Email.Value)

	require.True(t, res.Phone.Known)
	assert.Contains(t, res.Phone.Value, "+92", "phone should be normalized")

	require.True(t, res.OpeningHours.Known)
	assert.Equal(t, "Mon-Fri 09:00 - 17:00", res.OpeningHours.Value)
}

func TestScrape_PrefersContactStyleEmail(t *testing.T) {
	srv := servePage(t, `<html><body>
		<p>webmaster@civilhospital.example</p>
		<p>contact@civilhospital.example</p>
	</body></html>`)

	res := newTestScraper().Scrape(context.Background(), srv.URL)

	require.True(t, res.Email.Known)
	assert.Equal(t, "contact@civilhospital.example", res.Email.Value)
}

func TestScrape_FallsBackToFirstEmail(t *testing.T) {
	srv := servePage(t, `<html><body>
		<p>webmaster@a.example then sales@b.example</p>
	</body></html>`)

	res := newTestScraper().Scrape(context.Background(), srv.URL)

	require.True(t, res.Email.Known)
	assert.Equal(t, "webmaster@a.example", res.Email.Value)
}

func TestScrape_IgnoresScriptAndStyleText(t *testing.T) {
	srv := servePage(t, `<html><head>
		<script>var tracker = "spam@tracker.example";</script>
		<style>.x{}</style>
	</head><body><p>No contact info here.</p></body></html>`)

	res := newTestScraper().Scrape(context.Background(), srv.URL)

	assert.False(t, res.Email.Known)
	assert.False(t, res.Phone.Known)
	assert.False(t, res.OpeningHours.Known)
}

func TestScrape_EmptyURL(t *testing.T) {
	res := newTestScraper().Scrape(context.Background(), "")

	assert.False(t, res.Email.Known)
	assert.False(t, res.Phone.Known)
	assert.False(t, res.OpeningHours.Known)
}

func TestScrape_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := newTestScraper().Scrape(context.Background(), url)

	assert.False(t, res.Email.Known, "fetch failures collapse to all-unknown")
}

func TestScrape_Non200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := newTestScraper().Scrape(context.Background(), srv.URL)
	assert.False(t, res.Email.Known)
}

func TestScrape_SendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	newTestScraper().Scrape(context.Background(), srv.URL)
	assert.Contains(t, got, "bizscout")
}
