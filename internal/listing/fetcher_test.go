package listing

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/category"
	"github.com/localatlas/bizscout/internal/model"
	"github.com/localatlas/bizscout/internal/ratelimit"
	"github.com/localatlas/bizscout/pkg/overpass"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type mockOverpass struct {
	lastQuery string
	resp      *overpass.Response
	err       error
}

func (m *mockOverpass) Query(_ context.Context, ql string) (*overpass.Response, error) {
	m.lastQuery = ql
	return m.resp, m.err
}

func testLimiter() *ratelimit.Registry {
	return ratelimit.NewRegistry(map[string]time.Duration{ratelimit.SourceListing: 0})
}

func testRegion(t *testing.T) *model.Region {
	t.Helper()
	r, err := model.NewRegion(24.5, 66.8, 25.2, 67.2, model.LatLon{Lat: 24.8607, Lon: 67.0011})
	require.NoError(t, err)
	return r
}

func ptr(v float64) *float64 { return &v }

func hospitalNode(name string, lat, lon float64) overpass.Element {
	return overpass.Element{
		Type: "node",
		Lat:  ptr(lat),
		Lon:  ptr(lon),
		Tags: map[string]string{"amenity": "hospital", "name": name},
	}
}

func TestFetch_QueryShape(t *testing.T) {
	mock := &mockOverpass{resp: &overpass.Response{}}
	f := NewFetcher(mock, testLimiter(), category.Default())

	_, err := f.Fetch(context.Background(), testRegion(t), "hospitals", 5)

	require.NoError(t, err)
	assert.Contains(t, mock.lastQuery, `node["amenity"="hospital"](24.5,66.8,25.2,67.2)`)
	assert.Contains(t, mock.lastQuery, "[out:json][timeout:30];")
}

func TestFetch_UnmappedCategoryUsesGenericSelector(t *testing.T) {
	mock := &mockOverpass{resp: &overpass.Response{}}
	f := NewFetcher(mock, testLimiter(), category.Default())

	_, err := f.Fetch(context.Background(), testRegion(t), "gyms", 5)

	require.NoError(t, err)
	assert.Contains(t, mock.lastQuery, `node["amenity"](24.5,66.8,25.2,67.2)`)
}

func TestFetch_TypeFilterRejectsWrongAmenity(t *testing.T) {
	mock := &mockOverpass{resp: &overpass.Response{Elements: []overpass.Element{
		hospitalNode("Civil Hospital", 24.86, 67.01),
		{
			Type: "node",
			Lat:  ptr(24.87),
			Lon:  ptr(67.02),
			Tags: map[string]string{"amenity": "pharmacy", "name": "City Hospital Pharmacy"},
		},
	}}}
	f := NewFetcher(mock, testLimiter(), category.Default())

	got, err := f.Fetch(context.Background(), testRegion(t), "hospitals", 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Civil Hospital", got[0].Name)
}

func TestFetch_KeywordFilterRejectsMismatchedName(t *testing.T) {
	mock := &mockOverpass{resp: &overpass.Response{Elements: []overpass.Element{
		hospitalNode("Ziauddin Clinic", 24.86, 67.01),
		hospitalNode("Liaquat National Hospital", 24.89, 67.07),
	}}}
	f := NewFetcher(mock, testLimiter(), category.Default())

	got, err := f.Fetch(context.Background(), testRegion(t), "hospitals", 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Liaquat National Hospital", got[0].Name)
}

func TestFetch_SkipsElementsWithoutCoordinates(t *testing.T) {
	mock := &mockOverpass{resp: &overpass.Response{Elements: []overpass.Element{
		{Type: "way", Tags: map[string]string{"amenity": "hospital", "name": "Area Hospital"}},
		hospitalNode("Civil Hospital", 24.86, 67.01),
	}}}
	f := NewFetcher(mock, testLimiter(), category.Default())

	got, err := f.Fetch(context.Background(), testRegion(t), "hospitals", 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Civil Hospital", got[0].Name)
}

func TestFetch_TruncatesBeforeFiltering(t *testing.T) {
	// With limit 2, the third (valid) element must never be considered even
	// though the first gets filtered out.
	mock := &mockOverpass{resp: &overpass.Response{Elements: []overpass.Element{
		hospitalNode("Ziauddin Clinic", 24.86, 67.01),
		hospitalNode("Civil Hospital", 24.87, 67.02),
		hospitalNode("Jinnah Hospital", 24.88, 67.03),
	}}}
	f := NewFetcher(mock, testLimiter(), category.Default())

	got, err := f.Fetch(context.Background(), testRegion(t), "hospitals", 2)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Civil Hospital", got[0].Name)
}

func TestFetch_UnnamedCandidateGetsPlaceholder(t *testing.T) {
	mock := &mockOverpass{resp: &overpass.Response{Elements: []overpass.Element{
		{
			Type: "node",
			Lat:  ptr(24.86),
			Lon:  ptr(67.01),
			Tags: map[string]string{"amenity": "restaurant"},
		},
	}}}
	f := NewFetcher(mock, testLimiter(), category.Default())

	got, err := f.Fetch(context.Background(), testRegion(t), "restaurants", 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown", got[0].Name)
}

func TestFetch_EmptyResultIsNotError(t *testing.T) {
	mock := &mockOverpass{resp: &overpass.Response{}}
	f := NewFetcher(mock, testLimiter(), category.Default())

	got, err := f.Fetch(context.Background(), testRegion(t), "hospitals", 10)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetch_SourceErrorPropagates(t *testing.T) {
	mock := &mockOverpass{err: eris.New("gateway timeout")}
	f := NewFetcher(mock, testLimiter(), category.Default())

	_, err := f.Fetch(context.Background(), testRegion(t), "hospitals", 10)
	assert.Error(t, err)
}
