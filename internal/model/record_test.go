package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func karachiRegion(t *testing.T) *Region {
	t.Helper()
	r, err := NewRegion(24.5, 66.8, 25.2, 67.2, LatLon{Lat: 24.8607, Lon: 67.0011})
	require.NoError(t, err)
	return r
}

func TestNewRegion_RejectsDegenerateBox(t *testing.T) {
	tests := []struct {
		name                     string
		south, west, north, east float64
	}{
		{"south above north", 25.2, 66.8, 24.5, 67.2},
		{"west east of east", 24.5, 67.2, 25.2, 66.8},
		{"zero area", 24.5, 66.8, 24.5, 67.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegion(tt.south, tt.west, tt.north, tt.east, LatLon{})
			assert.Error(t, err)
		})
	}
}

func TestRegion_Edges(t *testing.T) {
	r := karachiRegion(t)

	assert.InDelta(t, 24.5, r.South(), 1e-9)
	assert.InDelta(t, 66.8, r.West(), 1e-9)
	assert.InDelta(t, 25.2, r.North(), 1e-9)
	assert.InDelta(t, 67.2, r.East(), 1e-9)
}

func TestRegion_Contains(t *testing.T) {
	r := karachiRegion(t)

	assert.True(t, r.Contains(LatLon{Lat: 24.8607, Lon: 67.0011}), "center must be inside")
	assert.False(t, r.Contains(LatLon{Lat: 31.5497, Lon: 74.3436}), "lahore is outside karachi's box")
}

func TestRegion_BBox(t *testing.T) {
	r := karachiRegion(t)
	assert.Equal(t, "24.5,66.8,25.2,67.2", r.BBox())
}

func TestCandidate_Tag(t *testing.T) {
	c := Candidate{Tags: map[string]string{"phone": "+92 21 1234567"}}

	assert.True(t, c.Tag("phone").Known)
	assert.False(t, c.Tag("email").Known, "missing tag is unknown")
}

func TestBusinessRecord_JSONShape(t *testing.T) {
	rec := BusinessRecord{
		Name:      "Aga Khan Hospital",
		Latitude:  24.8915,
		Longitude: 67.0745,
		Phone:     Known("+92 21 34930051"),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "Aga Khan Hospital", m["name"])
	assert.Equal(t, "+92 21 34930051", m["phone"])
	assert.Equal(t, "unknown", m["email"])
	assert.Equal(t, "unknown", m["reviews_comments"])
}
