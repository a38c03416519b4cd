package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldOf(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		known bool
	}{
		{"value", "hello@example.com", true},
		{"empty", "", false},
		{"sentinel", "unknown", false},
		{"legacy sentinel", "N/A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FieldOf(tt.in)
			assert.Equal(t, tt.known, f.Known)
			if tt.known {
				assert.Equal(t, tt.in, f.Value)
			}
		})
	}
}

func TestField_Fill_FirstWriterWins(t *testing.T) {
	f := Unknown()

	f.Fill(Known("first"))
	assert.Equal(t, "first", f.Value)

	f.Fill(Known("second"))
	assert.Equal(t, "first", f.Value, "a later source must not overwrite a present value")
}

func TestField_Fill_UnknownNeverOverwrites(t *testing.T) {
	f := Known("present")
	f.Fill(Unknown())
	assert.True(t, f.Known)
	assert.Equal(t, "present", f.Value)
}

func TestField_Display(t *testing.T) {
	assert.Equal(t, "unknown", Unknown().Display())
	assert.Equal(t, "+92 300 1234567", Known("+92 300 1234567").Display())
}

func TestField_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Unknown())
	require.NoError(t, err)
	assert.Equal(t, `"unknown"`, string(data))

	data, err = json.Marshal(Known("a@b.pk"))
	require.NoError(t, err)
	assert.Equal(t, `"a@b.pk"`, string(data))

	var f Field
	require.NoError(t, json.Unmarshal([]byte(`"unknown"`), &f))
	assert.False(t, f.Known)

	require.NoError(t, json.Unmarshal([]byte(`"a@b.pk"`), &f))
	assert.True(t, f.Known)
	assert.Equal(t, "a@b.pk", f.Value)
}

func TestField_ZeroValueIsUnknown(t *testing.T) {
	var f Field
	assert.False(t, f.Known)
	assert.Equal(t, SentinelUnknown, f.Display())
}
