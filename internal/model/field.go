package model

import "encoding/json"

// SentinelUnknown is the wire-level marker for an absent field value.
// It appears only at serialization boundaries (export, HTTP, store);
// in-process code uses Field's Known flag instead.
const SentinelUnknown = "unknown"

// NoReviews marks an entity that was found by the reviews source but has
// zero reviews. Distinct from SentinelUnknown.
const NoReviews = "No reviews available"

// Field is an optional string attribute of a business record.
// The zero value is "unknown".
type Field struct {
	Value string
	Known bool
}

// Known returns a set field.
func Known(v string) Field {
	return Field{Value: v, Known: true}
}

// Unknown returns an absent field.
func Unknown() Field {
	return Field{}
}

// FieldOf converts a raw source value to a Field. Empty strings and the
// wire sentinel both map to unknown.
func FieldOf(v string) Field {
	if v == "" || v == SentinelUnknown || v == "N/A" {
		return Unknown()
	}
	return Known(v)
}

// Fill sets f from v only if f is still unknown. Fields are monotonic
// across the enrichment chain: the first writer wins.
func (f *Field) Fill(v Field) {
	if !f.Known && v.Known {
		*f = v
	}
}

// Display returns the value, or the wire sentinel when absent.
func (f Field) Display() string {
	if !f.Known {
		return SentinelUnknown
	}
	return f.Value
}

// MarshalJSON emits the wire sentinel for absent values.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Display())
}

// UnmarshalJSON accepts either a concrete value or the wire sentinel.
func (f *Field) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = FieldOf(s)
	return nil
}
