package localbiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// DayHours is one day's opening hours.
type DayHours struct {
	Day   string
	Hours string
}

// Hours preserves the API's own day ordering, which encoding/json's map
// decoding would lose. The wire shape is an object keyed by day name with
// either a string or an array of strings per day.
type Hours []DayHours

// UnmarshalJSON decodes the hours object token by token so day order
// survives.
func (h *Hours) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*h = nil
		return nil
	}
	// Some records carry a plain string placeholder instead of an object.
	if trimmed[0] == '"' {
		*h = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "localbiz: decode hours")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return eris.Errorf("localbiz: hours is not an object: %s", string(trimmed))
	}

	var out Hours
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "localbiz: decode hours key")
		}
		day, ok := keyTok.(string)
		if !ok {
			return eris.Errorf("localbiz: non-string hours key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return eris.Wrapf(err, "localbiz: decode hours for %s", day)
		}
		out = append(out, DayHours{Day: day, Hours: formatHoursValue(raw)})
	}

	*h = out
	return nil
}

// MarshalJSON renders hours back to an ordered array of "day: hours" pairs.
func (h Hours) MarshalJSON() ([]byte, error) {
	parts := make([]string, len(h))
	for i, dh := range h {
		parts[i] = fmt.Sprintf("%s: %s", dh.Day, dh.Hours)
	}
	return json.Marshal(parts)
}

// Flatten joins the per-day hours into a single "day: hours; day: hours"
// string, keeping the source's day order. Empty hours flatten to "".
func (h Hours) Flatten() string {
	if len(h) == 0 {
		return ""
	}
	parts := make([]string, len(h))
	for i, dh := range h {
		parts[i] = fmt.Sprintf("%s: %s", dh.Day, dh.Hours)
	}
	return strings.Join(parts, "; ")
}

func formatHoursValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return string(raw)
}
