// Package category maps business categories to source-specific tags and
// heuristics.
package category

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Table holds per-category source mappings. Zero-value lookups fall back
// to generic behavior, so unmapped categories are always usable.
type Table struct {
	// Tags maps a category to the listing source's amenity tag value.
	Tags map[string]string `yaml:"tags"`
	// Keywords maps a category to a substring its entities' names (or
	// directory addresses) must contain. Deliberately sparse: only
	// categories with a documented keyword check belong here.
	Keywords map[string]string `yaml:"keywords"`
	// AssumedHours maps a category to a default opening-hours string used
	// when every other source came up empty.
	AssumedHours map[string]string `yaml:"assumed_hours"`
}

// Default returns the built-in category table.
func Default() *Table {
	return &Table{
		Tags: map[string]string{
			"schools":     "school",
			"restaurants": "restaurant",
			"hospitals":   "hospital",
		},
		Keywords: map[string]string{
			"hospitals": "hospital",
		},
		AssumedHours: map[string]string{
			"hospitals":   "9:00 AM - 5:00 PM (assumed, please verify)",
			"restaurants": "11:00 AM - 11:00 PM (assumed, please verify)",
		},
	}
}

// Load reads a category table from a YAML file, merged over the defaults.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "category: read table %s", path)
	}

	var override Table
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrap(err, "category: parse table")
	}

	t := Default()
	for k, v := range override.Tags {
		t.Tags[k] = v
	}
	for k, v := range override.Keywords {
		t.Keywords[k] = v
	}
	for k, v := range override.AssumedHours {
		t.AssumedHours[k] = v
	}
	return t, nil
}

// Tag returns the listing tag for a category and whether the category is
// mapped at all.
func (t *Table) Tag(cat string) (string, bool) {
	tag, ok := t.Tags[strings.ToLower(cat)]
	return tag, ok
}

// Keyword returns the required name substring for a category, if any.
func (t *Table) Keyword(cat string) (string, bool) {
	kw, ok := t.Keywords[strings.ToLower(cat)]
	return kw, ok
}

// Assumed returns the category's assumed opening hours, if defined.
func (t *Table) Assumed(cat string) (string, bool) {
	h, ok := t.AssumedHours[strings.ToLower(cat)]
	return h, ok
}
