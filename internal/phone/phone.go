// Package phone validates and canonicalizes phone numbers for a target region.
package phone

import (
	"github.com/nyaruka/phonenumbers"

	"github.com/localatlas/bizscout/internal/model"
)

// Invalid marks a non-empty phone string that failed parsing or validation.
const Invalid = "Invalid"

// Normalizer canonicalizes phone strings against one region code.
type Normalizer struct {
	region string
}

// NewNormalizer creates a Normalizer for an ISO 3166-1 region code (e.g. "PK").
func NewNormalizer(region string) *Normalizer {
	return &Normalizer{region: region}
}

// Normalize returns the international-format number when the input parses
// and validates for the region, the Invalid marker when it does not, and
// an unknown field unchanged. Parse failures never escape.
func (n *Normalizer) Normalize(f model.Field) model.Field {
	if !f.Known {
		return f
	}
	num, err := phonenumbers.Parse(f.Value, n.region)
	if err != nil {
		return model.Known(Invalid)
	}
	if !phonenumbers.IsValidNumber(num) {
		return model.Known(Invalid)
	}
	return model.Known(phonenumbers.Format(num, phonenumbers.INTERNATIONAL))
}
