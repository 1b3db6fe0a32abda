package prefs

import (
	"regexp"

	appvalidator "smartlocations_backend/platform/validator"

	"github.com/go-playground/validator/v10"
)

// TagRule is the registered validation tag for attraction filter tokens:
// a bare key ("tourism") or a key=value pair ("tourism=museum").
const TagRule = "osmtag"

var tagPattern = regexp.MustCompile(`^[A-Za-z0-9_:.-]+(=[^=;()\[\]{}]+)?$`)

// RegisterTagRule installs the osmtag validation on the shared validator.
func RegisterTagRule(val *appvalidator.Validator) error {
	return val.RegisterValidation(TagRule, func(fl validator.FieldLevel) bool {
		return tagPattern.MatchString(fl.Field().String())
	})
}

// DefaultAttractions is the built-in Favorites tag set used when a user has
// no stored preferences, or when the store cannot be reached.
var DefaultAttractions = []string{
	"tourism=attraction",
	"tourism=museum",
	"tourism=gallery",
	"tourism=viewpoint",
	"tourism=zoo",
	"tourism=theme_park",
	"historic=castle",
	"historic=monument",
	"historic=memorial",
	"leisure=park",
	"amenity=theatre",
	"amenity=arts_centre",
}

// defaultTags returns a fresh copy so callers can mutate their slice freely.
func defaultTags() []string {
	out := make([]string, len(DefaultAttractions))
	copy(out, DefaultAttractions)
	return out
}
