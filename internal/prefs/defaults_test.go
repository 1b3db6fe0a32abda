package prefs

import (
	"testing"

	appvalidator "smartlocations_backend/platform/validator"
)

func TestTagRule(t *testing.T) {
	val := appvalidator.New()
	if err := RegisterTagRule(val); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	valid := []string{"tourism", "tourism=museum", "addr:city=Amsterdam", "theme_park=yes"}
	for _, tag := range valid {
		if err := val.Var(tag, TagRule); err != nil {
			t.Errorf("%q should be accepted: %v", tag, err)
		}
	}

	invalid := []string{"", "a=b=c", "key[", "amenity=cafe;bar", "name=(x)"}
	for _, tag := range invalid {
		if err := val.Var(tag, TagRule); err == nil {
			t.Errorf("%q should be rejected", tag)
		}
	}
}

func TestDefaultAttractionsAreValidTags(t *testing.T) {
	val := appvalidator.New()
	if err := RegisterTagRule(val); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for _, tag := range DefaultAttractions {
		if err := val.Var(tag, TagRule); err != nil {
			t.Errorf("built-in default %q fails its own rule: %v", tag, err)
		}
	}
}
