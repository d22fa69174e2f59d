package domain

import (
	"errors"
	"testing"
)

func TestParseAspectRatio(t *testing.T) {
	for _, valid := range []string{"16:9", "9:16"} {
		got, err := ParseAspectRatio(valid)
		if err != nil {
			t.Fatalf("ParseAspectRatio(%q): %v", valid, err)
		}
		if got.String() != valid {
			t.Fatalf("ParseAspectRatio(%q) = %q", valid, got)
		}
	}

	if got, err := ParseAspectRatio(""); err != nil || got != AspectLandscape {
		t.Fatalf("empty aspect should default to landscape, got %q err %v", got, err)
	}

	for _, invalid := range []string{"4:3", "1:1", "sixteen:nine", "16:9 "} {
		if _, err := ParseAspectRatio(invalid); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ParseAspectRatio(%q) should fail with ErrInvalidInput, got %v", invalid, err)
		}
	}
}
