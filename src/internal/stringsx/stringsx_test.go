package stringsx

import "testing"

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", " ", "x", "y"); got != "x" {
		t.Fatalf("FirstNonEmpty: want 'x', got %q", got)
	}
	if got := FirstNonEmpty("", ""); got != "" {
		t.Fatalf("FirstNonEmpty empty: want '', got %q", got)
	}
}

func TestOr(t *testing.T) {
	if got := Or("  ", "NO_DATA"); got != "NO_DATA" {
		t.Fatalf("Or blank: got %q", got)
	}
	if got := Or(" Wiley ", "NO_DATA"); got != "Wiley" {
		t.Fatalf("Or value: got %q", got)
	}
}
