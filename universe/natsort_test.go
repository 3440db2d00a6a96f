package universe

import (
	"sort"
	"testing"
)

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Planet 9", "Planet 10", true},
		{"Planet 10", "Planet 9", false},
		{"Gliese 2", "Gliese 10", true},
		{"HD 80606", "HD 80607", true},
		{"abc", "abd", true},
		{"ABC", "abd", true}, // case-insensitive outside digits
		{"Kepler", "Kepler-22", true},
		{"a01", "a1", false}, // leading zeros compare equal in value
		{"a1", "a01", false},
		{"same", "same", false},
	}

	for _, tt := range tests {
		if got := NaturalLess(tt.a, tt.b); got != tt.want {
			t.Errorf("NaturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNaturalLessSortsCatalogNumbers(t *testing.T) {
	names := []string{"Gliese 100", "Gliese 9", "Gliese 20", "Gliese 3"}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })

	want := []string{"Gliese 3", "Gliese 9", "Gliese 20", "Gliese 100"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", names, want)
		}
	}
}
