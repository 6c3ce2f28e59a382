package textutil

import "testing"

func TestDisplayTextFromStem(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{"oak_log", "Oak Log"},
		{"TNT", "Tnt"},
		{"stone", "Stone"},
		{"red_sandstone_slab", "Red Sandstone Slab"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayTextFromStem(tt.stem); got != tt.want {
			t.Errorf("DisplayTextFromStem(%q) = %q, want %q", tt.stem, got, tt.want)
		}
	}
}

func TestTernary(t *testing.T) {
	if Ternary(true, "yes", "no") != "yes" || Ternary(false, 1, 2) != 2 {
		t.Fatal("Ternary returned the wrong branch")
	}
}
