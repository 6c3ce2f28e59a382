package main

import (
	"context"
	"errors"
	"testing"

	"spritedeck/internal/faults"
)

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		arg     string
		key     string
		raw     string
		wantErr bool
	}{
		{arg: "width=16", key: "width", raw: "16"},
		{arg: "hidden=true", key: "hidden", raw: "true"},
		{arg: "src=123", key: "src", raw: `"123"`},
		{arg: "text=Oak <Log>", key: "text", raw: `"Oak <Log>"`},
		{arg: "text=Oak <Log> & Co", key: "text", raw: `"Oak <Log> & Co"`},
		{arg: "note=plain words", key: "note", raw: `"plain words"`},
		{arg: `meta={"a":1}`, key: "meta", raw: `{"a":1}`},
		{arg: "novalue", wantErr: true},
		{arg: "=x", wantErr: true},
	}
	for _, tt := range tests {
		key, raw, err := parseAssignment(tt.arg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAssignment(%q) expected error", tt.arg)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAssignment(%q): %v", tt.arg, err)
			continue
		}
		if key != tt.key || string(raw) != tt.raw {
			t.Errorf("parseAssignment(%q) = %s %s, want %s %s", tt.arg, key, raw, tt.key, tt.raw)
		}
	}
}

func TestParseIndex(t *testing.T) {
	if i, err := parseIndex("2", 3); err != nil || i != 2 {
		t.Fatalf("parseIndex = %d %v", i, err)
	}
	for _, arg := range []string{"3", "-1", "x"} {
		if _, err := parseIndex(arg, 3); !errors.Is(err, faults.ErrStructural) {
			t.Errorf("parseIndex(%q) err = %v", arg, err)
		}
	}
}

func TestExitCode(t *testing.T) {
	cases := map[error]int{
		nil: 0,
		faults.Wrap(faults.ErrValidation, "cli", "validate", "x", nil):  2,
		faults.Wrap(faults.ErrConfiguration, "cli", "doctor", "x", nil): 3,
		faults.Wrap(faults.ErrImage, "cli", "thumbs", "x", nil):         1,
		context.Canceled: 1,
	}
	for err, want := range cases {
		if got := exitCode(err); got != want {
			t.Errorf("exitCode(%v) = %d, want %d", err, got, want)
		}
	}
}
