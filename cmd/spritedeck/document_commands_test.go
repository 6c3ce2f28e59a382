package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spritedeck/internal/document"
	"spritedeck/internal/faults"
	"spritedeck/internal/settings"
	"spritedeck/internal/testsupport"
)

func TestListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, s := range env.sprites {
		requireContains(t, out, s.Src)
	}

	out, _, err = runCLI(t, env, "list", "--category", "plants", "--output", "json")
	if err != nil {
		t.Fatalf("list json: %v", err)
	}
	var listed []struct {
		Index  int            `json:"index"`
		Record map[string]any `json:"record"`
	}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode list json: %v\n%s", err, out)
	}
	if len(listed) != 1 || listed[0].Index != 2 || listed[0].Record["src"] != "fern" {
		t.Fatalf("unexpected list json: %+v", listed)
	}

	out, _, err = runCLI(t, env, "categories")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	requireContains(t, out, "ground")
	requireContains(t, out, "plants")

	out, _, err = runCLI(t, env, "show", "0")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, `"src": "dirt"`)
	requireContains(t, out, "ground__dirt.png")
	requireContains(t, out, "missing sizes 8,16")

	out, _, err = runCLI(t, env, "show", "1", "--output", "yaml")
	if err != nil {
		t.Fatalf("show yaml: %v", err)
	}
	requireContains(t, out, "src: stone")

	_, _, err = runCLI(t, env, "show", "7")
	if !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("show out of range: got %v, want structural error", err)
	}

	out, _, err = runCLI(t, env, "show", "fern")
	if err != nil {
		t.Fatalf("show by src: %v", err)
	}
	requireContains(t, out, "Record #2")
	if _, _, err := runCLI(t, env, "show", "granite"); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("show unknown src: got %v, want not found", err)
	}
}

func TestOpenSummaryAndDefaults(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "open", env.docPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	requireContains(t, out, "Keys:        blockDefaults, blockList")

	out, _, err = runCLI(t, env, "defaults")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	requireContains(t, out, `"width": 16`)

	out, _, err = runCLI(t, env, "defaults", "-o", "yaml")
	if err != nil {
		t.Fatalf("defaults yaml: %v", err)
	}
	requireContains(t, out, "tile:\n  width: 16")
}

func TestEditCommandsPersist(t *testing.T) {
	env := setupCLITestEnv(t)

	steps := [][]string{
		{"add", "--category", "blocks/ground", "--src", "gravel", "--text", "Gravel"},
		{"set", "3", "width=4", "height=4", "hidden=true", "text=123"},
		{"unset", "3", "hidden"},
		{"duplicate", "dirt"},
		{"move", "1", "4"},
	}
	for _, args := range steps {
		if out, _, err := runCLI(t, env, args...); err != nil {
			t.Fatalf("%v: %v\n%s", args, err, out)
		}
	}

	doc, err := document.Open(env.docPath, document.Options{})
	if err != nil {
		t.Fatal(err)
	}
	var srcs []string
	for _, r := range doc.Records() {
		src, _ := r.SourceID()
		srcs = append(srcs, src)
	}
	if got := strings.Join(srcs, ","); got != "dirt,stone,fern,gravel,dirt_copy" {
		t.Fatalf("record order = %s", got)
	}
	gravel, _ := doc.Get(3)
	if w, h, ok := gravel.Dimensions(); !ok || w != 4 || h != 4 {
		t.Fatalf("gravel dimensions = %d x %d", w, h)
	}
	if gravel.Has("hidden") {
		t.Fatal("hidden should have been unset")
	}
	if text, ok := gravel.String("text"); !ok || text != "123" {
		t.Fatalf("text should stay a string, got %q %v", text, ok)
	}
	if _, err := os.Stat(env.docPath + document.BackupSuffix); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}

	out, _, err := runCLI(t, env, "delete", "0", "--dry-run")
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, "dry run")
	doc, err = document.Open(env.docPath, document.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Len() != 5 {
		t.Fatalf("dry run should not save; len = %d", doc.Len())
	}

	if _, _, err := runCLI(t, env, "delete", "9"); !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("delete out of range: %v", err)
	}
	if _, _, err := runCLI(t, env, "add", "--src", "x"); err == nil {
		t.Fatal("add without --category should fail")
	}
}

func TestSetKeepsMarkupLiteralOnDisk(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "set", "0", "text=Oak <Log> & Co"); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, err := os.ReadFile(env.docPath)
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, string(data), `"text": "Oak <Log> & Co"`)
	if strings.Contains(string(data), `\u003c`) || strings.Contains(string(data), `\u0026`) {
		t.Fatalf("catalog escaped markup:\n%s", data)
	}
}

func TestValidateCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "add", "--category", "blocks/ground", "--src", "dirt"); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, env, "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "Duplicate src 'dirt' appears 2 times")

	out, _, err = runCLI(t, env, "validate", "--output", "json")
	if err != nil {
		t.Fatal(err)
	}
	var report struct {
		Counts struct {
			Errors int `json:"errors"`
		} `json:"counts"`
		Issues []struct {
			Severity string `json:"severity"`
		} `json:"issues"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if report.Counts.Errors != 1 {
		t.Fatalf("errors = %d", report.Counts.Errors)
	}

	_, _, err = runCLI(t, env, "validate", "--strict", "--min-severity", "error")
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("strict validate: got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("exit code = %d", exitCode(err))
	}
}

func TestOpenRemembersLastFile(t *testing.T) {
	env := setupCLITestEnv(t, withoutDocument())

	if _, _, err := runCLI(t, env, "list"); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("list without document: got %v", err)
	}

	out, _, err := runCLI(t, env, "open", env.docPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	requireContains(t, out, "Records:     3")

	out, _, err = runCLI(t, env, "list")
	if err != nil {
		t.Fatalf("list after open: %v", err)
	}
	requireContains(t, out, "fern")

	out, _, err = runCLI(t, env, "settings", "get", settings.KeyLastFile)
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, env.docPath)
}

func TestRootAndSettingsCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	other := t.TempDir()

	out, _, err := runCLI(t, env, "root", other)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	requireContains(t, out, "Source root set to")
	if got, ok, err := testsupport.MustOpenSettings(t, env.cfg).Get(t.Context(), settings.KeySourceRoot); err != nil || !ok || got != other {
		t.Fatalf("stored source root = %q %v %v, want %q", got, ok, err, other)
	}

	out, _, err = runCLI(t, env, "settings", "list", "--output", "json")
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, settings.KeySourceRoot)

	// paths.source_root in the config wins over the remembered value.
	out, _, err = runCLI(t, env, "root")
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, env.sourceRoot)

	if _, _, err := runCLI(t, env, "settings", "unset", settings.KeySourceRoot); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, env, "settings", "get", settings.KeySourceRoot); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("get after unset: %v", err)
	}
	if _, _, err := runCLI(t, env, "root", filepath.Join(other, "nope")); err == nil {
		t.Fatal("root should reject a missing directory")
	}
}

func TestScanAndPreview(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WritePNG(t, filepath.Join(env.sourceRoot, "blocks", "plants", "tall_grass.png"), 6, 12)

	out, _, err := runCLI(t, env, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "tall_grass")
	requireContains(t, out, "Tall Grass")
	if strings.Contains(out, "ground__dirt") {
		t.Fatalf("scan should skip images that existing records resolve to:\n%s", out)
	}

	if _, _, err := runCLI(t, env, "scan", "--add"); err != nil {
		t.Fatalf("scan --add: %v", err)
	}
	out, _, err = runCLI(t, env, "scan")
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, "No new images found")

	target := filepath.Join(t.TempDir(), "preview.png")
	out, _, err = runCLI(t, env, "preview", "0", "--size", "10", "--out", target)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	requireContains(t, out, "10x5")
	if w, h := testsupport.DecodePNGSize(t, target); w != 10 || h != 5 {
		t.Fatalf("preview size = %dx%d", w, h)
	}
}
