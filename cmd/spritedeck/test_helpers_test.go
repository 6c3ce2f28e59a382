package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spritedeck/internal/config"
	"spritedeck/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	docPath    string
	sourceRoot string
	baseDir    string
	sprites    []testsupport.Sprite
}

type envOption func(*envSettings)

type envSettings struct {
	withoutDocument bool
}

// withoutDocument leaves paths.document unset so commands fall back to the
// --document flag or the remembered last file.
func withoutDocument() envOption {
	return func(s *envSettings) { s.withoutDocument = true }
}

var defaultSprites = []testsupport.Sprite{
	{Category: "blocks/ground", Src: "dirt", Text: "Dirt", Width: 20, Height: 10},
	{Category: "blocks/ground", Src: "stone", Text: "Stone", Width: 16, Height: 16},
	{Category: "blocks/plants", Src: "fern", Text: "Fern", Width: 8, Height: 24},
}

func setupCLITestEnv(t *testing.T, opts ...envOption) *cliTestEnv {
	t.Helper()

	var settings envSettings
	for _, opt := range opts {
		opt(&settings)
	}

	cfg := testsupport.NewConfig(t, testsupport.WithSizes(8, 16), testsupport.WithWorkers(2))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv(config.EnvSourceRoot, "")
	t.Setenv(config.EnvDocument, "")

	docPath := testsupport.WriteCatalog(t, base, defaultSprites, map[string]any{"tile": map[string]any{"width": 16}})
	for _, s := range defaultSprites {
		testsupport.WriteSourcePNG(t, cfg.Paths.SourceRoot, s, s.Width, s.Height)
	}

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		docPath:    docPath,
		sourceRoot: cfg.Paths.SourceRoot,
		baseDir:    base,
		sprites:    defaultSprites,
	}
	document := docPath
	if settings.withoutDocument {
		document = ""
	}
	writeTestConfig(t, env.configPath, cfg, document)
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config, document string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
source_root = %q
document = %q
state_dir = %q
log_dir = %q

[thumbnails]
sizes = [8, 16]
workers = %d

[logging]
level = "error"
`, cfg.Paths.SourceRoot, document, cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.Thumbnails.Workers)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd, ctx := newRootCommandWithContext()
	defer func() { _ = ctx.close() }()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n--- output ---\n%s", needle, haystack)
	}
}
