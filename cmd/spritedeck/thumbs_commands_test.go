package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"spritedeck/internal/document"
	"spritedeck/internal/faults"
	"spritedeck/internal/testsupport"
	"spritedeck/internal/thumbnail"
	"spritedeck/internal/watch"
)

func thumbPath(env *cliTestEnv, s testsupport.Sprite, size int) string {
	short := strings.TrimPrefix(s.Category, "blocks/")
	return filepath.Join(env.sourceRoot, "blocks", short, s.Src, s.Src+"_"+strconv.Itoa(size)+".png")
}

func TestThumbsGenerateAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "thumbs", "status", "--output", "json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var before thumbnail.Report
	if err := json.Unmarshal([]byte(out), &before); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(before.Missing) != 3 || len(before.OK) != 0 {
		t.Fatalf("before generate: %+v", before)
	}

	out, _, err = runCLI(t, env, "thumbs", "generate", "--output", "json")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	var summary thumbnail.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Generated != 3 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if w, h := testsupport.DecodePNGSize(t, thumbPath(env, env.sprites[0], 16)); w != 16 || h != 8 {
		t.Fatalf("dirt_16 = %dx%d", w, h)
	}

	out, _, err = runCLI(t, env, "thumbs", "generate")
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, "Skipped")

	out, _, err = runCLI(t, env, "thumbs", "status")
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, "Up to date:")
	requireContains(t, out, "3")

	if _, _, err := runCLI(t, env, "thumbs", "generate", "5"); !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("generate with bad index: %v", err)
	}
}

func TestThumbsGenerateReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	broken := testsupport.WriteSourcePNG(t, env.sourceRoot, env.sprites[1], 4, 4)
	testsupport.WriteFile(t, broken, []byte("not a png"))

	out, _, err := runCLI(t, env, "thumbs", "generate", "0", "1")
	if !errors.Is(err, faults.ErrImage) {
		t.Fatalf("expected image error, got %v\n%s", err, out)
	}
	requireContains(t, out, "stone")
}

func TestThumbsMetricsTextfile(t *testing.T) {
	env := setupCLITestEnv(t)
	metrics := filepath.Join(env.baseDir, "metrics", "spritedeck.prom")
	content, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	content = bytes.Replace(content, []byte("workers = 2\n"), []byte("workers = 2\nmetrics_textfile = \""+metrics+"\"\n"), 1)
	if err := os.WriteFile(env.configPath, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(metrics), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, env, "thumbs", "generate"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics textfile: %v", err)
	}
	requireContains(t, string(data), `spritedeck_thumbnail_records_total{outcome="generated"} 3`)
}

func TestWatchSessionRegeneratesChangedSources(t *testing.T) {
	env := setupCLITestEnv(t)
	doc, err := document.Open(env.docPath, document.Options{SourceRoot: env.sourceRoot, Sizes: []int{8}})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	session := newWatchSession(doc, thumbnail.BatchOptions{Workers: 1}, nil, &out)

	ctx := context.Background()
	if s := session.catchUp(ctx); s.Generated != 3 {
		t.Fatalf("catch-up generated %d", s.Generated)
	}

	stone := env.sprites[1]
	thumb := thumbPath(env, stone, 8)
	past := time.Now().Add(-time.Hour)
	testsupport.SetModTime(t, thumb, past)
	source := filepath.Join(env.sourceRoot, "blocks", "ground", "ground__stone.png")
	testsupport.SetModTime(t, source, past.Add(time.Minute))

	out.Reset()
	session.handle(ctx, []watch.Change{
		{Path: source, Op: watch.OpWrite},
		{Path: filepath.Join(env.sourceRoot, "unrelated.png"), Op: watch.OpCreate},
		{Path: thumb, Op: watch.OpWrite},
	})
	requireContains(t, out.String(), "generated 1")

	info, err := os.Stat(thumb)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().After(past.Add(time.Minute)) {
		t.Fatal("stale thumbnail was not regenerated")
	}

	out.Reset()
	session.handle(ctx, []watch.Change{{Path: source, Op: watch.OpWrite}})
	if out.Len() != 0 {
		t.Fatalf("current thumbnails should not regenerate: %s", out.String())
	}
}

func TestWatchSessionReloadsCatalog(t *testing.T) {
	env := setupCLITestEnv(t)
	doc, err := document.Open(env.docPath, document.Options{SourceRoot: env.sourceRoot, Sizes: []int{8}})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	session := newWatchSession(doc, thumbnail.BatchOptions{}, nil, &out)

	extra := testsupport.Sprite{Category: "blocks/plants", Src: "moss", Text: "Moss"}
	sprites := append(append([]testsupport.Sprite(nil), env.sprites...), extra)
	testsupport.WriteCatalog(t, env.baseDir, sprites, nil)
	testsupport.SetModTime(t, env.docPath, time.Now().Add(time.Minute))
	source := testsupport.WriteSourcePNG(t, env.sourceRoot, extra, 4, 4)

	session.handle(context.Background(), []watch.Change{{Path: source, Op: watch.OpCreate}})
	if doc.Len() != 4 {
		t.Fatalf("catalog not reloaded: len = %d", doc.Len())
	}
	requireContains(t, out.String(), "generated 1")
}
