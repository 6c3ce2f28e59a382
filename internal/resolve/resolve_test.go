package resolve_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spritedeck/internal/faults"
	"spritedeck/internal/resolve"
	"spritedeck/internal/sprite"
)

func touch(t *testing.T, root, rel string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestResolveAlreadyPrefixedIdentifier(t *testing.T) {
	root := t.TempDir()
	want := touch(t, root, "blocks/templates/templates__green_normal.png")

	res, err := resolve.New(root).Resolve("blocks/templates", "templates__green_normal")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Path != want {
		t.Fatalf("path = %q, want %q", res.Path, want)
	}
	if res.Convention != resolve.Prefixed {
		t.Fatalf("convention = %v, want prefixed", res.Convention)
	}
}

func TestResolvePrefixesBareIdentifier(t *testing.T) {
	root := t.TempDir()
	want := touch(t, root, "blocks/resources/resources__titanium.png")
	touch(t, root, "blocks/resources/titanium.png")

	res, err := resolve.New(root).Resolve("blocks/resources", "titanium")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Path != want || res.Convention != resolve.Prefixed {
		t.Fatalf("got %q (%v), want prefixed %q", res.Path, res.Convention, want)
	}
}

func TestResolveUnprefixedFallback(t *testing.T) {
	root := t.TempDir()
	want := touch(t, root, "blocks/resources/titanium.png")

	res, err := resolve.New(root).Resolve("blocks/resources", "titanium")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Path != want || res.Convention != resolve.Unprefixed {
		t.Fatalf("got %q (%v), want unprefixed %q", res.Path, res.Convention, want)
	}
}

func TestResolveUnprefixedLastComponent(t *testing.T) {
	root := t.TempDir()
	want := touch(t, root, "blocks/templates/green_normal.png")

	res, err := resolve.New(root).Resolve(`blocks\templates`, "templates__green_normal")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Path != want || res.Convention != resolve.Unprefixed {
		t.Fatalf("got %q (%v), want %q", res.Path, res.Convention, want)
	}
}

func TestResolveRootFallbacks(t *testing.T) {
	root := t.TempDir()
	want := touch(t, root, "loose.png")
	res, err := resolve.New(root).Resolve("blocks/misc", "loose")
	if err != nil || res.Path != want || res.Convention != resolve.RootPNG {
		t.Fatalf("got %+v %v, want root png %q", res, err, want)
	}

	verbatim := touch(t, root, "icon.gif")
	res, err = resolve.New(root).Resolve("", "icon.gif")
	if err != nil || res.Path != verbatim || res.Convention != resolve.RootVerbatim {
		t.Fatalf("got %+v %v, want verbatim %q", res, err, verbatim)
	}
}

func TestResolveIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "blocks", "a", "x.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := resolve.New(root).Resolve("blocks/a", "x"); err == nil {
		t.Fatal("a directory must not resolve as an image")
	}
}

func TestResolveNotFoundListsCandidates(t *testing.T) {
	root := t.TempDir()
	_, err := resolve.New(root).Resolve("blocks/resources", "titanium")
	if err == nil {
		t.Fatal("expected not found")
	}
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound marker, got %v", err)
	}
	var nf *resolve.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
	want := []string{
		filepath.Join(root, "blocks", "resources", "resources__titanium.png"),
		filepath.Join(root, "blocks", "resources", "titanium.png"),
		filepath.Join(root, "titanium.png"),
		filepath.Join(root, "titanium"),
	}
	if len(nf.Tried) != len(want) {
		t.Fatalf("tried = %v, want %v", nf.Tried, want)
	}
	for i := range want {
		if nf.Tried[i] != want[i] {
			t.Fatalf("tried[%d] = %q, want %q", i, nf.Tried[i], want[i])
		}
	}
}

func TestResolveWithoutRoot(t *testing.T) {
	if _, err := resolve.New("").Resolve("a", "b"); !errors.Is(err, resolve.ErrNoRoot) {
		t.Fatalf("expected ErrNoRoot, got %v", err)
	}
	var nilResolver *resolve.Resolver
	if _, err := nilResolver.Resolve("a", "b"); !errors.Is(err, resolve.ErrNoRoot) {
		t.Fatalf("expected ErrNoRoot from nil resolver, got %v", err)
	}
}

func TestResolveRecordWithoutSourceID(t *testing.T) {
	var rec sprite.Record
	rec.SetString(sprite.KeyCategory, "blocks/a")
	_, err := resolve.New(t.TempDir()).ResolveRecord(rec)
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
