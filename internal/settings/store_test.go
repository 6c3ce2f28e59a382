package settings_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"spritedeck/internal/settings"
)

func openStore(t *testing.T, path string) *settings.Store {
	t.Helper()
	store, err := settings.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "state", "settings.db"))

	if _, ok, err := store.Get(ctx, settings.KeySourceRoot); err != nil || ok {
		t.Fatalf("fresh store Get = ok %v err %v", ok, err)
	}
	if err := store.Set(ctx, settings.KeySourceRoot, "/sprites"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, settings.KeySourceRoot, "/sprites2"); err != nil {
		t.Fatal(err)
	}
	value, ok, err := store.Get(ctx, settings.KeySourceRoot)
	if err != nil || !ok || value != "/sprites2" {
		t.Fatalf("Get = %q %v %v", value, ok, err)
	}

	removed, err := store.Delete(ctx, settings.KeySourceRoot)
	if err != nil || !removed {
		t.Fatalf("Delete = %v %v", removed, err)
	}
	removed, err = store.Delete(ctx, settings.KeySourceRoot)
	if err != nil || removed {
		t.Fatalf("second Delete = %v %v", removed, err)
	}
	if err := store.Set(ctx, "  ", "x"); err == nil {
		t.Fatal("empty key must be rejected")
	}
}

func TestAllOrderedAndPersistent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")
	store := openStore(t, path)
	for _, kv := range [][2]string{{settings.KeySourceRoot, "/a"}, {settings.KeyLastFile, "/a/assets.json"}} {
		if err := store.Set(ctx, kv[0], kv[1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openStore(t, path)
	entries, err := reopened.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Key != settings.KeyLastFile || entries[1].Key != settings.KeySourceRoot {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].UpdatedAt.IsZero() {
		t.Fatal("updated_at should be parsed")
	}
}

func TestConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")
	a := openStore(t, path)
	b := openStore(t, path)

	errs := make(chan error, 40)
	for i := range 20 {
		go func() { errs <- a.Set(ctx, fmt.Sprintf("a%d", i), "x") }()
		go func() { errs <- b.Set(ctx, fmt.Sprintf("b%d", i), "y") }()
	}
	for range 40 {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent Set: %v", err)
		}
	}
	entries, err := a.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 40 {
		t.Fatalf("expected 40 entries, got %d", len(entries))
	}
}

func TestConcurrentSetOnOneStore(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "settings.db"))

	errs := make(chan error, 40)
	for i := range 40 {
		go func() { errs <- store.Set(ctx, fmt.Sprintf("k%d", i), "v") }()
	}
	for range 40 {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent Set: %v", err)
		}
	}
	entries, err := store.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 40 {
		t.Fatalf("expected 40 entries, got %d", len(entries))
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	store := openStore(t, path)
	if err := store.Set(context.Background(), "k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := settings.ForceSchemaVersion(store, 99); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := settings.Open(path); !errors.Is(err, settings.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
