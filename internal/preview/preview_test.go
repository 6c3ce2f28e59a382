package preview

import (
	"errors"
	"image"
	"testing"
)

func TestGetMemoizes(t *testing.T) {
	c := New(4)
	calls := 0
	load := func() (*image.NRGBA, error) {
		calls++
		return image.NewNRGBA(image.Rect(0, 0, 4, 4)), nil
	}
	key := Key{SourceID: "stone", Size: 64}
	first, err := c.Get(key, load)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Get(key, load)
	if err != nil {
		t.Fatal(err)
	}
	if first != second || calls != 1 {
		t.Fatalf("expected one load and the same image, calls=%d", calls)
	}
	if _, err := c.Get(Key{SourceID: "stone", Size: 32}, load); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("different size must load again, calls=%d", calls)
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 2 {
		t.Fatalf("stats = %d/%d", hits, misses)
	}
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	c := New(2)
	boom := errors.New("decode failed")
	if _, err := c.Get(Key{"x", 32}, func() (*image.NRGBA, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if c.Len() != 0 {
		t.Fatal("failed load must not be cached")
	}
}

func TestEvictionForgetAndPurge(t *testing.T) {
	c := New(2)
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	load := func() (*image.NRGBA, error) { return img, nil }
	for _, k := range []Key{{"a", 32}, {"a", 64}, {"b", 32}} {
		if _, err := c.Get(k, load); err != nil {
			t.Fatal(err)
		}
	}
	if c.Len() != 2 || c.Peek(Key{"a", 32}) {
		t.Fatal("least recently used entry should be evicted")
	}
	if n := c.Forget("a"); n != 1 {
		t.Fatalf("Forget removed %d", n)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatal("Purge must empty the cache")
	}
	if New(0).entries == nil {
		t.Fatal("non-positive size falls back to default")
	}
}
