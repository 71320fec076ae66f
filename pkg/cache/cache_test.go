package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestFileCache_RoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v, want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("logo bytes")); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v, want hit", hit, err)
	}
	if string(data) != "logo bytes" {
		t.Errorf("Get(k) = %q, want stored bytes", data)
	}
}

func TestFileCache_Expiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), WithTTL(time.Minute))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("x")); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Backdate the entry past the freshness window.
	fc := c.(*FileCache)
	stale := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(fc.path("k"), stale, stale); err != nil {
		t.Fatalf("Chtimes error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("stale entry still hit")
	}
	if _, err := os.Stat(fc.path("k")); !os.IsNotExist(err) {
		t.Error("stale entry not removed from disk")
	}
}

func TestFileCache_ZeroTTLNeverExpires(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), WithTTL(0))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("x")); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	fc := c.(*FileCache)
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(fc.path("k"), old, old); err != nil {
		t.Fatalf("Chtimes error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Error("entry expired with expiry disabled")
	}
}

func TestFileCache_Delete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("x")); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry still hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestSourceKey_Stable(t *testing.T) {
	a := SourceKey("https://cdn.example.com/logo.png")
	b := SourceKey("https://cdn.example.com/logo.png")
	if a != b {
		t.Error("SourceKey not stable for identical URLs")
	}
	if a == SourceKey("https://cdn.example.com/other.png") {
		t.Error("SourceKey collides for different URLs")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("x")); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("null cache reported a hit")
	}
}
