package cache

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	t.Run("setGet", func(t *testing.T) {
		if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		data, hit, err := c.Get(ctx, "key")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if !hit {
			t.Fatal("expected hit")
		}
		if !bytes.Equal(data, []byte("value")) {
			t.Errorf("got %q, want %q", data, "value")
		}
	})

	t.Run("miss", func(t *testing.T) {
		_, hit, err := c.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if hit {
			t.Error("expected miss")
		}
	})

	t.Run("expiration", func(t *testing.T) {
		if err := c.Set(ctx, "ttl", []byte("v"), time.Millisecond); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
		_, hit, err := c.Get(ctx, "ttl")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if hit {
			t.Error("expired entry returned as hit")
		}
	})

	t.Run("noExpiry", func(t *testing.T) {
		if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		_, hit, err := c.Get(ctx, "forever")
		if err != nil || !hit {
			t.Errorf("Get = %v, %v; want hit", hit, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := c.Set(ctx, "gone", []byte("v"), time.Hour); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "gone"); hit {
			t.Error("deleted entry returned as hit")
		}
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Errorf("Delete of missing key = %v, want nil", err)
		}
	})
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	httpKey := k.HTTPKey("scrape", "countries")
	if httpKey != "http:scrape:countries" {
		t.Errorf("HTTPKey unexpected: %s", httpKey)
	}

	// DatasetKey should include options in hash
	dk1 := k.DatasetKey("stockanalysis", DatasetKeyOpts{Limit: 60})
	dk2 := k.DatasetKey("stockanalysis", DatasetKeyOpts{Limit: 20})
	if dk1 == dk2 {
		t.Error("Different DatasetKeyOpts should produce different keys")
	}

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Algorithm: "slice", Width: 1200, Height: 800})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Algorithm: "greedy", Width: 1200, Height: 800})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "html"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}

	// Stage prefixes keep key spaces apart even for equal hashes
	if !strings.HasPrefix(dk1, "dataset:") || !strings.HasPrefix(lk1, "layout:") || !strings.HasPrefix(ak1, "artifact:") {
		t.Error("stage keys must carry their stage prefix")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "repo:ayeeff/marketcap:")

	httpKey := scoped.HTTPKey("scrape", "countries")
	if httpKey != "repo:ayeeff/marketcap:http:scrape:countries" {
		t.Errorf("HTTPKey unexpected: %s", httpKey)
	}

	dk := scoped.DatasetKey("stockanalysis", DatasetKeyOpts{Limit: 60})
	if !strings.HasPrefix(dk, "repo:ayeeff/marketcap:dataset:") {
		t.Errorf("DatasetKey not prefixed: %s", dk)
	}

	lk := scoped.LayoutKey("h", LayoutKeyOpts{})
	if !strings.HasPrefix(lk, "repo:ayeeff/marketcap:layout:") {
		t.Errorf("LayoutKey not prefixed: %s", lk)
	}

	ak := scoped.ArtifactKey("h", ArtifactKeyOpts{})
	if !strings.HasPrefix(ak, "repo:ayeeff/marketcap:artifact:") {
		t.Errorf("ArtifactKey not prefixed: %s", ak)
	}

	// nil inner falls back to the default keyer
	fallback := NewScopedKeyer(nil, "p:")
	if fallback.HTTPKey("a", "b") != "p:http:a:b" {
		t.Error("nil inner should use DefaultKeyer")
	}
}
