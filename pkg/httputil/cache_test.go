package httputil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)

	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"simple", "countries", map[string]string{"United States": "$68.89 T"}},
		{"string", "page", "<table></table>"},
		{"nested", "meta", map[string]any{"scrape": map[string]int{"rows": 60}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}

			var result any
			switch tt.value.(type) {
			case map[string]string:
				result = &map[string]string{}
			case string:
				result = new(string)
			case map[string]any:
				result = &map[string]any{}
			}

			ok, err := c.Get(tt.key, result)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if !ok {
				t.Fatal("Get() returned false for existing key")
			}
		})
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	var result string
	ok, err := c.Get("missing", &result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("Get() returned true for missing key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c, _ := NewCache(t.TempDir(), 10*time.Millisecond)

	if err := c.Set("key", "value"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	var res string
	ok, err := c.Get("key", &res)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want true, nil", ok, err)
	}

	time.Sleep(20 * time.Millisecond)

	ok, err = c.Get("key", &res)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("got error %v, want ErrExpired", err)
	}
	if ok {
		t.Error("Get() returned true for expired key")
	}
}

func TestCache_Delete(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	if err := c.Set("key", "value"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := c.Delete("key"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	var res string
	if ok, _ := c.Get("key", &res); ok {
		t.Error("Get() returned true after Delete")
	}
	if err := c.Delete("key"); err != nil {
		t.Errorf("Delete() of missing key = %v, want nil", err)
	}
}

func TestCache_Clear(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	scrape := c.Namespace("scrape:")
	github := c.Namespace("github:")
	_ = scrape.Set("a", "1")
	_ = github.Set("b", "2")

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	var res string
	if ok, _ := scrape.Get("a", &res); ok {
		t.Error("scrape entry survived Clear")
	}
	if ok, _ := github.Get("b", &res); ok {
		t.Error("github entry survived Clear")
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("Clear removed the directory: %v", err)
	}
}

func TestCache_KeyStability(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	p1 := c.keyPath("test")
	p2 := c.keyPath("test")
	if p1 != p2 {
		t.Error("path should be deterministic")
	}
	p3 := c.keyPath("other")
	if p1 == p3 {
		t.Error("different keys should produce different paths")
	}
}

func TestNewCache_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	c, err := NewCache("", time.Hour)
	if err != nil {
		t.Fatalf("NewCache() failed: %v", err)
	}

	want := filepath.Join(home, ".cache", "marketmap")
	if c.Dir() != want {
		t.Errorf("got Dir = %s, want %s", c.Dir(), want)
	}
	if c.TTL() != time.Hour {
		t.Errorf("got TTL = %v, want 1h", c.TTL())
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestCache_Namespace(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)

	t.Run("isolation", func(t *testing.T) {
		scrape := c.Namespace("scrape:")
		github := c.Namespace("github:")

		if err := scrape.Set("index", "scrape-data"); err != nil {
			t.Fatalf("scrape.Set() failed: %v", err)
		}
		if err := github.Set("index", "github-data"); err != nil {
			t.Fatalf("github.Set() failed: %v", err)
		}

		var scrapeVal, githubVal string
		ok, err := scrape.Get("index", &scrapeVal)
		if !ok || err != nil {
			t.Fatalf("scrape.Get() = %v, %v; want true, nil", ok, err)
		}
		ok, err = github.Get("index", &githubVal)
		if !ok || err != nil {
			t.Fatalf("github.Get() = %v, %v; want true, nil", ok, err)
		}

		if scrapeVal != "scrape-data" || githubVal != "github-data" {
			t.Errorf("namespace isolation violated: %q / %q", scrapeVal, githubVal)
		}
	})

	t.Run("chained", func(t *testing.T) {
		scrape := c.Namespace("scrape:")
		country := scrape.Namespace("country:")

		if err := country.Set("japan", "value"); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}

		var result string
		ok, err := country.Get("japan", &result)
		if !ok || err != nil || result != "value" {
			t.Errorf("Get() = %v, %v, %q; want true, nil, %q", ok, err, result, "value")
		}

		if found, _ := scrape.Get("japan", &result); found {
			t.Error("value accessible without full namespace chain")
		}
	})

	t.Run("emptyPrefix", func(t *testing.T) {
		ns := c.Namespace("")
		if err := ns.Set("key", "value"); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}

		var result string
		ok, err := c.Get("key", &result)
		if !ok || err != nil || result != "value" {
			t.Error("empty namespace should behave like parent")
		}
	})

	t.Run("preservesDirAndTTL", func(t *testing.T) {
		ns := c.Namespace("test:")
		if ns.Dir() != c.Dir() {
			t.Errorf("Dir() = %s, want %s", ns.Dir(), c.Dir())
		}
		if ns.TTL() != c.TTL() {
			t.Errorf("TTL() = %v, want %v", ns.TTL(), c.TTL())
		}
	})
}
