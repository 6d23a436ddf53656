package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://example.com/reviews.csv")
	b := CacheKey("https://example.com/reviews.csv")
	c := CacheKey("https://example.com/other.csv")

	if a != b {
		t.Error("Expected identical keys for identical URLs")
	}
	if a == c {
		t.Error("Expected different keys for different URLs")
	}
	if !strings.HasPrefix(a, "polarity-v1-") {
		t.Errorf("Expected versioned prefix, got %s", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute, 8)

	if err := c.Set("small", []byte("data"), 0); err != nil {
		t.Fatal(err)
	}
	if val, ok := c.Get("small"); !ok || string(val) != "data" {
		t.Errorf("Expected hit with data, got %q, %v", val, ok)
	}

	if err := c.Set("big", []byte("far too large"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("big"); ok {
		t.Error("Expected oversized item to be skipped")
	}

	_ = c.Delete("small")
	if _, ok := c.Get("small"); ok {
		t.Error("Expected miss after delete")
	}

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after clear, got %d items", c.Len())
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)

	body := []byte("Rating,Reviews\n5,great\n")
	if err := c.Set("k", body, 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	val, ok := c.Get("k")
	if !ok || string(val) != string(body) {
		t.Errorf("Expected stored body, got %q, %v", val, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Delete("k"); err != nil {
		t.Errorf("Expected no error on delete, got %v", err)
	}
	if err := c.Delete("k"); err != nil {
		t.Errorf("Expected deleting a missing entry to succeed, got %v", err)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("old"); ok {
		t.Error("Expected expired entry to miss")
	}
	if _, err := os.Stat(filepath.Join(dir, "old.data")); !os.IsNotExist(err) {
		t.Error("Expected expired data file to be removed")
	}
}

func TestDiskCache_Truncated(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", []byte("complete body"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "k.data"), []byte("compl"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("k"); ok {
		t.Error("Expected truncated entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	if err := c.Set("k", []byte("body"), 0); err != nil {
		t.Fatal(err)
	}

	// Fresh layered cache over the same directory: memory is cold
	cold := NewLayeredCache(time.Minute, dir, time.Hour)
	val, ok := cold.Get("k")
	if !ok || string(val) != "body" {
		t.Fatalf("Expected disk hit, got %q, %v", val, ok)
	}
	if v, ok := cold.memory.Get("k"); !ok || string(v) != "body" {
		t.Error("Expected disk hit to be promoted to memory")
	}

	if err := cold.Clear(); err != nil {
		t.Errorf("Expected no error on clear, got %v", err)
	}
	if _, ok := cold.Get("k"); ok {
		t.Error("Expected miss after clear")
	}
}
