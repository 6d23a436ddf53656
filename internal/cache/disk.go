package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists bodies as raw files next to a small JSON expiry record
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a new disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

type entryMeta struct {
	Size      int       `json:"size"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value, dropping it if expired or truncated
func (c *DiskCache) Get(key string) ([]byte, bool) {
	raw, err := os.ReadFile(c.metaPath(key))
	if err != nil {
		return nil, false
	}

	var meta entryMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		_ = c.Delete(key)
		return nil, false
	}

	if time.Now().After(meta.ExpiresAt) {
		_ = c.Delete(key)
		return nil, false
	}

	data, err := os.ReadFile(c.dataPath(key))
	if err != nil || len(data) != meta.Size {
		_ = c.Delete(key)
		return nil, false
	}

	return data, true
}

// Set stores a value; the data file is renamed into place before its metadata is written
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close cache data: %w", err)
	}
	if err := os.Rename(tmpName, c.dataPath(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename cache data: %w", err)
	}

	now := time.Now()
	meta, err := json.Marshal(entryMeta{
		Size:      len(value),
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("marshal cache meta: %w", err)
	}
	if err := os.WriteFile(c.metaPath(key), meta, 0644); err != nil {
		return fmt.Errorf("write cache meta: %w", err)
	}

	return nil
}

// Delete removes a value; a missing entry is not an error
func (c *DiskCache) Delete(key string) error {
	var errs []error
	for _, path := range []string{c.metaPath(key), c.dataPath(key)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear removes the whole cache directory
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) dataPath(key string) string {
	return filepath.Join(c.dir, key+".data")
}

func (c *DiskCache) metaPath(key string) string {
	return filepath.Join(c.dir, key+".meta.json")
}
