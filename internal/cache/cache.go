package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores downloaded dataset bodies by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a cache key from a dataset URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "polarity-v1-" + hex.EncodeToString(hash[:])
}
