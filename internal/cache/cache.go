// Package cache provides a small in-process LRU cache with per-entry expiry.
package cache

// Cache is the lookup surface consumers depend on.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Len() int
}
