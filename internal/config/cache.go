package config

import "time"

// CacheConfig controls the Redis response cache middleware applied to the
// admin list endpoints. When Enabled is false or no Redis client is
// available, caching is disabled entirely.
type CacheConfig struct {
	Enabled      bool          // master switch
	TTL          time.Duration // lifetime of cached responses
	Prefix       string        // key namespace
	MaxBodyBytes int           // responses larger than this are not cached
}

// LoadCacheConfig reads cache settings from the environment, falling back
// to defaults suited for small admin listings.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
