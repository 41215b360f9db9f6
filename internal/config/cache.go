package config

import (
	"os"
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware that
// fronts the public read routes (front page, permalinks). When Enabled is
// false or no Redis client is configured, caching is disabled. Methods
// lists the HTTP methods to cache. TTL bounds how stale a cached page may
// be after a post, comment or like changes it.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
	return CacheConfigFromEnv(os.LookupEnv)
}

// CacheConfigFromEnv is LoadCacheConfig with an explicit lookup. Malformed
// values fall back to their defaults.
func CacheConfigFromEnv(lookup func(string) (string, bool)) CacheConfig {
	e := env{lookup: lookup}
	return CacheConfig{
		Enabled:      e.boolVal("CACHE_ENABLED", true),
		Methods:      parseMethods(e.str("CACHE_METHODS", "GET")),
		TTL:          e.durVal("CACHE_TTL", 5*time.Second),
		KeyStrategy:  e.str("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       e.str("CACHE_PREFIX", "blog:cache"),
		MaxBodyBytes: e.intVal("CACHE_MAX_BODY_BYTES", 1048576),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
