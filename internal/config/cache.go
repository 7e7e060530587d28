package config

import (
    "strings"
    "time"
)

// CacheConfig drives the Redis response cache on /v1.  A nil Redis client
// disables it regardless of Enabled.  After any successful write the whole
// Prefix namespace is dropped when InvalidateOnWrite is set, so instrument
// availability and payment status never come back stale.
type CacheConfig struct {
    Enabled           bool
    Methods           map[string]bool
    TTL               time.Duration
    KeyStrategy       string
    Prefix            string
    MaxBodyBytes      int
    InvalidateOnWrite bool
}

// LoadCacheConfig reads CACHE_*.  CACHE_METHODS is a comma list.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:           envBool("CACHE_ENABLED", true),
        Methods:           parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:               envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:       envStr("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:            envStr("CACHE_PREFIX", "school:cache"),
        MaxBodyBytes:      envInt("CACHE_MAX_BODY_BYTES", 1<<20),
        InvalidateOnWrite: envBool("CACHE_INVALIDATE_ON_WRITE", true),
    }
}

func parseMethods(s string) map[string]bool {
    set := make(map[string]bool)
    for _, method := range strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool { return r == ',' || r == ' ' }) {
        set[method] = true
    }
    return set
}
