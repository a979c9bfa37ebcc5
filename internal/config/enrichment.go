package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

type EnrichmentConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	// MinRequestInterval paces outbound lookups; the provider tolerates
	// little concurrency.
	MinRequestInterval time.Duration
}

var (
	enrichmentConfig *EnrichmentConfig
	enrichmentOnce   sync.Once
)

func LoadEnrichmentConfig() *EnrichmentConfig {
	enrichmentOnce.Do(func() {
		timeout := 30 * time.Second
		if v := os.Getenv("ENRICHMENT_TIMEOUT_SECONDS"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				timeout = time.Duration(secs) * time.Second
			}
		}
		interval := 2 * time.Second
		if v := os.Getenv("ENRICHMENT_MIN_INTERVAL_MS"); v != "" {
			if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
				interval = time.Duration(ms) * time.Millisecond
			}
		}
		enrichmentConfig = &EnrichmentConfig{
			BaseURL:            os.Getenv("ENRICHMENT_BASE_URL"),
			APIKey:             os.Getenv("ENRICHMENT_API_KEY"),
			RequestTimeout:     timeout,
			MinRequestInterval: interval,
		}
	})
	return enrichmentConfig
}
