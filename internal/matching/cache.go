// Package matching provides caching of availability analyses.
package matching

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/cache"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/observability"
)

// AnalysisCache caches availability analyses keyed by requirement and catalog
// snapshot version. A sync bumps the version, so stale entries simply stop
// being addressed and age out by TTL.
type AnalysisCache struct {
	client cache.Client
	logger *observability.Logger
	config AnalysisCacheConfig
}

// AnalysisCacheConfig configures the analysis cache.
type AnalysisCacheConfig struct {
	// TTL is the cache entry lifetime.
	TTL time.Duration
	// KeyPrefix is the cache key prefix.
	KeyPrefix string
	// Enabled controls whether caching is active.
	Enabled bool
}

// DefaultAnalysisCacheConfig returns default cache configuration.
func DefaultAnalysisCacheConfig() AnalysisCacheConfig {
	return AnalysisCacheConfig{
		TTL:       5 * time.Minute,
		KeyPrefix: "availability:",
		Enabled:   true,
	}
}

// NewAnalysisCache creates an analysis cache over the given client.
func NewAnalysisCache(client cache.Client, logger *observability.Logger, config AnalysisCacheConfig) *AnalysisCache {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "availability:"
	}
	if config.TTL == 0 {
		config.TTL = 5 * time.Minute
	}
	return &AnalysisCache{
		client: client,
		logger: logger,
		config: config,
	}
}

// Key generates a deterministic cache key for a requirement against a
// snapshot version.
func (c *AnalysisCache) Key(required RequiredComponent, snapshotVersion uint64) string {
	parts := []string{
		required.Name,
		required.Manufacturer,
		strconv.Itoa(required.Quantity),
		required.RequiredDate.UTC().Format(time.RFC3339),
	}

	specKeys := make([]string, 0, len(required.Specifications))
	for key := range required.Specifications {
		specKeys = append(specKeys, key)
	}
	sort.Strings(specKeys)
	for _, key := range specKeys {
		val := required.Specifications[key]
		if val.Kind == SpecValueKindNumber {
			parts = append(parts, fmt.Sprintf("%s=%g", key, val.Number))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, val.Text))
		}
	}

	combined := ""
	for _, p := range parts {
		combined += p + "|"
	}
	hash := sha256.Sum256([]byte(combined))
	hashStr := hex.EncodeToString(hash[:16])

	return c.config.KeyPrefix + cache.SnapshotCacheKey(strconv.FormatUint(snapshotVersion, 10), hashStr)
}

// Get retrieves a cached analysis if available.
func (c *AnalysisCache) Get(ctx context.Context, required RequiredComponent, snapshotVersion uint64) (*AvailabilityAnalysis, bool) {
	if !c.config.Enabled || c.client == nil {
		return nil, false
	}

	key := c.Key(required, snapshotVersion)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			c.logger.Debug().Err(err).Str("key", key).Msg("Cache get error")
		}
		return nil, false
	}

	var analysis AvailabilityAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached analysis")
		return nil, false
	}

	c.logger.Debug().Str("key", key).Msg("Cache hit")
	return &analysis, true
}

// Set caches an availability analysis.
func (c *AnalysisCache) Set(ctx context.Context, required RequiredComponent, snapshotVersion uint64, analysis *AvailabilityAnalysis) error {
	if !c.config.Enabled || c.client == nil {
		return nil
	}

	key := c.Key(required, snapshotVersion)
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.config.TTL); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache analysis")
		return err
	}

	return nil
}

// Invalidate drops every cached analysis. Used when lookup tables change out
// of band; catalog syncs invalidate implicitly through the version key.
func (c *AnalysisCache) Invalidate(ctx context.Context) error {
	if !c.config.Enabled || c.client == nil {
		return nil
	}
	return c.client.DeleteByPrefix(ctx, c.config.KeyPrefix)
}
