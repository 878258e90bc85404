package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/apperrors"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/logging"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
)

// DefaultPrefix namespaces insight entries in a shared store.
const DefaultPrefix = "ai_insights:"

// DefaultTTL is how long cached insights live when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Manager reads and writes insight lists. Store failures are logged and
// reported alongside a miss or a skipped write so callers can count them;
// they never need to abort a request.
type Manager struct {
	store  Store
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager creates a Manager. Empty prefix and zero ttl use the defaults.
func NewManager(store Store, prefix string, ttl time.Duration, logger *zap.Logger) *Manager {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  store,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.Named("cache"),
	}
}

// Key fingerprints a dataset: the hex MD5 of
// "{analysisID}_{rowCount}_{columnCount}_{qualityScore}". The score is
// always written as a float ("55.0", "72.5") so keys match entries written
// by other services sharing the store.
func Key(analysisID string, profile *models.ProfileResult) string {
	data := fmt.Sprintf("%s_%d_%d_%s",
		analysisID,
		profile.RowCount,
		profile.ColumnCount,
		scoreString(profile.QualityScore))
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

// scoreString renders v in shortest form, keeping ".0" on whole numbers.
func scoreString(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !math.IsInf(v, 0) && !math.IsNaN(v) && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// StoreKey returns the full store key for a fingerprint.
func (m *Manager) StoreKey(key string) string {
	return m.prefix + key
}

// Get returns the cached insights for key. ok is false on a miss, on a
// store failure, and when the entry cannot be decoded; err is set only in
// the last two cases.
func (m *Manager) Get(ctx context.Context, key string) (insights []models.CategorizedInsight, ok bool, err error) {
	raw, err := m.store.Get(ctx, m.StoreKey(key))
	if errors.Is(err, apperrors.ErrCacheMiss) {
		m.logger.Debug("Cache miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		m.logger.Error("Cache get failed",
			zap.String("key", key),
			zap.String("error", logging.SanitizeError(err)))
		return nil, false, err
	}

	if err := json.Unmarshal(raw, &insights); err != nil {
		m.logger.Error("Cached insights are corrupt",
			zap.String("key", key),
			zap.Error(err))
		return nil, false, err
	}

	m.logger.Debug("Cache hit", zap.String("key", key), zap.Int("insights", len(insights)))
	return insights, true, nil
}

// Set caches insights under key with the configured TTL. The returned error
// is informational; callers may ignore it.
func (m *Manager) Set(ctx context.Context, key string, insights []models.CategorizedInsight) error {
	raw, err := json.Marshal(insights)
	if err != nil {
		m.logger.Error("Failed to encode insights for cache", zap.String("key", key), zap.Error(err))
		return err
	}
	if err := m.store.Set(ctx, m.StoreKey(key), raw, m.ttl); err != nil {
		m.logger.Error("Cache set failed",
			zap.String("key", key),
			zap.String("error", logging.SanitizeError(err)))
		return err
	}

	m.logger.Info("Cached insights",
		zap.String("key", key),
		zap.Int("insights", len(insights)),
		zap.Duration("ttl", m.ttl))
	return nil
}

// Delete removes one cached entry.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.store.Delete(ctx, m.StoreKey(key)); err != nil {
		m.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return err
	}
	m.logger.Info("Deleted cached insights", zap.String("key", key))
	return nil
}

// ClearAll removes every entry under the prefix and returns how many were
// removed.
func (m *Manager) ClearAll(ctx context.Context) (int, error) {
	keys, err := m.store.Keys(ctx, m.prefix)
	if err != nil {
		m.logger.Error("Cache clear failed", zap.Error(err))
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := m.store.Delete(ctx, keys...); err != nil {
		m.logger.Error("Cache clear failed", zap.Int("keys", len(keys)), zap.Error(err))
		return 0, err
	}
	m.logger.Info("Cleared cached insights", zap.Int("keys", len(keys)))
	return len(keys), nil
}

// Stats reports the number of cached entries and the store hit rate.
func (m *Manager) Stats(ctx context.Context) (models.CacheStats, error) {
	keys, err := m.store.Keys(ctx, m.prefix)
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("count cached insights: %w", err)
	}
	hits, misses, err := m.store.HitStats(ctx)
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("read hit stats: %w", err)
	}
	return models.CacheStats{
		CachedInsightsCount: len(keys),
		Hits:                hits,
		Misses:              misses,
		HitRate:             HitRate(hits, misses),
	}, nil
}

// Close releases the store.
func (m *Manager) Close() error {
	if err := m.store.Close(); err != nil {
		m.logger.Error("Error closing cache store", zap.Error(err))
		return err
	}
	return nil
}

// HitRate returns hits as a percentage of lookups, rounded to 2 decimals.
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*100*100) / 100
}
