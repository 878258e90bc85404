package handlers

import (
	"context"

	"github.com/Nitsh-kumar/Data-Nexa/pkg/models"
	"github.com/Nitsh-kumar/Data-Nexa/pkg/services"
)

// mockInsightService is a configurable InsightService for handler tests.
type mockInsightService struct {
	result   *services.InsightResult
	err      error
	tokens   models.TokenStats
	cache    models.CacheStats
	cacheErr error
	cleared  int

	lastRequest    *services.InsightRequest
	invalidatedKey string
}

func (m *mockInsightService) GenerateInsights(_ context.Context, req *services.InsightRequest) (*services.InsightResult, error) {
	m.lastRequest = req
	return m.result, m.err
}

func (m *mockInsightService) TokenStats() models.TokenStats {
	return m.tokens
}

func (m *mockInsightService) CacheStats(context.Context) (models.CacheStats, error) {
	return m.cache, m.cacheErr
}

func (m *mockInsightService) InvalidateCache(_ context.Context, key string) error {
	m.invalidatedKey = key
	return m.cacheErr
}

func (m *mockInsightService) ClearCache(context.Context) (int, error) {
	return m.cleared, m.cacheErr
}

var _ services.InsightService = (*mockInsightService)(nil)
