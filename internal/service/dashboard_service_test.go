package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/models"
)

type countStub struct {
	n   int
	err error
}

func (c countStub) Count(context.Context) (int, error) { return c.n, c.err }

type archiveCounterStub struct {
	total      int
	categories []models.CategoryCount
	err        error
}

func (a archiveCounterStub) Count(context.Context) (int, error) { return a.total, nil }

func (a archiveCounterStub) CountByCategory(context.Context) ([]models.CategoryCount, error) {
	return a.categories, a.err
}

type memoryCache struct {
	values map[string][]byte
	sets   int
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) bool {
	raw, ok := m.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) {
	raw, _ := json.Marshal(value)
	m.values[key] = raw
	m.sets++
}

func TestDashboardStatsAggregatesAndCaches(t *testing.T) {
	cache := &memoryCache{values: map[string][]byte{}}
	archives := archiveCounterStub{total: 3, categories: []models.CategoryCount{{Category: "Surat Masuk", Count: 2}, {Category: "uncategorized", Count: 1}}}
	svc := NewDashboardService(archives, countStub{n: 4}, countStub{n: 5}, cache, time.Minute, nil)

	stats, hit, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, stats.TotalArchives)
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 5, stats.TotalDocumentTypes)
	assert.Equal(t, archives.categories, stats.ByCategory)

	again, hit, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, stats, again)
	assert.Equal(t, 1, cache.sets)
}

func TestDashboardStatsPropagatesErrors(t *testing.T) {
	svc := NewDashboardService(archiveCounterStub{err: errBoom}, countStub{}, countStub{}, nil, 0, nil)
	_, _, err := svc.Stats(context.Background())
	require.Error(t, err)
}

func TestDashboardStatsEmptyCategories(t *testing.T) {
	svc := NewDashboardService(archiveCounterStub{}, countStub{}, countStub{}, nil, 0, nil)
	stats, _, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stats.ByCategory)
	assert.Empty(t, stats.ByCategory)
}
