package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "arsip-desa:", nil)
	ctx := context.Background()

	var out map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "dashboard:summary", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "dashboard:summary", map[string]int{"total": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "dashboard:*"))
}

func TestCacheRepositoryUnreachableRedisIsAnError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewCacheRepository(client, "arsip-desa:", nil)

	var out map[string]int
	err := repo.Get(context.Background(), "dashboard:summary", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "redis get dashboard:summary")
}

func TestCacheRepositoryPrefixesKeys(t *testing.T) {
	repo := NewCacheRepository(nil, "arsip-desa:", nil)
	assert.Equal(t, "arsip-desa:dashboard:summary", repo.key("dashboard:summary"))
	assert.Equal(t, "dashboard:summary", NewCacheRepository(nil, "", nil).key("dashboard:summary"))
}
