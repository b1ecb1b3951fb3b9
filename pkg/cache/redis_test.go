package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/pkg/config"
)

func TestNewRedisDisabledReturnsNil(t *testing.T) {
	client, err := NewRedis(config.RedisConfig{Enabled: false, Host: "unreachable", Port: 1})
	require.NoError(t, err)
	assert.Nil(t, client)
}
