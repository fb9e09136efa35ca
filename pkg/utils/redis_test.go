package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSlotScriptsLoaded(t *testing.T) {
	require.NotNil(t, slotAcquireScript)
	require.NotNil(t, slotReleaseScript)
}

func TestRedisConfig_Defaults(t *testing.T) {
	c := RedisConfig{Addr: "localhost:6379", MinIdleConns: -1}.withDefaults()
	require.Equal(t, 10, c.PoolSize)
	require.Equal(t, 0, c.MinIdleConns)
	require.Equal(t, 2*time.Second, c.PingTimeout)
}

func TestOpenRedis_RequiresAddr(t *testing.T) {
	_, err := OpenRedis(context.Background(), RedisConfig{})
	require.ErrorContains(t, err, "addr is required")
}

func TestAcquireSlot_ValidatesArgs(t *testing.T) {
	ctx := context.Background()
	_, err := AcquireSlot(ctx, nil, "k", 1, time.Second)
	require.Error(t, err)
	require.Error(t, ReleaseSlot(ctx, nil, "k"))
}
