package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	var c Noop
	c.Set(context.Background(), "k", []byte("v"), time.Minute)

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)

	m.Set(ctx, "k", []byte("payload"), time.Minute)
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Set(ctx, "k", []byte("v"), time.Minute)

	now = now.Add(59 * time.Second)
	_, ok := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)

	// expired entries are swept on the next write
	m.Set(ctx, "other", []byte("v"), time.Minute)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_ZeroTTLNotStored(t *testing.T) {
	m := NewMemory()
	m.Set(context.Background(), "k", []byte("v"), 0)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_StoresCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")

	m.Set(ctx, "k", buf, time.Minute)
	buf[0] = 'x'

	got, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), got)
}

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, RedisConfig{Addr: "127.0.0.1:1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}
