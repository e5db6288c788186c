package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreClaim(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour, 10)

	ok, err := s.Claim(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, ok, "first claim should succeed")

	ok, err = s.Claim(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, ok, "duplicate claim should be rejected")

	ok, err = s.Claim(ctx, "evt_2")
	require.NoError(t, err)
	assert.True(t, ok, "distinct key should claim independently")
}

func TestMemoryStoreRelease(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour, 10)

	ok, _ := s.Claim(ctx, "evt_1")
	require.True(t, ok)
	require.NoError(t, s.Release(ctx, "evt_1"))

	ok, err := s.Claim(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, ok, "released key should be claimable again")
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 10)

	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	ok, _ := s.Claim(ctx, "evt_1")
	require.True(t, ok)

	current = current.Add(2 * time.Minute)
	ok, err := s.Claim(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, ok, "expired claim should not block")
}

func TestMemoryStoreBounded(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour, 2)

	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	ok, _ := s.Claim(ctx, "evt_1")
	require.True(t, ok)
	current = current.Add(time.Second)
	ok, _ = s.Claim(ctx, "evt_2")
	require.True(t, ok)
	current = current.Add(time.Second)

	// Third claim evicts the oldest entry.
	ok, _ = s.Claim(ctx, "evt_3")
	require.True(t, ok)

	ok, err := s.Claim(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, ok, "evicted key is claimable again")
}
