package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestClient(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewClientFrom(rdb)
}

// TestGenerateSeqID increments per conversation, independently across
// conversations.
func TestGenerateSeqID(t *testing.T) {
	_, client := setupTestClient(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		seq, err := client.GenerateSeqID(ctx, "a:b")
		require.NoError(t, err)
		assert.Equal(t, want, seq)
	}

	seq, err := client.GenerateSeqID(ctx, "a:c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq, "other conversations start fresh")
}

// TestMemberPresence sets, checks and clears the online flag, including
// TTL expiry.
func TestMemberPresence(t *testing.T) {
	mr, client := setupTestClient(t)
	ctx := context.Background()

	online, err := client.IsMemberOnline(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, client.SetMemberOnline(ctx, "m1", time.Minute))
	online, err = client.IsMemberOnline(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, online)

	require.NoError(t, client.RemoveMemberOnline(ctx, "m1"))
	online, err = client.IsMemberOnline(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, online)

	// The flag lapses on its own once the TTL passes.
	require.NoError(t, client.SetMemberOnline(ctx, "m2", time.Minute))
	mr.FastForward(2 * time.Minute)
	online, err = client.IsMemberOnline(ctx, "m2")
	require.NoError(t, err)
	assert.False(t, online)
}

// TestCacheOperations exercises the generic Set/Get/Del/Exists surface the
// repositories use for cache-aside.
func TestCacheOperations(t *testing.T) {
	_, client := setupTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k1", "v1", time.Minute))

	val, err := client.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)

	count, err := client.Exists(ctx, "k1", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, client.Del(ctx, "k1"))
	_, err = client.Get(ctx, "k1")
	assert.ErrorIs(t, err, redis.Nil)
}
