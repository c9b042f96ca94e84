package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func withTestClient(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	orig := client
	SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		client.Close()
		client = orig
	})
	return mr
}

func TestInitWithBadURL(t *testing.T) {
	require.Error(t, Init("not-a-url", ""))
}

func TestInitWithUnreachableServer(t *testing.T) {
	require.Error(t, Init("redis://127.0.0.1:0", ""))
}

func TestInitAndPing(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, Init("redis://"+mr.Addr(), ""))
	require.NotNil(t, GetClient())
}

func TestSetGetDel(t *testing.T) {
	withTestClient(t)
	ctx := context.Background()

	require.NoError(t, Set(ctx, "k", "v", time.Minute))

	val, err := Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", val)

	require.NoError(t, Del(ctx, "k"))

	_, err = Get(ctx, "k")
	require.ErrorIs(t, err, goredis.Nil)
}

func TestSetNXOnlyFirstWins(t *testing.T) {
	withTestClient(t)
	ctx := context.Background()

	ok, err := SetNX(ctx, "lock", "a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = SetNX(ctx, "lock", "b", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	val, err := Get(ctx, "lock")
	require.NoError(t, err)
	require.Equal(t, "a", val)
}
