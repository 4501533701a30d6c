package redisstream

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func startMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)
	return mr
}

func TestEnsureGroupAtTailIsIdempotent(t *testing.T) {
	mr := startMiniRedis(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	require.NoError(t, EnsureGroupAtTail(ctx, client, "transcript", "readers"))
	require.NoError(t, EnsureGroupAtTail(ctx, client, "transcript", "readers"))

	groups, err := client.XInfoGroups(ctx, "transcript").Result()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, "readers", groups[0].Name)
}

func TestBuildPublishesToStream(t *testing.T) {
	mr := startMiniRedis(t)
	ctx := context.Background()

	tr, err := Build(ctx, Settings{Enabled: true, Addr: mr.Addr(), Stream: "transcript"}, watermill.NopLogger{})
	require.NoError(t, err)
	defer func() { _ = tr.Close() }()

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"seq":1}`))
	require.NoError(t, tr.Publisher.Publish("transcript", msg))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	n, err := client.XLen(ctx, "transcript").Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestBuildFailsWithoutServer(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	_, err := Build(context.Background(), Settings{Enabled: true, Addr: addr}, watermill.NopLogger{})
	require.Error(t, err)
}
