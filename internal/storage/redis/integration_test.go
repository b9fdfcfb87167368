//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestOrderStore_RealRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	rdb, err := NewClient(ctx, Options{Addr: endpoint, Timeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewOrderStore(rdb, "")
	seq := NewSequence(rdb, "")

	id, err := seq.NextID(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, latte(id)))

	got, err := store.GetMany(ctx, []int64{id, id + 100})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Latte with Vanilla, Caramel", got[0].Description)
	assert.Nil(t, got[1])

	require.NoError(t, store.DeleteAll(ctx))
	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
