package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/justcoffee/internal/domain/catalog"
	"github.com/xenking/justcoffee/internal/domain/order"
	"github.com/xenking/justcoffee/internal/storage/memory"
)

func newRedisService(t *testing.T) (*order.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	menu := memory.NewCatalog(&catalog.Menu{
		Coffees: []catalog.Coffee{
			{ID: 1, Type: "Latte", Price: decimal.RequireFromString("3.00")},
		},
		Toppings: []catalog.Topping{
			{ID: 10, Type: "Vanilla", Price: decimal.RequireFromString("0.50")},
			{ID: 11, Type: "Caramel", Price: decimal.RequireFromString("0.50")},
		},
	})
	svc := order.NewService(menu, menu, NewOrderStore(rdb, ""), NewSequence(rdb, ""))
	return svc, mr
}

func TestService_CreateThenGetByID(t *testing.T) {
	svc, mr := newRedisService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, 1, []int64{10, 11})
	require.NoError(t, err)

	o, ok, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, o.ID)
	assert.Equal(t, int64(1), o.CoffeeID)
	assert.Equal(t, []int64{10, 11}, o.ToppingIDs)
	assert.Equal(t, "Latte with Vanilla, Caramel", o.Description)
	assert.True(t, decimal.RequireFromString("4.00").Equal(o.Price))
	assert.NotEmpty(t, mr.HGet(DefaultNamespace, "1"))
}

func TestService_Lifecycle(t *testing.T) {
	svc, _ := newRedisService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, nil)
	require.NoError(t, err)
	second, err := svc.Create(ctx, 1, []int64{10})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	many, err := svc.GetManyByID(ctx, []int64{second, 999, first})
	require.NoError(t, err)
	require.Len(t, many, 3)
	require.NotNil(t, many[0])
	assert.Equal(t, "Latte with Vanilla", many[0].Description)
	assert.Nil(t, many[1])
	require.NotNil(t, many[2])
	assert.Equal(t, "Latte", many[2].Description)
	assert.Equal(t, []int64{}, many[2].ToppingIDs)

	updated, err := svc.Update(ctx, order.CoffeeOrder{
		ID:          first,
		CoffeeID:    1,
		ToppingIDs:  []int64{11},
		Description: "Latte with Caramel",
		Price:       decimal.RequireFromString("3.125"),
	})
	require.NoError(t, err)

	reread, ok, err := svc.GetByID(ctx, first)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, updated.Description, reread.Description)
	assert.Equal(t, []int64{11}, reread.ToppingIDs)
	assert.Equal(t, "3.125", reread.Price.String())

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.DeleteAll(ctx))
	all, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// Ids keep increasing after the namespace is cleared.
	third, err := svc.Create(ctx, 1, nil)
	require.NoError(t, err)
	assert.Greater(t, third, second)
}
