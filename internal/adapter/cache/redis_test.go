package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := &RedisCache{client: db}
	ctx := context.Background()

	mock.ExpectGet(keyPrefix + "missing").RedisNil()
	value, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, value)

	mock.ExpectSet(keyPrefix+"k-1", `{"id":10}`, time.Hour).SetVal("OK")
	require.NoError(t, c.Set(ctx, "k-1", `{"id":10}`, time.Hour))

	mock.ExpectGet(keyPrefix + "k-1").SetVal(`{"id":10}`)
	value, err = c.Get(ctx, "k-1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":10}`, value)

	down := errors.New("connection refused")
	mock.ExpectGet(keyPrefix + "k-2").SetErr(down)
	_, err = c.Get(ctx, "k-2")
	assert.ErrorIs(t, err, down)

	assert.NoError(t, mock.ExpectationsWereMet())
}
