package utils_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/utils"
)

// bcrypt 正確密碼應通過；錯誤密碼應失敗
func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := utils.HashPassword("p@ss")
	require.NoError(t, err)
	assert.NotEqual(t, "p@ss", hashed)
	assert.True(t, utils.CheckPasswordHash("p@ss", hashed))
	assert.False(t, utils.CheckPasswordHash("hahaha", hashed))
	assert.False(t, utils.CheckPasswordHash("p@ss", "not-a-hash"))
}

func TestCacheInvalidator_PurgeByNamespace(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inv := utils.NewCacheInvalidator(rdb)

	ctx := context.Background()
	for _, k := range []string{"cache:events:aaa", "cache:events:bbb", "cache:groups:ccc", "quota:ip:1.2.3.4"} {
		require.NoError(t, rdb.Set(ctx, k, "x", 0).Err())
	}

	inv.Purge(ctx, "events")
	assert.ElementsMatch(t, []string{"cache:groups:ccc", "quota:ip:1.2.3.4"}, mr.Keys())

	inv.Purge(ctx, "groups", "rsvp")
	assert.Equal(t, []string{"quota:ip:1.2.3.4"}, mr.Keys())
}

func TestCacheInvalidator_NilIsNoop(t *testing.T) {
	inv := utils.NewCacheInvalidator(nil)
	assert.Nil(t, inv)
	assert.NotPanics(t, func() { inv.Purge(context.Background(), "events") })
}
