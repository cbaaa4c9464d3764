package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheInvalidator removes cached GET responses after writes. A nil invalidator is a no-op so
// handlers can call it whether or not Redis is configured.
type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator {
	if rdb == nil {
		return nil
	}
	return &CacheInvalidator{rdb}
}

// Purge deletes every cached response under the given namespaces (the first path segment,
// e.g. "events" for /events/group/3). Errors are ignored; entries still expire with their TTL.
func (ci *CacheInvalidator) Purge(ctx context.Context, namespaces ...string) {
	if ci == nil {
		return
	}
	for _, ns := range namespaces {
		// key 是 sha1，只能按前綴整批刪
		iter := ci.rdb.Scan(ctx, 0, "cache:"+ns+":*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if len(keys) > 0 {
			_ = ci.rdb.Del(ctx, keys...).Err()
		}
	}
}
