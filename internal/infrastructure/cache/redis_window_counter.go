package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCounterPrefix = "storefront:ratelimit:"

// incrWindow increments KEYS[1] and starts its expiry of ARGV[1] ms on the
// first hit. It replies with the count and the remaining ttl in ms.
var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RedisWindowCounter counts hits per key in fixed windows shared by all
// instances. The first hit of a window sets the key expiry.
type RedisWindowCounter struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisWindowCounter creates a counter on an existing client
func NewRedisWindowCounter(client *redis.Client, keyPrefix string) *RedisWindowCounter {
	if keyPrefix == "" {
		keyPrefix = defaultCounterPrefix
	}
	return &RedisWindowCounter{client: client, keyPrefix: keyPrefix}
}

// Incr counts one hit and returns the hits of the current window and the
// time until it closes
func (c *RedisWindowCounter) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	res, err := incrWindow.Run(ctx, c.client, []string{c.keyPrefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count hit: %w", err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("failed to count hit: unexpected reply %v", res)
	}

	resetAfter := time.Duration(res[1]) * time.Millisecond
	if resetAfter < 0 {
		resetAfter = window
	}
	return int(res[0]), resetAfter, nil
}
