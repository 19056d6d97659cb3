package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var ErrInvalidBucket = errors.New("invalid_rate_limit_bucket")

// takeScript refills the bucket at KEYS[1] by elapsed time and takes one
// token. Tokens are returned as a string so fractions survive the Lua to
// RESP integer conversion.
const takeScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl_ms = tonumber(ARGV[3])

local t = redis.call("TIME")
local now_ms = (t[1] * 1000) + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "updated_ms")
local tokens = tonumber(state[1])
local updated = tonumber(state[2])
if tokens == nil or updated == nil then
  tokens = burst
else
  local elapsed = math.max(0, now_ms - updated)
  tokens = math.min(burst, tokens + (elapsed / 1000) * rate)
end

local allowed = 0
local retry_ms = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  retry_ms = math.ceil(((1 - tokens) / rate) * 1000)
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "updated_ms", now_ms)
redis.call("PEXPIRE", KEYS[1], ttl_ms)

return {allowed, tostring(tokens), retry_ms}
`

// TokenBucket is a Redis backed bucket shared by every replica.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client, script: redis.NewScript(takeScript)}
}

// Take removes one token from the bucket at key. rate is tokens per second.
func (t *TokenBucket) Take(ctx context.Context, key string, rate float64, burst int) (*Result, error) {
	if t == nil || key == "" || rate <= 0 || burst <= 0 {
		return nil, fmt.Errorf("%w: key=%q rate=%v burst=%d", ErrInvalidBucket, key, rate, burst)
	}

	ttl := idleTTL(rate, burst)
	res, err := t.script.Run(ctx, t.client, []string{key}, rate, burst, ttl.Milliseconds()).Slice()
	if err != nil {
		return nil, fmt.Errorf("take token %s: %w", key, err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("take token %s: unexpected reply %v", key, res)
	}

	allowed, _ := res[0].(int64)
	remaining, _ := strconv.ParseFloat(fmt.Sprint(res[1]), 64)
	retryMs, _ := res[2].(int64)

	return &Result{
		Allowed:    allowed == 1,
		Limit:      burst,
		Remaining:  int(math.Floor(remaining)),
		RetryAfter: time.Duration(retryMs) * time.Millisecond,
	}, nil
}

// idleTTL keeps a bucket around for twice the time it needs to refill.
func idleTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil(float64(burst) / rate * 2)
	return time.Duration(math.Max(seconds, 1)) * time.Second
}
