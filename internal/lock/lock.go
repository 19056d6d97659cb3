package lock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/mymart/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var ErrNotAcquired = errors.New("lock_not_acquired")

var Module = fx.Module("lock",
	fx.Provide(NewFromConfig),
)

// Locker is a single-token Redis lock. A nil *Locker is valid and grants
// every lock immediately.
type Locker struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
	retry  time.Duration
	tries  int
}

// NewFromConfig builds the lock on the shared client. It returns nil when
// Redis is not configured.
func NewFromConfig(cfg config.Config, client *redis.Client, log *zap.Logger) *Locker {
	if client == nil {
		log.Info("rating submission lock disabled, relying on database upsert")
		return nil
	}
	return New(client, time.Duration(cfg.Lock.TTLSeconds)*time.Second)
}

func New(client *redis.Client, ttl time.Duration) *Locker {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		ttl:    ttl,
		retry:  50 * time.Millisecond,
		tries:  20,
	}
}

func (l *Locker) TryLock(ctx context.Context, key string) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if strings.TrimSpace(key) == "" {
		return "", false, errors.New("lock key is empty")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

// WithLock runs fn while holding key, polling until the lock is free or the
// retry budget is spent.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if l == nil {
		return fn(ctx)
	}

	var token string
	for attempt := 0; ; attempt++ {
		t, ok, err := l.TryLock(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			token = t
			break
		}
		if attempt+1 >= l.tries {
			return ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retry):
		}
	}
	defer func() {
		_ = l.Release(context.WithoutCancel(ctx), key, token)
	}()

	return fn(ctx)
}
