package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

const (
	defaultLockTTL         = 10 * time.Second
	lockRetryInitialDelay  = 20 * time.Millisecond
	lockRetryMaxDelay      = 250 * time.Millisecond
	lockRetryDelayMultiply = 2
	releaseTimeout         = 2 * time.Second
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = valkey.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ValkeyLocker is a lock shared by every server instance pointing at the same valkey
type ValkeyLocker struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewValkeyLocker creates a locker storing keys as "<prefix>:<key>"
func NewValkeyLocker(client valkey.Client, prefix string, logger *slog.Logger) *ValkeyLocker {
	return &ValkeyLocker{
		client: client,
		prefix: prefix,
		ttl:    defaultLockTTL,
		logger: logger,
	}
}

func (l *ValkeyLocker) key(key string) string {
	return l.prefix + ":" + key
}

func (l *ValkeyLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := l.release(releaseCtx, key, token); err != nil {
			l.logger.Warn("lock_release_failed", "key", key, "err", err)
		}
	}()
	return fn(ctx)
}

func (l *ValkeyLocker) acquire(ctx context.Context, key, token string) error {
	delay := lockRetryInitialDelay
	for {
		cmd := l.client.B().Set().Key(l.key(key)).Value(token).Nx().Ex(l.ttl).Build()
		err := l.client.Do(ctx, cmd).Error()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ErrLockTimeout
		}
		if !valkey.IsValkeyNil(err) {
			return fmt.Errorf("lock acquire %s: %w", key, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
			delay = min(delay*lockRetryDelayMultiply, lockRetryMaxDelay)
		case <-ctx.Done():
			timer.Stop()
			return ErrLockTimeout
		}
	}
}

func (l *ValkeyLocker) release(ctx context.Context, key, token string) error {
	err := releaseScript.Exec(ctx, l.client, []string{l.key(key)}, []string{token}).Error()
	if err != nil && !valkey.IsValkeyNil(err) {
		return fmt.Errorf("lock release %s: %w", key, err)
	}
	return nil
}
