package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/utils/cache"
)

// ErrLockBusy means another provisioning run holds the lock and did not
// release it within the wait window.
var ErrLockBusy = errors.New("another provisioning operation is in progress for this applicant")

const (
	lockTTL       = 30 * time.Second
	lockWait      = 5 * time.Second
	lockRetryStep = 100 * time.Millisecond
)

// RedisLocker implements ApplicationLocker on a shared Redis via SetNX, so
// mutual exclusion holds across all API instances. The TTL bounds how long a
// crashed holder can block other reviewers.
type RedisLocker struct {
	cache *cache.RedisCache
}

// NewRedisLocker creates a Redis-backed application locker
func NewRedisLocker(c *cache.RedisCache) *RedisLocker {
	return &RedisLocker{cache: c}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := "lock:" + key
	deadline := time.Now().Add(lockWait)

	for {
		ok, err := l.cache.SetNX(ctx, redisKey, "1", lockTTL)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = l.cache.Delete(releaseCtx, redisKey)
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryStep):
		}
	}
}

// MemoryLocker implements ApplicationLocker in process memory. It is the
// fallback when Redis is not configured and only serializes within a single
// instance.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryLocker creates an in-process application locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyLock)}
}

func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		kl.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return func() {
			kl.mu.Unlock()
			l.mu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		}, nil
	case <-ctx.Done():
		// The goroutine will still take the mutex; hand it straight back
		// once it does so the refcount stays balanced.
		go func() {
			<-acquired
			kl.mu.Unlock()
			l.mu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		}()
		return nil, ctx.Err()
	}
}
