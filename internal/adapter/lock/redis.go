package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

const maxLockTries = 1000

var (
	// ErrLockExpiryInvalid is returned when lock expiry is not positive
	ErrLockExpiryInvalid = errors.New("lock expiry must be greater than 0")
	// ErrLockTriesInvalid is returned when tries is outside [1, 1000]
	ErrLockTriesInvalid = errors.New("lock tries must be between 1 and 1000")
	// ErrLockRetryDelayNegative is returned when retry delay is negative
	ErrLockRetryDelayNegative = errors.New("lock retry delay cannot be negative")
	// ErrLockExtendIntervalInvalid is returned when the extend interval is negative or not below expiry
	ErrLockExtendIntervalInvalid = errors.New("lock extend interval must be between 0 and expiry")
)

// Options configures the Redis locker
type Options struct {
	// Expiry is how long a lock is held before Redis expires it
	Expiry time.Duration
	// Tries is the number of acquisition attempts per key
	Tries int
	// RetryDelay is the wait between attempts
	RetryDelay time.Duration
	// ExtendInterval is how often a held lease is extended; 0 disables the watchdog
	ExtendInterval time.Duration
	// KeyPrefix namespaces lock keys
	KeyPrefix string
}

// DefaultOptions returns defaults suited to transfers that finish within seconds
func DefaultOptions() Options {
	return Options{
		Expiry:         10 * time.Second,
		Tries:          32,
		RetryDelay:     100 * time.Millisecond,
		ExtendInterval: 3 * time.Second,
		KeyPrefix:      "lock:wallet:",
	}
}

func (o Options) validate() error {
	if o.Expiry <= 0 {
		return ErrLockExpiryInvalid
	}
	if o.Tries < 1 || o.Tries > maxLockTries {
		return ErrLockTriesInvalid
	}
	if o.RetryDelay < 0 {
		return ErrLockRetryDelayNegative
	}
	if o.ExtendInterval < 0 || o.ExtendInterval >= o.Expiry {
		return ErrLockExtendIntervalInvalid
	}
	return nil
}

// RedisLocker serializes callers per key across processes using RedLock
type RedisLocker struct {
	redsync *redsync.Redsync
	opts    Options
	logger  *zap.Logger
}

// NewRedisLocker creates a locker on top of an existing Redis client
func NewRedisLocker(client goredislib.UniversalClient, opts Options, logger *zap.Logger) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisLocker{
		redsync: redsync.New(goredis.NewPool(client)),
		opts:    opts,
		logger:  logger,
	}, nil
}

// Acquire takes a distributed lock per key in ascending order.
// On failure no key remains held. While the lease is held a watchdog extends
// it every ExtendInterval; a failed extension marks the lease lost.
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (domain.Lease, error) {
	ordered := sortedUnique(keys)
	held := make([]*redsync.Mutex, 0, len(ordered))

	for _, key := range ordered {
		mutex := l.redsync.NewMutex(
			l.opts.KeyPrefix+key,
			redsync.WithExpiry(l.opts.Expiry),
			redsync.WithTries(l.opts.Tries),
			redsync.WithRetryDelay(l.opts.RetryDelay),
		)
		if err := mutex.LockContext(ctx); err != nil {
			l.unlockAll(held)
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		held = append(held, mutex)
	}

	lease := &redisLease{
		locker: l,
		held:   held,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if l.opts.ExtendInterval > 0 {
		go lease.watch(l.opts.ExtendInterval)
	} else {
		close(lease.done)
	}
	return lease, nil
}

func (l *RedisLocker) unlockAll(held []*redsync.Mutex) {
	// Release must succeed even when the caller's context is already done
	ctx := context.Background()
	for i := len(held) - 1; i >= 0; i-- {
		ok, err := held[i].UnlockContext(ctx)
		if err != nil {
			l.logger.Error("failed to release lock", zap.String("key", held[i].Name()), zap.Error(err))
			continue
		}
		if !ok {
			l.logger.Warn("lock was not held or already expired", zap.String("key", held[i].Name()))
		}
	}
}

// redisLease is a set of held redsync mutexes
type redisLease struct {
	locker *RedisLocker

	// mu serializes extensions; redsync.Mutex is not safe for concurrent use
	mu   sync.Mutex
	held []*redsync.Mutex
	lost error

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Check extends every key. Redis only extends a key whose value still
// matches this lease, so success proves the keys are still held.
func (r *redisLease) Check(ctx context.Context) error {
	return r.extend(ctx)
}

// Release stops the watchdog and unlocks every key
func (r *redisLease) Release() {
	r.once.Do(func() {
		close(r.stop)
		<-r.done

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.lost == nil {
			r.lost = fmt.Errorf("%w: released", domain.ErrLockLost)
		}
		r.locker.unlockAll(r.held)
	})
}

func (r *redisLease) extend(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lost != nil {
		return r.lost
	}
	for _, m := range r.held {
		ok, err := m.ExtendContext(ctx)
		if err != nil || !ok {
			r.lost = fmt.Errorf("%w: %s: %v", domain.ErrLockLost, m.Name(), err)
			return r.lost
		}
	}
	return nil
}

func (r *redisLease) watch(every time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if err := r.extend(context.Background()); err != nil {
				r.locker.logger.Warn("lock lease lost", zap.Error(err))
				return
			}
		}
	}
}
