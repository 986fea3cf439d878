package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"planroom/pkg/logger"
)

// RoomLocker 提供每個房間的單飛（single-flight）鎖。
// TryLock 不等待：房間已被占用時回傳 ok=false。
type RoomLocker interface {
	TryLock(ctx context.Context, room string) (release func(), ok bool, err error)
}

// LocalRoomLocker 是單一行程內的房間鎖
type LocalRoomLocker struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewLocalRoomLocker() *LocalRoomLocker {
	return &LocalRoomLocker{active: make(map[string]struct{})}
}

func (l *LocalRoomLocker) TryLock(_ context.Context, room string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.active[room]; busy {
		return nil, false, nil
	}
	l.active[room] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.active, room)
			l.mu.Unlock()
		})
	}, true, nil
}

// 只有持有者（token 相符）才能釋放或續期
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)
	renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)
)

// RedisRoomLocker 讓多個實例共用同一把房間鎖（SET NX PX）。
// 持有期間每 ttl/3 續期一次，行程當掉時鎖在 ttl 後自動失效。
type RedisRoomLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRoomLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisRoomLocker {
	return &RedisRoomLocker{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRoomLocker) keyFor(room string) string {
	return fmt.Sprintf("%s:room:%s:ai-lock", r.prefix, room)
}

func (r *RedisRoomLocker) TryLock(ctx context.Context, room string) (func(), bool, error) {
	key := r.keyFor(room)
	token := uuid.New().String()

	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire room lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			// 釋放不受請求 context 影響
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, r.client, []string{key}, token).Err()
		})
	}, true, nil
}

// keepAlive 在 stop 關閉前持續延長鎖的期限；鎖被別人取得時停止。
func (r *RedisRoomLocker) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := r.ttl / 3
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			renewed, err := renewScript.Run(ctx, r.client, []string{key}, token, r.ttl.Milliseconds()).Int()
			cancel()

			l := logger.L()
			if err != nil {
				l.Warn().Err(err).Str("key", key).Msg("room lock renewal failed")
				continue
			}
			if renewed == 0 {
				l.Error().Str("key", key).Msg("room lock lost before release")
				return
			}
		}
	}
}

// keyedMutex 依房間序列化「儲存 + 廣播」，確保持久化順序與廣播順序一致
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
