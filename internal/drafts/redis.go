package drafts

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boatbooking/internal/domain/models"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "draft:"
	lockSuffix       = ":lock"
	DefaultLockLease = 30 * time.Second
	lockPollInterval = 25 * time.Millisecond
)

// releaseScript deletes the lock only if this caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps drafts in Redis so several API replicas share them.
// Expiry is delegated to Redis key TTLs.
type RedisStore struct {
	Client    *redis.Client
	LockLease time.Duration
	LockWait  time.Duration
	now       func() time.Time
}

func NewRedisStore(client *redis.Client, lockWait time.Duration) *RedisStore {
	return &RedisStore{
		Client:    client,
		LockLease: DefaultLockLease,
		LockWait:  lockWait,
		now:       time.Now,
	}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opt), nil
}

func draftKey(token string) string { return keyPrefix + token }
func lockKey(token string) string  { return keyPrefix + token + lockSuffix }

func (s *RedisStore) Put(ctx context.Context, draft models.BookingDraft) error {
	if draft.Token == "" {
		return errors.New("draft token is empty")
	}
	var ttl time.Duration
	if !draft.ExpiresAt.IsZero() {
		ttl = draft.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, draft.Token)
		}
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.Client.Set(ctx, draftKey(draft.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (models.BookingDraft, bool, error) {
	raw, err := s.Client.Get(ctx, draftKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.BookingDraft{}, false, nil
	}
	if err != nil {
		return models.BookingDraft{}, false, fmt.Errorf("redis get draft: %w", err)
	}
	var d models.BookingDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.BookingDraft{}, false, fmt.Errorf("decode draft: %w", err)
	}
	if d.Expired(s.now()) {
		return models.BookingDraft{}, false, nil
	}
	return d, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.Client.Del(ctx, draftKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Lock(ctx context.Context, token string) (func(), error) {
	owner, err := randomOwner()
	if err != nil {
		return nil, err
	}
	lease := s.LockLease
	if lease <= 0 {
		lease = DefaultLockLease
	}
	if s.LockWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.LockWait)
		defer cancel()
	}

	key := lockKey(token)
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()
	for {
		ok, err := s.Client.SetNX(ctx, key, owner, lease).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("redis lock draft: %w", err)
		}
		if ok {
			return func() {
				// released on a fresh context: the caller's may already be done
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, s.Client, []string{key}, owner).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Sweep is a no-op: Redis expires draft keys on its own.
func (s *RedisStore) Sweep(context.Context) (int, error) {
	return 0, nil
}

func randomOwner() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("lock owner: %w", err)
	}
	return hex.EncodeToString(b), nil
}
