package drafts

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"boatbooking/internal/domain/models"
)

const shardCount = 32

type shard struct {
	mu     sync.Mutex
	drafts map[string]models.BookingDraft
	locks  map[string]*tokenLock
}

// tokenLock is a one-slot semaphore so waiters can give up when ctx ends.
type tokenLock struct {
	sem  chan struct{}
	refs int
}

// MemoryStore is a sharded in-process Store. Each shard guards its own slice
// of tokens, so unrelated tokens never contend on one mutex.
type MemoryStore struct {
	// LockWait bounds how long Lock waits for a held token; zero waits on ctx alone.
	LockWait time.Duration
	shards   [shardCount]*shard
	now      func() time.Time
}

func NewMemoryStore(lockWait time.Duration) *MemoryStore {
	s := &MemoryStore{LockWait: lockWait, now: time.Now}
	for i := range s.shards {
		s.shards[i] = &shard{
			drafts: map[string]models.BookingDraft{},
			locks:  map[string]*tokenLock{},
		}
	}
	return s
}

func (s *MemoryStore) shardFor(token string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) Put(_ context.Context, draft models.BookingDraft) error {
	if draft.Token == "" {
		return errors.New("draft token is empty")
	}
	sh := s.shardFor(draft.Token)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.drafts[draft.Token] = draft
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (models.BookingDraft, bool, error) {
	sh := s.shardFor(token)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	d, ok := sh.drafts[token]
	if !ok || d.Expired(s.now()) {
		return models.BookingDraft{}, false, nil
	}
	return d, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	sh := s.shardFor(token)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.drafts, token)
	return nil
}

func (s *MemoryStore) Lock(ctx context.Context, token string) (func(), error) {
	if s.LockWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.LockWait)
		defer cancel()
	}
	sh := s.shardFor(token)

	sh.mu.Lock()
	l, ok := sh.locks[token]
	if !ok {
		l = &tokenLock{sem: make(chan struct{}, 1)}
		sh.locks[token] = l
	}
	l.refs++
	sh.mu.Unlock()

	release := func() {
		sh.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(sh.locks, token)
		}
		sh.mu.Unlock()
	}

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		release()
		return nil, errors.Join(ErrLockTimeout, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			release()
		})
	}, nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	now := s.now()
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for token, d := range sh.drafts {
			if d.Expired(now) {
				delete(sh.drafts, token)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}

// Len counts live and expired drafts; used by tests and the sweeper log.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.drafts)
		sh.mu.Unlock()
	}
	return n
}
