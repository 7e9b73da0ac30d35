package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process session store with TTL expiry and a
// refcounted per-user mutex. Expiry is enforced passively on read plus a
// background reap, never trusted to callers remembering to delete.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	locks   map[string]*userLock

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type entry struct {
	sess      Session
	expiresAt time.Time
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryStore creates a session store with the given inactivity window
// and starts its background reaper.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*entry),
		locks:   make(map[string]*userLock),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.wg.Add(1)
	go s.reapLoop()
	return s
}

// Close stops the background reaper.
func (s *MemoryStore) Close() {
	s.cancel()
	s.wg.Wait()
}

// Get returns the user's session, or NORMAL when absent or expired.
func (s *MemoryStore) Get(_ context.Context, userID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return Normal(), nil
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, userID)
		return Normal(), nil
	}
	return e.sess, nil
}

// Put stores the session and resets its inactivity window.
func (s *MemoryStore) Put(_ context.Context, userID string, sess Session) error {
	sess = sess.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.Phase == PhaseNormal {
		// NORMAL is the implicit state; keeping no entry means the invariant
		// holds trivially after expiry.
		delete(s.entries, userID)
		return nil
	}
	s.entries[userID] = &entry{
		sess:      sess,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// WithLock runs fn while holding this user's mutex.
func (s *MemoryStore) WithLock(userID string, fn func()) {
	l := s.acquire(userID)
	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		s.release(userID, l)
	}()
	fn()
}

func (s *MemoryStore) acquire(userID string) *userLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	return l
}

func (s *MemoryStore) release(userID string, l *userLock) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(s.locks, userID)
	}
}

func (s *MemoryStore) reapLoop() {
	defer s.wg.Done()

	interval := s.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for userID, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, userID)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ Store = (*MemoryStore)(nil)
