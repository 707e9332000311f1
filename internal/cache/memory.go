package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is an in-process cache. A janitor goroutine drops expired entries
// until Close is called.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go m.sweepLoop(sweepInterval)

	return m
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) {
		delete(m.entries, key)
		return "", ErrMiss
	}
	return e.value, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || e.expired(now) {
		e = memoryEntry{value: "0"}
		if window > 0 {
			e.expiresAt = now.Add(window)
		}
	}

	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, err
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	m.entries[key] = e

	return n, nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

// Close stops the janitor. It is safe to call more than once.
func (m *Memory) Close() error {
	m.once.Do(func() {
		close(m.stop)
		<-m.done
	})
	return nil
}

func (m *Memory) Name() string {
	return "inmemory"
}

func (m *Memory) sweepLoop(interval time.Duration) {
	defer close(m.done)

	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
}
