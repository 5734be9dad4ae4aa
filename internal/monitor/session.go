package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Session is the single owner of one Buffer across recognition calls.
//
// Begin hands out the buffer (reset to empty) and End takes it back as a
// Snapshot. A session cannot be begun twice without an End in between.
type Session struct {
	id  string
	buf *Buffer

	mu     sync.Mutex
	active bool
}

// NewSession allocates a session with its own buffer.
func NewSession(blocks, slotsPerBlock int) (*Session, error) {
	buf, err := New(blocks, slotsPerBlock)
	if err != nil {
		return nil, err
	}
	return &Session{id: uuid.New().String(), buf: buf}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Capacity returns the slot capacity of the session's buffer.
func (s *Session) Capacity() int {
	return s.buf.Capacity()
}

// Begin claims the session and returns its buffer, reset to empty.
func (s *Session) Begin() (*Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil, ErrSessionBusy
	}
	s.active = true
	s.buf.Reset()
	return s.buf, nil
}

// End releases the session and returns what the producer wrote.
func (s *Session) End() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.buf.Snapshot()
	s.active = false
	return snap
}

// Abandon releases the session and discards the buffer contents.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	s.active = false
}

// Active reports whether the session is currently claimed.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// PoolStats describes the pool for diagnostics.
type PoolStats struct {
	Size          int `json:"size"`
	InUse         int `json:"in_use"`
	Blocks        int `json:"blocks"`
	SlotsPerBlock int `json:"slots_per_block"`
	Capacity      int `json:"capacity_per_session"`
}

// Pool hands out pre-allocated sessions so concurrent recognitions never
// share a buffer.
type Pool struct {
	sem           *semaphore.Weighted
	size          int
	blocks        int
	slotsPerBlock int

	mu     sync.Mutex
	free   []*Session
	leased map[*Session]struct{}
	closed bool
}

// NewPool allocates size sessions of blocks × slotsPerBlock slots each.
func NewPool(size, blocks, slotsPerBlock int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	free := make([]*Session, 0, size)
	for i := 0; i < size; i++ {
		s, err := NewSession(blocks, slotsPerBlock)
		if err != nil {
			return nil, err
		}
		free = append(free, s)
	}
	return &Pool{
		sem:           semaphore.NewWeighted(int64(size)),
		size:          size,
		blocks:        blocks,
		slotsPerBlock: slotsPerBlock,
		free:          free,
		leased:        make(map[*Session]struct{}, size),
	}, nil
}

// Acquire waits for a free session. The session is not yet begun.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.sem.Release(1)
		return nil, ErrPoolClosed
	}
	s := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.leased[s] = struct{}{}
	return s, nil
}

// Release returns a session to the pool, abandoning it if still active.
// Releasing a session that is not currently leased from p does nothing.
func (p *Pool) Release(s *Session) {
	p.mu.Lock()
	if _, ok := p.leased[s]; !ok {
		p.mu.Unlock()
		return
	}
	delete(p.leased, s)
	if s.Active() {
		s.Abandon()
	}
	p.free = append(p.free, s)
	p.mu.Unlock()
	p.sem.Release(1)
}

// Close stops the pool from handing out further sessions.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Stats reports pool occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	inUse := p.size - len(p.free)
	p.mu.Unlock()
	return PoolStats{
		Size:          p.size,
		InUse:         inUse,
		Blocks:        p.blocks,
		SlotsPerBlock: p.slotsPerBlock,
		Capacity:      p.blocks * p.slotsPerBlock,
	}
}
