// Package pool parks content clients between scenario runs so that the
// workers of the next run reuse their keep-alive connections.
package pool

import (
	"sync"
)

// Poolable is a client whose idle connections can be released.
type Poolable interface {
	CloseIdleConnections()
}

// ConnectionPool holds up to size idle clients per key. Keys are typically
// the root URL a run targets.
type ConnectionPool[T Poolable] struct {
	mu     sync.Mutex
	pools  map[string]chan T
	size   int
	closed bool
}

// NewConnectionPool creates a new connection pool with the specified max size per key.
func NewConnectionPool[T Poolable](size int) *ConnectionPool[T] {
	if size <= 0 {
		size = 10
	}
	return &ConnectionPool[T]{
		pools: make(map[string]chan T),
		size:  size,
	}
}

// Get returns an idle client for key, or a new one from factory. reused
// reports whether the client came from the pool.
func (p *ConnectionPool[T]) Get(key string, factory func() T) (client T, reused bool) {
	pool := p.pool(key)
	if pool == nil {
		return factory(), false
	}
	select {
	case parked, ok := <-pool:
		if ok {
			return parked, true
		}
	default:
	}
	return factory(), false
}

// Put parks client under key. When the pool is full or closed the client's
// idle connections are released instead.
func (p *ConnectionPool[T]) Put(key string, client T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		client.CloseIdleConnections()
		return
	}
	pool := p.poolLocked(key)
	select {
	case pool <- client:
	default:
		client.CloseIdleConnections()
	}
}

// Len returns the number of idle clients parked under key.
func (p *ConnectionPool[T]) Len(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pools[key])
}

// Close releases every parked client. Later Puts release immediately.
func (p *ConnectionPool[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for key, pool := range p.pools {
		close(pool)
		for client := range pool {
			client.CloseIdleConnections()
		}
		delete(p.pools, key)
	}
}

func (p *ConnectionPool[T]) pool(key string) chan T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	return p.poolLocked(key)
}

func (p *ConnectionPool[T]) poolLocked(key string) chan T {
	pool, ok := p.pools[key]
	if !ok {
		pool = make(chan T, p.size)
		p.pools[key] = pool
	}
	return pool
}
