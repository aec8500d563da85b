// Package flight coalesces identical in-flight generations and caches
// their results for a bounded window. Two clients submitting the same
// regimen within the window share one upstream call.
package flight

import (
	"sync"
	"sync/atomic"
	"time"
)

type Cache[K comparable, V any] struct {
	// finished holds completed results until their deadline passes.
	finished map[K]entry[V]
	fmu      *sync.RWMutex

	pending map[K]*job[V]
	pmu     *sync.Mutex

	// ttl stores the hold duration in nanoseconds.
	// <= 0 means never expire.
	ttl *atomic.Int64
}

type entry[V any] struct {
	val      V
	deadline time.Time // zero => infinite
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}
}

func NewCache[K comparable, V any](ttl time.Duration) Cache[K, V] {
	var d atomic.Int64
	d.Store(int64(ttl))
	return Cache[K, V]{
		finished: make(map[K]entry[V]),
		fmu:      new(sync.RWMutex),
		pending:  make(map[K]*job[V]),
		pmu:      new(sync.Mutex),
		ttl:      &d,
	}
}

// Expiry sets the hold duration for future writes.
// d <= 0 keeps entries forever.
func (p *Cache[K, V]) Expiry(d time.Duration) {
	if d <= 0 {
		p.ttl.Store(0)
		return
	}
	p.ttl.Store(int64(d))
}

// Do returns the cached value for k, joins an in-flight computation for
// k, or runs work itself. Errors are never cached; every caller joined
// to a failing job sees the same error.
func (p *Cache[K, V]) Do(k K, work func() (V, error)) (V, error) {
	p.pmu.Lock()

	if v, ok := p.lookup(k); ok {
		p.pmu.Unlock()
		return v, nil
	}

	// Join existing in-flight job if any.
	if pending, ok := p.pending[k]; ok {
		p.pmu.Unlock()
		<-pending.done
		return pending.val, pending.err
	}

	j := &job[V]{done: make(chan struct{})}
	p.pending[k] = j
	p.pmu.Unlock()

	j.val, j.err = work()
	if j.err == nil {
		p.store(k, j.val)
	}

	p.pmu.Lock()
	close(j.done)
	delete(p.pending, k)
	p.pmu.Unlock()

	return j.val, j.err
}

// Force bypasses the finished cache and recomputes, still coalescing
// with any job already in flight by waiting it out first.
func (p *Cache[K, V]) Force(k K, work func() (V, error)) (V, error) {
	var j *job[V]
	for {
		p.pmu.Lock()
		if existing, ok := p.pending[k]; ok {
			p.pmu.Unlock()
			<-existing.done
			continue
		}
		j = &job[V]{done: make(chan struct{})}
		p.pending[k] = j
		p.pmu.Unlock()
		break
	}

	j.val, j.err = work()
	if j.err == nil {
		p.store(k, j.val)
	}

	p.pmu.Lock()
	close(j.done)
	delete(p.pending, k)
	p.pmu.Unlock()

	return j.val, j.err
}

func (p *Cache[K, V]) lookup(k K) (V, bool) {
	p.fmu.RLock()
	e, ok := p.finished[k]
	p.fmu.RUnlock()
	if !ok {
		return e.val, false
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		p.fmu.Lock()
		if cur, ok := p.finished[k]; ok && cur.deadline.Equal(e.deadline) {
			delete(p.finished, k)
		}
		p.fmu.Unlock()
		var zero V
		return zero, false
	}
	return e.val, true
}

func (p *Cache[K, V]) store(k K, val V) {
	e := entry[V]{val: val}
	if d := time.Duration(p.ttl.Load()); d > 0 {
		e.deadline = time.Now().Add(d)
	}

	p.fmu.Lock()
	p.finished[k] = e
	p.fmu.Unlock()
}
