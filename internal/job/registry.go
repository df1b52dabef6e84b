package job

import (
	"container/list"
	"sync"
	"time"
)

/*
Registry is the bounded, time-expiring job id -> StatusRecord store shared
between a running job's goroutine, the polling read path, and concurrent
stop requests. It is the only shared mutable state in the engine, so all
access goes through one mutex; put/get pairs are linearizable per key.
*/

// Clock supplies the current time. Injected so eviction is testable
// without sleeping.
type Clock func() time.Time

// RegistryConfig carries the explicit capacity/TTL settings a Registry is
// constructed with. Zero values fall back to the defaults below.
type RegistryConfig struct {
	// TTL is measured from the last write of an entry, not its creation.
	TTL time.Duration
	// Capacity bounds the entry count; the least recently written entry
	// is evicted when a new id arrives at capacity.
	Capacity int
	Clock    Clock
}

const (
	DefaultTTL      = 120 * time.Second
	DefaultCapacity = 10000
)

type registryEntry struct {
	id        string
	rec       StatusRecord
	writtenAt time.Time
}

// Registry owns StatusRecord lifetime: created on submit, overwritten on
// every stage transition, evicted by TTL or capacity pressure.
type Registry struct {
	mu    sync.Mutex
	ttl   time.Duration
	cap   int
	now   Clock
	items map[string]*list.Element
	// order holds *registryEntry, front = least recently written.
	order *list.List
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Registry{
		ttl:   cfg.TTL,
		cap:   cfg.Capacity,
		now:   cfg.Clock,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Put unconditionally overwrites the entry for id and resets its TTL
// clock. The last put wins; there is no merging of records.
func (r *Registry) Put(id string, rec StatusRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(id, rec)
}

// PutIfNotTerminal writes rec only when the current record for id is
// absent, expired, or not terminal. It is the atomic
// compare-status-then-write used by the stage runner so that a late
// stage completion can never overwrite a stopped (or otherwise terminal)
// record. Returns false when the write was refused.
func (r *Registry) PutIfNotTerminal(id string, rec StatusRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.get(id); ok && cur.Status.Terminal() {
		return false
	}
	r.put(id, rec)
	return true
}

// Get returns the current record for id. Expired entries are removed on
// access and reported as absent.
func (r *Registry) Get(id string) (StatusRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

// Len reports the live entry count, after dropping expired entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	return len(r.items)
}

// Sweep eagerly removes every expired entry.
func (r *Registry) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
}

// StartSweep runs Sweep every interval until the returned stop function
// is called.
func (r *Registry) StartSweep(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// put assumes r.mu is held.
func (r *Registry) put(id string, rec StatusRecord) {
	now := r.now()
	if el, ok := r.items[id]; ok {
		ent := el.Value.(*registryEntry)
		ent.rec = rec
		ent.writtenAt = now
		r.order.MoveToBack(el)
		return
	}
	if len(r.items) >= r.cap {
		r.sweep()
	}
	for len(r.items) >= r.cap {
		oldest := r.order.Front()
		if oldest == nil {
			break
		}
		r.remove(oldest)
	}
	el := r.order.PushBack(&registryEntry{id: id, rec: rec, writtenAt: now})
	r.items[id] = el
}

// get assumes r.mu is held.
func (r *Registry) get(id string) (StatusRecord, bool) {
	el, ok := r.items[id]
	if !ok {
		return StatusRecord{}, false
	}
	ent := el.Value.(*registryEntry)
	if r.expired(ent) {
		r.remove(el)
		return StatusRecord{}, false
	}
	return ent.rec, true
}

// sweep assumes r.mu is held. Entries are ordered by write time, so
// expiry scanning stops at the first live entry.
func (r *Registry) sweep() {
	for el := r.order.Front(); el != nil; {
		ent := el.Value.(*registryEntry)
		if !r.expired(ent) {
			return
		}
		next := el.Next()
		r.remove(el)
		el = next
	}
}

func (r *Registry) expired(ent *registryEntry) bool {
	return r.now().Sub(ent.writtenAt) >= r.ttl
}

func (r *Registry) remove(el *list.Element) {
	ent := el.Value.(*registryEntry)
	delete(r.items, ent.id)
	r.order.Remove(el)
}
