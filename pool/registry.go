package pool

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Stats is a point-in-time view of one pool.
type Stats struct {
	Key       Key
	Free      int
	Active    int
	Capacity  int
	Exhausted uint64
}

// Registry maps keys to pools for a single play session. It is not safe for
// concurrent use; every call is expected on the simulation tick.
type Registry[H comparable] struct {
	host            Host[H]
	logger          *zap.Logger
	defaultCapacity int

	pools     map[Key]*Pool[H]
	owners    map[H]Key
	exhausted map[Key]uint64
}

type options struct {
	logger          *zap.Logger
	defaultCapacity int
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDefaultCapacity overrides DefaultCapacity for pools created on demand.
func WithDefaultCapacity(capacity int) Option {
	return func(o *options) {
		if capacity >= 1 {
			o.defaultCapacity = capacity
		}
	}
}

func NewRegistry[H comparable](host Host[H], opts ...Option) *Registry[H] {
	o := options{logger: zap.NewNop(), defaultCapacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[H]{
		host:            host,
		logger:          o.logger,
		defaultCapacity: o.defaultCapacity,
		pools:           make(map[Key]*Pool[H]),
		owners:          make(map[H]Key),
		exhausted:       make(map[Key]uint64),
	}
}

// Configure sets the capacity for key, creating the pool if needed.
// Lowering the capacity below the number of entities already created is
// accepted but only gates future growth; nothing is destroyed.
func (r *Registry[H]) Configure(key Key, capacity int) error {
	if key == "" {
		r.logger.Error("pool: configure with empty key")
		return fmt.Errorf("%w: empty key", ErrInvalidArgument)
	}
	if capacity < 1 {
		r.logger.Error("pool: capacity must be at least 1", zap.String("kind", string(key)), zap.Int("capacity", capacity))
		return fmt.Errorf("%w: capacity %d for %s", ErrInvalidArgument, capacity, key)
	}

	p, ok := r.pools[key]
	if !ok {
		r.pools[key] = newPool[H](key, capacity)
		return nil
	}
	p.capacity = capacity
	if p.Len() > capacity {
		r.logger.Warn("pool: capacity below current size, existing entities kept",
			zap.String("kind", string(key)), zap.Int("capacity", capacity), zap.Int("size", p.Len()))
	}
	return nil
}

// Preallocate creates up to count inactive entities for key without
// exceeding its capacity, and returns how many were created.
func (r *Registry[H]) Preallocate(key Key, count int) (int, error) {
	if key == "" || count < 0 {
		r.logger.Error("pool: invalid preallocate", zap.String("kind", string(key)), zap.Int("count", count))
		return 0, fmt.Errorf("%w: preallocate %d of %q", ErrInvalidArgument, count, key)
	}
	p := r.ensure(key)
	created := 0
	for created < count && p.canGrow() {
		h, err := r.instantiate(p)
		if err != nil {
			return created, err
		}
		p.enqueue(h)
		created++
	}
	return created, nil
}

// Acquire hands out an inactive entity for key, placed at at and activated.
// It returns ErrPoolExhausted when every entity is in use and the pool is
// at capacity; callers treat that as a skipped spawn.
func (r *Registry[H]) Acquire(key Key, at Placement) (H, error) {
	var zero H
	if key == "" {
		r.logger.Error("pool: acquire with empty key")
		return zero, fmt.Errorf("%w: empty key", ErrInvalidArgument)
	}
	p := r.ensure(key)
	r.resync(p)

	h, ok := p.dequeue()
	if !ok {
		if !p.canGrow() {
			r.exhausted[key]++
			r.logger.Debug("pool: exhausted", zap.String("kind", string(key)), zap.Int("capacity", p.capacity))
			return zero, fmt.Errorf("%w: %s at capacity %d", ErrPoolExhausted, key, p.capacity)
		}
		created, err := r.instantiate(p)
		if err != nil {
			return zero, err
		}
		h = created
	}

	p.active[h] = struct{}{}
	r.host.Place(h, at)
	r.host.SetActive(h, true)
	r.notify(h, OnAcquire)
	return h, nil
}

// Release returns h to its pool. Unknown, zero, or already-free handles are
// ignored with a warning.
func (r *Registry[H]) Release(h H) {
	var zero H
	if h == zero {
		r.logger.Warn("pool: release of zero handle")
		return
	}
	key, ok := r.owners[h]
	if !ok {
		r.logger.Warn("pool: release of untracked handle", zap.Any("handle", h))
		return
	}
	p := r.pools[key]
	if p == nil || !p.isActive(h) {
		r.logger.Warn("pool: release of inactive handle", zap.String("kind", string(key)), zap.Any("handle", h))
		return
	}

	r.notify(h, OnRelease)
	r.host.SetActive(h, false)
	delete(p.active, h)
	p.enqueue(h)
}

// Live reports whether h is currently acquired.
func (r *Registry[H]) Live(h H) bool {
	key, ok := r.owners[h]
	if !ok {
		return false
	}
	p := r.pools[key]
	return p != nil && p.isActive(h)
}

// KeyOf reports which pool created h.
func (r *Registry[H]) KeyOf(h H) (Key, bool) {
	key, ok := r.owners[h]
	return key, ok
}

func (r *Registry[H]) CountFree(key Key) int {
	if p, ok := r.pools[key]; ok {
		return p.CountFree()
	}
	return 0
}

func (r *Registry[H]) CountActive(key Key) int {
	if p, ok := r.pools[key]; ok {
		return p.CountActive()
	}
	return 0
}

func (r *Registry[H]) Capacity(key Key) int {
	if p, ok := r.pools[key]; ok {
		return p.Capacity()
	}
	return 0
}

// ActiveHandles returns the acquired handles of key in no particular order.
func (r *Registry[H]) ActiveHandles(key Key) []H {
	p, ok := r.pools[key]
	if !ok {
		return nil
	}
	out := make([]H, 0, len(p.active))
	for h := range p.active {
		out = append(out, h)
	}
	return out
}

// Keys returns the known keys in ascending order.
func (r *Registry[H]) Keys() []Key {
	keys := make([]Key, 0, len(r.pools))
	for k := range r.pools {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (r *Registry[H]) Stats() []Stats {
	keys := r.Keys()
	out := make([]Stats, 0, len(keys))
	for _, k := range keys {
		p := r.pools[k]
		out = append(out, Stats{
			Key:       k,
			Free:      p.CountFree(),
			Active:    p.CountActive(),
			Capacity:  p.Capacity(),
			Exhausted: r.exhausted[k],
		})
	}
	return out
}

// ResetAll destroys every tracked entity and forgets every pool, including
// configured capacities.
func (r *Registry[H]) ResetAll() {
	destroyed := 0
	for _, k := range r.Keys() {
		p := r.pools[k]
		for _, h := range p.free {
			r.host.Destroy(h)
			destroyed++
		}
		for h := range p.active {
			r.host.Destroy(h)
			destroyed++
		}
	}
	r.pools = make(map[Key]*Pool[H])
	r.owners = make(map[H]Key)
	r.exhausted = make(map[Key]uint64)
	r.logger.Debug("pool: reset", zap.Int("destroyed", destroyed))
}

func (r *Registry[H]) ensure(key Key) *Pool[H] {
	if p, ok := r.pools[key]; ok {
		return p
	}
	p := newPool[H](key, r.defaultCapacity)
	r.pools[key] = p
	return p
}

// instantiate creates a new inactive entity owned by p. The caller decides
// whether it goes to the free queue or straight to active.
func (r *Registry[H]) instantiate(p *Pool[H]) (H, error) {
	var zero H
	h, err := r.host.Instantiate(p.key)
	if err != nil {
		r.logger.Error("pool: instantiate failed", zap.String("kind", string(p.key)), zap.Error(err))
		return zero, fmt.Errorf("pool: instantiate %s: %w", p.key, err)
	}
	if h == zero {
		r.logger.Error("pool: host returned zero handle", zap.String("kind", string(p.key)))
		return zero, fmt.Errorf("%w: zero handle for %s", ErrInvalidArgument, p.key)
	}
	r.host.SetActive(h, false)
	r.owners[h] = p.key
	return h, nil
}

// resync adopts free entities that were activated out of band so the free
// queue only ever holds entities that really are inactive.
func (r *Registry[H]) resync(p *Pool[H]) {
	if len(p.free) == 0 {
		return
	}
	kept := p.free[:0]
	for _, h := range p.free {
		if r.host.IsActive(h) {
			p.active[h] = struct{}{}
			r.logger.Warn("pool: adopted entity activated outside the pool", zap.String("kind", string(p.key)), zap.Any("handle", h))
			continue
		}
		kept = append(kept, h)
	}
	var zero H
	for i := len(kept); i < len(p.free); i++ {
		p.free[i] = zero
	}
	p.free = kept
}

func (r *Registry[H]) notify(h H, n Notification) {
	switch n {
	case OnAcquire:
		if a, ok := any(h).(Acquirer); ok {
			a.OnAcquire()
			return
		}
	case OnRelease:
		if rl, ok := any(h).(Releaser); ok {
			rl.OnRelease()
			return
		}
	}
	if notifier, ok := r.host.(Notifier[H]); ok {
		notifier.Notify(h, n)
	}
}
