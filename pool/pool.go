// Package pool recycles expensive entities under a per-kind capacity.
//
// A Registry owns one Pool per Key. Entities are created lazily through a
// Host, handed out by Acquire and returned by Release; they are only ever
// destroyed by ResetAll. Active-set membership is the single source of truth
// for whether a handle is in use.
package pool

import (
	"errors"
)

// DefaultCapacity applies to pools that are acquired from or preallocated
// before Configure is called.
const DefaultCapacity = 5

var (
	ErrInvalidArgument = errors.New("pool: invalid argument")
	ErrPoolExhausted   = errors.New("pool: exhausted")
)

// Key identifies an entity kind. Hosts declare their keys as typed
// constants; distinct kinds never share a key.
type Key string

// Placement is applied to an entity in the same step that activates it.
type Placement struct {
	X        float64
	Y        float64
	Rotation float64
}

// Host creates and manipulates the entities a Registry pools.
type Host[H comparable] interface {
	Instantiate(key Key) (H, error)
	Destroy(h H)
	SetActive(h H, active bool)
	IsActive(h H) bool
	Place(h H, at Placement)
}

type Notification int

const (
	OnAcquire Notification = iota
	OnRelease
)

func (n Notification) String() string {
	if n == OnRelease {
		return "OnRelease"
	}
	return "OnAcquire"
}

// Acquirer and Releaser may be implemented by handle types that want to
// reset per-use state themselves.
type Acquirer interface {
	OnAcquire()
}

type Releaser interface {
	OnRelease()
}

// Notifier may be implemented by a Host to receive lifecycle notifications
// for handles that do not implement Acquirer/Releaser.
type Notifier[H comparable] interface {
	Notify(h H, n Notification)
}

// Pool is the bookkeeping for a single key.
type Pool[H comparable] struct {
	key      Key
	capacity int
	free     []H
	active   map[H]struct{}
}

func newPool[H comparable](key Key, capacity int) *Pool[H] {
	return &Pool[H]{
		key:      key,
		capacity: capacity,
		active:   make(map[H]struct{}),
	}
}

func (p *Pool[H]) Key() Key         { return p.key }
func (p *Pool[H]) Capacity() int    { return p.capacity }
func (p *Pool[H]) CountFree() int   { return len(p.free) }
func (p *Pool[H]) CountActive() int { return len(p.active) }

// Len is the number of entities this pool has created and still tracks.
func (p *Pool[H]) Len() int {
	return len(p.free) + len(p.active)
}

func (p *Pool[H]) canGrow() bool {
	return p.Len() < p.capacity
}

func (p *Pool[H]) isActive(h H) bool {
	_, ok := p.active[h]
	return ok
}

// dequeue pops the oldest free entity.
func (p *Pool[H]) dequeue() (H, bool) {
	var zero H
	if len(p.free) == 0 {
		return zero, false
	}
	h := p.free[0]
	p.free[0] = zero
	p.free = p.free[1:]
	return h, true
}

func (p *Pool[H]) enqueue(h H) {
	p.free = append(p.free, h)
}
