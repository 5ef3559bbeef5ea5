package pool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keyBrick Key = "brick"
	keyBall  Key = "ball"
)

type fakeHost struct {
	next      int
	active    map[int]bool
	placed    map[int]Placement
	destroyed []int
	created   map[Key]int
	events    []string
	failOn    Key
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		active:  make(map[int]bool),
		placed:  make(map[int]Placement),
		created: make(map[Key]int),
	}
}

func (h *fakeHost) Instantiate(key Key) (int, error) {
	if key == h.failOn {
		return 0, errors.New("boom")
	}
	h.next++
	h.created[key]++
	h.active[h.next] = true
	return h.next, nil
}

func (h *fakeHost) Destroy(e int)                { h.destroyed = append(h.destroyed, e); delete(h.active, e) }
func (h *fakeHost) SetActive(e int, active bool) { h.active[e] = active }
func (h *fakeHost) IsActive(e int) bool          { return h.active[e] }
func (h *fakeHost) Place(e int, at Placement)    { h.placed[e] = at }

type notifyingHost struct {
	*fakeHost
}

func (h notifyingHost) Notify(e int, n Notification) {
	h.events = append(h.events, n.String())
}

func TestPreallocateCapsAtCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		count    int
		want     int
	}{
		{name: "below capacity", capacity: 5, count: 3, want: 3},
		{name: "at capacity", capacity: 5, count: 5, want: 5},
		{name: "above capacity", capacity: 5, count: 9, want: 5},
		{name: "zero", capacity: 5, count: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost()
			r := NewRegistry[int](host)
			require.NoError(t, r.Configure(keyBrick, tt.capacity))

			created, err := r.Preallocate(keyBrick, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.want, created)
			assert.Equal(t, tt.want, r.CountFree(keyBrick)+r.CountActive(keyBrick))
			assert.Equal(t, tt.want, r.CountFree(keyBrick))
			for e := range host.active {
				assert.False(t, host.IsActive(e), "preallocated entity %d should be inactive", e)
			}
		})
	}
}

func TestPreallocateDefaultsCapacity(t *testing.T) {
	r := NewRegistry[int](newFakeHost())
	created, err := r.Preallocate(keyBall, 10)
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, created)
	assert.Equal(t, DefaultCapacity, r.Capacity(keyBall))
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	host := newFakeHost()
	r := NewRegistry[int](host)
	require.NoError(t, r.Configure(keyBrick, 3))
	_, err := r.Preallocate(keyBrick, 3)
	require.NoError(t, err)

	at := Placement{X: 10, Y: 20, Rotation: 0.5}
	e, err := r.Acquire(keyBrick, at)
	require.NoError(t, err)
	assert.True(t, host.IsActive(e))
	assert.Equal(t, at, host.placed[e])
	assert.True(t, r.Live(e))
	assert.Equal(t, 2, r.CountFree(keyBrick))
	assert.Equal(t, 1, r.CountActive(keyBrick))

	r.Release(e)
	assert.False(t, host.IsActive(e))
	assert.False(t, r.Live(e))
	assert.Equal(t, 3, r.CountFree(keyBrick))
	assert.Equal(t, 0, r.CountActive(keyBrick))
	assert.Equal(t, 3, host.created[keyBrick])
}

func TestAcquireIsFIFO(t *testing.T) {
	r := NewRegistry[int](newFakeHost())
	_, err := r.Preallocate(keyBrick, 2)
	require.NoError(t, err)

	first, err := r.Acquire(keyBrick, Placement{})
	require.NoError(t, err)
	second, err := r.Acquire(keyBrick, Placement{})
	require.NoError(t, err)
	r.Release(second)
	r.Release(first)

	again, err := r.Acquire(keyBrick, Placement{})
	require.NoError(t, err)
	assert.Equal(t, second, again)
}

func TestExhaustionReusesReleasedEntity(t *testing.T) {
	host := newFakeHost()
	r := NewRegistry[int](host)
	require.NoError(t, r.Configure(keyBrick, 5))

	var handles []int
	for i := 0; i < 5; i++ {
		e, err := r.Acquire(keyBrick, Placement{X: float64(i)})
		require.NoError(t, err)
		handles = append(handles, e)
	}

	_, err := r.Acquire(keyBrick, Placement{})
	require.ErrorIs(t, err, ErrPoolExhausted)
	assert.Equal(t, 5, host.created[keyBrick], "exhaustion must not create an entity")
	assert.Equal(t, 5, r.CountActive(keyBrick))

	r.Release(handles[2])
	e, err := r.Acquire(keyBrick, Placement{X: 99})
	require.NoError(t, err)
	assert.Equal(t, handles[2], e)
	assert.Equal(t, 5, host.created[keyBrick])
	assert.Equal(t, 99.0, host.placed[e].X)

	stats := r.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, uint64(1), stats[0].Exhausted)
}

func TestConfigureRejectsInvalidCapacity(t *testing.T) {
	r := NewRegistry[int](newFakeHost())
	require.NoError(t, r.Configure(keyBrick, 4))

	for _, capacity := range []int{0, -1} {
		err := r.Configure(keyBrick, capacity)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.Equal(t, 4, r.Capacity(keyBrick))

	require.ErrorIs(t, r.Configure("", 3), ErrInvalidArgument)
	_, err := r.Preallocate(keyBrick, -1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestShrinkIsAdvisory(t *testing.T) {
	host := newFakeHost()
	r := NewRegistry[int](host)
	require.NoError(t, r.Configure(keyBrick, 5))
	for i := 0; i < 4; i++ {
		_, err := r.Acquire(keyBrick, Placement{})
		require.NoError(t, err)
	}

	require.NoError(t, r.Configure(keyBrick, 2))
	assert.Equal(t, 2, r.Capacity(keyBrick))
	assert.Equal(t, 4, r.CountActive(keyBrick))
	assert.Empty(t, host.destroyed)

	_, err := r.Acquire(keyBrick, Placement{})
	require.ErrorIs(t, err, ErrPoolExhausted)
}

func TestAcquireAdoptsDriftedEntities(t *testing.T) {
	host := newFakeHost()
	r := NewRegistry[int](host)
	_, err := r.Preallocate(keyBrick, 2)
	require.NoError(t, err)
	require.Equal(t, 2, r.CountFree(keyBrick))

	// Activated behind the pool's back.
	host.SetActive(1, true)

	e, err := r.Acquire(keyBrick, Placement{})
	require.NoError(t, err)
	assert.Equal(t, 2, e)
	assert.Equal(t, 0, r.CountFree(keyBrick))
	assert.Equal(t, 2, r.CountActive(keyBrick))
	assert.True(t, r.Live(1))

	r.Release(1)
	assert.Equal(t, 1, r.CountFree(keyBrick))
}

func TestReleaseIgnoresUnknownHandles(t *testing.T) {
	host := newFakeHost()
	r := NewRegistry[int](host)
	e, err := r.Acquire(keyBall, Placement{})
	require.NoError(t, err)

	r.Release(0)
	r.Release(12345)
	r.Release(e)
	r.Release(e)

	assert.Equal(t, 1, r.CountFree(keyBall))
	assert.Equal(t, 0, r.CountActive(keyBall))
}

func TestUnknownKeyReadsZero(t *testing.T) {
	r := NewRegistry[int](newFakeHost())
	assert.Equal(t, 0, r.CountFree("missing"))
	assert.Equal(t, 0, r.CountActive("missing"))
	assert.Equal(t, 0, r.Capacity("missing"))
	assert.Nil(t, r.ActiveHandles("missing"))
	assert.Empty(t, r.Keys())
}

func TestAcquireUnknownKeyUsesDefaultCapacity(t *testing.T) {
	r := NewRegistry[int](newFakeHost(), WithDefaultCapacity(2))
	_, err := r.Acquire(keyBall, Placement{})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Capacity(keyBall))

	_, err = r.Acquire(keyBall, Placement{})
	require.NoError(t, err)
	_, err = r.Acquire(keyBall, Placement{})
	require.ErrorIs(t, err, ErrPoolExhausted)
}

func TestInstantiateFailure(t *testing.T) {
	host := newFakeHost()
	host.failOn = keyBrick
	r := NewRegistry[int](host)

	_, err := r.Acquire(keyBrick, Placement{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPoolExhausted))
	assert.Equal(t, 0, r.CountActive(keyBrick))
}

func TestResetAllDestroysEverything(t *testing.T) {
	host := newFakeHost()
	r := NewRegistry[int](host)
	require.NoError(t, r.Configure(keyBrick, 3))
	_, err := r.Preallocate(keyBrick, 3)
	require.NoError(t, err)
	_, err = r.Acquire(keyBrick, Placement{})
	require.NoError(t, err)
	_, err = r.Acquire(keyBall, Placement{})
	require.NoError(t, err)

	r.ResetAll()

	assert.ElementsMatch(t, []int{1, 2, 3, 4}, host.destroyed)
	assert.Empty(t, r.Keys())
	assert.Equal(t, 0, r.Capacity(keyBrick))
	assert.Equal(t, 0, r.CountFree(keyBrick))
	assert.False(t, r.Live(1))
}

func TestKeysAreSorted(t *testing.T) {
	r := NewRegistry[int](newFakeHost())
	require.NoError(t, r.Configure("powerup", 1))
	require.NoError(t, r.Configure(keyBrick, 1))
	require.NoError(t, r.Configure(keyBall, 1))
	assert.Equal(t, []Key{keyBall, keyBrick, "powerup"}, r.Keys())
}

func TestHostNotifications(t *testing.T) {
	host := notifyingHost{fakeHost: newFakeHost()}
	r := NewRegistry[int](host)

	e, err := r.Acquire(keyBall, Placement{})
	require.NoError(t, err)
	r.Release(e)

	assert.Equal(t, []string{"OnAcquire", "OnRelease"}, host.events)
}

type token struct {
	id       int
	acquired int
	released int
}

func (t *token) OnAcquire() { t.acquired++ }
func (t *token) OnRelease() { t.released++ }

type tokenHost struct {
	active map[*token]bool
	next   int
}

func (h *tokenHost) Instantiate(Key) (*token, error) {
	h.next++
	return &token{id: h.next}, nil
}

func (h *tokenHost) Destroy(*token)                  {}
func (h *tokenHost) SetActive(t *token, active bool) { h.active[t] = active }
func (h *tokenHost) IsActive(t *token) bool          { return h.active[t] }
func (h *tokenHost) Place(*token, Placement)         {}

func TestHandleNotifications(t *testing.T) {
	host := &tokenHost{active: make(map[*token]bool)}
	r := NewRegistry[*token](host)

	tok, err := r.Acquire(keyBall, Placement{})
	require.NoError(t, err)
	r.Release(tok)
	again, err := r.Acquire(keyBall, Placement{})
	require.NoError(t, err)

	assert.Same(t, tok, again)
	assert.Equal(t, 2, tok.acquired)
	assert.Equal(t, 1, tok.released)
}
