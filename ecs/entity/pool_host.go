package entity

import (
	"fmt"

	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/effect"
	"github.com/milk9111/breakout/pool"
	"github.com/milk9111/breakout/prefabs"
)

const (
	KeyBall    pool.Key = "ball"
	KeyBrick   pool.Key = "brick"
	KeyPowerUp pool.Key = "powerup"
)

// Pools is the registry type the game uses for its recycled entities.
type Pools = pool.Registry[ecs.Entity]

// PoolHost builds pooled entities from prefabs and toggles them through
// component.Pooled. Decoded prefabs are cached until Reload.
type PoolHost struct {
	world   *ecs.World
	prefabs map[pool.Key]string
	specs   map[pool.Key]prefabs.EntityBuildSpec
}

var (
	_ pool.Host[ecs.Entity]     = (*PoolHost)(nil)
	_ pool.Notifier[ecs.Entity] = (*PoolHost)(nil)
)

func NewPoolHost(w *ecs.World, paths map[pool.Key]string) *PoolHost {
	copied := make(map[pool.Key]string, len(paths))
	for k, v := range paths {
		copied[k] = v
	}
	return &PoolHost{
		world:   w,
		prefabs: copied,
		specs:   make(map[pool.Key]prefabs.EntityBuildSpec),
	}
}

// Reload drops cached prefabs so the next Instantiate reads them again.
func (h *PoolHost) Reload() {
	h.specs = make(map[pool.Key]prefabs.EntityBuildSpec)
}

func (h *PoolHost) Instantiate(key pool.Key) (ecs.Entity, error) {
	path, ok := h.prefabs[key]
	if !ok {
		return 0, fmt.Errorf("entity: no prefab for pool key %q", key)
	}
	spec, ok := h.specs[key]
	if !ok {
		var err error
		spec, err = prefabs.LoadEntityBuildSpec(path)
		if err != nil {
			return 0, fmt.Errorf("entity: load %q: %w", path, err)
		}
		h.specs[key] = spec
	}

	e, err := BuildEntityFromSpec(h.world, path, spec)
	if err != nil {
		return 0, err
	}
	if err := ecs.Add(h.world, e, component.PooledComponent.Kind(), &component.Pooled{Key: key}); err != nil {
		ecs.DestroyEntity(h.world, e)
		return 0, err
	}
	return e, nil
}

func (h *PoolHost) Destroy(e ecs.Entity) {
	ecs.DestroyEntity(h.world, e)
}

func (h *PoolHost) SetActive(e ecs.Entity, active bool) {
	p, ok := ecs.Get(h.world, e, component.PooledComponent.Kind())
	if !ok {
		return
	}
	p.Active = active
	if sprite, ok := ecs.Get(h.world, e, component.SpriteComponent.Kind()); ok {
		sprite.Hidden = !active
	}
	if active {
		return
	}

	ecs.Remove(h.world, e, component.BallContactComponent.Kind())
	ecs.Remove(h.world, e, component.BrickHitComponent.Kind())
	ecs.Remove(h.world, e, component.PickupRequestComponent.Kind())
	if body, ok := ecs.Get(h.world, e, component.PhysicsBodyComponent.Kind()); ok {
		body.VelocityX, body.VelocityY = 0, 0
		body.VelocityDirty = false
	}
}

func (h *PoolHost) IsActive(e ecs.Entity) bool {
	p, ok := ecs.Get(h.world, e, component.PooledComponent.Kind())
	return ok && p.Active
}

func (h *PoolHost) Place(e ecs.Entity, at pool.Placement) {
	if err := SetEntityTransform(h.world, e, at.X, at.Y, at.Rotation); err != nil {
		return
	}
	if body, ok := ecs.Get(h.world, e, component.PhysicsBodyComponent.Kind()); ok {
		body.Teleport = true
	}
}

// Notify resets per-use state on acquire.
func (h *PoolHost) Notify(e ecs.Entity, n pool.Notification) {
	if n != pool.OnAcquire {
		return
	}
	if ball, ok := ecs.Get(h.world, e, component.BallComponent.Kind()); ok {
		ball.Cap = effect.NewSpeedCap(ball.MaxSpeed)
		ball.Attached = false
		ball.SplitOnNextHit = false
		ball.HasSplit = false
	}
	if t, ok := ecs.Get(h.world, e, component.TransformComponent.Kind()); ok {
		t.ScaleX, t.ScaleY = 1, 1
	}
}

// IsLive reports whether e is usable gameplay-wise: alive and, if pooled,
// currently acquired.
func IsLive(w *ecs.World, e ecs.Entity) bool {
	if !ecs.IsAlive(w, e) {
		return false
	}
	p, ok := ecs.Get(w, e, component.PooledComponent.Kind())
	return !ok || p.Active
}
