package component

import "github.com/milk9111/breakout/pool"

// Pooled marks an entity owned by the pool registry. Inactive pooled
// entities stay in the world but are skipped by gameplay, physics, and
// rendering.
type Pooled struct {
	Key    pool.Key
	Active bool
}

var PooledComponent = NewComponent[Pooled]()
