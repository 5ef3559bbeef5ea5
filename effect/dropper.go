package effect

import (
	"math/rand/v2"

	"go.uber.org/zap"
)

// Spawner places a power-up of kind at (x, y). It reports false when the
// spawn was skipped, e.g. because the pool is exhausted.
type Spawner interface {
	SpawnPowerUp(kind Kind, x, y float64) bool
}

// Dropper decides whether a destroyed brick drops a power-up and which kind.
type Dropper struct {
	chance  float64
	rng     *rand.Rand
	spawner Spawner
	logger  *zap.Logger
}

func NewDropper(chance float64, rng *rand.Rand, spawner Spawner, logger *zap.Logger) *Dropper {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dropper{rng: rng, spawner: spawner, logger: logger}
	d.SetChance(chance)
	return d
}

// SetChance clamps chance to [0, 1].
func (d *Dropper) SetChance(chance float64) {
	if d == nil {
		return
	}
	d.chance = clamp01(chance)
}

func (d *Dropper) Chance() float64 {
	if d == nil {
		return 0
	}
	return d.chance
}

// TrySpawn draws once and, on success, spawns a uniformly chosen kind at
// (x, y). A zero chance never spawns.
func (d *Dropper) TrySpawn(x, y float64) (Kind, bool) {
	if d == nil || d.spawner == nil || d.chance <= 0 {
		return 0, false
	}
	if d.rng.Float64() > d.chance {
		return 0, false
	}
	kind := Kind(d.rng.IntN(int(kindCount)))
	if !d.spawner.SpawnPowerUp(kind, x, y) {
		d.logger.Debug("effect: power-up spawn skipped", zap.Stringer("kind", kind))
		return kind, false
	}
	return kind, true
}
