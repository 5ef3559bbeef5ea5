package effect

import "github.com/jakecoffman/cp"

// Config holds the tuning every built-in entry reads.
type Config struct {
	Duration             float64
	ExpandedScale        float64
	ShrunkScale          float64
	ScaleTransitionSpeed float64
	ScaleEpsilon         float64
	SpeedUpMultiplier    float64
	SlowDownMultiplier   float64
	MultiBallCount       int
}

func DefaultConfig() Config {
	return Config{
		Duration:             10,
		ExpandedScale:        1.5,
		ShrunkScale:          0.5,
		ScaleTransitionSpeed: 5,
		ScaleEpsilon:         0.01,
		SpeedUpMultiplier:    1.5,
		SlowDownMultiplier:   0.6,
		MultiBallCount:       2,
	}
}

// GroupPaddleScale is shared by the two paddle effects so only one of them
// owns the paddle at a time.
const GroupPaddleScale = "paddle_scale"

// Entry is the concrete action behind a kind. Start applies the effect and
// returns the task that will revert it, or nil when there is nothing to
// track (fire-and-forget, or no target to act on).
type Entry interface {
	Group() string
	Start(kind Kind, targets Targets) Task
}

type Catalog struct {
	entries map[Kind]Entry
}

// NewCatalog returns a catalog with the built-in entry for every kind.
func NewCatalog(cfg Config) *Catalog {
	def := DefaultConfig()
	if cfg.Duration <= 0 {
		cfg.Duration = def.Duration
	}
	if cfg.ScaleTransitionSpeed <= 0 {
		cfg.ScaleTransitionSpeed = def.ScaleTransitionSpeed
	}
	if cfg.ScaleEpsilon <= 0 {
		cfg.ScaleEpsilon = def.ScaleEpsilon
	}
	if cfg.ExpandedScale <= 0 {
		cfg.ExpandedScale = def.ExpandedScale
	}
	if cfg.ShrunkScale <= 0 {
		cfg.ShrunkScale = def.ShrunkScale
	}
	if cfg.SpeedUpMultiplier <= 0 {
		cfg.SpeedUpMultiplier = def.SpeedUpMultiplier
	}
	if cfg.SlowDownMultiplier <= 0 {
		cfg.SlowDownMultiplier = def.SlowDownMultiplier
	}
	if cfg.MultiBallCount < 0 {
		cfg.MultiBallCount = 0
	}

	c := &Catalog{entries: make(map[Kind]Entry, kindCount)}
	c.Register(ExpandPaddle, ScaleEntry{TargetX: cfg.ExpandedScale, Rate: cfg.ScaleTransitionSpeed, Epsilon: cfg.ScaleEpsilon, Duration: cfg.Duration})
	c.Register(ShrinkPaddle, ScaleEntry{TargetX: cfg.ShrunkScale, Rate: cfg.ScaleTransitionSpeed, Epsilon: cfg.ScaleEpsilon, Duration: cfg.Duration})
	c.Register(MultiBall, SpawnEntry{Count: cfg.MultiBallCount})
	c.Register(SplitBall, SplitEntry{Duration: cfg.Duration})
	c.Register(SpeedUp, SpeedEntry{Multiplier: cfg.SpeedUpMultiplier, Duration: cfg.Duration})
	c.Register(SlowDown, SpeedEntry{Multiplier: cfg.SlowDownMultiplier, Duration: cfg.Duration})
	return c
}

// Register replaces the entry for kind. Invalid kinds and nil entries are
// ignored.
func (c *Catalog) Register(kind Kind, entry Entry) {
	if c == nil || !kind.Valid() || entry == nil {
		return
	}
	if c.entries == nil {
		c.entries = make(map[Kind]Entry)
	}
	c.entries[kind] = entry
}

func (c *Catalog) Entry(kind Kind) (Entry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.entries[kind]
	return e, ok
}

func (c *Catalog) Group(kind Kind) string {
	if e, ok := c.Entry(kind); ok {
		return e.Group()
	}
	return ""
}

// ScaleEntry animates the paddle's X scale to TargetX, keeping Y.
type ScaleEntry struct {
	TargetX  float64
	Rate     float64
	Epsilon  float64
	Duration float64
}

func (e ScaleEntry) Group() string { return GroupPaddleScale }

func (e ScaleEntry) Start(_ Kind, targets Targets) Task {
	paddle, ok := targets.Paddle()
	if !ok {
		return nil
	}
	origin := paddle.Scale()
	return &scaleTask{
		targets:  targets,
		state:    Applying,
		origin:   origin,
		target:   cp.Vector{X: e.TargetX, Y: origin.Y},
		rate:     e.Rate,
		epsilon:  e.Epsilon,
		duration: e.Duration,
	}
}

// SpeedEntry multiplies the cap of every ball present at activation. Balls
// spawned later start without the modifier unless they inherit it from a
// split, so the revert clears kind from every ball alive at revert time.
type SpeedEntry struct {
	Multiplier float64
	Duration   float64
}

func (e SpeedEntry) Group() string { return "" }

func (e SpeedEntry) Start(kind Kind, targets Targets) Task {
	for _, b := range targets.Balls() {
		b.ApplySpeedModifier(kind, e.Multiplier)
	}
	return newTimedTask(e.Duration, func() {
		for _, b := range targets.Balls() {
			b.ClearSpeedModifier(kind)
		}
	})
}

// SplitEntry arms split-on-next-hit for the current balls and disarms every
// ball alive when the effect ends.
type SplitEntry struct {
	Duration float64
}

func (e SplitEntry) Group() string { return "" }

func (e SplitEntry) Start(_ Kind, targets Targets) Task {
	for _, b := range targets.Balls() {
		b.SetSplitOnNextHit(true)
	}
	return newTimedTask(e.Duration, func() {
		for _, b := range targets.Balls() {
			b.SetSplitOnNextHit(false)
		}
	})
}

// SpawnEntry adds Count balls and is never tracked.
type SpawnEntry struct {
	Count int
}

func (e SpawnEntry) Group() string { return "" }

func (e SpawnEntry) Start(_ Kind, targets Targets) Task {
	if e.Count > 0 {
		targets.SpawnBalls(e.Count)
	}
	return nil
}
