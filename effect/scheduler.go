package effect

import (
	"go.uber.org/zap"
)

// Instance describes a live effect occupying its kind's slot.
type Instance struct {
	Kind      Kind
	StartedAt float64
	Duration  float64
}

type slot struct {
	inst Instance
	task Task
}

// Scheduler keeps at most one live task per kind and drives them from the
// host's tick. It mutates shared entities only through Targets.
type Scheduler struct {
	catalog *Catalog
	targets Targets
	logger  *zap.Logger
	clock   float64
	slots   [kindCount]*slot
}

type Option func(*Scheduler)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewScheduler(catalog *Catalog, targets Targets, opts ...Option) *Scheduler {
	s := &Scheduler{
		catalog: catalog,
		targets: targets,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCatalog swaps the catalog used by future activations. Running tasks keep
// the tuning they started with.
func (s *Scheduler) SetCatalog(catalog *Catalog) {
	if s == nil || catalog == nil {
		return
	}
	s.catalog = catalog
}

// Activate starts kind, first cancelling any live instance of the same kind
// and of any kind in the same group. It never fails.
func (s *Scheduler) Activate(kind Kind) {
	if s == nil {
		return
	}
	if !kind.Valid() {
		s.logger.Warn("effect: activate ignored", zap.Stringer("kind", kind))
		return
	}
	entry, ok := s.catalog.Entry(kind)
	if !ok {
		s.logger.Warn("effect: no catalog entry", zap.Stringer("kind", kind))
		return
	}

	if s.cancel(kind) {
		s.logger.Debug("effect: replaced live instance", zap.Stringer("kind", kind))
	}
	if group := entry.Group(); group != "" {
		for k := Kind(0); k < kindCount; k++ {
			if k != kind && s.catalog.Group(k) == group && s.cancel(k) {
				s.logger.Debug("effect: cancelled group peer",
					zap.Stringer("kind", kind), zap.Stringer("peer", k), zap.String("group", group))
			}
		}
	}

	if s.targets == nil {
		return
	}
	task := entry.Start(kind, s.targets)
	s.logger.Info("effect: activated", zap.Stringer("kind", kind))
	if task == nil || task.State() == Idle {
		return
	}
	s.slots[kind] = &slot{
		inst: Instance{Kind: kind, StartedAt: s.clock, Duration: durationOf(entry)},
		task: task,
	}
}

// Advance runs every live task for one tick, in kind order.
func (s *Scheduler) Advance(dt float64) {
	if s == nil {
		return
	}
	s.clock += dt
	for k := Kind(0); k < kindCount; k++ {
		sl := s.slots[k]
		if sl == nil {
			continue
		}
		if sl.task.Advance(dt) {
			// A task may only clear its own slot; a replacement installed
			// during Advance is left alone.
			if s.slots[k] == sl {
				s.slots[k] = nil
			}
			s.logger.Debug("effect: expired", zap.Stringer("kind", k))
		}
	}
}

// Cancel stops kind's live task, running its revert. It reports whether a
// task was live.
func (s *Scheduler) Cancel(kind Kind) bool {
	if s == nil || !kind.Valid() {
		return false
	}
	return s.cancel(kind)
}

func (s *Scheduler) cancel(kind Kind) bool {
	sl := s.slots[kind]
	if sl == nil {
		return false
	}
	s.slots[kind] = nil
	sl.task.Cancel()
	return true
}

// CancelAll reverts every live task, used on level and session teardown.
func (s *Scheduler) CancelAll() {
	if s == nil {
		return
	}
	for k := Kind(0); k < kindCount; k++ {
		s.cancel(k)
	}
}

func (s *Scheduler) IsActive(kind Kind) bool {
	if s == nil || !kind.Valid() {
		return false
	}
	return s.slots[kind] != nil
}

func (s *Scheduler) State(kind Kind) State {
	if !s.IsActive(kind) {
		return Idle
	}
	return s.slots[kind].task.State()
}

// Active lists live instances in kind order.
func (s *Scheduler) Active() []Instance {
	if s == nil {
		return nil
	}
	var out []Instance
	for _, sl := range s.slots {
		if sl != nil {
			out = append(out, sl.inst)
		}
	}
	return out
}

// Remaining returns the seconds of hold time kind has left, or 0 when idle.
// Animated transitions count their ease-in against the hold.
func (s *Scheduler) Remaining(kind Kind) float64 {
	if !s.IsActive(kind) {
		return 0
	}
	inst := s.slots[kind].inst
	left := inst.StartedAt + inst.Duration - s.clock
	if left < 0 {
		return 0
	}
	return left
}

func (s *Scheduler) Clock() float64 {
	if s == nil {
		return 0
	}
	return s.clock
}

func durationOf(entry Entry) float64 {
	switch e := entry.(type) {
	case ScaleEntry:
		return e.Duration
	case SpeedEntry:
		return e.Duration
	case SplitEntry:
		return e.Duration
	default:
		return 0
	}
}
