package main

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/entity"
	"github.com/milk9111/breakout/ecs/render"
	"github.com/milk9111/breakout/ecs/system"
	"github.com/milk9111/breakout/effect"
	"github.com/milk9111/breakout/pool"
	"github.com/milk9111/breakout/prefabs"
)

// Options are the command-line settings for a run.
type Options struct {
	Debug  bool
	Level  int
	Watch  bool
	Seed   uint64
	Logger *zap.Logger
}

type Game struct {
	opts   Options
	logger *zap.Logger
	spec   prefabs.GameSpec

	world     *ecs.World
	host      *entity.PoolHost
	pools     *entity.Pools
	effects   *effect.Scheduler
	dropper   *effect.Dropper
	levels    *system.LevelSystem
	physics   *system.PhysicsSystem
	scheduler *ecs.Scheduler
	renderer  *render.RenderSystem
	hud       *HUD

	metrics *prometheus.Registry
	watcher *prefabs.Watcher

	paused  bool
	quit    bool
	pauseUI *Menu
	overUI  *Menu
}

func NewGame(opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	spec, err := prefabs.LoadGameSpec()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", prefabs.GameSpecFile, err)
	}

	g := &Game{
		opts:   opts,
		logger: logger,
		spec:   spec,
		world:  ecs.NewWorld(),
	}

	g.host = entity.NewPoolHost(g.world, map[pool.Key]string{
		entity.KeyBall:    spec.Prefabs.Ball,
		entity.KeyBrick:   spec.Prefabs.Brick,
		entity.KeyPowerUp: spec.Prefabs.PowerUp,
	})
	g.pools = pool.NewRegistry[ecs.Entity](g.host, pool.WithLogger(logger.Named("pool")))

	targets := entity.NewTargets(g.world, g.pools, logger.Named("targets"))
	g.effects = effect.NewScheduler(effect.NewCatalog(spec.Effects.Config()), targets, effect.WithLogger(logger.Named("effect")))

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	logger.Info("power-up drops seeded", zap.Uint64("seed", seed))
	spawner := entity.NewPowerUpSpawner(g.world, g.pools, logger.Named("powerup"))
	g.dropper = effect.NewDropper(*spec.DropChance, rand.New(rand.NewPCG(seed, seed>>1|1)), spawner, logger.Named("drop"))

	activations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "breakout_effect_activations_total",
		Help: "Power-ups caught by the paddle.",
	}, []string{"kind"})
	g.metrics = prometheus.NewRegistry()
	g.metrics.MustRegister(pool.NewCollector(g.pools), activations)

	g.levels = system.NewLevelSystem(g.pools, system.ScriptLevelLoader(spec.Level, spec.Arena.Width), logger.Named("level"))
	g.physics = system.NewPhysicsSystem()
	g.scheduler = ecs.NewScheduler(
		NewInputSystem(),
		system.NewPaddleSystem(),
		system.NewPowerUpSystem(g.pools, countingActivator{next: g.effects, counter: activations}, logger.Named("powerup")),
		system.NewBrickSystem(g.pools, g.dropper, logger.Named("brick")),
		system.NewBallSystem(g.pools, logger.Named("ball")),
		system.NewLivesSystem(g.pools, logger.Named("lives")),
		g.levels,
		system.NewEffectSystem(g.effects),
		g.physics,
	)

	g.renderer = render.NewRenderSystem(spec.Arena.Background.NRGBA())
	g.hud = NewHUD(g.effects, g.metrics, opts.Debug)
	g.pauseUI = NewPauseUI(g)
	g.overUI = NewGameOverUI(g)

	if err := g.startSession(); err != nil {
		return nil, err
	}

	if opts.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir(), filepath.Join(prefabs.Dir(), "scripts"))
		if err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		} else {
			g.watcher = w
			logger.Info("watching for changes", zap.String("dir", prefabs.Dir()))
		}
	}

	return g, nil
}

// startSession fills an empty world with the session singleton, the paddle,
// and a served ball. The level system builds bricks on the next tick.
func (g *Game) startSession() error {
	spec := g.spec
	if _, err := entity.SpawnSession(g.world, spec.Lives, spec.Arena.Width, spec.Arena.Height); err != nil {
		return fmt.Errorf("spawn session: %w", err)
	}
	if state, ok := entity.GameState(g.world); ok && g.opts.Level > 0 {
		state.Level = g.opts.Level
	}

	paddle, err := entity.BuildEntity(g.world, spec.Prefabs.Paddle)
	if err != nil {
		return fmt.Errorf("build paddle: %w", err)
	}
	entity.ResetPaddle(g.world, paddle)

	g.configurePools()
	if _, err := g.pools.Preallocate(entity.KeyPowerUp, spec.Pools.PowerUp); err != nil {
		return fmt.Errorf("preallocate power-ups: %w", err)
	}
	if _, err := entity.AttachBall(g.world, g.pools, paddle); err != nil {
		return fmt.Errorf("serve ball: %w", err)
	}
	return nil
}

func (g *Game) configurePools() {
	capacities := []struct {
		key      pool.Key
		capacity int
	}{
		{entity.KeyBall, g.spec.Pools.Ball},
		{entity.KeyPowerUp, g.spec.Pools.PowerUp},
	}
	for _, c := range capacities {
		if err := g.pools.Configure(c.key, c.capacity); err != nil {
			g.logger.Warn("configure pool", zap.String("key", string(c.key)), zap.Error(err))
		}
	}
}

// Restart tears the session down and serves a fresh one. Effects are
// cancelled before the pools are emptied so their reverts still find the
// paddle and balls.
func (g *Game) Restart() {
	g.effects.CancelAll()
	g.pools.ResetAll()
	for _, e := range ecs.Entities(g.world) {
		ecs.DestroyEntity(g.world, e)
	}
	g.physics.Reset()
	g.levels.SetLoader(system.ScriptLevelLoader(g.spec.Level, g.spec.Arena.Width))
	g.paused = false

	if err := g.startSession(); err != nil {
		g.logger.Error("restart failed", zap.Error(err))
		g.quit = true
		return
	}
	g.logger.Info("session restarted")
}

func (g *Game) Quit() {
	g.quit = true
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) ScreenSize() (int, int) {
	return int(g.spec.Arena.Width), int(g.spec.Arena.Height)
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.applyReloads()

	if state, ok := entity.GameState(g.world); ok && state.Over {
		g.overUI.SetTitle(fmt.Sprintf("Game Over - Score %d", state.Score))
		g.overUI.Update()
		if inpututil.IsKeyJustPressed(ebiten.KeyR) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.Restart()
		}
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.scheduler.Update(g.world)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(g.world, screen)

	state, _ := entity.GameState(g.world)
	g.hud.Draw(screen, state)

	switch {
	case state != nil && state.Over:
		g.overUI.Draw(screen)
	case g.paused:
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenSize()
}

// applyReloads picks up files the watcher saw change since the last tick.
func (g *Game) applyReloads() {
	if g.watcher == nil {
		return
	}
	select {
	case err := <-g.watcher.Errors:
		g.logger.Warn("watch error", zap.Error(err))
	default:
	}

	changed := g.watcher.Drain()
	if len(changed) == 0 {
		return
	}

	var specChanged, prefabChanged, scriptChanged bool
	for _, name := range changed {
		switch {
		case filepath.Base(name) == prefabs.GameSpecFile:
			specChanged = true
		case filepath.Ext(name) == ".tengo":
			scriptChanged = true
		default:
			prefabChanged = true
		}
	}

	if specChanged {
		spec, err := prefabs.LoadGameSpec()
		if err != nil {
			g.logger.Warn("reload game spec", zap.Error(err))
		} else {
			g.applySpec(spec)
		}
	}
	if prefabChanged {
		g.host.Reload()
		g.logger.Info("prefabs reloaded", zap.Strings("files", changed))
	}
	if specChanged || scriptChanged {
		g.levels.SetLoader(system.ScriptLevelLoader(g.spec.Level, g.spec.Arena.Width))
		g.logger.Info("level script reloaded; applies from the next level")
	}
}

// applySpec pushes reloaded tuning into the running session. Live effects
// keep the settings they started with.
func (g *Game) applySpec(spec prefabs.GameSpec) {
	g.spec = spec
	g.effects.SetCatalog(effect.NewCatalog(spec.Effects.Config()))
	g.dropper.SetChance(*spec.DropChance)
	g.configurePools()
	g.renderer.Background = spec.Arena.Background.NRGBA()
	g.logger.Info("game spec reloaded",
		zap.Float64("drop_chance", *spec.DropChance),
		zap.Int("ball_pool", spec.Pools.Ball),
		zap.Int("powerup_pool", spec.Pools.PowerUp),
	)
}

// countingActivator records each caught power-up before activating it.
type countingActivator struct {
	next    system.Activator
	counter *prometheus.CounterVec
}

func (a countingActivator) Activate(kind effect.Kind) {
	a.counter.WithLabelValues(kind.String()).Inc()
	a.next.Activate(kind)
}
