package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/breakout/effect"
	"gopkg.in/yaml.v3"
)

const GameSpecFile = "game.yaml"

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// GameSpec is the session tuning read from game.yaml. Zero values fall back
// to the defaults in WithDefaults.
type GameSpec struct {
	Arena      ArenaSpec   `yaml:"arena"`
	Lives      int         `yaml:"lives"`
	DropChance *float64    `yaml:"drop_chance"`
	Pools      PoolsSpec   `yaml:"pools"`
	Level      LevelSpec   `yaml:"level"`
	Effects    EffectsSpec `yaml:"effects"`
	Prefabs    PrefabPaths `yaml:"prefabs"`
}

type ArenaSpec struct {
	Width      float64    `yaml:"width"`
	Height     float64    `yaml:"height"`
	Background *YAMLColor `yaml:"background"`
}

type PoolsSpec struct {
	Ball    int `yaml:"ball"`
	PowerUp int `yaml:"powerup"`
}

type LevelSpec struct {
	Script      string  `yaml:"script"`
	Rows        int     `yaml:"rows"`
	Columns     int     `yaml:"columns"`
	BrickWidth  float64 `yaml:"brick_width"`
	BrickHeight float64 `yaml:"brick_height"`
	Gap         float64 `yaml:"gap"`
	Top         float64 `yaml:"top"`
	Points      int     `yaml:"points"`
}

type EffectsSpec struct {
	Duration             float64 `yaml:"duration"`
	ExpandedScale        float64 `yaml:"expanded_scale"`
	ShrunkScale          float64 `yaml:"shrunk_scale"`
	ScaleTransitionSpeed float64 `yaml:"scale_transition_speed"`
	ScaleEpsilon         float64 `yaml:"scale_epsilon"`
	SpeedUpMultiplier    float64 `yaml:"speed_up_multiplier"`
	SlowDownMultiplier   float64 `yaml:"slow_down_multiplier"`
	MultiBallCount       *int    `yaml:"multi_ball_count"`
}

type PrefabPaths struct {
	Paddle  string `yaml:"paddle"`
	Ball    string `yaml:"ball"`
	Brick   string `yaml:"brick"`
	PowerUp string `yaml:"powerup"`
}

const (
	defaultArenaWidth  = 640
	defaultArenaHeight = 480
	defaultLives       = 3
	defaultDropChance  = 0.3
	defaultBallPool    = 8
	defaultPowerUpPool = 5
	defaultBrickPoints = 10
)

func LoadGameSpec() (GameSpec, error) {
	spec, err := LoadSpec[GameSpec](GameSpecFile)
	if err != nil {
		return GameSpec{}, err
	}
	return spec.WithDefaults(), nil
}

// WithDefaults fills every unset field.
func (s GameSpec) WithDefaults() GameSpec {
	if s.Arena.Width <= 0 {
		s.Arena.Width = defaultArenaWidth
	}
	if s.Arena.Height <= 0 {
		s.Arena.Height = defaultArenaHeight
	}
	if s.Lives <= 0 {
		s.Lives = defaultLives
	}
	if s.DropChance == nil {
		v := defaultDropChance
		s.DropChance = &v
	}
	if s.Pools.Ball <= 0 {
		s.Pools.Ball = defaultBallPool
	}
	if s.Pools.PowerUp <= 0 {
		s.Pools.PowerUp = defaultPowerUpPool
	}

	l := &s.Level
	if l.Script == "" {
		l.Script = "level.tengo"
	}
	if l.Rows <= 0 {
		l.Rows = 5
	}
	if l.Columns <= 0 {
		l.Columns = 8
	}
	if l.BrickWidth <= 0 {
		l.BrickWidth = 64
	}
	if l.BrickHeight <= 0 {
		l.BrickHeight = 20
	}
	if l.Gap < 0 {
		l.Gap = 0
	}
	if l.Top <= 0 {
		l.Top = 60
	}
	if l.Points <= 0 {
		l.Points = defaultBrickPoints
	}

	p := &s.Prefabs
	if p.Paddle == "" {
		p.Paddle = "paddle.yaml"
	}
	if p.Ball == "" {
		p.Ball = "ball.yaml"
	}
	if p.Brick == "" {
		p.Brick = "brick.yaml"
	}
	if p.PowerUp == "" {
		p.PowerUp = "powerup.yaml"
	}
	return s
}

// Config converts the YAML tuning into effect settings. Unset fields keep
// the effect package defaults.
func (s EffectsSpec) Config() effect.Config {
	cfg := effect.DefaultConfig()
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.ExpandedScale > 0 {
		cfg.ExpandedScale = s.ExpandedScale
	}
	if s.ShrunkScale > 0 {
		cfg.ShrunkScale = s.ShrunkScale
	}
	if s.ScaleTransitionSpeed > 0 {
		cfg.ScaleTransitionSpeed = s.ScaleTransitionSpeed
	}
	if s.ScaleEpsilon > 0 {
		cfg.ScaleEpsilon = s.ScaleEpsilon
	}
	if s.SpeedUpMultiplier > 0 {
		cfg.SpeedUpMultiplier = s.SpeedUpMultiplier
	}
	if s.SlowDownMultiplier > 0 {
		cfg.SlowDownMultiplier = s.SlowDownMultiplier
	}
	if s.MultiBallCount != nil && *s.MultiBallCount >= 0 {
		cfg.MultiBallCount = *s.MultiBallCount
	}
	return cfg
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = parsed
	return nil
}

// NRGBA returns the colour or opaque black when unset.
func (c *YAMLColor) NRGBA() color.NRGBA {
	if c == nil || c.Color == nil {
		return color.NRGBA{A: 255}
	}
	return color.NRGBAModel.Convert(c.Color).(color.NRGBA)
}

// ParseHexColor accepts RRGGBB or RRGGBBAA with an optional leading '#'.
func ParseHexColor(v string) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %q", v)
	}
	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}
	r, err := parse(0)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse red component: %w", err)
	}
	g, err := parse(2)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse green component: %w", err)
	}
	b, err := parse(4)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse blue component: %w", err)
	}
	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse alpha component: %w", err)
		}
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
