package entity

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/pool"
	"github.com/milk9111/breakout/prefabs"
	"go.uber.org/zap"
)

var errNoBricks = errors.New("level script defined no bricks")

// BrickCell is one brick of a level layout.
type BrickCell struct {
	X      float64
	Y      float64
	Row    int
	Col    int
	Points int
	Color  color.NRGBA
}

type Level struct {
	Number int
	Bricks []BrickCell
}

// LoadLevel runs the level script named by spec. The script sees the layout
// parameters as globals and must define a "bricks" array.
func LoadLevel(spec prefabs.LevelSpec, arenaWidth float64, number int) (Level, error) {
	src, err := prefabs.LoadScript(spec.Script)
	if err != nil {
		return Level{}, fmt.Errorf("level: load script %q: %w", spec.Script, err)
	}

	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	globals := []struct {
		name  string
		value any
	}{
		{"rows", spec.Rows},
		{"columns", spec.Columns},
		{"brick_width", spec.BrickWidth},
		{"brick_height", spec.BrickHeight},
		{"gap", spec.Gap},
		{"top", spec.Top},
		{"points", spec.Points},
		{"arena_width", arenaWidth},
		{"level", number},
	}
	for _, g := range globals {
		if err := script.Add(g.name, g.value); err != nil {
			return Level{}, fmt.Errorf("level: set %s: %w", g.name, err)
		}
	}

	compiled, err := script.Run()
	if err != nil {
		return Level{}, fmt.Errorf("level: run %q: %w", spec.Script, err)
	}

	bricks, err := extractBricks(compiled)
	if err != nil {
		return Level{}, fmt.Errorf("level: %q: %w", spec.Script, err)
	}
	return Level{Number: number, Bricks: bricks}, nil
}

func extractBricks(compiled *tengo.Compiled) ([]BrickCell, error) {
	if compiled == nil {
		return nil, fmt.Errorf("script compile returned nil program")
	}
	v := compiled.Get("bricks")
	if v == nil || v.IsUndefined() {
		return nil, errNoBricks
	}
	items, ok := toAnySlice(v.Value())
	if !ok {
		return nil, fmt.Errorf("script global 'bricks' must be an array")
	}
	if len(items) == 0 {
		return nil, errNoBricks
	}

	out := make([]BrickCell, 0, len(items))
	for i, item := range items {
		m, ok := toStringAnyMap(item)
		if !ok {
			return nil, fmt.Errorf("brick %d must be a map", i)
		}
		cell := BrickCell{
			X:      toFloat(m["x"]),
			Y:      toFloat(m["y"]),
			Row:    int(toFloat(m["row"])),
			Col:    int(toFloat(m["col"])),
			Points: int(toFloat(m["points"])),
			Color:  color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		}
		if s, ok := m["color"].(string); ok && s != "" {
			c, err := prefabs.ParseHexColor(s)
			if err != nil {
				return nil, fmt.Errorf("brick %d: %w", i, err)
			}
			cell.Color = c
		}
		out = append(out, cell)
	}
	return out, nil
}

// SpawnLevel sizes the brick pool to the layout and acquires one brick per
// cell. Cells the pool cannot supply are logged and skipped.
func SpawnLevel(w *ecs.World, pools *Pools, level Level, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(level.Bricks) == 0 {
		return 0, errNoBricks
	}
	if err := pools.Configure(KeyBrick, len(level.Bricks)); err != nil {
		return 0, err
	}
	if _, err := pools.Preallocate(KeyBrick, len(level.Bricks)); err != nil {
		return 0, err
	}

	spawned := 0
	for _, cell := range level.Bricks {
		e, err := pools.Acquire(KeyBrick, pool.Placement{X: cell.X, Y: cell.Y})
		if err != nil {
			logger.Warn("level: could not spawn brick", zap.Int("row", cell.Row), zap.Int("col", cell.Col), zap.Error(err))
			continue
		}
		if brick, ok := ecs.Get(w, e, component.BrickComponent.Kind()); ok {
			brick.Row = cell.Row
			brick.Col = cell.Col
			if cell.Points > 0 {
				brick.Points = cell.Points
			}
		}
		if sprite, ok := ecs.Get(w, e, component.SpriteComponent.Kind()); ok {
			sprite.Color = cell.Color
		}
		spawned++
	}
	logger.Info("level: spawned", zap.Int("level", level.Number), zap.Int("bricks", spawned))
	return spawned, nil
}

func toStringAnyMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

func toAnySlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	default:
		return nil, false
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
