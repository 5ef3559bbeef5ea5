package entity

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/effect"
	"github.com/milk9111/breakout/prefabs"
)

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"paddle_tag":   addPaddleTag,
	"ball_tag":     addBallTag,
	"brick_tag":    addBrickTag,
	"powerup_tag":  addPowerUpTag,
	"input":        addInput,
	"paddle":       addPaddle,
	"ball":         addBall,
	"brick":        addBrick,
	"powerup":      addPowerUp,
	"transform":    addTransform,
	"sprite":       addSprite,
	"render_layer": addRenderLayer,
	"physics_body": addPhysicsBody,
}

// Transform comes before physics_body so colliders can read the scale.
var componentBuildOrder = []string{
	"paddle_tag",
	"ball_tag",
	"brick_tag",
	"powerup_tag",
	"input",
	"paddle",
	"ball",
	"brick",
	"powerup",
	"transform",
	"sprite",
	"render_layer",
	"physics_body",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildEntityFromSpec(w, prefabPath, spec)
}

// BuildEntityFromSpec builds an already-decoded prefab. prefabPath is only
// used in error messages.
func BuildEntityFromSpec(w *ecs.World, prefabPath string, spec prefabs.EntityBuildSpec) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for components %s", prefabPath, strings.Join(names, ", "))
	}

	return e, nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{ScaleX: 1, ScaleY: 1}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addPaddleTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PaddleTagComponent.Kind(), &component.PaddleTag{})
}

func addBallTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.BallTagComponent.Kind(), &component.BallTag{})
}

func addBrickTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.BrickTagComponent.Kind(), &component.BrickTag{})
}

func addPowerUpTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PowerUpTagComponent.Kind(), &component.PowerUpTag{})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{})
}

type paddleSpec = prefabs.PaddleComponentSpec

func addPaddle(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[paddleSpec](raw)
	if err != nil {
		return fmt.Errorf("decode paddle spec: %w", err)
	}
	if spec.Speed <= 0 {
		return fmt.Errorf("paddle speed must be positive, got %v", spec.Speed)
	}
	return ecs.Add(w, e, component.PaddleComponent.Kind(), &component.Paddle{
		Speed:  spec.Speed,
		Width:  spec.Width,
		Height: spec.Height,
		Margin: spec.Margin,
		StartX: spec.StartX,
		StartY: spec.StartY,
	})
}

type ballSpec = prefabs.BallComponentSpec

func addBall(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[ballSpec](raw)
	if err != nil {
		return fmt.Errorf("decode ball spec: %w", err)
	}
	if spec.MaxSpeed <= 0 {
		return fmt.Errorf("ball max_speed must be positive, got %v", spec.MaxSpeed)
	}
	if spec.SplitCount <= 0 {
		spec.SplitCount = 2
	}
	if spec.SplitAngleDeg == 0 {
		spec.SplitAngleDeg = 30
	}
	if spec.SplitSpeedFactor <= 0 {
		spec.SplitSpeedFactor = 0.8
	}
	if spec.MaxBounceDeg <= 0 {
		spec.MaxBounceDeg = 60
	}
	return ecs.Add(w, e, component.BallComponent.Kind(), &component.Ball{
		Cap:              effect.NewSpeedCap(spec.MaxSpeed),
		MaxSpeed:         spec.MaxSpeed,
		Radius:           spec.Radius,
		AttachOffsetY:    spec.AttachOffsetY,
		SplitCount:       spec.SplitCount,
		SplitAngleDeg:    spec.SplitAngleDeg,
		SplitSpeedFactor: spec.SplitSpeedFactor,
		MaxBounceDeg:     spec.MaxBounceDeg,
	})
}

type brickSpec = prefabs.BrickComponentSpec

func addBrick(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[brickSpec](raw)
	if err != nil {
		return fmt.Errorf("decode brick spec: %w", err)
	}
	return ecs.Add(w, e, component.BrickComponent.Kind(), &component.Brick{Points: spec.Points})
}

type powerUpSpec = prefabs.PowerUpComponentSpec

func addPowerUp(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[powerUpSpec](raw)
	if err != nil {
		return fmt.Errorf("decode powerup spec: %w", err)
	}
	kind := effect.ExpandPaddle
	if spec.Kind != "" {
		kind, err = effect.ParseKind(spec.Kind)
		if err != nil {
			return err
		}
	}
	return ecs.Add(w, e, component.PowerUpComponent.Kind(), &component.PowerUp{
		Kind:      kind,
		FallSpeed: spec.FallSpeed,
	})
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	if spec.ScaleX == 0 {
		spec.ScaleX = 1
	}
	if spec.ScaleY == 0 {
		spec.ScaleY = 1
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		ScaleX:   spec.ScaleX,
		ScaleY:   spec.ScaleY,
		Rotation: spec.Rotation,
	})
}

type spriteSpec = prefabs.SpriteComponentSpec

func addSprite(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[spriteSpec](raw)
	if err != nil {
		return fmt.Errorf("decode sprite spec: %w", err)
	}

	sprite := component.Sprite{
		Width:  spec.Width,
		Height: spec.Height,
		Hidden: spec.Hidden,
	}
	switch strings.ToLower(spec.Shape) {
	case "", "rect":
		sprite.Shape = component.SpriteRect
	case "circle":
		sprite.Shape = component.SpriteCircle
	default:
		return fmt.Errorf("unknown sprite shape %q", spec.Shape)
	}
	sprite.Color = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if spec.Color != "" {
		c, err := prefabs.ParseHexColor(spec.Color)
		if err != nil {
			return err
		}
		sprite.Color = c
	}

	return ecs.Add(w, e, component.SpriteComponent.Kind(), &sprite)
}

type renderLayerSpec = prefabs.RenderLayerComponentSpec

func addRenderLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[renderLayerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode render layer spec: %w", err)
	}
	return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: spec.Index})
}

type physicsBodySpec = prefabs.PhysicsBodyComponentSpec

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[physicsBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}

	var bodyType component.BodyType
	switch strings.ToLower(spec.Type) {
	case "", "dynamic":
		bodyType = component.BodyDynamic
	case "kinematic":
		bodyType = component.BodyKinematic
	case "static":
		bodyType = component.BodyStatic
	default:
		return fmt.Errorf("unknown body type %q", spec.Type)
	}
	if spec.Radius <= 0 && (spec.Width <= 0 || spec.Height <= 0) {
		return fmt.Errorf("physics body needs a radius or a width and height")
	}
	if bodyType == component.BodyDynamic && spec.Mass <= 0 {
		spec.Mass = 1
	}

	return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Type:       bodyType,
		Width:      spec.Width,
		Height:     spec.Height,
		Radius:     spec.Radius,
		Mass:       spec.Mass,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
		Sensor:     spec.Sensor,
	})
}
