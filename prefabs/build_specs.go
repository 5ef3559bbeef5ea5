package prefabs

import "gopkg.in/yaml.v3"

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
}

type SpriteComponentSpec struct {
	Shape  string  `yaml:"shape"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Color  string  `yaml:"color"`
	Hidden bool    `yaml:"hidden"`
}

type RenderLayerComponentSpec struct {
	Index int `yaml:"index"`
}

type PhysicsBodyComponentSpec struct {
	Type       string  `yaml:"type"`
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Radius     float64 `yaml:"radius"`
	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
	Sensor     bool    `yaml:"sensor"`
}

type PaddleComponentSpec struct {
	Speed  float64 `yaml:"speed"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Margin float64 `yaml:"margin"`
	StartX float64 `yaml:"start_x"`
	StartY float64 `yaml:"start_y"`
}

type BallComponentSpec struct {
	MaxSpeed         float64 `yaml:"max_speed"`
	Radius           float64 `yaml:"radius"`
	AttachOffsetY    float64 `yaml:"attach_offset_y"`
	SplitCount       int     `yaml:"split_count"`
	SplitAngleDeg    float64 `yaml:"split_angle_deg"`
	SplitSpeedFactor float64 `yaml:"split_speed_factor"`
	MaxBounceDeg     float64 `yaml:"max_bounce_deg"`
}

type BrickComponentSpec struct {
	Points int `yaml:"points"`
}

type PowerUpComponentSpec struct {
	Kind      string  `yaml:"kind"`
	FallSpeed float64 `yaml:"fall_speed"`
}
