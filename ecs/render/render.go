package render

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/ecs/entity"
)

// RenderSystem draws every visible sprite as a filled primitive, ordered by
// render layer and then entity id.
type RenderSystem struct {
	Background color.Color
}

func NewRenderSystem(background color.Color) *RenderSystem {
	return &RenderSystem{Background: background}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	if r.Background != nil {
		screen.Fill(r.Background)
	}

	entities := w.Query(component.TransformComponent.Kind(), component.SpriteComponent.Kind())
	sort.SliceStable(entities, func(i, j int) bool {
		li := layerOf(w, entities[i])
		lj := layerOf(w, entities[j])
		if li != lj {
			return li < lj
		}
		return uint64(entities[i]) < uint64(entities[j])
	})

	for _, e := range entities {
		if !entity.IsLive(w, e) {
			continue
		}
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		s, _ := ecs.Get(w, e, component.SpriteComponent.Kind())
		if s.Hidden {
			continue
		}

		sx := t.ScaleX
		if sx == 0 {
			sx = 1
		}
		sy := t.ScaleY
		if sy == 0 {
			sy = 1
		}
		width := s.Width * sx
		height := s.Height * sy

		switch s.Shape {
		case component.SpriteCircle:
			radius := width / 2
			vector.DrawFilledCircle(screen, float32(t.X), float32(t.Y), float32(radius), s.Color, true)
		default:
			vector.DrawFilledRect(screen, float32(t.X-width/2), float32(t.Y-height/2), float32(width), float32(height), s.Color, false)
		}
	}
}

func layerOf(w *ecs.World, e ecs.Entity) int {
	if layer, ok := ecs.Get(w, e, component.RenderLayerComponent.Kind()); ok {
		return layer.Index
	}
	return 0
}
