package main

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/effect"
)

const hudLineHeight = 16

// HUD prints the score line and running effects. With debug on it also
// dumps the metrics registry.
type HUD struct {
	effects *effect.Scheduler
	metrics prometheus.Gatherer
	debug   bool
}

func NewHUD(effects *effect.Scheduler, metrics prometheus.Gatherer, debug bool) *HUD {
	return &HUD{effects: effects, metrics: metrics, debug: debug}
}

func (h *HUD) Draw(screen *ebiten.Image, state *component.GameState) {
	if h == nil || screen == nil {
		return
	}
	if state != nil {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("SCORE %d   LIVES %d   LEVEL %d", state.Score, state.Lives, state.Level), 8, 4)
	}

	y := 4 + hudLineHeight
	for _, inst := range h.effects.Active() {
		line := inst.Kind.String()
		if inst.Duration > 0 {
			line = fmt.Sprintf("%s %.1fs", line, h.effects.Remaining(inst.Kind))
		}
		ebitenutil.DebugPrintAt(screen, line, 8, y)
		y += hudLineHeight
	}

	if !h.debug || h.metrics == nil {
		return
	}
	lines := metricLines(h.metrics)
	lines = append(lines, fmt.Sprintf("fps %.0f  tps %.0f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	x := screen.Bounds().Dx() - 260
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, x, 4+i*hudLineHeight)
	}
}

// metricLines renders each gathered sample as name{labels} value.
func metricLines(g prometheus.Gatherer) []string {
	families, err := g.Gather()
	if err != nil {
		return []string{"metrics: " + err.Error()}
	}
	var out []string
	for _, mf := range families {
		name := strings.TrimPrefix(mf.GetName(), "breakout_")
		for _, m := range mf.GetMetric() {
			out = append(out, fmt.Sprintf("%s%s %g", name, labelString(m.GetLabel()), sampleValue(m)))
		}
	}
	return out
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func sampleValue(m *dto.Metric) float64 {
	switch {
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	default:
		return 0
	}
}
