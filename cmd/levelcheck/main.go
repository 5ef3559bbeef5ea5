// Command levelcheck runs the level script for a range of level numbers and
// reports layouts that would not play: bricks outside the arena, bricks that
// overlap, or bricks low enough to reach the paddle.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/milk9111/breakout/ecs/entity"
	"github.com/milk9111/breakout/prefabs"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var from, to int
	var asJSON bool

	cmd := &cobra.Command{
		Use:           "levelcheck",
		Short:         "Validate the level script against game.yaml",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from < 1 || to < from {
				return fmt.Errorf("invalid level range %d..%d", from, to)
			}
			spec, err := prefabs.LoadGameSpec()
			if err != nil {
				return err
			}
			return run(out, spec, from, to, asJSON)
		},
	}

	cmd.Flags().IntVar(&from, "from", 1, "first level number to check")
	cmd.Flags().IntVar(&to, "to", 3, "last level number to check")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each layout as JSON instead of a grid")
	return cmd
}

type report struct {
	Level    int                `json:"level"`
	Bricks   []entity.BrickCell `json:"bricks"`
	Points   int                `json:"points"`
	Problems []string           `json:"problems,omitempty"`
}

func run(out io.Writer, spec prefabs.GameSpec, from, to int, asJSON bool) error {
	failed := 0
	for number := from; number <= to; number++ {
		level, err := entity.LoadLevel(spec.Level, spec.Arena.Width, number)
		if err != nil {
			return err
		}
		r := report{Level: number, Bricks: level.Bricks, Problems: checkLevel(level, spec)}
		for _, b := range level.Bricks {
			r.Points += b.Points
		}
		if len(r.Problems) > 0 {
			failed++
		}

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(r); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "level %d: %d bricks, %d points\n", r.Level, len(r.Bricks), r.Points)
		fmt.Fprint(out, grid(level))
		for _, p := range r.Problems {
			fmt.Fprintf(out, "  ! %s\n", p)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d level(s) failed validation", failed)
	}
	return nil
}

// paddleClearance is the gap kept between the lowest brick and the paddle's
// start height.
const paddleClearance = 80

func checkLevel(level entity.Level, spec prefabs.GameSpec) []string {
	var problems []string
	if len(level.Bricks) == 0 {
		return []string{"no bricks"}
	}

	halfW, halfH := spec.Level.BrickWidth/2, spec.Level.BrickHeight/2
	floor := spec.Arena.Height - paddleClearance
	for _, b := range level.Bricks {
		switch {
		case b.X-halfW < 0 || b.X+halfW > spec.Arena.Width:
			problems = append(problems, fmt.Sprintf("brick r%d c%d at x=%.1f leaves the arena", b.Row, b.Col, b.X))
		case b.Y-halfH < 0:
			problems = append(problems, fmt.Sprintf("brick r%d c%d at y=%.1f is above the arena", b.Row, b.Col, b.Y))
		case b.Y+halfH > floor:
			problems = append(problems, fmt.Sprintf("brick r%d c%d at y=%.1f is too close to the paddle", b.Row, b.Col, b.Y))
		}
	}

	sorted := append([]entity.BrickCell(nil), level.Bricks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	for i := range sorted {
		for j := i + 1; j < len(sorted) && sorted[j].X-sorted[i].X < spec.Level.BrickWidth; j++ {
			a, b := sorted[i], sorted[j]
			if abs(a.Y-b.Y) < spec.Level.BrickHeight {
				problems = append(problems, fmt.Sprintf("bricks r%d c%d and r%d c%d overlap", a.Row, a.Col, b.Row, b.Col))
			}
		}
	}
	return problems
}

// grid draws one character per cell, '#' for a brick.
func grid(level entity.Level) string {
	rows, cols := 0, 0
	for _, b := range level.Bricks {
		rows = max(rows, b.Row+1)
		cols = max(cols, b.Col+1)
	}
	cells := make([][]byte, rows)
	for r := range cells {
		cells[r] = []byte(strings.Repeat(".", cols))
	}
	for _, b := range level.Bricks {
		if b.Row >= 0 && b.Col >= 0 {
			cells[b.Row][b.Col] = '#'
		}
	}
	var sb strings.Builder
	for _, row := range cells {
		sb.WriteString("  ")
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
