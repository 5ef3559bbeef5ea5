package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milk9111/breakout/common"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts Options
	var baseMonitor bool

	root := &cobra.Command{
		Use:           "breakout",
		Short:         "Breakout with pooled entities and timed power-ups",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.Debug)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			opts.Logger = logger

			if baseMonitor {
				ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
			}
			return run(opts)
		},
	}

	flags := root.Flags()
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging and the pool metrics overlay")
	flags.IntVar(&opts.Level, "level", 1, "level number to start on")
	flags.BoolVar(&opts.Watch, "watch", false, "reload game.yaml, prefabs, and level scripts when they change on disk")
	flags.Uint64Var(&opts.Seed, "seed", 0, "power-up drop seed (0 picks one at random)")
	flags.BoolVarP(&baseMonitor, "monitor", "m", false, "use base monitor instead of primary (for multi-monitor setups)")

	return root
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func run(opts Options) error {
	game, err := NewGame(opts)
	if err != nil {
		return err
	}
	defer game.Close()

	w, h := game.ScreenSize()
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowTitle("breakout")
	ebiten.SetTPS(common.TPS)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
