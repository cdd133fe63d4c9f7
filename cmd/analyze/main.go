// Command analyze prints quick, human-readable reports about the board
// presets in the configs directory and about the fairness of the card
// shuffle. The shuffle report deals many seeded layouts and runs a
// chi-square test per grid position.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/memory-match-game/game/config"
	"github.com/wricardo/memory-match-game/game/engine"
)

// z quantile for a 99.9% one-sided confidence
const fairnessZ = 3.09

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Inspect board presets and shuffle fairness",
		Commands: []*cli.Command{
			{
				Name:  "configs",
				Usage: "Summarize every board preset",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: "configs", Usage: "Configuration directory"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return analyzeConfigs(cmd.Root().Writer, cmd.String("dir"))
				},
			},
			{
				Name:  "shuffle",
				Usage: "Chi-square test of card positions over many deals",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "rows", Value: 4},
					&cli.IntFlag{Name: "columns", Value: 4},
					&cli.IntFlag{Name: "trials", Value: 20000},
					&cli.Int64Flag{Name: "seed", Usage: "Shuffle seed (random when 0)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					seed := cmd.Int64("seed")
					if seed == 0 {
						seed = engine.NewSeed()
					}
					fair, err := analyzeShuffle(cmd.Root().Writer, int(cmd.Int("rows")), int(cmd.Int("columns")), int(cmd.Int("trials")), seed)
					if err != nil {
						return err
					}
					if !fair {
						return cli.Exit("", 1)
					}
					return nil
				},
			},
		},
	}
}

func analyzeConfigs(out io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no usable configs in %s", dir)
	}

	for _, info := range infos {
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(out, "\n=== %s ===\nError: %v\n", info.Filename, err)
			continue
		}
		describeConfig(out, info.Filename, cfg)
	}
	return nil
}

func describeConfig(out io.Writer, filename string, cfg *engine.GameConfig) {
	pairs := cfg.Rows * cfg.Columns / 2

	fmt.Fprintf(out, "\n=== %s ===\n", filename)
	fmt.Fprintf(out, "Name: %s\n", cfg.Name)
	fmt.Fprintf(out, "Grid: %d x %d (%d pairs)\n", cfg.Rows, cfg.Columns, pairs)
	fmt.Fprintf(out, "Symbols: %d\n", len(cfg.Symbols))
	fmt.Fprintf(out, "Match reward: %d\n", cfg.MatchReward)
	fmt.Fprintf(out, "Delays: match %.2fs, mismatch %.2fs\n", cfg.MatchDelay, cfg.MismatchDelay)

	if spare := len(cfg.Symbols) - pairs; spare > 0 {
		fmt.Fprintf(out, "✅ %d spare symbols allow larger boards up to %d cards\n", spare, len(cfg.Symbols)*2)
	} else {
		fmt.Fprintln(out, "⚠️  No spare symbols: the board cannot grow beyond its current size")
	}

	// Minimum moves for a perfect memory player is one per pair.
	fmt.Fprintf(out, "Perfect score: %d in %d moves\n", pairs*cfg.MatchReward, pairs)
}

func analyzeShuffle(out io.Writer, rows, columns, trials int, seed int64) (bool, error) {
	if trials <= 0 {
		return false, fmt.Errorf("trials must be positive, got %d", trials)
	}

	counts, err := engine.PositionCounts(engine.NewSeededShuffleBag(seed), rows, columns, trials)
	if err != nil {
		return false, err
	}

	fmt.Fprintf(out, "Grid %d x %d, %d trials, seed %d\n", rows, columns, trials, seed)
	failing, critical := biasedPositions(counts, fairnessZ)
	fmt.Fprintf(out, "Critical chi-square (99.9%%, %d dof): %.2f\n", len(counts[0])-1, critical)

	if len(failing) == 0 {
		fmt.Fprintln(out, "✅ All positions look uniform")
		return true, nil
	}

	fmt.Fprintf(out, "⚠️  %d of %d positions exceed the critical value\n", len(failing), len(counts))
	for _, pos := range failing {
		fmt.Fprintf(out, "   position %d: %.2f\n", pos, engine.ChiSquare(counts[pos]))
	}
	// A few hits at 99.9% are expected on large boards.
	allowed := len(counts)/100 + 1
	return len(failing) <= allowed, nil
}

// biasedPositions returns the positions whose statistic exceeds the critical value
func biasedPositions(counts [][]int, z float64) ([]int, float64) {
	if len(counts) == 0 {
		return nil, 0
	}
	critical := engine.ChiSquareCritical(len(counts[0])-1, z)

	var failing []int
	for pos, observed := range counts {
		if engine.ChiSquare(observed) > critical {
			failing = append(failing, pos)
		}
	}
	return failing, critical
}
