// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"code.hybscloud.com/fdpipe/checkerboard"
	"code.hybscloud.com/fdpipe/internal/placer"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type runOpts struct {
	config     string
	nodes      int
	iterations int
	workers    int
}

func newRunCmd() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Place a synthetic netlist",
		Long: `Generate a random netlist and place it on a checkerboard grid.

Settings come from --config (TOML) when given, else from built-in defaults.
--nodes, --iterations and --workers override either source.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())

			p, err := placer.New(cfg, placer.Generate(cfg), logger)
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context())
			if res != nil {
				printReport(cmd.OutOrStdout(), res)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML configuration file")
	cmd.Flags().IntVarP(&opts.nodes, "nodes", "n", 0, "number of nodes (overrides config)")
	cmd.Flags().IntVarP(&opts.iterations, "iterations", "i", 0, "number of iterations (overrides config)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "workers per parallel stage (overrides config)")
	return cmd
}

func resolveConfig(cmd *cobra.Command, opts runOpts) (placer.Config, error) {
	cfg := placer.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = placer.LoadConfig(opts.config); err != nil {
			return placer.Config{}, err
		}
	}
	if cmd.Flags().Changed("nodes") {
		cfg.Nodes = opts.nodes
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Iterations = opts.iterations
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = opts.workers
	}
	return cfg, cfg.Validate()
}

var (
	colorCyan = lipgloss.Color("36")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLabel  = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	styleNumber = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
)

func printReport(w io.Writer, res *placer.Result) {
	row := func(label, value string) {
		fmt.Fprintln(w, "  "+styleLabel.Render(label)+styleNumber.Render(value))
	}

	fmt.Fprintln(w, styleTitle.Render("Placement "+res.RunID))
	row("iterations", fmt.Sprint(res.Iterations))
	row("hpwl", fmt.Sprintf("%.1f → %.1f", res.InitialHPWL, res.FinalHPWL))
	if res.InitialHPWL > 0 {
		row("improvement", fmt.Sprintf("%.1f%%", 100*(1-res.FinalHPWL/res.InitialHPWL)))
	}
	row("committed", fmt.Sprint(res.Committed))
	row("conflicts", fmt.Sprint(res.Conflicts))
	row("elapsed", res.Elapsed.Round(time.Millisecond).String())

	var dirs []string
	for _, d := range checkerboard.Directions {
		if c, ok := res.Directions[d]; ok {
			dirs = append(dirs, fmt.Sprintf("%s=%d", d, c))
		}
	}
	if len(dirs) > 0 {
		row("overlaps", strings.Join(dirs, " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styleTitle.Render("Stages"))
	for _, s := range res.Stages {
		fmt.Fprintf(w, "  %s%s %s\n",
			styleLabel.Render(s.Name),
			styleNumber.Render(fmt.Sprintf("%d items", s.Processed)),
			styleDim.Render(fmt.Sprintf("stolen %d, imbalance %.2f, %d workers", s.Stolen, s.Imbalance, len(s.Workers))))
	}
}
