package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/chazu/facade/pkg/building"
	"github.com/chazu/facade/pkg/config"
	"github.com/chazu/facade/pkg/geom"
	"github.com/chazu/facade/pkg/kernel"
	"github.com/chazu/facade/pkg/kernel/manifold"
	"github.com/chazu/facade/pkg/kernel/sdfx"
	"github.com/chazu/facade/pkg/layout"
	"github.com/chazu/facade/pkg/section"
	"github.com/spf13/cobra"
)

// newLogger creates a logger writing to w at the given level, with
// timestamps formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// designFlags are the flags shared by every command that works on a
// single design.
type designFlags struct {
	config string
	seed   uint64
}

func (f *designFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "design file (.toml)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "override the design seed")
}

// design loads the configured design, or the default one.
func (f *designFlags) design(cmd *cobra.Command) (building.Design, error) {
	d := building.DefaultDesign()
	if f.config != "" {
		var err error
		if d, err = config.Load(f.config); err != nil {
			return building.Design{}, err
		}
	}
	if cmd.Flags().Changed("seed") {
		d.Seed = f.seed
	}
	return d, nil
}

// newKernel returns the named geometry kernel.
func newKernel(name string, cells int) (kernel.Kernel, error) {
	switch name {
	case "sdfx":
		return sdfx.NewWithCells(cells), nil
	case "manifold":
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel %q, expected sdfx or manifold", name)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// rootCommand builds the facade command tree.
func rootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "facade",
		Short:        "Facade generates procedural building facades",
		Long:         `Facade turns a parameter set or a building script into the meshes of a multi-storey building: floor separators, walls, a plinth, pillars and the panels under the windows.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(log.WithContext(cmd.Context(), logger))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(generateCommand())
	root.AddCommand(layoutCommand())
	root.AddCommand(sectionCommand())
	root.AddCommand(configCommand())
	return root
}

func generateCommand() *cobra.Command {
	var (
		flags   designFlags
		kname   string
		cells   int
		asJSON  bool
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "generate [script]",
		Short: "Generate building meshes from a script or a design file",
		Long: `Generate evaluates a building script, or builds the design given with
--config (the default design if neither is given), and reports the parts.
With --json the full mesh buffers are written to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			k, err := newKernel(kname, cells)
			if err != nil {
				return err
			}
			app := NewAppWithKernel(k)

			var result EvalResult
			if len(args) == 1 {
				if flags.config != "" {
					return errors.New("give either a script or --config, not both")
				}
				source, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				result = app.Evaluate(ctx, string(source))
			} else {
				d, err := flags.design(cmd)
				if err != nil {
					return err
				}
				result = app.Generate(ctx, d)
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON && !summary {
				if err := writeJSON(out, result); err != nil {
					return err
				}
			} else {
				printResult(out, result)
			}
			if n := len(result.Errors); n > 0 {
				return fmt.Errorf("generation failed with %d error(s)", n)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&kname, "kernel", "sdfx", "geometry kernel for solid panels: sdfx or manifold")
	cmd.Flags().IntVar(&cells, "cells", 64, "marching cubes resolution of the sdfx kernel")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write mesh buffers as JSON")
	cmd.Flags().BoolVar(&summary, "summary", false, "print the part table even with --json")
	return cmd
}

func printResult(w io.Writer, r EvalResult) {
	for _, e := range r.Errors {
		if e.Line > 0 {
			printError(w, "line %d: %s", e.Line, e.Message)
		} else {
			printError(w, "%s", e.Message)
		}
	}
	for _, warn := range r.Warnings {
		printWarning(w, "%s", warn.Message)
	}
	if len(r.Errors) > 0 {
		return
	}

	rows := make([][]string, 0, len(r.Meshes))
	var verts, tris int
	for _, m := range r.Meshes {
		v, t := len(m.Vertices)/3, len(m.Indices)/3
		verts += v
		tris += t
		rows = append(rows, []string{m.PartName, strconv.Itoa(v), strconv.Itoa(t), m.ID})
	}
	printTable(w, []string{"PART", "VERTICES", "TRIANGLES", "ID"}, rows)
	printSuccess(w, "%d parts, %d vertices, %d triangles", len(r.Meshes), verts, tris)
}

func layoutCommand() *cobra.Command {
	var (
		flags  designFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the footprint and the window and pillar placements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.design(cmd)
			if err != nil {
				return err
			}
			footprint, err := layout.Footprint(d.Params.General.Footprint())
			if err != nil {
				return err
			}
			plan, err := layout.Plan(footprint, d.Params.Layout())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Footprint []layoutPoint `json:"footprint"`
					*layout.Result
				}{footprintPoints(footprint.Points), plan})
			}

			printTitle(out, "%s: %d footprint corners", d.Name, len(footprint.Points))
			for _, p := range footprint.Points {
				printDetail(out, "(%s, %s)", formatFloat(p.X), formatFloat(p.Y))
			}
			printPlacements(out, "Windows", plan.Windows)
			printPlacements(out, "Pillars", plan.Pillars)
			printSuccess(out, "%d windows, %d pillars, %d wall runs", len(plan.Windows), len(plan.Pillars), len(plan.WallLoops))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the plan as JSON")
	return cmd
}

type layoutPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func footprintPoints(pts []geom.Point3) []layoutPoint {
	out := make([]layoutPoint, len(pts))
	for i, p := range pts {
		out[i] = layoutPoint{X: p.X, Y: p.Y}
	}
	return out
}

func printPlacements(w io.Writer, title string, ps []layout.Placement) {
	if len(ps) == 0 {
		return
	}
	printTitle(w, "%s", title)
	rows := make([][]string, len(ps))
	for i, p := range ps {
		rows[i] = []string{strconv.Itoa(i), formatFloat(p.Position.X), formatFloat(p.Position.Y), formatFloat(p.RotationZ)}
	}
	printTable(w, []string{"#", "X", "Y", "ROTATION"}, rows)
}

func sectionCommand() *cobra.Command {
	var (
		preset        string
		seed          uint64
		width, height float64
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "section",
		Short: "Draw a random section and print its steps and profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p section.Params
			switch preset {
			case "separator":
				p = section.HorizontalSeparatorParams()
			case "normalized":
				p = section.NormalizedParams()
			default:
				return fmt.Errorf("unknown preset %q, expected separator or normalized", preset)
			}
			if err := p.Validate(); err != nil {
				return err
			}
			if width <= 0 || height <= 0 {
				return errors.New("width and height must be positive")
			}

			seq := section.Generate(p, section.NewSource(seed))
			prof := section.Realize(seq, width, height)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Segments section.Sequence `json:"segments"`
					Profile  []profilePoint   `json:"profile"`
				}{seq, profilePoints(prof.Points)})
			}

			rows := make([][]string, len(seq))
			for i, s := range seq {
				rows[i] = []string{strconv.Itoa(i), s.Kind.String(), formatFloat(s.Width), formatFloat(s.Height)}
			}
			printTitle(out, "%s section, seed %d", preset, seed)
			printTable(out, []string{"#", "KIND", "WIDTH", "HEIGHT"}, rows)
			printSuccess(out, "%d steps, %d profile points", len(seq), len(prof.Points))
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "separator", "parameter preset: separator or normalized")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&width, "width", 1, "section width")
	cmd.Flags().Float64Var(&height, "height", 1, "section height")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the section as JSON")
	return cmd
}

type profilePoint struct {
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

func profilePoints(pts []geom.Point3) []profilePoint {
	out := make([]profilePoint, len(pts))
	for i, p := range pts {
		out[i] = profilePoint{Depth: p.Y, Height: p.Z}
	}
	return out
}

func configCommand() *cobra.Command {
	var flags designFlags

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective design as TOML",
		Long: `Config prints the design given with --config, merged over the defaults,
or the default design. The output is a complete design file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.design(cmd)
			if err != nil {
				return err
			}
			return config.Encode(cmd.OutOrStdout(), d)
		},
	}
	flags.register(cmd)
	return cmd
}
