package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linewatch/go-linewatch/boundary"
)

// BoundaryOptions holds flags for the boundary command
type BoundaryOptions struct {
	*RootOptions
	Scale   float32
	SaveAs  string
	Samples int
}

// NewBoundaryCommand creates the boundary inspection command
func NewBoundaryCommand(rootOpts *RootOptions) *cobra.Command {

	opts := &BoundaryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "boundary <config.json>",
		Short: "Validate and inspect a boundary configuration",
		Long: `Load a boundary configuration file, report its points and threshold,
and optionally rescale it for a different frame resolution.

Example:
  linewatch boundary court.json
  linewatch boundary court.json --scale 0.5 --save-as court-720p.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectBoundary(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float32Var(&opts.Scale, "scale", 1.0, "rescale factor for the boundary points")
	cmd.Flags().StringVar(&opts.SaveAs, "save-as", "", "write the (rescaled) boundary to this path")
	cmd.Flags().IntVar(&opts.Samples, "samples", 0, "print the interpolated line value at this many x positions")

	return cmd
}

func inspectBoundary(opts *BoundaryOptions, path string, cmd *cobra.Command) error {

	line, err := boundary.LoadFile(path)

	if err != nil {
		return err
	}

	if opts.Scale != 1.0 {
		line = line.Scale(opts.Scale)
	}

	out := cmd.OutOrStdout()
	pts := line.Points()

	fmt.Fprintf(out, "boundary: %d points, method %s, threshold %.0fpx\n",
		len(pts), line.Method(), line.Threshold())

	for _, pt := range pts {
		fmt.Fprintf(out, "  (%.1f, %.1f)\n", pt.X, pt.Y)
	}

	if opts.Samples > 1 {

		minX := pts[0].X
		maxX := pts[len(pts)-1].X
		step := (maxX - minX) / float32(opts.Samples-1)

		for i := 0; i < opts.Samples; i++ {

			x := minX + float32(i)*step

			if y, ok := line.ValueAt(x); ok {
				fmt.Fprintf(out, "  line(%.1f) = %.1f\n", x, y)
			}
		}
	}

	if opts.SaveAs != "" {

		if err := line.SaveFile(opts.SaveAs); err != nil {
			return err
		}

		fmt.Fprintf(out, "saved to %s\n", opts.SaveAs)
	}

	return nil
}
