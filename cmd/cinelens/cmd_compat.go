package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HerbHall/cinelens/internal/catalog"
)

type compatOptions struct {
	lensID   string
	cameraID string
	formatID string
}

func newCompatCmd(root *rootOptions) *cobra.Command {
	opts := &compatOptions{}
	cmd := &cobra.Command{
		Use:   "compat",
		Short: "Check whether a lens covers a camera's recording formats",
		Example: `  cinelens compat --lens arri-sp-18 --camera arri-alexa-35
  cinelens compat --lens arri-up-32 --format alexa35-46k-og`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompat(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.lensID, "lens", "", "lens id (required)")
	cmd.Flags().StringVar(&opts.cameraID, "camera", "", "camera id; checks every recording format")
	cmd.Flags().StringVar(&opts.formatID, "format", "", "recording format id")
	_ = cmd.MarkFlagRequired("lens")
	cmd.MarkFlagsOneRequired("camera", "format")
	cmd.MarkFlagsMutuallyExclusive("camera", "format")
	return cmd
}

func runCompat(cmd *cobra.Command, root *rootOptions, opts *compatOptions) error {
	settings, err := loadSettings(root)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cmd.Context(), settings)
	if err != nil {
		return err
	}
	engine := catalog.NewEngine(cat)

	var verdicts []catalog.FormatVerdict
	if opts.formatID != "" {
		v, err := engine.Compatibility(opts.lensID, opts.formatID)
		if err != nil {
			return err
		}
		verdicts = []catalog.FormatVerdict{v}
	} else {
		verdicts, err = engine.CameraCompatibility(opts.lensID, opts.cameraID)
		if err != nil {
			return err
		}
	}
	if len(verdicts) == 0 {
		return errors.New("camera has no recording formats")
	}

	lens, err := engine.Lens(opts.lensID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (image circle %s)\n", lens.DisplayName, orDash(lens.ImageCircle))
	return printVerdicts(cmd.OutOrStdout(), verdicts)
}

func printVerdicts(w io.Writer, verdicts []catalog.FormatVerdict) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FORMAT\tSTATUS\tREASON")
	for _, v := range verdicts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Format.RecordingFormatName, v.Verdict.Status, v.Verdict.Reason)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
