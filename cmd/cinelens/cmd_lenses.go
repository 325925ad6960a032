package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HerbHall/cinelens/internal/catalog"
)

type lensesOptions struct {
	search       string
	format       string
	focal        string
	lensFormat   string
	manufacturer string
	rental       string
	rentable     bool
	jsonOutput   bool
}

// query maps the flags onto the HTTP query parameters so both surfaces share
// one parser.
func (o *lensesOptions) query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("q", o.search)
	set("format", o.format)
	set("focal", o.focal)
	set("lens_format", o.lensFormat)
	set("manufacturer", o.manufacturer)
	set("rental", o.rental)
	if o.rentable {
		q.Set("rentable", strconv.FormatBool(true))
	}
	return q
}

func newLensesCmd(root *rootOptions) *cobra.Command {
	opts := &lensesOptions{}
	cmd := &cobra.Command{
		Use:   "lenses",
		Short: "Print the filtered catalog grouped by manufacturer and series",
		Example: `  cinelens lenses --focal wide --lens-format lf
  cinelens lenses --search "signature" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLenses(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.search, "search", "q", "", "search text (case and accent insensitive)")
	f.StringVar(&opts.format, "format", "", "exact lens format")
	f.StringVar(&opts.focal, "focal", "", "focal category: all, ultra_wide, wide, standard, tele, super_tele")
	f.StringVar(&opts.lensFormat, "lens-format", "", "coverage category: s16, s35, ff, vv, lf, mft, other")
	f.StringVar(&opts.manufacturer, "manufacturer", "", "manufacturer")
	f.StringVar(&opts.rental, "rental", "", "only lenses stocked by this rental house id")
	f.BoolVar(&opts.rentable, "rentable", false, "only lenses stocked by any rental house")
	f.BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of a table")
	return cmd
}

func runLenses(cmd *cobra.Command, root *rootOptions, opts *lensesOptions) error {
	criteria, err := catalog.ParseCriteria(opts.query())
	if err != nil {
		return err
	}
	settings, err := loadSettings(root)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cmd.Context(), settings)
	if err != nil {
		return err
	}

	groups, err := catalog.NewEngine(cat).Groups(criteria)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.GroupListResponse{Count: len(groups), Groups: groups})
	}
	return printGroups(out, groups)
}

func printGroups(w io.Writer, groups []catalog.LensGroup) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No lenses match.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	count := 0
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\n", g.Manufacturer)
		for _, s := range g.Series {
			fmt.Fprintf(tw, "  %s\n", s.Name)
			for _, l := range s.Lenses {
				fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\t%s\n",
					l.ID, l.DisplayName, l.FocalLength, l.Aperture, l.Format)
				count++
			}
		}
	}
	fmt.Fprintf(tw, "\n%d lenses\n", count)
	return tw.Flush()
}
