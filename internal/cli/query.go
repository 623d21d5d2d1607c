package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sustainapi/internal/dataset"
	"sustainapi/internal/query"
)

type queryOptions struct {
	building    string
	name        string
	year        int
	hasYear     bool
	aggregateBy string
	format      string
}

func newQueryCmd(global *globalOptions) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter or aggregate the data file without starting the server",
		Example: `  sustainapi query --building alderman --year 2022
  sustainapi query --name "Clark Hall"
  sustainapi query --aggregate-by metric_type --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			opts.hasYear = cmd.Flags().Changed("year")
			res, err := dataset.Load(cfg.DataFile)
			if err != nil {
				return err
			}
			return runQuery(res.Records, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.building, "building", "", "building name substring, case-insensitive")
	cmd.Flags().StringVar(&opts.name, "name", "", "exact building name, case-insensitive")
	cmd.Flags().IntVar(&opts.year, "year", 0, "exact year")
	cmd.Flags().StringVar(&opts.aggregateBy, "aggregate-by", "", `aggregate instead of listing: "year" or "metric_type"`)
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json or yaml")
	cmd.MarkFlagsMutuallyExclusive("building", "name")
	return cmd
}

func runQuery(records []dataset.Record, opts *queryOptions, w io.Writer) error {
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unsupported format %q (use json or yaml)", opts.format)
	}

	var year *int
	if opts.hasYear {
		y := opts.year
		year = &y
	}

	var (
		selected []dataset.Record
		err      error
	)
	if opts.name != "" {
		selected, err = query.LookupBuilding(records, opts.name, year)
		if err != nil {
			return err
		}
	} else {
		selected = query.Filter(records, query.Params{Building: opts.building, Year: year})
	}

	var out map[string]any
	if opts.aggregateBy != "" {
		by, err := query.ParseAggregateBy(opts.aggregateBy)
		if err != nil {
			return err
		}
		groups := query.Aggregate(selected, by)
		out = map[string]any{
			"aggregation": string(by),
			"count":       len(groups),
			"data":        groups,
		}
		if span, ok := query.Span(selected); ok {
			out["date_range"] = span
		}
	} else {
		out = map[string]any{
			"count": len(selected),
			"data":  selected,
		}
	}

	if opts.format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
