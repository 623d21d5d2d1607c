package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"sustainapi/internal/dataset"
	"sustainapi/internal/query"
)

func newConvertCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Roll raw monthly rows up into the yearly processed CSV",
		Long: `Reads a raw export (building, month, year, energy in MMBtu, ...) and
writes one row per building and year with energy in kWh and the derived
water, waste and CO2 figures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(in, out, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "raw CSV to read")
	cmd.Flags().StringVar(&out, "out", "-", "processed CSV to write (- for stdout)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runConvert(in, out string, stdout io.Writer) (err error) {
	res, err := dataset.Load(in)
	if err != nil {
		return err
	}
	rows := dataset.Rollup(res.Records)

	w := stdout
	if out != "" && out != "-" {
		f, cerr := os.Create(out)
		if cerr != nil {
			return fmt.Errorf("create %s: %w", out, cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if err := dataset.WriteCSV(w, rows); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Printf("wrote %d rows for %d buildings", len(rows), len(query.Buildings(rows)))
	return nil
}
