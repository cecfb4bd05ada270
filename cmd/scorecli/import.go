package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"scoreboard/internal/dataset"
	"scoreboard/internal/report"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newImportCmd(env *cliEnv) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a JSON or .xlsx dataset in Postgres (requires --source postgres)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, ok := env.src.(*dataset.PostgresSource)
			if !ok {
				return errors.New("import needs the postgres data source")
			}
			b, err := readDatasetFile(cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = datasetName(args[0])
			}
			recs := dataset.Coerce(b)
			if err := pg.Put(cmd.Context(), name, b); err != nil {
				return fmt.Errorf("import %s: %w", name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("stored %s (%d records)", name, len(recs)))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "dataset name, defaults to the file name with a .json extension")
	return cmd
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <file.xlsx>",
		Short: "Print the first sheet of a workbook as a JSON dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readDatasetFile(cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, b, "", "  "); err != nil {
				return err
			}
			out.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}
}

// readDatasetFile returns JSON bytes for a .json file as-is or for a .xlsx
// workbook after conversion. Import problems are reported on stderr.
func readDatasetFile(stderr io.Writer, path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		b, rep, err := report.ImportWorkbook(f)
		if err != nil {
			return nil, err
		}
		for _, e := range rep.Errors {
			fmt.Fprintln(stderr, color.YellowString("row %d: %s", e.Row, e.Error))
		}
		return b, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}
	return b, nil
}

func datasetName(path string) string {
	base := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(base), ".xlsx") {
		return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
	}
	return base
}
