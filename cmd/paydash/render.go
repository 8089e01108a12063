package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	apphttp "paydash/internal/http"
)

var renderOutput string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the dashboard as a static HTML file",
	Long: `Renders the report once and writes a self-contained HTML page with the
charts inlined as SVG. The page works offline and without JavaScript.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "report.html", "output file, - for stdout")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RenderTimeout)
	defer cancel()

	res, err := rt.Service.Render(ctx)
	if err != nil {
		return userError(err)
	}

	write := func(out io.Writer) error {
		w := bufio.NewWriter(out)
		if err := apphttp.WriteStaticReport(ctx, w, res, rt.Theme); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		return nil
	}

	if renderOutput == "-" {
		return write(os.Stdout)
	}
	if err := writeFileAtomic(renderOutput, write); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d records, render %s)\n", renderOutput, res.Report.RecordCount, res.ID)
	return nil
}

// writeFileAtomic writes to a temporary file next to path and renames it over
// path only when write and close succeed. An existing report is left intact
// on failure.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
