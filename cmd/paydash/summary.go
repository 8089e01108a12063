package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"paydash/internal/core"
	"paydash/internal/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print headline metrics and the user ranking",
	Long:  `Reads the records file and prints the headline metrics and the per-user ranking table.`,
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
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

	printSummary(cmd.OutOrStdout(), res.Records)
	return nil
}

func printSummary(w io.Writer, records []core.PaymentRecord) {
	m := report.Headline(records)
	mean := "—"
	if m.HasData {
		mean = core.FormatAmount(m.Mean)
	}

	fmt.Fprintf(w, "Total Users:          %d\n", m.Users)
	fmt.Fprintf(w, "Total Amount:         %s\n", core.FormatAmount(m.Total))
	fmt.Fprintf(w, "Average Daily Amount: %s\n", mean)

	rows := report.Ranking(records)
	if len(rows) == 0 {
		fmt.Fprintln(w, "\nNo records found")
		return
	}

	line := strings.Repeat("-", 78)
	fmt.Fprintln(w, "\nUser Rankings:")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "%-20s  %14s  %14s  %14s  %7s\n", "Username", "Total", "Average", "Max", "Entries")
	fmt.Fprintln(w, line)
	for _, s := range rows {
		fmt.Fprintf(w, "%-20s  %14s  %14s  %14s  %7d\n",
			s.Username, core.FormatAmount(s.Total), core.FormatAmount(s.Mean), core.FormatAmount(s.Max), s.Count)
	}
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Total: %s (%d records)\n", core.FormatAmount(m.Total), len(records))
}
