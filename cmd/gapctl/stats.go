package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

func statsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print assessment progress overall and per phase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Workspace.Reload(cmd.Context()); err != nil {
				return err
			}
			stats, err := app.Dashboard.Stats()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			return printStats(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")
	return cmd
}

func printStats(w io.Writer, stats domain.ProgressStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tTOTAL\tCAPTURED\tNEEDS ADDITION\tEDIT REQUESTED\tINVESTIGATION\tNOT ASSESSED")
	writeStatsRow(tw, "all", stats.PhaseStats)
	writeStatsRow(tw, "front", stats.ByPhase.Front)
	writeStatsRow(tw, "middle", stats.ByPhase.Middle)
	writeStatsRow(tw, "back", stats.ByPhase.Back)
	fmt.Fprintf(tw, "\nassessed %d of %d (%d%%)\n", stats.Assessed, stats.Total, stats.PercentComplete)
	return tw.Flush()
}

func writeStatsRow(w io.Writer, scope string, s domain.PhaseStats) {
	fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
		scope, s.Total, s.CurrentlyCaptured, s.NeedsAddition, s.EditRequested, s.Investigation, s.NotAssessed)
}
