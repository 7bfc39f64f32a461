package main

import (
	"fmt"
	"os"
	"strings"

	"history-graph/internal/render"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		year    string
		between string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the graph once and print queries, timeline and summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			manager, err := newManager(cfg)
			if err != nil {
				return err
			}
			src, cleanup, err := newSource(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := manager.Build(ctx, src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if year != "" {
				render.Edges(out, fmt.Sprintf("Countries in conflict during the year %s:", year), snap.Graph.ConflictsInYear(year))
				fmt.Fprintln(out)
			}
			if between != "" {
				a, b, ok := strings.Cut(between, ",")
				if !ok {
					return fmt.Errorf("--between wants two names separated by a comma, got %q", between)
				}
				a, b = strings.TrimSpace(a), strings.TrimSpace(b)
				render.Edges(out, fmt.Sprintf("Evolution of relations between %s and %s:", a, b), snap.Graph.Evolution(a, b))
				fmt.Fprintln(out)
			}
			render.Timeline(out, snap.Graph.Timeline())
			render.Summary(out, snap.Report())

			if len(snap.Skipped) > 0 {
				fmt.Fprintf(os.Stderr, "%d passage(s) skipped: %s\n", len(snap.Skipped), strings.Join(snap.Skipped, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&year, "year", "1965", "List edges dated to this year (empty to skip)")
	cmd.Flags().StringVar(&between, "between", "India,Pakistan", "List edges between two entities, comma separated (empty to skip)")
	return cmd
}
