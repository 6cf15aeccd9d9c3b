package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"scribe/internal/ledger"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run ledger",
	}

	runsCmd.AddCommand(newRunsStatusCommand(ctx))
	runsCmd.AddCommand(newRunsFailedCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))

	return runsCmd
}

func newRunsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show run counts by status and kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(runCtx context.Context, store *ledger.Store) error {
				stats, err := store.Stats(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if stats.Total == 0 {
					fmt.Fprintln(out, "Ledger is empty")
					return nil
				}

				statusRows := make([][]string, 0, len(stats.ByStatus))
				for _, status := range []ledger.Status{ledger.StatusStart, ledger.StatusWorking, ledger.StatusDone, ledger.StatusFailed} {
					if count := stats.ByStatus[status]; count > 0 {
						statusRows = append(statusRows, []string{string(status), strconv.Itoa(count)})
					}
				}
				fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, statusRows, 2))

				kinds := make([]string, 0, len(stats.ByKind))
				for kind := range stats.ByKind {
					kinds = append(kinds, string(kind))
				}
				sort.Strings(kinds)
				kindRows := make([][]string, 0, len(kinds))
				for _, kind := range kinds {
					kindRows = append(kindRows, []string{kind, strconv.Itoa(stats.ByKind[ledger.Kind(kind)])})
				}
				fmt.Fprintln(out, renderTable([]string{"Kind", "Count"}, kindRows, 2))

				fmt.Fprintf(out, "Total runs: %d\n", stats.Total)
				return nil
			})
		},
	}
}

func newRunsFailedCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List failed runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(runCtx context.Context, store *ledger.Store) error {
				runs, err := store.FailedRuns(runCtx, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No failed runs")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						strconv.FormatInt(run.ID, 10),
						string(run.Kind),
						run.Identifier,
						run.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
						run.ErrorMessage,
					})
				}
				table := renderTable([]string{"ID", "Kind", "Identifier", "Updated", "Error"}, rows, 1)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of runs to list (0 lists all)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			return ctx.withStore(func(runCtx context.Context, store *ledger.Store) error {
				run, err := store.GetRun(runCtx, id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %d not found", id)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %d\n", run.ID)
				fmt.Fprintf(out, "Kind:        %s\n", run.Kind)
				fmt.Fprintf(out, "Identifier:  %s\n", run.Identifier)
				fmt.Fprintf(out, "Source:      %s\n", run.SourceRef)
				fmt.Fprintf(out, "Status:      %s\n", run.Status)
				fmt.Fprintf(out, "Started at:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "Updated at:  %s\n", run.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:       %s\n", run.ErrorMessage)
				}
				return nil
			})
		},
	}
}
