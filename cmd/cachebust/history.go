package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eargollo/cachebust/internal/journal"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled runs and the renames they made",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()
			runs, err := journal.ListRuns(ctx, e.journal, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			fmt.Fprintf(out, "%-6s %-20s %-12s %s\n", "run", "started", "status", "document")
			fmt.Fprintf(out, "%-6s %-20s %-12s %s\n", "---", "-------", "------", "--------")
			for _, r := range runs {
				fmt.Fprintf(out, "%-6d %-20s %-12s %s\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), runStatus(&r), r.IndexPath)
				renames, err := journal.ListRenames(ctx, e.journal, r.ID)
				if err != nil {
					return err
				}
				dir := filepath.Dir(r.IndexPath)
				for _, rn := range renames {
					fmt.Fprintf(out, "  %s -> %s\n", relTo(dir, rn.OldPath), relTo(dir, rn.NewPath))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show (0 = all)")
	return cmd
}

func runStatus(r *journal.Run) string {
	switch {
	case r.Undone():
		return "undone"
	case r.Completed():
		return "completed"
	default:
		return "interrupted"
	}
}

// relTo shortens path for display; falls back to path when not relative to dir.
func relTo(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
