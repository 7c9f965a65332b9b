package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo [run-id]",
		Short: "Reverse a run: move renamed files back and restore the document",
		Long: `undo reverses the given run, or the newest run not yet undone. It refuses
to touch anything if a renamed file has since moved or an original name is taken.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID int64
			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid run id %q", args[0])
				}
				runID = id
			}

			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			run, err := e.rehasher(cmd).Undo(cmd.Context(), runID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %d undone, %s restored\n", run.ID, run.IndexPath)
			return nil
		},
	}
}
