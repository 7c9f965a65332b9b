package rehash

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eargollo/cachebust/internal/journal"
)

var (
	// ErrNoJournal is returned by Undo when the Rehasher keeps no journal.
	ErrNoJournal = errors.New("no journal configured")
	// ErrAlreadyUndone is returned when the requested run was already reversed.
	ErrAlreadyUndone = errors.New("run already undone")
	// ErrUndoConflict is returned when the files on disk no longer match the run.
	ErrUndoConflict = errors.New("files changed since the run")
)

// Undo reverses run runID (0 means the newest run not yet undone): renamed
// files are moved back in reverse order and the document is restored to its
// content before the run. Nothing is touched unless every renamed file is
// still at its new path and every original path is free.
func (r *Rehasher) Undo(ctx context.Context, runID int64) (*journal.Run, error) {
	if r.journal == nil {
		return nil, ErrNoJournal
	}
	var (
		run *journal.Run
		err error
	)
	if runID == 0 {
		run, err = journal.LatestRun(ctx, r.journal)
	} else {
		run, err = journal.GetRun(ctx, r.journal, runID)
	}
	if err != nil {
		return nil, err
	}
	if run.Undone() {
		return run, fmt.Errorf("run %d: %w", run.ID, ErrAlreadyUndone)
	}

	renames, err := journal.ListRenames(ctx, r.journal, run.ID)
	if err != nil {
		return run, fmt.Errorf("journal: renames of run %d: %w", run.ID, err)
	}
	for _, rn := range renames {
		if _, err := os.Stat(rn.NewPath); err != nil {
			return run, fmt.Errorf("%w: %s is gone", ErrUndoConflict, rn.NewPath)
		}
		if _, err := os.Stat(rn.OldPath); err == nil {
			return run, fmt.Errorf("%w: %s already exists", ErrUndoConflict, rn.OldPath)
		}
	}

	for i := len(renames) - 1; i >= 0; i-- {
		rn := renames[i]
		if err := os.Rename(rn.NewPath, rn.OldPath); err != nil {
			return run, fmt.Errorf("restore: %w", err)
		}
		r.log.Info("restored", zap.String("from", rn.NewPath), zap.String("to", rn.OldPath))
	}
	if err := os.WriteFile(run.IndexPath, run.Document, 0644); err != nil { // #nosec G306 -- web document
		return run, fmt.Errorf("restore document: %w", err)
	}
	if err := journal.MarkRunUndone(ctx, r.journal, run.ID); err != nil {
		return run, fmt.Errorf("journal: mark run %d undone: %w", run.ID, err)
	}
	r.log.Info("run undone", zap.Int64("run", run.ID), zap.String("document", run.IndexPath), zap.Int("renames", len(renames)))
	return run, nil
}
