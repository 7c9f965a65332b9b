// Package rehash rewrites a document's local script and stylesheet references
// so each filename embeds the content fingerprint of the file, renaming the
// files to match.
package rehash

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eargollo/cachebust/internal/asset"
	"github.com/eargollo/cachebust/internal/document"
	"github.com/eargollo/cachebust/internal/exclude"
	"github.com/eargollo/cachebust/internal/hash"
	"github.com/eargollo/cachebust/internal/journal"
)

// Options configures a Rehasher. The zero value rewrites for real, prints
// warnings to stdout, logs nothing and keeps no journal.
type Options struct {
	Out     io.Writer    // missing-file warnings; nil means os.Stdout
	Logger  *zap.Logger  // nil means no logging
	Hasher  *hash.Hasher // nil means unthrottled
	Journal *sql.DB      // migrated journal; nil disables history and undo
	Exclude []string     // patterns in addition to the document's .cachebustignore
	DryRun  bool
}

// Rehasher rewrites documents. It holds no per-document state; each Process
// call is an independent run.
type Rehasher struct {
	out     io.Writer
	log     *zap.Logger
	hasher  *hash.Hasher
	journal *sql.DB
	exclude []string
	dryRun  bool
}

// New returns a Rehasher for opts.
func New(opts Options) *Rehasher {
	r := &Rehasher{
		out:     opts.Out,
		log:     opts.Logger,
		hasher:  opts.Hasher,
		journal: opts.Journal,
		exclude: opts.Exclude,
		dryRun:  opts.DryRun,
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	r.log = r.log.Named("rehash")
	return r
}

// Process rewrites the document at indexPath: every local <script src> and
// <link rel="stylesheet" href> whose file exists is renamed to
// {base}.{fingerprint}.{ext} and the reference updated; the document is then
// saved in place. Missing files produce a warning and are skipped. Any other
// error aborts the run; renames already performed stay on disk.
func (r *Rehasher) Process(ctx context.Context, indexPath string) (*Report, error) {
	doc, err := document.Load(indexPath)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	patterns, err := exclude.PatternsForDocument(indexPath, r.exclude)
	if err != nil {
		return nil, fmt.Errorf("load exclude file: %w", err)
	}

	report := &Report{IndexPath: indexPath, DryRun: r.dryRun}
	if report.RunID, err = r.beginRun(ctx, indexPath, doc.Source()); err != nil {
		return nil, err
	}

	p := &pass{
		Rehasher: r,
		dir:      filepath.Dir(indexPath),
		patterns: patterns,
		runID:    report.RunID,
		renamed:  make(map[string]string),
	}
	for _, ref := range asset.Collect(doc) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := p.reference(ctx, ref)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)
	}

	if r.dryRun {
		r.log.Info("dry run, document not written",
			zap.String("document", indexPath),
			zap.Int("would_rename", report.Count(Renamed)),
			zap.Int("missing", report.Count(Missing)))
		return report, nil
	}

	if err := doc.Save(indexPath); err != nil {
		return report, fmt.Errorf("write document: %w", err)
	}
	if report.RunID != 0 {
		if err := journal.CompleteRun(ctx, r.journal, report.RunID); err != nil {
			return report, fmt.Errorf("journal: complete run %d: %w", report.RunID, err)
		}
	}
	r.log.Info("document rewritten",
		zap.String("document", indexPath),
		zap.Int("renamed", report.Count(Renamed)),
		zap.Int("unchanged", report.Count(Unchanged)),
		zap.Int("missing", report.Count(Missing)),
		zap.Int("excluded", report.Count(Excluded)))
	return report, nil
}

// beginRun records a new journal run and reports earlier runs of the same
// document that never completed. Returns 0 when not journaling.
func (r *Rehasher) beginRun(ctx context.Context, indexPath string, original []byte) (int64, error) {
	if r.journal == nil || r.dryRun {
		return 0, nil
	}
	abs, err := filepath.Abs(indexPath)
	if err != nil {
		return 0, err
	}
	run, err := journal.CreateRun(ctx, r.journal, abs, original)
	if err != nil {
		return 0, fmt.Errorf("journal: create run: %w", err)
	}
	stale, err := journal.IncompleteRuns(ctx, r.journal, abs, run.ID)
	if err != nil {
		return 0, fmt.Errorf("journal: incomplete runs: %w", err)
	}
	for _, s := range stale {
		renames, err := journal.ListRenames(ctx, r.journal, s.ID)
		if err != nil {
			return 0, fmt.Errorf("journal: renames of run %d: %w", s.ID, err)
		}
		r.log.Warn("previous run was interrupted before the document was saved; its renames are still on disk",
			zap.Int64("run", s.ID),
			zap.Time("started", s.CreatedAt),
			zap.Int("renames", len(renames)))
	}
	return run.ID, nil
}

// pass is the state of one Process call.
type pass struct {
	*Rehasher
	dir      string
	patterns []string
	runID    int64
	renamed  map[string]string // resolved old path -> new path, this run
}

func (p *pass) reference(ctx context.Context, ref asset.Reference) (Result, error) {
	res := Result{Ref: ref}
	if exclude.Match(ref.Path, p.patterns) {
		p.log.Debug("excluded", zap.String("ref", ref.Path))
		res.Outcome = Excluded
		return res, nil
	}

	res.Path = resolve(p.dir, ref.Path)

	// A second reference to a file this run already renamed follows the rename.
	if newPath, ok := p.renamed[res.Path]; ok {
		res.NewPath = newPath
		res.Outcome = Renamed
		return res, p.rewrite(ref, newPath)
	}

	if _, err := os.Stat(res.Path); err != nil {
		fmt.Fprintf(p.out, "Warning: File %s does not exist.\n", res.Path)
		res.Outcome = Missing
		return res, nil
	}

	fp, err := p.hasher.Fingerprint(ctx, res.Path)
	if err != nil {
		return res, fmt.Errorf("fingerprint %s: %w", res.Path, err)
	}
	res.Fingerprint = fp
	name := asset.Decompose(res.Path)
	res.NewPath = name.WithHash(fp)
	if res.NewPath == res.Path {
		p.log.Debug("up to date", zap.String("path", res.Path))
		res.Outcome = Unchanged
		return res, nil
	}
	res.Outcome = Renamed

	if p.dryRun {
		p.log.Info("would rename", zap.String("from", res.Path), zap.String("to", res.NewPath))
		return res, nil
	}
	if err := os.Rename(res.Path, res.NewPath); err != nil {
		return res, fmt.Errorf("rename: %w", err)
	}
	p.renamed[res.Path] = res.NewPath
	fields := []zap.Field{zap.String("from", res.Path), zap.String("to", res.NewPath)}
	if name.HasHash() {
		fields = append(fields, zap.String("replaced", name.Hash))
	}
	p.log.Info("renamed", fields...)
	if err := p.record(ctx, res); err != nil {
		return res, err
	}
	return res, p.rewrite(ref, res.NewPath)
}

// rewrite points ref at newPath, relative to the document directory.
func (p *pass) rewrite(ref asset.Reference, newPath string) error {
	rel, err := filepath.Rel(p.dir, newPath)
	if err != nil {
		return fmt.Errorf("relative path for %s: %w", newPath, err)
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(ref.Path, "/") {
		rel = "/" + rel
	}
	ref.Set(rel)
	return nil
}

func (p *pass) record(ctx context.Context, res Result) error {
	if p.runID == 0 {
		return nil
	}
	oldAbs, err := filepath.Abs(res.Path)
	if err != nil {
		return err
	}
	newAbs, err := filepath.Abs(res.NewPath)
	if err != nil {
		return err
	}
	if err := journal.InsertRename(ctx, p.journal, p.runID, oldAbs, newAbs, res.Fingerprint); err != nil {
		return fmt.Errorf("journal: record rename of %s: %w", res.Path, err)
	}
	return nil
}

// resolve joins a document reference onto the document directory. A leading
// slash is taken as the document root, not the filesystem root.
func resolve(dir, ref string) string {
	return filepath.Join(dir, filepath.FromSlash(ref))
}
