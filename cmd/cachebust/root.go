package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eargollo/cachebust/internal/config"
	"github.com/eargollo/cachebust/internal/hash"
	"github.com/eargollo/cachebust/internal/journal"
	"github.com/eargollo/cachebust/internal/logging"
	"github.com/eargollo/cachebust/internal/rehash"
)

// NewRootCmd wires the cobra tree. The root command rewrites a document;
// history and undo work on the journal.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cachebust [index.html]",
		Short: "Embed content fingerprints in local script and stylesheet filenames",
		Long: `cachebust renames every local <script src> and <link rel="stylesheet" href>
file referenced by an HTML document to {name}.{fingerprint}.{ext}, where the
fingerprint is the first 8 hex characters of the file's SHA-256, and rewrites
the document to match. Running it again is a no-op until a file changes.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRewrite,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newHistoryCmd(),
		newUndoCmd(),
	)
	return root
}

// env is what every command needs: configuration, a logger and, when
// configured, the journal.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	journal *sql.DB
}

func (e *env) close() {
	if e.journal != nil {
		_ = e.journal.Close()
	}
	_ = e.log.Sync()
}

func (e *env) rehasher(cmd *cobra.Command) *rehash.Rehasher {
	return rehash.New(rehash.Options{
		Out:     cmd.OutOrStdout(),
		Logger:  e.log,
		Hasher:  hash.NewHasher(e.cfg.MaxHashesPerSecond()),
		Journal: e.journal,
		Exclude: e.cfg.ExcludePatterns(),
		DryRun:  e.cfg.DryRun(),
	})
}

// setup loads configuration from cmd's flags, builds the logger and opens the
// journal if one is configured. requireJournal fails early for commands that
// only make sense with one.
func setup(cmd *cobra.Command, requireJournal bool) (*env, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, err := logging.BuildLogger(cfg.LogLevel(), cfg.Env())
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	e := &env{cfg: cfg, log: logger}

	if !cfg.JournalEnabled() {
		if requireJournal {
			return nil, fmt.Errorf("%s needs a journal: set --%s or CACHEBUST_JOURNAL", cmd.Name(), config.KeyJournal)
		}
		return e, nil
	}
	dir := filepath.Dir(cfg.JournalPath())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal dir %q: %w", dir, err)
	}
	db, err := journal.Open(cfg.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("open journal %q: %w", cfg.JournalPath(), err)
	}
	if err := journal.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	e.journal = db
	return e, nil
}

func runRewrite(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()

	if len(args) == 1 {
		e.cfg.SetIndexPath(args[0])
	}
	_, err = e.rehasher(cmd).Process(cmd.Context(), e.cfg.IndexPath())
	return err
}
