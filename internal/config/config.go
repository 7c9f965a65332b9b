package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eargollo/cachebust/internal/logging"
)

// EnvPrefix is prepended to every key for environment lookup, e.g. CACHEBUST_LOG_LEVEL.
const EnvPrefix = "CACHEBUST"

// Keys double as flag names; dashes become underscores in env var names.
const (
	KeyIndex              = "index"
	KeyJournal            = "journal"
	KeyExclude            = "exclude"
	KeyDryRun             = "dry-run"
	KeyMaxHashesPerSecond = "max-hashes-per-second"
	KeyLogLevel           = "log-level"
	KeyEnv                = "env"
	KeyConfig             = "config"
)

// Default values when nothing else is set.
const (
	DefaultIndexPath  = "index.html"
	DefaultLogLevel   = "info"
	DefaultEnv        = "dev"
	DefaultConfigFile = ".cachebust.yaml"
)

// Config holds the rewrite configuration.
type Config struct {
	indexPath          string
	journalPath        string
	exclude            []string
	dryRun             bool
	maxHashesPerSecond int
	logLevel           string
	env                string
}

// RegisterFlags defines the configuration flags on fs. Only flags the user
// actually sets override env and config file values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyIndex, DefaultIndexPath, "HTML document to rewrite")
	fs.String(KeyJournal, "", "SQLite journal recording renames (empty disables history and undo)")
	fs.StringSlice(KeyExclude, nil, "comma-separated reference patterns to leave untouched (glob on base name or path segment)")
	fs.Bool(KeyDryRun, false, "report planned renames without touching files")
	fs.Int(KeyMaxHashesPerSecond, 0, "throttle fingerprinting (0 = unlimited)")
	fs.String(KeyLogLevel, DefaultLogLevel, "log level: debug, info, warn, error")
	fs.String(KeyEnv, DefaultEnv, `"dev" (console logs) or "prod" (JSON logs)`)
	fs.String(KeyConfig, "", "config file (default ./"+DefaultConfigFile+" when present)")
}

// Load merges defaults, config file, env vars and explicitly set flags.
// Final precedence (highest wins): flags > env > config file > defaults.
// fs may be nil. A .env file in the working directory is loaded first; real
// env vars win over it.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if fs != nil {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				_ = v.BindPFlag(f.Name, f)
			}
		})
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		indexPath:          strings.TrimSpace(v.GetString(KeyIndex)),
		journalPath:        strings.TrimSpace(v.GetString(KeyJournal)),
		exclude:            stringList(v, KeyExclude),
		dryRun:             v.GetBool(KeyDryRun),
		maxHashesPerSecond: v.GetInt(KeyMaxHashesPerSecond),
		logLevel:           strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		env:                strings.ToLower(strings.TrimSpace(v.GetString(KeyEnv))),
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyIndex, DefaultIndexPath)
	v.SetDefault(KeyJournal, "")
	v.SetDefault(KeyExclude, []string{})
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyMaxHashesPerSecond, 0)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyEnv, DefaultEnv)
	v.SetDefault(KeyConfig, "")
}

// readConfigFile merges the explicit config file, or DefaultConfigFile if it
// exists. A missing explicit file is an error; a missing default is not.
func readConfigFile(v *viper.Viper) error {
	path := strings.TrimSpace(v.GetString(KeyConfig))
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return nil
		}
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// stringList reads a list key. A plain string, as env vars always are, is
// split on commas like the flag value.
func stringList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return cleanList(strings.Split(s, ","))
	}
	return cleanList(v.GetStringSlice(key))
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validate(c *Config) error {
	var invalid []string
	if c.indexPath == "" {
		invalid = append(invalid, KeyIndex+" must not be empty")
	}
	if c.maxHashesPerSecond < 0 {
		invalid = append(invalid, KeyMaxHashesPerSecond+" must be >= 0")
	}
	if !logging.IsValidLogLevel(c.logLevel) {
		invalid = append(invalid, KeyLogLevel+" must be one of "+strings.Join(logging.ValidLogLevels, ", "))
	}
	if c.env != "dev" && c.env != "prod" {
		invalid = append(invalid, KeyEnv+` must be "dev" or "prod"`)
	}
	if len(invalid) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(invalid, ", "))
}

// IndexPath returns the HTML document to rewrite.
func (c *Config) IndexPath() string {
	return c.indexPath
}

// SetIndexPath overrides the document path (positional CLI argument).
func (c *Config) SetIndexPath(path string) {
	c.indexPath = path
}

// JournalPath returns the SQLite journal path; empty means no journal.
func (c *Config) JournalPath() string {
	return c.journalPath
}

// JournalEnabled reports whether renames are journaled.
func (c *Config) JournalEnabled() bool {
	return c.journalPath != ""
}

// ExcludePatterns returns reference patterns to leave untouched.
func (c *Config) ExcludePatterns() []string {
	return c.exclude
}

// DryRun reports whether files and the document must be left untouched.
func (c *Config) DryRun() bool {
	return c.dryRun
}

// MaxHashesPerSecond returns the fingerprint throttle (0 = unlimited).
func (c *Config) MaxHashesPerSecond() int {
	return c.maxHashesPerSecond
}

func (c *Config) LogLevel() string {
	return c.logLevel
}

func (c *Config) Env() string {
	return c.env
}
