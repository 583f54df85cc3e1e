package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tmclass/exsync/internal/config"
	"github.com/tmclass/exsync/internal/rules"
	"github.com/tmclass/exsync/internal/sync"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
	logFile   string
	noColor   bool

	// Sync command flags
	rootDir string
	dryRun  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "exsync",
	Short: "Derive the exercises tree of a class repository from its solutions",
	Long: `exsync mirrors the solutions directory of a teaching repository into its
exercises directory. Package and test files are rewritten so they refer to the
exercises package, other files are copied verbatim, and files that no longer
exist in solutions are removed from exercises.

Exercise modules themselves are written by hand and never touched.`,
	SilenceUsage: true,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize exercises with solutions",
	Long: `Sync walks <root>/solutions and makes <root>/exercises match it, creating,
rewriting and deleting entries as needed. Running it twice in a row makes no
changes the second time.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the built-in sync rules",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printRules(cmd.OutOrStdout(), rules.Default())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "exsync %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root>/"+config.DefaultFileName+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file, rotated by size")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored progress output")

	// Sync command flags
	syncCmd.Flags().StringVar(&rootDir, "root", ".", "repository root containing the solutions directory")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be done without making changes")

	// Add commands
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog := setupLogger(cfg.Log)
	defer closeLog()

	root, err := filepath.Abs(cfg.Paths.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve root %s: %w", cfg.Paths.Root, err)
	}
	logger.Debug("configuration loaded",
		"root", root,
		"source", cfg.Paths.Source,
		"target", cfg.Paths.Target)

	if noColor {
		color.NoColor = true
	}
	notifier := newConsoleNotifier(cmd.OutOrStdout())

	engine := sync.NewEngine(afero.NewOsFs(), rules.Default(), logger, notifier, dryRun)

	if _, err := engine.Run(filepath.Join(root, cfg.Paths.Source), root, cfg.Paths.Target); err != nil {
		logger.Error("sync failed", "error", err)
		return err
	}

	return nil
}

// loadConfig reads the config file if there is one, then applies flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config

	configPath := cfgFile
	if configPath == "" {
		candidate := filepath.Join(rootDir, config.DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", candidate, err)
		}
	}

	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	flags := cmd.Flags()
	if flags.Changed("root") || configPath == "" {
		cfg.Paths.Root = rootDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogger builds the logger and returns a func that releases its file, if any
func setupLogger(lc config.LogConfig) (*slog.Logger, func()) {
	// Parse log level
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Progress lines own stdout, logs go to stderr
	var w io.Writer = os.Stderr
	closeFn := func() {}
	if lc.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   lc.File,
			MaxSize:    1, // megabytes
			MaxBackups: 3,
		}
		w = io.MultiWriter(os.Stderr, rotating)
		closeFn = func() { _ = rotating.Close() }
	}

	// Create handler based on format
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if lc.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), closeFn
}

// consoleNotifier prints one colored progress line per action
type consoleNotifier struct {
	out    io.Writer
	colors map[sync.ActionKind]*color.Color
}

func newConsoleNotifier(out io.Writer) *consoleNotifier {
	return &consoleNotifier{
		out: out,
		colors: map[sync.ActionKind]*color.Color{
			sync.ActionCreateDir:   color.New(color.FgCyan),
			sync.ActionSynchronize: color.New(color.FgGreen),
			sync.ActionCopy:        color.New(color.FgBlue),
			sync.ActionDelete:      color.New(color.FgRed),
		},
	}
}

func (n *consoleNotifier) Notify(a sync.Action) {
	c, ok := n.colors[a.Kind]
	if !ok {
		_, _ = fmt.Fprintln(n.out, a.String())
		return
	}
	_, _ = c.Fprintln(n.out, a.String())
}

func printRules(w io.Writer, set *rules.Set) {
	list := func(items []string) string {
		items = lo.Compact(items)
		if len(items) == 0 {
			return "(none)"
		}
		return strings.Join(items, ", ")
	}

	_, _ = fmt.Fprintln(w, "Ignored:")
	_, _ = fmt.Fprintf(w, "  prefix:   %s\n", list([]string{set.Ignores.HiddenPrefix}))
	_, _ = fmt.Fprintf(w, "  names:    %s\n", list(set.Ignores.Names))
	_, _ = fmt.Fprintf(w, "  suffixes: %s\n", list(set.Ignores.Suffixes))

	_, _ = fmt.Fprintln(w, "Renamed directories:")
	for _, r := range set.Renames.Renames() {
		_, _ = fmt.Fprintf(w, "  %s -> %s\n", r.From, r.To)
	}

	_, _ = fmt.Fprintf(w, "Substitutions (in %s files, in order):\n", set.Templates.TextExt)
	for _, s := range set.Substitutions {
		_, _ = fmt.Fprintf(w, "  %q -> %q\n", s.Old, s.New)
	}

	_, _ = fmt.Fprintf(w, "Synced %s files:\n", set.Templates.TextExt)
	_, _ = fmt.Fprintf(w, "  names:  %s\n", list(set.Templates.AllowList))
	_, _ = fmt.Fprintf(w, "  prefix: %s\n", list([]string{set.Templates.TestPrefix}))
	_, _ = fmt.Fprintf(w, "  other %s files are exercise templates and are left alone\n", set.Templates.TextExt)
}
