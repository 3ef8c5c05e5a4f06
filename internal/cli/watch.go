package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jbovet/oxidized-skills/internal/audit"
	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/output"
)

var (
	watchStrict bool
	watchConfig string
)

const watchDebounce = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Re-run the audit whenever files in a skill directory change",
	Long: `Audit the skill once, then keep watching the directory and re-audit
after every change (debounced). Useful while editing a skill. Ctrl-C to
stop.

  oxidized-skills watch ./my-skill`,
	Args: cobra.ExactArgs(1),
	RunE: watchCommand,
}

func init() {
	watchCmd.Flags().BoolVar(&watchStrict, "strict", false, "Treat warnings as errors")
	watchCmd.Flags().StringVar(&watchConfig, "config", "", "Path to a custom configuration file")
	rootCmd.AddCommand(watchCmd)
}

func watchCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	if !fileExists(path) {
		fmt.Fprintf(os.Stderr, "Error: path does not exist: %s\n", path)
		os.Exit(2)
	}

	cfg, err := config.Load(watchConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if watchStrict {
		cfg.Strict.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	runOnce := func() {
		start := time.Now()
		report := audit.Run(ctx, path, cfg)
		writeTrail(&report, path, cfg.Strict.Enabled, time.Since(start))

		formatted, err := output.Render(&report, output.FormatPretty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Print(formatted)
		fmt.Fprintf(os.Stderr, "\nWatching %s for changes (Ctrl-C to stop)\n", path)
	}
	runOnce()

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "Stopped.")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New subdirectories are not covered by the initial walk.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, ev.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, runOnce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watch error: %v\n", err)
		}
	}
}

func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}
