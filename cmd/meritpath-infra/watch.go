package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/meritpath/infra/internal/rules"
)

func newWatchCmd() *cobra.Command {
	var (
		debounce     time.Duration
		outputFormat string
		outputFile   string
		skipChecks   bool
	)

	cmd := &cobra.Command{
		Use:   "watch [package]",
		Short: "Rebuild on source file changes",
		Long: `Watch monitors the stack package for .go changes, debounces rapid
saves, and re-synthesizes. The stack rules run on each rebuild unless
--skip-checks is set.

Examples:
    meritpath-infra watch
    meritpath-infra watch -o template.json
    meritpath-infra watch --debounce 1s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(stackPackage(args), watchOptions{
				debounce:     debounce,
				outputFormat: outputFormat,
				outputFile:   outputFile,
				skipChecks:   skipChecks,
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format for build: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for build (default: none)")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip the stack rules on rebuild")

	return cmd
}

type watchOptions struct {
	debounce     time.Duration
	outputFormat string
	outputFile   string
	skipChecks   bool
}

func runWatch(pkg string, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dir, err := packageDir(pkg)
	if err != nil {
		return err
	}
	if err := addDirRecursive(watcher, dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	fmt.Printf("Watching: %s\n", dir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Running initial build...")
	rebuild(pkg, opts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	fmt.Println("\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".go") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// Debounce: reset the timer on each change.
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Printf("\n[%s] Change detected, rebuilding...\n", time.Now().Format("15:04:05"))
			rebuild(pkg, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

// packageDir resolves a package pattern to an absolute directory.
func packageDir(pkg string) (string, error) {
	pkg = strings.TrimSuffix(pkg, "/...")
	pkg = strings.TrimPrefix(pkg, "./")
	return filepath.Abs(pkg)
}

// addDirRecursive adds a directory and its subdirectories to the
// watcher, skipping hidden and vendor directories.
func addDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
			return filepath.SkipDir
		}
		if filepath.Base(path) == "vendor" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// rebuild synthesizes and reports. Errors are printed, not returned:
// the watch loop keeps running through broken intermediate states.
func rebuild(pkg string, opts watchOptions) {
	tmpl, _, err := synthesize(pkg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Build error: %v\n", err)
		return
	}

	if !opts.skipChecks {
		result := rules.Check(tmpl, rules.Options{})
		for _, f := range result.Findings {
			fmt.Println(formatFinding(f))
		}
		if len(result.Findings) > 0 {
			fmt.Printf("%d finding(s)\n", len(result.Findings))
		}
	}

	if opts.outputFile == "" {
		fmt.Printf("Build successful, %d resources\n", len(tmpl.Resources))
		return
	}

	data, err := encodeTemplate(tmpl, opts.outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		return
	}
	if err := os.WriteFile(opts.outputFile, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return
	}
	fmt.Printf("Build successful, wrote %s\n", opts.outputFile)
}
