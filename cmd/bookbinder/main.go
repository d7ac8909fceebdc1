package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/bookbinder/internal/compile"
	"git.home.luguber.info/inful/bookbinder/internal/config"
	"git.home.luguber.info/inful/bookbinder/internal/fsutil"
	"git.home.luguber.info/inful/bookbinder/internal/logfields"
	"git.home.luguber.info/inful/bookbinder/internal/version"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"bookbinder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Build struct {
		Output string `short:"o" help:"Override the configured output directory"`
		Fresh  bool   `short:"f" help:"Discard the cached workspace before building"`
	} `cmd:"" help:"Compile the publication described by the configuration file"`

	Watch struct {
		Debounce time.Duration `help:"Quiet period before rebuilding after a change" default:"300ms"`
	} `cmd:"" help:"Rebuild the publication whenever a source file changes"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	// Optional .env for credentials used by theme package installs.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI, kong.Vars{"version": version.String()})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		if err := runBuild(CLI.Build.Output, CLI.Build.Fresh); err != nil {
			slog.Error("Build failed", logfields.Error(err))
			os.Exit(1)
		}
	case "watch":
		if err := runWatch(CLI.Watch.Debounce); err != nil {
			slog.Error("Watch failed", logfields.Error(err))
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("Configuration file written", logfields.Path(CLI.Config))
	}
}

func runBuild(outputDir string, fresh bool) error {
	p, err := config.LoadWithOutput(CLI.Config, outputDir)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := compile.Build(ctx, p, compile.Options{Fresh: fresh})
	if err != nil {
		return err
	}
	logReport(p, report)
	return nil
}

func runWatch(debounce time.Duration) error {
	p, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Warn("Failed to close file watcher", logfields.Error(err))
		}
	}()

	if err := watchTree(watcher, p); err != nil {
		return err
	}

	// Initial build before waiting for changes.
	if report, err := compile.Build(ctx, p, compile.Options{}); err != nil {
		slog.Error("Build failed", logfields.Error(err))
	} else {
		logReport(p, report)
	}

	slog.Info("Watching for changes", logfields.Path(p.EntryContextDir))

	var timer *time.Timer
	rebuild := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(p, ev) {
				continue
			}
			slog.Debug("Source changed", logfields.Path(ev.Name))
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := watcher.Add(ev.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
					}
				}
			}
			if timer == nil {
				timer = time.AfterFunc(debounce, func() { rebuild <- struct{}{} })
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", logfields.Error(err))
		case <-rebuild:
			timer = nil
			// Reload configuration so entry list changes are picked up.
			next, err := config.Load(CLI.Config)
			if err != nil {
				slog.Error("Configuration reload failed", logfields.Error(err))
				continue
			}
			p = next
			if report, err := compile.Build(ctx, p, compile.Options{}); err != nil {
				slog.Error("Build failed", logfields.Error(err))
			} else {
				logReport(p, report)
			}
		}
	}
}

// watchTree registers the context directory and all of its subdirectories,
// skipping the workspace when it is nested inside the context.
func watchTree(watcher *fsnotify.Watcher, p *config.Project) error {
	err := filepath.WalkDir(p.EntryContextDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if fsutil.Contains(p.WorkspaceDir, path) || fsutil.SamePath(p.WorkspaceDir, path) {
			return filepath.SkipDir
		}
		if strings.HasPrefix(d.Name(), ".") && path != p.EntryContextDir {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", p.EntryContextDir, err)
	}
	// The configuration file itself may live outside the context directory.
	if abs, err := filepath.Abs(CLI.Config); err == nil {
		if !fsutil.Contains(p.EntryContextDir, abs) {
			if err := watcher.Add(filepath.Dir(abs)); err != nil {
				slog.Warn("Failed to watch configuration directory", logfields.Path(abs), logfields.Error(err))
			}
		}
	}
	return nil
}

// relevantEvent filters out workspace writes, which would otherwise retrigger
// the build that produced them.
func relevantEvent(p *config.Project, ev fsnotify.Event) bool {
	if ev.Op.Has(fsnotify.Chmod) {
		return false
	}
	if fsutil.Contains(p.WorkspaceDir, ev.Name) || fsutil.SamePath(p.WorkspaceDir, ev.Name) {
		return false
	}
	return true
}

func logReport(p *config.Project, report *compile.Report) {
	for _, d := range report.Diagnostics {
		switch d.Severity {
		case "warning":
			slog.Warn(d.Message)
		default:
			slog.Info(d.Message)
		}
	}
	slog.Info("Publication compiled",
		logfields.BuildID(report.BuildID),
		logfields.Workspace(p.WorkspaceDir),
		slog.Int("compiled", report.CompiledEntries),
		slog.Int("generated", report.GeneratedEntries),
		slog.Int("assets", report.AssetsCopied),
		logfields.DurationMS(float64(report.End.Sub(report.Start).Nanoseconds())/1e6),
	)
}
