// Package assets discovers and mirrors static files (stylesheets, images,
// fonts) from the entry context directory into the workspace.
//
// Discovery applies two named rule sets with different scope. Strict ignores
// (explicit excludes plus computed patterns for generated outputs and entry
// template sources) apply to every pass. Weak ignores (package dependency
// directories, theme package example directories) apply only to the
// extension allow-list pass: an explicit include pattern can reach into a
// directory the weak set would otherwise hide.
package assets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/bookbinder/internal/config"
	"git.home.luguber.info/inful/bookbinder/internal/fsutil"
	"git.home.luguber.info/inful/bookbinder/internal/logfields"
)

// DefaultExtensions is the asset allow-list applied when no explicit include
// patterns cover a file.
var DefaultExtensions = []string{
	"css", "css.map", "png", "jpg", "jpeg", "svg", "gif", "webp", "apng",
	"ttf", "otf", "woff", "woff2",
}

// WeakIgnorePatterns hide dependency and example trees from the allow-list
// pass only.
var WeakIgnorePatterns = []string{
	"**/node_modules/**",
	"**/packages/*/example/**",
	"**/packages/*/examples/**",
}

// Glob returns the deduplicated set of asset paths relative to the entry
// context directory, in sorted order.
func Glob(p *config.Project) ([]string, error) {
	fsys := os.DirFS(p.EntryContextDir)
	strict := strictIgnores(p)

	matched := make(map[string]struct{})

	// Pass 1: extension allow-list under strict + weak ignores.
	for _, ext := range DefaultExtensions {
		pattern := "**/*." + ext
		files, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
		}
		for _, f := range files {
			if matchesAny(strict, f) || matchesAny(WeakIgnorePatterns, f) {
				continue
			}
			matched[f] = struct{}{}
		}
	}

	// Pass 2: explicit includes under strict ignores only. Weak ignores are
	// intentionally bypassed here.
	for _, pattern := range p.Includes {
		files, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to glob include %s: %w", pattern, err)
		}
		for _, f := range files {
			if matchesAny(strict, f) {
				continue
			}
			matched[f] = struct{}{}
		}
	}

	out := make([]string, 0, len(matched))
	for f := range matched {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, nil
}

// Copy mirrors each matched relative path from the entry context directory
// into the workspace, recreating directories. It is skipped entirely when
// the two roots are identical: there is nothing to synchronize.
func Copy(p *config.Project, files []string) error {
	if fsutil.SamePath(p.EntryContextDir, p.WorkspaceDir) {
		slog.Debug("Entry context equals workspace; skipping asset copy")
		return nil
	}
	for _, rel := range files {
		src := filepath.Join(p.EntryContextDir, filepath.FromSlash(rel))
		dst := filepath.Join(p.WorkspaceDir, filepath.FromSlash(rel))
		if err := fsutil.CopyFile(src, dst); err != nil {
			return err
		}
	}
	slog.Info("Synchronized assets", logfields.Count(len(files)))
	return nil
}

// strictIgnores assembles the always-applied ignore set: explicit excludes
// plus computed patterns for files the pipeline itself produces or consumes
// as templates.
func strictIgnores(p *config.Project) []string {
	patterns := append([]string(nil), p.Excludes...)

	addUnder := func(abs string) {
		if rel, ok := relUnder(p.EntryContextDir, abs); ok {
			patterns = append(patterns, rel)
		}
	}

	for i := range p.Entries {
		e := &p.Entries[i]
		// Targets already generated into the context tree (output-in-place
		// layouts) must not be re-copied as assets.
		addUnder(e.Target)
		if e.Template != nil {
			addUnder(e.Template.Source)
		}
	}
	addUnder(p.ManifestPath)

	if rel, ok := relUnder(p.EntryContextDir, p.ThemesDir); ok {
		patterns = append(patterns, rel, rel+"/**")
	}
	return patterns
}

func relUnder(root, abs string) (string, bool) {
	if abs == "" || !fsutil.Contains(root, abs) {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
