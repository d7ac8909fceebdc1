package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/bookbinder/internal/fsutil"
	"git.home.luguber.info/inful/bookbinder/internal/logfields"
	"git.home.luguber.info/inful/bookbinder/internal/theme"
)

// Manager handles workspace lifecycle for one compile invocation.
type Manager struct {
	entryContextDir string
	workspaceDir    string
	themesDir       string
}

// NewManager creates a workspace manager over the three directory roots.
func NewManager(entryContextDir, workspaceDir, themesDir string) *Manager {
	return &Manager{
		entryContextDir: entryContextDir,
		workspaceDir:    workspaceDir,
		themesDir:       themesDir,
	}
}

// Cleanup destroys the workspace directory for a fresh build.
//
// It refuses to ever delete the source tree: when the workspace equals or
// contains the entry context directory, cleanup is a no-op. When the theme
// cache is nested inside the workspace it is round-tripped through a
// temporary directory so installed theme packages survive the rebuild.
func (m *Manager) Cleanup() error {
	if fsutil.Contains(m.workspaceDir, m.entryContextDir) {
		slog.Debug("Workspace contains entry context; skipping cleanup", logfields.Workspace(m.workspaceDir))
		return nil
	}

	cacheNested := fsutil.Contains(m.workspaceDir, m.themesDir)
	cacheExists := false
	if cacheNested {
		if _, err := os.Stat(m.themesDir); err == nil {
			cacheExists = true
		}
	}

	if cacheNested && cacheExists {
		tempDir, err := os.MkdirTemp("", "bookbinder-themes-")
		if err != nil {
			return fmt.Errorf("failed to create temporary theme cache: %w", err)
		}
		defer func() { _ = os.RemoveAll(tempDir) }()

		if err := fsutil.CopyDir(m.themesDir, tempDir); err != nil {
			return fmt.Errorf("failed to preserve theme cache: %w", err)
		}
		if err := os.RemoveAll(m.workspaceDir); err != nil {
			return fmt.Errorf("failed to cleanup workspace: %w", err)
		}
		if err := fsutil.CopyDir(tempDir, m.themesDir); err != nil {
			return fmt.Errorf("failed to restore theme cache: %w", err)
		}
		slog.Info("Cleaned up workspace, theme cache preserved", logfields.Workspace(m.workspaceDir))
		return nil
	}

	if err := os.RemoveAll(m.workspaceDir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Info("Cleaned up workspace", logfields.Workspace(m.workspaceDir))
	return nil
}

// Prepare creates the workspace and theme cache directories, installs theme
// packages when the cache is missing any, and copies file themes into their
// canonical locations. Installation completes before Prepare returns;
// stylesheet resolution depends on the files it creates.
func (m *Manager) Prepare(ctx context.Context, installer theme.Installer, themes []theme.Ref) error {
	if err := os.MkdirAll(m.workspaceDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	if err := os.MkdirAll(m.themesDir, 0o750); err != nil {
		return fmt.Errorf("failed to create theme cache directory: %w", err)
	}

	if theme.NeedsInstall(themes) {
		if installer == nil {
			return fmt.Errorf("theme packages require installation but no installer is configured")
		}
		if err := installer.Install(ctx, themes, m.themesDir); err != nil {
			return err
		}
	}

	return theme.CopyFileThemes(themes)
}
