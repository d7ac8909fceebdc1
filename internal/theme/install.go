package theme

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	git "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/bookbinder/internal/fsutil"
	"git.home.luguber.info/inful/bookbinder/internal/logfields"
)

// NeedsInstall reports whether any package theme is missing from the
// cache. Each Ref.Location already names its canonical cache directory.
func NeedsInstall(refs []Ref) bool {
	for _, ref := range refs {
		if ref.Kind != KindPackage {
			continue
		}
		if _, err := os.Stat(ref.Location); err != nil {
			return true
		}
	}
	return false
}

// Installer materializes package themes into the theme cache. Installation
// must complete before any entry is compiled: stylesheet resolution depends
// on files it creates.
type Installer interface {
	Install(ctx context.Context, refs []Ref, cacheDir string) error
}

// GitInstaller installs package themes by cloning their specifier.
type GitInstaller struct {
	// Depth limits clone history; zero means full history.
	Depth int
}

// Install clones every package theme whose cache directory is missing.
// Already-installed packages are left untouched.
func (gi *GitInstaller) Install(ctx context.Context, refs []Ref, cacheDir string) error {
	for _, ref := range refs {
		if ref.Kind != KindPackage {
			continue
		}
		if _, err := os.Stat(ref.Location); err == nil {
			slog.Debug("Theme package already installed", logfields.Theme(ref.Name))
			continue
		}
		slog.Info("Installing theme package", logfields.Theme(ref.Name), logfields.URL(ref.Specifier))
		_, err := git.PlainCloneContext(ctx, ref.Location, false, &git.CloneOptions{
			URL:   ref.Specifier,
			Depth: gi.Depth,
		})
		if err != nil {
			return fmt.Errorf("failed to install theme package %s from %s: %w", ref.Name, ref.Specifier, err)
		}
	}
	return nil
}

// CopyFileThemes copies every file theme whose source differs from its
// canonical cache location into place, creating parent directories.
func CopyFileThemes(refs []Ref) error {
	for _, ref := range refs {
		if ref.Kind != KindFile {
			continue
		}
		if fsutil.SamePath(ref.Source, ref.Location) {
			continue
		}
		if err := fsutil.CopyFile(ref.Source, ref.Location); err != nil {
			return fmt.Errorf("failed to copy theme file %s: %w", ref.Source, err)
		}
		slog.Debug("Copied file theme into cache", logfields.Path(ref.Location))
	}
	return nil
}
