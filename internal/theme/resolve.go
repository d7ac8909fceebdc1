package theme

import (
	"fmt"
	"os"
	"path/filepath"

	berrors "git.home.luguber.info/inful/bookbinder/internal/errors"
	"git.home.luguber.info/inful/bookbinder/internal/fsutil"
)

// Resolve maps a theme reference to one or more stylesheet paths usable from
// a document living in fromDir.
//
// URI themes resolve to the URI verbatim: they are external references, not
// filesystem paths. File and package themes resolve to paths relative to
// fromDir. Package themes with explicit import paths resolve each one under
// the package root, preserving order; without import paths the package
// manifest's style entry point is used.
func Resolve(ref Ref, fromDir string) ([]string, error) {
	switch ref.Kind {
	case KindURI:
		return []string{ref.Location}, nil
	case KindFile:
		rel, err := filepath.Rel(fromDir, ref.Location)
		if err != nil {
			return nil, berrors.Wrap(err, berrors.CategoryTheme, berrors.SeverityFatal,
				fmt.Sprintf("cannot relativize theme %s against %s", ref.Location, fromDir))
		}
		return []string{filepath.ToSlash(rel)}, nil
	case KindPackage:
		if len(ref.ImportPaths) > 0 {
			return resolveImportPaths(ref, fromDir)
		}
		return resolveStyleEntry(ref, fromDir)
	}
	return nil, berrors.Newf(berrors.CategoryInternal, berrors.SeverityFatal, "unknown theme kind %q", ref.Kind)
}

// resolveImportPaths resolves each declared import path against the package
// root, rejecting paths that escape the root or do not exist.
func resolveImportPaths(ref Ref, fromDir string) ([]string, error) {
	out := make([]string, 0, len(ref.ImportPaths))
	for _, imp := range ref.ImportPaths {
		abs := filepath.Join(ref.Location, imp)
		if !fsutil.Contains(ref.Location, abs) {
			return nil, berrors.NewConfigErrorf(
				"import path %q of theme package %s resolves outside the package root", imp, ref.Name)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, berrors.NewConfigErrorf(
				"import path %q of theme package %s does not exist", imp, ref.Name)
		}
		rel, err := filepath.Rel(fromDir, abs)
		if err != nil {
			return nil, berrors.Wrap(err, berrors.CategoryTheme, berrors.SeverityFatal,
				fmt.Sprintf("cannot relativize %s against %s", abs, fromDir))
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

// resolveStyleEntry reads the package manifest and resolves its style entry
// point (namespaced style field, then style, then main).
func resolveStyleEntry(ref Ref, fromDir string) ([]string, error) {
	meta, err := readPackageMeta(ref.Location)
	if err != nil {
		return nil, err
	}
	entry := meta.styleEntry()
	if entry == "" {
		return nil, berrors.NewConfigErrorf(
			"theme package %s declares no style entry point (expected bookbinder.theme.style, style, or main)", ref.Name)
	}
	abs := filepath.Join(ref.Location, entry)
	rel, err := filepath.Rel(fromDir, abs)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryTheme, berrors.SeverityFatal,
			fmt.Sprintf("cannot relativize %s against %s", abs, fromDir))
	}
	return []string{filepath.ToSlash(rel)}, nil
}

// ResolveAll concatenates the resolution of every reference in order.
// Later stylesheets override earlier ones when applied by a renderer.
func ResolveAll(refs []Ref, fromDir string) ([]string, error) {
	var out []string
	for _, ref := range refs {
		paths, err := Resolve(ref, fromDir)
		if err != nil {
			return nil, err
		}
		out = append(out, paths...)
	}
	return out, nil
}
