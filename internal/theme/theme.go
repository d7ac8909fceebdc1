// Package theme models the stylesheet bundles attached to publication
// documents and resolves them to paths usable from a consuming document.
//
// A theme is one of three kinds: an external URI, a local stylesheet file
// copied into the theme cache, or an installable package living under the
// cache's packages directory.
package theme

import "path/filepath"

// Kind discriminates the theme union.
type Kind string

const (
	KindURI     Kind = "uri"
	KindFile    Kind = "file"
	KindPackage Kind = "package"
)

// Ref is one resolved theme reference. Field use depends on Kind:
//
//   - KindURI: Location is the external URL, untouched by path math.
//   - KindFile: Source is the authored stylesheet, Location its canonical
//     place in the theme cache.
//   - KindPackage: Location is the package root directory in the cache,
//     Specifier the install source, Name the package name. ImportPaths, when
//     set, selects stylesheets inside the package explicitly; their order is
//     semantic (later entries override earlier ones in the concatenated
//     stylesheet list of a document).
type Ref struct {
	Kind        Kind
	Location    string
	Source      string
	Name        string
	Specifier   string
	ImportPaths []string
}

// NewURI creates an external URI theme reference.
func NewURI(location string) Ref {
	return Ref{Kind: KindURI, Location: location}
}

// NewFile creates a file theme reference.
func NewFile(source, location string) Ref {
	return Ref{Kind: KindFile, Source: source, Location: location}
}

// NewPackage creates a package theme reference rooted at location.
func NewPackage(specifier, name, location string, importPaths ...string) Ref {
	return Ref{Kind: KindPackage, Specifier: specifier, Name: name, Location: location, ImportPaths: importPaths}
}

// PackageDir returns the canonical cache directory for a named package theme.
func PackageDir(cacheDir, name string) string {
	return filepath.Join(cacheDir, "packages", name)
}

// FileDir returns the directory holding copied file themes inside the cache.
func FileDir(cacheDir string) string {
	return filepath.Join(cacheDir, "files")
}
