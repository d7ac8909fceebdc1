package config

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/bookbinder/internal/theme"
)

// EntryKind discriminates the entry union.
type EntryKind string

const (
	KindManuscript EntryKind = "manuscript"
	KindContents   EntryKind = "contents"
	KindCover      EntryKind = "cover"
)

// ContentType classifies a manuscript source for dispatch.
type ContentType string

const (
	TypeMarkdown ContentType = "markdown"
	TypeHTML     ContentType = "html"
	TypeXHTML    ContentType = "xhtml"
	TypeOther    ContentType = "other"
)

// TocTransform post-processes generated table-of-contents markup before it
// is written. Set programmatically; not expressible in the yaml file.
type TocTransform func(markup string) (string, error)

// Entry is one content unit of the publication: a manuscript document or a
// generated contents/cover page. Entries are immutable inputs to one
// compile invocation.
type Entry struct {
	Kind        EntryKind
	Source      string // absolute; empty for generated entries
	Target      string // absolute path under the workspace
	ContentType ContentType
	Title       string
	Themes      []theme.Ref
	Rel         string // "", "contents", or "cover"

	// Contents entries.
	TocTitle     string
	SectionDepth int
	Transform    TocTransform
	// Template, when set, is compiled like a manuscript to produce the
	// generated page instead of the built-in skeleton.
	Template *Entry

	// Cover entries.
	CoverImageSrc string // absolute
	CoverImageAlt string
}

// Generated reports whether the entry is synthesized in phase 2 rather than
// compiled from a manuscript source in phase 1.
func (e *Entry) Generated() bool {
	return e.Kind == KindContents || e.Kind == KindCover
}

// Project is the resolved description of one publication: directory roots,
// the ordered entry list, the theme index, and manifest metadata. All paths
// are absolute.
type Project struct {
	Title              string
	Author             string
	Language           string
	ReadingProgression string

	// EntryContextDir is the source of truth and is never written to.
	EntryContextDir string
	// WorkspaceDir is the staging output tree, destroyed and rebuilt on
	// clean builds.
	WorkspaceDir string
	// ThemesDir is the theme cache; it may be nested under WorkspaceDir.
	ThemesDir    string
	ManifestPath string

	Entries []Entry
	// Themes indexes every theme reference used by any entry.
	Themes []theme.Ref

	// Asset synchronization patterns, relative to EntryContextDir.
	Includes []string
	Excludes []string

	// Outputs are configured export destinations checked by the overwrite
	// guard; the pipeline itself does not write them.
	Outputs []string
}

// DetectContentType classifies a source path by extension.
func DetectContentType(path string) ContentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return TypeMarkdown
	case ".html", ".htm":
		return TypeHTML
	case ".xhtml", ".xht":
		return TypeXHTML
	default:
		return TypeOther
	}
}
