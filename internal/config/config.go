// Package config loads and resolves the publication project description:
// directory roots, the ordered entry list, the theme index, and asset
// patterns. The resolved Project is read-only input to the pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/bookbinder/internal/theme"
)

// File mirrors the on-disk yaml configuration before resolution.
type File struct {
	Title              string `yaml:"title"`
	Author             string `yaml:"author,omitempty"`
	Language           string `yaml:"language,omitempty"`
	ReadingProgression string `yaml:"reading_progression,omitempty"`

	ContextDir   string `yaml:"context_dir,omitempty"`
	OutputDir    string `yaml:"output_dir,omitempty"`
	ThemesDir    string `yaml:"themes_dir,omitempty"`
	ManifestPath string `yaml:"manifest_path,omitempty"`

	Themes  []ThemeSpec `yaml:"themes,omitempty"`
	Entries []EntrySpec `yaml:"entries"`

	Includes []string `yaml:"includes,omitempty"`
	Excludes []string `yaml:"excludes,omitempty"`

	// Outputs are final export destinations (e.g. for a downstream
	// renderer). They are guarded against colliding with either root.
	Outputs []string `yaml:"outputs,omitempty"`
}

// ThemeSpec is one theme declaration. Exactly one of URL, Path, or Package
// should be set.
type ThemeSpec struct {
	URL         string   `yaml:"url,omitempty"`
	Path        string   `yaml:"path,omitempty"`
	Package     string   `yaml:"package,omitempty"`
	Name        string   `yaml:"name,omitempty"`
	ImportPaths []string `yaml:"import_paths,omitempty"`
}

// EntrySpec is one entry declaration.
type EntrySpec struct {
	Source       string      `yaml:"source,omitempty"`
	Target       string      `yaml:"target,omitempty"`
	Title        string      `yaml:"title,omitempty"`
	Rel          string      `yaml:"rel,omitempty"`
	Themes       []ThemeSpec `yaml:"themes,omitempty"`
	TocTitle     string      `yaml:"toc_title,omitempty"`
	SectionDepth int         `yaml:"section_depth,omitempty"`
	Template     string      `yaml:"template,omitempty"`
	Image        string      `yaml:"image,omitempty"`
	Alt          string      `yaml:"alt,omitempty"`
}

// Load reads the yaml file at path and resolves it into a Project rooted at
// the file's directory. The result has been validated.
func Load(path string) (*Project, error) {
	return LoadWithOutput(path, "")
}

// LoadWithOutput is Load with the configured output directory replaced
// before resolution, so the themes dir and manifest path follow the
// override.
func LoadWithOutput(path, outputDir string) (*Project, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	// Derived defaults (themes dir, manifest path) recompute from the
	// override during resolution; explicit settings are kept.
	if outputDir != "" {
		f.OutputDir = outputDir
	}
	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration directory: %w", err)
	}
	return Resolve(&f, base)
}

// Resolve turns a parsed configuration file into an absolute-path Project.
func Resolve(f *File, baseDir string) (*Project, error) {
	p := &Project{
		Title:              f.Title,
		Author:             f.Author,
		Language:           f.Language,
		ReadingProgression: f.ReadingProgression,
		Includes:           append([]string(nil), f.Includes...),
		Excludes:           append([]string(nil), f.Excludes...),
	}

	for _, out := range f.Outputs {
		p.Outputs = append(p.Outputs, absJoin(baseDir, out))
	}

	p.EntryContextDir = absJoin(baseDir, valueOr(f.ContextDir, "."))
	p.WorkspaceDir = absJoin(baseDir, valueOr(f.OutputDir, "output"))
	p.ThemesDir = absJoin(baseDir, valueOr(f.ThemesDir, filepath.Join(valueOr(f.OutputDir, "output"), "themes")))
	p.ManifestPath = absJoin(p.WorkspaceDir, valueOr(f.ManifestPath, "publication.json"))

	projectThemes, err := resolveThemes(f.Themes, p)
	if err != nil {
		return nil, err
	}

	for i := range f.Entries {
		entry, err := resolveEntry(&f.Entries[i], p, projectThemes)
		if err != nil {
			return nil, err
		}
		p.Entries = append(p.Entries, entry)
	}

	p.Themes = collectThemeIndex(p.Entries)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func resolveThemes(specs []ThemeSpec, p *Project) ([]theme.Ref, error) {
	refs := make([]theme.Ref, 0, len(specs))
	for i := range specs {
		ref, err := resolveThemeSpec(&specs[i], p)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func resolveThemeSpec(s *ThemeSpec, p *Project) (theme.Ref, error) {
	switch {
	case s.URL != "":
		return theme.NewURI(s.URL), nil
	case s.Path != "":
		src := absJoin(p.EntryContextDir, s.Path)
		loc := filepath.Join(theme.FileDir(p.ThemesDir), filepath.Base(src))
		return theme.NewFile(src, loc), nil
	case s.Package != "":
		name := s.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(s.Package), ".git")
		}
		loc := theme.PackageDir(p.ThemesDir, name)
		return theme.NewPackage(s.Package, name, loc, s.ImportPaths...), nil
	}
	return theme.Ref{}, fmt.Errorf("theme declaration needs one of url, path, or package")
}

func resolveEntry(s *EntrySpec, p *Project, projectThemes []theme.Ref) (Entry, error) {
	e := Entry{
		Title:         s.Title,
		Rel:           s.Rel,
		TocTitle:      s.TocTitle,
		SectionDepth:  s.SectionDepth,
		CoverImageAlt: s.Alt,
	}

	switch s.Rel {
	case "":
		e.Kind = KindManuscript
	case "contents":
		e.Kind = KindContents
	case "cover":
		e.Kind = KindCover
	default:
		return Entry{}, fmt.Errorf("entry %s: rel must be contents or cover, got %q", s.Target, s.Rel)
	}

	if s.Source != "" {
		e.Source = absJoin(p.EntryContextDir, s.Source)
		e.ContentType = DetectContentType(e.Source)
	}

	target := s.Target
	if target == "" && s.Source != "" {
		target = defaultTarget(s.Source)
	}
	if target == "" {
		return Entry{}, fmt.Errorf("entry with rel %q needs a target", s.Rel)
	}
	e.Target = absJoin(p.WorkspaceDir, target)

	if s.Image != "" {
		e.CoverImageSrc = absJoin(p.EntryContextDir, s.Image)
	}

	if len(s.Themes) > 0 {
		refs, err := resolveThemes(s.Themes, p)
		if err != nil {
			return Entry{}, err
		}
		e.Themes = refs
	} else {
		e.Themes = projectThemes
	}

	if s.Template != "" {
		src := absJoin(p.EntryContextDir, s.Template)
		e.Template = &Entry{
			Kind:        KindManuscript,
			Source:      src,
			Target:      e.Target,
			ContentType: DetectContentType(src),
			Title:       e.Title,
			Themes:      e.Themes,
		}
	}

	return e, nil
}

// defaultTarget maps a markdown source to its compiled html name; other
// sources keep their name.
func defaultTarget(source string) string {
	switch DetectContentType(source) {
	case TypeMarkdown:
		ext := filepath.Ext(source)
		return source[:len(source)-len(ext)] + ".html"
	default:
		return source
	}
}

// collectThemeIndex gathers the distinct theme references used by any entry,
// keyed by kind and location, preserving first-seen order.
func collectThemeIndex(entries []Entry) []theme.Ref {
	seen := make(map[string]struct{})
	var out []theme.Ref
	for i := range entries {
		for _, ref := range entries[i].Themes {
			key := string(ref.Kind) + "\x00" + ref.Location
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}

// Init writes a starter configuration file. It refuses to overwrite an
// existing file unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := File{
		Title:    "My Publication",
		Author:   "Author Name",
		Language: "en",
		Themes: []ThemeSpec{
			{URL: "https://example.com/styles/book.css"},
		},
		Entries: []EntrySpec{
			{Rel: "cover", Target: "cover.html", Image: "images/cover.png", Alt: "Cover"},
			{Rel: "contents", Target: "toc.html", TocTitle: "Table of Contents"},
			{Source: "chapter1.md", Title: "Chapter 1"},
			{Source: "chapter2.md", Title: "Chapter 2"},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example configuration: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

func absJoin(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
