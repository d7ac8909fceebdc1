package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	berrors "git.home.luguber.info/inful/bookbinder/internal/errors"
	"git.home.luguber.info/inful/bookbinder/internal/theme"
)

func TestLoad_ResolvesPathsAndEntryKinds(t *testing.T) {
	dir := t.TempDir()
	cfg := `
title: My Book
author: Jane Doe
language: en
output_dir: out
entries:
  - source: a.md
    title: Chapter 1
  - rel: contents
    target: toc.html
    toc_title: Contents
    section_depth: 2
  - rel: cover
    target: cover.html
    image: cover.png
    alt: The cover
`
	path := filepath.Join(dir, "book.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, dir, p.EntryContextDir)
	require.Equal(t, filepath.Join(dir, "out"), p.WorkspaceDir)
	require.Equal(t, filepath.Join(dir, "out", "themes"), p.ThemesDir)
	require.Equal(t, filepath.Join(dir, "out", "publication.json"), p.ManifestPath)

	require.Len(t, p.Entries, 3)
	require.Equal(t, KindManuscript, p.Entries[0].Kind)
	require.Equal(t, TypeMarkdown, p.Entries[0].ContentType)
	require.Equal(t, filepath.Join(dir, "out", "a.html"), p.Entries[0].Target)
	require.Equal(t, KindContents, p.Entries[1].Kind)
	require.Equal(t, 2, p.Entries[1].SectionDepth)
	require.Equal(t, KindCover, p.Entries[2].Kind)
	require.Equal(t, filepath.Join(dir, "cover.png"), p.Entries[2].CoverImageSrc)
}

func TestLoadWithOutput_OverridesDirAndDerivedPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := `
title: My Book
output_dir: out
entries:
  - source: a.md
`
	path := filepath.Join(dir, "book.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	p, err := LoadWithOutput(path, "elsewhere")
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "elsewhere"), p.WorkspaceDir)
	require.Equal(t, filepath.Join(dir, "elsewhere", "themes"), p.ThemesDir)
	require.Equal(t, filepath.Join(dir, "elsewhere", "publication.json"), p.ManifestPath)
}

func TestInit_WritesLoadableStarterConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookbinder.yaml")

	require.NoError(t, Init(path, false))

	// A second init without force must refuse to clobber.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	var f File
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &f))
	require.NotEmpty(t, f.Entries)
}

func TestResolve_ThemeSpecVariants(t *testing.T) {
	dir := t.TempDir()
	f := &File{
		Title: "T",
		Themes: []ThemeSpec{
			{URL: "https://example.com/theme.css"},
			{Path: "style.css"},
			{Package: "https://example.com/themes/classic.git"},
		},
		Entries: []EntrySpec{{Source: "a.md"}},
	}
	p, err := Resolve(f, dir)
	require.NoError(t, err)

	require.Len(t, p.Themes, 3)
	require.Equal(t, theme.KindURI, p.Themes[0].Kind)
	require.Equal(t, theme.KindFile, p.Themes[1].Kind)
	require.Equal(t, filepath.Join(dir, "style.css"), p.Themes[1].Source)
	require.Equal(t, theme.KindPackage, p.Themes[2].Kind)
	require.Equal(t, "classic", p.Themes[2].Name)
	require.Equal(t, theme.PackageDir(p.ThemesDir, "classic"), p.Themes[2].Location)

	// Entries without their own themes inherit the project list.
	require.Len(t, p.Entries[0].Themes, 3)
}

func TestResolve_DuplicateTargets_IsConfigError(t *testing.T) {
	f := &File{
		Title: "T",
		Entries: []EntrySpec{
			{Source: "a.md", Target: "same.html"},
			{Source: "b.md", Target: "same.html"},
		},
	}
	_, err := Resolve(f, t.TempDir())
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryConfig))
}

func TestResolve_BadRel_IsRejected(t *testing.T) {
	f := &File{
		Title:   "T",
		Entries: []EntrySpec{{Rel: "appendix", Target: "x.html"}},
	}
	_, err := Resolve(f, t.TempDir())
	require.Error(t, err)
}

func TestResolve_BadLanguageTag_IsConfigError(t *testing.T) {
	f := &File{
		Title:    "T",
		Language: "not a tag!",
		Entries:  []EntrySpec{{Source: "a.md"}},
	}
	_, err := Resolve(f, t.TempDir())
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryConfig))
}

func TestResolve_CoverWithoutImage_IsConfigError(t *testing.T) {
	f := &File{
		Title:   "T",
		Entries: []EntrySpec{{Rel: "cover", Target: "cover.html"}},
	}
	_, err := Resolve(f, t.TempDir())
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryConfig))
}

func TestResolve_NonDocumentTemplate_IsConfigError(t *testing.T) {
	f := &File{
		Title: "T",
		Entries: []EntrySpec{
			{Rel: "contents", Target: "toc.html", Template: "toc-template.pdf"},
		},
	}
	_, err := Resolve(f, t.TempDir())
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryConfig))
}

func TestDetectContentType(t *testing.T) {
	require.Equal(t, TypeMarkdown, DetectContentType("a.md"))
	require.Equal(t, TypeMarkdown, DetectContentType("a.markdown"))
	require.Equal(t, TypeHTML, DetectContentType("a.HTML"))
	require.Equal(t, TypeXHTML, DetectContentType("a.xhtml"))
	require.Equal(t, TypeOther, DetectContentType("a.pdf"))
}

func TestResolve_ContentsTemplateCompilesLikeManuscript(t *testing.T) {
	dir := t.TempDir()
	f := &File{
		Title: "T",
		Entries: []EntrySpec{
			{Source: "a.md"},
			{Rel: "contents", Target: "toc.html", Template: "toc-template.html"},
		},
	}
	p, err := Resolve(f, dir)
	require.NoError(t, err)

	tpl := p.Entries[1].Template
	require.NotNil(t, tpl)
	require.Equal(t, KindManuscript, tpl.Kind)
	require.Equal(t, filepath.Join(dir, "toc-template.html"), tpl.Source)
	require.Equal(t, p.Entries[1].Target, tpl.Target)
	require.Equal(t, TypeHTML, tpl.ContentType)
}
