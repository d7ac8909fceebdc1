package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbinder/internal/config"
	berrors "git.home.luguber.info/inful/bookbinder/internal/errors"
)

func testProject(t *testing.T) *config.Project {
	t.Helper()
	return &config.Project{
		Title:           "My Book",
		Author:          "Jane Doe",
		Language:        "en",
		EntryContextDir: t.TempDir(),
		WorkspaceDir:    t.TempDir(),
	}
}

func TestGenerate_ReadingOrderIsOrderPreservingAndComplete(t *testing.T) {
	p := testProject(t)
	refs := []EntryRef{
		{Title: "Cover", Path: "cover.html", Rel: "cover"},
		{Title: "Contents", Path: "toc.html", Rel: "contents"},
		{Title: "Chapter 1", Path: "a.html"},
		{Path: "data.bin", EncodingFormat: "other"},
	}

	m, diags := Generate(p, refs, time.Now())
	require.Empty(t, diags)
	require.Len(t, m.ReadingOrder, len(refs))
	for i, ref := range refs {
		require.Equal(t, ref.Path, m.ReadingOrder[i].URL)
	}
	// LinkedResource tags only on contents/cover rels.
	require.Equal(t, "LinkedResource", m.ReadingOrder[0].Type)
	require.Equal(t, "LinkedResource", m.ReadingOrder[1].Type)
	require.Empty(t, m.ReadingOrder[2].Type)
}

func TestGenerate_OptionalFieldsOmittedNeverNull(t *testing.T) {
	p := testProject(t)
	p.Author = ""
	p.Language = ""
	m, _ := Generate(p, []EntryRef{{Path: "a.html"}}, time.Now())

	data, err := json.Marshal(m)
	require.NoError(t, err)
	s := string(data)
	require.NotContains(t, s, `"author"`)
	require.NotContains(t, s, `"inLanguage"`)
	require.NotContains(t, s, `"name":""`)
	require.NotContains(t, s, "null")
	// Empty collections stay as arrays.
	require.Contains(t, s, `"resources":[]`)
	require.Contains(t, s, `"links":[]`)
}

func TestGenerate_CoverResourceWithSniffedMIME(t *testing.T) {
	p := testProject(t)
	img := filepath.Join(p.EntryContextDir, "images", "cover.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(img), 0o750))
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n"), 0o644))
	p.Entries = []config.Entry{{
		Kind:          config.KindCover,
		Target:        filepath.Join(p.WorkspaceDir, "cover.html"),
		CoverImageSrc: img,
	}}

	m, diags := Generate(p, []EntryRef{{Path: "cover.html", Rel: "cover"}}, time.Now())
	require.Empty(t, diags)
	require.Len(t, m.Resources, 1)
	require.Equal(t, "images/cover.png", m.Resources[0].URL)
	require.Equal(t, "cover", m.Resources[0].Rel)
	require.Equal(t, "image/png", m.Resources[0].EncodingFormat)
}

func TestGenerate_UndetectableCoverMIMEWarnsAndDrops(t *testing.T) {
	p := testProject(t)
	// No extension, no file on disk: both sniffing strategies fail.
	p.Entries = []config.Entry{{
		Kind:          config.KindCover,
		Target:        filepath.Join(p.WorkspaceDir, "cover.html"),
		CoverImageSrc: filepath.Join(p.EntryContextDir, "mystery-image"),
	}}

	m, diags := Generate(p, []EntryRef{{Path: "cover.html", Rel: "cover"}}, time.Now())
	require.Len(t, diags, 1)
	require.Equal(t, "warning", diags[0].Severity)
	require.Empty(t, m.Resources)
}

func TestValidate_AcceptsWellFormedManifest(t *testing.T) {
	m, _ := Generate(testProject(t), []EntryRef{{Title: "A", Path: "a.html"}}, time.Now())
	require.NoError(t, m.Validate())
}

func TestValidate_RejectsEmptyReadingOrderURL(t *testing.T) {
	m, _ := Generate(testProject(t), []EntryRef{{Path: ""}}, time.Now())

	err := m.Validate()
	require.Error(t, err)
	be, ok := berrors.AsBinderError(err)
	require.True(t, ok)
	require.Equal(t, berrors.CategoryValidation, be.Category)
	require.NotEmpty(t, be.Detail, "validator detail blob must accompany the short message")
}

func TestWrite_NeverPersistsInvalidManifest(t *testing.T) {
	m, _ := Generate(testProject(t), []EntryRef{{Path: ""}}, time.Now())
	path := filepath.Join(t.TempDir(), "publication.json")

	require.Error(t, m.Write(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestWrite_EmitsIndentedStableJSON(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m, _ := Generate(testProject(t), []EntryRef{{Title: "A", Path: "a.html"}}, now)
	path := filepath.Join(t.TempDir(), "publication.json")

	require.NoError(t, m.Write(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	s := string(data)
	require.Contains(t, s, "  \"@context\"")
	require.Contains(t, s, `"dateModified": "2026-03-01T12:00:00Z"`)
	require.True(t, s[len(s)-1] == '\n')

	var round PublicationManifest
	require.NoError(t, json.Unmarshal(data, &round))
	require.Equal(t, "Book", round.Type)
	require.Equal(t, []Link{{URL: "a.html", Name: "A"}}, round.ReadingOrder)
}
