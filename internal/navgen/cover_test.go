package navgen

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/bookbinder/internal/config"
)

func coverProject(t *testing.T) *config.Project {
	t.Helper()
	return &config.Project{
		Title:           "My Book",
		EntryContextDir: filepath.Join(t.TempDir(), "src"),
		WorkspaceDir:    filepath.Join(t.TempDir(), "out"),
	}
}

func TestGenerateCover_ImageSrcUsesTwoStepRecomposition(t *testing.T) {
	p := coverProject(t)
	cover := config.Entry{
		Kind:          config.KindCover,
		Target:        filepath.Join(p.WorkspaceDir, "cover.html"),
		CoverImageSrc: filepath.Join(p.EntryContextDir, "images", "cover.png"),
		CoverImageAlt: "The cover",
	}

	markup, err := GenerateCover(p, &cover, Options{})
	require.NoError(t, err)
	require.Contains(t, markup, `src="images/cover.png"`)
	require.Contains(t, markup, `alt="The cover"`)
}

func TestGenerateCover_NestedTargetShiftsRelativeBase(t *testing.T) {
	p := coverProject(t)
	cover := config.Entry{
		Kind:          config.KindCover,
		Target:        filepath.Join(p.WorkspaceDir, "front", "cover.html"),
		CoverImageSrc: filepath.Join(p.EntryContextDir, "images", "cover.png"),
	}

	markup, err := GenerateCover(p, &cover, Options{})
	require.NoError(t, err)
	// Target sits one level below the workspace root, so the image reference
	// must climb one level back out.
	require.Contains(t, markup, `src="../images/cover.png"`)
}

func TestGenerateCover_TitleFallsBackToProjectThenDefault(t *testing.T) {
	p := coverProject(t)
	cover := config.Entry{
		Kind:          config.KindCover,
		Target:        filepath.Join(p.WorkspaceDir, "cover.html"),
		CoverImageSrc: filepath.Join(p.EntryContextDir, "cover.png"),
	}

	markup, err := GenerateCover(p, &cover, Options{})
	require.NoError(t, err)
	require.Contains(t, markup, "<title>My Book</title>")

	p.Title = ""
	markup, err = GenerateCover(p, &cover, Options{})
	require.NoError(t, err)
	require.Contains(t, markup, "<title>"+DefaultCoverTitle+"</title>")
}

func TestGenerateCover_CarriesMarkerAndStyles(t *testing.T) {
	p := coverProject(t)
	cover := config.Entry{
		Kind:          config.KindCover,
		Target:        filepath.Join(p.WorkspaceDir, "cover.html"),
		CoverImageSrc: filepath.Join(p.EntryContextDir, "cover.png"),
	}

	markup, err := GenerateCover(p, &cover, Options{Styles: []string{"themes/x.css"}, Language: "en"})
	require.NoError(t, err)
	require.True(t, IsGenerated(strings.NewReader(markup)))
	require.Contains(t, markup, `href="themes/x.css"`)
	require.Contains(t, markup, `lang="en"`)
}
