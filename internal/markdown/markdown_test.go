package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_ProducesStandaloneDocument(t *testing.T) {
	out, err := Render([]byte("# Chapter One\n\nHello *world*.\n"), Options{
		Styles:   []string{"themes/classic/theme.css"},
		Title:    "Chapter One",
		Language: "en",
	})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "<!doctype html>")
	require.Contains(t, s, `<html lang="en">`)
	require.Contains(t, s, `<meta charset="utf-8">`)
	require.Contains(t, s, "<title>Chapter One</title>")
	require.Contains(t, s, `href="themes/classic/theme.css"`)
	require.Contains(t, s, "<h1>Chapter One</h1>")
	require.Contains(t, s, "<em>world</em>")
}

func TestRender_OmitsEmptyMetadata(t *testing.T) {
	out, err := Render([]byte("plain text"), Options{})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "<html>\n")
	require.NotContains(t, s, "<title>")
	require.NotContains(t, s, "stylesheet")
}

func TestRender_EscapesTitle(t *testing.T) {
	out, err := Render([]byte("x"), Options{Title: `A <b>"quoted"</b> title`})
	require.NoError(t, err)
	require.Contains(t, string(out), "&lt;b&gt;&#34;quoted&#34;&lt;/b&gt;")
}

func TestRender_GeneratorOptionEmitsMarkerMeta(t *testing.T) {
	out, err := Render([]byte("x"), Options{Generator: "bookbinder"})
	require.NoError(t, err)
	require.Contains(t, string(out), `<meta name="generator" content="bookbinder">`)

	out, err = Render([]byte("x"), Options{})
	require.NoError(t, err)
	require.NotContains(t, string(out), "generator")
}

func TestRender_StyleOrderPreserved(t *testing.T) {
	out, err := Render([]byte("x"), Options{Styles: []string{"a.css", "b.css"}})
	require.NoError(t, err)

	s := string(out)
	require.Less(t, strings.Index(s, "a.css"), strings.Index(s, "b.css"))
}
