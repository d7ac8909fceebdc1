package htmlproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInject_AddsStylesTitleAndLanguage(t *testing.T) {
	src := []byte(`<!DOCTYPE html><html><head></head><body><p>Hi</p></body></html>`)

	out, err := Inject(src, Options{
		Styles:      []string{"theme.css"},
		Title:       "Chapter Two",
		Language:    "en",
		ContentType: "text/html;charset=utf-8",
	})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, `<html lang="en">`)
	require.Contains(t, s, "<title>Chapter Two</title>")
	require.Contains(t, s, `href="theme.css"`)
	require.Contains(t, s, `http-equiv="content-type"`)
	require.Contains(t, s, "<p>Hi</p>")
}

func TestInject_ReplacesExistingTitle(t *testing.T) {
	src := []byte(`<html><head><title>Old</title></head><body></body></html>`)

	out, err := Inject(src, Options{Title: "New"})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "<title>New</title>")
	require.NotContains(t, s, "Old")
	require.Equal(t, 1, strings.Count(s, "<title>"))
}

func TestInject_AppendsAfterAuthoredStylesheets(t *testing.T) {
	src := []byte(`<html><head><link rel="stylesheet" href="authored.css"></head><body></body></html>`)

	out, err := Inject(src, Options{Styles: []string{"injected.css"}})
	require.NoError(t, err)

	s := string(out)
	require.Less(t, strings.Index(s, "authored.css"), strings.Index(s, "injected.css"))
}

func TestInject_GeneratorOptionAddsMarkerMeta(t *testing.T) {
	src := []byte(`<html><head></head><body></body></html>`)

	out, err := Inject(src, Options{Generator: "bookbinder"})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, `name="generator"`)
	require.Contains(t, s, `content="bookbinder"`)
}

func TestInject_GeneratorOptionReplacesExistingMeta(t *testing.T) {
	src := []byte(`<html><head><meta name="generator" content="other-tool"></head><body></body></html>`)

	out, err := Inject(src, Options{Generator: "bookbinder"})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, `content="bookbinder"`)
	require.NotContains(t, s, "other-tool")
	require.Equal(t, 1, strings.Count(s, `name="generator"`))
}

func TestInject_SynthesizesHeadWhenMissing(t *testing.T) {
	src := []byte(`<p>bare fragment</p>`)

	out, err := Inject(src, Options{Title: "Fragment"})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "<title>Fragment</title>")
	require.Contains(t, s, "<p>bare fragment</p>")
}

func TestInject_NoMetadataLeavesBodyIntact(t *testing.T) {
	src := []byte(`<html><head></head><body><article id="x">text</article></body></html>`)

	out, err := Inject(src, Options{})
	require.NoError(t, err)
	require.Contains(t, string(out), `<article id="x">text</article>`)
}
