// Package manifest assembles, validates, and serializes the publication
// manifest: the JSON-LD descriptor of reading order, resources, and links.
// A manifest is never persisted unless it validates against the embedded
// publication-manifest schema.
package manifest

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/bookbinder/internal/config"
	"git.home.luguber.info/inful/bookbinder/internal/fsutil"
)

// ConformsTo identifies the profile this tool's manifests follow.
const ConformsTo = "https://git.home.luguber.info/inful/bookbinder/profile"

// DefaultContext is the JSON-LD context emitted on every manifest.
var DefaultContext = []string{
	"https://schema.org",
	"https://www.w3.org/ns/pub-context",
}

// Link is one reading-order, resource, or links element. Optional fields are
// omitted when absent, never emitted as null.
type Link struct {
	URL            string `json:"url"`
	Name           string `json:"name,omitempty"`
	EncodingFormat string `json:"encodingFormat,omitempty"`
	Rel            string `json:"rel,omitempty"`
	Type           string `json:"type,omitempty"`
}

// PublicationManifest is the publication's JSON-LD descriptor. Field order
// here fixes the serialized key order.
type PublicationManifest struct {
	Context            []string `json:"@context"`
	Type               string   `json:"type"`
	ConformsTo         string   `json:"conformsTo"`
	Name               string   `json:"name,omitempty"`
	Author             string   `json:"author,omitempty"`
	InLanguage         string   `json:"inLanguage,omitempty"`
	ReadingProgression string   `json:"readingProgression,omitempty"`
	DateModified       string   `json:"dateModified"`
	ReadingOrder       []Link   `json:"readingOrder"`
	Resources          []Link   `json:"resources"`
	Links              []Link   `json:"links"`
}

// EntryRef is a compiled entry as the manifest sees it: title, target path
// relative to the workspace, encoding format (empty for markdown/html), and
// rel value.
type EntryRef struct {
	Title          string
	Path           string
	EncodingFormat string
	Rel            string
}

// Diagnostic is a non-fatal finding surfaced to the caller instead of a log
// sink.
type Diagnostic struct {
	Severity string
	Message  string
}

// Generate assembles the manifest for a compiled project. readingOrder is
// order-preserving and 1:1 with refs. Non-fatal problems (an undetectable
// cover MIME type) come back as diagnostics; the cover is then simply
// omitted from resources.
func Generate(p *config.Project, refs []EntryRef, now time.Time) (*PublicationManifest, []Diagnostic) {
	m := &PublicationManifest{
		Context:            DefaultContext,
		Type:               "Book",
		ConformsTo:         ConformsTo,
		Name:               p.Title,
		Author:             p.Author,
		InLanguage:         p.Language,
		ReadingProgression: p.ReadingProgression,
		DateModified:       now.Format(time.RFC3339),
		ReadingOrder:       make([]Link, 0, len(refs)),
		Resources:          []Link{},
		Links:              []Link{},
	}

	for _, ref := range refs {
		link := Link{
			URL:            ref.Path,
			Name:           ref.Title,
			EncodingFormat: ref.EncodingFormat,
			Rel:            ref.Rel,
		}
		if ref.Rel == "contents" || ref.Rel == "cover" {
			link.Type = "LinkedResource"
		}
		m.ReadingOrder = append(m.ReadingOrder, link)
	}

	var diags []Diagnostic
	if cover := findCover(p); cover != nil {
		url, mediaType, err := coverResource(p, cover)
		if err != nil {
			diags = append(diags, Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("cover image dropped from resources: %v", err),
			})
		} else {
			m.Resources = append(m.Resources, Link{
				URL:            url,
				Rel:            "cover",
				EncodingFormat: mediaType,
			})
		}
	}

	return m, diags
}

func findCover(p *config.Project) *config.Entry {
	for i := range p.Entries {
		if p.Entries[i].Kind == config.KindCover && p.Entries[i].CoverImageSrc != "" {
			return &p.Entries[i]
		}
	}
	return nil
}

// coverResource computes the cover image's workspace-relative URL and sniffs
// its MIME type, by extension first and content second.
func coverResource(p *config.Project, cover *config.Entry) (string, string, error) {
	src := cover.CoverImageSrc
	var rel string
	if fsutil.Contains(p.EntryContextDir, src) {
		r, err := filepath.Rel(p.EntryContextDir, src)
		if err != nil {
			return "", "", err
		}
		rel = filepath.ToSlash(r)
	} else {
		rel = filepath.ToSlash(filepath.Base(src))
	}

	if mt := mime.TypeByExtension(filepath.Ext(src)); mt != "" {
		return rel, mt, nil
	}

	f, err := os.Open(src) // #nosec G304 -- image path comes from validated configuration
	if err != nil {
		return "", "", fmt.Errorf("cannot sniff MIME type of %s: %w", src, err)
	}
	defer func() { _ = f.Close() }()
	head := make([]byte, 512)
	n, _ := f.Read(head)
	mt := http.DetectContentType(head[:n])
	if mt == "" || mt == "application/octet-stream" {
		return "", "", fmt.Errorf("cannot determine MIME type of %s", src)
	}
	return rel, mt, nil
}
