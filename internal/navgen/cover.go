package navgen

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"text/template"

	"git.home.luguber.info/inful/bookbinder/internal/config"
)

// DefaultCoverTitle is used when the cover entry has no title and the
// project has none either.
const DefaultCoverTitle = "Cover"

var coverTemplate = template.Must(template.New("cover").Parse(`<!doctype html>
<html{{if .Language}} lang="{{.Language}}"{{end}}>
<head>
<meta charset="utf-8">
` + GeneratorMeta + `
<title>{{.Title}}</title>
{{range .Styles}}<link rel="stylesheet" type="text/css" href="{{.}}">
{{end}}</head>
<body>
<section role="region" aria-label="Cover">
<img src="{{.ImageSrc}}" alt="{{.ImageAlt}}" role="doc-cover">
</section>
</body>
</html>
`))

// GenerateCover builds the cover document for coverEntry.
//
// The image src must be correct once the cover file sits under the
// workspace: the target's path is first taken relative to the workspace,
// joined back onto the entry context directory, and the image source is then
// taken relative to that joined path. Collapsing the two steps produces a
// reference that is off by however many directory levels separate the roots,
// with no runtime error to show for it.
func GenerateCover(p *config.Project, coverEntry *config.Entry, opts Options) (string, error) {
	targetDirInWorkspace, err := filepath.Rel(p.WorkspaceDir, filepath.Dir(coverEntry.Target))
	if err != nil {
		return "", fmt.Errorf("failed to relativize cover target against workspace: %w", err)
	}
	contextAnchor := filepath.Join(p.EntryContextDir, targetDirInWorkspace)
	imgSrc, err := filepath.Rel(contextAnchor, coverEntry.CoverImageSrc)
	if err != nil {
		return "", fmt.Errorf("failed to relativize cover image: %w", err)
	}

	title := coverEntry.Title
	if title == "" {
		title = p.Title
	}
	if title == "" {
		title = DefaultCoverTitle
	}

	data := map[string]any{
		"Language": opts.Language,
		"Styles":   opts.Styles,
		"Title":    html.EscapeString(title),
		"ImageSrc": filepath.ToSlash(imgSrc),
		"ImageAlt": html.EscapeString(coverEntry.CoverImageAlt),
	}
	var buf bytes.Buffer
	if err := coverTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render cover: %w", err)
	}
	return buf.String(), nil
}
