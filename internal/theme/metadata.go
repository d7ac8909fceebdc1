package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	berrors "git.home.luguber.info/inful/bookbinder/internal/errors"
)

// packageMeta mirrors the subset of a package manifest (package.json) that
// theme resolution cares about.
type packageMeta struct {
	Name       string          `json:"name"`
	Main       string          `json:"main"`
	Style      string          `json:"style"`
	Bookbinder *bookbinderMeta `json:"bookbinder"`
}

type bookbinderMeta struct {
	Theme *themeMeta `json:"theme"`
}

type themeMeta struct {
	Style string `json:"style"`
}

// styleEntry returns the package's style entry point following the
// precedence: namespaced theme style, then the generic style field, then the
// main entry. An empty string means the package declares no usable entry.
func (m *packageMeta) styleEntry() string {
	if m.Bookbinder != nil && m.Bookbinder.Theme != nil && m.Bookbinder.Theme.Style != "" {
		return m.Bookbinder.Theme.Style
	}
	if m.Style != "" {
		return m.Style
	}
	return m.Main
}

// readPackageMeta parses the package manifest under the package root.
func readPackageMeta(packageRoot string) (*packageMeta, error) {
	metaPath := filepath.Join(packageRoot, "package.json")
	data, err := os.ReadFile(metaPath) // #nosec G304 -- package root comes from validated configuration
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryTheme, berrors.SeverityFatal,
			fmt.Sprintf("cannot read package manifest for theme at %s", packageRoot))
	}
	var meta packageMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryTheme, berrors.SeverityFatal,
			fmt.Sprintf("invalid package manifest at %s", metaPath))
	}
	return &meta, nil
}
