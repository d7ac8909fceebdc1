package config

import (
	"golang.org/x/text/language"

	berrors "git.home.luguber.info/inful/bookbinder/internal/errors"
)

// Validate checks the resolved project for configuration errors that must be
// caught before the pipeline runs: duplicate targets, an unparsable language
// tag, and out-of-range reading progression.
func (p *Project) Validate() error {
	if len(p.Entries) == 0 {
		return berrors.NewConfigError("project declares no entries")
	}

	targets := make(map[string]struct{}, len(p.Entries))
	for i := range p.Entries {
		e := &p.Entries[i]
		if _, dup := targets[e.Target]; dup {
			return berrors.NewConfigErrorf("duplicate entry target %s", e.Target)
		}
		targets[e.Target] = struct{}{}

		if e.Kind == KindManuscript && e.Source == "" {
			return berrors.NewConfigErrorf("manuscript entry %s has no source", e.Target)
		}
		if e.Kind == KindCover && e.CoverImageSrc == "" {
			return berrors.NewConfigErrorf("cover entry %s has no image", e.Target)
		}
		// Byte-copied templates cannot carry the generator marker, so the
		// next run's preflight would mistake the target for hand-authored.
		if e.Template != nil && e.Template.ContentType == TypeOther {
			return berrors.NewConfigErrorf("template for %s must be markdown or HTML, got %s", e.Target, e.Template.Source)
		}
	}

	if p.Language != "" {
		if _, err := language.Parse(p.Language); err != nil {
			return berrors.NewConfigErrorf("invalid language tag %q", p.Language)
		}
	}

	switch p.ReadingProgression {
	case "", "ltr", "rtl":
	default:
		return berrors.NewConfigErrorf("invalid reading progression %q (expected ltr or rtl)", p.ReadingProgression)
	}

	return nil
}
