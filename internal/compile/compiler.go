// Package compile orchestrates the publication build as an ordered stage
// pipeline: workspace preparation, preflight safety checks, manuscript
// compilation, navigation generation, manifest assembly, and asset
// synchronization.
package compile

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/bookbinder/internal/assets"
	"git.home.luguber.info/inful/bookbinder/internal/config"
	berrors "git.home.luguber.info/inful/bookbinder/internal/errors"
	"git.home.luguber.info/inful/bookbinder/internal/fsutil"
	"git.home.luguber.info/inful/bookbinder/internal/htmlproc"
	"git.home.luguber.info/inful/bookbinder/internal/logfields"
	"git.home.luguber.info/inful/bookbinder/internal/manifest"
	"git.home.luguber.info/inful/bookbinder/internal/markdown"
	"git.home.luguber.info/inful/bookbinder/internal/navgen"
	"git.home.luguber.info/inful/bookbinder/internal/theme"
	"git.home.luguber.info/inful/bookbinder/internal/workspace"
)

// Options configures one compile invocation.
type Options struct {
	// Fresh destroys and rebuilds the workspace before compiling.
	Fresh bool
	// Installer materializes missing theme packages. Defaults to a
	// GitInstaller when nil and installation is needed.
	Installer theme.Installer
}

// Build runs the whole pipeline for a resolved project. The returned report
// is populated even when the build fails partway.
func Build(ctx context.Context, p *config.Project, opts Options) (*Report, error) {
	bs := &BuildState{
		Project: p,
		Report:  NewReport(),
		styles:  make(map[string][]string),
	}
	slog.Info("Starting publication build",
		logfields.BuildID(bs.Report.BuildID),
		logfields.Workspace(p.WorkspaceDir),
		logfields.Count(len(p.Entries)))

	installer := opts.Installer
	if installer == nil {
		installer = &theme.GitInstaller{Depth: 1}
	}

	defs := NewPipeline().
		Add(StagePrepareWorkspace, stagePrepareWorkspace(opts.Fresh, installer)).
		Add(StagePreflight, stagePreflight).
		Add(StageCompileManuscripts, stageCompileManuscripts).
		Add(StageGenerateNavigation, stageGenerateNavigation).
		Add(StageBuildManifest, stageBuildManifest).
		Add(StageSyncAssets, stageSyncAssets).
		Defs

	err := RunStages(ctx, bs, defs)
	bs.Report.Finish()
	return bs.Report, err
}

func stagePrepareWorkspace(fresh bool, installer theme.Installer) Stage {
	return func(ctx context.Context, bs *BuildState) error {
		p := bs.Project
		m := workspace.NewManager(p.EntryContextDir, p.WorkspaceDir, p.ThemesDir)
		if fresh {
			if err := m.Cleanup(); err != nil {
				return err
			}
		}
		return m.Prepare(ctx, installer, p.Themes)
	}
}

// stagePreflight runs every check that can fail before the first destructive
// write: overwrite guards for configured outputs, protection of
// hand-authored files occupying generated targets, and stylesheet
// resolution for every entry.
func stagePreflight(_ context.Context, bs *BuildState) error {
	p := bs.Project

	for _, out := range p.Outputs {
		if err := workspace.CheckOverwriteViolation(out, p.EntryContextDir, p.WorkspaceDir, "output"); err != nil {
			return err
		}
	}

	for i := range p.Entries {
		e := &p.Entries[i]
		if e.Generated() {
			if err := checkGeneratedTarget(e); err != nil {
				return err
			}
		}
		styles, err := theme.ResolveAll(e.Themes, filepath.Dir(e.Target))
		if err != nil {
			return err
		}
		bs.styles[e.Target] = styles
	}
	return nil
}

// checkGeneratedTarget aborts when a contents/cover target is pre-occupied
// by a file this tool did not generate.
func checkGeneratedTarget(e *config.Entry) error {
	f, err := os.Open(e.Target) // #nosec G304 -- target comes from validated configuration
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect existing target %s: %w", e.Target, err)
	}
	defer func() { _ = f.Close() }()

	if !navgen.IsGenerated(f) {
		return berrors.NewConfigErrorf(
			"%s target %s already exists and was not generated by this tool; move it or choose another target",
			e.Rel, e.Target)
	}
	return nil
}

// stageCompileManuscripts is phase 1: every non-generated entry is compiled
// to its target, dispatched by content type.
func stageCompileManuscripts(ctx context.Context, bs *BuildState) error {
	for i := range bs.Project.Entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e := &bs.Project.Entries[i]
		if e.Generated() {
			continue
		}
		if err := compileManuscript(bs, e, bs.styles[e.Target], ""); err != nil {
			return err
		}
		bs.Report.CompiledEntries++
	}
	slog.Info("Compiled manuscripts", logfields.Count(bs.Report.CompiledEntries))
	return nil
}

// compileManuscript compiles one source document to its target. generator
// is empty for authored manuscripts; template-compiled navigation targets
// pass the generator name so later preflights recognize them as
// tool-produced.
func compileManuscript(bs *BuildState, e *config.Entry, styles []string, generator string) error {
	p := bs.Project
	switch e.ContentType {
	case config.TypeMarkdown:
		src, err := os.ReadFile(e.Source) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to read manuscript %s: %w", e.Source, err)
		}
		out, err := markdown.Render(src, markdown.Options{
			Styles:    styles,
			Title:     e.Title,
			Language:  p.Language,
			Generator: generator,
		})
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.Source, err)
		}
		return writeTarget(e.Target, out)

	case config.TypeHTML, config.TypeXHTML:
		// Output-in-place manuscripts are left untouched: overwriting the
		// authored file would destroy the source of truth.
		if fsutil.SamePath(e.Source, e.Target) {
			slog.Debug("Source equals target; leaving in place", logfields.Entry(e.Target))
			return nil
		}
		src, err := os.ReadFile(e.Source) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to read manuscript %s: %w", e.Source, err)
		}
		out, err := htmlproc.Inject(src, htmlproc.Options{
			Styles:      styles,
			Title:       e.Title,
			Language:    p.Language,
			ContentType: contentTypeHeader(e.ContentType),
			Generator:   generator,
		})
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.Source, err)
		}
		return writeTarget(e.Target, out)

	default:
		if fsutil.SamePath(e.Source, e.Target) {
			return nil
		}
		return fsutil.CopyFile(e.Source, e.Target)
	}
}

// stageGenerateNavigation is phase 2: contents and cover entries are
// synthesized (or compiled from a configured template) once every phase-1
// write has completed.
func stageGenerateNavigation(_ context.Context, bs *BuildState) error {
	p := bs.Project
	for i := range p.Entries {
		e := &p.Entries[i]
		if !e.Generated() {
			continue
		}

		if e.Template != nil {
			if err := compileManuscript(bs, e.Template, bs.styles[e.Target], navgen.GeneratorName); err != nil {
				return err
			}
			bs.Report.GeneratedEntries++
			continue
		}

		opts := navgen.Options{Styles: bs.styles[e.Target], Language: p.Language}
		var markup string
		var err error
		switch e.Kind {
		case config.KindContents:
			markup, err = navgen.GenerateToc(p, e, opts)
		case config.KindCover:
			markup, err = navgen.GenerateCover(p, e, opts)
		default:
			err = berrors.Newf(berrors.CategoryInternal, berrors.SeverityFatal, "unexpected generated entry kind %q", e.Kind)
		}
		if err != nil {
			return err
		}
		if err := writeTarget(e.Target, []byte(markup)); err != nil {
			return err
		}
		bs.Report.GeneratedEntries++
	}
	return nil
}

// stageBuildManifest derives the reading order from the entry list in input
// order, assembles the manifest, validates it, and writes it.
func stageBuildManifest(_ context.Context, bs *BuildState) error {
	p := bs.Project
	bs.manifestRefs = bs.manifestRefs[:0]
	for i := range p.Entries {
		e := &p.Entries[i]
		rel, err := filepath.Rel(p.WorkspaceDir, e.Target)
		if err != nil {
			return fmt.Errorf("failed to relativize %s against workspace: %w", e.Target, err)
		}
		bs.manifestRefs = append(bs.manifestRefs, manifest.EntryRef{
			Title:          e.Title,
			Path:           filepath.ToSlash(rel),
			EncodingFormat: encodingFormat(e),
			Rel:            e.Rel,
		})
	}

	// Diagnostics are surfaced through the report; the caller decides how
	// to present them.
	m, diags := manifest.Generate(p, bs.manifestRefs, time.Now())
	for _, d := range diags {
		bs.Report.AddDiagnostic(d)
	}
	if err := m.Write(p.ManifestPath); err != nil {
		return err
	}
	slog.Info("Wrote publication manifest", logfields.Path(p.ManifestPath))
	return nil
}

func stageSyncAssets(_ context.Context, bs *BuildState) error {
	files, err := assets.Glob(bs.Project)
	if err != nil {
		return err
	}
	if err := assets.Copy(bs.Project, files); err != nil {
		return err
	}
	bs.Report.AssetsCopied = len(files)
	return nil
}

// encodingFormat maps an entry to the manifest's encodingFormat value;
// markdown and html compile to the default format and stay unmarked.
func encodingFormat(e *config.Entry) string {
	switch e.ContentType {
	case config.TypeMarkdown, config.TypeHTML, "":
		return ""
	case config.TypeXHTML:
		return "application/xhtml+xml"
	default:
		if mt := mime.TypeByExtension(filepath.Ext(e.Source)); mt != "" {
			return mt
		}
		return "application/octet-stream"
	}
}

func contentTypeHeader(ct config.ContentType) string {
	if ct == config.TypeXHTML {
		return "application/xhtml+xml;charset=utf-8"
	}
	return "text/html;charset=utf-8"
}

// writeTarget writes a compiled document, creating parent directories.
func writeTarget(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	// #nosec G306 -- compiled documents are public content
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	slog.Debug("Wrote compiled entry", logfields.Target(target))
	return nil
}
