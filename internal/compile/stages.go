package compile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/bookbinder/internal/config"
	"git.home.luguber.info/inful/bookbinder/internal/manifest"
)

// Stage is a discrete unit of work in the publication build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names. The boundary between compile_manuscripts and
// generate_navigation is the phase barrier: navigation content references
// the final on-disk path set of the other compiled documents, so every
// manuscript write completes before the first navigation write starts.
const (
	StagePrepareWorkspace   StageName = "prepare_workspace"
	StagePreflight          StageName = "preflight"
	StageCompileManuscripts StageName = "compile_manuscripts"
	StageGenerateNavigation StageName = "generate_navigation"
	StageBuildManifest      StageName = "build_manifest"
	StageSyncAssets         StageName = "sync_assets"
)

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 8)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn})
	return p
}

// BuildState carries everything one compile invocation accumulates across
// stages. It is owned by a single goroutine; stages run sequentially.
type BuildState struct {
	Project *config.Project
	Report  *Report

	// styles caches the stylesheet list resolved for each entry target
	// during preflight, so resolution errors surface before any write.
	styles map[string][]string

	manifestRefs []manifest.EntryRef
}

// Report captures metrics and diagnostics about one compile invocation.
type Report struct {
	BuildID          string
	Start            time.Time
	End              time.Time
	StageDurations   map[StageName]time.Duration
	Diagnostics      []manifest.Diagnostic
	CompiledEntries  int
	GeneratedEntries int
	AssetsCopied     int
}

// NewReport constructs a report stamped with a fresh build ID.
func NewReport() *Report {
	return &Report{
		BuildID:        uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
	}
}

// Finish records the end timestamp.
func (r *Report) Finish() { r.End = time.Now() }

// AddDiagnostic records a non-fatal finding.
func (r *Report) AddDiagnostic(d manifest.Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}
