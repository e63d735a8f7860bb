// Package mapper turns validated clinical statements into output
// resources.
//
// One strategy exists per resource kind; each consumes a statement plus
// its ambient context (section narrative, document subject, registry) and
// produces zero or one resource. A statement lacking its discriminating
// data yields nothing: the resource is skipped with a recorded warning
// and its siblings are unaffected.
package mapper

import (
	"fmt"

	"github.com/gofhir/cdaconvert"
	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/pipeline"
	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/template"
)

const stageMap = "map"

// Mapper owns the per-kind mapping strategies. One Mapper is safe for
// concurrent use; per-conversion state lives in the pipeline context.
type Mapper struct {
	templates *template.Registry
	opts      *cdaconvert.Options
}

// New creates a Mapper. A nil registry uses the built-in schemas; nil
// options use defaults.
func New(templates *template.Registry, opts *cdaconvert.Options) *Mapper {
	if templates == nil {
		templates = template.Default()
	}
	if opts == nil {
		opts = cdaconvert.DefaultOptions()
	}
	return &Mapper{templates: templates, opts: opts}
}

// Stages returns the mapping stages in execution order: header resources,
// then statement resources, then bundle assembly.
func (m *Mapper) Stages() []pipeline.Stage {
	return []pipeline.Stage{
		&headerStage{m},
		&resourceStage{m},
		&bundleStage{m},
	}
}

// sectionCtx is the ambient context one strategy sees: the conversion
// context, the enclosing section, its narrative index and the composition
// section collecting entry references.
type sectionCtx struct {
	pc   *pipeline.Context
	sec  *statement.Section
	ix   statement.NarrativeIndex
	comp *fhir.CompositionSection
}

// addEntry records a resource reference in the composition section.
func (sc *sectionCtx) addEntry(res fhir.Resource) {
	sc.comp.Entry = append(sc.comp.Entry, fhir.Reference{
		Reference: "urn:uuid:" + res.GetID(),
		Type:      res.Kind(),
	})
}

// addIssue records an issue honoring the configured cap.
func (m *Mapper) addIssue(res *cdaconvert.Result, issue cdaconvert.Issue) {
	if m.opts.MaxIssues > 0 && !issue.IsFatal() && len(res.Issues) >= m.opts.MaxIssues {
		return
	}
	res.AddIssue(issue)
}

// skip records that one resource was not produced for missing required
// data. Siblings are unaffected.
func (m *Mapper) skip(sc *sectionCtx, st *statement.ClinicalStatement, kind, why string) {
	m.addIssue(sc.pc.Result, cdaconvert.Warning(cdaconvert.IssueTypeMissingRequired).
		Diagnostics(why).
		At(st.Path).
		Stage(stageMap).Build())
	sc.pc.Result.Record(cdaconvert.Decision{
		Kind:   cdaconvert.DecisionSkippedResource,
		Path:   st.Path,
		Detail: kind + ": " + why,
	})
	m.opts.Logger.Debug().
		Str("path", st.Path).
		Str("kind", kind).
		Str("reason", why).
		Msg("resource skipped")
}

// omitReference records that a referencing field was left out because the
// referenced entity could not be mapped.
func (m *Mapper) omitReference(pc *pipeline.Context, path, field string) {
	pc.Result.Record(cdaconvert.Decision{
		Kind:   cdaconvert.DecisionOmittedReference,
		Path:   path,
		Detail: field + " omitted: referenced entity not mappable",
	})
}

// recordSynthesizedID records the identity downgrade for a resource whose
// id had to be synthesized from statement content.
func (m *Mapper) recordSynthesizedID(pc *pipeline.Context, path string, res fhir.Resource) {
	pc.Result.Record(cdaconvert.Decision{
		Kind:       cdaconvert.DecisionSynthesizedID,
		Path:       path,
		Detail:     fmt.Sprintf("no usable source identifier on %s; id synthesized from content", res.Kind()),
		ResourceID: res.GetID(),
	})
	m.opts.Logger.Debug().
		Str("path", path).
		Str("resource", res.Kind()).
		Str("id", res.GetID()).
		Msg("resource id synthesized")
}
