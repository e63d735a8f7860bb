// Package pipeline runs the ordered conversion stages over a call-scoped
// context. Stages execute strictly in sequence; a fatal issue or stage
// error stops the run and later stages never see partial state they could
// misread as complete.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/gofhir/cdaconvert"
	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/registry"
	"github.com/gofhir/cdaconvert/statement"
)

// Context carries all state for one conversion call. A fresh Context is
// built per call and discarded afterwards; nothing in it is shared across
// conversions.
type Context struct {
	Ctx     context.Context
	Options *cdaconvert.Options
	Metrics *cdaconvert.Metrics

	// Raw is the source document bytes; Root is set by the normalize
	// stage, Doc by the parse stage.
	Raw  []byte
	Root *etree.Element
	Doc  *statement.Document

	// Registry is the per-call reference registry.
	Registry *registry.Registry

	// Result accumulates issues, decisions and the final bundle.
	Result *cdaconvert.Result

	// Composition is the document header resource, built by the header
	// stage and extended with section entries as resources are mapped.
	Composition *fhir.Composition

	// PatientKey is the registry key of the claimed patient resource.
	PatientKey string
}

// NewContext builds a fresh conversion context around one raw document.
func NewContext(ctx context.Context, raw []byte, opts *cdaconvert.Options, metrics *cdaconvert.Metrics) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts == nil {
		opts = cdaconvert.DefaultOptions()
	}
	return &Context{
		Ctx:      ctx,
		Options:  opts,
		Metrics:  metrics,
		Raw:      raw,
		Registry: registry.New(),
		Result:   cdaconvert.NewResult(),
	}
}

// PatientRef returns the bundle-internal reference to the claimed patient.
func (pc *Context) PatientRef() (*fhir.Reference, bool) {
	if pc.PatientKey == "" {
		return nil, false
	}
	return pc.Registry.Reference(pc.PatientKey)
}

// Stage is one conversion stage. A returned error is an unclassified
// internal fault and fails the whole conversion; expected outcomes are
// expressed as issues on the result instead.
type Stage interface {
	Name() string
	Run(pc *Context) error
}

// Pipeline executes stages in registration order.
type Pipeline struct {
	stages []Stage
}

// New creates a pipeline over the given stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes all stages. It stops at the first fatal issue, context
// cancellation or stage error; the result then carries the rejection.
func (p *Pipeline) Run(pc *Context) error {
	for _, stage := range p.stages {
		if err := pc.Ctx.Err(); err != nil {
			pc.Result.AddIssue(cdaconvert.Fatal(cdaconvert.IssueTypeProcessing).
				Diagnostics("conversion cancelled: " + err.Error()).
				Stage(stage.Name()).Build())
			return err
		}

		start := time.Now()
		before := len(pc.Result.Issues)
		err := stage.Run(pc)

		if pc.Metrics != nil && pc.Options.CollectMetrics {
			pc.Metrics.RecordStage(stage.Name(), time.Since(start), len(pc.Result.Issues)-before)
		}

		if err != nil {
			if !pc.Result.Rejected() {
				pc.Result.AddIssue(cdaconvert.Fatal(cdaconvert.IssueTypeProcessing).
					Diagnostics(err.Error()).
					Stage(stage.Name()).Build())
			}
			return fmt.Errorf("pipeline: stage %s: %w", stage.Name(), err)
		}
		if pc.Result.Rejected() {
			return nil
		}
	}
	return nil
}
