// Package engine wires the conversion stages into the public Converter.
//
// A Converter is immutable after construction and safe for concurrent use:
// every Convert call builds a fresh pipeline context with its own parse
// tree and reference registry, so independent documents convert in
// parallel with zero coordination.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/gofhir/cdaconvert"
	"github.com/gofhir/cdaconvert/mapper"
	"github.com/gofhir/cdaconvert/parser"
	"github.com/gofhir/cdaconvert/pipeline"
	"github.com/gofhir/cdaconvert/template"
	"github.com/gofhir/cdaconvert/xmltree"
)

// Converter converts clinical documents to document bundles.
type Converter struct {
	release   cdaconvert.CDARelease
	opts      *cdaconvert.Options
	templates *template.Registry
	pipeline  *pipeline.Pipeline
	metrics   *cdaconvert.Metrics
}

// New creates a Converter for the given source release.
func New(release cdaconvert.CDARelease, opts ...cdaconvert.Option) (*Converter, error) {
	if !release.IsValid() {
		return nil, fmt.Errorf("engine: unsupported release %q", release)
	}

	options := cdaconvert.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	templates := template.Default()
	c := &Converter{
		release:   release,
		opts:      options,
		templates: templates,
		metrics:   cdaconvert.NewMetrics(),
	}

	stages := []pipeline.Stage{
		&normalizeStage{},
		&parseStage{parser.New(templates, options)},
	}
	stages = append(stages, mapper.New(templates, options).Stages()...)
	c.pipeline = pipeline.New(stages...)
	return c, nil
}

// Convert converts one raw document. The returned error covers
// cancellation and internal faults only; conversion outcomes, rejections
// included, live on the Result.
func (c *Converter) Convert(ctx context.Context, document []byte) (*cdaconvert.Result, error) {
	if len(document) == 0 {
		return nil, errors.New("engine: document is empty")
	}
	pc := pipeline.NewContext(ctx, document, c.opts, c.metrics)
	return c.run(pc)
}

// ConvertTree converts an already-normalized element tree, for callers
// that parsed the markup themselves.
func (c *Converter) ConvertTree(ctx context.Context, doc *etree.Document) (*cdaconvert.Result, error) {
	if doc == nil || doc.Root() == nil {
		return nil, errors.New("engine: element tree has no root")
	}
	pc := pipeline.NewContext(ctx, nil, c.opts, c.metrics)
	pc.Root = doc.Root()
	return c.run(pc)
}

func (c *Converter) run(pc *pipeline.Context) (*cdaconvert.Result, error) {
	start := time.Now()
	err := c.pipeline.Run(pc)

	if c.opts.CollectMetrics {
		rejected := pc.Result.Rejected()
		c.metrics.RecordConversion(time.Since(start), rejected)
		if pc.Result.Bundle != nil {
			c.metrics.RecordResources(len(pc.Result.Bundle.Entry))
		}
		for range pc.Result.Decisions {
			c.metrics.RecordDecision()
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return pc.Result, err
		}
		// The fault is already recorded as a fatal issue; the result
		// carries the rejection.
		return pc.Result, nil
	}
	return pc.Result, nil
}

// Release returns the source release this converter accepts.
func (c *Converter) Release() cdaconvert.CDARelease {
	return c.release
}

// Metrics returns the converter's metrics collector.
func (c *Converter) Metrics() *cdaconvert.Metrics {
	return c.metrics
}

// normalizeStage parses raw markup into the normalized element tree.
// Markup that is not well-formed rejects the document here, before any
// clinical parsing begins.
type normalizeStage struct{}

func (s *normalizeStage) Name() string { return "normalize" }

func (s *normalizeStage) Run(pc *pipeline.Context) error {
	if pc.Root != nil {
		return nil
	}
	doc, err := xmltree.Parse(pc.Raw)
	if err != nil {
		pc.Result.AddIssue(cdaconvert.Fatal(cdaconvert.IssueTypeMalformed).
			Diagnostics(err.Error()).
			Stage(s.Name()).Build())
		return nil
	}
	pc.Root = doc.Root()
	return nil
}

// parseStage builds the statement model. Header-level rejections are
// recorded on the result; the pipeline stops on them without treating
// them as internal faults.
type parseStage struct {
	parser *parser.Parser
}

func (s *parseStage) Name() string { return "parse" }

func (s *parseStage) Run(pc *pipeline.Context) error {
	doc, err := s.parser.ParseDocument(pc.Root, pc.Result)
	if err != nil {
		if errors.Is(err, parser.ErrRejected) {
			return nil
		}
		return err
	}
	pc.Doc = doc
	return nil
}
