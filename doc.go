// Package cdaconvert converts C-CDA clinical documents into FHIR R4
// document bundles.
//
// The converter is built for real-world input: documents produced by dozens
// of independently implemented vendor systems, many of which deviate from
// the C-CDA specification. Genuine semantic violations are rejected with a
// rule citation; a documented, closed vocabulary of cosmetic vendor defects
// is normalized and recorded; everything else converts.
//
// # Quick Start
//
//	import (
//	    cc "github.com/gofhir/cdaconvert"
//	    "github.com/gofhir/cdaconvert/engine"
//	)
//
//	converter, err := engine.New(cc.CCDA21)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := converter.Convert(ctx, documentXML)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if rej, ok := result.Rejection(); ok {
//	    fmt.Println("rejected:", rej.RuleID, rej.Path)
//	} else {
//	    emit(result.Bundle)
//	    for _, d := range result.Decisions {
//	        fmt.Println("downgrade:", d.Kind, d.Detail)
//	    }
//	}
//
// # Conversion Stages
//
// One conversion runs a fixed sequence of stages over a call-scoped context:
//
//   - Normalize: parse markup into an element tree, strip namespace noise,
//     repair documented cosmetic vendor defects
//   - Header: validate document-level structure, extract patient, authors,
//     custodian
//   - Statements: template-dispatched recursive parse of every section's
//     clinical statements, with conformance validation
//   - Resources: one mapping strategy per target resource kind, with
//     terminology, unit and time normalization
//   - Bundle: reference resolution, entity deduplication, provenance,
//     final bundle assembly
//
// # Failure Semantics
//
// A semantic or type conformance violation aborts the smallest enclosing
// clinical statement; header-level violations reject the whole document.
// Unrecognized constructs and resources missing required data are skipped
// and recorded in the structured decision log. The outcome is always either
// a complete bundle plus recorded downgrades, or a rejection naming the
// offending rule and element path - never a silently corrupted bundle.
//
// # Functional Options
//
//	converter, err := engine.New(cc.CCDA21,
//	    cc.WithLogger(logger),
//	    cc.WithClassifier(myLookup),
//	    cc.WithMistagNormalization(true),
//	)
//
// Each call owns its own reference registry and parse tree; independent
// documents may be converted in parallel with zero coordination (see the
// worker package for a batch pool).
package cdaconvert
