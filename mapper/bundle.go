package mapper

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/pipeline"
	"github.com/gofhir/cdaconvert/registry"
	"github.com/gofhir/cdaconvert/statement"
)

// bundleStage assembles the document bundle: composition first, then
// every registered resource in claim order, then provenance for the
// document's authorship. Every reference inside the bundle resolves to
// an entry of the same bundle.
type bundleStage struct {
	m *Mapper
}

func (s *bundleStage) Name() string { return "bundle" }

func (s *bundleStage) Run(pc *pipeline.Context) error {
	bundle := fhir.NewDocumentBundle()
	// The bundle id is the one intentionally random identifier per
	// conversion; everything else is deterministic.
	bundle.ID = uuid.New().String()
	bundle.Timestamp = timeString(pc.Doc.Effective)
	if !pc.Doc.ID.IsZero() {
		ids := identifiersOf([]statement.Identifier{pc.Doc.ID})
		bundle.Identifier = &ids[0]
	}

	// Provenance is built first: its agents may claim organizations that
	// must appear as bundle entries of their own.
	var provenance []fhir.Resource
	if pc.Options.IncludeProvenance && pc.Composition != nil {
		provenance = s.m.provenanceOf(pc)
	}

	if pc.Composition != nil {
		bundle.Add(pc.Composition)
	}
	for _, res := range pc.Registry.Resources() {
		bundle.Add(res)
	}
	for _, prov := range provenance {
		bundle.Add(prov)
	}

	pc.Result.Bundle = bundle
	return nil
}

// provenanceOf builds provenance resources for the document's authors,
// targeting the composition. Authors without a mappable agent or a
// recordable time yield nothing.
func (m *Mapper) provenanceOf(pc *pipeline.Context) []fhir.Resource {
	var out []fhir.Resource
	compRef := registry.RefTo(pc.Composition)

	for i, author := range pc.Doc.Authors {
		agentRef, ok := m.claimAuthor(pc, &author)
		if !ok {
			continue
		}
		recorded := timeString(author.Time)
		if recorded == "" {
			recorded = timeString(pc.Doc.Effective)
		}
		if recorded == "" {
			m.omitReference(pc, "ClinicalDocument/author", "provenance")
			continue
		}

		prov := fhir.NewProvenance()
		prov.SetID(registry.AssignID(registry.SynthesisKey("Provenance", pc.Composition.GetID(), strconv.Itoa(i))))
		prov.Target = []fhir.Reference{*compRef}
		prov.Recorded = recorded
		agent := fhir.ProvenanceAgent{
			Type: &fhir.CodeableConcept{
				Coding: []fhir.Coding{{
					System:  "http://terminology.hl7.org/CodeSystem/provenance-participant-type",
					Code:    "author",
					Display: "Author",
				}},
				Text: "Author",
			},
			Who: *agentRef,
		}
		if author.OrgName != "" || len(author.OrgIDs) > 0 {
			if orgRef, ok := m.claimOrganization(pc, author.OrgIDs, author.OrgName, nil); ok {
				agent.OnBehalfOf = orgRef
			}
		}
		prov.Agent = []fhir.ProvenanceAgent{agent}
		out = append(out, prov)
	}
	return out
}
