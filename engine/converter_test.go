package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/gofhir/cdaconvert"
	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/terminology"
)

const ccdHeader = `
	<id root="2.16.840.1.113883.19.5" extension="doc1"/>
	<code code="34133-9" codeSystem="2.16.840.1.113883.6.1" displayName="Summarization of Episode Note"/>
	<title>Continuity of Care Document</title>
	<effectiveTime value="20170821112858-0500"/>
	<recordTarget><patientRole>
		<id root="2.16.840.1.113883.19.5" extension="pat1"/>
		<patient>
			<name><given>Ada</given><family>Lovelace</family></name>
			<administrativeGenderCode code="F" codeSystem="2.16.840.1.113883.5.1"/>
			<birthTime value="19751201"/>
		</patient>
	</patientRole></recordTarget>
	<author><time value="20170821112858-0500"/><assignedAuthor>
		<id root="2.16.840.1.113883.4.6" extension="1234567890"/>
		<assignedPerson><name><given>John</given><family>Carter</family></name></assignedPerson>
	</assignedAuthor></author>
	<custodian><assignedCustodian><representedCustodianOrganization>
		<id root="2.16.840.1.113883.19.5"/><name>Good Health Clinic</name>
	</representedCustodianOrganization></assignedCustodian></custodian>`

func ccdWith(sections ...string) []byte {
	var sb strings.Builder
	sb.WriteString(`<ClinicalDocument xmlns="urn:hl7-org:v3">`)
	sb.WriteString(ccdHeader)
	if len(sections) > 0 {
		sb.WriteString(`<component><structuredBody>`)
		for _, s := range sections {
			sb.WriteString(`<component><section>` + s + `</section></component>`)
		}
		sb.WriteString(`</structuredBody></component>`)
	}
	sb.WriteString(`</ClinicalDocument>`)
	return []byte(sb.String())
}

const problemsSection = `
	<templateId root="2.16.840.1.113883.10.20.22.2.5.1"/>
	<code code="11450-4" codeSystem="2.16.840.1.113883.6.1"/>
	<title>Problems</title>
	<text><content ID="problem1">Community acquired pneumonia</content></text>
	<entry><act classCode="ACT" moodCode="EVN">
		<templateId root="2.16.840.1.113883.10.20.22.4.3"/>
		<id root="1.2.3.4" extension="concern1"/>
		<code code="CONC" codeSystem="2.16.840.1.113883.5.6"/>
		<statusCode code="active"/>
		<effectiveTime><low value="20170801"/></effectiveTime>
		<entryRelationship typeCode="SUBJ"><observation classCode="OBS" moodCode="EVN">
			<templateId root="2.16.840.1.113883.10.20.22.4.4"/>
			<id root="1.2.3.4" extension="problem1"/>
			<code code="55607006" codeSystem="2.16.840.1.113883.6.96"/>
			<statusCode code="completed"/>
			<effectiveTime><low value="20170801"/></effectiveTime>
			<value xsi:type="CD" code="233604007" codeSystem="2.16.840.1.113883.6.96" displayName="Pneumonia"/>
		</observation></entryRelationship>
	</act></entry>`

const vitalsSection = `
	<templateId root="2.16.840.1.113883.10.20.22.2.4.1"/>
	<code code="8716-3" codeSystem="2.16.840.1.113883.6.1"/>
	<title>Vital Signs</title>
	<entry><organizer classCode="CLUSTER" moodCode="EVN">
		<templateId root="2.16.840.1.113883.10.20.22.4.26"/>
		<id root="1.2.3.4" extension="panel1"/>
		<code code="46680005" codeSystem="2.16.840.1.113883.6.96"/>
		<statusCode code="completed"/>
		<effectiveTime value="20170821"/>
		<component><observation classCode="OBS" moodCode="EVN">
			<templateId root="2.16.840.1.113883.10.20.22.4.27"/>
			<id root="1.2.3.4" extension="bp1"/>
			<code code="8480-6" codeSystem="2.16.840.1.113883.6.1" displayName="Systolic blood pressure"/>
			<statusCode code="completed"/>
			<effectiveTime value="20170821"/>
			<value xsi:type="PQ" value="120" unit="mm[Hg]"/>
		</observation></component>
		<component><observation classCode="OBS" moodCode="EVN">
			<templateId root="2.16.840.1.113883.10.20.22.4.27"/>
			<id root="1.2.3.4" extension="score1"/>
			<code code="9279-1" codeSystem="2.16.840.1.113883.6.1"/>
			<statusCode code="completed"/>
			<effectiveTime value="20170821"/>
			<value xsi:type="PQ" value="16"/>
		</observation></component>
	</organizer></entry>`

const proceduresSection = `
	<templateId root="2.16.840.1.113883.10.20.22.2.7.1"/>
	<code code="47519-4" codeSystem="2.16.840.1.113883.6.1"/>
	<title>Procedures</title>
	<entry><procedure classCode="PROC" moodCode="EVN">
		<templateId root="2.16.840.1.113883.10.20.22.4.14"/>
		<id root="1.2.3.4" extension="proc1"/>
		<code code="80146002" codeSystem="2.16.840.1.113883.6.96" displayName="Appendectomy"/>
		<statusCode code="completed"/>
		<effectiveTime value="20170810"/>
		<performer><assignedEntity>
			<id root="2.16.840.1.113883.4.6" extension="9999999999"/>
			<assignedPerson><name><given>Grace</given><family>Hopper</family></name></assignedPerson>
		</assignedEntity></performer>
	</procedure></entry>
	<entry><procedure classCode="PROC" moodCode="EVN">
		<templateId root="2.16.840.1.113883.10.20.22.4.14"/>
		<id root="1.2.3.4" extension="proc2"/>
		<code code="71388002" codeSystem="2.16.840.1.113883.6.96"/>
		<statusCode code="completed"/>
		<effectiveTime value="20170812"/>
		<performer><assignedEntity>
			<id root="2.16.840.1.113883.4.6" extension="9999999999"/>
			<assignedPerson><name><given>Grace</given><family>Hopper</family></name></assignedPerson>
		</assignedEntity></performer>
	</procedure></entry>`

const medicationsSection = `
	<templateId root="2.16.840.1.113883.10.20.22.2.1.1"/>
	<code code="10160-0" codeSystem="2.16.840.1.113883.6.1"/>
	<title>Medications</title>
	<entry><substanceAdministration classCode="SBADM" moodCode="EVN">
		<templateId root="2.16.840.1.113883.10.20.22.4.16"/>
		<id root="1.2.3.4" extension="med1"/>
		<statusCode code="active"/>
		<effectiveTime xsi:type="IVL_TS"><low value="20170701"/></effectiveTime>
		<routeCode code="C38288" codeSystem="2.16.840.1.113883.3.26.1.1" displayName="Oral"/>
		<doseQuantity value="81" unit="mg"/>
		<consumable><manufacturedProduct><manufacturedMaterial>
			<code code="243670" codeSystem="2.16.840.1.113883.6.88" displayName="aspirin 81 MG Oral Tablet"/>
		</manufacturedMaterial></manufacturedProduct></consumable>
	</substanceAdministration></entry>`

func convert(t *testing.T, document []byte, opts ...cdaconvert.Option) *cdaconvert.Result {
	t.Helper()
	c, err := New(cdaconvert.CCDA21, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := c.Convert(context.Background(), document)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	return res
}

func TestConvertFullDocument(t *testing.T) {
	res := convert(t, ccdWith(problemsSection, vitalsSection, proceduresSection, medicationsSection))
	if rej, ok := res.Rejection(); ok {
		t.Fatalf("document rejected: %v", rej)
	}
	bundle := res.Bundle
	if bundle == nil {
		t.Fatal("no bundle produced")
	}
	if bundle.Type != "document" {
		t.Errorf("bundle type = %q", bundle.Type)
	}
	if len(bundle.Entry) == 0 || bundle.Entry[0].Resource.Kind() != "Composition" {
		t.Fatal("the composition must be the first bundle entry")
	}
	if res.DocumentID == "" {
		t.Error("document id should be extracted")
	}

	counts := map[string]int{}
	for _, e := range bundle.Entry {
		counts[e.Resource.Kind()]++
	}
	if counts["Patient"] != 1 {
		t.Errorf("patients = %d, want 1", counts["Patient"])
	}
	if counts["Condition"] != 1 {
		t.Errorf("conditions = %d, want 1", counts["Condition"])
	}
	// Panel plus two member observations.
	if counts["Observation"] != 3 {
		t.Errorf("observations = %d, want 3", counts["Observation"])
	}
	if counts["Procedure"] != 2 {
		t.Errorf("procedures = %d, want 2", counts["Procedure"])
	}
	if counts["MedicationStatement"] != 1 {
		t.Errorf("medication statements = %d, want 1", counts["MedicationStatement"])
	}

	// Every internal reference must resolve inside the bundle.
	urls := map[string]bool{}
	for _, e := range bundle.Entry {
		urls[e.FullURL] = true
	}
	for _, cond := range bundle.ResourcesOfKind("Condition") {
		subject := cond.(*fhir.Condition).Subject
		if subject == nil || !urls[subject.Reference] {
			t.Errorf("condition subject %v does not resolve inside the bundle", subject)
		}
	}
}

func TestConvertDeduplicatesPractitioners(t *testing.T) {
	res := convert(t, ccdWith(proceduresSection))
	if res.Bundle == nil {
		t.Fatal("no bundle produced")
	}

	// Both procedures name the same performer identifier; one practitioner
	// resource serves both. The document author is a distinct practitioner.
	var shared []fhir.Resource
	for _, p := range res.Bundle.ResourcesOfKind("Practitioner") {
		for _, id := range p.(*fhir.Practitioner).Identifier {
			if id.Value == "9999999999" {
				shared = append(shared, p)
			}
		}
	}
	if len(shared) != 1 {
		t.Fatalf("practitioners with the shared identifier = %d, want 1", len(shared))
	}

	procs := res.Bundle.ResourcesOfKind("Procedure")
	if len(procs) != 2 {
		t.Fatalf("procedures = %d, want 2", len(procs))
	}
	want := "urn:uuid:" + shared[0].GetID()
	for _, p := range procs {
		performers := p.(*fhir.Procedure).Performer
		if len(performers) != 1 || performers[0].Actor.Reference != want {
			t.Errorf("procedure performer = %+v, want %s", performers, want)
		}
	}
}

func TestConvertQuantityAlwaysCarriesSystem(t *testing.T) {
	res := convert(t, ccdWith(vitalsSection))
	if res.Bundle == nil {
		t.Fatal("no bundle produced")
	}

	var checked int
	for _, o := range res.Bundle.ResourcesOfKind("Observation") {
		obs := o.(*fhir.Observation)
		if obs.ValueQuantity == nil {
			continue
		}
		checked++
		if obs.ValueQuantity.System != terminology.UCUM {
			t.Errorf("quantity system = %q, want UCUM", obs.ValueQuantity.System)
		}
		if obs.ValueQuantity.Code == "" {
			t.Error("quantity code should never be empty")
		}
		if obs.ValueQuantity.Unit == "" && obs.ValueQuantity.Code != terminology.UnitDimensionless {
			t.Errorf("unit-less quantity code = %q, want dimensionless marker", obs.ValueQuantity.Code)
		}
	}
	if checked != 2 {
		t.Errorf("quantity observations checked = %d, want 2", checked)
	}
}

func TestConvertSkipsUnknownAllergy(t *testing.T) {
	section := `
	<templateId root="2.16.840.1.113883.10.20.22.2.6.1"/>
	<code code="48765-2" codeSystem="2.16.840.1.113883.6.1"/>
	<title>Allergies</title>
	<entry><act classCode="ACT" moodCode="EVN">
		<templateId root="2.16.840.1.113883.10.20.22.4.30"/>
		<id root="1.2.3.4" extension="aconc1"/>
		<code code="CONC" codeSystem="2.16.840.1.113883.5.6"/>
		<statusCode code="active"/>
		<effectiveTime><low value="20170801"/></effectiveTime>
		<entryRelationship typeCode="SUBJ"><observation classCode="OBS" moodCode="EVN">
			<templateId root="2.16.840.1.113883.10.20.22.4.7"/>
			<id root="1.2.3.4" extension="allergy1"/>
			<code code="ASSERTION" codeSystem="2.16.840.1.113883.5.4"/>
			<statusCode code="completed"/>
			<value xsi:type="CD" nullFlavor="UNK"/>
		</observation></entryRelationship>
	</act></entry>`

	res := convert(t, ccdWith(section, problemsSection))
	if res.Rejected() {
		t.Fatal("a skipped resource must not reject the document")
	}
	if got := len(res.Bundle.ResourcesOfKind("AllergyIntolerance")); got != 0 {
		t.Errorf("allergy resources = %d, want the unknown allergy skipped", got)
	}
	if got := len(res.Bundle.ResourcesOfKind("Condition")); got != 1 {
		t.Errorf("conditions = %d, the rest of the document should convert", got)
	}

	var warned bool
	for _, issue := range res.Warnings() {
		if issue.Code == cdaconvert.IssueTypeMissingRequired {
			warned = true
		}
	}
	if !warned {
		t.Error("the skip should be recorded as missing required data")
	}
	if got := len(res.DecisionsOf(cdaconvert.DecisionSkippedResource)); got != 1 {
		t.Errorf("skipped-resource decisions = %d, want 1", got)
	}
}

func TestConvertDeterministicResourceIDs(t *testing.T) {
	document := ccdWith(problemsSection, vitalsSection)

	first := convert(t, document)
	second := convert(t, document)
	if first.Bundle == nil || second.Bundle == nil {
		t.Fatal("both conversions should produce bundles")
	}

	if first.Bundle.ID == second.Bundle.ID {
		t.Error("bundle ids should be freshly generated per conversion")
	}
	if len(first.Bundle.Entry) != len(second.Bundle.Entry) {
		t.Fatalf("entry counts differ: %d vs %d", len(first.Bundle.Entry), len(second.Bundle.Entry))
	}
	for i := range first.Bundle.Entry {
		a, b := first.Bundle.Entry[i].Resource, second.Bundle.Entry[i].Resource
		if a.Kind() != b.Kind() || a.GetID() != b.GetID() {
			t.Errorf("entry %d: %s/%s vs %s/%s, want identical resource ids across runs",
				i, a.Kind(), a.GetID(), b.Kind(), b.GetID())
		}
	}
}

func TestConvertMalformedInput(t *testing.T) {
	res := convert(t, []byte("<ClinicalDocument><id"))
	rej, ok := res.Rejection()
	if !ok || rej.Code != cdaconvert.IssueTypeMalformed {
		t.Fatalf("rejection = (%+v, %v), want malformed-input", rej, ok)
	}
	if res.Bundle != nil {
		t.Error("no bundle should be produced for malformed input")
	}
}

func TestConvertEmptyDocument(t *testing.T) {
	c, err := New(cdaconvert.CCDA21)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Convert(context.Background(), nil); err == nil {
		t.Error("empty input should be an error, not a result")
	}
}

func TestConvertUnsupportedRelease(t *testing.T) {
	if _, err := New(cdaconvert.CDARelease("C-CDA-9.9")); err == nil {
		t.Error("unsupported release should fail construction")
	}
}

func TestConvertCancelledContext(t *testing.T) {
	c, err := New(cdaconvert.CCDA21)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Convert(ctx, ccdWith(problemsSection)); err == nil {
		t.Error("a cancelled context should surface as an error")
	}
}

func TestConvertProvenanceToggle(t *testing.T) {
	document := ccdWith(problemsSection)

	with := convert(t, document)
	if got := len(with.Bundle.ResourcesOfKind("Provenance")); got != 1 {
		t.Errorf("provenance resources = %d, want 1 by default", got)
	}

	without := convert(t, document, cdaconvert.WithProvenance(false))
	if got := len(without.Bundle.ResourcesOfKind("Provenance")); got != 0 {
		t.Errorf("provenance resources = %d, want none when disabled", got)
	}
}

func TestConvertMetrics(t *testing.T) {
	c, err := New(cdaconvert.CCDA21)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Convert(context.Background(), ccdWith(problemsSection)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Convert(context.Background(), []byte("not xml")); err != nil {
		t.Fatal(err)
	}

	m := c.Metrics()
	if got := m.ConversionsTotal(); got != 2 {
		t.Errorf("ConversionsTotal = %d, want 2", got)
	}
	if got := m.ConversionsRejected(); got != 1 {
		t.Errorf("ConversionsRejected = %d, want 1", got)
	}
	if m.ResourcesEmitted() == 0 {
		t.Error("emitted resources should be counted")
	}
	if _, ok := m.StageStats("parse"); !ok {
		t.Error("parse stage timing should be collected")
	}
}
