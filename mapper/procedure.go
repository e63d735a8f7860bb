package mapper

import (
	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/terminology"
)

// mapProcedure produces a procedure resource.
func (m *Mapper) mapProcedure(sc *sectionCtx, st *statement.ClinicalStatement) {
	code := m.concept(sc, st.Code, st.Path+"/code")
	if code == nil {
		m.skip(sc, st, "Procedure", "procedure activity carries no code")
		return
	}

	key, synthesized := statementKey("Procedure", st)
	res, created := sc.pc.Registry.Claim(key, func(id string) fhir.Resource {
		p := fhir.NewProcedure()
		p.SetID(id)
		return p
	})
	proc := res.(*fhir.Procedure)
	if !created {
		sc.addEntry(proc)
		return
	}

	proc.Identifier = identifiersOf(st.IDs)
	proc.Code = code
	proc.Status, _ = terminology.ProcedureStatus(st.StatusCode)
	if ref, ok := sc.pc.PatientRef(); ok {
		proc.Subject = ref
	}
	if period := periodOf(st.Effective); period != nil {
		proc.PerformedPeriod = period
	} else {
		proc.PerformedDateTime = effectivePoint(st.Effective)
	}

	for _, pf := range st.Performers {
		practitioner, ok := m.claimPractitioner(sc.pc, pf.PersonName, pf.IDs)
		if !ok {
			m.omitReference(sc.pc, st.Path, "performer")
			continue
		}
		performer := fhir.ProcedurePerformer{
			Actor: fhir.Reference{
				Reference: "urn:uuid:" + practitioner.GetID(),
				Type:      "Practitioner",
			},
		}
		if pf.OrgName != "" || len(pf.OrgIDs) > 0 {
			if orgRef, ok := m.claimOrganization(sc.pc, pf.OrgIDs, pf.OrgName, nil); ok {
				performer.OnBehalfOf = orgRef
			}
		}
		proc.Performer = append(proc.Performer, performer)
	}

	if synthesized {
		m.recordSynthesizedID(sc.pc, st.Path, proc)
	}
	sc.addEntry(proc)
}

// mapEncounter produces an encounter resource.
func (m *Mapper) mapEncounter(sc *sectionCtx, st *statement.ClinicalStatement) {
	key, synthesized := statementKey("Encounter", st)
	res, created := sc.pc.Registry.Claim(key, func(id string) fhir.Resource {
		e := fhir.NewEncounter()
		e.SetID(id)
		return e
	})
	enc := res.(*fhir.Encounter)
	if !created {
		sc.addEntry(enc)
		return
	}

	enc.Identifier = identifiersOf(st.IDs)
	enc.Status, _ = terminology.EncounterStatus(st.StatusCode)
	// Ambulatory is the fixed default class; the source encounter code
	// does not reliably discriminate the care setting.
	enc.Class = &fhir.Coding{
		System:  "http://terminology.hl7.org/CodeSystem/v3-ActCode",
		Code:    "AMB",
		Display: "ambulatory",
	}
	if t := m.concept(sc, st.Code, st.Path+"/code"); t != nil {
		enc.Type = []fhir.CodeableConcept{*t}
	}
	if ref, ok := sc.pc.PatientRef(); ok {
		enc.Subject = ref
	}
	if period := periodOf(st.Effective); period != nil {
		enc.Period = period
	} else if point := effectivePoint(st.Effective); point != "" {
		enc.Period = &fhir.Period{Start: point}
	}

	for _, pf := range st.Performers {
		practitioner, ok := m.claimPractitioner(sc.pc, pf.PersonName, pf.IDs)
		if !ok {
			m.omitReference(sc.pc, st.Path, "participant")
			continue
		}
		enc.Participant = append(enc.Participant, fhir.EncounterParticipant{
			Individual: &fhir.Reference{
				Reference: "urn:uuid:" + practitioner.GetID(),
				Type:      "Practitioner",
			},
		})
	}

	if synthesized {
		m.recordSynthesizedID(sc.pc, st.Path, enc)
	}
	sc.addEntry(enc)
}

// mapCarePlan produces a care plan from a planned act or procedure.
func (m *Mapper) mapCarePlan(sc *sectionCtx, st *statement.ClinicalStatement) {
	category := m.concept(sc, st.Code, st.Path+"/code")
	description := ""
	if st.TextRef != "" {
		if text, ok := sc.ix.Resolve(st.TextRef); ok {
			description = text
		}
	}
	if description == "" && category != nil {
		description = category.Text
	}
	if category == nil && description == "" {
		m.skip(sc, st, "CarePlan", "planned activity carries neither code nor narrative text")
		return
	}

	key, synthesized := statementKey("CarePlan", st)
	res, created := sc.pc.Registry.Claim(key, func(id string) fhir.Resource {
		cp := fhir.NewCarePlan()
		cp.SetID(id)
		return cp
	})
	plan := res.(*fhir.CarePlan)
	if !created {
		sc.addEntry(plan)
		return
	}

	plan.Identifier = identifiersOf(st.IDs)
	plan.Status = "active"
	plan.Intent = "plan"
	if category != nil {
		plan.Category = []fhir.CodeableConcept{*category}
	}
	plan.Description = description
	if ref, ok := sc.pc.PatientRef(); ok {
		plan.Subject = ref
	}
	if period := periodOf(st.Effective); period != nil {
		plan.Period = period
	} else if point := effectivePoint(st.Effective); point != "" {
		plan.Period = &fhir.Period{Start: point}
	}

	if synthesized {
		m.recordSynthesizedID(sc.pc, st.Path, plan)
	}
	sc.addEntry(plan)
}
