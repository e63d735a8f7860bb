package mapper

import (
	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/template"
	"github.com/gofhir/cdaconvert/terminology"
)

// mapOrganizer produces a panel observation whose members are the
// organizer's component observations. A rejected or skipped member never
// takes the panel down with it.
func (m *Mapper) mapOrganizer(sc *sectionCtx, org *statement.ClinicalStatement, category string, memberKind template.MapKind) {
	code := m.concept(sc, org.Code, org.Path+"/code")
	if code == nil {
		// A code-less organizer still carries its members; they map as
		// standalone observations.
		for _, member := range org.Components {
			m.mapObservation(sc, member, category)
		}
		return
	}

	key, synthesized := statementKey("Observation", org)
	res, created := sc.pc.Registry.Claim(key, func(id string) fhir.Resource {
		o := fhir.NewObservation()
		o.SetID(id)
		return o
	})
	panel := res.(*fhir.Observation)
	if !created {
		sc.addEntry(panel)
		return
	}

	panel.Identifier = identifiersOf(org.IDs)
	panel.Code = code
	panel.Status = observationStatus(org.StatusCode)
	panel.Category = []fhir.CodeableConcept{*fixedConcept(terminology.ObservationCategory.MustConcept(category))}
	if ref, ok := sc.pc.PatientRef(); ok {
		panel.Subject = ref
	}
	if period := periodOf(org.Effective); period != nil {
		panel.EffectivePeriod = period
	} else {
		panel.EffectiveDateTime = effectivePoint(org.Effective)
	}

	for _, component := range org.Components {
		if sch, _ := m.templates.Dispatch(component.TemplateIDs); sch.Kind != memberKind {
			continue
		}
		member := m.mapObservation(sc, component, category)
		if member == nil {
			continue
		}
		panel.HasMember = append(panel.HasMember, fhir.Reference{
			Reference: "urn:uuid:" + member.GetID(),
			Type:      "Observation",
		})
	}

	if synthesized {
		m.recordSynthesizedID(sc.pc, org.Path, panel)
	}
	sc.addEntry(panel)
}

// mapObservation produces one observation from a result, vital sign or
// social history statement. The value maps by its wire kind; explicitly
// null-flavored values become a data-absent reason rather than silence.
func (m *Mapper) mapObservation(sc *sectionCtx, st *statement.ClinicalStatement, category string) *fhir.Observation {
	code := m.concept(sc, st.Code, st.Path+"/code")
	if code == nil {
		m.skip(sc, st, "Observation", "observation carries no code")
		return nil
	}

	key, synthesized := statementKey("Observation", st)
	res, created := sc.pc.Registry.Claim(key, func(id string) fhir.Resource {
		o := fhir.NewObservation()
		o.SetID(id)
		return o
	})
	obs := res.(*fhir.Observation)
	if !created {
		sc.addEntry(obs)
		return obs
	}

	obs.Identifier = identifiersOf(st.IDs)
	obs.Code = code
	obs.Status = observationStatus(st.StatusCode)
	obs.Category = []fhir.CodeableConcept{*fixedConcept(terminology.ObservationCategory.MustConcept(category))}
	if ref, ok := sc.pc.PatientRef(); ok {
		obs.Subject = ref
	}
	if period := periodOf(st.Effective); period != nil {
		obs.EffectivePeriod = period
	} else {
		obs.EffectiveDateTime = effectivePoint(st.Effective)
	}

	switch {
	case st.Value == nil:
		obs.DataAbsentReason = dataAbsent("")
	case st.Value.IsNull():
		obs.DataAbsentReason = dataAbsent(st.Value.Null)
	case st.Value.Quantity != nil:
		obs.ValueQuantity = quantityOf(st.Value.Quantity)
	case st.Value.Coded != nil:
		obs.ValueCodeableConcept = m.concept(sc, st.Value.Coded, st.Path+"/value")
	case st.Value.Str != "":
		obs.ValueString = st.Value.Str
	default:
		obs.DataAbsentReason = dataAbsent("")
	}

	for _, pf := range st.Performers {
		if practitioner, ok := m.claimPractitioner(sc.pc, pf.PersonName, pf.IDs); ok {
			obs.Performer = append(obs.Performer, fhir.Reference{
				Reference: "urn:uuid:" + practitioner.GetID(),
				Type:      "Practitioner",
			})
		} else {
			m.omitReference(sc.pc, st.Path, "performer")
		}
	}

	if synthesized {
		m.recordSynthesizedID(sc.pc, st.Path, obs)
	}
	sc.addEntry(obs)
	return obs
}

func observationStatus(statusCode string) string {
	switch statusCode {
	case "active":
		return "preliminary"
	case "aborted", "cancelled":
		return "cancelled"
	default:
		return "final"
	}
}
