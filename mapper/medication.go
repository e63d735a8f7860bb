package mapper

import (
	"github.com/gofhir/cdaconvert"
	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/terminology"
)

// mapMedication produces a medication statement. The product code is the
// discriminating field; a consumable with a null-flavored code yields
// nothing.
func (m *Mapper) mapMedication(sc *sectionCtx, st *statement.ClinicalStatement) {
	var medication *fhir.CodeableConcept
	if st.Consumable != nil {
		medication = m.concept(sc, st.Consumable.Code, st.Path+"/consumable")
	}
	if medication == nil {
		m.skip(sc, st, "MedicationStatement", "medication activity carries no product code")
		return
	}

	key, synthesized := statementKey("MedicationStatement", st)
	res, created := sc.pc.Registry.Claim(key, func(id string) fhir.Resource {
		ms := fhir.NewMedicationStatement()
		ms.SetID(id)
		return ms
	})
	med := res.(*fhir.MedicationStatement)
	if !created {
		sc.addEntry(med)
		return
	}

	med.Identifier = identifiersOf(st.IDs)
	med.MedicationCodeableConcept = medication
	med.Status = m.medicationStatus(sc, st)
	if ref, ok := sc.pc.PatientRef(); ok {
		med.Subject = ref
	}
	if period := periodOf(st.Effective); period != nil {
		med.EffectivePeriod = period
	} else {
		med.EffectiveDateTime = effectivePoint(st.Effective)
	}
	med.DateAsserted = firstAuthorTime(nil, st)

	if dosage := m.dosageOf(sc, st); dosage != nil {
		med.Dosage = []fhir.Dosage{*dosage}
	}

	if synthesized {
		m.recordSynthesizedID(sc.pc, st.Path, med)
	}
	sc.addEntry(med)
}

func (m *Mapper) medicationStatus(sc *sectionCtx, st *statement.ClinicalStatement) string {
	status, known := terminology.MedicationStatus(st.StatusCode)
	if !known {
		sc.pc.Result.Record(cdaconvert.Decision{
			Kind:   cdaconvert.DecisionIgnoredConstruct,
			Path:   st.Path + "/statusCode",
			Detail: "statusCode " + st.StatusCode + " has no medication status mapping; unknown recorded",
		})
	}
	return status
}

func (m *Mapper) dosageOf(sc *sectionCtx, st *statement.ClinicalStatement) *fhir.Dosage {
	dosage := &fhir.Dosage{}
	filled := false
	if st.RouteCode != nil {
		if route := m.concept(sc, st.RouteCode, st.Path+"/routeCode"); route != nil {
			dosage.Route = route
			filled = true
		}
	}
	if st.DoseQuantity != nil {
		dosage.DoseAndRate = []fhir.DosageDoseAndRate{{DoseQuantity: quantityOf(st.DoseQuantity)}}
		filled = true
	}
	if st.TextRef != "" {
		if text, ok := sc.ix.Resolve(st.TextRef); ok {
			dosage.Text = text
			filled = true
		}
	}
	if !filled {
		return nil
	}
	return dosage
}

// mapImmunization produces an immunization. A negated activity records a
// vaccine not given.
func (m *Mapper) mapImmunization(sc *sectionCtx, st *statement.ClinicalStatement) {
	var vaccine *fhir.CodeableConcept
	if st.Consumable != nil {
		vaccine = m.concept(sc, st.Consumable.Code, st.Path+"/consumable")
	}
	if vaccine == nil {
		m.skip(sc, st, "Immunization", "immunization activity carries no vaccine code")
		return
	}

	key, synthesized := statementKey("Immunization", st)
	res, created := sc.pc.Registry.Claim(key, func(id string) fhir.Resource {
		im := fhir.NewImmunization()
		im.SetID(id)
		return im
	})
	imm := res.(*fhir.Immunization)
	if !created {
		sc.addEntry(imm)
		return
	}

	imm.Identifier = identifiersOf(st.IDs)
	imm.VaccineCode = vaccine
	if st.NegationInd {
		imm.Status = "not-done"
	} else {
		imm.Status, _ = terminology.ImmunizationStatus(st.StatusCode)
	}
	if ref, ok := sc.pc.PatientRef(); ok {
		imm.Patient = ref
	}
	imm.OccurrenceDateTime = effectivePoint(st.Effective)
	imm.LotNumber = st.Consumable.LotNumber
	if st.RouteCode != nil {
		imm.Route = m.concept(sc, st.RouteCode, st.Path+"/routeCode")
	}
	imm.DoseQuantity = quantityOf(st.DoseQuantity)

	if synthesized {
		m.recordSynthesizedID(sc.pc, st.Path, imm)
	}
	sc.addEntry(imm)
}
