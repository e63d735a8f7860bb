package mapper

import (
	"github.com/gofhir/cdaconvert/datatype"
	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/pipeline"
	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/template"
	"github.com/gofhir/cdaconvert/terminology"
)

// resourceStage maps every validated statement of every section through
// its kind's strategy. Sections process independently; one skipped
// resource never cascades.
type resourceStage struct {
	m *Mapper
}

func (s *resourceStage) Name() string { return "resources" }

func (s *resourceStage) Run(pc *pipeline.Context) error {
	m := s.m
	for _, sec := range pc.Doc.Sections {
		compSec := &fhir.CompositionSection{
			Title: sec.Title,
			Code:  m.concept(nil, sec.Code, sec.Path+"/code"),
		}
		sc := &sectionCtx{
			pc:   pc,
			sec:  sec,
			ix:   statement.BuildNarrativeIndex(sec.Text),
			comp: compSec,
		}
		for _, st := range sec.Statements {
			if pc.Metrics != nil && pc.Options.CollectMetrics {
				pc.Metrics.RecordStatement(false)
			}
			m.mapStatement(sc, st)
		}
		if pc.Composition != nil {
			pc.Composition.Section = append(pc.Composition.Section, *compSec)
		}
	}
	return nil
}

// mapStatement routes one statement to the strategy its dispatched schema
// names. Generic statements carry no strategy and produce nothing.
func (m *Mapper) mapStatement(sc *sectionCtx, st *statement.ClinicalStatement) {
	sch, _ := m.templates.Dispatch(st.TemplateIDs)
	switch sch.Kind {
	case template.KindProblemConcern:
		m.mapProblemConcern(sc, st)
	case template.KindProblemObservation:
		m.mapCondition(sc, nil, st)
	case template.KindAllergyConcern:
		m.mapAllergyConcern(sc, st)
	case template.KindAllergyObservation:
		m.mapAllergy(sc, nil, st)
	case template.KindMedicationActivity:
		m.mapMedication(sc, st)
	case template.KindImmunizationActivity:
		m.mapImmunization(sc, st)
	case template.KindProcedureActivity:
		m.mapProcedure(sc, st)
	case template.KindResultOrganizer:
		m.mapOrganizer(sc, st, "laboratory", template.KindResultObservation)
	case template.KindResultObservation:
		m.mapObservation(sc, st, "laboratory")
	case template.KindVitalSignsOrganizer:
		m.mapOrganizer(sc, st, "vital-signs", template.KindVitalSignObservation)
	case template.KindVitalSignObservation:
		m.mapObservation(sc, st, "vital-signs")
	case template.KindSmokingStatus, template.KindSocialHistory:
		m.mapObservation(sc, st, "social-history")
	case template.KindEncounterActivity:
		m.mapEncounter(sc, st)
	case template.KindPlannedAct, template.KindPlannedProcedure:
		m.mapCarePlan(sc, st)
	}
}

// relatedOfKind returns the related statements whose dispatched schema has
// the given kind.
func (m *Mapper) relatedOfKind(st *statement.ClinicalStatement, typeCode string, kind template.MapKind) []*statement.ClinicalStatement {
	var out []*statement.ClinicalStatement
	for _, rel := range st.Relationships {
		if typeCode != "" && rel.TypeCode != typeCode {
			continue
		}
		if sch, _ := m.templates.Dispatch(rel.Statement.TemplateIDs); sch.Kind == kind {
			out = append(out, rel.Statement)
		}
	}
	return out
}

// mapProblemConcern unwraps a concern act into its problem observations.
// The concern supplies the clinical status; each observation becomes one
// condition.
func (m *Mapper) mapProblemConcern(sc *sectionCtx, act *statement.ClinicalStatement) {
	problems := m.relatedOfKind(act, "SUBJ", template.KindProblemObservation)
	if len(problems) == 0 {
		m.skip(sc, act, "Condition", "concern act carries no problem observation")
		return
	}
	for _, obs := range problems {
		m.mapCondition(sc, act, obs)
	}
}

// mapCondition produces a condition from a problem observation. The
// diagnosis code lives in the observation's value; without it there is
// nothing to discriminate and the resource is skipped.
func (m *Mapper) mapCondition(sc *sectionCtx, concern, obs *statement.ClinicalStatement) {
	var coded *datatype.CodedValue
	if obs.Value != nil {
		coded = obs.Value.Coded
	}
	code := m.concept(sc, coded, obs.Path+"/value")
	if code == nil {
		m.skip(sc, obs, "Condition", "problem observation carries no diagnosis code")
		return
	}

	key, synthesized := statementKey("Condition", obs)
	res, created := sc.pc.Registry.Claim(key, func(id string) fhir.Resource {
		c := fhir.NewCondition()
		c.SetID(id)
		return c
	})
	cond := res.(*fhir.Condition)
	if !created {
		sc.addEntry(cond)
		return
	}

	cond.Identifier = identifiersOf(obs.IDs)
	cond.Code = code
	cond.ClinicalStatus = fixedConcept(terminology.ConditionClinical.MustConcept(conditionClinical(concern, obs)))
	cond.VerificationStatus = fixedConcept(terminology.ConditionVerification.MustConcept("confirmed"))
	// Problem-list-item is the one fixed default for the category; the
	// source carries no reliable diagnosis-role classification.
	cond.Category = []fhir.CodeableConcept{*fixedConcept(terminology.ConditionCategory.MustConcept("problem-list-item"))}
	if ref, ok := sc.pc.PatientRef(); ok {
		cond.Subject = ref
	}
	if obs.Effective != nil {
		cond.OnsetDateTime = timeString(obs.Effective.Low)
		cond.AbatementDateTime = timeString(obs.Effective.High)
	}
	cond.RecordedDate = firstAuthorTime(concern, obs)

	if synthesized {
		m.recordSynthesizedID(sc.pc, obs.Path, cond)
	}
	sc.addEntry(cond)
}

// conditionClinical derives the clinical status from the concern act's
// state and the observation's abatement.
func conditionClinical(concern, obs *statement.ClinicalStatement) string {
	status := ""
	if concern != nil {
		status = concern.StatusCode
	} else {
		status = obs.StatusCode
	}
	switch status {
	case "active":
		return "active"
	case "suspended":
		return "remission"
	case "completed":
		if obs.Effective != nil && obs.Effective.High != nil {
			return "resolved"
		}
		return "inactive"
	default:
		return "active"
	}
}

// mapAllergyConcern unwraps an allergy concern act.
func (m *Mapper) mapAllergyConcern(sc *sectionCtx, act *statement.ClinicalStatement) {
	allergies := m.relatedOfKind(act, "SUBJ", template.KindAllergyObservation)
	if len(allergies) == 0 {
		m.skip(sc, act, "AllergyIntolerance", "concern act carries no allergy observation")
		return
	}
	for _, obs := range allergies {
		m.mapAllergy(sc, act, obs)
	}
}

// mapAllergy produces an allergy intolerance. The allergen comes from the
// consumable participant, falling back to the observation's coded value;
// when both are explicitly unknown or absent the resource is skipped and
// the rest of the document converts.
func (m *Mapper) mapAllergy(sc *sectionCtx, concern, obs *statement.ClinicalStatement) {
	substance := allergySubstance(obs)
	code := m.concept(sc, substance, obs.Path+"/participant")
	if code == nil && obs.Value != nil && !obs.Value.IsNull() {
		code = m.concept(sc, obs.Value.Coded, obs.Path+"/value")
	}
	if code == nil {
		m.skip(sc, obs, "AllergyIntolerance", "allergy code and value are both unknown or absent")
		return
	}

	key, synthesized := statementKey("AllergyIntolerance", obs)
	res, created := sc.pc.Registry.Claim(key, func(id string) fhir.Resource {
		a := fhir.NewAllergyIntolerance()
		a.SetID(id)
		return a
	})
	allergy := res.(*fhir.AllergyIntolerance)
	if !created {
		sc.addEntry(allergy)
		return
	}

	allergy.Identifier = identifiersOf(obs.IDs)
	allergy.Code = code
	allergy.Type = "allergy"
	allergy.ClinicalStatus = fixedConcept(terminology.AllergyClinical.MustConcept(allergyClinical(concern)))
	verification := "confirmed"
	if obs.NegationInd {
		verification = "refuted"
	}
	allergy.VerificationStatus = fixedConcept(terminology.AllergyVerification.MustConcept(verification))
	if ref, ok := sc.pc.PatientRef(); ok {
		allergy.Patient = ref
	}
	if obs.Effective != nil {
		allergy.OnsetDateTime = timeString(obs.Effective.Low)
	}
	allergy.RecordedDate = firstAuthorTime(concern, obs)

	// A generic allergy code is never resolved to a category by
	// heuristic; the category stays absent unless the caller's
	// classifier knows the substance.
	if m.opts.Classifier != nil && substance != nil && substance.Code != "" {
		if category, ok := m.opts.Classifier.Classify(substance.CodeSystem, substance.Code); ok {
			allergy.Category = append(allergy.Category, category)
		}
	}

	for _, reaction := range m.relatedOfKind(obs, "MFST", template.KindReactionObservation) {
		m.addReaction(sc, allergy, reaction)
	}

	if synthesized {
		m.recordSynthesizedID(sc.pc, obs.Path, allergy)
	}
	sc.addEntry(allergy)
}

func allergySubstance(obs *statement.ClinicalStatement) *datatype.CodedValue {
	for _, part := range obs.Participants {
		if part.TypeCode != "CSM" && part.TypeCode != "" {
			continue
		}
		if part.Role != nil && part.Role.PlayingEntity != nil && part.Role.PlayingEntity.Code.HasCode() {
			return part.Role.PlayingEntity.Code
		}
	}
	return nil
}

func allergyClinical(concern *statement.ClinicalStatement) string {
	if concern == nil || concern.StatusCode == "active" || concern.StatusCode == "" {
		return "active"
	}
	return "inactive"
}

// addReaction appends one reaction event with its manifestation and
// severity.
func (m *Mapper) addReaction(sc *sectionCtx, allergy *fhir.AllergyIntolerance, reaction *statement.ClinicalStatement) {
	var coded *datatype.CodedValue
	if reaction.Value != nil {
		coded = reaction.Value.Coded
	}
	manifestation := m.concept(sc, coded, reaction.Path+"/value")
	if manifestation == nil {
		return
	}

	event := fhir.AllergyIntoleranceReaction{
		Manifestation: []fhir.CodeableConcept{*manifestation},
	}
	for _, sev := range m.relatedOfKind(reaction, "SUBJ", template.KindSeverityObservation) {
		if sev.Value == nil || sev.Value.Coded == nil {
			continue
		}
		if severity, ok := terminology.ReactionSeverity(sev.Value.Coded.Code); ok {
			event.Severity = severity
			break
		}
	}
	allergy.Reaction = append(allergy.Reaction, event)
}

// firstAuthorTime returns the earliest declared author time across the
// concern and its observation.
func firstAuthorTime(concern, obs *statement.ClinicalStatement) string {
	if concern != nil {
		for _, a := range concern.Authors {
			if a.Time != nil {
				return a.Time.String()
			}
		}
	}
	for _, a := range obs.Authors {
		if a.Time != nil {
			return a.Time.String()
		}
	}
	return ""
}
