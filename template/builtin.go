package template

import (
	"github.com/gofhir/cdaconvert/datatype"
	"github.com/gofhir/cdaconvert/statement"
)

// Template OIDs recognized by the built-in registry.
const (
	OIDProblemConcern       = "2.16.840.1.113883.10.20.22.4.3"
	OIDProblemObservation   = "2.16.840.1.113883.10.20.22.4.4"
	OIDAllergyConcern       = "2.16.840.1.113883.10.20.22.4.30"
	OIDAllergyObservation   = "2.16.840.1.113883.10.20.22.4.7"
	OIDReactionObservation  = "2.16.840.1.113883.10.20.22.4.9"
	OIDSeverityObservation  = "2.16.840.1.113883.10.20.22.4.8"
	OIDMedicationActivity   = "2.16.840.1.113883.10.20.22.4.16"
	OIDImmunizationActivity = "2.16.840.1.113883.10.20.22.4.52"
	OIDProcedureActivity    = "2.16.840.1.113883.10.20.22.4.14"
	OIDResultOrganizer      = "2.16.840.1.113883.10.20.22.4.1"
	OIDResultObservation    = "2.16.840.1.113883.10.20.22.4.2"
	OIDVitalSignsOrganizer  = "2.16.840.1.113883.10.20.22.4.26"
	OIDVitalSignObservation = "2.16.840.1.113883.10.20.22.4.27"
	OIDSmokingStatus        = "2.16.840.1.113883.10.20.22.4.78"
	OIDSocialHistory        = "2.16.840.1.113883.10.20.22.4.38"
	OIDEncounterActivity    = "2.16.840.1.113883.10.20.22.4.49"
	OIDPlannedAct           = "2.16.840.1.113883.10.20.22.4.39"
	OIDPlannedProcedure     = "2.16.840.1.113883.10.20.22.4.41"
)

// Section template OIDs.
const (
	OIDProblemsSection      = "2.16.840.1.113883.10.20.22.2.5.1"
	OIDAllergiesSection     = "2.16.840.1.113883.10.20.22.2.6.1"
	OIDMedicationsSection   = "2.16.840.1.113883.10.20.22.2.1.1"
	OIDImmunizationsSection = "2.16.840.1.113883.10.20.22.2.2.1"
	OIDProceduresSection    = "2.16.840.1.113883.10.20.22.2.7.1"
	OIDResultsSection       = "2.16.840.1.113883.10.20.22.2.3.1"
	OIDVitalSignsSection    = "2.16.840.1.113883.10.20.22.2.4.1"
	OIDSocialHistorySection = "2.16.840.1.113883.10.20.22.2.17"
	OIDEncountersSection    = "2.16.840.1.113883.10.20.22.2.22.1"
	OIDPlanSection          = "2.16.840.1.113883.10.20.22.2.10"
)

const oidActClass = "2.16.840.1.113883.5.6"

// Default builds the registry of built-in conformance schemas. Rule
// citations follow the consolidated template conformance numbering.
func Default() *Registry {
	r := NewRegistry()

	r.Register(&Schema{
		OID:   OIDProblemConcern,
		Name:  "problem concern act",
		Class: statement.ClassAct,
		Kind:  KindProblemConcern,
		Rules: []Rule{
			fixedCode("CONF:1198-9027", "CONC", oidActClass),
			requireID("CONF:1198-9026"),
			requireStatus("CONF:1198-9029"),
			highWhenCompleted("CONF:1198-31512"),
		},
	})
	r.Register(&Schema{
		OID:   OIDProblemObservation,
		Name:  "problem observation",
		Class: statement.ClassObservation,
		Kind:  KindProblemObservation,
		Rules: []Rule{
			requireID("CONF:1198-9041"),
			fixedStatus("CONF:1198-9049", "completed"),
			requireEffectiveTime("CONF:1198-9050"),
			requireValueKind("CONF:1198-9058", datatype.KindCoded),
		},
	})

	r.Register(&Schema{
		OID:   OIDAllergyConcern,
		Name:  "allergy concern act",
		Class: statement.ClassAct,
		Kind:  KindAllergyConcern,
		Rules: []Rule{
			fixedCode("CONF:1198-9141", "CONC", oidActClass),
			requireID("CONF:1198-9140"),
			requireStatus("CONF:1198-9143"),
			highWhenCompleted("CONF:1198-31526"),
		},
	})
	r.Register(&Schema{
		OID:   OIDAllergyObservation,
		Name:  "allergy intolerance observation",
		Class: statement.ClassObservation,
		Kind:  KindAllergyObservation,
		Rules: []Rule{
			requireID("CONF:1198-7382"),
			fixedStatus("CONF:1198-19114", "completed"),
			requireValueKind("CONF:1198-7390", datatype.KindCoded),
		},
	})
	r.Register(&Schema{
		OID:   OIDReactionObservation,
		Name:  "reaction observation",
		Class: statement.ClassObservation,
		Kind:  KindReactionObservation,
		Rules: []Rule{
			requireValueKind("CONF:1198-7335", datatype.KindCoded),
		},
	})
	r.Register(&Schema{
		OID:   OIDSeverityObservation,
		Name:  "severity observation",
		Class: statement.ClassObservation,
		Kind:  KindSeverityObservation,
		Rules: []Rule{
			requireValueKind("CONF:1198-7356", datatype.KindCoded),
		},
	})

	r.Register(&Schema{
		OID:   OIDMedicationActivity,
		Name:  "medication activity",
		Class: statement.ClassSubstanceAdministration,
		Kind:  KindMedicationActivity,
		Rules: []Rule{
			requireID("CONF:1198-7500"),
			requireStatus("CONF:1198-7507"),
			requireConsumable("CONF:1198-7520"),
		},
	})
	r.Register(&Schema{
		OID:   OIDImmunizationActivity,
		Name:  "immunization activity",
		Class: statement.ClassSubstanceAdministration,
		Kind:  KindImmunizationActivity,
		Rules: []Rule{
			requireID("CONF:1198-8827"),
			requireStatus("CONF:1198-8833"),
			requireConsumable("CONF:1198-8847"),
		},
	})

	r.Register(&Schema{
		OID:   OIDProcedureActivity,
		Name:  "procedure activity procedure",
		Class: statement.ClassProcedure,
		Kind:  KindProcedureActivity,
		Rules: []Rule{
			requireID("CONF:1198-7655"),
			requireCode("CONF:1198-7656"),
			requireStatus("CONF:1198-7661"),
		},
	})

	r.Register(&Schema{
		OID:   OIDResultOrganizer,
		Name:  "result organizer",
		Class: statement.ClassOrganizer,
		Kind:  KindResultOrganizer,
		Rules: []Rule{
			requireID("CONF:1198-7127"),
			requireCode("CONF:1198-7128"),
			requireStatus("CONF:1198-7123"),
			requireComponent("CONF:1198-7124"),
		},
	})
	r.Register(&Schema{
		OID:         OIDResultObservation,
		Name:        "result observation",
		Class:       statement.ClassObservation,
		Kind:        KindResultObservation,
		Specificity: 1,
		Rules: []Rule{
			requireID("CONF:1198-7130"),
			requireCode("CONF:1198-7133"),
			requireStatus("CONF:1198-7134"),
			requireValue("CONF:1198-7143"),
		},
	})

	r.Register(&Schema{
		OID:   OIDVitalSignsOrganizer,
		Name:  "vital signs organizer",
		Class: statement.ClassOrganizer,
		Kind:  KindVitalSignsOrganizer,
		Rules: []Rule{
			requireID("CONF:1198-7282"),
			requireStatus("CONF:1198-7284"),
			requireComponent("CONF:1198-7285"),
		},
	})
	// A vital sign observation layers on the result observation profile;
	// its higher specificity wins dispatch when both ids are declared. The
	// quantitative value constraint is strict: a coded value here is a
	// semantic type mismatch, never repaired.
	r.Register(&Schema{
		OID:         OIDVitalSignObservation,
		Name:        "vital sign observation",
		Class:       statement.ClassObservation,
		Kind:        KindVitalSignObservation,
		Specificity: 2,
		Rules: []Rule{
			requireID("CONF:1198-7300"),
			requireCode("CONF:1198-7301"),
			requireEffectiveTime("CONF:1198-7304"),
			requireValueKind("CONF:1198-7305", datatype.KindQuantity),
		},
	})

	r.Register(&Schema{
		OID:         OIDSocialHistory,
		Name:        "social history observation",
		Class:       statement.ClassObservation,
		Kind:        KindSocialHistory,
		Specificity: 1,
		Rules: []Rule{
			requireID("CONF:1198-8551"),
			requireCode("CONF:1198-8558"),
			requireStatus("CONF:1198-8553"),
		},
	})
	r.Register(&Schema{
		OID:         OIDSmokingStatus,
		Name:        "smoking status observation",
		Class:       statement.ClassObservation,
		Kind:        KindSmokingStatus,
		Specificity: 2,
		Rules: []Rule{
			requireID("CONF:1198-14815"),
			fixedStatus("CONF:1198-14817", "completed"),
			requireEffectiveTime("CONF:1198-31928"),
			requireValueKind("CONF:1198-14810", datatype.KindCoded),
		},
	})

	r.Register(&Schema{
		OID:   OIDEncounterActivity,
		Name:  "encounter activity",
		Class: statement.ClassEncounter,
		Kind:  KindEncounterActivity,
		Rules: []Rule{
			requireID("CONF:1198-8711"),
		},
	})

	r.Register(&Schema{
		OID:   OIDPlannedAct,
		Name:  "planned act",
		Class: statement.ClassAct,
		Kind:  KindPlannedAct,
		Rules: []Rule{
			requireID("CONF:1198-8539"),
			requireStatus("CONF:1198-8540"),
		},
	})
	r.Register(&Schema{
		OID:   OIDPlannedProcedure,
		Name:  "planned procedure",
		Class: statement.ClassProcedure,
		Kind:  KindPlannedProcedure,
		Rules: []Rule{
			requireID("CONF:1198-30444"),
			requireStatus("CONF:1198-30445"),
		},
	})

	r.RegisterSection(&SectionSchema{OID: OIDProblemsSection, Code: "11450-4", Name: "problems", Kind: KindProblemConcern})
	r.RegisterSection(&SectionSchema{OID: OIDAllergiesSection, Code: "48765-2", Name: "allergies", Kind: KindAllergyConcern})
	r.RegisterSection(&SectionSchema{OID: OIDMedicationsSection, Code: "10160-0", Name: "medications", Kind: KindMedicationActivity})
	r.RegisterSection(&SectionSchema{OID: OIDImmunizationsSection, Code: "11369-6", Name: "immunizations", Kind: KindImmunizationActivity})
	r.RegisterSection(&SectionSchema{OID: OIDProceduresSection, Code: "47519-4", Name: "procedures", Kind: KindProcedureActivity})
	r.RegisterSection(&SectionSchema{OID: OIDResultsSection, Code: "30954-2", Name: "results", Kind: KindResultObservation})
	r.RegisterSection(&SectionSchema{OID: OIDVitalSignsSection, Code: "8716-3", Name: "vital signs", Kind: KindVitalSignObservation})
	r.RegisterSection(&SectionSchema{OID: OIDSocialHistorySection, Code: "29762-2", Name: "social history", Kind: KindSocialHistory})
	r.RegisterSection(&SectionSchema{OID: OIDEncountersSection, Code: "46240-8", Name: "encounters", Kind: KindEncounterActivity})
	r.RegisterSection(&SectionSchema{OID: OIDPlanSection, Code: "18776-5", Name: "plan of treatment", Kind: KindPlannedAct})

	return r
}
