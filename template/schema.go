// Package template dispatches clinical statements to conformance schemas
// by declared template identifier and validates them against each schema's
// ordered structural rules.
//
// Dispatch selects the single most-specific known schema among a
// statement's template ids; unknown ids fall through to a generic variant
// so no statement fails dispatch outright. Validation walks the schema's
// rules in order; every failure carries a rule citation and the statement's
// element path.
package template

import (
	"github.com/gofhir/cdaconvert/statement"
)

// MapKind names the mapping strategy a schema routes to.
type MapKind string

// Mapping strategy kinds.
const (
	KindProblemConcern       MapKind = "problem-concern"
	KindProblemObservation   MapKind = "problem-observation"
	KindAllergyConcern       MapKind = "allergy-concern"
	KindAllergyObservation   MapKind = "allergy-observation"
	KindReactionObservation  MapKind = "reaction-observation"
	KindSeverityObservation  MapKind = "severity-observation"
	KindMedicationActivity   MapKind = "medication-activity"
	KindImmunizationActivity MapKind = "immunization-activity"
	KindProcedureActivity    MapKind = "procedure-activity"
	KindResultOrganizer      MapKind = "result-organizer"
	KindResultObservation    MapKind = "result-observation"
	KindVitalSignsOrganizer  MapKind = "vital-signs-organizer"
	KindVitalSignObservation MapKind = "vital-sign-observation"
	KindSmokingStatus        MapKind = "smoking-status"
	KindSocialHistory        MapKind = "social-history"
	KindEncounterActivity    MapKind = "encounter-activity"
	KindPlannedAct           MapKind = "planned-act"
	KindPlannedProcedure     MapKind = "planned-procedure"
	KindGeneric              MapKind = "generic"
)

// Rule is one ordered conformance predicate. Check returns true on pass.
// All registered rules encode semantic or type constraints; cardinality
// questions among compatible wire types are settled by the datatype
// compatibility table before a rule ever sees the statement.
type Rule struct {
	ID          string
	Description string
	Check       func(*statement.ClinicalStatement) bool
}

// Violation is a failed rule attributed to a statement's element path.
type Violation struct {
	RuleID      string
	Description string
	Path        string
}

// Schema is one conformance profile: the template OID it binds to, the
// statement class it expects, its mapping strategy, and its ordered rules.
// Specificity breaks ties when a statement declares layered profiles; the
// higher value wins.
type Schema struct {
	OID         string
	Name        string
	Class       statement.Class
	Kind        MapKind
	Specificity int
	Rules       []Rule
}

// Validate evaluates the schema's rules in order against the statement and
// returns every violation. An empty slice means the statement conforms.
func (s *Schema) Validate(st *statement.ClinicalStatement) []Violation {
	var out []Violation
	for _, r := range s.Rules {
		if !r.Check(st) {
			out = append(out, Violation{
				RuleID:      r.ID,
				Description: r.Description,
				Path:        st.Path,
			})
		}
	}
	return out
}

// SectionSchema identifies a known document section by template OID and
// section code, and names the statement schemas expected inside it.
type SectionSchema struct {
	OID  string
	Code string
	Name string
	Kind MapKind
}

// Registry maps template OIDs to schemas. Built once, read-only afterwards;
// safe for concurrent dispatch.
type Registry struct {
	schemas  map[string]*Schema
	sections map[string]*SectionSchema
	byCode   map[string]*SectionSchema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas:  make(map[string]*Schema),
		sections: make(map[string]*SectionSchema),
		byCode:   make(map[string]*SectionSchema),
	}
}

// Register adds a statement schema, replacing any previous schema for the
// same OID.
func (r *Registry) Register(s *Schema) {
	r.schemas[s.OID] = s
}

// RegisterSection adds a section schema, indexed by OID and section code.
func (r *Registry) RegisterSection(s *SectionSchema) {
	r.sections[s.OID] = s
	if s.Code != "" {
		r.byCode[s.Code] = s
	}
}

// Lookup returns the schema registered for one OID.
func (r *Registry) Lookup(oid string) (*Schema, bool) {
	s, ok := r.schemas[oid]
	return s, ok
}

// Dispatch selects the most-specific known schema among the declared
// template ids. Ties resolve to the first declared id. The second return
// is false when no id is known; the caller proceeds with the generic
// variant and records the unknown construct.
func (r *Registry) Dispatch(templateIDs []string) (*Schema, bool) {
	var best *Schema
	for _, oid := range templateIDs {
		s, ok := r.schemas[oid]
		if !ok {
			continue
		}
		if best == nil || s.Specificity > best.Specificity {
			best = s
		}
	}
	if best == nil {
		return Generic(), false
	}
	return best, true
}

// DispatchSection resolves a section by template id first, then by section
// code. Unknown sections are carried as generic so their narrative is not
// lost.
func (r *Registry) DispatchSection(templateIDs []string, code string) (*SectionSchema, bool) {
	for _, oid := range templateIDs {
		if s, ok := r.sections[oid]; ok {
			return s, true
		}
	}
	if s, ok := r.byCode[code]; ok {
		return s, true
	}
	return &SectionSchema{Name: "unknown section", Kind: KindGeneric}, false
}

var generic = &Schema{Name: "generic statement", Kind: KindGeneric}

// Generic returns the schema applied to statements whose template ids are
// all unknown: no structural rules, carried through parsing untouched.
func Generic() *Schema {
	return generic
}
