package terminology

// Concept is one code drawn from a fixed value set, with its canonical
// display.
type Concept struct {
	System  string
	Code    string
	Display string
}

// FixedSet is a closed value set bound to one code system. A code drawn
// from a fixed set always resolves with its canonical display; a fixed-set
// concept is never emitted code-with-no-display.
type FixedSet struct {
	System   string
	displays map[string]string
}

// Concept resolves a code from the set. The second return is false for
// codes outside the set.
func (s *FixedSet) Concept(code string) (Concept, bool) {
	d, ok := s.displays[code]
	if !ok {
		return Concept{}, false
	}
	return Concept{System: s.System, Code: code, Display: d}, true
}

// MustConcept resolves a code the caller knows is in the set. It exists
// for the fixed defaults the mapper emits unconditionally.
func (s *FixedSet) MustConcept(code string) Concept {
	c, ok := s.Concept(code)
	if !ok {
		return Concept{System: s.System, Code: code}
	}
	return c
}

// Fixed value sets of the output model.
var (
	ConditionClinical = &FixedSet{
		System: "http://terminology.hl7.org/CodeSystem/condition-clinical",
		displays: map[string]string{
			"active":     "Active",
			"recurrence": "Recurrence",
			"relapse":    "Relapse",
			"inactive":   "Inactive",
			"remission":  "Remission",
			"resolved":   "Resolved",
		},
	}

	ConditionVerification = &FixedSet{
		System: "http://terminology.hl7.org/CodeSystem/condition-ver-status",
		displays: map[string]string{
			"unconfirmed":      "Unconfirmed",
			"provisional":      "Provisional",
			"confirmed":        "Confirmed",
			"refuted":          "Refuted",
			"entered-in-error": "Entered in Error",
		},
	}

	ConditionCategory = &FixedSet{
		System: "http://terminology.hl7.org/CodeSystem/condition-category",
		displays: map[string]string{
			"problem-list-item":   "Problem List Item",
			"encounter-diagnosis": "Encounter Diagnosis",
		},
	}

	AllergyClinical = &FixedSet{
		System: "http://terminology.hl7.org/CodeSystem/allergyintolerance-clinical",
		displays: map[string]string{
			"active":   "Active",
			"inactive": "Inactive",
			"resolved": "Resolved",
		},
	}

	AllergyVerification = &FixedSet{
		System: "http://terminology.hl7.org/CodeSystem/allergyintolerance-verification",
		displays: map[string]string{
			"unconfirmed":      "Unconfirmed",
			"confirmed":        "Confirmed",
			"refuted":          "Refuted",
			"entered-in-error": "Entered in Error",
		},
	}

	ObservationCategory = &FixedSet{
		System: "http://terminology.hl7.org/CodeSystem/observation-category",
		displays: map[string]string{
			"vital-signs":    "Vital Signs",
			"laboratory":     "Laboratory",
			"social-history": "Social History",
			"survey":         "Survey",
			"exam":           "Exam",
			"imaging":        "Imaging",
			"procedure":      "Procedure",
		},
	}
)

// Status-code translations from source act status to output status fields.
// Unmapped codes resolve to the stated fallback; the caller records a
// decision when the fallback fires.

var medicationStatus = map[string]string{
	"active":    "active",
	"completed": "completed",
	"aborted":   "stopped",
	"suspended": "on-hold",
	"nullified": "entered-in-error",
}

// MedicationStatus maps an activity statusCode to a medication statement
// status.
func MedicationStatus(statusCode string) (string, bool) {
	s, ok := medicationStatus[statusCode]
	if !ok {
		return "unknown", false
	}
	return s, true
}

var procedureStatus = map[string]string{
	"completed": "completed",
	"active":    "in-progress",
	"aborted":   "stopped",
	"cancelled": "not-done",
	"suspended": "on-hold",
}

// ProcedureStatus maps an activity statusCode to a procedure status.
func ProcedureStatus(statusCode string) (string, bool) {
	s, ok := procedureStatus[statusCode]
	if !ok {
		return "unknown", false
	}
	return s, true
}

var encounterStatus = map[string]string{
	"completed": "finished",
	"active":    "in-progress",
	"cancelled": "cancelled",
	"aborted":   "finished",
}

// EncounterStatus maps an activity statusCode to an encounter status.
func EncounterStatus(statusCode string) (string, bool) {
	s, ok := encounterStatus[statusCode]
	if !ok {
		return "unknown", false
	}
	return s, true
}

var immunizationStatus = map[string]string{
	"completed": "completed",
	"nullified": "entered-in-error",
}

// ImmunizationStatus maps an activity statusCode to an immunization
// status. A negated activity overrides this with not-done.
func ImmunizationStatus(statusCode string) (string, bool) {
	s, ok := immunizationStatus[statusCode]
	if !ok {
		return "completed", false
	}
	return s, true
}

// reactionSeverity translates severity observation values to output
// severity codes.
var reactionSeverity = map[string]string{
	"255604002": "mild",
	"371923003": "moderate",
	"6736007":   "moderate",
	"371924009": "severe",
	"24484000":  "severe",
	"399166001": "severe",
}

// ReactionSeverity maps a severity observation value code to mild,
// moderate or severe.
func ReactionSeverity(code string) (string, bool) {
	s, ok := reactionSeverity[code]
	return s, ok
}

// Gender maps administrative gender codes to output gender codes.
func Gender(code string) string {
	switch code {
	case "M":
		return "male"
	case "F":
		return "female"
	case "UN":
		return "other"
	default:
		return "unknown"
	}
}
