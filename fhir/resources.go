package fhir

// Resource is implemented by every resource kind the converter emits.
type Resource interface {
	// Kind returns the FHIR resource type name.
	Kind() string
	// GetID returns the resource's logical id.
	GetID() string
	// SetID assigns the resource's logical id.
	SetID(id string)
}

// Patient is the subject of the clinical document.
type Patient struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id,omitempty"`
	Meta         *Meta            `json:"meta,omitempty"`
	Identifier   []Identifier     `json:"identifier,omitempty"`
	Name         []HumanName      `json:"name,omitempty"`
	Telecom      []ContactPoint   `json:"telecom,omitempty"`
	Gender       string           `json:"gender,omitempty"`
	BirthDate    string           `json:"birthDate,omitempty"`
	Address      []Address        `json:"address,omitempty"`
	MaritalStatus *CodeableConcept `json:"maritalStatus,omitempty"`
}

func NewPatient() *Patient        { return &Patient{ResourceType: "Patient"} }
func (r *Patient) Kind() string   { return "Patient" }
func (r *Patient) GetID() string  { return r.ID }
func (r *Patient) SetID(id string) { r.ID = id }

// Practitioner is a person with a formal responsibility in the document.
type Practitioner struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
	Telecom      []ContactPoint `json:"telecom,omitempty"`
	Address      []Address    `json:"address,omitempty"`
}

func NewPractitioner() *Practitioner    { return &Practitioner{ResourceType: "Practitioner"} }
func (r *Practitioner) Kind() string    { return "Practitioner" }
func (r *Practitioner) GetID() string   { return r.ID }
func (r *Practitioner) SetID(id string) { r.ID = id }

// Organization is a grouping of people or entities with a common purpose.
type Organization struct {
	ResourceType string         `json:"resourceType"`
	ID           string         `json:"id,omitempty"`
	Identifier   []Identifier   `json:"identifier,omitempty"`
	Name         string         `json:"name,omitempty"`
	Telecom      []ContactPoint `json:"telecom,omitempty"`
	Address      []Address      `json:"address,omitempty"`
}

func NewOrganization() *Organization    { return &Organization{ResourceType: "Organization"} }
func (r *Organization) Kind() string    { return "Organization" }
func (r *Organization) GetID() string   { return r.ID }
func (r *Organization) SetID(id string) { r.ID = id }

// Device is an authoring device named in the document header.
type Device struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	DeviceName   []DeviceName `json:"deviceName,omitempty"`
}

// DeviceName names a device.
type DeviceName struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func NewDevice() *Device          { return &Device{ResourceType: "Device"} }
func (r *Device) Kind() string    { return "Device" }
func (r *Device) GetID() string   { return r.ID }
func (r *Device) SetID(id string) { r.ID = id }

// Condition is a clinical problem or diagnosis.
type Condition struct {
	ResourceType       string            `json:"resourceType"`
	ID                 string            `json:"id,omitempty"`
	Identifier         []Identifier      `json:"identifier,omitempty"`
	ClinicalStatus     *CodeableConcept  `json:"clinicalStatus,omitempty"`
	VerificationStatus *CodeableConcept  `json:"verificationStatus,omitempty"`
	Category           []CodeableConcept `json:"category,omitempty"`
	Code               *CodeableConcept  `json:"code,omitempty"`
	Subject            *Reference        `json:"subject,omitempty"`
	Encounter          *Reference        `json:"encounter,omitempty"`
	OnsetDateTime      string            `json:"onsetDateTime,omitempty"`
	AbatementDateTime  string            `json:"abatementDateTime,omitempty"`
	RecordedDate       string            `json:"recordedDate,omitempty"`
	Recorder           *Reference        `json:"recorder,omitempty"`
	Note               []Annotation      `json:"note,omitempty"`
}

func NewCondition() *Condition       { return &Condition{ResourceType: "Condition"} }
func (r *Condition) Kind() string    { return "Condition" }
func (r *Condition) GetID() string   { return r.ID }
func (r *Condition) SetID(id string) { r.ID = id }

// Observation is a measurement or assertion about the subject.
type Observation struct {
	ResourceType         string            `json:"resourceType"`
	ID                   string            `json:"id,omitempty"`
	Identifier           []Identifier      `json:"identifier,omitempty"`
	Status               string            `json:"status"`
	Category             []CodeableConcept `json:"category,omitempty"`
	Code                 *CodeableConcept  `json:"code,omitempty"`
	Subject              *Reference        `json:"subject,omitempty"`
	Encounter            *Reference        `json:"encounter,omitempty"`
	EffectiveDateTime    string            `json:"effectiveDateTime,omitempty"`
	EffectivePeriod      *Period           `json:"effectivePeriod,omitempty"`
	Performer            []Reference       `json:"performer,omitempty"`
	ValueQuantity        *Quantity         `json:"valueQuantity,omitempty"`
	ValueCodeableConcept *CodeableConcept  `json:"valueCodeableConcept,omitempty"`
	ValueString          string            `json:"valueString,omitempty"`
	DataAbsentReason     *CodeableConcept  `json:"dataAbsentReason,omitempty"`
	Interpretation       []CodeableConcept `json:"interpretation,omitempty"`
	HasMember            []Reference       `json:"hasMember,omitempty"`
	ReferenceRange       []ObservationReferenceRange `json:"referenceRange,omitempty"`
}

// ObservationReferenceRange gives guidance on interpreting the value.
type ObservationReferenceRange struct {
	Low  *Quantity `json:"low,omitempty"`
	High *Quantity `json:"high,omitempty"`
	Text string    `json:"text,omitempty"`
}

func NewObservation() *Observation     { return &Observation{ResourceType: "Observation"} }
func (r *Observation) Kind() string    { return "Observation" }
func (r *Observation) GetID() string   { return r.ID }
func (r *Observation) SetID(id string) { r.ID = id }

// AllergyIntolerance is a risk of harmful reaction to a substance.
type AllergyIntolerance struct {
	ResourceType       string           `json:"resourceType"`
	ID                 string           `json:"id,omitempty"`
	Identifier         []Identifier     `json:"identifier,omitempty"`
	ClinicalStatus     *CodeableConcept `json:"clinicalStatus,omitempty"`
	VerificationStatus *CodeableConcept `json:"verificationStatus,omitempty"`
	Type               string           `json:"type,omitempty"`
	Category           []string         `json:"category,omitempty"`
	Criticality        string           `json:"criticality,omitempty"`
	Code               *CodeableConcept `json:"code,omitempty"`
	Patient            *Reference       `json:"patient,omitempty"`
	OnsetDateTime      string           `json:"onsetDateTime,omitempty"`
	RecordedDate       string           `json:"recordedDate,omitempty"`
	Reaction           []AllergyIntoleranceReaction `json:"reaction,omitempty"`
}

// AllergyIntoleranceReaction details an adverse reaction event.
type AllergyIntoleranceReaction struct {
	Substance     *CodeableConcept  `json:"substance,omitempty"`
	Manifestation []CodeableConcept `json:"manifestation"`
	Severity      string            `json:"severity,omitempty"`
}

func NewAllergyIntolerance() *AllergyIntolerance {
	return &AllergyIntolerance{ResourceType: "AllergyIntolerance"}
}
func (r *AllergyIntolerance) Kind() string    { return "AllergyIntolerance" }
func (r *AllergyIntolerance) GetID() string   { return r.ID }
func (r *AllergyIntolerance) SetID(id string) { r.ID = id }

// Procedure is an action performed on the subject.
type Procedure struct {
	ResourceType      string               `json:"resourceType"`
	ID                string               `json:"id,omitempty"`
	Identifier        []Identifier         `json:"identifier,omitempty"`
	Status            string               `json:"status"`
	Code              *CodeableConcept     `json:"code,omitempty"`
	Subject           *Reference           `json:"subject,omitempty"`
	Encounter         *Reference           `json:"encounter,omitempty"`
	PerformedDateTime string               `json:"performedDateTime,omitempty"`
	PerformedPeriod   *Period              `json:"performedPeriod,omitempty"`
	Performer         []ProcedurePerformer `json:"performer,omitempty"`
	BodySite          []CodeableConcept    `json:"bodySite,omitempty"`
}

// ProcedurePerformer identifies who performed the procedure.
type ProcedurePerformer struct {
	Actor        Reference  `json:"actor"`
	OnBehalfOf   *Reference `json:"onBehalfOf,omitempty"`
}

func NewProcedure() *Procedure       { return &Procedure{ResourceType: "Procedure"} }
func (r *Procedure) Kind() string    { return "Procedure" }
func (r *Procedure) GetID() string   { return r.ID }
func (r *Procedure) SetID(id string) { r.ID = id }

// Immunization records a vaccine administration.
type Immunization struct {
	ResourceType       string           `json:"resourceType"`
	ID                 string           `json:"id,omitempty"`
	Identifier         []Identifier     `json:"identifier,omitempty"`
	Status             string           `json:"status"`
	StatusReason       *CodeableConcept `json:"statusReason,omitempty"`
	VaccineCode        *CodeableConcept `json:"vaccineCode,omitempty"`
	Patient            *Reference       `json:"patient,omitempty"`
	OccurrenceDateTime string           `json:"occurrenceDateTime,omitempty"`
	LotNumber          string           `json:"lotNumber,omitempty"`
	Route              *CodeableConcept `json:"route,omitempty"`
	DoseQuantity       *Quantity        `json:"doseQuantity,omitempty"`
}

func NewImmunization() *Immunization    { return &Immunization{ResourceType: "Immunization"} }
func (r *Immunization) Kind() string    { return "Immunization" }
func (r *Immunization) GetID() string   { return r.ID }
func (r *Immunization) SetID(id string) { r.ID = id }

// MedicationStatement records medication the subject is taking.
type MedicationStatement struct {
	ResourceType              string           `json:"resourceType"`
	ID                        string           `json:"id,omitempty"`
	Identifier                []Identifier     `json:"identifier,omitempty"`
	Status                    string           `json:"status"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	Subject                   *Reference       `json:"subject,omitempty"`
	EffectiveDateTime         string           `json:"effectiveDateTime,omitempty"`
	EffectivePeriod           *Period          `json:"effectivePeriod,omitempty"`
	DateAsserted              string           `json:"dateAsserted,omitempty"`
	Dosage                    []Dosage         `json:"dosage,omitempty"`
}

func NewMedicationStatement() *MedicationStatement {
	return &MedicationStatement{ResourceType: "MedicationStatement"}
}
func (r *MedicationStatement) Kind() string    { return "MedicationStatement" }
func (r *MedicationStatement) GetID() string   { return r.ID }
func (r *MedicationStatement) SetID(id string) { r.ID = id }

// Encounter is an interaction between the subject and healthcare providers.
type Encounter struct {
	ResourceType string                 `json:"resourceType"`
	ID           string                 `json:"id,omitempty"`
	Identifier   []Identifier           `json:"identifier,omitempty"`
	Status       string                 `json:"status"`
	Class        *Coding                `json:"class,omitempty"`
	Type         []CodeableConcept      `json:"type,omitempty"`
	Subject      *Reference             `json:"subject,omitempty"`
	Participant  []EncounterParticipant `json:"participant,omitempty"`
	Period       *Period                `json:"period,omitempty"`
}

// EncounterParticipant identifies who participated in the encounter.
type EncounterParticipant struct {
	Type       []CodeableConcept `json:"type,omitempty"`
	Individual *Reference        `json:"individual,omitempty"`
}

func NewEncounter() *Encounter       { return &Encounter{ResourceType: "Encounter"} }
func (r *Encounter) Kind() string    { return "Encounter" }
func (r *Encounter) GetID() string   { return r.ID }
func (r *Encounter) SetID(id string) { r.ID = id }

// CarePlan describes intended care for the subject.
type CarePlan struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id,omitempty"`
	Identifier   []Identifier      `json:"identifier,omitempty"`
	Status       string            `json:"status"`
	Intent       string            `json:"intent"`
	Category     []CodeableConcept `json:"category,omitempty"`
	Description  string            `json:"description,omitempty"`
	Subject      *Reference        `json:"subject,omitempty"`
	Period       *Period           `json:"period,omitempty"`
}

func NewCarePlan() *CarePlan        { return &CarePlan{ResourceType: "CarePlan"} }
func (r *CarePlan) Kind() string    { return "CarePlan" }
func (r *CarePlan) GetID() string   { return r.ID }
func (r *CarePlan) SetID(id string) { r.ID = id }

// Composition is the document header resource; it always appears first in
// the document bundle.
type Composition struct {
	ResourceType string               `json:"resourceType"`
	ID           string               `json:"id,omitempty"`
	Identifier   *Identifier          `json:"identifier,omitempty"`
	Status       string               `json:"status"`
	Type         *CodeableConcept     `json:"type,omitempty"`
	Subject      *Reference           `json:"subject,omitempty"`
	Date         string               `json:"date,omitempty"`
	Author       []Reference          `json:"author,omitempty"`
	Title        string               `json:"title,omitempty"`
	Custodian    *Reference           `json:"custodian,omitempty"`
	Section      []CompositionSection `json:"section,omitempty"`
}

// CompositionSection is one section of the document.
type CompositionSection struct {
	Title string           `json:"title,omitempty"`
	Code  *CodeableConcept `json:"code,omitempty"`
	Text  *Narrative       `json:"text,omitempty"`
	Entry []Reference      `json:"entry,omitempty"`
}

func NewComposition() *Composition     { return &Composition{ResourceType: "Composition"} }
func (r *Composition) Kind() string    { return "Composition" }
func (r *Composition) GetID() string   { return r.ID }
func (r *Composition) SetID(id string) { r.ID = id }

// Provenance records who was responsible for a set of resources.
type Provenance struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id,omitempty"`
	Target       []Reference       `json:"target"`
	Recorded     string            `json:"recorded"`
	Agent        []ProvenanceAgent `json:"agent"`
}

// ProvenanceAgent identifies an actor involved in the recorded activity.
type ProvenanceAgent struct {
	Type       *CodeableConcept `json:"type,omitempty"`
	Who        Reference        `json:"who"`
	OnBehalfOf *Reference       `json:"onBehalfOf,omitempty"`
}

func NewProvenance() *Provenance      { return &Provenance{ResourceType: "Provenance"} }
func (r *Provenance) Kind() string    { return "Provenance" }
func (r *Provenance) GetID() string   { return r.ID }
func (r *Provenance) SetID(id string) { r.ID = id }
