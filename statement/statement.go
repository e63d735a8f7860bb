// Package statement defines the typed clinical-statement model produced by
// one parse pass over one document. Everything here is immutable after
// parsing: the model is read-only input to the resource mapping layer.
package statement

import (
	"github.com/gofhir/cdaconvert/datatype"
)

// Class discriminates the clinical statement union.
type Class string

// Clinical statement classes.
const (
	ClassAct                     Class = "act"
	ClassObservation             Class = "observation"
	ClassEncounter               Class = "encounter"
	ClassProcedure               Class = "procedure"
	ClassSubstanceAdministration Class = "substanceAdministration"
	ClassOrganizer               Class = "organizer"
	// ClassGeneric is the fall-through for entries whose template ids are
	// all unknown; such statements are carried, not dropped.
	ClassGeneric Class = "generic"
)

// Identifier is an instance identifier (root OID plus optional extension).
type Identifier struct {
	Root      string
	Extension string
}

// Key returns the identifier in root^extension form, the canonical key
// format used by the reference registry.
func (id Identifier) Key() string {
	if id.Extension == "" {
		return id.Root
	}
	return id.Root + "^" + id.Extension
}

// IsZero reports whether the identifier carries no data.
func (id Identifier) IsZero() bool {
	return id.Root == "" && id.Extension == ""
}

// ClinicalStatement is one parsed clinical fact or event. Template ids
// select the conformance schema that validated it; multiple ids may apply
// when profiles layer.
type ClinicalStatement struct {
	Class       Class
	ClassCode   string
	MoodCode    string
	NegationInd bool

	TemplateIDs []string
	IDs         []Identifier

	Code       *datatype.CodedValue
	StatusCode string
	Effective  *datatype.Interval
	Value      *datatype.Value

	// TextRef is an ID-based reference into the section narrative
	// (without the leading '#'), resolved at mapping time.
	TextRef string

	Relationships []Relationship
	Participants  []Participant
	Performers    []Performer
	Authors       []Author

	// Consumable carries the manufactured product of a substance
	// administration.
	Consumable   *Product
	DoseQuantity *datatype.PhysicalQuantity
	RouteCode    *datatype.CodedValue
	LotNumber    string

	// Components holds an organizer's member statements.
	Components []*ClinicalStatement

	// Path is the source element path, carried for issue attribution.
	Path string
}

// Relationship links a statement to a related statement with a typeCode
// (SUBJ, MFST, REFR, ...). Order is preserved; it matters for display.
type Relationship struct {
	TypeCode  string
	Statement *ClinicalStatement
}

// Related returns all related statements with the given type code.
func (s *ClinicalStatement) Related(typeCode string) []*ClinicalStatement {
	var out []*ClinicalStatement
	for _, r := range s.Relationships {
		if r.TypeCode == typeCode {
			out = append(out, r.Statement)
		}
	}
	return out
}

// FirstTemplateIn returns the first of the statement's template ids found
// in the given set.
func (s *ClinicalStatement) FirstTemplateIn(oids map[string]bool) (string, bool) {
	for _, oid := range s.TemplateIDs {
		if oids[oid] {
			return oid, true
		}
	}
	return "", false
}

// Participant is owned by its statement and not independently addressable.
type Participant struct {
	TypeCode     string
	FunctionCode *datatype.CodedValue
	Role         *Role
}

// Role holds the participant's playing entity or device.
type Role struct {
	ClassCode     string
	IDs           []Identifier
	Code          *datatype.CodedValue
	PlayingEntity *Entity
	PlayingDevice *DeviceInfo
	Addresses     []Address
	Telecoms      []Telecom
}

// Entity is a playing entity (person, material, ...).
type Entity struct {
	ClassCode string
	Code      *datatype.CodedValue
	Name      string
}

// DeviceInfo is a playing or authoring device.
type DeviceInfo struct {
	ManufacturerModelName string
	SoftwareName          string
}

// Performer identifies who performed the act.
type Performer struct {
	IDs        []Identifier
	PersonName *PersonName
	OrgName    string
	OrgIDs     []Identifier
}

// Author carries authorship metadata used for provenance.
type Author struct {
	Time       *datatype.Timestamp
	IDs        []Identifier
	PersonName *PersonName
	Device     *DeviceInfo
	OrgName    string
	OrgIDs     []Identifier
}

// Product is a manufactured material (medication, vaccine).
type Product struct {
	Code      *datatype.CodedValue
	LotNumber string
}

// PersonName is a structured person name.
type PersonName struct {
	Given  []string
	Family string
	Prefix string
	Suffix string
}

// Text renders the name as display text.
func (n *PersonName) Text() string {
	if n == nil {
		return ""
	}
	out := ""
	for _, g := range n.Given {
		if out != "" {
			out += " "
		}
		out += g
	}
	if n.Family != "" {
		if out != "" {
			out += " "
		}
		out += n.Family
	}
	return out
}

// Address is a postal address from the source document.
type Address struct {
	Use        string
	Lines      []string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Telecom is a contact point from the source document.
type Telecom struct {
	Use   string
	Value string
}

// Section is one document section: code, narrative and its statements.
type Section struct {
	TemplateIDs []string
	Code        *datatype.CodedValue
	Title       string
	Text        *NarrativeBlock
	Statements  []*ClinicalStatement

	// Path is the source element path, carried for issue attribution.
	Path string
}

// Document is the parsed document: header plus sections. Immutable after
// the parse pass.
type Document struct {
	ID        Identifier
	Title     string
	Code      *datatype.CodedValue
	Effective *datatype.Timestamp

	Patient   *PatientInfo
	Authors   []Author
	Custodian *OrgInfo

	Sections []*Section
}

// PatientInfo is the record target extracted from the header.
type PatientInfo struct {
	IDs           []Identifier
	Name          *PersonName
	Gender        *datatype.CodedValue
	BirthTime     *datatype.Timestamp
	MaritalStatus *datatype.CodedValue
	Addresses     []Address
	Telecoms      []Telecom
}

// OrgInfo is an organization extracted from the header.
type OrgInfo struct {
	IDs       []Identifier
	Name      string
	Addresses []Address
	Telecoms  []Telecom
}
