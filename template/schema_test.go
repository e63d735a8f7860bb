package template

import (
	"testing"

	"github.com/gofhir/cdaconvert/datatype"
	"github.com/gofhir/cdaconvert/statement"
)

func TestDispatch(t *testing.T) {
	reg := Default()

	tests := []struct {
		name     string
		ids      []string
		wantKind MapKind
		known    bool
	}{
		{
			name:     "single known id",
			ids:      []string{OIDProblemConcern},
			wantKind: KindProblemConcern,
			known:    true,
		},
		{
			name:     "layered profiles pick the most specific",
			ids:      []string{OIDResultObservation, OIDVitalSignObservation},
			wantKind: KindVitalSignObservation,
			known:    true,
		},
		{
			name:     "declaration order does not matter",
			ids:      []string{OIDVitalSignObservation, OIDResultObservation},
			wantKind: KindVitalSignObservation,
			known:    true,
		},
		{
			name:     "smoking status outranks social history",
			ids:      []string{OIDSocialHistory, OIDSmokingStatus},
			wantKind: KindSmokingStatus,
			known:    true,
		},
		{
			name:     "unknown ids fall through to generic",
			ids:      []string{"2.16.840.1.113883.10.20.99.9.9"},
			wantKind: KindGeneric,
			known:    false,
		},
		{
			name:     "unknown ids beside a known one are ignored",
			ids:      []string{"2.16.840.1.113883.10.20.99.9.9", OIDMedicationActivity},
			wantKind: KindMedicationActivity,
			known:    true,
		},
		{
			name:     "no ids at all",
			ids:      nil,
			wantKind: KindGeneric,
			known:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sch, known := reg.Dispatch(tt.ids)
			if sch.Kind != tt.wantKind || known != tt.known {
				t.Errorf("Dispatch = (%q, %v), want (%q, %v)", sch.Kind, known, tt.wantKind, tt.known)
			}
		})
	}
}

func TestDispatchSection(t *testing.T) {
	reg := Default()

	tests := []struct {
		name     string
		ids      []string
		code     string
		wantKind MapKind
		known    bool
	}{
		{
			name:     "by template id",
			ids:      []string{OIDVitalSignsSection},
			wantKind: KindVitalSignObservation,
			known:    true,
		},
		{
			name:     "falls back to section code",
			ids:      []string{"2.16.840.1.113883.10.20.99.2.1"},
			code:     "11450-4",
			wantKind: KindProblemConcern,
			known:    true,
		},
		{
			name:     "unknown section is carried as generic",
			ids:      nil,
			code:     "99999-9",
			wantKind: KindGeneric,
			known:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, known := reg.DispatchSection(tt.ids, tt.code)
			if sec.Kind != tt.wantKind || known != tt.known {
				t.Errorf("DispatchSection = (%q, %v), want (%q, %v)", sec.Kind, known, tt.wantKind, tt.known)
			}
		})
	}
}

func concernAct(status string, high *datatype.Timestamp) *statement.ClinicalStatement {
	st := &statement.ClinicalStatement{
		Class:      statement.ClassAct,
		Code:       &datatype.CodedValue{Code: "CONC", CodeSystem: oidActClass},
		IDs:        []statement.Identifier{{Root: "1.2.3", Extension: "c1"}},
		StatusCode: status,
		Effective:  &datatype.Interval{},
	}
	st.Effective.High = high
	return st
}

func TestProblemConcernClosure(t *testing.T) {
	reg := Default()
	sch, ok := reg.Lookup(OIDProblemConcern)
	if !ok {
		t.Fatal("problem concern schema not registered")
	}

	high, _ := datatype.ParseTimestamp("20170901")

	tests := []struct {
		name       string
		st         *statement.ClinicalStatement
		wantRuleID string
	}{
		{
			name: "active concern without high conforms",
			st:   concernAct("active", nil),
		},
		{
			name: "completed concern with high conforms",
			st:   concernAct("completed", high),
		},
		{
			name:       "completed concern without high is rejected",
			st:         concernAct("completed", nil),
			wantRuleID: "CONF:1198-31512",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := sch.Validate(tt.st)
			if tt.wantRuleID == "" {
				if len(violations) != 0 {
					t.Fatalf("violations = %v, want none", violations)
				}
				return
			}
			if len(violations) != 1 || violations[0].RuleID != tt.wantRuleID {
				t.Fatalf("violations = %v, want exactly %s", violations, tt.wantRuleID)
			}
		})
	}
}

func TestProblemConcernNullFlavoredHigh(t *testing.T) {
	reg := Default()
	sch, _ := reg.Lookup(OIDProblemConcern)

	st := concernAct("completed", nil)
	st.Effective.HighNull = datatype.FlavorUnknown

	if v := sch.Validate(st); len(v) != 0 {
		t.Errorf("null-flavored high should satisfy the closure rule, got %v", v)
	}
}

func vitalSign(value *datatype.Value) *statement.ClinicalStatement {
	low, _ := datatype.ParseTimestamp("20170821")
	return &statement.ClinicalStatement{
		Class:     statement.ClassObservation,
		IDs:       []statement.Identifier{{Root: "1.2.3", Extension: "v1"}},
		Code:      &datatype.CodedValue{Code: "8480-6", CodeSystem: "2.16.840.1.113883.6.1"},
		Effective: &datatype.Interval{Low: low},
		Value:     value,
	}
}

func TestVitalSignValueKind(t *testing.T) {
	reg := Default()
	sch, _ := reg.Lookup(OIDVitalSignObservation)

	tests := []struct {
		name  string
		value *datatype.Value
		ok    bool
	}{
		{
			name:  "quantity conforms",
			value: &datatype.Value{Kind: datatype.KindQuantity, Quantity: &datatype.PhysicalQuantity{Unit: "mm[Hg]"}},
			ok:    true,
		},
		{
			name:  "coded value is a type mismatch",
			value: &datatype.Value{Kind: datatype.KindCoded, Coded: &datatype.CodedValue{Code: "385633008"}},
			ok:    false,
		},
		{
			name:  "null-flavored coded value is still a mismatch",
			value: &datatype.Value{Kind: datatype.KindCoded, Null: datatype.FlavorUnknown},
			ok:    false,
		},
		{
			name:  "absent value",
			value: nil,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := sch.Validate(vitalSign(tt.value))
			if tt.ok && len(violations) != 0 {
				t.Errorf("violations = %v, want none", violations)
			}
			if !tt.ok {
				found := false
				for _, v := range violations {
					if v.RuleID == "CONF:1198-7305" {
						found = true
					}
				}
				if !found {
					t.Errorf("violations = %v, want CONF:1198-7305", violations)
				}
			}
		})
	}
}

func TestAllergyObservationAcceptsNullCodedValue(t *testing.T) {
	// A null-flavored CD in a coded slot is type-correct; whether the
	// resource can be built from it is the mapping layer's call.
	reg := Default()
	sch, _ := reg.Lookup(OIDAllergyObservation)

	st := &statement.ClinicalStatement{
		Class:      statement.ClassObservation,
		IDs:        []statement.Identifier{{Root: "1.2.3", Extension: "a1"}},
		StatusCode: "completed",
		Value:      &datatype.Value{Kind: datatype.KindCoded, Null: datatype.FlavorUnknown},
	}

	if v := sch.Validate(st); len(v) != 0 {
		t.Errorf("violations = %v, want none", v)
	}
}

func TestViolationCarriesPath(t *testing.T) {
	reg := Default()
	sch, _ := reg.Lookup(OIDMedicationActivity)

	st := &statement.ClinicalStatement{
		Class: statement.ClassSubstanceAdministration,
		Path:  "ClinicalDocument/component/structuredBody/component[3]/section/entry/substanceAdministration",
	}

	violations := sch.Validate(st)
	if len(violations) == 0 {
		t.Fatal("want violations for an empty medication activity")
	}
	for _, v := range violations {
		if v.Path != st.Path {
			t.Errorf("violation path = %q, want statement path", v.Path)
		}
	}
}
