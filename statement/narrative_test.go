package statement

import "testing"

func TestPlainTextKeepsTailText(t *testing.T) {
	// <paragraph>Patient reports <content styleCode="Bold">severe</content> pain.</paragraph>
	block := &NarrativeBlock{
		Tag:  "paragraph",
		Text: "Patient reports",
		Children: []*NarrativeBlock{
			{Tag: "content", Text: "severe", Tail: "pain."},
		},
	}

	got := block.PlainText()
	want := "Patient reports severe pain."
	if got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}

func TestPlainTextNested(t *testing.T) {
	block := &NarrativeBlock{
		Tag: "list",
		Children: []*NarrativeBlock{
			{Tag: "item", Text: "Aspirin 81 mg"},
			{Tag: "item", Text: "Lisinopril", Children: []*NarrativeBlock{
				{Tag: "content", Text: "10 mg", Tail: "daily"},
			}},
		},
	}

	got := block.PlainText()
	want := "Aspirin 81 mg Lisinopril 10 mg daily"
	if got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}

func TestPlainTextNil(t *testing.T) {
	var b *NarrativeBlock
	if got := b.PlainText(); got != "" {
		t.Errorf("nil PlainText = %q", got)
	}
}

func TestNarrativeIndex(t *testing.T) {
	root := &NarrativeBlock{
		Tag: "text",
		Children: []*NarrativeBlock{
			{Tag: "content", ID: "problem1", Text: "Community acquired pneumonia"},
			{Tag: "content", ID: "problem1", Text: "a duplicate that must lose"},
			{Tag: "content", ID: "empty1"},
			{Tag: "paragraph", Children: []*NarrativeBlock{
				{Tag: "content", ID: "deep1", Text: "nested finding"},
			}},
		},
	}

	ix := BuildNarrativeIndex(root)

	tests := []struct {
		name string
		id   string
		want string
		ok   bool
	}{
		{name: "simple reference", id: "problem1", want: "Community acquired pneumonia", ok: true},
		{name: "nested reference", id: "deep1", want: "nested finding", ok: true},
		{name: "empty block resolves to nothing", id: "empty1", want: "", ok: false},
		{name: "missing id", id: "nope", want: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ix.Resolve(tt.id)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.id, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRelated(t *testing.T) {
	severity := &ClinicalStatement{Class: ClassObservation}
	manifestation := &ClinicalStatement{Class: ClassObservation}
	st := &ClinicalStatement{
		Class: ClassObservation,
		Relationships: []Relationship{
			{TypeCode: "SUBJ", Statement: severity},
			{TypeCode: "MFST", Statement: manifestation},
		},
	}

	got := st.Related("MFST")
	if len(got) != 1 || got[0] != manifestation {
		t.Errorf("Related(MFST) = %v, want the single manifestation", got)
	}
	if len(st.Related("REFR")) != 0 {
		t.Error("Related for an absent type code should be empty")
	}
}

func TestIdentifierKey(t *testing.T) {
	tests := []struct {
		name string
		id   Identifier
		want string
	}{
		{name: "root and extension", id: Identifier{Root: "2.16.840.1.113883.19", Extension: "12345"}, want: "2.16.840.1.113883.19^12345"},
		{name: "root only", id: Identifier{Root: "2.16.840.1.113883.19"}, want: "2.16.840.1.113883.19"},
		{name: "zero", id: Identifier{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Key(); got != tt.want {
				t.Errorf("Key = %q, want %q", got, tt.want)
			}
		})
	}
	if !(Identifier{}).IsZero() {
		t.Error("zero identifier should report IsZero")
	}
}

func TestPersonNameText(t *testing.T) {
	tests := []struct {
		name string
		pn   *PersonName
		want string
	}{
		{name: "given and family", pn: &PersonName{Given: []string{"Jane", "Q"}, Family: "Smith"}, want: "Jane Q Smith"},
		{name: "family only", pn: &PersonName{Family: "Smith"}, want: "Smith"},
		{name: "empty", pn: &PersonName{}, want: ""},
		{name: "nil", pn: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pn.Text(); got != tt.want {
				t.Errorf("Text = %q, want %q", got, tt.want)
			}
		})
	}
}
