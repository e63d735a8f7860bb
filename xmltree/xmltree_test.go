package xmltree

import (
	"strings"
	"testing"
)

func TestParseRejectsBadMarkup(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "whitespace only", data: "  \n\t"},
		{name: "unclosed element", data: "<ClinicalDocument><id"},
		{name: "mismatched tags", data: "<a><b></a></b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.data)
			}
		})
	}
}

func TestParseStripsByteOrderMark(t *testing.T) {
	doc, err := Parse([]byte("\xef\xbb\xbf<ClinicalDocument/>"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Root().Tag != "ClinicalDocument" {
		t.Errorf("root = %q", doc.Root().Tag)
	}
}

func TestNormalize(t *testing.T) {
	markup := `<hl7:ClinicalDocument xmlns:hl7="urn:hl7-org:v3" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
		<hl7:value xsi:type="hl7:PQ" value="120" unit=""/>
	</hl7:ClinicalDocument>`

	doc, err := Parse([]byte(markup))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	root := doc.Root()
	if root.Tag != "ClinicalDocument" || root.Space != "" {
		t.Errorf("root = %s:%s, want prefix stripped", root.Space, root.Tag)
	}

	value := Child(root, "value")
	if value == nil {
		t.Fatal("value child not found after normalization")
	}
	if got := Attr(value, "type"); got != "PQ" {
		t.Errorf("xsi:type = %q, want prefix stripped from the discriminator", got)
	}
	if got := Attr(value, "unit"); got != "" {
		t.Errorf("unit = %q, want empty attribute removed", got)
	}
	for _, a := range root.Attr {
		if a.Space == "xmlns" || a.Key == "xmlns" {
			t.Errorf("namespace declaration %s:%s survived normalization", a.Space, a.Key)
		}
	}
}

func TestChildAndChildren(t *testing.T) {
	doc, err := Parse([]byte(`<entry><id root="a"/><id root="b"/><code code="x"/></entry>`))
	if err != nil {
		t.Fatal(err)
	}
	root := doc.Root()

	if got := Attr(Child(root, "id"), "root"); got != "a" {
		t.Errorf("Child returned id root=%q, want first sibling", got)
	}
	if got := len(Children(root, "id")); got != 2 {
		t.Errorf("Children(id) = %d elements, want 2", got)
	}
	if Child(root, "statusCode") != nil {
		t.Error("Child for an absent tag should be nil")
	}
	if Attr(nil, "root") != "" {
		t.Error("Attr on nil element should be empty")
	}
}

func TestPath(t *testing.T) {
	markup := `<ClinicalDocument><component><structuredBody>
		<component><section/></component>
		<component><section/></component>
	</structuredBody></component></ClinicalDocument>`

	doc, err := Parse([]byte(markup))
	if err != nil {
		t.Fatal(err)
	}

	body := Child(Child(doc.Root(), "component"), "structuredBody")
	second := Children(body, "component")[1]
	section := Child(second, "section")

	got := Path(section)
	want := "ClinicalDocument/component/structuredBody/component[2]/section"
	if got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
	if !strings.HasPrefix(got, "ClinicalDocument/") {
		t.Errorf("Path should be rooted at the document element: %q", got)
	}
}
