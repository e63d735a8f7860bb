package mapper

import (
	"encoding/json"

	"github.com/gofhir/cdaconvert"
	"github.com/gofhir/cdaconvert/datatype"
	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/registry"
	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/terminology"
)

// concept translates a coded value to a structured concept. The code
// system OID becomes its canonical URI; an unknown OID passes through
// OID-namespaced rather than being dropped. Display text falls back in
// order: inline original text, resolved narrative reference, the coding's
// display name, the first translation's display. Text is never left empty
// when any source exists.
func (m *Mapper) concept(sc *sectionCtx, cv *datatype.CodedValue, path string) *fhir.CodeableConcept {
	if cv == nil {
		return nil
	}

	out := &fhir.CodeableConcept{}
	if cv.Code != "" {
		out.Coding = append(out.Coding, fhir.Coding{
			System:  terminology.SystemURI(cv.CodeSystem),
			Code:    cv.Code,
			Display: cv.DisplayName,
		})
	}
	for _, tr := range cv.Translations {
		if tr.Code == "" {
			continue
		}
		out.Coding = append(out.Coding, fhir.Coding{
			System:  terminology.SystemURI(tr.CodeSystem),
			Code:    tr.Code,
			Display: tr.DisplayName,
		})
	}

	out.Text = m.conceptText(sc, cv, path)
	if len(out.Coding) == 0 && out.Text == "" {
		return nil
	}
	return out
}

func (m *Mapper) conceptText(sc *sectionCtx, cv *datatype.CodedValue, path string) string {
	if cv.OriginalText != "" {
		return cv.OriginalText
	}
	if cv.OriginalTextRef != "" && sc != nil {
		if text, ok := sc.ix.Resolve(cv.OriginalTextRef); ok {
			return text
		}
		m.addIssue(sc.pc.Result, cdaconvert.Warning(cdaconvert.IssueTypeNotFound).
			Diagnostics("narrative reference #"+cv.OriginalTextRef+" did not resolve").
			At(path).
			Stage(stageMap).Build())
	}
	if cv.DisplayName != "" {
		return cv.DisplayName
	}
	for _, tr := range cv.Translations {
		if tr.DisplayName != "" {
			return tr.DisplayName
		}
	}
	return ""
}

// fixedConcept builds a concept from a fixed value set entry; the display
// is always the canonical one.
func fixedConcept(c terminology.Concept) *fhir.CodeableConcept {
	return &fhir.CodeableConcept{
		Coding: []fhir.Coding{{System: c.System, Code: c.Code, Display: c.Display}},
		Text:   c.Display,
	}
}

// quantityOf converts a physical quantity. The unit system is always
// present: unit-less quantities carry the dimensionless marker.
func quantityOf(pq *datatype.PhysicalQuantity) *fhir.Quantity {
	if pq == nil {
		return nil
	}
	q := &fhir.Quantity{
		Value:  json.Number(pq.Value.String()),
		System: terminology.UCUM,
	}
	if pq.Unit == "" {
		q.Code = terminology.UnitDimensionless
	} else {
		q.Unit = pq.Unit
		q.Code = pq.Unit
	}
	return q
}

// dataAbsent builds the concept emitted in place of an explicitly
// null-flavored value.
func dataAbsent(nf datatype.NullFlavor) *fhir.CodeableConcept {
	code := "unknown"
	display := "Unknown"
	switch nf {
	case datatype.FlavorMasked:
		code, display = "masked", "Masked"
	case datatype.FlavorAskedButUnknown:
		code, display = "asked-unknown", "Asked But Unknown"
	case datatype.FlavorNotApplicable:
		code, display = "not-applicable", "Not Applicable"
	case datatype.FlavorTemporarilyUnavailable:
		code, display = "temp-unknown", "Temporarily Unknown"
	}
	return &fhir.CodeableConcept{
		Coding: []fhir.Coding{{
			System:  "http://terminology.hl7.org/CodeSystem/data-absent-reason",
			Code:    code,
			Display: display,
		}},
		Text: display,
	}
}

// timeString renders a timestamp, or "" when absent.
func timeString(ts *datatype.Timestamp) string {
	if ts == nil {
		return ""
	}
	return ts.String()
}

// periodOf converts an interval with both boundaries to a period; a
// single-boundary interval yields nil and the caller emits a point time.
func periodOf(iv *datatype.Interval) *fhir.Period {
	if iv == nil || iv.Low == nil || iv.High == nil {
		return nil
	}
	return &fhir.Period{Start: iv.Low.String(), End: iv.High.String()}
}

// effectivePoint collapses an effective time to a single instant when the
// interval does not carry both boundaries.
func effectivePoint(iv *datatype.Interval) string {
	if iv == nil {
		return ""
	}
	if p := iv.Point(); p != nil {
		return p.String()
	}
	if iv.Low != nil {
		return iv.Low.String()
	}
	return ""
}

// identifiersOf converts source instance identifiers.
func identifiersOf(ids []statement.Identifier) []fhir.Identifier {
	var out []fhir.Identifier
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if id.Extension == "" {
			out = append(out, fhir.Identifier{
				System: "urn:ietf:rfc:3986",
				Value:  "urn:oid:" + id.Root,
			})
			continue
		}
		out = append(out, fhir.Identifier{
			System: terminology.SystemURI(id.Root),
			Value:  id.Extension,
		})
	}
	return out
}

// statementKey derives the registry key for a statement: its first usable
// identifier, or a synthesis key from content (code, effective time,
// status) when no identifier exists. synthesized reports which path was
// taken so the downgrade can be recorded.
func statementKey(kind string, st *statement.ClinicalStatement) (key string, synthesized bool) {
	for _, id := range st.IDs {
		if !id.IsZero() {
			return registry.IdentityKey(kind, id.Root, id.Extension), false
		}
	}

	code := ""
	switch {
	case st.Value != nil && st.Value.Coded != nil && st.Value.Coded.Code != "":
		code = st.Value.Coded.Code
	case st.Code.HasCode():
		code = st.Code.Code
	case st.Consumable != nil && st.Consumable.Code.HasCode():
		code = st.Consumable.Code.Code
	}

	effective := ""
	if st.Effective != nil {
		if st.Effective.Low != nil {
			effective = st.Effective.Low.String()
		}
		if st.Effective.High != nil {
			effective += "/" + st.Effective.High.String()
		}
	}
	return registry.SynthesisKey(kind, code, effective, st.StatusCode), true
}

// addressesOf converts source addresses.
func addressesOf(addrs []statement.Address) []fhir.Address {
	var out []fhir.Address
	for _, a := range addrs {
		out = append(out, fhir.Address{
			Use:        addressUse(a.Use),
			Line:       a.Lines,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		})
	}
	return out
}

func addressUse(use string) string {
	switch use {
	case "H", "HP", "HV":
		return "home"
	case "WP", "DIR", "PUB":
		return "work"
	case "TMP":
		return "temp"
	default:
		return ""
	}
}

// contactPointsOf converts source telecoms, deriving the contact system
// from the value scheme.
func contactPointsOf(tels []statement.Telecom) []fhir.ContactPoint {
	var out []fhir.ContactPoint
	for _, t := range tels {
		cp := fhir.ContactPoint{Value: t.Value, Use: telecomUse(t.Use)}
		switch {
		case hasPrefix(t.Value, "tel:"):
			cp.System = "phone"
			cp.Value = t.Value[len("tel:"):]
		case hasPrefix(t.Value, "mailto:"):
			cp.System = "email"
			cp.Value = t.Value[len("mailto:"):]
		case hasPrefix(t.Value, "fax:"):
			cp.System = "fax"
			cp.Value = t.Value[len("fax:"):]
		case hasPrefix(t.Value, "http"):
			cp.System = "url"
		default:
			cp.System = "phone"
		}
		out = append(out, cp)
	}
	return out
}

func telecomUse(use string) string {
	switch use {
	case "H", "HP":
		return "home"
	case "WP":
		return "work"
	case "MC":
		return "mobile"
	default:
		return ""
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// humanNameOf converts a structured person name.
func humanNameOf(n *statement.PersonName) *fhir.HumanName {
	if n == nil {
		return nil
	}
	hn := &fhir.HumanName{
		Text:   n.Text(),
		Family: n.Family,
		Given:  n.Given,
	}
	if n.Prefix != "" {
		hn.Prefix = []string{n.Prefix}
	}
	if n.Suffix != "" {
		hn.Suffix = []string{n.Suffix}
	}
	return hn
}
