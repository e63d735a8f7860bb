// Package parser turns a normalized element tree into the typed clinical
// statement model.
//
// Parsing is recursive descent: sections dispatch their entries through the
// template registry, entries route their relationship children back through
// the same machinery. Conformance is enforced as statements are built; a
// statement that fails a structural rule is dropped with an attributed
// rejection and its siblings continue, while header-level failures reject
// the whole document.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/gofhir/cdaconvert"
	"github.com/gofhir/cdaconvert/datatype"
	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/template"
	"github.com/gofhir/cdaconvert/xmltree"
)

const stageParse = "parse"

// ErrRejected is returned when a header-level structural violation rejects
// the document. The rejection issue with its rule citation is recorded on
// the result before return.
var ErrRejected = errors.New("parser: document rejected")

// Parser builds clinical statement models from normalized element trees.
// One Parser is safe for concurrent use; all per-conversion state lives in
// the Result passed to ParseDocument.
type Parser struct {
	templates *template.Registry
	opts      *cdaconvert.Options
}

// New creates a Parser over the given template registry. A nil registry
// uses the built-in schemas; nil options use defaults.
func New(templates *template.Registry, opts *cdaconvert.Options) *Parser {
	if templates == nil {
		templates = template.Default()
	}
	if opts == nil {
		opts = cdaconvert.DefaultOptions()
	}
	return &Parser{templates: templates, opts: opts}
}

// ParseDocument parses one document root into the statement model. Header
// violations record a fatal issue and return ErrRejected; statement-level
// violations are recorded and skipped without failing the parse.
func (p *Parser) ParseDocument(root *etree.Element, res *cdaconvert.Result) (*statement.Document, error) {
	if root == nil {
		res.AddIssue(cdaconvert.Fatal(cdaconvert.IssueTypeMalformed).
			Diagnostics("document has no root element").
			Stage(stageParse).Build())
		return nil, ErrRejected
	}
	if root.Tag != "ClinicalDocument" {
		res.AddIssue(cdaconvert.Fatal(cdaconvert.IssueTypeStructural).
			Diagnostics(fmt.Sprintf("document root SHALL be ClinicalDocument, found %s", root.Tag)).
			At(xmltree.Path(root)).
			Rule("CONF:1198-5250").
			Stage(stageParse).Build())
		return nil, ErrRejected
	}

	doc := &statement.Document{}

	if id := xmltree.Child(root, "id"); id != nil {
		doc.ID = parseIdentifier(id)
	}
	if code := xmltree.Child(root, "code"); code != nil {
		doc.Code = datatype.DecodeCoded(code)
	}
	if title := xmltree.Child(root, "title"); title != nil {
		doc.Title = strings.TrimSpace(title.Text())
	}
	if et := xmltree.Child(root, "effectiveTime"); et != nil {
		doc.Effective = p.parseTimestamp(et, res)
	}

	patient, err := p.parseRecordTarget(root, res)
	if err != nil {
		return nil, err
	}
	doc.Patient = patient

	for _, a := range xmltree.Children(root, "author") {
		if author := p.parseAuthor(a, res); author != nil {
			doc.Authors = append(doc.Authors, *author)
		}
	}
	doc.Custodian = parseCustodian(root)

	body := bodyElement(root)
	if body == nil {
		// A header-only document converts to a bundle with no clinical
		// resources; it is not a rejection.
		res.AddIssue(cdaconvert.Warning(cdaconvert.IssueTypeMissingRequired).
			Diagnostics("document carries no structured body").
			At(xmltree.Path(root)).
			Stage(stageParse).Build())
		return doc, nil
	}

	for _, comp := range xmltree.Children(body, "component") {
		sec := xmltree.Child(comp, "section")
		if sec == nil {
			continue
		}
		doc.Sections = append(doc.Sections, p.parseSection(sec, res))
	}
	return doc, nil
}

// parseRecordTarget extracts the patient. A document without a record
// target has no subject for any resource; that is a header-level rejection.
func (p *Parser) parseRecordTarget(root *etree.Element, res *cdaconvert.Result) (*statement.PatientInfo, error) {
	rt := xmltree.Child(root, "recordTarget")
	role := xmltree.Child(rt, "patientRole")
	if role == nil {
		res.AddIssue(cdaconvert.Fatal(cdaconvert.IssueTypeStructural).
			Diagnostics("document SHALL contain recordTarget/patientRole").
			At(xmltree.Path(root)).
			Rule("CONF:1198-5266").
			Stage(stageParse).Build())
		return nil, ErrRejected
	}

	info := &statement.PatientInfo{
		IDs:       parseIdentifiers(role),
		Addresses: parseAddresses(role),
		Telecoms:  parseTelecoms(role),
	}
	if pat := xmltree.Child(role, "patient"); pat != nil {
		info.Name = parseName(xmltree.Child(pat, "name"))
		if g := xmltree.Child(pat, "administrativeGenderCode"); g != nil {
			info.Gender = datatype.DecodeCoded(g)
		}
		if bt := xmltree.Child(pat, "birthTime"); bt != nil {
			info.BirthTime = p.parseTimestamp(bt, res)
		}
		if ms := xmltree.Child(pat, "maritalStatusCode"); ms != nil {
			info.MaritalStatus = datatype.DecodeCoded(ms)
		}
	}
	return info, nil
}

func (p *Parser) parseAuthor(el *etree.Element, res *cdaconvert.Result) *statement.Author {
	assigned := xmltree.Child(el, "assignedAuthor")
	if assigned == nil {
		return nil
	}
	a := &statement.Author{IDs: parseIdentifiers(assigned)}
	if t := xmltree.Child(el, "time"); t != nil {
		a.Time = p.parseTimestamp(t, res)
	}
	if person := xmltree.Child(assigned, "assignedPerson"); person != nil {
		a.PersonName = parseName(xmltree.Child(person, "name"))
	}
	if dev := xmltree.Child(assigned, "assignedAuthoringDevice"); dev != nil {
		a.Device = parseDevice(dev)
	}
	if org := xmltree.Child(assigned, "representedOrganization"); org != nil {
		a.OrgName = childText(org, "name")
		a.OrgIDs = parseIdentifiers(org)
	}
	return a
}

func parseCustodian(root *etree.Element) *statement.OrgInfo {
	org := xmltree.Child(xmltree.Child(xmltree.Child(root, "custodian"),
		"assignedCustodian"), "representedCustodianOrganization")
	if org == nil {
		return nil
	}
	return &statement.OrgInfo{
		IDs:       parseIdentifiers(org),
		Name:      childText(org, "name"),
		Addresses: parseAddresses(org),
		Telecoms:  parseTelecoms(org),
	}
}

func bodyElement(root *etree.Element) *etree.Element {
	return xmltree.Child(xmltree.Child(root, "component"), "structuredBody")
}

// parseSection builds one section: narrative first, then every entry
// routed through template dispatch. A rejected entry is skipped; the
// section and its siblings continue.
func (p *Parser) parseSection(el *etree.Element, res *cdaconvert.Result) *statement.Section {
	sec := &statement.Section{
		TemplateIDs: parseTemplateIDs(el),
		Title:       childText(el, "title"),
		Path:        xmltree.Path(el),
	}
	if code := xmltree.Child(el, "code"); code != nil {
		sec.Code = datatype.DecodeCoded(code)
	}
	if text := xmltree.Child(el, "text"); text != nil {
		sec.Text = parseNarrative(text)
	}

	for _, entry := range xmltree.Children(el, "entry") {
		child := firstElement(entry)
		if child == nil {
			continue
		}
		if st, ok := p.parseStatement(child, res); ok {
			sec.Statements = append(sec.Statements, st)
		}
	}
	return sec
}

// addIssue records an issue honoring the configured cap. Fatal issues are
// always recorded.
func (p *Parser) addIssue(res *cdaconvert.Result, issue cdaconvert.Issue) {
	if p.opts.MaxIssues > 0 && !issue.IsFatal() && len(res.Issues) >= p.opts.MaxIssues {
		return
	}
	res.AddIssue(issue)
}

// parseTimestamp decodes a time element, recording the truncation decision
// when the offset policy discards a time-of-day component.
func (p *Parser) parseTimestamp(el *etree.Element, res *cdaconvert.Result) *datatype.Timestamp {
	if xmltree.Attr(el, "nullFlavor") != "" {
		return nil
	}
	raw := xmltree.Attr(el, "value")
	if raw == "" {
		return nil
	}
	ts, err := datatype.ParseTimestamp(raw)
	if err != nil {
		p.addIssue(res, cdaconvert.Warning(cdaconvert.IssueTypeProcessing).
			Diagnostics(err.Error()).
			At(xmltree.Path(el)).
			Stage(stageParse).Build())
		return nil
	}
	if ts.Truncated {
		p.recordTruncation(res, xmltree.Path(el), raw, ts)
	}
	return ts
}

func (p *Parser) recordTruncation(res *cdaconvert.Result, path, raw string, ts *datatype.Timestamp) {
	res.Record(cdaconvert.Decision{
		Kind:   cdaconvert.DecisionTruncatedTime,
		Path:   path,
		Detail: fmt.Sprintf("%s truncated to %s: offset absent or out of range", raw, ts.String()),
	})
	p.opts.Logger.Debug().
		Str("path", path).
		Str("value", raw).
		Str("truncated", ts.String()).
		Msg("timestamp truncated to date precision")
}
