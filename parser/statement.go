package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/gofhir/cdaconvert"
	"github.com/gofhir/cdaconvert/datatype"
	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/xmltree"
)

// statementClasses maps entry element tags to statement classes. Entry
// children outside this map are unknown constructs: recorded and skipped,
// never fatal.
var statementClasses = map[string]statement.Class{
	"act":                     statement.ClassAct,
	"observation":             statement.ClassObservation,
	"encounter":               statement.ClassEncounter,
	"procedure":               statement.ClassProcedure,
	"substanceAdministration": statement.ClassSubstanceAdministration,
	"organizer":               statement.ClassOrganizer,
}

// parseStatement builds one clinical statement and validates it against
// its dispatched schema. ok is false when the statement was rejected or
// skipped; issues and decisions are already recorded in that case.
func (p *Parser) parseStatement(el *etree.Element, res *cdaconvert.Result) (*statement.ClinicalStatement, bool) {
	class, known := statementClasses[el.Tag]
	if !known {
		path := xmltree.Path(el)
		p.addIssue(res, cdaconvert.Warning(cdaconvert.IssueTypeUnknownConstruct).
			Diagnostics(fmt.Sprintf("unrecognized clinical statement element %s", el.Tag)).
			At(path).
			Stage(stageParse).Build())
		res.Record(cdaconvert.Decision{
			Kind:   cdaconvert.DecisionIgnoredConstruct,
			Path:   path,
			Detail: "element " + el.Tag + " skipped",
		})
		return nil, false
	}

	st := &statement.ClinicalStatement{
		Class:       class,
		ClassCode:   xmltree.Attr(el, "classCode"),
		MoodCode:    xmltree.Attr(el, "moodCode"),
		NegationInd: xmltree.Attr(el, "negationInd") == "true",
		TemplateIDs: parseTemplateIDs(el),
		IDs:         parseIdentifiers(el),
		StatusCode:  xmltree.Attr(xmltree.Child(el, "statusCode"), "code"),
		Path:        xmltree.Path(el),
	}

	if code := xmltree.Child(el, "code"); code != nil {
		st.Code = datatype.DecodeCoded(code)
	}
	if text := xmltree.Child(el, "text"); text != nil {
		if ref := xmltree.Child(text, "reference"); ref != nil {
			st.TextRef = strings.TrimPrefix(xmltree.Attr(ref, "value"), "#")
		}
	}
	st.Effective = p.parseEffectiveTime(el, res)

	if value := xmltree.Child(el, "value"); value != nil {
		st.Value = p.parseValue(value, res)
	}

	if class == statement.ClassSubstanceAdministration {
		p.parseSubstanceDetail(el, st, res)
	}

	for _, perf := range xmltree.Children(el, "performer") {
		if pf := parsePerformer(perf); pf != nil {
			st.Performers = append(st.Performers, *pf)
		}
	}
	for _, a := range xmltree.Children(el, "author") {
		if author := p.parseAuthor(a, res); author != nil {
			st.Authors = append(st.Authors, *author)
		}
	}
	for _, part := range xmltree.Children(el, "participant") {
		st.Participants = append(st.Participants, parseParticipant(part))
	}

	for _, rel := range xmltree.Children(el, "entryRelationship") {
		child := firstElement(rel)
		if child == nil {
			continue
		}
		nested, ok := p.parseStatement(child, res)
		if !ok {
			// The nested rejection aborts only the nested statement.
			continue
		}
		st.Relationships = append(st.Relationships, statement.Relationship{
			TypeCode:  xmltree.Attr(rel, "typeCode"),
			Statement: nested,
		})
	}

	if class == statement.ClassOrganizer {
		for _, comp := range xmltree.Children(el, "component") {
			child := firstElement(comp)
			if child == nil {
				continue
			}
			if nested, ok := p.parseStatement(child, res); ok {
				st.Components = append(st.Components, nested)
			}
		}
	}

	return st, p.validate(st, res)
}

// validate dispatches the statement's schema and evaluates its rules.
// Every violation is recorded with its citation; any violation rejects
// the statement.
func (p *Parser) validate(st *statement.ClinicalStatement, res *cdaconvert.Result) bool {
	sch, known := p.templates.Dispatch(st.TemplateIDs)
	if !known && len(st.TemplateIDs) > 0 {
		p.addIssue(res, cdaconvert.Warning(cdaconvert.IssueTypeUnknownConstruct).
			Diagnostics(fmt.Sprintf("no schema registered for template ids %s; statement carried as generic",
				strings.Join(st.TemplateIDs, ", "))).
			At(st.Path).
			Stage(stageParse).Build())
	}

	violations := sch.Validate(st)
	if len(violations) == 0 {
		return true
	}
	for _, v := range violations {
		p.addIssue(res, cdaconvert.Error(cdaconvert.IssueTypeStructural).
			Diagnostics(v.Description).
			At(v.Path).
			Rule(v.RuleID).
			Template(sch.OID).
			Stage(stageParse).Build())
	}
	p.opts.Logger.Debug().
		Str("path", st.Path).
		Str("schema", sch.Name).
		Int("violations", len(violations)).
		Msg("clinical statement rejected")
	return false
}

// parseValue decodes a value element, applying the documented mistag
// vocabulary first when normalization is enabled. Undecodable values are
// recorded and left nil; whether that rejects the statement is decided by
// the schema's rules.
func (p *Parser) parseValue(el *etree.Element, res *cdaconvert.Result) *datatype.Value {
	disc := xmltree.Attr(el, "type")
	path := xmltree.Path(el)

	if p.opts.NormalizeMistags {
		if from, to, ok := datatype.NormalizeMistag(el); ok {
			res.Record(cdaconvert.Decision{
				Kind:   cdaconvert.DecisionNormalized,
				Path:   path,
				Detail: fmt.Sprintf("declared type %s normalized to %s", orMissing(from), to),
			})
			p.opts.Logger.Debug().
				Str("path", path).
				Str("from", orMissing(from)).
				Str("to", to).
				Msg("datatype mistag normalized")
			disc = to
		}
	}

	v, err := datatype.DecodeAs(el, disc)
	if err == nil {
		p.recordValueTruncations(res, path, v)
		return v
	}

	var unknown *datatype.UnknownConstructError
	if errors.As(err, &unknown) {
		p.addIssue(res, cdaconvert.Warning(cdaconvert.IssueTypeUnknownConstruct).
			Diagnostics(err.Error()).
			At(path).
			Stage(stageParse).Build())
		res.Record(cdaconvert.Decision{
			Kind:   cdaconvert.DecisionIgnoredConstruct,
			Path:   path,
			Detail: err.Error(),
		})
	} else {
		p.addIssue(res, cdaconvert.Warning(cdaconvert.IssueTypeProcessing).
			Diagnostics(err.Error()).
			At(path).
			Stage(stageParse).Build())
	}
	return nil
}

func (p *Parser) recordValueTruncations(res *cdaconvert.Result, path string, v *datatype.Value) {
	switch {
	case v.Time != nil && v.Time.Truncated:
		p.recordTruncation(res, path, v.Time.String(), v.Time)
	case v.Interval != nil:
		if v.Interval.Low != nil && v.Interval.Low.Truncated {
			p.recordTruncation(res, path, v.Interval.Low.String(), v.Interval.Low)
		}
		if v.Interval.High != nil && v.Interval.High.Truncated {
			p.recordTruncation(res, path, v.Interval.High.String(), v.Interval.High)
		}
	}
}

// parseEffectiveTime decodes the first point-or-interval effectiveTime.
// Additional effectiveTime siblings carrying dosing-frequency types are
// outside the conversion model and recorded as ignored.
func (p *Parser) parseEffectiveTime(el *etree.Element, res *cdaconvert.Result) *datatype.Interval {
	var out *datatype.Interval
	for _, et := range xmltree.Children(el, "effectiveTime") {
		disc := xmltree.Attr(et, "type")
		if disc != "" && disc != "IVL_TS" && disc != "TS" {
			res.Record(cdaconvert.Decision{
				Kind:   cdaconvert.DecisionIgnoredConstruct,
				Path:   xmltree.Path(et),
				Detail: "effectiveTime of type " + disc + " not converted",
			})
			continue
		}
		if out != nil {
			continue
		}
		if xmltree.Attr(et, "nullFlavor") != "" {
			out = &datatype.Interval{LowNull: datatype.ParseNullFlavor(xmltree.Attr(et, "nullFlavor"))}
			continue
		}
		iv, err := datatype.DecodeInterval(et)
		if err != nil {
			p.addIssue(res, cdaconvert.Warning(cdaconvert.IssueTypeProcessing).
				Diagnostics(err.Error()).
				At(xmltree.Path(et)).
				Stage(stageParse).Build())
			continue
		}
		path := xmltree.Path(et)
		if iv.Low != nil && iv.Low.Truncated {
			p.recordTruncation(res, path, iv.Low.String(), iv.Low)
		}
		if iv.High != nil && iv.High.Truncated {
			p.recordTruncation(res, path, iv.High.String(), iv.High)
		}
		out = iv
	}
	return out
}

// parseSubstanceDetail extracts the consumable product, dose and route of
// a substance administration.
func (p *Parser) parseSubstanceDetail(el *etree.Element, st *statement.ClinicalStatement, res *cdaconvert.Result) {
	material := xmltree.Child(xmltree.Child(xmltree.Child(el, "consumable"),
		"manufacturedProduct"), "manufacturedMaterial")
	if material != nil {
		prod := &statement.Product{LotNumber: childText(material, "lotNumberText")}
		if code := xmltree.Child(material, "code"); code != nil {
			prod.Code = datatype.DecodeCoded(code)
		}
		st.Consumable = prod
	}

	if dose := xmltree.Child(el, "doseQuantity"); dose != nil && xmltree.Attr(dose, "value") != "" {
		if v := p.parseValueAs(dose, "PQ", res); v != nil {
			st.DoseQuantity = v.Quantity
		}
	}
	if route := xmltree.Child(el, "routeCode"); route != nil {
		st.RouteCode = datatype.DecodeCoded(route)
	}
}

func (p *Parser) parseValueAs(el *etree.Element, disc string, res *cdaconvert.Result) *datatype.Value {
	v, err := datatype.DecodeAs(el, disc)
	if err != nil {
		p.addIssue(res, cdaconvert.Warning(cdaconvert.IssueTypeProcessing).
			Diagnostics(err.Error()).
			At(xmltree.Path(el)).
			Stage(stageParse).Build())
		return nil
	}
	return v
}

func parsePerformer(el *etree.Element) *statement.Performer {
	assigned := xmltree.Child(el, "assignedEntity")
	if assigned == nil {
		return nil
	}
	pf := &statement.Performer{IDs: parseIdentifiers(assigned)}
	if person := xmltree.Child(assigned, "assignedPerson"); person != nil {
		pf.PersonName = parseName(xmltree.Child(person, "name"))
	}
	if org := xmltree.Child(assigned, "representedOrganization"); org != nil {
		pf.OrgName = childText(org, "name")
		pf.OrgIDs = parseIdentifiers(org)
	}
	return pf
}

func parseParticipant(el *etree.Element) statement.Participant {
	part := statement.Participant{TypeCode: xmltree.Attr(el, "typeCode")}
	if fc := xmltree.Child(el, "functionCode"); fc != nil {
		part.FunctionCode = datatype.DecodeCoded(fc)
	}
	roleEl := xmltree.Child(el, "participantRole")
	if roleEl == nil {
		return part
	}
	role := &statement.Role{
		ClassCode: xmltree.Attr(roleEl, "classCode"),
		IDs:       parseIdentifiers(roleEl),
		Addresses: parseAddresses(roleEl),
		Telecoms:  parseTelecoms(roleEl),
	}
	if code := xmltree.Child(roleEl, "code"); code != nil {
		role.Code = datatype.DecodeCoded(code)
	}
	if pe := xmltree.Child(roleEl, "playingEntity"); pe != nil {
		entity := &statement.Entity{
			ClassCode: xmltree.Attr(pe, "classCode"),
			Name:      childText(pe, "name"),
		}
		if code := xmltree.Child(pe, "code"); code != nil {
			entity.Code = datatype.DecodeCoded(code)
		}
		role.PlayingEntity = entity
	}
	if pd := xmltree.Child(roleEl, "playingDevice"); pd != nil {
		role.PlayingDevice = parseDevice(pd)
	}
	part.Role = role
	return part
}

func parseDevice(el *etree.Element) *statement.DeviceInfo {
	return &statement.DeviceInfo{
		ManufacturerModelName: childText(el, "manufacturerModelName"),
		SoftwareName:          childText(el, "softwareName"),
	}
}

func parseTemplateIDs(el *etree.Element) []string {
	var out []string
	for _, t := range xmltree.Children(el, "templateId") {
		if root := xmltree.Attr(t, "root"); root != "" {
			out = append(out, root)
		}
	}
	return out
}

func parseIdentifier(el *etree.Element) statement.Identifier {
	return statement.Identifier{
		Root:      xmltree.Attr(el, "root"),
		Extension: xmltree.Attr(el, "extension"),
	}
}

func parseIdentifiers(el *etree.Element) []statement.Identifier {
	var out []statement.Identifier
	for _, id := range xmltree.Children(el, "id") {
		if xmltree.Attr(id, "nullFlavor") != "" {
			continue
		}
		parsed := parseIdentifier(id)
		if !parsed.IsZero() {
			out = append(out, parsed)
		}
	}
	return out
}

func parseName(el *etree.Element) *statement.PersonName {
	if el == nil {
		return nil
	}
	n := &statement.PersonName{
		Family: childText(el, "family"),
		Prefix: childText(el, "prefix"),
		Suffix: childText(el, "suffix"),
	}
	for _, g := range xmltree.Children(el, "given") {
		if text := strings.TrimSpace(g.Text()); text != "" {
			n.Given = append(n.Given, text)
		}
	}
	if n.Family == "" && len(n.Given) == 0 {
		// Some generators emit a flat name with no structured parts.
		if flat := strings.TrimSpace(el.Text()); flat != "" {
			n.Family = flat
		} else {
			return nil
		}
	}
	return n
}

func parseAddresses(el *etree.Element) []statement.Address {
	var out []statement.Address
	for _, addr := range xmltree.Children(el, "addr") {
		if xmltree.Attr(addr, "nullFlavor") != "" {
			continue
		}
		a := statement.Address{
			Use:        xmltree.Attr(addr, "use"),
			City:       childText(addr, "city"),
			State:      childText(addr, "state"),
			PostalCode: childText(addr, "postalCode"),
			Country:    childText(addr, "country"),
		}
		for _, line := range xmltree.Children(addr, "streetAddressLine") {
			if text := strings.TrimSpace(line.Text()); text != "" {
				a.Lines = append(a.Lines, text)
			}
		}
		out = append(out, a)
	}
	return out
}

func parseTelecoms(el *etree.Element) []statement.Telecom {
	var out []statement.Telecom
	for _, tel := range xmltree.Children(el, "telecom") {
		value := xmltree.Attr(tel, "value")
		if value == "" {
			continue
		}
		out = append(out, statement.Telecom{
			Use:   xmltree.Attr(tel, "use"),
			Value: value,
		})
	}
	return out
}

func firstElement(el *etree.Element) *etree.Element {
	if el == nil {
		return nil
	}
	children := el.ChildElements()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func childText(el *etree.Element, tag string) string {
	c := xmltree.Child(el, tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

func orMissing(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
