package datatype

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/gofhir/cdaconvert/xmltree"
)

// UnknownConstructError signals an unrecognized type discriminator. It is
// recoverable: the caller logs the construct and continues, unless the
// value sits in a required position.
type UnknownConstructError struct {
	Discriminator string
}

func (e *UnknownConstructError) Error() string {
	if e.Discriminator == "" {
		return "datatype: value element carries no type discriminator"
	}
	return fmt.Sprintf("datatype: unknown type discriminator %q", e.Discriminator)
}

// Decode decodes a value element using its declared xsi:type discriminator.
// A null-flavored element short-circuits decoding and yields an explicit
// "absent for reason" value. An unrecognized discriminator yields an
// *UnknownConstructError; data is never silently dropped.
func Decode(el *etree.Element) (*Value, error) {
	return DecodeAs(el, xmltree.Attr(el, "type"))
}

// DecodeAs decodes a value element as the given discriminator, which the
// caller may have fixed up via NormalizeMistag or defaulted from element
// context (e.g. effectiveTime needs no xsi:type).
func DecodeAs(el *etree.Element, discriminator string) (*Value, error) {
	kind := kindOf(discriminator)

	if nf := xmltree.Attr(el, "nullFlavor"); nf != "" {
		return &Value{Kind: kind, Null: ParseNullFlavor(nf)}, nil
	}

	switch discriminator {
	case "TS":
		return decodeInstant(el)
	case "IVL_TS":
		iv, err := DecodeInterval(el)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindInterval, Interval: iv}, nil
	case "CD", "CE":
		return &Value{Kind: KindCoded, Coded: DecodeCoded(el)}, nil
	case "CO":
		return &Value{Kind: KindOrdinalCoded, Coded: DecodeCoded(el)}, nil
	case "PQ":
		q, err := decodeQuantity(el, true)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindQuantity, Quantity: q}, nil
	case "INT", "REAL":
		// Plain numbers decode as unit-less quantities; the mapper's
		// quantity policy supplies the dimensionless marker.
		q, err := decodeQuantity(el, false)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindQuantity, Quantity: q}, nil
	case "ST":
		return &Value{Kind: KindString, Str: strings.TrimSpace(el.Text())}, nil
	case "ED":
		ed, err := decodeEncapsulated(el)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindEncapsulated, Encapsulated: ed}, nil
	default:
		return nil, &UnknownConstructError{Discriminator: discriminator}
	}
}

func kindOf(discriminator string) Kind {
	switch discriminator {
	case "TS":
		return KindInstant
	case "IVL_TS":
		return KindInterval
	case "CD", "CE":
		return KindCoded
	case "CO":
		return KindOrdinalCoded
	case "PQ", "INT", "REAL":
		return KindQuantity
	case "ST":
		return KindString
	case "ED":
		return KindEncapsulated
	default:
		return KindUnknown
	}
}

// NormalizeMistag checks an element against the documented, closed
// vocabulary of known vendor mistags: a wrong data-type tag on an otherwise
// well-formed value. It returns the corrected discriminator when the
// element matches the vocabulary. Anything outside this table must be
// rejected, never guessed at.
//
// The vocabulary:
//
//	ST carrying code+codeSystem attributes        -> CD
//	INT/REAL carrying a unit attribute            -> PQ
//	missing discriminator, value+unit attributes  -> PQ
//	missing discriminator, code+codeSystem attrs  -> CD
func NormalizeMistag(el *etree.Element) (from, to string, ok bool) {
	declared := xmltree.Attr(el, "type")
	code := xmltree.Attr(el, "code")
	codeSystem := xmltree.Attr(el, "codeSystem")
	value := xmltree.Attr(el, "value")
	unit := xmltree.Attr(el, "unit")

	switch declared {
	case "ST":
		if code != "" && codeSystem != "" {
			return declared, "CD", true
		}
	case "INT", "REAL":
		if unit != "" {
			return declared, "PQ", true
		}
	case "":
		if value != "" && unit != "" {
			return declared, "PQ", true
		}
		if code != "" && codeSystem != "" {
			return declared, "CD", true
		}
	}
	return declared, declared, false
}

// DecodeCoded decodes a coded-value element including its translations and
// original text. It never fails: a code-less element simply yields an
// empty concept, which the mapping layer treats as missing data.
func DecodeCoded(el *etree.Element) *CodedValue {
	cv := &CodedValue{
		Code:           xmltree.Attr(el, "code"),
		CodeSystem:     xmltree.Attr(el, "codeSystem"),
		CodeSystemName: xmltree.Attr(el, "codeSystemName"),
		DisplayName:    xmltree.Attr(el, "displayName"),
	}

	if ot := xmltree.Child(el, "originalText"); ot != nil {
		if ref := xmltree.Child(ot, "reference"); ref != nil {
			cv.OriginalTextRef = strings.TrimPrefix(xmltree.Attr(ref, "value"), "#")
		}
		if text := strings.TrimSpace(ot.Text()); text != "" {
			cv.OriginalText = text
		}
	}

	for _, tr := range xmltree.Children(el, "translation") {
		if xmltree.Attr(tr, "nullFlavor") != "" {
			continue
		}
		cv.Translations = append(cv.Translations, *DecodeCoded(tr))
	}

	return cv
}

// DecodeTime decodes a timestamp-bearing element (value attribute).
func DecodeTime(el *etree.Element) (*Timestamp, error) {
	raw := xmltree.Attr(el, "value")
	if raw == "" {
		return nil, fmt.Errorf("datatype: time element %s has no value", el.Tag)
	}
	return ParseTimestamp(raw)
}

// DecodeInterval decodes an effectiveTime-like element: either a single
// value attribute, a center child, or low/high boundaries. Null-flavored
// boundaries are recorded as such.
func DecodeInterval(el *etree.Element) (*Interval, error) {
	iv := &Interval{}

	if raw := xmltree.Attr(el, "value"); raw != "" {
		ts, err := ParseTimestamp(raw)
		if err != nil {
			return nil, err
		}
		iv.Low = ts
		return iv, nil
	}
	if center := xmltree.Child(el, "center"); center != nil {
		ts, err := DecodeTime(center)
		if err != nil {
			return nil, err
		}
		iv.Low = ts
		return iv, nil
	}

	if low := xmltree.Child(el, "low"); low != nil {
		if nf := xmltree.Attr(low, "nullFlavor"); nf != "" {
			iv.LowNull = ParseNullFlavor(nf)
		} else {
			ts, err := DecodeTime(low)
			if err != nil {
				return nil, err
			}
			iv.Low = ts
		}
	}
	if high := xmltree.Child(el, "high"); high != nil {
		if nf := xmltree.Attr(high, "nullFlavor"); nf != "" {
			iv.HighNull = ParseNullFlavor(nf)
		} else {
			ts, err := DecodeTime(high)
			if err != nil {
				return nil, err
			}
			iv.High = ts
		}
	}
	return iv, nil
}

func decodeInstant(el *etree.Element) (*Value, error) {
	ts, err := DecodeTime(el)
	if err != nil {
		return nil, err
	}
	return &Value{Kind: KindInstant, Time: ts}, nil
}

func decodeQuantity(el *etree.Element, unitExpected bool) (*PhysicalQuantity, error) {
	raw := xmltree.Attr(el, "value")
	if raw == "" {
		return nil, fmt.Errorf("datatype: quantity element %s has no value", el.Tag)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("datatype: quantity value %q is not numeric: %w", raw, err)
	}

	q := &PhysicalQuantity{Value: d}
	if unitExpected {
		q.Unit = xmltree.Attr(el, "unit")
	}
	return q, nil
}

func decodeEncapsulated(el *etree.Element) (*EncapsulatedData, error) {
	ed := &EncapsulatedData{
		MediaType:      xmltree.Attr(el, "mediaType"),
		Representation: xmltree.Attr(el, "representation"),
	}

	if ref := xmltree.Child(el, "reference"); ref != nil {
		ed.Reference = xmltree.Attr(ref, "value")
		return ed, nil
	}

	text := strings.TrimSpace(el.Text())
	if text == "" {
		return ed, nil
	}
	if ed.Representation == "B64" {
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return nil, fmt.Errorf("datatype: invalid base64 content: %w", err)
		}
		ed.Data = data
	} else {
		ed.Data = []byte(text)
	}
	return ed, nil
}
