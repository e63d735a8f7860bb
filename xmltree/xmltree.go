// Package xmltree parses raw CDA markup into a normalized element tree.
//
// Normalization strips namespace noise and repairs a documented, closed set
// of cosmetic cross-vendor defects. It never touches clinical content; any
// defect outside the documented set is left for the conformance validator
// to reject.
package xmltree

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Parse reads a CDA document and returns the normalized element tree.
// A document that is not well-formed XML fails here, before any clinical
// parsing begins.
func Parse(data []byte) (*etree.Document, error) {
	data = bytes.TrimLeft(data, "\xef\xbb\xbf \t\r\n")
	if len(data) == 0 {
		return nil, fmt.Errorf("xmltree: document is empty")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("xmltree: malformed markup: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("xmltree: document has no root element")
	}

	Normalize(doc)
	return doc, nil
}

// Normalize applies the documented cosmetic repairs in place:
//
//   - namespace prefixes are stripped from element and attribute names
//     (vendors disagree on prefixing the CDA namespace)
//   - xsi:type attribute values lose any namespace prefix
//     ("hl7:PQ" becomes "PQ")
//   - empty attribute values are removed (some generators emit value="")
func Normalize(doc *etree.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	normalizeElement(root)
}

func normalizeElement(el *etree.Element) {
	el.Space = ""

	kept := el.Attr[:0]
	for _, a := range el.Attr {
		if a.Space == "xmlns" || a.Key == "xmlns" {
			continue
		}
		if a.Value == "" {
			continue
		}
		if a.Key == "type" {
			a.Value = stripPrefix(a.Value)
		}
		a.Space = ""
		kept = append(kept, a)
	}
	el.Attr = kept

	for _, child := range el.ChildElements() {
		normalizeElement(child)
	}
}

func stripPrefix(s string) string {
	if idx := strings.LastIndex(s, ":"); idx != -1 {
		return s[idx+1:]
	}
	return s
}

// Attr returns the value of an attribute, ignoring namespace prefixes.
// Returns "" when the attribute is absent.
func Attr(el *etree.Element, key string) string {
	if el == nil {
		return ""
	}
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// Child returns the first child element with the given tag, or nil.
func Child(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Children returns all child elements with the given tag, in document order.
func Children(el *etree.Element, tag string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Path returns a slash-separated element path for issue attribution,
// for example "ClinicalDocument/component/structuredBody/component[3]/section".
// Sibling indexes are 1-based and only appear when the tag repeats.
func Path(el *etree.Element) string {
	if el == nil {
		return ""
	}

	var segments []string
	for cur := el; cur != nil; {
		parent := cur.Parent()
		seg := cur.Tag
		if parent != nil {
			same := Children(parent, cur.Tag)
			if len(same) > 1 {
				for i, sib := range same {
					if sib == cur {
						seg = fmt.Sprintf("%s[%d]", cur.Tag, i+1)
						break
					}
				}
			}
		}
		segments = append([]string{seg}, segments...)
		cur = parent
	}
	return strings.Join(segments, "/")
}
