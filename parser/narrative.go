package parser

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/xmltree"
)

// parseNarrative converts a section's text element into the narrative
// block tree. Mixed content is preserved: leading character data becomes
// the block's own text, character data following a child element becomes
// that child's tail. Tail text is kept and re-appended when blocks are
// flattened to plain text, so ID-based lookups see the full content.
func parseNarrative(el *etree.Element) *statement.NarrativeBlock {
	block := &statement.NarrativeBlock{
		Tag: el.Tag,
		ID:  narrativeID(el),
	}

	var last *statement.NarrativeBlock
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			text := strings.TrimSpace(t.Data)
			if text == "" {
				continue
			}
			if last == nil {
				block.Text = joinText(block.Text, text)
			} else {
				last.Tail = joinText(last.Tail, text)
			}
		case *etree.Element:
			child := parseNarrative(t)
			block.Children = append(block.Children, child)
			last = child
		}
	}
	return block
}

// narrativeID reads the narrative anchor attribute. The standard form is
// uppercase ID; the lowercase variant appears in the wild and resolves the
// same references.
func narrativeID(el *etree.Element) string {
	if id := xmltree.Attr(el, "ID"); id != "" {
		return id
	}
	return xmltree.Attr(el, "id")
}

func joinText(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
