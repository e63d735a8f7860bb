package statement

import "strings"

// NarrativeBlock is one node of a section's human-readable narrative:
// paragraphs, lists, tables, styled spans. The tree preserves document
// order. Tail is text that follows the node inside its parent; it is
// appended after the node's own content so no narrative text is lost.
type NarrativeBlock struct {
	Tag      string
	ID       string
	Text     string
	Tail     string
	Children []*NarrativeBlock
}

// PlainText flattens the block to display text, in document order,
// including tail text after each child.
func (b *NarrativeBlock) PlainText() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	b.writePlain(&sb)
	return strings.TrimSpace(collapseSpace(sb.String()))
}

func (b *NarrativeBlock) writePlain(sb *strings.Builder) {
	if b.Text != "" {
		sb.WriteString(b.Text)
		sb.WriteByte(' ')
	}
	for _, c := range b.Children {
		c.writePlain(sb)
		if c.Tail != "" {
			sb.WriteString(c.Tail)
			sb.WriteByte(' ')
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NarrativeIndex maps narrative ID attributes to their blocks for
// resolving ID-based references from coded values. Built once per section
// during parsing; read-only afterwards.
type NarrativeIndex map[string]*NarrativeBlock

// BuildNarrativeIndex walks the narrative tree and indexes every block
// carrying an ID attribute. The first occurrence of a duplicated ID wins.
func BuildNarrativeIndex(root *NarrativeBlock) NarrativeIndex {
	ix := NarrativeIndex{}
	var walk func(*NarrativeBlock)
	walk = func(b *NarrativeBlock) {
		if b == nil {
			return
		}
		if b.ID != "" {
			if _, dup := ix[b.ID]; !dup {
				ix[b.ID] = b
			}
		}
		for _, c := range b.Children {
			walk(c)
		}
	}
	walk(root)
	return ix
}

// Resolve returns the flattened text behind a narrative reference id
// (without the leading '#'). Missing ids resolve to nothing; the caller
// falls back to coded display text.
func (ix NarrativeIndex) Resolve(id string) (string, bool) {
	b, ok := ix[id]
	if !ok {
		return "", false
	}
	text := b.PlainText()
	return text, text != ""
}
