// Package datatype decodes CDA value elements into a single polymorphic
// Value union with null-flavor semantics.
//
// Structurally identical wire types (CD/CE/CO) are interchangeable where
// the enclosing conformance rule allows it; the compatibility table in
// compat.go is the only place that knowledge lives. A documented, closed
// vocabulary of vendor mistags may be normalized before decoding; anything
// outside that vocabulary is surfaced as an unknown construct, never
// guessed at.
package datatype

import (
	"github.com/shopspring/decimal"
)

// Kind discriminates the Value union.
type Kind string

// Value kinds, one per supported wire type.
const (
	KindInstant      Kind = "TS"
	KindInterval     Kind = "IVL_TS"
	KindCoded        Kind = "CD"
	KindOrdinalCoded Kind = "CO"
	KindQuantity     Kind = "PQ"
	KindString       Kind = "ST"
	KindEncapsulated Kind = "ED"
	KindUnknown      Kind = ""
)

// Value is the tagged union over all supported wire datatypes. Exactly one
// of the payload fields matching Kind is set, unless Null is set, in which
// case the value carries no concrete content at all.
type Value struct {
	Kind Kind
	Null NullFlavor

	Time         *Timestamp
	Interval     *Interval
	Coded        *CodedValue
	Quantity     *PhysicalQuantity
	Str          string
	Encapsulated *EncapsulatedData
}

// IsNull reports whether the value is an explicit "absent for reason" marker.
func (v *Value) IsNull() bool {
	return v != nil && v.Null.IsNull()
}

// CodedValue is a coded concept with optional translations. Ordering
// semantics (KindOrdinalCoded) are advisory only and never load-bearing
// for conversion.
type CodedValue struct {
	Code           string
	CodeSystem     string
	CodeSystemName string
	DisplayName    string

	// OriginalText is inline original text, when present.
	OriginalText string

	// OriginalTextRef is an ID-based reference ("#ref1") into the section
	// narrative, resolved against the narrative index at mapping time.
	OriginalTextRef string

	Translations []CodedValue
}

// HasCode reports whether the concept carries a usable code.
func (c *CodedValue) HasCode() bool {
	return c != nil && c.Code != ""
}

// PhysicalQuantity is a measured amount. Value uses exact decimal
// arithmetic so vendor-supplied precision survives conversion.
type PhysicalQuantity struct {
	Value decimal.Decimal
	Unit  string
}

// EncapsulatedData holds inline or referenced media content.
type EncapsulatedData struct {
	MediaType      string
	Representation string
	Data           []byte
	Reference      string
}
