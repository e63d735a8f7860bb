package datatype

// NullFlavor is an explicit marker meaning "conceptually present but absent
// for a stated reason", distinct from ordinary absence. A value carries
// either concrete content or a null flavor, never both.
type NullFlavor string

// Null flavors recognized on CDA elements.
const (
	FlavorNone                   NullFlavor = ""
	FlavorNoInformation          NullFlavor = "NI"
	FlavorUnknown                NullFlavor = "UNK"
	FlavorAskedButUnknown        NullFlavor = "ASKU"
	FlavorTemporarilyUnavailable NullFlavor = "NAV"
	FlavorNotApplicable          NullFlavor = "NA"
	FlavorMasked                 NullFlavor = "MSK"
	FlavorOther                  NullFlavor = "OTH"
	FlavorNotAsked               NullFlavor = "NASK"
)

// IsNull returns true for any non-empty flavor.
func (f NullFlavor) IsNull() bool {
	return f != FlavorNone
}

// IsUnknownVariant returns true for the flavors expressing "unknown"
// (NI, UNK, ASKU, NAV, NASK). These mark data as absent-but-expected,
// which drives the missing-required-data policy during mapping.
func (f NullFlavor) IsUnknownVariant() bool {
	switch f {
	case FlavorNoInformation, FlavorUnknown, FlavorAskedButUnknown,
		FlavorTemporarilyUnavailable, FlavorNotAsked:
		return true
	default:
		return false
	}
}

// ParseNullFlavor maps a nullFlavor attribute to its flavor. Unrecognized
// markers collapse to UNK rather than being dropped; the attribute's
// presence alone means "absent for a reason".
func ParseNullFlavor(s string) NullFlavor {
	switch NullFlavor(s) {
	case FlavorNoInformation, FlavorUnknown, FlavorAskedButUnknown,
		FlavorTemporarilyUnavailable, FlavorNotApplicable, FlavorMasked,
		FlavorOther, FlavorNotAsked:
		return NullFlavor(s)
	case FlavorNone:
		return FlavorNone
	default:
		return FlavorUnknown
	}
}
