package datatype

// compatibility is the documented table of wire types accepted where a rule
// names another. It is the single source of interchangeability: mapping
// code never coerces kinds ad hoc.
//
// CD, CE and CO are structurally identical coded values; ordering on CO is
// advisory. TS and IVL_TS interchange because a point in time is a
// degenerate interval. Everything else is strictly distinguished - in
// particular a quantitative slot (PQ) never accepts a coded value.
var compatibility = map[Kind][]Kind{
	KindCoded:        {KindCoded, KindOrdinalCoded},
	KindOrdinalCoded: {KindOrdinalCoded, KindCoded},
	KindInstant:      {KindInstant, KindInterval},
	KindInterval:     {KindInterval, KindInstant},
	KindQuantity:     {KindQuantity},
	KindString:       {KindString},
	KindEncapsulated: {KindEncapsulated},
}

// Compatible reports whether a value of kind got satisfies a rule that
// requires kind want.
func Compatible(want, got Kind) bool {
	if want == got {
		return true
	}
	for _, k := range compatibility[want] {
		if k == got {
			return true
		}
	}
	return false
}
