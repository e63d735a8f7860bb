package cdaconvert

// CDARelease identifies the source document standard release.
type CDARelease string

// Supported source releases.
const (
	// CCDA21 is Consolidated CDA Release 2.1
	CCDA21 CDARelease = "C-CDA-2.1"
	// CCDA20 is Consolidated CDA Release 2.0
	CCDA20 CDARelease = "C-CDA-2.0"
)

// String returns the release string.
func (r CDARelease) String() string {
	return string(r)
}

// IsValid returns true if this is a supported release.
func (r CDARelease) IsValid() bool {
	switch r {
	case CCDA21, CCDA20:
		return true
	default:
		return false
	}
}

// FHIRVersion is the target resource model version emitted by the converter.
const FHIRVersion = "4.0.1"
