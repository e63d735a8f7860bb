package cdaconvert

// DecisionKind classifies a recoverable decision taken during conversion.
// Decisions are observability output; correctness never depends on them.
type DecisionKind string

const (
	// DecisionNormalized records a datatype mistag normalized from the
	// documented vendor-defect vocabulary.
	DecisionNormalized DecisionKind = "normalization-applied"
	// DecisionSynthesizedID records a resource id synthesized from statement
	// content because no usable source identifier was present.
	DecisionSynthesizedID DecisionKind = "synthesized-id"
	// DecisionSkippedResource records a resource skipped for missing
	// required data.
	DecisionSkippedResource DecisionKind = "skipped-resource"
	// DecisionIgnoredConstruct records an unrecognized construct that was
	// ignored rather than aborting its siblings.
	DecisionIgnoredConstruct DecisionKind = "ignored-construct"
	// DecisionOmittedReference records a cross-resource reference omitted
	// because the referenced entity could not be mapped.
	DecisionOmittedReference DecisionKind = "omitted-reference"
	// DecisionTruncatedTime records a timestamp truncated to date-only
	// because its offset was absent or out of range.
	DecisionTruncatedTime DecisionKind = "truncated-time"
)

// Decision records one recoverable decision taken during a conversion.
type Decision struct {
	// Kind classifies the decision
	Kind DecisionKind `json:"kind"`

	// Path is the element path the decision applies to
	Path string `json:"path,omitempty"`

	// Detail describes what was decided
	Detail string `json:"detail,omitempty"`

	// ResourceID is the affected resource id, when one exists
	ResourceID string `json:"resourceId,omitempty"`
}
