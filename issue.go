package cdaconvert

// IssueSeverity represents the severity of a conversion issue.
type IssueSeverity string

const (
	// SeverityFatal indicates the document was rejected and no bundle was produced.
	SeverityFatal IssueSeverity = "fatal"
	// SeverityError indicates a statement-level rejection; the rest of the
	// document still converts.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a recoverable downgrade (skipped resource,
	// ignored construct).
	SeverityWarning IssueSeverity = "warning"
	// SeverityInformation indicates informational feedback.
	SeverityInformation IssueSeverity = "information"
)

// IssueType classifies a conversion issue.
type IssueType string

const (
	// IssueTypeStructural indicates a semantic/type conformance predicate
	// failed. Aborts the smallest enclosing clinical statement, or the whole
	// document when raised against header structure.
	IssueTypeStructural IssueType = "structural-rejection"
	// IssueTypeUnknownConstruct indicates an unrecognized type discriminator
	// or template identifier. Recoverable unless in a required position.
	IssueTypeUnknownConstruct IssueType = "unknown-construct"
	// IssueTypeMissingRequired indicates a resource's mandatory discriminating
	// field could not be derived; that one resource is skipped.
	IssueTypeMissingRequired IssueType = "missing-required-data"
	// IssueTypeMalformed indicates the markup itself is not well-formed.
	// Aborts the entire document before parsing begins.
	IssueTypeMalformed IssueType = "malformed-input"
	// IssueTypeNotFound indicates an ID-based narrative reference did not
	// resolve. Recoverable.
	IssueTypeNotFound IssueType = "reference-not-found"
	// IssueTypeProcessing indicates an unclassified internal fault, treated
	// as a document-level failure.
	IssueTypeProcessing IssueType = "processing"
	// IssueTypeInformational indicates informational content.
	IssueTypeInformational IssueType = "informational"
)

// Issue represents a single conversion issue with its rule citation.
type Issue struct {
	// Severity of the issue
	Severity IssueSeverity `json:"severity"`

	// Code identifying the type of issue
	Code IssueType `json:"code"`

	// Diagnostics contains human-readable details about the issue
	Diagnostics string `json:"diagnostics,omitempty"`

	// Path is the element path the issue is attributed to
	// (e.g., "section[problems]/entry[2]/act/effectiveTime")
	Path string `json:"path,omitempty"`

	// RuleID cites the conformance rule that triggered the issue
	// (e.g., "problem-concern-act.status-high")
	RuleID string `json:"ruleId,omitempty"`

	// TemplateID is the template OID of the schema that owns the rule
	TemplateID string `json:"templateId,omitempty"`

	// Stage is the conversion stage that generated this issue
	Stage string `json:"stage,omitempty"`
}

// IsError returns true if this is an error or fatal issue.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError || i.Severity == SeverityFatal
}

// IsFatal returns true if this issue rejected the whole document.
func (i Issue) IsFatal() bool {
	return i.Severity == SeverityFatal
}

// IsWarning returns true if this is a warning.
func (i Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	s := string(i.Severity) + ": " + i.Diagnostics
	if i.Path != "" {
		s += " at " + i.Path
	}
	if i.RuleID != "" {
		s += " [" + i.RuleID + "]"
	}
	return s
}

// IssueBuilder provides a fluent API for building issues.
type IssueBuilder struct {
	issue Issue
}

// NewIssue creates a new IssueBuilder.
func NewIssue(severity IssueSeverity, code IssueType) *IssueBuilder {
	return &IssueBuilder{
		issue: Issue{
			Severity: severity,
			Code:     code,
		},
	}
}

// Fatal creates a document-level rejection issue.
func Fatal(code IssueType) *IssueBuilder {
	return NewIssue(SeverityFatal, code)
}

// Error creates an error issue.
func Error(code IssueType) *IssueBuilder {
	return NewIssue(SeverityError, code)
}

// Warning creates a warning issue.
func Warning(code IssueType) *IssueBuilder {
	return NewIssue(SeverityWarning, code)
}

// Info creates an informational issue.
func Info(code IssueType) *IssueBuilder {
	return NewIssue(SeverityInformation, code)
}

// Diagnostics sets the diagnostic message.
func (b *IssueBuilder) Diagnostics(msg string) *IssueBuilder {
	b.issue.Diagnostics = msg
	return b
}

// At sets the element path.
func (b *IssueBuilder) At(path string) *IssueBuilder {
	b.issue.Path = path
	return b
}

// Rule sets the conformance rule citation.
func (b *IssueBuilder) Rule(id string) *IssueBuilder {
	b.issue.RuleID = id
	return b
}

// Template sets the template OID owning the rule.
func (b *IssueBuilder) Template(oid string) *IssueBuilder {
	b.issue.TemplateID = oid
	return b
}

// Stage sets the conversion stage.
func (b *IssueBuilder) Stage(stage string) *IssueBuilder {
	b.issue.Stage = stage
	return b
}

// Build returns the constructed issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}
