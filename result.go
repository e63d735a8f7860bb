package cdaconvert

import (
	"sync"

	"github.com/gofhir/cdaconvert/fhir"
)

// Result contains the outcome of converting one clinical document:
// either a document bundle plus any recorded downgrades, or a rejection
// naming the offending rule and path.
type Result struct {
	// Bundle is the assembled document bundle. Nil when the document
	// was rejected.
	Bundle *fhir.Bundle `json:"bundle,omitempty"`

	// Issues contains all conversion issues found, rejections included
	Issues []Issue `json:"issues,omitempty"`

	// Decisions is the structured log of recoverable decisions
	Decisions []Decision `json:"decisions,omitempty"`

	// DocumentID is the source document's instance identifier, if present
	DocumentID string `json:"documentId,omitempty"`

	// JobID correlates results during batch conversion
	JobID string `json:"jobId,omitempty"`

	// mu protects Issues and Decisions
	mu sync.Mutex
}

// NewResult creates a new empty result.
func NewResult() *Result {
	return &Result{
		Issues:    make([]Issue, 0, 8),
		Decisions: make([]Decision, 0, 8),
	}
}

// Rejected reports whether the document was rejected as a whole.
func (r *Result) Rejected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, issue := range r.Issues {
		if issue.IsFatal() {
			return true
		}
	}
	return false
}

// Rejection returns the issue that rejected the document, if any.
func (r *Result) Rejection() (Issue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, issue := range r.Issues {
		if issue.IsFatal() {
			return issue, true
		}
	}
	return Issue{}, false
}

// AddIssue adds a conversion issue to the result.
func (r *Result) AddIssue(issue Issue) {
	r.mu.Lock()
	r.Issues = append(r.Issues, issue)
	r.mu.Unlock()
}

// AddIssues adds multiple issues to the result.
func (r *Result) AddIssues(issues []Issue) {
	if len(issues) == 0 {
		return
	}
	r.mu.Lock()
	r.Issues = append(r.Issues, issues...)
	r.mu.Unlock()
}

// Record appends a decision to the structured decision log.
func (r *Result) Record(d Decision) {
	r.mu.Lock()
	r.Decisions = append(r.Decisions, d)
	r.mu.Unlock()
}

// HasErrors returns true if there are any error or fatal issues.
func (r *Result) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, issue := range r.Issues {
		if issue.IsError() {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error and fatal issues.
func (r *Result) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, issue := range r.Issues {
		if issue.IsError() {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning issues.
func (r *Result) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, issue := range r.Issues {
		if issue.IsWarning() {
			count++
		}
	}
	return count
}

// Errors returns all error and fatal issues.
func (r *Result) Errors() []Issue {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errors []Issue
	for _, issue := range r.Issues {
		if issue.IsError() {
			errors = append(errors, issue)
		}
	}
	return errors
}

// Warnings returns all warning issues.
func (r *Result) Warnings() []Issue {
	r.mu.Lock()
	defer r.mu.Unlock()

	var warnings []Issue
	for _, issue := range r.Issues {
		if issue.IsWarning() {
			warnings = append(warnings, issue)
		}
	}
	return warnings
}

// DecisionsOf returns all recorded decisions of one kind.
func (r *Result) DecisionsOf(kind DecisionKind) []Decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Decision
	for _, d := range r.Decisions {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
