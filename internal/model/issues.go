package model

import "fmt"

// IssueCode identifies the kind of a validation issue. Stage failures are
// folded into the same space using the error taxonomy codes, so every
// failure surfaces as a structured entry.
type IssueCode string

const (
	IssueMissingField IssueCode = "missing_field"
	IssueTypeMismatch IssueCode = "type_mismatch"
	IssueOutOfRange   IssueCode = "out_of_range"

	// IssuePipelineError is the fallback for stage errors outside the
	// validation taxonomy (for example undecodable metadata JSON).
	IssuePipelineError IssueCode = "pipeline_error"
)

// ValidationIssue describes one problem found in a file-set. Issues are
// accumulated, never thrown, so one run surfaces every problem at once.
type ValidationIssue struct {
	Field      string    `json:"field,omitempty"`
	SequenceID string    `json:"sequence_id,omitempty"`
	Code       IssueCode `json:"code"`
	Message    string    `json:"message"`
	Coerced    bool      `json:"coerced,omitempty"` // value was recovered by an unambiguous coercion
}

// IssueCollector accumulates issues for one file-set. It is scoped to a
// single file-set's processing and merged into its PipelineResult at the end.
type IssueCollector struct {
	issues []ValidationIssue
}

// Add appends one issue.
func (c *IssueCollector) Add(issue ValidationIssue) {
	c.issues = append(c.issues, issue)
}

// Addf appends a field-level issue with a formatted message.
func (c *IssueCollector) Addf(field string, code IssueCode, format string, a ...interface{}) {
	c.issues = append(c.issues, ValidationIssue{
		Field:   field,
		Code:    code,
		Message: fmt.Sprintf(format, a...),
	})
}

// Issues returns the accumulated issues in insertion order.
func (c *IssueCollector) Issues() []ValidationIssue { return c.issues }

// Len reports how many issues were collected.
func (c *IssueCollector) Len() int { return len(c.issues) }
