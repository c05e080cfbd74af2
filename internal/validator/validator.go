// Package validator provides the validation result types shared by every
// mcpm component that checks server definitions or raw config documents.
package validator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents the impact of a validation issue.
type Severity int

const (
	// SeverityError indicates a blocking validation failure.
	SeverityError Severity = iota
	// SeverityWarning indicates a non-blocking observation.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Issue represents a single validation problem.
type Issue struct {
	// Severity indicates the impact of the issue.
	Severity Severity `json:"-"`
	// Field is the path of the offending field, e.g. "servers[2].url".
	Field string `json:"field"`
	// Message is a human-readable description of the problem.
	Message string `json:"message"`
	// Code is a stable machine-readable identifier such as "INVALID_URL".
	Code string `json:"code"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	if i.Field != "" {
		sb.WriteString(i.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)
	return sb.String()
}

// Result aggregates validation issues. The zero value is a valid, empty
// result.
type Result struct {
	Issues []Issue
}

// Valid reports whether the result carries no errors. Warnings do not
// affect validity.
func (r *Result) Valid() bool {
	return !r.HasErrors()
}

// HasErrors returns true if any issue has SeverityError.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has SeverityWarning.
func (r *Result) HasWarnings() bool {
	if r == nil {
		return false
	}
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// AddError adds an error issue to the result.
func (r *Result) AddError(field, code, message string) {
	r.Issues = append(r.Issues, Issue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
		Code:     code,
	})
}

// AddWarning adds a warning issue to the result.
func (r *Result) AddWarning(field, code, message string) {
	r.Issues = append(r.Issues, Issue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
		Code:     code,
	})
}

// Errors returns a slice of all issues with SeverityError.
func (r *Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns a slice of all issues with SeverityWarning.
func (r *Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Result) filter(s Severity) []Issue {
	if r == nil {
		return nil
	}
	var res []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			res = append(res, i)
		}
	}
	return res
}

// Merge appends other's issues to r with every field path re-rooted under
// prefix. Merging "servers[2]" with an issue on "url" yields
// "servers[2].url"; an issue with no field takes the prefix itself.
func (r *Result) Merge(prefix string, other *Result) {
	if other == nil {
		return
	}
	for _, i := range other.Issues {
		i.Field = JoinField(prefix, i.Field)
		r.Issues = append(r.Issues, i)
	}
}

// JoinField joins two field path segments.
func JoinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	case strings.HasPrefix(field, "["):
		return prefix + field
	default:
		return prefix + "." + field
	}
}

// Err returns a *ValidationError when the result has errors, nil otherwise.
func (r *Result) Err(subject string) error {
	if !r.HasErrors() {
		return nil
	}
	return &ValidationError{Subject: subject, Result: r}
}

type resultJSON struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// MarshalJSON encodes the result as {valid, errors, warnings}.
func (r *Result) MarshalJSON() ([]byte, error) {
	errs := r.Errors()
	if errs == nil {
		errs = []Issue{}
	}
	return json.Marshal(resultJSON{
		Valid:    r.Valid(),
		Errors:   errs,
		Warnings: r.Warnings(),
	})
}

// UnmarshalJSON decodes the {valid, errors, warnings} form.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Issues = r.Issues[:0]
	for _, i := range raw.Errors {
		i.Severity = SeverityError
		r.Issues = append(r.Issues, i)
	}
	for _, i := range raw.Warnings {
		i.Severity = SeverityWarning
		r.Issues = append(r.Issues, i)
	}
	return nil
}

// ValidationError is returned by write paths that refuse to persist a
// definition with blocking issues. The full result stays available to
// callers via errors.As.
type ValidationError struct {
	Subject string
	Result  *Result
}

func (e *ValidationError) Error() string {
	errs := e.Result.Errors()
	parts := make([]string, 0, len(errs))
	for _, i := range errs {
		if i.Field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", i.Field, i.Message))
		} else {
			parts = append(parts, i.Message)
		}
	}
	if e.Subject == "" {
		return "validation failed: " + strings.Join(parts, "; ")
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}
