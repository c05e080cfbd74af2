package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the validation result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		return r.reportText("", result)
	}
}

// Section is one titled result in a grouped report.
type Section struct {
	Title  string  `json:"title"`
	Result *Result `json:"result"`
}

// ReportSections writes several titled results, such as one per editor.
func (r *Reporter) ReportSections(sections []Section) error {
	if r.format == FormatJSON {
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		return errors.Wrap(encoder.Encode(sections), "encoding JSON report")
	}
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		if err := r.reportText(s.Title, s.Result); err != nil {
			return err
		}
	}
	return nil
}

// reportJSON writes the result as JSON.
func (r *Reporter) reportJSON(result *Result) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(result), "encoding JSON report")
}

// reportText writes the result as human-readable text.
func (r *Reporter) reportText(title string, result *Result) error {
	label := ""
	if title != "" {
		label = color.New(color.Bold).Sprint(title) + ": "
	}

	if !result.HasErrors() && !result.HasWarnings() {
		fmt.Fprintln(r.out, label+color.GreenString("✓ Validation passed"))
		return nil
	}

	errs := result.Errors()
	warnings := result.Warnings()

	summary := []string{}
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}
	status := "Validation failed"
	if len(errs) == 0 {
		status = "Validation passed with warnings"
	}
	fmt.Fprintf(r.out, "%s%s: %s\n\n", label, status, strings.Join(summary, ", "))

	if len(errs) > 0 {
		fmt.Fprintln(r.out, "Errors:")
		for _, err := range errs {
			r.printIssue(err, color.FgRed)
		}
		fmt.Fprintln(r.out)
	}

	if len(warnings) > 0 {
		fmt.Fprintln(r.out, "Warnings:")
		for _, warn := range warnings {
			r.printIssue(warn, color.FgYellow)
		}
		fmt.Fprintln(r.out)
	}

	return nil
}

func (r *Reporter) printIssue(i Issue, c color.Attribute) {
	printer := color.New(c).SprintFunc()

	// Format:  • field: message [CODE]
	var sb strings.Builder
	sb.WriteString("  • ")

	if i.Field != "" {
		sb.WriteString(printer(i.Field))
		sb.WriteString(": ")
	}

	sb.WriteString(i.Message)

	if i.Code != "" {
		sb.WriteString(" ")
		sb.WriteString(color.New(color.FgHiBlack).Sprintf("[%s]", i.Code))
	}

	fmt.Fprintln(r.out, sb.String())
}
