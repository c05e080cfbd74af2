package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/validator"
)

// ReportError prints err for the user and returns the process exit code.
// Validation failures are listed issue by issue.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return errors.ExitSuccess
	}

	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		subject := ve.Subject
		if subject == "" {
			subject = "configuration"
		}
		fmt.Fprintf(w, "%s %s is invalid, nothing was written\n", color.RedString("Error:"), subject)
		_ = validator.NewReporter(w, validator.FormatText).Report(ve.Result)
	} else {
		fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)
	}

	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "%s %s\n", color.CyanString("Hint:"), hint)
	}

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Suggestion != "" {
			fmt.Fprintf(w, "%s %s\n", color.CyanString("Hint:"), exitErr.Suggestion)
		}
		return exitErr.Code
	}
	return exitCode(err)
}

// exitCode classifies errors that are not already *errors.ExitError.
func exitCode(err error) int {
	var (
		ve         *validator.ValidationError
		conflict   *errors.UniquenessConflict
		protection *errors.ProtectionViolation
		parseErr   *errors.ParseError
	)
	switch {
	case errors.As(err, &ve),
		errors.As(err, &conflict),
		errors.As(err, &protection),
		errors.As(err, &parseErr),
		errors.Is(err, errors.ErrServerNotFound),
		errors.Is(err, errors.ErrScopeUnsupported),
		errors.Is(err, errors.ErrNoWorkspace),
		errors.Is(err, errors.ErrTransportUnsupported),
		errors.Is(err, errors.ErrEnablementUnsupported):
		return errors.ExitUser
	default:
		return errors.ExitSystem
	}
}
