package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/doctor"
	"github.com/thoreinstein/mcpm/internal/errors"
)

var (
	doctorJSON    bool
	doctorAll bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	doctorCmd.Flags().BoolVarP(&doctorAll, "all", "a", false, "show passed and informational checks too")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "fix permission problems, then check again")
	doctorCmd.MarkFlagsMutuallyExclusive("json", "all")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose editor config problems",
	Long: `Run diagnostic checks over every editor config file mcpm manages.

Checks editor detection, file permissions, JSON syntax, server validation,
the protection state and names defined in more than one scope.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	a := newApp(cmd)
	w := cmd.OutOrStdout()

	runner := doctor.NewDefaultRunner(a.manager)
	report := runner.Run()

	if doctorFix {
		fixes := runner.Fix()
		for _, f := range fixes {
			if f.Fixed {
				a.logger.Info("fixed", "path", f.Path, "action", f.Description)
			} else {
				a.logger.Warn("fix failed", "path", f.Path, "error", f.Error)
			}
			if !doctorJSON {
				printFix(w, f)
			}
		}
		if len(fixes) > 0 {
			report = runner.Run()
		}
	}

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else {
		printDoctorReport(w, report)
	}

	switch {
	case report.HasErrors():
		return errors.NewExitError(errors.New("doctor found errors"), errors.ExitSystem)
	case report.HasWarnings():
		return errors.NewExitError(errors.New("doctor found warnings"), errors.ExitUser)
	}
	return nil
}

func printFix(w io.Writer, f doctor.FixResult) {
	if f.Fixed {
		fmt.Fprintf(w, "%s fixed %s: %s\n", color.GreenString("✓"), f.Path, f.Description)
		return
	}
	fmt.Fprintf(w, "%s could not fix %s: %s\n", color.RedString("✗"), f.Path, f.Description)
}

func printDoctorReport(w io.Writer, report *doctor.Report) {
	shown := false
	for _, r := range report.Results {
		problem := r.Status == doctor.SeverityError || r.Status == doctor.SeverityWarning
		if !doctorAll && !problem {
			continue
		}
		shown = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(r.Status), r.Category, r.Name, r.Message)
		if r.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", r.FixHint)
		}
	}
	if shown {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
