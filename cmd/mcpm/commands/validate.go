package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/validator"
)

var (
	validateTarget target
	validateFormat string
)

func init() {
	validateTarget.register(validateCmd, false)
	validateCmd.Flags().StringVarP(&validateFormat, "format", "o", "text", "output format: text, json")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every editor configuration",
	Long: `Check the structure of each config file and every server definition in it.

Issues are reported with a field path such as workspace.servers[1].url:
the scope, the server's position, then the field. The command exits
non-zero when any error is found; warnings alone do not fail it.`,
	Example: `  mcpm validate
  mcpm validate -e vscode --format json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	format := validator.Format(validateFormat)
	if format != validator.FormatText && format != validator.FormatJSON {
		return errors.NewUserError(errors.Newf("invalid --format %q", validateFormat), "Use text or json")
	}
	editor, _, err := validateTarget.filter()
	if err != nil {
		return err
	}

	a := newApp(cmd)
	results := a.manager.ValidateAllConfigurations()

	var sections []validator.Section
	failed := false
	for _, ad := range a.manager.Adapters() {
		if editor != "" && ad.Editor() != editor {
			continue
		}
		r, ok := results[ad.Editor()]
		if !ok {
			continue
		}
		sections = append(sections, validator.Section{Title: ad.DisplayName(), Result: r})
		failed = failed || r.HasErrors()
	}

	if err := validator.NewReporter(cmd.OutOrStdout(), format).ReportSections(sections); err != nil {
		return err
	}
	if failed {
		return errors.NewExitError(errors.New("validation failed"), errors.ExitUser)
	}
	return nil
}
