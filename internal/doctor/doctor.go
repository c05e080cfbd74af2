package doctor

import (
	"time"

	"github.com/thoreinstein/mcpm/internal/manager"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/platform"
	"github.com/thoreinstein/mcpm/internal/protect"
	"github.com/thoreinstein/mcpm/internal/validator"
)

// Check is the interface that diagnostic checks must implement.
type Check interface {
	// Name returns the unique identifier for this check.
	Name() string

	// Category returns the grouping for this check.
	Category() string

	// Run executes the diagnostic check and returns its result.
	Run() *CheckResult
}

// Source is the view of mcpm's state the checks inspect.
// *manager.Manager satisfies it.
type Source interface {
	Adapters() []platform.Adapter
	Guard() *protect.Guard
	ReadAllServers() (*manager.ReadResult, error)
	ValidateAllConfigurations() map[mcp.Editor]*validator.Result
}

// Runner executes diagnostic checks and aggregates their results.
type Runner struct {
	checks []Check
	now    func() time.Time
}

// NewRunner creates a new diagnostic runner.
func NewRunner() *Runner {
	return &Runner{now: time.Now}
}

// NewDefaultRunner returns a runner with every built-in check against src.
func NewDefaultRunner(src Source) *Runner {
	r := NewRunner()
	r.AddCheck(NewEditorCheck(src.Adapters()))
	r.AddCheck(NewPathPermissionCheck(src.Adapters()))
	r.AddCheck(NewConfigSyntaxCheck(src.Adapters()))
	r.AddCheck(NewValidationCheck(src))
	r.AddCheck(NewProtectionCheck(src))
	r.AddCheck(NewShadowCheck(src))
	return r
}

// AddCheck registers a diagnostic check with the runner.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Run executes all registered checks and returns a report.
func (r *Runner) Run() *Report {
	report := &Report{
		Timestamp: r.now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		result := check.Run()
		report.Results = append(report.Results, result)

		switch result.Status {
		case SeverityPass:
			report.Summary.Passed++
		case SeverityInfo:
			report.Summary.Info++
		case SeverityWarning:
			report.Summary.Warnings++
		case SeverityError:
			report.Summary.Errors++
		}
	}

	return report
}

// Fix applies the fixes of every check that found fixable issues in the
// last Run.
func (r *Runner) Fix() []FixResult {
	var results []FixResult
	for _, check := range r.checks {
		if f, ok := check.(Fixer); ok && f.CanFix() {
			results = append(results, f.Fix()...)
		}
	}
	return results
}

// Report aggregates all check results with timing and summary.
type Report struct {
	// Timestamp is when the diagnostic run started.
	Timestamp time.Time `json:"timestamp"`

	// Results contains the outcome of each check.
	Results []*CheckResult `json:"results"`

	// Summary contains counts by severity level.
	Summary Summary `json:"summary"`
}

// HasErrors returns true if any check has SeverityError.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings returns true if any check has SeverityWarning.
func (r *Report) HasWarnings() bool {
	return r.Summary.Warnings > 0
}
