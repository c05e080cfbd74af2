// Package validator provides the validation result types for mcpm.
//
// Validation never throws: checks append [Issue] values to a [Result], and
// only a write path that must refuse to proceed turns a result into an
// error via [Result.Err].
//
// # Core Concepts
//
//   - [Severity]: Distinguishes between blocking errors and non-blocking warnings.
//   - [Issue]: A single problem with a field path and a stable code.
//   - [Result]: Aggregates issues; [Result.Merge] re-roots field paths so a
//     problem can be traced to a specific server, e.g. "servers[2].url".
//
// # Basic Usage
//
//	result := &validator.Result{}
//	if name == "" {
//		result.AddError("name", "REQUIRED", "name is required")
//	}
//	if err := result.Err("server"); err != nil {
//		return err
//	}
package validator
