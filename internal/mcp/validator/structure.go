package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"

	"github.com/thoreinstein/mcpm/internal/validator"
)

// Structure is a raw document that passed the syntax checks, converted to
// standard JSON for the shape checks that follow.
type Structure struct {
	JSON []byte
}

// ParseStructure checks that raw is a single JSON object with no duplicate
// keys at any depth. With allowComments, comments and trailing commas are
// accepted. On failure the returned Structure is nil and the result holds
// the reason.
func ParseStructure(raw []byte, allowComments bool) (*Structure, *validator.Result) {
	result := &validator.Result{}

	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if !allowComments && !json.Valid(raw) {
		result.AddError("", CodeInvalidStructure, "document is not valid JSON")
		return nil, result
	}

	// Standardize rewrites the parsed buffer in place.
	v, err := hujson.Parse(slices.Clone(raw))
	if err != nil {
		result.AddError("", CodeInvalidStructure, fmt.Sprintf("document is not valid JSON: %v", err))
		return nil, result
	}

	findDuplicateKeys(result, "", v)

	v.Standardize()
	std := v.Pack()
	if !gjson.ParseBytes(std).IsObject() {
		result.AddError("", CodeInvalidStructure, "top level must be a JSON object")
	}

	if result.HasErrors() {
		return nil, result
	}
	return &Structure{JSON: std}, result
}

func findDuplicateKeys(result *validator.Result, path string, v hujson.Value) {
	switch t := v.Value.(type) {
	case *hujson.Object:
		seen := make(map[string]bool, len(t.Members))
		for _, m := range t.Members {
			name := m.Name.Value.(hujson.Literal).String()
			field := validator.JoinField(path, name)
			if seen[name] {
				result.AddError(field, CodeDuplicateName, fmt.Sprintf("key %q appears more than once", name))
			}
			seen[name] = true
			findDuplicateKeys(result, field, m.Value)
		}
	case *hujson.Array:
		for i, e := range t.Elements {
			findDuplicateKeys(result, validator.JoinField(path, fmt.Sprintf("[%d]", i)), e)
		}
	}
}

// CheckServers validates the server map at path (a gjson path such as
// "mcpServers" or "mcp.servers"). A missing map is accepted unless
// required. Each entry must be an object whose name is a valid server
// name. It returns the names of the entries found.
func (s *Structure) CheckServers(result *validator.Result, path string, required bool) []string {
	servers := gjson.GetBytes(s.JSON, path)
	if !servers.Exists() || servers.Type == gjson.Null {
		if required {
			result.AddError(path, CodeRequired, fmt.Sprintf("%q is required", path))
		}
		return nil
	}
	if !servers.IsObject() {
		result.AddError(path, CodeInvalidStructure, fmt.Sprintf("%q must be an object", path))
		return nil
	}

	var names []string
	servers.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		field := path + "." + name
		names = append(names, name)
		if !value.IsObject() {
			result.AddError(field, CodeInvalidStructure, "server entry must be an object")
		}
		if !namePattern.MatchString(name) || len(name) > MaxNameLength {
			result.AddError(field, CodeInvalidPattern, fmt.Sprintf("server name %q is not valid", name))
		}
		return true
	})
	return names
}

// Entries returns the object-valued members of the map at path, keyed by
// name. Members that are not objects are left out.
func (s *Structure) Entries(path string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	gjson.GetBytes(s.JSON, path).ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() {
			out[key.String()] = json.RawMessage(value.Raw)
		}
		return true
	})
	return out
}

// CheckArray validates that the value at path, when present, is an array.
func (s *Structure) CheckArray(result *validator.Result, path string) {
	v := gjson.GetBytes(s.JSON, path)
	if v.Exists() && v.Type != gjson.Null && !v.IsArray() {
		result.AddError(path, CodeInvalidStructure, fmt.Sprintf("%q must be an array", path))
	}
}

// CheckObject validates that the value at path, when present, is an object.
func (s *Structure) CheckObject(result *validator.Result, path string) {
	v := gjson.GetBytes(s.JSON, path)
	if v.Exists() && v.Type != gjson.Null && !v.IsObject() {
		result.AddError(path, CodeInvalidStructure, fmt.Sprintf("%q must be an object", path))
	}
}

// CheckIntRange validates that the value at path, when present, is an
// integer in [min, max].
func (s *Structure) CheckIntRange(result *validator.Result, path string, minVal, maxVal int64) {
	v := gjson.GetBytes(s.JSON, path)
	if !v.Exists() {
		return
	}
	if v.Type != gjson.Number || float64(v.Int()) != v.Float() {
		result.AddError(path, CodeInvalidStructure, fmt.Sprintf("%q must be an integer", path))
		return
	}
	if n := v.Int(); n < minVal || n > maxVal {
		result.AddError(path, CodeToolLimit, fmt.Sprintf("%q must be between %d and %d (got %d)", path, minVal, maxVal, n))
	}
}

// Get returns the raw JSON at path, or nil when absent.
func (s *Structure) Get(path string) []byte {
	v := gjson.GetBytes(s.JSON, path)
	if !v.Exists() {
		return nil
	}
	return []byte(v.Raw)
}
