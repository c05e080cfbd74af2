package vscode

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Settings paths, in gjson and JSON Pointer form.
const (
	settingsSection = "mcp"
	settingsServers = "mcp.servers"
	settingsInputs  = "mcp.inputs"

	pointerSection = "/mcp"
	pointerServers = "/mcp/servers"
)

var (
	// ErrSettingsNotObject is returned when settings.json or its "mcp"
	// section is not a JSON object.
	ErrSettingsNotObject = errors.New("settings is not a JSON object")

	// ErrSettingsNotFound is returned when writing to a user settings file
	// that does not exist. It is never created.
	ErrSettingsNotFound = errors.New("user settings file not found")
)

// standardize returns settings content as standard JSON. Comments and
// trailing commas are stripped; raw is left untouched.
func standardize(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("{}"), nil
	}
	std, err := hujson.Standardize(slices.Clone(raw))
	if err != nil {
		return nil, err
	}
	if !gjson.ParseBytes(std).IsObject() {
		return nil, ErrSettingsNotObject
	}
	return std, nil
}

// lookup returns the value at path in settings content. A missing or null
// value yields an empty result.
func lookup(raw []byte, path string) (gjson.Result, error) {
	std, err := standardize(raw)
	if err != nil {
		return gjson.Result{}, err
	}
	v := gjson.GetBytes(std, path)
	if v.Type == gjson.Null {
		return gjson.Result{}, nil
	}
	return v, nil
}

// patchMember sets mcp.<member> in settings content to value and returns
// the new content. Everything outside that member, comments and
// formatting included, is kept byte for byte.
func patchMember(raw []byte, pointer string, value any) ([]byte, error) {
	if len(raw) == 0 {
		raw = []byte("{}\n")
	}

	v, err := hujson.Parse(slices.Clone(raw))
	if err != nil {
		return nil, err
	}
	if _, ok := v.Value.(*hujson.Object); !ok {
		return nil, ErrSettingsNotObject
	}

	std, err := standardize(raw)
	if err != nil {
		return nil, err
	}

	var ops []string
	switch section := gjson.GetBytes(std, settingsSection); {
	case !section.Exists():
		ops = append(ops, fmt.Sprintf(`{"op": "add", "path": %q, "value": {}}`, pointerSection))
	case !section.IsObject():
		return nil, errors.Wrapf(ErrSettingsNotObject, "%q", settingsSection)
	}

	data, err := json.MarshalIndent(value, "    ", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding settings value")
	}
	ops = append(ops, fmt.Sprintf(`{"op": "add", "path": %q, "value": %s}`, pointer, data))

	patch := "[" + strings.Join(ops, ", ") + "]"
	if err := v.Patch([]byte(patch)); err != nil {
		return nil, errors.Wrapf(err, "patching %s", pointer)
	}
	return v.Pack(), nil
}
