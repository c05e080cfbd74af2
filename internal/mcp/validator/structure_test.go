package validator

import (
	"testing"

	"github.com/thoreinstein/mcpm/internal/validator"
)

func TestParseStructure(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		allowComments bool
		wantOK        bool
		wantField     string
		wantCode      string
	}{
		{
			name:   "plain object",
			raw:    `{"mcpServers": {}}`,
			wantOK: true,
		},
		{
			name:   "empty document",
			raw:    "\n",
			wantOK: true,
		},
		{
			name:     "not JSON",
			raw:      `{"mcpServers": `,
			wantCode: CodeInvalidStructure,
		},
		{
			name:     "comments rejected in strict mode",
			raw:      "{\n// c\n\"a\": 1}",
			wantCode: CodeInvalidStructure,
		},
		{
			name:          "comments accepted in JSONC mode",
			raw:           "{\n// c\n\"a\": 1,}",
			allowComments: true,
			wantOK:        true,
		},
		{
			name:     "array at top level",
			raw:      `[]`,
			wantCode: CodeInvalidStructure,
		},
		{
			name:      "duplicate server name",
			raw:       `{"mcpServers": {"github": {}, "github": {}}}`,
			wantField: "mcpServers.github",
			wantCode:  CodeDuplicateName,
		},
		{
			name:      "duplicate nested key",
			raw:       `{"servers": {"a": {"env": {"K": "1", "K": "2"}}}}`,
			wantField: "servers.a.env.K",
			wantCode:  CodeDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, result := ParseStructure([]byte(tt.raw), tt.allowComments)
			if (s != nil) != tt.wantOK {
				t.Fatalf("ParseStructure() ok = %v, want %v (%v)", s != nil, tt.wantOK, result.Issues)
			}
			if tt.wantCode == "" {
				return
			}
			errs := result.Errors()
			if len(errs) == 0 {
				t.Fatal("expected an error")
			}
			if errs[0].Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", errs[0].Code, tt.wantCode)
			}
			if tt.wantField != "" && errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestStructure_CheckServers(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		path      string
		required  bool
		wantNames []string
		wantCodes []string
	}{
		{
			name:      "valid map",
			raw:       `{"mcpServers": {"a": {}, "b": {"command": "x"}}}`,
			path:      "mcpServers",
			wantNames: []string{"a", "b"},
		},
		{
			name:      "nested path",
			raw:       `{"editor.fontSize": 12, "mcp": {"servers": {"ctx": {}}}}`,
			path:      "mcp.servers",
			wantNames: []string{"ctx"},
		},
		{
			name: "missing and optional",
			raw:  `{}`,
			path: "mcpServers",
		},
		{
			name:      "missing and required",
			raw:       `{}`,
			path:      "servers",
			required:  true,
			wantCodes: []string{CodeRequired},
		},
		{
			name:      "not an object",
			raw:       `{"mcpServers": []}`,
			path:      "mcpServers",
			wantCodes: []string{CodeInvalidStructure},
		},
		{
			name:      "entry not an object and bad name",
			raw:       `{"mcpServers": {"1bad": "x"}}`,
			path:      "mcpServers",
			wantNames: []string{"1bad"},
			wantCodes: []string{CodeInvalidStructure, CodeInvalidPattern},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, parsed := ParseStructure([]byte(tt.raw), false)
			if s == nil {
				t.Fatalf("ParseStructure() failed: %v", parsed.Issues)
			}
			result := &validator.Result{}
			names := s.CheckServers(result, tt.path, tt.required)

			if len(names) != len(tt.wantNames) {
				t.Fatalf("names = %v, want %v", names, tt.wantNames)
			}
			for i := range names {
				if names[i] != tt.wantNames[i] {
					t.Errorf("names[%d] = %q, want %q", i, names[i], tt.wantNames[i])
				}
			}
			errs := result.Errors()
			if len(errs) != len(tt.wantCodes) {
				t.Fatalf("errors = %v, want codes %v", errs, tt.wantCodes)
			}
			for i, e := range errs {
				if e.Code != tt.wantCodes[i] {
					t.Errorf("errors[%d].Code = %q, want %q", i, e.Code, tt.wantCodes[i])
				}
			}
		})
	}
}

func TestStructure_CheckIntRange(t *testing.T) {
	tests := []struct {
		raw      string
		wantCode string
	}{
		{`{"maxTools": 50}`, ""},
		{`{}`, ""},
		{`{"maxTools": 0}`, CodeToolLimit},
		{`{"maxTools": 101}`, CodeToolLimit},
		{`{"maxTools": 2.5}`, CodeInvalidStructure},
		{`{"maxTools": "50"}`, CodeInvalidStructure},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			s, _ := ParseStructure([]byte(tt.raw), false)
			result := &validator.Result{}
			s.CheckIntRange(result, "maxTools", 1, 100)

			errs := result.Errors()
			if tt.wantCode == "" {
				if len(errs) != 0 {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Code != tt.wantCode {
				t.Errorf("errors = %v, want one %s", errs, tt.wantCode)
			}
		})
	}
}

func TestStructure_Entries(t *testing.T) {
	s, _ := ParseStructure([]byte(`{"servers": {"a.b": {"command": "x"}, "c": 1}}`), false)
	entries := s.Entries("servers")
	if len(entries) != 1 {
		t.Fatalf("Entries() = %v, want one entry", entries)
	}
	if got := string(entries["a.b"]); got != `{"command": "x"}` {
		t.Errorf("Entries()[a.b] = %s", got)
	}
	if got := s.Entries("missing"); len(got) != 0 {
		t.Errorf("Entries(missing) = %v, want empty", got)
	}
}

func TestStructure_CheckArrayAndObject(t *testing.T) {
	s, _ := ParseStructure([]byte(`{"inputs": {}, "mcp": []}`), false)
	result := &validator.Result{}
	s.CheckArray(result, "inputs")
	s.CheckObject(result, "mcp")
	s.CheckArray(result, "absent")

	if len(result.Errors()) != 2 {
		t.Errorf("errors = %v, want 2", result.Errors())
	}
	if got := s.Get("absent"); got != nil {
		t.Errorf("Get(absent) = %s, want nil", got)
	}
	if got := string(s.Get("inputs")); got != "{}" {
		t.Errorf("Get(inputs) = %s, want {}", got)
	}
}
