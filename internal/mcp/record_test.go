package mcp

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/thoreinstein/mcpm/internal/errors"
)

func TestDecodeEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		tag       string
		want      Endpoint
		wantExtra map[string]json.RawMessage
		wantErr   error
	}{
		{
			name: "untagged command is stdio",
			raw:  `{"command": "npx", "args": ["-y", "pkg"], "env": {"TOKEN": "x"}}`,
			want: &StdioEndpoint{Command: "npx", Args: []string{"-y", "pkg"}, Env: map[string]string{"TOKEN": "x"}},
		},
		{
			name: "untagged url is sse",
			raw:  `{"url": "https://a.example/sse", "headers": {"A": "b"}}`,
			want: &SSEEndpoint{URL: "https://a.example/sse", Headers: map[string]string{"A": "b"}},
		},
		{
			name: "untagged serverUrl is sse variant",
			raw:  `{"serverUrl": "https://b.example/sse"}`,
			want: &SSEVariantEndpoint{ServerURL: "https://b.example/sse"},
		},
		{
			name: "tagged http",
			raw:  `{"url": "https://mcp.context7.com/mcp"}`,
			tag:  "http",
			want: &HTTPEndpoint{URL: "https://mcp.context7.com/mcp"},
		},
		{
			name: "empty record defaults to stdio",
			raw:  `{}`,
			want: &StdioEndpoint{},
		},
		{
			name:      "unknown fields stay behind",
			raw:       `{"command": "x", "alwaysAllow": [ "read" ]}`,
			want:      &StdioEndpoint{Command: "x"},
			wantExtra: map[string]json.RawMessage{"alwaysAllow": json.RawMessage(`["read"]`)},
		},
		{
			name:    "tag contradicts fields",
			raw:     `{"command": "x"}`,
			tag:     "sse",
			wantErr: ErrTransportFieldMismatch,
		},
		{
			name:    "untagged command and url",
			raw:     `{"command": "x", "url": "https://a.example"}`,
			wantErr: ErrTransportFieldMismatch,
		},
		{
			name:    "unknown tag",
			raw:     `{"command": "x"}`,
			tag:     "websocket",
			wantErr: ErrUnknownTransport,
		},
		{
			name:    "args not an array",
			raw:     `{"command": "x", "args": "oops"}`,
			wantErr: ErrInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRecord(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("ParseRecord() error = %v", err)
			}
			got, err := DecodeEndpoint(r, tt.tag)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeEndpoint() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeEndpoint() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeEndpoint() = %#v, want %#v", got, tt.want)
			}
			if extra := r.Extra(); !reflect.DeepEqual(extra, tt.wantExtra) {
				t.Errorf("Extra() = %v, want %v", extra, tt.wantExtra)
			}
		})
	}
}

func TestParseRecord_NotObject(t *testing.T) {
	for _, raw := range []string{`null`, `[1]`, `"x"`} {
		if _, err := ParseRecord(json.RawMessage(raw)); err == nil {
			t.Errorf("ParseRecord(%s) should fail", raw)
		}
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(map[string]json.RawMessage{
		"alwaysAllow": json.RawMessage(`["read"]`),
		"command":     json.RawMessage(`"stale"`),
	})
	if err := b.Endpoint(&StdioEndpoint{Command: "npx", Args: []string{"-y"}}); err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	b.Bool(FieldDisabled, false).String(FieldDescription, "")

	raw, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := `{"alwaysAllow":["read"],"args":["-y"],"command":"npx"}`
	if string(raw) != want {
		t.Errorf("Build() = %s, want %s", raw, want)
	}

	if err := NewBuilder(nil).Endpoint(nil); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("Endpoint(nil) error = %v, want ErrNoEndpoint", err)
	}
}
