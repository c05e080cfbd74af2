package mcp

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseTransport(t *testing.T) {
	tests := []struct {
		in     string
		want   Transport
		wantOK bool
	}{
		{"stdio", TransportStdio, true},
		{"sse", TransportSSE, true},
		{"sse-variant", TransportSSEVariant, true},
		{"http", TransportHTTP, true},
		{"streamable", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTransport(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseTransport(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestServer_Transport(t *testing.T) {
	tests := []struct {
		name       string
		server     *Server
		want       Transport
		wantLocal  bool
		wantRemote bool
		wantURL    string
	}{
		{
			name:      "stdio",
			server:    &Server{Name: "fs", Endpoint: &StdioEndpoint{Command: "mcp-fs"}},
			want:      TransportStdio,
			wantLocal: true,
		},
		{
			name:       "sse",
			server:     &Server{Name: "a", Endpoint: &SSEEndpoint{URL: "https://a.example/sse"}},
			want:       TransportSSE,
			wantRemote: true,
			wantURL:    "https://a.example/sse",
		},
		{
			name:       "sse variant",
			server:     &Server{Name: "b", Endpoint: &SSEVariantEndpoint{ServerURL: "https://b.example/sse"}},
			want:       TransportSSEVariant,
			wantRemote: true,
			wantURL:    "https://b.example/sse",
		},
		{
			name:       "http",
			server:     &Server{Name: "c", Endpoint: &HTTPEndpoint{URL: "https://mcp.context7.com/mcp"}},
			want:       TransportHTTP,
			wantRemote: true,
			wantURL:    "https://mcp.context7.com/mcp",
		},
		{
			name:   "no endpoint",
			server: &Server{Name: "d"},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.server.Transport(); got != tt.want {
				t.Errorf("Transport() = %q, want %q", got, tt.want)
			}
			if got := tt.server.IsLocal(); got != tt.wantLocal {
				t.Errorf("IsLocal() = %v, want %v", got, tt.wantLocal)
			}
			if got := tt.server.IsRemote(); got != tt.wantRemote {
				t.Errorf("IsRemote() = %v, want %v", got, tt.wantRemote)
			}
			if got := tt.server.RemoteURL(); got != tt.wantURL {
				t.Errorf("RemoteURL() = %q, want %q", got, tt.wantURL)
			}
		})
	}
}

func TestServer_Clone(t *testing.T) {
	orig := &Server{
		Name:  "github",
		Roots: []string{"/src"},
		Endpoint: &StdioEndpoint{
			Command: "npx",
			Args:    []string{"-y", "pkg"},
			Env:     map[string]string{"TOKEN": "x"},
		},
		Extra: map[string]json.RawMessage{"alwaysAllow": json.RawMessage(`["read"]`)},
	}

	c := orig.Clone()
	if !reflect.DeepEqual(orig, c) {
		t.Fatalf("Clone() = %+v, want equal to original", c)
	}

	c.Roots[0] = "/other"
	c.Stdio().Args[0] = "--changed"
	c.Stdio().Env["TOKEN"] = "y"
	c.Extra["alwaysAllow"][0] = '{'

	if orig.Roots[0] != "/src" {
		t.Error("Clone shares Roots")
	}
	if orig.Stdio().Args[0] != "-y" {
		t.Error("Clone shares Args")
	}
	if orig.Stdio().Env["TOKEN"] != "x" {
		t.Error("Clone shares Env")
	}
	if string(orig.Extra["alwaysAllow"]) != `["read"]` {
		t.Error("Clone shares Extra bytes")
	}

	var nilServer *Server
	if nilServer.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestInferTransport(t *testing.T) {
	tests := []struct {
		name                         string
		explicit                     string
		hasURL, hasServerURL, hasCmd bool
		want                         Transport
	}{
		{"explicit wins", "http", true, false, false, TransportHTTP},
		{"url implies sse", "", true, false, false, TransportSSE},
		{"serverUrl implies variant", "", false, true, false, TransportSSEVariant},
		{"command implies stdio", "", false, false, true, TransportStdio},
		{"nothing defaults to stdio", "", false, false, false, TransportStdio},
		{"unknown tag falls back to fields", "websocket", true, false, false, TransportSSE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferTransport(tt.explicit, tt.hasURL, tt.hasServerURL, tt.hasCmd)
			if got != tt.want {
				t.Errorf("InferTransport() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindAndSort(t *testing.T) {
	servers := []*ServerWithMetadata{
		WithMetadata(&Server{Name: "memory"}, EditorCursor, ScopeGlobal, ""),
		WithMetadata(&Server{Name: "context7"}, EditorCursor, ScopeGlobal, ""),
		WithMetadata(&Server{Name: "github"}, EditorCursor, ScopeGlobal, ""),
	}

	if got := Find(servers, "github"); got != 2 {
		t.Errorf("Find(github) = %d, want 2", got)
	}
	if got := Find(servers, "absent"); got != -1 {
		t.Errorf("Find(absent) = %d, want -1", got)
	}

	SortByName(servers)
	want := []string{"context7", "github", "memory"}
	if got := Names(servers); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() after sort = %v, want %v", got, want)
	}
}

func TestExtractInputRefs(t *testing.T) {
	s := &Server{
		Name:        "api",
		Description: "uses ${input:region}",
		Endpoint: &HTTPEndpoint{
			URL: "https://${input:host}/mcp",
			Headers: map[string]string{
				"Authorization": "Bearer ${input:api-key}",
				"X-Other":       "${input:host}",
			},
		},
	}
	want := []string{"api-key", "host", "region"}
	if got := ExtractInputRefs(s); !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractInputRefs() = %v, want %v", got, want)
	}

	stdio := &Server{
		Name: "db",
		Endpoint: &StdioEndpoint{
			Command: "db-mcp",
			Args:    []string{"--password", "${input:db-pass}"},
			Env:     map[string]string{"PLAIN": "${env:HOME}"},
		},
	}
	if got := ExtractInputRefs(stdio); !reflect.DeepEqual(got, []string{"db-pass"}) {
		t.Errorf("ExtractInputRefs(stdio) = %v, want [db-pass]", got)
	}

	if got := ExtractInputRefs(&Server{Name: "none"}); len(got) != 0 {
		t.Errorf("ExtractInputRefs(no endpoint) = %v, want empty", got)
	}

	passthrough := &Server{
		Name:     "gateway",
		Endpoint: &StdioEndpoint{Command: "gateway-mcp"},
		Extra: map[string]json.RawMessage{
			"auth":  json.RawMessage(`{"token": "${input:token}", "scopes": ["read", "${input:scope}"]}`),
			"retry": json.RawMessage(`3`),
		},
	}
	if got := ExtractInputRefs(passthrough); !reflect.DeepEqual(got, []string{"scope", "token"}) {
		t.Errorf("ExtractInputRefs(passthrough) = %v, want [scope token]", got)
	}
}
